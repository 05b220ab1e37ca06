package catalogapi_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/Amund211/vidcat/internal/adapters/catalogapi"
	"github.com/Amund211/vidcat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "https://catalog.example.com"

type mockedHttpClient struct {
	t              *testing.T
	expectedURL    string
	expectedAPIKey string
	response       *http.Response
	statusCode     int
	body           string
	err            error
}

func newMockedHttpClient(t *testing.T, expectedURL string, statusCode int, body string, err error) *mockedHttpClient {
	return &mockedHttpClient{
		t:           t,
		expectedURL: expectedURL,
		statusCode:  statusCode,
		body:        body,
		err:         err,
	}
}

func (m *mockedHttpClient) Do(req *http.Request) (*http.Response, error) {
	expectedHeaders := http.Header{
		// NOTE: go's http.Header automatically camelcases the keys
		"User-Agent": {"vidcat/0.1.0 (+https://github.com/Amund211/vidcat)"},
		"Accept":     {"application/json"},
	}
	if m.expectedAPIKey != "" {
		expectedHeaders["Apikey"] = []string{m.expectedAPIKey}
		expectedHeaders["Authorization"] = []string{"Bearer " + m.expectedAPIKey}
	}

	require.Equal(m.t, http.MethodGet, req.Method)
	require.Equal(m.t, m.expectedURL, req.URL.String())
	require.Equal(m.t, expectedHeaders, req.Header)

	if m.err != nil {
		return nil, m.err
	}

	if m.response != nil {
		return m.response, nil
	}

	return &http.Response{
		StatusCode: m.statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(m.body)),
	}, nil
}

type cantRead struct{}

func (c cantRead) Read(p []byte) (n int, err error) {
	return 0, assert.AnError
}

func (c cantRead) Close() error {
	return nil
}

func newCatalogAPI(t *testing.T, httpClient catalogapi.HttpClient) catalogapi.CatalogAPI {
	t.Helper()

	api, err := catalogapi.NewCatalogAPI(httpClient, baseURL, "", time.Now, time.After)
	require.NoError(t, err)
	return api
}

func TestNewCatalogAPI(t *testing.T) {
	t.Parallel()

	_, err := catalogapi.NewCatalogAPI(newMockedHttpClient(t, "", 200, "", nil), "", "", time.Now, time.After)
	require.Error(t, err)
}

func TestGetVideo(t *testing.T) {
	t.Parallel()

	videoURL := baseURL + "/api/videos/ABC-123"

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		httpClient := newMockedHttpClient(t, videoURL, 200, `{
			"code": "ABC-123",
			"title": "Some title",
			"studio": "Studio Alpha",
			"series": "",
			"description": "A description",
			"release_date": "2024-03-15",
			"duration": "2:05:00",
			"thumbnail_url": "https://img.example.com/abc-123-thumb.jpg",
			"cover_url": "https://img.example.com/abc-123.jpg",
			"categories": ["drama"],
			"cast": ["Someone"],
			"cast_images": {},
			"views": 42
		}`, nil)
		api := newCatalogAPI(t, httpClient)

		video, err := api.GetVideo(t.Context(), "ABC-123")
		require.NoError(t, err)
		require.Equal(t, domain.Video{
			Code:         "ABC-123",
			Title:        "Some title",
			Studio:       "Studio Alpha",
			Description:  "A description",
			ReleaseDate:  time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
			Duration:     2*time.Hour + 5*time.Minute,
			ThumbnailURL: "https://img.example.com/abc-123-thumb.jpg",
			CoverURL:     "https://img.example.com/abc-123.jpg",
			Categories:   []string{"drama"},
			Cast:         []string{"Someone"},
			Views:        42,
		}, video)
	})

	t.Run("api key headers", func(t *testing.T) {
		t.Parallel()

		httpClient := newMockedHttpClient(t, videoURL, 200, `{"code":"ABC-123","title":"Some title"}`, nil)
		httpClient.expectedAPIKey = "secret-key"

		api, err := catalogapi.NewCatalogAPI(httpClient, baseURL, "secret-key", time.Now, time.After)
		require.NoError(t, err)

		video, err := api.GetVideo(t.Context(), "ABC-123")
		require.NoError(t, err)
		require.Equal(t, "ABC-123", video.Code)
	})

	t.Run("code is escaped", func(t *testing.T) {
		t.Parallel()

		httpClient := newMockedHttpClient(t, baseURL+"/api/videos/A%2FB", 200, `{"code":"A/B","title":"Slash"}`, nil)
		api := newCatalogAPI(t, httpClient)

		video, err := api.GetVideo(t.Context(), "A/B")
		require.NoError(t, err)
		require.Equal(t, "A/B", video.Code)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		httpClient := newMockedHttpClient(t, videoURL, 404, `{"detail":"Video not found"}`, nil)
		api := newCatalogAPI(t, httpClient)

		_, err := api.GetVideo(t.Context(), "ABC-123")
		require.ErrorIs(t, err, domain.ErrVideoNotFound)
	})

	for _, statusCode := range []int{429, 500, 502, 503, 504} {
		t.Run(http.StatusText(statusCode), func(t *testing.T) {
			t.Parallel()

			httpClient := newMockedHttpClient(t, videoURL, statusCode, `error`, nil)
			api := newCatalogAPI(t, httpClient)

			_, err := api.GetVideo(t.Context(), "ABC-123")
			require.ErrorIs(t, err, domain.ErrTemporarilyUnavailable)
		})
	}

	t.Run("unexpected status", func(t *testing.T) {
		t.Parallel()

		httpClient := newMockedHttpClient(t, videoURL, 418, `teapot`, nil)
		api := newCatalogAPI(t, httpClient)

		_, err := api.GetVideo(t.Context(), "ABC-123")
		require.Error(t, err)
		require.NotErrorIs(t, err, domain.ErrTemporarilyUnavailable)
		require.NotErrorIs(t, err, domain.ErrVideoNotFound)
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()

		httpClient := newMockedHttpClient(t, videoURL, 200, `{"code":`, nil)
		api := newCatalogAPI(t, httpClient)

		_, err := api.GetVideo(t.Context(), "ABC-123")
		require.Error(t, err)
	})

	t.Run("missing code", func(t *testing.T) {
		t.Parallel()

		httpClient := newMockedHttpClient(t, videoURL, 200, `{"title":"No code"}`, nil)
		api := newCatalogAPI(t, httpClient)

		_, err := api.GetVideo(t.Context(), "ABC-123")
		require.Error(t, err)
	})

	t.Run("request fails", func(t *testing.T) {
		t.Parallel()

		httpClient := newMockedHttpClient(t, videoURL, 0, "", assert.AnError)
		api := newCatalogAPI(t, httpClient)

		_, err := api.GetVideo(t.Context(), "ABC-123")
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("body read fails", func(t *testing.T) {
		t.Parallel()

		httpClient := &mockedHttpClient{
			t:           t,
			expectedURL: videoURL,
			response: &http.Response{
				StatusCode: 200,
				Body:       cantRead{},
			},
		}
		api := newCatalogAPI(t, httpClient)

		_, err := api.GetVideo(t.Context(), "ABC-123")
		require.ErrorIs(t, err, assert.AnError)
	})
}

func TestListVideos(t *testing.T) {
	t.Parallel()

	t.Run("without query", func(t *testing.T) {
		t.Parallel()

		httpClient := newMockedHttpClient(t, baseURL+"/api/videos?page=2&page_size=20", 200, `{
			"items": [
				{"code": "AAA-001", "title": "First", "duration": "95:00", "release_date": "2023-01-02", "like_count": 3},
				{"code": "BBB-002", "title": "Second", "duration": "", "release_date": ""}
			],
			"total": 42,
			"page": 2,
			"page_size": 20,
			"total_pages": 3
		}`, nil)
		api := newCatalogAPI(t, httpClient)

		page, err := api.ListVideos(t.Context(), 2, 20, "")
		require.NoError(t, err)
		require.Equal(t, domain.VideoPage{
			Items: []domain.Video{
				{
					Code:        "AAA-001",
					Title:       "First",
					Duration:    95 * time.Minute,
					ReleaseDate: time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC),
				},
				{Code: "BBB-002", Title: "Second"},
			},
			Total:      42,
			Page:       2,
			PageSize:   20,
			TotalPages: 3,
		}, page)
		require.True(t, page.HasNextPage())
	})

	t.Run("with query", func(t *testing.T) {
		t.Parallel()

		httpClient := newMockedHttpClient(t, baseURL+"/api/videos/search?page=1&page_size=10&q=studio+alpha", 200, `{"items":[],"total":0,"page":1,"page_size":10,"total_pages":0}`, nil)
		api := newCatalogAPI(t, httpClient)

		page, err := api.ListVideos(t.Context(), 1, 10, "studio alpha")
		require.NoError(t, err)
		require.Empty(t, page.Items)
		require.False(t, page.HasNextPage())
	})

	t.Run("temporarily unavailable", func(t *testing.T) {
		t.Parallel()

		httpClient := newMockedHttpClient(t, baseURL+"/api/videos?page=1&page_size=10", 503, ``, nil)
		api := newCatalogAPI(t, httpClient)

		_, err := api.ListVideos(t.Context(), 1, 10, "")
		require.ErrorIs(t, err, domain.ErrTemporarilyUnavailable)
	})
}

func TestGetLikeStatus(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		httpClient := newMockedHttpClient(t, baseURL+"/api/likes/ABC-123?user_id=user-1", 200, `{"liked":true,"like_count":7}`, nil)
		api := newCatalogAPI(t, httpClient)

		status, err := api.GetLikeStatus(t.Context(), "ABC-123", "user-1")
		require.NoError(t, err)
		require.Equal(t, domain.LikeStatus{Liked: true, Count: 7}, status)
	})

	t.Run("server error", func(t *testing.T) {
		t.Parallel()

		httpClient := newMockedHttpClient(t, baseURL+"/api/likes/ABC-123?user_id=user-1", 500, `{"detail":"boom"}`, nil)
		api := newCatalogAPI(t, httpClient)

		_, err := api.GetLikeStatus(t.Context(), "ABC-123", "user-1")
		require.ErrorIs(t, err, domain.ErrTemporarilyUnavailable)
	})
}

func TestGetLikeStatusBatch(t *testing.T) {
	t.Parallel()

	batchURL := baseURL + "/api/likes/batch?codes=AAA-001%2CBBB-002%2CCCC-003&user_id=user-1"

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		httpClient := newMockedHttpClient(t, batchURL, 200, `{"results":[
			{"code":"AAA-001","liked":true,"like_count":12},
			{"code":"CCC-003","liked":false,"like_count":0}
		]}`, nil)
		api := newCatalogAPI(t, httpClient)

		statuses, err := api.GetLikeStatusBatch(t.Context(), []string{"AAA-001", "BBB-002", "CCC-003"}, "user-1")
		require.NoError(t, err)
		require.Equal(t, map[string]domain.LikeStatus{
			"AAA-001": {Liked: true, Count: 12},
			"CCC-003": {Liked: false, Count: 0},
		}, statuses)
	})

	t.Run("empty list does not send a request", func(t *testing.T) {
		t.Parallel()

		api := newCatalogAPI(t, &mockedHttpClient{t: t, err: assert.AnError})

		statuses, err := api.GetLikeStatusBatch(t.Context(), []string{}, "user-1")
		require.NoError(t, err)
		require.Empty(t, statuses)
	})

	t.Run("too many codes", func(t *testing.T) {
		t.Parallel()

		api := newCatalogAPI(t, &mockedHttpClient{t: t, err: assert.AnError})

		codes := make([]string, catalogapi.MaxBatchSize+1)
		for i := range codes {
			codes[i] = "CODE"
		}

		_, err := api.GetLikeStatusBatch(t.Context(), codes, "user-1")
		require.ErrorIs(t, err, catalogapi.ErrTooManyCodes)
	})

	t.Run("rate limited", func(t *testing.T) {
		t.Parallel()
		synctest.Test(t, func(t *testing.T) {
			httpClient := newMockedHttpClient(t, batchURL, 200, `{"results":[]}`, nil)
			api := newCatalogAPI(t, httpClient)

			wg := sync.WaitGroup{}
			for range 300 {
				wg.Go(func() {
					_, err := api.GetLikeStatusBatch(t.Context(), []string{"AAA-001", "BBB-002", "CCC-003"}, "user-1")
					assert.NoError(t, err)
				})
			}
			wg.Wait()

			ctx, cancel := context.WithTimeout(t.Context(), 10*time.Second)
			defer cancel()

			start := time.Now()
			_, err := api.GetLikeStatusBatch(ctx, []string{"AAA-001", "BBB-002", "CCC-003"}, "user-1")
			require.ErrorIs(t, err, domain.ErrTemporarilyUnavailable)
			require.Equal(t, start, time.Now())
		})
	})
}
