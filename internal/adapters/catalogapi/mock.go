package catalogapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Amund211/vidcat/internal/config"
	"github.com/Amund211/vidcat/internal/domain"
)

const mockVideoCount = 120

// mockCatalogAPI serves a generated in-memory catalog for local development
type mockCatalogAPI struct {
	videos []domain.Video
}

func NewMockCatalogAPI() *mockCatalogAPI {
	studios := []string{"Studio Alpha", "Studio Beta", "Studio Gamma"}
	releasedFrom := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

	videos := make([]domain.Video, 0, mockVideoCount)
	for i := range mockVideoCount {
		videos = append(videos, domain.Video{
			Code:        fmt.Sprintf("MOCK-%03d", i+1),
			Title:       fmt.Sprintf("Mock video %d", i+1),
			Studio:      studios[i%len(studios)],
			ReleaseDate: releasedFrom.AddDate(0, 0, 7*i),
			Duration:    time.Duration(60+i%90) * time.Minute,
			Categories:  []string{"mock"},
			Views:       (i * 37) % 1000,
		})
	}

	return &mockCatalogAPI{videos: videos}
}

func (m *mockCatalogAPI) GetVideo(ctx context.Context, code string) (domain.Video, error) {
	for _, video := range m.videos {
		if video.Code == code {
			return video, nil
		}
	}
	return domain.Video{}, fmt.Errorf("%w: %s", domain.ErrVideoNotFound, code)
}

func (m *mockCatalogAPI) ListVideos(ctx context.Context, page, pageSize int, query string) (domain.VideoPage, error) {
	if page < 1 || pageSize < 1 {
		return domain.VideoPage{}, fmt.Errorf("%w: page %d, page size %d", domain.ErrInvalidInput, page, pageSize)
	}

	matching := m.videos
	if query != "" {
		query = strings.ToLower(query)
		matching = nil
		for _, video := range m.videos {
			if strings.Contains(strings.ToLower(video.Title), query) || strings.Contains(strings.ToLower(video.Code), query) {
				matching = append(matching, video)
			}
		}
	}

	totalPages := (len(matching) + pageSize - 1) / pageSize
	start := min((page-1)*pageSize, len(matching))
	end := min(start+pageSize, len(matching))

	return domain.VideoPage{
		Items:      append([]domain.Video{}, matching[start:end]...),
		Total:      len(matching),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (m *mockCatalogAPI) GetLikeStatus(ctx context.Context, code string, userID string) (domain.LikeStatus, error) {
	return mockLikeStatus(code, userID), nil
}

func (m *mockCatalogAPI) GetLikeStatusBatch(ctx context.Context, codes []string, userID string) (map[string]domain.LikeStatus, error) {
	if len(codes) > MaxBatchSize {
		return nil, fmt.Errorf("%w: got %d, max %d", ErrTooManyCodes, len(codes), MaxBatchSize)
	}

	statuses := make(map[string]domain.LikeStatus, len(codes))
	for _, code := range codes {
		statuses[code] = mockLikeStatus(code, userID)
	}
	return statuses, nil
}

func mockLikeStatus(code string, userID string) domain.LikeStatus {
	sum := 0
	for _, r := range code {
		sum += int(r)
	}
	return domain.LikeStatus{
		Liked: userID != "" && sum%3 == 0,
		Count: sum % 17,
	}
}

func NewCatalogAPIOrMock(conf config.Config, httpClient HttpClient, nowFunc func() time.Time, afterFunc func(time.Duration) <-chan time.Time) (CatalogAPI, error) {
	if conf.CatalogAPIURL() != "" {
		api, err := NewCatalogAPI(httpClient, conf.CatalogAPIURL(), conf.CatalogAPIKey(), nowFunc, afterFunc)
		if err != nil {
			return nil, err
		}
		return api, nil
	}

	if conf.IsDevelopment() {
		return NewMockCatalogAPI(), nil
	}

	return nil, fmt.Errorf("Missing catalog API URL in non-development environment")
}
