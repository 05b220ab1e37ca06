package app_test

import (
	"strings"
	"testing"
	"testing/synctest"
	"time"

	"github.com/Amund211/vidcat/internal/adapters/cache"
	"github.com/Amund211/vidcat/internal/app"
	"github.com/Amund211/vidcat/internal/coordinator"
	"github.com/Amund211/vidcat/internal/domain"
	"github.com/Amund211/vidcat/internal/domaintest"
	"github.com/stretchr/testify/require"
)

func TestBuildListVideos(t *testing.T) {
	t.Parallel()

	newListVideos := func(t *testing.T, provider *mockedVideoProvider) (app.ListVideos, *coordinator.Coordinator) {
		t.Helper()
		c := newCoordinator(t)
		return app.BuildListVideos(c, cache.NewBasicCache[coordinator.Key, domain.VideoPage](), provider), c
	}

	t.Run("invalid requests", func(t *testing.T) {
		t.Parallel()

		provider := &mockedVideoProvider{t: t, total: 100}
		listVideos, _ := newListVideos(t, provider)

		cases := []struct {
			name     string
			page     int
			pageSize int
			query    string
		}{
			{name: "page 0", page: 0, pageSize: 20},
			{name: "negative page", page: -1, pageSize: 20},
			{name: "page size 0", page: 1, pageSize: 0},
			{name: "page size too large", page: 1, pageSize: app.MAX_PAGE_SIZE + 1},
			{name: "query too long", page: 1, pageSize: 20, query: strings.Repeat("a", app.MAX_QUERY_LENGTH+1)},
		}
		for _, tc := range cases {
			_, err := listVideos(t.Context(), tc.page, tc.pageSize, tc.query)
			require.ErrorIs(t, err, domain.ErrInvalidInput, tc.name)
		}
		require.Empty(t, provider.getPageCalls())
	})

	t.Run("query is trimmed", func(t *testing.T) {
		t.Parallel()

		provider := &mockedVideoProvider{t: t, total: 5}
		listVideos, _ := newListVideos(t, provider)

		videoPage, err := listVideos(t.Context(), 1, 20, "  alpha ")
		require.NoError(t, err)
		require.Equal(t, domaintest.NewVideoPage(1, 20, 5), videoPage)
		require.Equal(t, []pageCall{{page: 1, pageSize: 20, query: "alpha"}}, provider.getPageCalls())
	})

	t.Run("next page is prefetched", func(t *testing.T) {
		t.Parallel()
		synctest.Test(t, func(t *testing.T) {
			provider := &mockedVideoProvider{t: t, total: 25}
			listVideos, c := newListVideos(t, provider)

			videoPage, err := listVideos(t.Context(), 1, 10, "")
			require.NoError(t, err)
			require.Equal(t, domaintest.NewVideoPage(1, 10, 25), videoPage)
			require.Len(t, provider.getPageCalls(), 1)

			time.Sleep(coordinator.DefaultConfig().DefaultPrefetchDelay + time.Millisecond)
			synctest.Wait()

			require.Equal(t, []pageCall{
				{page: 1, pageSize: 10},
				{page: 2, pageSize: 10},
			}, provider.getPageCalls())
			require.Equal(t, coordinator.Stats{}, c.Stats())

			// Served from the prefetched entry
			videoPage, err = listVideos(t.Context(), 2, 10, "")
			require.NoError(t, err)
			require.Equal(t, domaintest.NewVideoPage(2, 10, 25), videoPage)
			require.Len(t, provider.getPageCalls(), 2)
		})
	})

	t.Run("request during prefetch joins it", func(t *testing.T) {
		t.Parallel()
		synctest.Test(t, func(t *testing.T) {
			provider := &mockedVideoProvider{t: t, total: 25, delay: time.Second}
			listVideos, _ := newListVideos(t, provider)

			_, err := listVideos(t.Context(), 1, 10, "")
			require.NoError(t, err)

			time.Sleep(coordinator.DefaultConfig().DefaultPrefetchDelay + time.Millisecond)
			synctest.Wait()
			require.Len(t, provider.getPageCalls(), 2)

			videoPage, err := listVideos(t.Context(), 2, 10, "")
			require.NoError(t, err)
			require.Equal(t, domaintest.NewVideoPage(2, 10, 25), videoPage)
			require.Len(t, provider.getPageCalls(), 2)
		})
	})

	t.Run("last page is not followed by a prefetch", func(t *testing.T) {
		t.Parallel()
		synctest.Test(t, func(t *testing.T) {
			provider := &mockedVideoProvider{t: t, total: 25}
			listVideos, _ := newListVideos(t, provider)

			_, err := listVideos(t.Context(), 3, 10, "")
			require.NoError(t, err)

			time.Sleep(10 * coordinator.DefaultConfig().DefaultPrefetchDelay)
			synctest.Wait()

			require.Equal(t, []pageCall{{page: 3, pageSize: 10}}, provider.getPageCalls())
		})
	})

	t.Run("cached pages do not prefetch again", func(t *testing.T) {
		t.Parallel()
		synctest.Test(t, func(t *testing.T) {
			provider := &mockedVideoProvider{t: t, total: 25}
			listVideos, _ := newListVideos(t, provider)

			_, err := listVideos(t.Context(), 1, 10, "")
			require.NoError(t, err)
			time.Sleep(coordinator.DefaultConfig().DefaultPrefetchDelay + time.Millisecond)
			synctest.Wait()
			require.Len(t, provider.getPageCalls(), 2)

			_, err = listVideos(t.Context(), 1, 10, "")
			require.NoError(t, err)
			time.Sleep(coordinator.DefaultConfig().DefaultPrefetchDelay + time.Millisecond)
			synctest.Wait()
			require.Len(t, provider.getPageCalls(), 2)
		})
	})

	t.Run("errors are returned", func(t *testing.T) {
		t.Parallel()

		provider := &mockedVideoProvider{t: t, err: domain.ErrTemporarilyUnavailable}
		listVideos, _ := newListVideos(t, provider)

		_, err := listVideos(t.Context(), 1, 10, "")
		require.ErrorIs(t, err, domain.ErrTemporarilyUnavailable)
	})
}
