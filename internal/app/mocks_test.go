package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Amund211/vidcat/internal/coordinator"
	"github.com/Amund211/vidcat/internal/domain"
	"github.com/Amund211/vidcat/internal/domaintest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageCall struct {
	page     int
	pageSize int
	query    string
}

type mockedVideoProvider struct {
	t *testing.T

	mu         sync.Mutex
	videoCalls []string
	pageCalls  []pageCall

	// Catalog size for ListVideos
	total int
	delay time.Duration
	err   error
}

func (p *mockedVideoProvider) GetVideo(ctx context.Context, code string) (domain.Video, error) {
	p.t.Helper()

	p.mu.Lock()
	p.videoCalls = append(p.videoCalls, code)
	p.mu.Unlock()

	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.err != nil {
		return domain.Video{}, p.err
	}
	return domaintest.NewVideoBuilder(code).Build(), nil
}

func (p *mockedVideoProvider) ListVideos(ctx context.Context, page, pageSize int, query string) (domain.VideoPage, error) {
	p.t.Helper()

	p.mu.Lock()
	p.pageCalls = append(p.pageCalls, pageCall{page: page, pageSize: pageSize, query: query})
	p.mu.Unlock()

	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.err != nil {
		return domain.VideoPage{}, p.err
	}
	return domaintest.NewVideoPage(page, pageSize, p.total), nil
}

func (p *mockedVideoProvider) getVideoCalls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.videoCalls...)
}

func (p *mockedVideoProvider) getPageCalls() []pageCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]pageCall(nil), p.pageCalls...)
}

type likeBatchCall struct {
	codes  []string
	userID string
}

type mockedLikeBatchFetcher struct {
	t *testing.T

	mu    sync.Mutex
	calls []likeBatchCall

	statuses map[string]domain.LikeStatus
	err      error
}

func (f *mockedLikeBatchFetcher) GetLikeStatusBatch(ctx context.Context, codes []string, userID string) (map[string]domain.LikeStatus, error) {
	f.t.Helper()

	_, hasDeadline := ctx.Deadline()
	assert.True(f.t, hasDeadline, "combined requests should have a deadline")

	f.mu.Lock()
	f.calls = append(f.calls, likeBatchCall{codes: codes, userID: userID})
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	result := make(map[string]domain.LikeStatus, len(codes))
	for _, code := range codes {
		if status, ok := f.statuses[code]; ok {
			result[code] = status
		}
	}
	return result, nil
}

func (f *mockedLikeBatchFetcher) getCalls() []likeBatchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]likeBatchCall(nil), f.calls...)
}

func newCoordinator(t *testing.T) *coordinator.Coordinator {
	t.Helper()

	c, err := coordinator.New(&mockedLikeBatchFetcher{t: t}, coordinator.DefaultConfig(), time.Now)
	require.NoError(t, err)
	return c
}

func newRegistry(t *testing.T, fetcher coordinator.LikeBatchFetcher) *coordinator.Registry {
	t.Helper()

	registry, stop, err := coordinator.NewRegistry(fetcher, coordinator.DefaultConfig(), time.Now, time.Hour, 100)
	require.NoError(t, err)
	t.Cleanup(stop)
	return registry
}
