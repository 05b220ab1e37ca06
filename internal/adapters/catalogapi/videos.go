package catalogapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Amund211/vidcat/internal/domain"
)

func (c *catalogAPI) GetVideo(ctx context.Context, code string) (domain.Video, error) {
	ctx, span := c.tracer.Start(ctx, "CatalogAPI.GetVideo")
	defer span.End()

	const endpoint = "video"

	response, err := c.get(ctx, endpoint, fmt.Sprintf("%s/api/videos/%s", c.baseURL, url.PathEscape(code)))
	if err != nil {
		return domain.Video{}, err
	}

	if response.statusCode == http.StatusNotFound {
		return domain.Video{}, fmt.Errorf("%w: %s", domain.ErrVideoNotFound, code)
	}
	if err := statusError(response.statusCode); err != nil {
		c.reportResponseError(ctx, err, endpoint, response)
		return domain.Video{}, err
	}

	video, err := videoFromResponse(response.data)
	if err != nil {
		c.reportResponseError(ctx, err, endpoint, response)
		return domain.Video{}, err
	}

	return video, nil
}

func (c *catalogAPI) ListVideos(ctx context.Context, page, pageSize int, query string) (domain.VideoPage, error) {
	ctx, span := c.tracer.Start(ctx, "CatalogAPI.ListVideos")
	defer span.End()

	const endpoint = "videos"

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))
	path := "/api/videos"
	if query != "" {
		path = "/api/videos/search"
		params.Set("q", query)
	}

	response, err := c.get(ctx, endpoint, fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode()))
	if err != nil {
		return domain.VideoPage{}, err
	}

	if err := statusError(response.statusCode); err != nil {
		c.reportResponseError(ctx, err, endpoint, response)
		return domain.VideoPage{}, err
	}

	videoPage, err := videoPageFromResponse(response.data)
	if err != nil {
		c.reportResponseError(ctx, err, endpoint, response)
		return domain.VideoPage{}, err
	}

	return videoPage, nil
}
