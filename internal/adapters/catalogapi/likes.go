package catalogapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Amund211/vidcat/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func (c *catalogAPI) GetLikeStatus(ctx context.Context, code string, userID string) (domain.LikeStatus, error) {
	ctx, span := c.tracer.Start(ctx, "CatalogAPI.GetLikeStatus")
	defer span.End()

	const endpoint = "like_status"

	params := url.Values{}
	params.Set("user_id", userID)

	response, err := c.get(ctx, endpoint, fmt.Sprintf("%s/api/likes/%s?%s", c.baseURL, url.PathEscape(code), params.Encode()))
	if err != nil {
		return domain.LikeStatus{}, err
	}

	if err := statusError(response.statusCode); err != nil {
		c.reportResponseError(ctx, err, endpoint, response)
		return domain.LikeStatus{}, err
	}

	status, err := likeStatusFromResponse(response.data)
	if err != nil {
		c.reportResponseError(ctx, err, endpoint, response)
		return domain.LikeStatus{}, err
	}

	return status, nil
}

func (c *catalogAPI) GetLikeStatusBatch(ctx context.Context, codes []string, userID string) (map[string]domain.LikeStatus, error) {
	ctx, span := c.tracer.Start(ctx, "CatalogAPI.GetLikeStatusBatch", trace.WithAttributes(
		attribute.Int("code_count", len(codes)),
	))
	defer span.End()

	const endpoint = "like_status_batch"

	if len(codes) == 0 {
		return map[string]domain.LikeStatus{}, nil
	}
	if len(codes) > MaxBatchSize {
		// The catalog silently truncates, so this would lose results
		return nil, fmt.Errorf("%w: got %d, max %d", ErrTooManyCodes, len(codes), MaxBatchSize)
	}

	params := url.Values{}
	params.Set("codes", strings.Join(codes, ","))
	params.Set("user_id", userID)

	response, err := c.get(ctx, endpoint, fmt.Sprintf("%s/api/likes/batch?%s", c.baseURL, params.Encode()))
	if err != nil {
		return nil, err
	}

	if err := statusError(response.statusCode); err != nil {
		c.reportResponseError(ctx, err, endpoint, response)
		return nil, err
	}

	statuses, err := likeStatusBatchFromResponse(response.data)
	if err != nil {
		c.reportResponseError(ctx, err, endpoint, response)
		return nil, err
	}

	return statuses, nil
}
