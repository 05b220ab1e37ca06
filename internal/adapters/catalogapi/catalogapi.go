package catalogapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Amund211/vidcat/internal/constants"
	"github.com/Amund211/vidcat/internal/domain"
	"github.com/Amund211/vidcat/internal/logging"
	"github.com/Amund211/vidcat/internal/ratelimiting"
	"github.com/Amund211/vidcat/internal/reporting"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const maxOperationTime = 2 * time.Second

var ErrTooManyCodes = errors.New("too many codes in like status batch")

type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type catalogAPIMetricsCollection struct {
	requestCount metric.Int64Counter
}

func setupCatalogAPIMetrics(meter metric.Meter) (catalogAPIMetricsCollection, error) {
	requestCount, err := meter.Int64Counter("catalogapi/request_count")
	if err != nil {
		return catalogAPIMetricsCollection{}, fmt.Errorf("failed to create request count metric: %w", err)
	}

	return catalogAPIMetricsCollection{
		requestCount: requestCount,
	}, nil
}

type catalogAPI struct {
	httpClient HttpClient
	baseURL    string
	apiKey     string
	limiter    ratelimiting.RequestLimiter

	metrics catalogAPIMetricsCollection
	tracer  trace.Tracer
}

func NewCatalogAPI(httpClient HttpClient, baseURL string, apiKey string, nowFunc func() time.Time, afterFunc func(time.Duration) <-chan time.Time) (*catalogAPI, error) {
	const name = "vidcat/adapters/catalogapi"

	if baseURL == "" {
		return nil, fmt.Errorf("missing catalog API base URL")
	}

	meter := otel.Meter(name)
	tracer := otel.Tracer(name)

	metrics, err := setupCatalogAPIMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}

	// Stay well below what the catalog backend's proxy lets through
	limiter := ratelimiting.NewWindowLimitRequestLimiter(300, time.Minute, nowFunc, afterFunc)

	return &catalogAPI{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		limiter:    limiter,

		metrics: metrics,
		tracer:  tracer,
	}, nil
}

type catalogResponse struct {
	statusCode int
	data       []byte
}

// get sends a GET request to the catalog. Transport failures are reported here, status codes
// are left for the caller to interpret.
func (c *catalogAPI) get(ctx context.Context, endpoint string, url string) (catalogResponse, error) {
	ctx, span := c.tracer.Start(ctx, "CatalogAPI.get", trace.WithAttributes(attribute.String("endpoint", endpoint)))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		err := fmt.Errorf("failed to create request: %w", err)
		reporting.Report(ctx, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create request")
		return catalogResponse{}, err
	}

	req.Header.Set("User-Agent", constants.USER_AGENT)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	var response catalogResponse
	limitErr := c.limiter.Limit(ctx, maxOperationTime, func(ctx context.Context) {
		var resp *http.Response
		resp, err = c.httpClient.Do(req)
		if err != nil {
			err = fmt.Errorf("failed to send request: %w", err)
			return
		}
		defer resp.Body.Close()

		response.statusCode = resp.StatusCode
		response.data, err = io.ReadAll(resp.Body)
		if err != nil {
			err = fmt.Errorf("failed to read response body: %w", err)
			return
		}
	})
	if limitErr != nil {
		logging.FromContext(ctx).WarnContext(ctx, "Did not call the catalog API due to rate limiting", "endpoint", endpoint, "error", limitErr.Error())
		span.SetStatus(codes.Error, "rate limited")
		return catalogResponse{}, fmt.Errorf("%w: too many requests to catalog API: %w", domain.ErrTemporarilyUnavailable, limitErr)
	}

	c.metrics.requestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("status_code", strconv.Itoa(response.statusCode)),
	))

	if err != nil {
		reporting.Report(ctx, err, map[string]string{"endpoint": endpoint})
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return catalogResponse{}, err
	}

	span.SetAttributes(attribute.Int("status_code", response.statusCode))
	return response, nil
}

// statusError interprets a non-200 status code
func statusError(statusCode int) error {
	switch {
	case statusCode == http.StatusOK:
		return nil
	case statusCode == http.StatusTooManyRequests, statusCode >= 500:
		return fmt.Errorf("%w: catalog API returned status code %d", domain.ErrTemporarilyUnavailable, statusCode)
	default:
		return fmt.Errorf("catalog API returned status code %d", statusCode)
	}
}

func (c *catalogAPI) reportResponseError(ctx context.Context, err error, endpoint string, response catalogResponse) {
	reporting.Report(ctx, err, map[string]string{
		"endpoint": endpoint,
		"status":   strconv.Itoa(response.statusCode),
		"data":     string(response.data),
	})
}
