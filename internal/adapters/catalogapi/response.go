package catalogapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Amund211/vidcat/internal/domain"
)

type videoResponse struct {
	Code         string   `json:"code"`
	Title        string   `json:"title"`
	Studio       string   `json:"studio"`
	Series       string   `json:"series"`
	Description  string   `json:"description"`
	ReleaseDate  string   `json:"release_date"`
	Duration     string   `json:"duration"`
	ThumbnailURL string   `json:"thumbnail_url"`
	CoverURL     string   `json:"cover_url"`
	Categories   []string `json:"categories"`
	Cast         []string `json:"cast"`
	Views        int      `json:"views"`
}

type videoPageResponse struct {
	Items      []videoResponse `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

type likeStatusResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

type likeStatusBatchResponse struct {
	Results []struct {
		Code      string `json:"code"`
		Liked     bool   `json:"liked"`
		LikeCount int    `json:"like_count"`
	} `json:"results"`
}

func videoFromResponse(data []byte) (domain.Video, error) {
	var response videoResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return domain.Video{}, fmt.Errorf("failed to parse video response: %w", err)
	}
	if response.Code == "" {
		return domain.Video{}, fmt.Errorf("video response is missing code")
	}
	return response.toDomain(), nil
}

func videoPageFromResponse(data []byte) (domain.VideoPage, error) {
	var response videoPageResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return domain.VideoPage{}, fmt.Errorf("failed to parse video page response: %w", err)
	}

	items := make([]domain.Video, 0, len(response.Items))
	for _, item := range response.Items {
		items = append(items, item.toDomain())
	}

	return domain.VideoPage{
		Items:      items,
		Total:      response.Total,
		Page:       response.Page,
		PageSize:   response.PageSize,
		TotalPages: response.TotalPages,
	}, nil
}

func likeStatusFromResponse(data []byte) (domain.LikeStatus, error) {
	var response likeStatusResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return domain.LikeStatus{}, fmt.Errorf("failed to parse like status response: %w", err)
	}
	return domain.LikeStatus{Liked: response.Liked, Count: response.LikeCount}, nil
}

func likeStatusBatchFromResponse(data []byte) (map[string]domain.LikeStatus, error) {
	var response likeStatusBatchResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse like status batch response: %w", err)
	}

	statuses := make(map[string]domain.LikeStatus, len(response.Results))
	for _, result := range response.Results {
		statuses[result.Code] = domain.LikeStatus{Liked: result.Liked, Count: result.LikeCount}
	}
	return statuses, nil
}

func (v videoResponse) toDomain() domain.Video {
	return domain.Video{
		Code:         v.Code,
		Title:        v.Title,
		Studio:       v.Studio,
		Series:       v.Series,
		Description:  v.Description,
		ReleaseDate:  parseReleaseDate(v.ReleaseDate),
		Duration:     parseDuration(v.Duration),
		ThumbnailURL: v.ThumbnailURL,
		CoverURL:     v.CoverURL,
		Categories:   v.Categories,
		Cast:         v.Cast,
		Views:        v.Views,
	}
}

// parseReleaseDate returns the zero time for missing or malformed dates
func parseReleaseDate(raw string) time.Time {
	if len(raw) < len(time.DateOnly) {
		return time.Time{}
	}
	date, err := time.Parse(time.DateOnly, raw[:len(time.DateOnly)])
	if err != nil {
		return time.Time{}
	}
	return date
}

// parseDuration handles "H:MM:SS" and "M:SS". Anything else is 0.
func parseDuration(raw string) time.Duration {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}

	units := []time.Duration{time.Second, time.Minute, time.Hour}
	var total time.Duration
	for i, part := range parts {
		value, err := strconv.Atoi(part)
		if err != nil || value < 0 {
			return 0
		}
		total += time.Duration(value) * units[len(parts)-1-i]
	}
	return total
}
