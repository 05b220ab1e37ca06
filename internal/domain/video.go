package domain

import "time"

type Video struct {
	Code         string
	Title        string
	Studio       string
	Series       string
	Description  string
	ReleaseDate  time.Time
	Duration     time.Duration
	ThumbnailURL string
	CoverURL     string
	Categories   []string
	Cast         []string
	Views        int
}

type VideoPage struct {
	Items      []Video
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

func (p VideoPage) HasNextPage() bool {
	return p.Page < p.TotalPages
}
