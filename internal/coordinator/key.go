package coordinator

import (
	"fmt"
	"strconv"
)

type Resource string

const (
	ResourceVideo      Resource = "video"
	ResourceVideoPage  Resource = "video_page"
	ResourceLikeStatus Resource = "like_status"
	ResourceStats      Resource = "stats"
)

// Key identifies a logical request. Keys are compared by value, so two call sites
// asking for the same resource with the same parameters share in-flight work.
type Key struct {
	Resource Resource
	ID       string
	UserID   string
	Page     int
	PageSize int
	Query    string
}

func VideoKey(code string) Key {
	return Key{Resource: ResourceVideo, ID: code}
}

func VideoPageKey(page, pageSize int, query string) Key {
	return Key{Resource: ResourceVideoPage, Page: page, PageSize: pageSize, Query: query}
}

func LikeStatusKey(code, userID string) Key {
	return Key{Resource: ResourceLikeStatus, ID: code, UserID: userID}
}

func StatsKey() Key {
	return Key{Resource: ResourceStats}
}

// String is meant for logs and span attributes only
func (k Key) String() string {
	return fmt.Sprintf(
		"%s{id=%s,userID=%s,page=%d,pageSize=%d,query=%s}",
		k.Resource,
		strconv.Quote(k.ID),
		strconv.Quote(k.UserID),
		k.Page,
		k.PageSize,
		strconv.Quote(k.Query),
	)
}
