package domain

// MaxLikeStatusBatchSize is the largest number of codes the catalog accepts in one like status batch
const MaxLikeStatusBatchSize = 50

type LikeStatus struct {
	Liked bool
	Count int
}

type FeedItem struct {
	Video      Video
	LikeStatus LikeStatus
}

type Feed struct {
	Items      []FeedItem
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}
