package domaintest

import (
	"fmt"
	"time"

	"github.com/Amund211/vidcat/internal/domain"
)

type videoBuilder struct {
	video *domain.Video
}

func (vb *videoBuilder) WithTitle(title string) *videoBuilder {
	vb.video.Title = title
	return vb
}

func (vb *videoBuilder) WithStudio(studio string) *videoBuilder {
	vb.video.Studio = studio
	return vb
}

func (vb *videoBuilder) WithDuration(duration time.Duration) *videoBuilder {
	vb.video.Duration = duration
	return vb
}

func (vb *videoBuilder) Build() domain.Video {
	return *vb.video
}

func NewVideoBuilder(code string) *videoBuilder {
	return &videoBuilder{
		video: &domain.Video{
			Code:        code,
			Title:       fmt.Sprintf("Video %s", code),
			Studio:      "Studio Alpha",
			ReleaseDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			Duration:    2 * time.Hour,
		},
	}
}

// NewVideoPage returns page number page of a catalog with total videos, pageSize per page
func NewVideoPage(page, pageSize, total int) domain.VideoPage {
	totalPages := (total + pageSize - 1) / pageSize

	items := []domain.Video{}
	for i := (page - 1) * pageSize; i < min(page*pageSize, total); i++ {
		items = append(items, NewVideoBuilder(fmt.Sprintf("CODE-%03d", i+1)).Build())
	}

	return domain.VideoPage{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
