package courses

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Get(ctx context.Context, id uint) (Course, error) {
	var c Course
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Course{}, ErrCourseNotFound
		}
		return Course{}, err
	}
	return c, nil
}

// ListPublished returns published courses, newest first. An empty or "all" category lists everything.
func (r *Repo) ListPublished(ctx context.Context, category string) ([]Course, error) {
	q := r.db.WithContext(ctx).Model(&Course{}).Where("published = ?", true)
	if c := strings.TrimSpace(category); c != "" && c != "all" {
		q = q.Where("category = ?", c)
	}

	var out []Course
	if err := q.Order("created_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) Create(ctx context.Context, c *Course) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *Repo) ListByIDs(ctx context.Context, ids []uint) (map[uint]Course, error) {
	out := make(map[uint]Course, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []Course
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, c := range rows {
		out[c.ID] = c
	}
	return out, nil
}
