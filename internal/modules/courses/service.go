package courses

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/prashanttechie/portfolio-project/internal/shared/apperr"
)

type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service { return &Service{repo: repo} }

type CreateInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Duration    string
	Level       string
	Category    string
	Image       string
	Featured    bool
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Course, error) {
	fields := map[string]string{}
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "This field is required."
	}
	if !in.Price.IsPositive() {
		fields["price"] = "Price must be greater than zero."
	} else if !in.Price.Equal(in.Price.Round(2)) {
		fields["price"] = "Price must have at most two decimal places."
	}
	if len(fields) > 0 {
		return Course{}, apperr.InvalidErr("Invalid course.", fields)
	}

	c := Course{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Duration:    strings.TrimSpace(in.Duration),
		Level:       strings.TrimSpace(in.Level),
		Category:    strings.TrimSpace(in.Category),
		Featured:    in.Featured,
		Published:   true,
	}
	if img := strings.TrimSpace(in.Image); img != "" {
		c.Image = &img
	}

	if err := s.repo.Create(ctx, &c); err != nil {
		return Course{}, apperr.Wrap(err)
	}
	return c, nil
}

func (s *Service) ListPublished(ctx context.Context, category string) ([]Course, error) {
	out, err := s.repo.ListPublished(ctx, category)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return out, nil
}
