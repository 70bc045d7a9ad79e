package courses_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prashanttechie/portfolio-project/internal/modules/courses"
	"github.com/prashanttechie/portfolio-project/internal/shared/apperr"
	"github.com/prashanttechie/portfolio-project/internal/testutil"
)

func TestService_Create(t *testing.T) {
	db := testutil.NewDB(t)
	svc := courses.NewService(courses.NewRepo(db))

	c, err := svc.Create(context.Background(), courses.CreateInput{
		Title:    " Go Fundamentals ",
		Price:    decimal.RequireFromString("2999.00"),
		Category: "web",
	})
	require.NoError(t, err)
	assert.NotZero(t, c.ID)
	assert.Equal(t, "Go Fundamentals", c.Title)
	assert.True(t, c.Published)

	got, err := courses.NewRepo(db).Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("2999")))
}

func TestService_CreateValidation(t *testing.T) {
	svc := courses.NewService(courses.NewRepo(testutil.NewDB(t)))

	cases := map[string]courses.CreateInput{
		"missing title": {Price: decimal.NewFromInt(1)},
		"zero price":    {Title: "x", Price: decimal.Zero},
		"sub-paise":     {Title: "x", Price: decimal.RequireFromString("10.005")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), in)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.Invalid))
		})
	}
}

func TestRepo_ListPublishedByCategory(t *testing.T) {
	db := testutil.NewDB(t)
	a := testutil.SeedCourse(t, db, "A", "10.00")
	b := testutil.SeedCourse(t, db, "B", "20.00")
	require.NoError(t, db.Model(&b).Update("category", "data").Error)

	repo := courses.NewRepo(db)
	all, err := repo.ListPublished(context.Background(), "all")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	web, err := repo.ListPublished(context.Background(), "web")
	require.NoError(t, err)
	require.Len(t, web, 1)
	assert.Equal(t, a.ID, web[0].ID)

	_, err = repo.Get(context.Background(), 999)
	assert.ErrorIs(t, err, courses.ErrCourseNotFound)
}
