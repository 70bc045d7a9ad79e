package payments

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/prashanttechie/portfolio-project/internal/modules/courses"
	"github.com/prashanttechie/portfolio-project/internal/modules/enrollments"
	"github.com/prashanttechie/portfolio-project/internal/shared/apperr"
)

const (
	defaultLedgerLimit = 50
	maxLedgerLimit     = 200
)

type Ledger struct{ db *gorm.DB }

func NewLedger(db *gorm.DB) *Ledger { return &Ledger{db: db} }

type LedgerParams struct {
	Status string
	Limit  int
}

type LedgerEntry struct {
	Payment    Payment
	Enrollment enrollments.Enrollment
	Course     courses.Course
}

type StatusStat struct {
	Status enrollments.PaymentStatus
	Count  int64
	Sum    decimal.Decimal
}

type LedgerResult struct {
	Items        []LedgerEntry
	Stats        []StatusStat
	TotalRevenue decimal.Decimal
}

// List returns the newest payments with their enrollment and course, plus totals over
// the whole table.
func (l *Ledger) List(ctx context.Context, in LedgerParams) (LedgerResult, error) {
	limit := in.Limit
	if limit < 1 {
		limit = defaultLedgerLimit
	}
	if limit > maxLedgerLimit {
		limit = maxLedgerLimit
	}

	q := l.db.WithContext(ctx).Model(&Payment{})
	if st := strings.ToUpper(strings.TrimSpace(in.Status)); st != "" {
		if !enrollments.PaymentStatus(st).Valid() {
			return LedgerResult{}, apperr.InvalidErr("Unknown payment status", map[string]string{"status": st})
		}
		q = q.Where("status = ?", st)
	}

	var rows []Payment
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return LedgerResult{}, err
	}

	enIDs := make([]uint, 0, len(rows))
	for _, p := range rows {
		enIDs = append(enIDs, p.EnrollmentID)
	}
	ens, err := enrollments.NewRepo(l.db).ListByIDs(ctx, enIDs)
	if err != nil {
		return LedgerResult{}, err
	}
	courseIDs := make([]uint, 0, len(ens))
	for _, e := range ens {
		courseIDs = append(courseIDs, e.CourseID)
	}
	cs, err := courses.NewRepo(l.db).ListByIDs(ctx, courseIDs)
	if err != nil {
		return LedgerResult{}, err
	}

	res := LedgerResult{Items: make([]LedgerEntry, 0, len(rows)), TotalRevenue: decimal.Zero}
	for _, p := range rows {
		en := ens[p.EnrollmentID]
		res.Items = append(res.Items, LedgerEntry{Payment: p, Enrollment: en, Course: cs[en.CourseID]})
	}

	res.Stats, err = l.stats(ctx)
	if err != nil {
		return LedgerResult{}, err
	}
	for _, s := range res.Stats {
		if s.Status == enrollments.StatusCompleted {
			res.TotalRevenue = s.Sum
		}
	}
	return res, nil
}

func (l *Ledger) stats(ctx context.Context) ([]StatusStat, error) {
	var out []StatusStat
	err := l.db.WithContext(ctx).Model(&Payment{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS sum").
		Group("status").
		Order("status").
		Scan(&out).Error
	return out, err
}
