// Package usage reports embedding token consumption against the budget.
package usage

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/semseo/internal/domain"
)

// Period selects the budget window.
type Period string

const (
	// PeriodDay is the current UTC day.
	PeriodDay Period = "day"
	// PeriodMonth is the current UTC month.
	PeriodMonth Period = "month"
)

// ParsePeriod maps a query value to a Period. Empty selects the month.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodMonth:
		return PeriodMonth, nil
	case PeriodDay:
		return PeriodDay, nil
	default:
		return "", fmt.Errorf("%w: period must be \"day\" or \"month\", got %q", domain.ErrInvalidRequest, s)
	}
}

// Report is token usage for one period. Limit and Remaining are -1 when
// the period is unlimited.
type Report struct {
	Period    Period
	Provider  string
	Start     time.Time
	End       time.Time
	Limit     int64
	Used      int64
	Remaining int64
	Exhausted bool
}

// Service builds usage reports.
type Service struct {
	br  BudgetReader
	now func() time.Time
}

// New creates a Service. br may be nil when no budget is configured.
func New(br BudgetReader) *Service {
	return &Service{br: br, now: func() time.Time { return time.Now().UTC() }}
}

// Report returns usage for the given period.
func (s *Service) Report(period Period) Report {
	now := s.now()
	r := Report{Period: period, Limit: -1, Remaining: -1}

	switch period {
	case PeriodDay:
		r.Start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		r.End = r.Start.AddDate(0, 0, 1)
	default:
		r.Period = PeriodMonth
		r.Start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		r.End = r.Start.AddDate(0, 1, 0)
	}

	if s.br == nil {
		return r
	}
	r.Provider = s.br.Provider()
	if r.Period == PeriodDay {
		r.Used = s.br.DailyUsed()
		if l := s.br.DailyLimit(); l > 0 {
			r.Limit, r.Remaining = l, s.br.RemainingDaily()
		}
	} else {
		r.Used = s.br.MonthlyUsed()
		if l := s.br.MonthlyLimit(); l > 0 {
			r.Limit, r.Remaining = l, s.br.RemainingMonthly()
		}
	}
	r.Exhausted = r.Limit > 0 && r.Remaining == 0
	return r
}
