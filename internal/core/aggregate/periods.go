package aggregate

import (
	"github.com/shopspring/decimal"

	"github.com/safeledger/dashboard/internal/core/domain"
)

// PeriodStats summarises the postings of one calendar year.
type PeriodStats struct {
	Year     int
	Count    int
	Sum      decimal.Decimal
	Flagged  int
	Accounts int
}

// Comparison sets the current year against the previous one.
type Comparison struct {
	Current         PeriodStats
	Previous        PeriodStats
	CountPercent    int64
	SumPercent      int64
	FlaggedPercent  int64
	AccountsPercent int64
}

// ComparePeriods partitions rows by the calendar year of their date and compares
// currentYear with currentYear-1. Rows without a parsable amount or date are ignored.
func ComparePeriods(rows []domain.Posting, currentYear int) Comparison {
	cur := PeriodStats{Year: currentYear, Sum: decimal.Zero}
	prev := PeriodStats{Year: currentYear - 1, Sum: decimal.Zero}
	curAccounts := make(map[int64]struct{})
	prevAccounts := make(map[int64]struct{})

	for _, p := range rows {
		if !p.HasAmount() || !p.HasDate() {
			continue
		}
		var stats *PeriodStats
		var accounts map[int64]struct{}
		switch p.PostDate.Year() {
		case cur.Year:
			stats, accounts = &cur, curAccounts
		case prev.Year:
			stats, accounts = &prev, prevAccounts
		default:
			continue
		}
		stats.Count++
		stats.Sum = stats.Sum.Add(p.PostAmount.Decimal)
		if p.IsSuspicious {
			stats.Flagged++
		}
		accounts[p.AccountHandleNumber] = struct{}{}
	}
	cur.Accounts = len(curAccounts)
	prev.Accounts = len(prevAccounts)

	return Comparison{
		Current:         cur,
		Previous:        prev,
		CountPercent:    Percent(decimal.NewFromInt(int64(cur.Count)), decimal.NewFromInt(int64(prev.Count))),
		SumPercent:      Percent(cur.Sum, prev.Sum),
		FlaggedPercent:  Percent(decimal.NewFromInt(int64(cur.Flagged)), decimal.NewFromInt(int64(prev.Flagged))),
		AccountsPercent: Percent(decimal.NewFromInt(int64(cur.Accounts)), decimal.NewFromInt(int64(prev.Accounts))),
	}
}

var half = decimal.New(5, -1)

// Percent is round(current / previous * 100), or 0 when previous is not positive.
// Halves round up toward +Inf, so -2.5 becomes -2.
func Percent(current, previous decimal.Decimal) int64 {
	if !previous.IsPositive() {
		return 0
	}
	ratio := current.Mul(decimal.NewFromInt(100)).DivRound(previous, 8)
	return ratio.Add(half).Floor().IntPart()
}
