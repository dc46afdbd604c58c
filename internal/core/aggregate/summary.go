package aggregate

import (
	"strconv"

	"github.com/safeledger/dashboard/internal/core/domain"
)

// StatCard is one headline figure of the dashboard with its year-over-year change.
type StatCard struct {
	Label   string
	Value   string
	Percent int64
}

// Summary backs the dashboard page.
type Summary struct {
	Year        int
	Cards       []StatCard
	Monthly     []MonthlySum
	TopAccounts []AccountSum
}

// Summarize builds the dashboard from rows for the given year.
func Summarize(rows []domain.Posting, year, topN int) Summary {
	cmp := ComparePeriods(rows, year)
	return Summary{
		Year: year,
		Cards: []StatCard{
			{Label: "Postings amount", Value: cmp.Current.Sum.StringFixed(2), Percent: cmp.SumPercent},
			{Label: "Postings count", Value: strconv.Itoa(cmp.Current.Count), Percent: cmp.CountPercent},
			{Label: "Flagged postings", Value: strconv.Itoa(cmp.Current.Flagged), Percent: cmp.FlaggedPercent},
			{Label: "Active accounts", Value: strconv.Itoa(cmp.Current.Accounts), Percent: cmp.AccountsPercent},
		},
		Monthly:     MonthlySums(rows),
		TopAccounts: TopAccounts(rows, topN),
	}
}
