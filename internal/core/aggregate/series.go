package aggregate

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/safeledger/dashboard/internal/core/domain"
)

// MonthlySum is the total of one calendar month. Label has the MM-YYYY form.
type MonthlySum struct {
	Label string
	Year  int
	Month time.Month
	Total decimal.Decimal
	Count int
}

// AccountSum is the total of one account handle.
type AccountSum struct {
	Account int64
	Label   string
	Total   decimal.Decimal
	Count   int
}

// MonthlySums groups rows by (year, month) and sums their amounts. Rows without a
// parsable amount or date are left out. The result is ordered by year, then month.
func MonthlySums(rows []domain.Posting) []MonthlySum {
	type key struct {
		year  int
		month time.Month
	}
	index := make(map[key]int)
	var out []MonthlySum
	for _, p := range rows {
		if !p.HasAmount() || !p.HasDate() {
			continue
		}
		k := key{p.PostDate.Year(), p.PostDate.Month()}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, MonthlySum{
				Label: fmt.Sprintf("%02d-%04d", int(k.month), k.year),
				Year:  k.year,
				Month: k.month,
				Total: decimal.Zero,
			})
		}
		out[i].Total = out[i].Total.Add(p.PostAmount.Decimal)
		out[i].Count++
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Year != out[b].Year {
			return out[a].Year < out[b].Year
		}
		return out[a].Month < out[b].Month
	})
	return out
}

// TopAccounts groups rows by account, sorts by total descending and keeps the first n
// (all when n <= 0). Ties keep first-appearance order.
func TopAccounts(rows []domain.Posting, n int) []AccountSum {
	index := make(map[int64]int)
	var out []AccountSum
	for _, p := range rows {
		if !p.HasAmount() {
			continue
		}
		i, ok := index[p.AccountHandleNumber]
		if !ok {
			i = len(out)
			index[p.AccountHandleNumber] = i
			out = append(out, AccountSum{
				Account: p.AccountHandleNumber,
				Label:   fmt.Sprintf("Account %d", p.AccountHandleNumber),
				Total:   decimal.Zero,
			})
		}
		out[i].Total = out[i].Total.Add(p.PostAmount.Decimal)
		out[i].Count++
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Total.GreaterThan(out[b].Total)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Total sums every parsable amount in rows.
func Total(rows []domain.Posting) (decimal.Decimal, int) {
	sum := decimal.Zero
	n := 0
	for _, p := range rows {
		if !p.HasAmount() {
			continue
		}
		sum = sum.Add(p.PostAmount.Decimal)
		n++
	}
	return sum, n
}
