// Package aggregate derives the shapes the dashboard views render from a posting
// snapshot. Every function is pure: inputs are never modified and the output holds
// no reference to cached state beyond the postings themselves.
package aggregate

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/safeledger/dashboard/internal/core/domain"
)

// SuspiciousFilter selects postings by their suspicious flag.
type SuspiciousFilter string

const (
	SuspiciousAll     SuspiciousFilter = "all"
	SuspiciousOnly    SuspiciousFilter = "only"
	SuspiciousExclude SuspiciousFilter = "exclude"
)

// ParseSuspiciousFilter maps a query value to a filter; empty means all.
func ParseSuspiciousFilter(s string) (SuspiciousFilter, error) {
	switch f := SuspiciousFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return SuspiciousAll, nil
	case SuspiciousAll, SuspiciousOnly, SuspiciousExclude:
		return f, nil
	}
	return "", fmt.Errorf("%w: suspicious must be one of all, only, exclude", domain.ErrInvalidInput)
}

// Filter narrows the rows of a view. Zero values mean "no constraint".
type Filter struct {
	AccountHandleNumber string
	From                time.Time
	To                  time.Time
	Suspicious          SuspiciousFilter
	Search              string
}

// FilterRows keeps a posting iff it matches every constraint set in f. Date bounds are
// inclusive and compared as calendar dates; rows whose date did not parse are dropped
// whenever a bound is given.
func FilterRows(rows []domain.Posting, f Filter) []domain.Posting {
	account := strings.TrimSpace(f.AccountHandleNumber)
	from := calendarDate(f.From)
	to := calendarDate(f.To)
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]domain.Posting, 0, len(rows))
	for _, p := range rows {
		if account != "" && strconv.FormatInt(p.AccountHandleNumber, 10) != account {
			continue
		}
		switch f.Suspicious {
		case SuspiciousOnly:
			if !p.IsSuspicious {
				continue
			}
		case SuspiciousExclude:
			if p.IsSuspicious {
				continue
			}
		}
		if !from.IsZero() || !to.IsZero() {
			if !p.HasDate() {
				continue
			}
			if !from.IsZero() && p.PostDate.Before(from) {
				continue
			}
			if !to.IsZero() && p.PostDate.After(to) {
				continue
			}
		}
		if search != "" && !strings.Contains(searchText(p), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SelectIDs returns the rows whose id is in ids, in row order. An empty ids keeps all rows.
func SelectIDs(rows []domain.Posting, ids []int64) []domain.Posting {
	if len(ids) == 0 {
		return rows
	}
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]domain.Posting, 0, len(ids))
	for _, p := range rows {
		if _, ok := want[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

func calendarDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func searchText(p domain.Posting) string {
	return strings.ToLower(strings.Join([]string{
		strconv.FormatInt(p.ID, 10),
		strconv.FormatInt(p.Company, 10),
		strconv.FormatInt(p.AccountHandleNumber, 10),
		p.RawAmount,
		p.PostCurrency,
		p.RawDate,
		p.PostDescription,
		strconv.FormatBool(p.IsSuspicious),
	}, " "))
}
