package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Postings arrive with dates in day-month-year form; ISO dates are accepted as well.
const (
	PostDateLayout = "02-01-2006"
	ISODateLayout  = "2006-01-02"
)

var ErrInvalidDate = errors.New("invalid date")

// Posting is a single ledger entry of one company.
//
// PostAmount is invalid when the backend value did not parse as a decimal, and
// PostDate is zero when the date did not parse. The raw values are kept for display.
type Posting struct {
	ID                  int64
	Company             int64
	AccountHandleNumber int64
	PostAmount          decimal.NullDecimal
	RawAmount           string
	PostCurrency        string
	PostDate            time.Time
	RawDate             string
	PostDescription     string
	IsSuspicious        bool
}

// HasAmount reports whether the amount takes part in sums and counts.
func (p Posting) HasAmount() bool { return p.PostAmount.Valid }

// HasDate reports whether the date takes part in date-based grouping and filtering.
func (p Posting) HasDate() bool { return !p.PostDate.IsZero() }

// DisplayDate renders the date in day-month-year form, falling back to the raw value.
func (p Posting) DisplayDate() string {
	if !p.HasDate() {
		return p.RawDate
	}
	return p.PostDate.Format(PostDateLayout)
}

// ParsePostDate parses a DD-MM-YYYY or YYYY-MM-DD date into a UTC calendar date.
func ParsePostDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{PostDateLayout, ISODateLayout} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// ParseAmount parses a decimal amount; the result is invalid for non-numeric input.
func ParseAmount(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// NewPosting builds a Posting from raw wire values, flagging unparsable amount and date.
func NewPosting(id, company, account int64, amount, currency, date, description string, suspicious bool) Posting {
	p := Posting{
		ID:                  id,
		Company:             company,
		AccountHandleNumber: account,
		PostAmount:          ParseAmount(amount),
		RawAmount:           amount,
		PostCurrency:        currency,
		RawDate:             date,
		PostDescription:     description,
		IsSuspicious:        suspicious,
	}
	if t, err := ParsePostDate(date); err == nil {
		p.PostDate = t
	}
	return p
}
