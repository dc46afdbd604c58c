package aggregate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safeledger/dashboard/internal/core/domain"
)

func posting(id, account int64, amount, date string, suspicious bool) domain.Posting {
	return domain.NewPosting(id, 7, account, amount, "NOK", date, "posting", suspicious)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleRows() []domain.Posting {
	return []domain.Posting{
		posting(1, 4000, "100", "01-01-2023", false),
		posting(2, 4000, "50", "15-01-2023", true),
		posting(3, 5000, "10", "01-02-2023", false),
		posting(4, 6000, "oops", "03-02-2023", true),
		posting(5, 5000, "25.50", "28-12-2022", false),
		posting(6, 7000, "5", "garbage", false),
	}
}

func TestFilterRows_EmptyFilterKeepsEverything(t *testing.T) {
	rows := sampleRows()
	got := FilterRows(rows, Filter{Suspicious: SuspiciousAll})
	assert.Equal(t, rows, got)

	got = FilterRows(rows, Filter{})
	assert.Equal(t, rows, got)
}

func TestFilterRows_IsSubset(t *testing.T) {
	rows := sampleRows()
	filters := []Filter{
		{AccountHandleNumber: "4000"},
		{Suspicious: SuspiciousOnly},
		{Suspicious: SuspiciousExclude},
		{From: day(2023, time.January, 10)},
		{To: day(2023, time.January, 31), Suspicious: SuspiciousExclude},
		{Search: "nok"},
	}
	ids := make(map[int64]bool)
	for _, p := range rows {
		ids[p.ID] = true
	}
	for _, f := range filters {
		for _, p := range FilterRows(rows, f) {
			assert.True(t, ids[p.ID], "filter %+v fabricated row %d", f, p.ID)
		}
	}
}

func TestFilterRows_Account(t *testing.T) {
	got := FilterRows(sampleRows(), Filter{AccountHandleNumber: " 5000 "})
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, int64(5), got[1].ID)
}

func TestFilterRows_Suspicious(t *testing.T) {
	only := FilterRows(sampleRows(), Filter{Suspicious: SuspiciousOnly})
	require.Len(t, only, 2)
	for _, p := range only {
		assert.True(t, p.IsSuspicious)
	}

	exclude := FilterRows(sampleRows(), Filter{Suspicious: SuspiciousExclude})
	require.Len(t, exclude, 4)
	for _, p := range exclude {
		assert.False(t, p.IsSuspicious)
	}
}

func TestFilterRows_DateRangeIsInclusiveAndCalendarBased(t *testing.T) {
	// 15-01-2023 sorts lexically after 01-02-2023; only a parsed date comparison gets this right.
	got := FilterRows(sampleRows(), Filter{
		From: day(2023, time.January, 15),
		To:   time.Date(2023, time.February, 1, 13, 45, 0, 0, time.UTC),
	})
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
}

func TestFilterRows_DateBoundDropsUnparsableDates(t *testing.T) {
	got := FilterRows(sampleRows(), Filter{From: day(2000, time.January, 1)})
	for _, p := range got {
		assert.NotEqual(t, int64(6), p.ID)
	}
}

func TestFilterRows_Search(t *testing.T) {
	rows := sampleRows()
	rows[2].PostDescription = "Office Rent"
	got := FilterRows(rows, Filter{Search: "office rent"})
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].ID)
}

func TestParseSuspiciousFilter(t *testing.T) {
	f, err := ParseSuspiciousFilter("")
	require.NoError(t, err)
	assert.Equal(t, SuspiciousAll, f)

	f, err = ParseSuspiciousFilter("ONLY")
	require.NoError(t, err)
	assert.Equal(t, SuspiciousOnly, f)

	_, err = ParseSuspiciousFilter("maybe")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSelectIDs(t *testing.T) {
	rows := sampleRows()
	got := SelectIDs(rows, []int64{5, 1, 99})
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(5), got[1].ID)

	assert.Equal(t, rows, SelectIDs(rows, nil))
}

func TestMonthlySums_ChronologicalOrder(t *testing.T) {
	rows := []domain.Posting{
		posting(1, 1, "100", "01-01-2023", false),
		posting(2, 1, "50", "15-01-2023", false),
		posting(3, 1, "10", "01-02-2023", false),
	}
	got := MonthlySums(rows)
	require.Len(t, got, 2)
	assert.Equal(t, "01-2023", got[0].Label)
	assert.True(t, got[0].Total.Equal(dec("150")))
	assert.Equal(t, "02-2023", got[1].Label)
	assert.True(t, got[1].Total.Equal(dec("10")))
}

func TestMonthlySums_SortsByYearThenMonth(t *testing.T) {
	got := MonthlySums(sampleRows())
	require.Len(t, got, 3)
	assert.Equal(t, []string{"12-2022", "01-2023", "02-2023"}, []string{got[0].Label, got[1].Label, got[2].Label})
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		assert.True(t, prev.Year < cur.Year || (prev.Year == cur.Year && prev.Month < cur.Month))
	}
}

func TestMonthlySums_TotalMatchesParsableRows(t *testing.T) {
	rows := FilterRows(sampleRows(), Filter{From: day(2022, time.January, 1)})
	sum := decimal.Zero
	for _, m := range MonthlySums(rows) {
		sum = sum.Add(m.Total)
	}
	want, _ := Total(rows)
	assert.True(t, sum.Equal(want), "monthly total %s != row total %s", sum, want)
	assert.True(t, sum.Equal(dec("185.50")))
}

func TestTopAccounts(t *testing.T) {
	rows := []domain.Posting{
		posting(1, 1, "10", "01-01-2023", false),
		posting(2, 2, "30", "01-01-2023", false),
		posting(3, 3, "20", "01-01-2023", false),
		posting(4, 4, "20", "01-01-2023", false),
		posting(5, 5, "5", "01-01-2023", false),
		posting(6, 6, "1", "01-01-2023", false),
		posting(7, 1, "15", "01-01-2023", false),
		posting(8, 7, "nan?", "01-01-2023", false),
	}
	got := TopAccounts(rows, 5)
	require.Len(t, got, 5)
	assert.Equal(t, []int64{2, 1, 3, 4, 5}, []int64{got[0].Account, got[1].Account, got[2].Account, got[3].Account, got[4].Account})
	assert.Equal(t, "Account 2", got[0].Label)
	assert.True(t, got[1].Total.Equal(dec("25")))

	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Total.GreaterThan(got[i-1].Total))
	}
	assert.Equal(t, got, TopAccounts(rows, 5), "must be deterministic")
	assert.Len(t, TopAccounts(rows, 0), 6)
}

func TestComparePeriods(t *testing.T) {
	rows := []domain.Posting{
		posting(1, 1, "100", "01-03-2023", false),
		posting(2, 2, "50", "01-04-2023", true),
		posting(3, 1, "40", "01-03-2024", true),
		posting(4, 1, "bad", "01-03-2024", true),
		posting(5, 1, "1000", "01-03-2021", false),
	}
	got := ComparePeriods(rows, 2024)

	assert.Equal(t, 2024, got.Current.Year)
	assert.Equal(t, 1, got.Current.Count)
	assert.True(t, got.Current.Sum.Equal(dec("40")))
	assert.Equal(t, 1, got.Current.Flagged)
	assert.Equal(t, 1, got.Current.Accounts)

	assert.Equal(t, 2, got.Previous.Count)
	assert.True(t, got.Previous.Sum.Equal(dec("150")))

	assert.Equal(t, int64(50), got.CountPercent)
	assert.Equal(t, int64(27), got.SumPercent)
	assert.Equal(t, int64(100), got.FlaggedPercent)
	assert.Equal(t, int64(50), got.AccountsPercent)
}

func TestComparePeriods_NoPreviousYearIsZeroPercent(t *testing.T) {
	got := ComparePeriods([]domain.Posting{posting(1, 1, "10", "01-01-2024", false)}, 2024)
	assert.Equal(t, int64(0), got.CountPercent)
	assert.Equal(t, int64(0), got.SumPercent)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, int64(0), Percent(dec("5"), decimal.Zero))
	assert.Equal(t, int64(0), Percent(dec("5"), dec("-2")))
	assert.Equal(t, int64(33), Percent(dec("1"), dec("3")))
	assert.Equal(t, int64(67), Percent(dec("2"), dec("3")))
	assert.Equal(t, int64(250), Percent(dec("5"), dec("2")))
}

func TestPercent_HalvesRoundUp(t *testing.T) {
	assert.Equal(t, int64(1), Percent(dec("1"), dec("200")))
	assert.Equal(t, int64(0), Percent(dec("-1"), dec("200")))
	assert.Equal(t, int64(-2), Percent(dec("-5"), dec("200")))
	assert.Equal(t, int64(-3), Percent(dec("-7"), dec("200")))
	assert.Equal(t, int64(-33), Percent(dec("-1"), dec("3")))
}

func TestSummarize(t *testing.T) {
	rows := []domain.Posting{
		posting(1, 1, "100", "01-03-2023", false),
		posting(2, 2, "50", "01-04-2023", true),
		posting(3, 1, "40", "01-03-2024", true),
	}
	got := Summarize(rows, 2024, 5)

	require.Len(t, got.Cards, 4)
	assert.Equal(t, StatCard{Label: "Postings amount", Value: "40.00", Percent: 27}, got.Cards[0])
	assert.Equal(t, "1", got.Cards[1].Value)
	assert.Equal(t, int64(50), got.Cards[1].Percent)
	assert.Len(t, got.Monthly, 3)
	assert.Len(t, got.TopAccounts, 2)
}
