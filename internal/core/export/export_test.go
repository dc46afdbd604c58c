package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/safeledger/dashboard/internal/core/domain"
)

func rows() []domain.Posting {
	return []domain.Posting{
		domain.NewPosting(1, 7, 4000, "100.00", "NOK", "2023-01-01", `Rent "Jan"`, false),
		domain.NewPosting(2, 7, 4100, "n/a", "EUR", "15-01-2023", "Coffee, beans", true),
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows()))

	want := "id,accountHandleNumber,postDescription,postAmount,postCurrency,postDate,is_suspicious\r\n" +
		`"1","4000","Rent ""Jan""","100.00","NOK","01-01-2023","false"` + "\r\n" +
		`"2","4100","Coffee, beans","n/a","EUR","15-01-2023","true"`
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "id,accountHandleNumber,postDescription,postAmount,postCurrency,postDate,is_suspicious", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, rows()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, Columns, got[0])
	assert.Equal(t, "4000", got[1][1])
	assert.Equal(t, "100", got[1][3])
	assert.Equal(t, "n/a", got[2][3])
	assert.Equal(t, "15-01-2023", got[2][5])
}
