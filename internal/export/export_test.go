package export

import (
	"bytes"
	"testing"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Name   string  `csv:"name"`
	Weight float64 `csv:"weight_kg"`
	Secret string  `csv:"-"`
}

func TestCellName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "A1", CellName(0, 1))
	assert.Equal(t, "Z3", CellName(25, 3))
	assert.Equal(t, "AA2", CellName(26, 2))
	assert.Equal(t, "AZ9", CellName(51, 9))
	assert.Equal(t, "BA1", CellName(52, 1))
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("pdf")
	require.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, "Products", []row{{Name: "Kraft", Weight: 48, Secret: "x"}}))
	assert.Equal(t, "name,weight_kg\nKraft,48\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, "Products", []row{{Name: "Kraft", Weight: 48}}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, "name", f.GetCellValue("Products", "A1"))
	assert.Equal(t, "weight_kg", f.GetCellValue("Products", "B1"))
	assert.Equal(t, "Kraft", f.GetCellValue("Products", "A2"))
	assert.Empty(t, f.GetCellValue("Products", "C1"))
}

func TestWriteRejectsNonSlices(t *testing.T) {
	t.Parallel()

	require.Error(t, WriteXLSX(&bytes.Buffer{}, "S", row{}))
	require.Error(t, Write(&bytes.Buffer{}, "pdf", "S", []row{}))
}

func TestEscapeCell(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":         "",
		"Kraft":    "Kraft",
		"=1+2":     "'=1+2",
		"+91 98":   "'+91 98",
		"-cmd":     "'-cmd",
		"@SUM(A1)": "'@SUM(A1)",
		"\tx":      "'\tx",
		"\rx":      "'\rx",
		"a=b":      "a=b",
		"'already": "'already",
	}
	for in, want := range tests {
		assert.Equal(t, want, EscapeCell(in), in)
	}
}

func TestWriteEscapesFormulas(t *testing.T) {
	t.Parallel()

	rows := []row{{Name: "=1+2", Weight: -4}, {Name: "@cmd", Weight: 1}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, "Products", rows))
	assert.Equal(t, "name,weight_kg\n'=1+2,-4\n'@cmd,1\n", buf.String())
	assert.Equal(t, "=1+2", rows[0].Name, "input rows are not modified")

	buf.Reset()
	require.NoError(t, Write(&buf, FormatXLSX, "Products", rows))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, "'=1+2", f.GetCellValue("Products", "A2"))
	assert.Empty(t, f.GetCellFormula("Products", "A2"))
	assert.Equal(t, "'@cmd", f.GetCellValue("Products", "A3"))
}
