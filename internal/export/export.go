// Package export renders table rows as CSV or XLSX downloads. Row types are
// structs whose csv tags name the columns.
package export

import (
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

func ContentType(format string) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

func Filename(base, format string) string {
	return base + "." + format
}

// Write renders rows, a slice of tagged structs, in the given format.
// String cells that a spreadsheet would read as a formula are escaped.
func Write(w io.Writer, format, sheet string, rows any) error {
	rows = escapeRows(rows)
	switch format {
	case FormatCSV:
		return gocsv.Marshal(rows, w)
	case FormatXLSX:
		return WriteXLSX(w, sheet, rows)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func WriteXLSX(w io.Writer, sheet string, rows any) error {
	v := reflect.ValueOf(rows)
	if v.Kind() != reflect.Slice {
		return fmt.Errorf("export: rows must be a slice, got %T", rows)
	}
	t := v.Type().Elem()
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("export: rows must hold structs, got %s", t)
	}

	f := excelize.NewFile()
	idx := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	if sheet != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	cols := make([]int, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name := csvName(t.Field(i))
		if name == "" {
			continue
		}
		f.SetCellValue(sheet, CellName(len(cols), 1), name)
		cols = append(cols, i)
	}
	for r := 0; r < v.Len(); r++ {
		row := v.Index(r)
		for c, fi := range cols {
			f.SetCellValue(sheet, CellName(c, r+2), row.Field(fi).Interface())
		}
	}
	return f.Write(w)
}

// EscapeCell prefixes a quote to values starting with a formula trigger.
func EscapeCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// escapeRows returns a copy of a struct slice with every string field
// passed through EscapeCell. Other values are returned unchanged.
func escapeRows(rows any) any {
	v := reflect.ValueOf(rows)
	if v.Kind() != reflect.Slice || v.Type().Elem().Kind() != reflect.Struct {
		return rows
	}
	out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
	reflect.Copy(out, v)
	t := v.Type().Elem()
	for i := 0; i < out.Len(); i++ {
		row := out.Index(i)
		for f := 0; f < t.NumField(); f++ {
			fv := row.Field(f)
			if fv.Kind() == reflect.String && fv.CanSet() {
				fv.SetString(EscapeCell(fv.String()))
			}
		}
	}
	return out.Interface()
}

func csvName(f reflect.StructField) string {
	if !f.IsExported() {
		return ""
	}
	tag := strings.Split(f.Tag.Get("csv"), ",")[0]
	if tag == "-" {
		return ""
	}
	if tag == "" {
		return f.Name
	}
	return tag
}

// CellName converts a zero-based column and one-based row to an A1 reference.
func CellName(col, row int) string {
	name := ""
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		name = string(rune('A'+(n-1)%26)) + name
	}
	return name + strconv.Itoa(row)
}
