package analyzer

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is a loaded spreadsheet: a header row plus string cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// LoadTable reads a .csv or .xlsx file. The first row is the header.
// For workbooks only the first sheet is read.
func LoadTable(path string) (*Table, error) {
	var (
		records [][]string
		err     error
	)
	switch lower := strings.ToLower(path); {
	case strings.HasSuffix(lower, ".csv"):
		records, err = readCSV(path)
	case strings.HasSuffix(lower, ".xlsx"):
		records, err = readXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported data format: %s", path)
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no columns to parse from file")
	}

	t := &Table{Columns: records[0]}
	for _, rec := range records[1:] {
		row := make([]string, len(t.Columns))
		copy(row, rec)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r.ReadAll()
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

// AxisLabels 返回散点图坐标轴标签：表头前两列，与列类型无关。
func (t *Table) AxisLabels() (string, string) {
	var x, y string
	if len(t.Columns) > 0 {
		x = t.Columns[0]
	}
	if len(t.Columns) > 1 {
		y = t.Columns[1]
	}
	return x, y
}

// NumericColumn is a column whose non-empty cells all parse as numbers.
// Empty cells are NaN.
type NumericColumn struct {
	Name   string
	Values []float64
}

// NumericColumns returns the numeric columns in header order.
func (t *Table) NumericColumns() []NumericColumn {
	var cols []NumericColumn
	for j, name := range t.Columns {
		values := make([]float64, len(t.Rows))
		seen, numeric := false, true
		for i, row := range t.Rows {
			cell := strings.TrimSpace(row[j])
			if cell == "" {
				values[i] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				numeric = false
				break
			}
			values[i] = v
			seen = true
		}
		if numeric && seen {
			cols = append(cols, NumericColumn{Name: name, Values: values})
		}
	}
	return cols
}

// present drops NaN values.
func present(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
