package analyzer

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var numericStats = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

var categoricalStats = []string{"count", "unique", "top", "freq"}

// Describe renders summary statistics as an aligned text table. Numeric
// columns get count/mean/std/quartiles; when there are none, every column
// gets count/unique/top/freq instead.
func Describe(t *Table) string {
	numeric := t.NumericColumns()
	if len(numeric) > 0 {
		headers := make([]string, len(numeric))
		cells := make([][]string, len(numeric))
		for i, col := range numeric {
			headers[i] = col.Name
			cells[i] = describeNumeric(col.Values)
		}
		return renderStats(numericStats, headers, cells)
	}

	cells := make([][]string, len(t.Columns))
	for j := range t.Columns {
		cells[j] = describeCategorical(t, j)
	}
	return renderStats(categoricalStats, t.Columns, cells)
}

func describeNumeric(values []float64) []string {
	xs := present(values)
	if len(xs) == 0 {
		nan := formatStat(math.NaN())
		return []string{formatStat(0), nan, nan, nan, nan, nan, nan, nan}
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	return []string{
		formatStat(float64(len(xs))),
		formatStat(stat.Mean(xs, nil)),
		formatStat(stat.StdDev(xs, nil)),
		formatStat(floats.Min(xs)),
		formatStat(quantile(sorted, 0.25)),
		formatStat(quantile(sorted, 0.50)),
		formatStat(quantile(sorted, 0.75)),
		formatStat(floats.Max(xs)),
	}
}

// quantile interpolates linearly between the closest ranks of sorted
// (the R type 7 estimator).
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

func describeCategorical(t *Table, j int) []string {
	counts := make(map[string]int)
	var order []string
	n := 0
	for _, row := range t.Rows {
		v := row[j]
		if v == "" {
			continue
		}
		n++
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	if n == 0 {
		return []string{"0", "0", "NaN", "NaN"}
	}

	top := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[top] {
			top = v
		}
	}
	return []string{strconv.Itoa(n), strconv.Itoa(len(counts)), top, strconv.Itoa(counts[top])}
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// renderStats lays out rows (statistic names, left aligned) against
// columns (right aligned), separated by two spaces.
func renderStats(rowNames, headers []string, cells [][]string) string {
	labelWidth := 0
	for _, r := range rowNames {
		labelWidth = max(labelWidth, len(r))
	}
	widths := make([]int, len(headers))
	for j, h := range headers {
		widths[j] = len(h)
		for _, c := range cells[j] {
			widths[j] = max(widths[j], len(c))
		}
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", labelWidth))
	for j, h := range headers {
		fmt.Fprintf(&sb, "  %*s", widths[j], h)
	}
	for i, r := range rowNames {
		sb.WriteByte('\n')
		fmt.Fprintf(&sb, "%-*s", labelWidth, r)
		for j := range headers {
			fmt.Fprintf(&sb, "  %*s", widths[j], cells[j][i])
		}
	}
	return sb.String()
}
