package analyzer

import (
	"encoding/base64"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Tabular summarises spreadsheets: a statistics table and, when at least
// two numeric columns exist, a k-means scatter plot plus a one-step
// linear forecast of the first numeric column.
type Tabular struct {
	clusters int
	kmeans   *KMeans
}

// NewTabular creates a tabular analyzer that clusters into k groups.
func NewTabular(k int) *Tabular {
	if k <= 0 {
		k = 3
	}
	return &Tabular{clusters: k, kmeans: NewKMeans(nil)}
}

// Analyze loads path and returns the insight text.
func (a *Tabular) Analyze(path string) (string, error) {
	t, err := LoadTable(path)
	if err != nil {
		return "", err
	}

	insights := "Data Summary:\n" + Describe(t)

	numeric := t.NumericColumns()
	if len(numeric) < 2 {
		return insights, nil
	}

	xCol, yCol := numeric[0], numeric[1]
	var points []Point
	for i := range t.Rows {
		x, y := xCol.Values[i], yCol.Values[i]
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		points = append(points, Point{X: x, Y: y})
	}
	if len(points) == 0 {
		return insights, nil
	}

	labels, err := a.kmeans.Cluster(points, a.clusters)
	if err != nil {
		return "", err
	}
	xLabel, yLabel := t.AxisLabels()
	png, err := ScatterPNG(points, labels, xLabel, yLabel)
	if err != nil {
		return "", err
	}

	insights += fmt.Sprintf("\n\nForecast:\n%s\n\n<img src='data:image/png;base64,%s' style='max-width: 300px;' />",
		Forecast(xCol, len(t.Rows)), base64.StdEncoding.EncodeToString(png))
	return insights, nil
}

// Forecast fits a least-squares line over the row index and predicts the
// value at the next index.
func Forecast(col NumericColumn, rows int) string {
	if rows <= 1 {
		return "Not enough data for forecasting."
	}

	var xs, ys []float64
	for i, v := range col.Values {
		if math.IsNaN(v) {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, v)
	}
	if len(xs) < 2 {
		return "Not enough data for forecasting."
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return fmt.Sprintf("Forecast for next period (%s): %.2f", col.Name, alpha+beta*float64(rows))
}
