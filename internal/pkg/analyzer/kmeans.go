package analyzer

import (
	"fmt"
	"math"
	"math/rand"
)

// Point is a 2-D sample.
type Point struct {
	X, Y float64
}

// KMeansConfig KMeans 聚类器配置。
type KMeansConfig struct {
	// MaxIterations 最大迭代次数。
	MaxIterations int
	// ConvergenceThreshold 中心移动距离小于该值视为收敛。
	ConvergenceThreshold float64
	// Seed 随机种子，相同输入得到相同结果。
	Seed int64
}

// KMeans 实现基于欧氏距离的二维 KMeans 聚类。
type KMeans struct {
	config *KMeansConfig
}

// NewKMeans 创建 KMeans 聚类器实例。
func NewKMeans(config *KMeansConfig) *KMeans {
	if config == nil {
		config = &KMeansConfig{
			MaxIterations:        300,
			ConvergenceThreshold: 1e-4,
			Seed:                 42,
		}
	}
	return &KMeans{config: config}
}

// Cluster 返回每个点所属簇的下标。
func (c *KMeans) Cluster(points []Point, k int) ([]int, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("no points to cluster")
	}
	if k <= 0 {
		return nil, fmt.Errorf("cluster count must be positive")
	}

	// 点数 <= 簇数时每个点单独成簇
	if len(points) <= k {
		labels := make([]int, len(points))
		for i := range labels {
			labels[i] = i
		}
		return labels, nil
	}

	//nolint:gosec // G404: 聚类初始化，非安全敏感场景
	rng := rand.New(rand.NewSource(c.config.Seed))

	// 1. 初始化聚类中心
	centers := c.initializeCenters(points, k, rng)

	var assignments []int
	// 2. 迭代直到收敛或达到最大迭代次数
	for iter := 0; iter < c.config.MaxIterations; iter++ {
		next := assign(points, centers)
		if iter > 0 && sameAssignments(assignments, next) {
			break
		}
		assignments = next

		newCenters := updateCenters(points, assignments, centers)
		if c.centersConverged(centers, newCenters) {
			break
		}
		centers = newCenters
	}
	return assignments, nil
}

// initializeCenters 使用 k-means++ 策略选择初始中心。
func (c *KMeans) initializeCenters(points []Point, k int, rng *rand.Rand) []Point {
	centers := make([]Point, 0, k)
	centers = append(centers, points[rng.Intn(len(points))])

	for len(centers) < k {
		distances := make([]float64, len(points))
		total := 0.0
		for j, p := range points {
			minDist := math.Inf(1)
			for _, center := range centers {
				minDist = math.Min(minDist, sqDist(p, center))
			}
			distances[j] = minDist
			total += minDist
		}

		// 所有点都与已有中心重合
		if total == 0 {
			centers = append(centers, points[rng.Intn(len(points))])
			continue
		}

		r := rng.Float64() * total
		cumulative := 0.0
		chosen := len(points) - 1
		for j, d := range distances {
			cumulative += d
			if cumulative >= r {
				chosen = j
				break
			}
		}
		centers = append(centers, points[chosen])
	}
	return centers
}

func assign(points []Point, centers []Point) []int {
	out := make([]int, len(points))
	for i, p := range points {
		best, bestDist := 0, math.Inf(1)
		for j, center := range centers {
			if d := sqDist(p, center); d < bestDist {
				best, bestDist = j, d
			}
		}
		out[i] = best
	}
	return out
}

// updateCenters 重新计算每个簇的均值；空簇保留原中心。
func updateCenters(points []Point, assignments []int, old []Point) []Point {
	sums := make([]Point, len(old))
	sizes := make([]int, len(old))
	for i, p := range points {
		a := assignments[i]
		sums[a].X += p.X
		sums[a].Y += p.Y
		sizes[a]++
	}

	centers := make([]Point, len(old))
	for i := range centers {
		if sizes[i] == 0 {
			centers[i] = old[i]
			continue
		}
		centers[i] = Point{X: sums[i].X / float64(sizes[i]), Y: sums[i].Y / float64(sizes[i])}
	}
	return centers
}

func (c *KMeans) centersConverged(old, next []Point) bool {
	for i := range old {
		if math.Sqrt(sqDist(old[i], next[i])) > c.config.ConvergenceThreshold {
			return false
		}
	}
	return true
}

func sameAssignments(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sqDist(a, b Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}
