package colour

import (
	"context"
	"fmt"
	"image"
	"math"
	"math/rand/v2"
)

// KMeansExtractor implements colour extraction using k-means clustering.
type KMeansExtractor struct {
	maxIterations int
	convergence   float64
	maxSamples    int
	rng           *rand.Rand
}

// NewKMeansExtractor creates a new KMeansExtractor with default settings.
func NewKMeansExtractor() *KMeansExtractor {
	return &KMeansExtractor{
		maxIterations: 20,
		convergence:   2.0,
		maxSamples:    2000,
		rng:           rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), // #nosec G404 -- clustering seed, not security sensitive
	}
}

// WithRand returns a copy of the extractor that draws centroids from rng.
func (e *KMeansExtractor) WithRand(rng *rand.Rand) *KMeansExtractor {
	cp := *e
	cp.rng = rng
	return &cp
}

// Extract extracts colours from an image using k-means clustering.
// Returns colours with their relative weights (cluster sizes).
func (e *KMeansExtractor) Extract(img image.Image, count int) (*Swatches, error) {
	return e.ExtractContext(context.Background(), img, count)
}

// ExtractContext is Extract, checking ctx between clustering passes.
func (e *KMeansExtractor) ExtractContext(ctx context.Context, img image.Image, count int) (*Swatches, error) {
	if img == nil {
		return nil, fmt.Errorf("image cannot be nil")
	}
	if count < 1 {
		return nil, fmt.Errorf("color count must be at least 1, got %d", count)
	}
	if count > 256 {
		return nil, fmt.Errorf("color count too large: %d (maximum: 256)", count)
	}

	pixels := samplePixels(img, e.maxSamples)
	if len(pixels) == 0 {
		return nil, fmt.Errorf("no opaque pixels found in image")
	}

	// If we want more colours than unique colours exist, return all unique colours.
	unique := make([]RGB, 0, len(pixels))
	counts := make(map[RGB]int)
	for _, p := range pixels {
		if counts[p] == 0 {
			unique = append(unique, p)
		}
		counts[p]++
	}
	if count >= len(unique) {
		weights := make([]float64, len(unique))
		for i, u := range unique {
			weights[i] = float64(counts[u]) / float64(len(pixels))
		}
		return NewSwatches(unique, weights), nil
	}

	centroids, weights, err := e.kmeans(ctx, pixels, count)
	if err != nil {
		return nil, err
	}

	colors := make([]RGB, len(centroids))
	for i, c := range centroids {
		colors[i] = NewRGB(int(math.Round(c.R)), int(math.Round(c.G)), int(math.Round(c.B)))
	}
	return NewSwatches(colors, weights), nil
}

// point3D represents a point in 3D RGB colour space.
type point3D struct {
	R, G, B float64
}

func (p point3D) distance(other point3D) float64 {
	dr := p.R - other.R
	dg := p.G - other.G
	db := p.B - other.B
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// samplePixels grid-samples up to maxSamples opaque pixels from the image.
func samplePixels(img image.Image, maxSamples int) []RGB {
	bounds := img.Bounds()
	totalPixels := bounds.Dx() * bounds.Dy()

	step := 1
	if totalPixels > maxSamples {
		step = max(int(math.Sqrt(float64(totalPixels)/float64(maxSamples))), 1)
	}

	pixels := make([]RGB, 0, min(totalPixels, maxSamples))
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			c := img.At(x, y)
			if _, _, _, a := c.RGBA(); a>>8 < alphaThreshold {
				continue
			}
			pixels = append(pixels, ToRGB(c))
			if len(pixels) >= maxSamples {
				return pixels
			}
		}
	}
	return pixels
}

// kmeans performs k-means clustering on the pixel data.
// Returns centroids and their weights (relative cluster sizes).
func (e *KMeansExtractor) kmeans(ctx context.Context, pixels []RGB, k int) ([]point3D, []float64, error) {
	points := make([]point3D, len(pixels))
	for i, p := range pixels {
		points[i] = point3D{R: float64(p.R), G: float64(p.G), B: float64(p.B)}
	}

	centroids := e.initializeCentroidsKMeansPlusPlus(points, k)
	assignments := make([]int, len(points))

	for iter := 0; iter < e.maxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		changed := 0
		for i, point := range points {
			nearest := findNearestCentroid(point, centroids)
			if assignments[i] != nearest {
				assignments[i] = nearest
				changed++
			}
		}

		// Fewer than 1% reassigned: converged.
		if iter > 0 && float64(changed)/float64(len(points)) < 0.01 {
			break
		}

		newCentroids := e.recalculateCentroids(points, assignments, k)

		totalMovement := 0.0
		for i := range centroids {
			totalMovement += centroids[i].distance(newCentroids[i])
		}
		centroids = newCentroids

		if totalMovement/float64(k) < e.convergence {
			break
		}
	}

	weights := make([]float64, k)
	for _, a := range assignments {
		weights[a]++
	}
	for i := range weights {
		weights[i] /= float64(len(assignments))
	}

	return centroids, weights, nil
}

// initializeCentroidsKMeansPlusPlus picks initial centroids with probability
// proportional to squared distance from the nearest chosen centroid.
func (e *KMeansExtractor) initializeCentroidsKMeansPlusPlus(points []point3D, k int) []point3D {
	if len(points) == 0 || k == 0 {
		return []point3D{}
	}

	centroids := make([]point3D, 0, k)
	centroids = append(centroids, points[e.rng.IntN(len(points))])

	distances := make([]float64, len(points))
	for len(centroids) < k {
		totalDistance := 0.0
		for i, point := range points {
			minDist := math.MaxFloat64
			for _, centroid := range centroids {
				minDist = math.Min(minDist, point.distance(centroid))
			}
			distances[i] = minDist * minDist
			totalDistance += distances[i]
		}

		if totalDistance == 0 {
			// Every point coincides with a centroid; nudge a duplicate.
			last := centroids[len(centroids)-1]
			centroids = append(centroids, point3D{R: last.R + 0.1, G: last.G + 0.1, B: last.B + 0.1})
			continue
		}

		target := e.rng.Float64() * totalDistance
		cumulative := 0.0
		chosen := len(points) - 1
		for i, dist := range distances {
			cumulative += dist
			if cumulative >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, points[chosen])
	}

	return centroids
}

func findNearestCentroid(point point3D, centroids []point3D) int {
	minDist := math.MaxFloat64
	nearest := 0
	for i, centroid := range centroids {
		if dist := point.distance(centroid); dist < minDist {
			minDist = dist
			nearest = i
		}
	}
	return nearest
}

// recalculateCentroids recalculates centroid positions based on assigned points.
func (e *KMeansExtractor) recalculateCentroids(points []point3D, assignments []int, k int) []point3D {
	sums := make([]point3D, k)
	counts := make([]int, k)

	for i, point := range points {
		cluster := assignments[i]
		sums[cluster].R += point.R
		sums[cluster].G += point.G
		sums[cluster].B += point.B
		counts[cluster]++
	}

	centroids := make([]point3D, k)
	for i := range k {
		if counts[i] > 0 {
			n := float64(counts[i])
			centroids[i] = point3D{R: sums[i].R / n, G: sums[i].G / n, B: sums[i].B / n}
		} else {
			// Empty cluster - reinitialise randomly
			centroids[i] = points[e.rng.IntN(len(points))]
		}
	}

	return centroids
}
