package knnreader

import (
	"fmt"
	"slices"
	"sync"
)

// KNearest is a brute-force k-nearest-neighbor model over float32 vectors.
// It is safe for concurrent FindNearest calls; Train replaces the samples.
type KNearest struct {
	mu      sync.RWMutex
	samples [][]float32
	labels  []float32
	dim     int
}

// NewKNearest returns an empty model
func NewKNearest() *KNearest {
	return &KNearest{}
}

// Train replaces the model's samples. Every sample must have the same length.
func (m *KNearest) Train(samples [][]float32, labels []float32) error {
	if len(samples) != len(labels) {
		return fmt.Errorf("failed to train: %d samples but %d labels", len(samples), len(labels))
	}
	if len(samples) == 0 {
		return fmt.Errorf("failed to train: %w", ErrUntrained)
	}

	dim := len(samples[0])
	copied := make([][]float32, len(samples))
	for i, s := range samples {
		if len(s) != dim {
			return fmt.Errorf("failed to train: sample %d has %d values, want %d: %w", i, len(s), dim, ErrDimension)
		}
		copied[i] = slices.Clone(s)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = copied
	m.labels = slices.Clone(labels)
	m.dim = dim
	return nil
}

// Len returns the number of training samples
func (m *KNearest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.samples)
}

// Dim returns the feature vector length the model was trained with
func (m *KNearest) Dim() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dim
}

type neighbor struct {
	dist  float64
	label float32
}

// FindNearest predicts the label of query by majority vote among its k
// nearest samples (squared Euclidean distance). A tie between labels goes to
// the label whose closest member is nearer. k larger than the sample count
// is clamped.
func (m *KNearest) FindNearest(query []float32, k int) (float32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.samples) == 0 {
		return 0, ErrUntrained
	}
	if len(query) != m.dim {
		return 0, fmt.Errorf("query has %d values, want %d: %w", len(query), m.dim, ErrDimension)
	}
	k = min(max(k, 1), len(m.samples))

	neighbors := make([]neighbor, len(m.samples))
	for i, s := range m.samples {
		neighbors[i] = neighbor{dist: squaredDistance(s, query), label: m.labels[i]}
	}
	slices.SortStableFunc(neighbors, func(a, b neighbor) int {
		switch {
		case a.dist < b.dist:
			return -1
		case a.dist > b.dist:
			return 1
		}
		return 0
	})
	nearest := neighbors[:k]

	// nearest is ordered by distance, so the first label to reach the best
	// count is also the one with the closest member.
	votes := make(map[float32]int, k)
	for _, n := range nearest {
		votes[n.label]++
	}
	best, bestVotes := nearest[0].label, 0
	for _, n := range nearest {
		if v := votes[n.label]; v > bestVotes {
			best, bestVotes = n.label, v
		}
	}
	return best, nil
}

func squaredDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
