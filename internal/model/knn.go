package model

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// kNeighbors votes among the k training rows closest to the input. With
// distance weighting each vote counts 1/d, and exact matches take all of the
// weight. Equal votes resolve to class 0.
type kNeighbors struct {
	k          int
	byDistance bool
	x          [][]float64
	y          []int
}

type neighbor struct {
	index    int
	distance float64
}

func newKNeighbors(p KNNParams) *kNeighbors {
	x := make([][]float64, len(p.FitX))
	for i, row := range p.FitX {
		x[i] = slices.Clone(row)
	}
	return &kNeighbors{
		k:          p.NNeighbors,
		byDistance: p.Weights == WeightsDistance,
		x:          x,
		y:          slices.Clone(p.FitY),
	}
}

// nearest returns the k closest training rows. Rows at equal distance keep
// their training order.
func (m *kNeighbors) nearest(row []float64) []neighbor {
	ns := make([]neighbor, len(m.x))
	for i, fit := range m.x {
		ns[i] = neighbor{index: i, distance: floats.Distance(row, fit, 2)}
	}
	slices.SortStableFunc(ns, func(a, b neighbor) int { return cmp.Compare(a.distance, b.distance) })
	return ns[:m.k]
}

func (m *kNeighbors) votes(row []float64) ([2]float64, error) {
	var v [2]float64
	ns := m.nearest(row)

	switch {
	case !m.byDistance:
		for _, n := range ns {
			v[m.y[n.index]]++
		}
	case ns[0].distance == 0:
		for _, n := range ns {
			if n.distance == 0 {
				v[m.y[n.index]]++
			}
		}
	default:
		for _, n := range ns {
			v[m.y[n.index]] += 1 / n.distance
		}
	}

	total := v[0] + v[1]
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return v, fmt.Errorf("%w: neighbor weight %v", ErrInvalidScore, total)
	}
	return v, nil
}

func (m *kNeighbors) PredictLabel(row []float64) (int, error) {
	v, err := m.votes(row)
	if err != nil {
		return 0, err
	}
	if v[1] > v[0] {
		return 1, nil
	}
	return 0, nil
}

func (m *kNeighbors) PredictProbability(row []float64) (float64, error) {
	v, err := m.votes(row)
	if err != nil {
		return 0, err
	}
	return v[1] / (v[0] + v[1]), nil
}
