package model

import (
	"gonum.org/v1/gonum/floats"
)

// Node is one entry of a tree's flat node array. Internal nodes send rows
// with x[Feature] <= Threshold to Left, others to Right. Leaves carry class
// weights (counts or fractions) in class order.
type Node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Leaf      bool      `json:"leaf"`
	Value     []float64 `json:"value,omitempty"`
}

// Tree is a decision tree stored in pre-order: children always follow parents.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Forest averages per-tree leaf distributions (soft voting).
type Forest struct {
	trees    []Tree
	nClasses int
}

func newForest(trees []Tree, nClasses, nFeatures int) (*Forest, error) {
	if len(trees) == 0 {
		return nil, invalidf("forest has no trees")
	}
	out := make([]Tree, len(trees))
	for ti, t := range trees {
		if len(t.Nodes) == 0 {
			return nil, invalidf("tree %d has no nodes", ti)
		}
		nodes := make([]Node, len(t.Nodes))
		for ni, n := range t.Nodes {
			if n.Leaf {
				if len(n.Value) != nClasses {
					return nil, invalidf("tree %d node %d: leaf has %d values, want %d", ti, ni, len(n.Value), nClasses)
				}
				sum := floats.Sum(n.Value)
				if sum <= 0 {
					return nil, invalidf("tree %d node %d: leaf weights sum to %g", ti, ni, sum)
				}
				dist := append([]float64(nil), n.Value...)
				floats.Scale(1/sum, dist)
				n.Value = dist
				nodes[ni] = n
				continue
			}
			if n.Feature < 0 || n.Feature >= nFeatures {
				return nil, invalidf("tree %d node %d: feature index %d out of range", ti, ni, n.Feature)
			}
			// children must come later in the array, which also rules out cycles
			if n.Left <= ni || n.Left >= len(t.Nodes) || n.Right <= ni || n.Right >= len(t.Nodes) {
				return nil, invalidf("tree %d node %d: invalid children %d/%d", ti, ni, n.Left, n.Right)
			}
			nodes[ni] = n
		}
		out[ti] = Tree{Nodes: nodes}
	}
	return &Forest{trees: out, nClasses: nClasses}, nil
}

func (f *Forest) leaf(t Tree, x []float64) []float64 {
	idx := 0
	for {
		n := t.Nodes[idx]
		if n.Leaf {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			idx = n.Left
		} else {
			idx = n.Right
		}
	}
}

// PredictProba returns the mean leaf distribution across trees for every row.
func (f *Forest) PredictProba(X [][]float64) ([][]float64, error) {
	out := make([][]float64, len(X))
	inv := 1 / float64(len(f.trees))
	for i, x := range X {
		p := make([]float64, f.nClasses)
		for _, t := range f.trees {
			floats.Add(p, f.leaf(t, x))
		}
		floats.Scale(inv, p)
		out[i] = p
	}
	return out, nil
}

// Predict returns the index of the most probable class per row; ties go to
// the lowest index.
func (f *Forest) Predict(X [][]float64) ([]int, error) {
	probs, err := f.PredictProba(X)
	if err != nil {
		return nil, err
	}
	return argmax(probs), nil
}

func argmax(probs [][]float64) []int {
	out := make([]int, len(probs))
	for i, p := range probs {
		out[i] = floats.MaxIdx(p)
	}
	return out
}
