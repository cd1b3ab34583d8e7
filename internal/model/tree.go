package model

import "slices"

// decisionTree evaluates a flattened tree. Samples with x[feature] <= threshold
// go left. The leaf's class weights give both the label and the probability.
type decisionTree struct {
	nodes []TreeNode
}

func newDecisionTree(p TreeParams) *decisionTree {
	nodes := make([]TreeNode, len(p.Nodes))
	for i, n := range p.Nodes {
		n.Value = slices.Clone(n.Value)
		nodes[i] = n
	}
	return &decisionTree{nodes: nodes}
}

func (t *decisionTree) leaf(row []float64) TreeNode {
	n := t.nodes[0]
	for !n.isLeaf() {
		if row[n.Feature] <= n.Threshold {
			n = t.nodes[n.Left]
		} else {
			n = t.nodes[n.Right]
		}
	}
	return n
}

func (t *decisionTree) PredictLabel(row []float64) (int, error) {
	v := t.leaf(row).Value
	// Ties resolve to the first class.
	if v[1] > v[0] {
		return 1, nil
	}
	return 0, nil
}

func (t *decisionTree) PredictProbability(row []float64) (float64, error) {
	v := t.leaf(row).Value
	return v[1] / (v[0] + v[1]), nil
}
