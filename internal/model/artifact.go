package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// FormatVersion is the artifact layout this package reads.
const FormatVersion = 1

// Supported classifier kinds.
const (
	KindLogisticRegression = "logistic_regression"
	KindLinearSVC          = "linear_svc"
	KindDecisionTree       = "decision_tree"
	KindKNeighbors         = "k_neighbors"
)

// Neighbor weighting schemes for KindKNeighbors.
const (
	WeightsUniform  = "uniform"
	WeightsDistance = "distance"
)

var (
	// ErrInvalidArtifact is returned when an artifact is structurally unusable.
	ErrInvalidArtifact = errors.New("invalid model artifact")
	// ErrUnsupportedKind is returned for a classifier kind this package cannot evaluate.
	ErrUnsupportedKind = errors.New("unsupported model kind")
	// ErrFeatureMismatch is returned when the artifact's columns differ from the
	// feature contract.
	ErrFeatureMismatch = errors.New("artifact feature columns do not match")
)

// Artifact is the serialized form of a fitted binary classifier. It is
// produced by the training job out of band and never written by this service.
type Artifact struct {
	FormatVersion int      `json:"format_version"`
	Name          string   `json:"name"`
	Kind          string   `json:"kind"`
	FeatureNames  []string `json:"feature_names"`
	Classes       []int    `json:"classes,omitempty"`

	Scaler             *ScalerParams `json:"scaler,omitempty"`
	LogisticRegression *LinearParams `json:"logistic_regression,omitempty"`
	LinearSVC          *LinearParams `json:"linear_svc,omitempty"`
	DecisionTree       *TreeParams   `json:"decision_tree,omitempty"`
	KNeighbors         *KNNParams    `json:"k_neighbors,omitempty"`
}

// ScalerParams standardizes inputs as (x - mean) / scale before evaluation.
type ScalerParams struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LinearParams holds the weights of a linear decision function.
type LinearParams struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// TreeParams holds a flattened binary decision tree. Node 0 is the root.
type TreeParams struct {
	Nodes []TreeNode `json:"nodes"`
}

// TreeNode is one split or leaf. Leaves have Left and Right set to -1.
// Value holds the per-class sample weight at the node.
type TreeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value"`
}

// KNNParams holds a fitted k-nearest-neighbors classifier. FitX rows are
// stored after scaling, so they live in the same space as scaled inputs.
// Distances are Euclidean.
type KNNParams struct {
	NNeighbors int         `json:"n_neighbors"`
	Weights    string      `json:"weights"`
	FitX       [][]float64 `json:"fit_x"`
	FitY       []int       `json:"fit_y"`
}

func (n TreeNode) isLeaf() bool { return n.Left == -1 && n.Right == -1 }

// DecodeArtifact parses and validates an artifact document.
func DecodeArtifact(data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrInvalidArtifact, err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Validate checks that the artifact can be evaluated.
func (a *Artifact) Validate() error {
	if a.FormatVersion != FormatVersion {
		return fmt.Errorf("%w: format_version %d, want %d", ErrInvalidArtifact, a.FormatVersion, FormatVersion)
	}
	n := len(a.FeatureNames)
	if n == 0 {
		return fmt.Errorf("%w: feature_names is empty", ErrInvalidArtifact)
	}
	if len(a.Classes) > 0 && (len(a.Classes) != 2 || a.Classes[0] != 0 || a.Classes[1] != 1) {
		return fmt.Errorf("%w: classes must be [0, 1], got %v", ErrInvalidArtifact, a.Classes)
	}

	if a.Scaler != nil {
		if len(a.Scaler.Mean) != n || len(a.Scaler.Scale) != n {
			return fmt.Errorf("%w: scaler has %d/%d values for %d features",
				ErrInvalidArtifact, len(a.Scaler.Mean), len(a.Scaler.Scale), n)
		}
		for i, s := range a.Scaler.Scale {
			if s == 0 || math.IsNaN(s) || math.IsInf(s, 0) {
				return fmt.Errorf("%w: scaler scale[%d] is %v", ErrInvalidArtifact, i, s)
			}
		}
	}

	switch a.Kind {
	case KindLogisticRegression:
		return validateLinear(a.LogisticRegression, a.Kind, n)
	case KindLinearSVC:
		return validateLinear(a.LinearSVC, a.Kind, n)
	case KindDecisionTree:
		return validateTree(a.DecisionTree, n)
	case KindKNeighbors:
		return validateKNN(a.KNeighbors, n)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedKind, a.Kind)
	}
}

func validateLinear(p *LinearParams, kind string, n int) error {
	if p == nil {
		return fmt.Errorf("%w: missing %s parameters", ErrInvalidArtifact, kind)
	}
	if len(p.Coefficients) != n {
		return fmt.Errorf("%w: %s has %d coefficients for %d features",
			ErrInvalidArtifact, kind, len(p.Coefficients), n)
	}
	return nil
}

func validateTree(p *TreeParams, n int) error {
	if p == nil || len(p.Nodes) == 0 {
		return fmt.Errorf("%w: missing decision_tree nodes", ErrInvalidArtifact)
	}
	for i, node := range p.Nodes {
		if node.isLeaf() {
			if len(node.Value) != 2 {
				return fmt.Errorf("%w: leaf %d has %d class values, want 2", ErrInvalidArtifact, i, len(node.Value))
			}
			for _, w := range node.Value {
				if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
					return fmt.Errorf("%w: leaf %d has class weight %v", ErrInvalidArtifact, i, w)
				}
			}
			if node.Value[0]+node.Value[1] <= 0 {
				return fmt.Errorf("%w: leaf %d has no weight", ErrInvalidArtifact, i)
			}
			continue
		}
		if node.Feature < 0 || node.Feature >= n {
			return fmt.Errorf("%w: node %d splits on feature %d", ErrInvalidArtifact, i, node.Feature)
		}
		// Children always follow their parent, which rules out cycles.
		for _, child := range []int{node.Left, node.Right} {
			if child <= i || child >= len(p.Nodes) {
				return fmt.Errorf("%w: node %d has child %d", ErrInvalidArtifact, i, child)
			}
		}
	}
	return nil
}

func validateKNN(p *KNNParams, n int) error {
	if p == nil || len(p.FitX) == 0 {
		return fmt.Errorf("%w: missing k_neighbors training rows", ErrInvalidArtifact)
	}
	if len(p.FitY) != len(p.FitX) {
		return fmt.Errorf("%w: k_neighbors has %d labels for %d rows", ErrInvalidArtifact, len(p.FitY), len(p.FitX))
	}
	if p.NNeighbors < 1 || p.NNeighbors > len(p.FitX) {
		return fmt.Errorf("%w: n_neighbors %d with %d rows", ErrInvalidArtifact, p.NNeighbors, len(p.FitX))
	}
	switch p.Weights {
	case "", WeightsUniform, WeightsDistance:
	default:
		return fmt.Errorf("%w: unknown weights %q", ErrInvalidArtifact, p.Weights)
	}
	for i, row := range p.FitX {
		if len(row) != n {
			return fmt.Errorf("%w: training row %d has %d values for %d features", ErrInvalidArtifact, i, len(row), n)
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: training row %d is not finite", ErrInvalidArtifact, i)
			}
		}
		if y := p.FitY[i]; y != 0 && y != 1 {
			return fmt.Errorf("%w: training row %d has label %d", ErrInvalidArtifact, i, y)
		}
	}
	return nil
}
