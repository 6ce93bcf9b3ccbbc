package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/couchcryptid/collision-severity-service/internal/domain"
)

// sigmoid maps log-odds to a probability without overflowing for large |x|.
func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

func probabilities(serious float64) domain.Probabilities {
	return domain.Probabilities{Slight: 1 - serious, Serious: serious}
}

type logistic struct {
	coef      domain.FeatureVector
	intercept float64
	scaler    *Scaler
}

func newLogistic(p *LogisticParams, s *Scaler) *logistic {
	l := &logistic{intercept: p.Intercept, scaler: s}
	copy(l.coef[:], p.Coefficients)
	return l
}

func (l *logistic) PredictProba(v domain.FeatureVector) (domain.Probabilities, error) {
	z := l.scaler.apply(v)
	logit := l.intercept
	for i := range z {
		logit += l.coef[i] * z[i]
	}
	if math.IsNaN(logit) {
		return domain.Probabilities{}, errors.New("logistic: NaN logit")
	}
	return probabilities(sigmoid(logit)), nil
}

// Tree is one fitted decision tree in scikit-learn's flat node layout.
// A node is a leaf when ChildrenLeft is -1; otherwise samples with
// x[Feature] <= Threshold go left. Value holds the leaf output: the class-1
// probability for forests, the additive log-odds for boosting.
type Tree struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	Value         []float64 `json:"value"`
}

const leafNode = -1

func (t *Tree) validate() error {
	n := len(t.ChildrenLeft)
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return errors.New("node arrays differ in length")
	}
	for i := 0; i < n; i++ {
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if l == leafNode {
			if r != leafNode {
				return fmt.Errorf("node %d: half-leaf", i)
			}
			continue
		}
		// Children always follow their parent, which rules out cycles.
		if l <= i || l >= n || r <= i || r >= n {
			return fmt.Errorf("node %d: child index out of range", i)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= domain.FeatureCount {
			return fmt.Errorf("node %d: feature %d out of range", i, t.Feature[i])
		}
	}
	return nil
}

func (t *Tree) leaf(x domain.FeatureVector) float64 {
	i := 0
	for t.ChildrenLeft[i] != leafNode {
		if x[t.Feature[i]] <= t.Threshold[i] {
			i = t.ChildrenLeft[i]
		} else {
			i = t.ChildrenRight[i]
		}
	}
	return t.Value[i]
}

// forest averages the class-1 leaf probabilities of its trees.
type forest struct {
	trees  []Tree
	scaler *Scaler
}

func (f *forest) PredictProba(v domain.FeatureVector) (domain.Probabilities, error) {
	z := f.scaler.apply(v)
	var sum float64
	for i := range f.trees {
		sum += f.trees[i].leaf(z)
	}
	return probabilities(sum / float64(len(f.trees))), nil
}

// boosting sums leaf log-odds on top of a base score.
type boosting struct {
	trees        []Tree
	scaler       *Scaler
	baseScore    float64
	learningRate float64
}

func (b *boosting) PredictProba(v domain.FeatureVector) (domain.Probabilities, error) {
	z := b.scaler.apply(v)
	logit := b.baseScore
	for i := range b.trees {
		logit += b.learningRate * b.trees[i].leaf(z)
	}
	return probabilities(sigmoid(logit)), nil
}
