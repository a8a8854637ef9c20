package ml

import (
	"math"
	"sort"
)

// Boosting hyperparameters are fixed; retrains are reproducible byte for byte.
const (
	boostRounds    = 80
	boostMaxDepth  = 3
	boostLearnRate = 0.08
)

// TreeNode is one node of a boosted regression tree. Leaves carry the
// log-odds increment; internal nodes route on Feature < Threshold.
type TreeNode struct {
	Leaf      bool
	Value     float64
	Feature   int
	Threshold float64
	Left      *TreeNode
	Right     *TreeNode
}

func (t *TreeNode) eval(x []float64) float64 {
	node := t
	for !node.Leaf {
		if x[node.Feature] < node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

// GradientBoostModel is a deterministic gradient-boosted tree ensemble over
// log-odds residuals. It scores through its margin (no native probability
// head) and explains itself through split-gain feature importances.
type GradientBoostModel struct {
	InitialScore float64
	LearnRate    float64
	Trees        []*TreeNode
	Importances  []float64
}

func (m *GradientBoostModel) ModelType() string { return FamilyBoosting }

func (m *GradientBoostModel) DecisionScore(x []float64) float64 {
	score := m.InitialScore
	for _, tree := range m.Trees {
		score += m.LearnRate * tree.eval(x)
	}
	return score
}

func (m *GradientBoostModel) FeatureImportances() []float64 { return m.Importances }

// Fit boosts boostRounds regression trees of depth boostMaxDepth against the
// pseudo-residuals of the logistic loss, with Newton-step leaf values. No row
// or column subsampling, so the fit is deterministic.
func (m *GradientBoostModel) Fit(x [][]float64, y []int) {
	n := len(x)
	d := len(x[0])

	pos := 0
	for _, label := range y {
		pos += label
	}
	// initial log-odds of the base rate, clamped away from degenerate classes
	rate := math.Min(math.Max(float64(pos)/float64(n), 1e-6), 1-1e-6)
	m.InitialScore = math.Log(rate / (1 - rate))
	m.LearnRate = boostLearnRate
	m.Trees = nil
	m.Importances = make([]float64, d)

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = m.InitialScore
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	residuals := make([]float64, n)
	hessians := make([]float64, n)

	for round := 0; round < boostRounds; round++ {
		for i := 0; i < n; i++ {
			p := sigmoid(scores[i])
			residuals[i] = float64(y[i]) - p
			hessians[i] = p * (1 - p)
		}

		tree := m.buildNode(x, residuals, hessians, indices, boostMaxDepth)
		m.Trees = append(m.Trees, tree)

		for i := 0; i < n; i++ {
			scores[i] += m.LearnRate * tree.eval(x[i])
		}
	}

	// normalize accumulated split gains to a unit simplex
	var total float64
	for _, g := range m.Importances {
		total += g
	}
	if total > 0 {
		for j := range m.Importances {
			m.Importances[j] /= total
		}
	}
}

// buildNode grows a regression tree by exhaustive variance-reduction splits.
func (m *GradientBoostModel) buildNode(x [][]float64, residuals, hessians []float64, indices []int, depth int) *TreeNode {
	if depth == 0 || len(indices) < 2 {
		return leafNode(residuals, hessians, indices)
	}

	feature, threshold, gain := bestSplit(x, residuals, indices)
	if gain <= 0 {
		return leafNode(residuals, hessians, indices)
	}
	m.Importances[feature] += gain

	var left, right []int
	for _, i := range indices {
		if x[i][feature] < threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      m.buildNode(x, residuals, hessians, left, depth-1),
		Right:     m.buildNode(x, residuals, hessians, right, depth-1),
	}
}

// leafNode takes the Newton step for the logistic loss: sum of residuals over
// sum of hessians.
func leafNode(residuals, hessians []float64, indices []int) *TreeNode {
	var num, den float64
	for _, i := range indices {
		num += residuals[i]
		den += hessians[i]
	}
	value := 0.0
	if den > 1e-12 {
		value = num / den
	}
	return &TreeNode{Leaf: true, Value: value}
}

// bestSplit scans every feature and every boundary between adjacent sorted
// values, maximizing squared-error reduction of the residuals.
func bestSplit(x [][]float64, residuals []float64, indices []int) (int, float64, float64) {
	n := len(indices)
	d := len(x[indices[0]])

	var totalSum float64
	for _, i := range indices {
		totalSum += residuals[i]
	}

	bestFeature, bestThreshold, bestGain := -1, 0.0, 0.0

	type pair struct {
		value    float64
		residual float64
	}
	pairs := make([]pair, n)

	for j := 0; j < d; j++ {
		for k, i := range indices {
			pairs[k] = pair{value: x[i][j], residual: residuals[i]}
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].value < pairs[b].value })

		var leftSum float64
		for k := 0; k < n-1; k++ {
			leftSum += pairs[k].residual
			if pairs[k].value == pairs[k+1].value {
				continue
			}
			leftN := float64(k + 1)
			rightN := float64(n - k - 1)
			rightSum := totalSum - leftSum
			// gain relative to the unsplit node, in squared-error terms
			gain := leftSum*leftSum/leftN + rightSum*rightSum/rightN - totalSum*totalSum/float64(n)
			if gain > bestGain {
				bestFeature = j
				bestThreshold = (pairs[k].value + pairs[k+1].value) / 2
				bestGain = gain
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, 0
	}
	return bestFeature, bestThreshold, bestGain
}
