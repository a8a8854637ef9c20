package ml

import (
	"math"
	"sort"
)

// probabilities are clipped into [logLossEps, 1-logLossEps] before log-loss
const logLossEps = 1e-6

// SafeAUC computes ROC AUC as the normalized Mann-Whitney U statistic, with
// average ranks for tied probabilities. Returns nil when the labels contain a
// single class, where AUC is undefined.
func SafeAUC(y []int, probs []float64) *float64 {
	var pos, neg int
	for _, label := range y {
		if label == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return nil
	}

	idx := make([]int, len(probs))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return probs[idx[a]] < probs[idx[b]] })

	ranks := make([]float64, len(probs))
	for i := 0; i < len(idx); {
		j := i
		for j < len(idx) && probs[idx[j]] == probs[idx[i]] {
			j++
		}
		avg := float64(i+j+1) / 2 // average of 1-based ranks i+1..j
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg
		}
		i = j
	}

	var posRankSum float64
	for i, label := range y {
		if label == 1 {
			posRankSum += ranks[i]
		}
	}

	u := posRankSum - float64(pos)*float64(pos+1)/2
	auc := u / (float64(pos) * float64(neg))
	return &auc
}

// SafeLogLoss computes the binary cross entropy with clipped probabilities.
// Any numerical failure yields nil rather than an error; a missing metric
// never fails a training run.
func SafeLogLoss(y []int, probs []float64) *float64 {
	if len(y) == 0 || len(y) != len(probs) {
		return nil
	}

	var total float64
	for i, label := range y {
		p := math.Min(math.Max(probs[i], logLossEps), 1-logLossEps)
		if label == 1 {
			total -= math.Log(p)
		} else {
			total -= math.Log(1 - p)
		}
	}
	loss := total / float64(len(y))
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		return nil
	}
	return &loss
}
