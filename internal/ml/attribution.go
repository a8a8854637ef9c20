package ml

import (
	"math"

	"github.com/cardiometrix/riskd/internal/risk"
)

// contributions below this magnitude are attribution noise
const attributionFloor = 1e-4

// Attribute explains one scored vector against the training-set reference
// means: each feature contributes its centered deviation times the model's
// weight for it. The returned list follows the driver ordering contract and
// may be empty when nothing clears the floor; the caller substitutes the
// baseline driver in that case.
func Attribute(vector, means, source []float64) []risk.Driver {
	var drivers []risk.Driver
	for i, name := range risk.FeatureNames {
		mean := 0.0
		if i < len(means) {
			mean = means[i]
		}
		contribution := (vector[i] - mean) * source[i]
		if math.Abs(contribution) < attributionFloor {
			continue
		}

		direction := risk.DirectionUp
		if contribution < 0 {
			direction = risk.DirectionDown
		}
		drivers = append(drivers, risk.Driver{
			Name:         name,
			Value:        risk.Round4(vector[i]),
			Direction:    direction,
			Contribution: risk.Round4(contribution),
		})
	}
	return risk.SortDrivers(drivers)
}
