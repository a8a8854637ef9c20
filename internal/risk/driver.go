package risk

import (
	"math"
	"sort"
)

// Band labels for the three-level risk classification.
const (
	BandGreen = "green"
	BandAmber = "amber"
	BandRed   = "red"
)

const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

// MaxDrivers caps the driver list returned with any score.
const MaxDrivers = 6

// Driver is one feature's signed contribution to a risk score.
type Driver struct {
	Name         string  `json:"name"`
	Value        float64 `json:"value"`
	Direction    string  `json:"direction"`
	Contribution float64 `json:"contribution"`
}

// Clip bounds v to [low, high].
func Clip(v, low, high float64) float64 {
	return math.Max(low, math.Min(high, v))
}

// BandForRisk maps a risk score to its band. Boundaries are inclusive on the
// upper side: 0.33 is amber, 0.66 is red.
func BandForRisk(risk float64) string {
	switch {
	case risk < 0.33:
		return BandGreen
	case risk < 0.66:
		return BandAmber
	default:
		return BandRed
	}
}

// Round6 rounds to 6 decimals, the precision used for risk scores.
func Round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// Round4 rounds to 4 decimals, the presentation precision for driver
// values and contributions.
func Round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// SortDrivers orders by descending absolute contribution, ties broken
// alphabetically by name, and truncates to MaxDrivers.
func SortDrivers(drivers []Driver) []Driver {
	sort.Slice(drivers, func(i, j int) bool {
		ai, aj := math.Abs(drivers[i].Contribution), math.Abs(drivers[j].Contribution)
		if ai != aj {
			return ai > aj
		}
		return drivers[i].Name < drivers[j].Name
	})
	if len(drivers) > MaxDrivers {
		drivers = drivers[:MaxDrivers]
	}
	return drivers
}

// BaselineDriver is the placeholder returned when no feature clears the
// significance threshold; a score is never explained by an empty list.
func BaselineDriver(name string, value float64) Driver {
	return Driver{Name: name, Value: value, Direction: DirectionDown, Contribution: 0.0}
}
