package risk

// RuleModelVersion is the reserved version tag reported whenever the rule
// engine produced the score.
const RuleModelVersion = "rule-v0"

const (
	baselineRisk = 0.05
	// contributions below this are treated as noise and excluded from drivers
	driverFloor = 0.01
)

type ruleTerm struct {
	key       string
	label     string
	weight    float64
	maxSignal float64
	signal    func(map[string]float64) float64
}

// Rule weights are fixed domain configuration; beyond the baseline they sum
// to roughly 1.0 so a maximally adverse vector saturates near full risk.
var ruleTerms = []ruleTerm{
	{"bp_sys_trend_14d", "Systolic BP trend", 0.18, 12.0, func(f map[string]float64) float64 { return positive(f["bp_sys_trend_14d"]) }},
	{"bp_sys_var_7d", "Systolic BP variability", 0.10, 20.0, func(f map[string]float64) float64 { return positive(f["bp_sys_var_7d"]) }},
	{"bp_dia_trend_14d", "Diastolic BP trend", 0.08, 8.0, func(f map[string]float64) float64 { return positive(f["bp_dia_trend_14d"]) }},
	{"bp_dia_var_7d", "Diastolic BP variability", 0.07, 15.0, func(f map[string]float64) float64 { return positive(f["bp_dia_var_7d"]) }},
	{"hrv_z_7d", "Low HRV", 0.10, 3.0, func(f map[string]float64) float64 { return positive(-f["hrv_z_7d"]) }},
	{"rhr_z_7d", "Elevated resting HR", 0.08, 3.0, func(f map[string]float64) float64 { return positive(f["rhr_z_7d"]) }},
	{"steps_z_7d", "Low activity", 0.10, 3.0, func(f map[string]float64) float64 { return positive(-f["steps_z_7d"]) }},
	{"sleep_debt_hours_7d", "Sleep debt", 0.12, 14.0, func(f map[string]float64) float64 { return positive(f["sleep_debt_hours_7d"]) }},
	{"weight_trend_14d", "Weight gain trend", 0.06, 3.0, func(f map[string]float64) float64 { return positive(f["weight_trend_14d"]) }},
	{"glucose_trend_14d", "Glucose trend", 0.07, 20.0, func(f map[string]float64) float64 { return positive(f["glucose_trend_14d"]) }},
	{"a1c_latest", "Elevated A1c", 0.03, 3.0, func(f map[string]float64) float64 { return positive(f["a1c_latest"] - 5.7) }},
	{"ldl_latest", "Elevated LDL", 0.03, 80.0, func(f map[string]float64) float64 { return positive(f["ldl_latest"] - 100.0) }},
	{"adherence_nudge_7d", "Low nudge adherence", 0.08, 0.5, func(f map[string]float64) float64 { return positive(0.5 - f["adherence_nudge_7d"]) }},
}

func positive(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// ScoreRule is the deterministic weight-based scorer. It is pure and
// stateless: identical features always yield identical output.
func ScoreRule(f *Features) (float64, string, []Driver, string) {
	vals := f.Map()
	riskScore := baselineRisk
	var drivers []Driver

	for _, term := range ruleTerms {
		normalized := Clip(term.signal(vals)/term.maxSignal, 0, 1)
		contribution := term.weight * normalized
		riskScore += contribution

		if contribution >= driverFloor {
			drivers = append(drivers, Driver{
				Name:         term.label,
				Value:        Round4(vals[term.key]),
				Direction:    DirectionUp,
				Contribution: Round4(contribution),
			})
		}
	}

	riskScore = Clip(riskScore, 0, 1)
	band := BandForRisk(riskScore)

	if len(drivers) == 0 {
		drivers = []Driver{BaselineDriver("Baseline", baselineRisk)}
	}
	drivers = SortDrivers(drivers)

	return Round6(riskScore), band, drivers, RuleModelVersion
}
