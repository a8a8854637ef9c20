// Package risk defines the feature vector contract shared by every scoring
// strategy, plus the deterministic rule-based scorer.
package risk

import (
	"fmt"
	"time"
)

// FeatureNames is the fixed feature layout. Every strategy (rule engine,
// trained models, attribution) consumes vectors in exactly this order.
var FeatureNames = []string{
	"bp_sys_trend_14d",
	"bp_sys_var_7d",
	"bp_dia_trend_14d",
	"bp_dia_var_7d",
	"hrv_z_7d",
	"rhr_z_7d",
	"steps_z_7d",
	"sleep_debt_hours_7d",
	"weight_trend_14d",
	"glucose_trend_14d",
	"a1c_latest",
	"ldl_latest",
	"adherence_nudge_7d",
}

// Features is a single subject's longitudinal feature set as received from
// the caller. Optional fields are pointers so that "absent" is distinguishable
// from zero at the schema level; Map/Vector apply the per-field defaults.
type Features struct {
	UserID   string `json:"user_id,omitempty"`
	AsOfDate string `json:"as_of_date"`

	BPSysTrend14d    *float64 `json:"bp_sys_trend_14d,omitempty"`
	BPSysVar7d       *float64 `json:"bp_sys_var_7d,omitempty"`
	BPDiaTrend14d    *float64 `json:"bp_dia_trend_14d,omitempty"`
	BPDiaVar7d       *float64 `json:"bp_dia_var_7d,omitempty"`
	HRVZ7d           *float64 `json:"hrv_z_7d,omitempty"`
	RHRZ7d           *float64 `json:"rhr_z_7d,omitempty"`
	StepsZ7d         *float64 `json:"steps_z_7d,omitempty"`
	SleepDebtHours7d *float64 `json:"sleep_debt_hours_7d,omitempty"`
	WeightTrend14d   *float64 `json:"weight_trend_14d,omitempty"`
	GlucoseTrend14d  *float64 `json:"glucose_trend_14d,omitempty"`
	A1cLatest        *float64 `json:"a1c_latest,omitempty"`
	LDLLatest        *float64 `json:"ldl_latest,omitempty"`
	AdherenceNudge7d *float64 `json:"adherence_nudge_7d,omitempty"`
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// Map returns the name->value map with defaults applied. Absent lab values
// (a1c_latest, ldl_latest) coerce to 0.0, which conflates "zero" with
// "unknown"; kept for compatibility with existing trained artifacts.
func (f *Features) Map() map[string]float64 {
	return map[string]float64{
		"bp_sys_trend_14d":    orDefault(f.BPSysTrend14d, 0),
		"bp_sys_var_7d":       orDefault(f.BPSysVar7d, 0),
		"bp_dia_trend_14d":    orDefault(f.BPDiaTrend14d, 0),
		"bp_dia_var_7d":       orDefault(f.BPDiaVar7d, 0),
		"hrv_z_7d":            orDefault(f.HRVZ7d, 0),
		"rhr_z_7d":            orDefault(f.RHRZ7d, 0),
		"steps_z_7d":          orDefault(f.StepsZ7d, 0),
		"sleep_debt_hours_7d": orDefault(f.SleepDebtHours7d, 0),
		"weight_trend_14d":    orDefault(f.WeightTrend14d, 0),
		"glucose_trend_14d":   orDefault(f.GlucoseTrend14d, 0),
		"a1c_latest":          orDefault(f.A1cLatest, 0),
		"ldl_latest":          orDefault(f.LDLLatest, 0),
		"adherence_nudge_7d":  orDefault(f.AdherenceNudge7d, 0.5),
	}
}

// Vector returns the feature values in FeatureNames order.
func (f *Features) Vector() []float64 {
	m := f.Map()
	out := make([]float64, len(FeatureNames))
	for i, name := range FeatureNames {
		out[i] = m[name]
	}
	return out
}

// Validate enforces the input invariants the scoring core trusts: a parseable
// calendar date and adherence within [0, 1].
func (f *Features) Validate() error {
	if _, err := time.Parse("2006-01-02", f.AsOfDate); err != nil {
		return fmt.Errorf("as_of_date must be YYYY-MM-DD: %q", f.AsOfDate)
	}
	if f.AdherenceNudge7d != nil {
		if v := *f.AdherenceNudge7d; v < 0 || v > 1 {
			return fmt.Errorf("adherence_nudge_7d must be in [0, 1], got %v", v)
		}
	}
	return nil
}
