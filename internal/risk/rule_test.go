package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }

func TestScoreRule_Baseline(t *testing.T) {
	f := &Features{AsOfDate: "2026-01-15"}

	riskScore, band, drivers, version := ScoreRule(f)

	assert.Equal(t, 0.05, riskScore, "all-default vector should score the bare baseline")
	assert.Equal(t, BandGreen, band)
	assert.Equal(t, RuleModelVersion, version)
	require.Len(t, drivers, 1, "empty driver list must be replaced by the baseline placeholder")
	assert.Equal(t, "Baseline", drivers[0].Name)
	assert.Equal(t, 0.0, drivers[0].Contribution)
}

func TestScoreRule_Deterministic(t *testing.T) {
	f := &Features{
		AsOfDate:         "2026-01-15",
		BPSysTrend14d:    fptr(8.0),
		SleepDebtHours7d: fptr(10.0),
		HRVZ7d:           fptr(-2.0),
	}

	risk1, band1, drivers1, _ := ScoreRule(f)
	risk2, band2, drivers2, _ := ScoreRule(f)

	assert.Equal(t, risk1, risk2)
	assert.Equal(t, band1, band2)
	assert.Equal(t, drivers1, drivers2)
}

func TestScoreRule_HighRiskProfile(t *testing.T) {
	f := &Features{
		AsOfDate:         "2026-01-15",
		BPSysTrend14d:    fptr(15.0), // saturates its term
		BPSysVar7d:       fptr(25.0),
		SleepDebtHours7d: fptr(14.0),
		HRVZ7d:           fptr(-3.0),
		StepsZ7d:         fptr(-3.0),
		AdherenceNudge7d: fptr(0.0),
	}

	riskScore, band, drivers, _ := ScoreRule(f)

	assert.Greater(t, riskScore, 0.66)
	assert.Equal(t, BandRed, band)
	assert.LessOrEqual(t, len(drivers), MaxDrivers)
	// top driver should be the heaviest saturated term
	assert.Equal(t, "Systolic BP trend", drivers[0].Name)
	assert.InDelta(t, 0.18, drivers[0].Contribution, 1e-9)
	assert.Equal(t, DirectionUp, drivers[0].Direction)
}

func TestScoreRule_NoiseFloor(t *testing.T) {
	// contribution = 0.18 * (0.5/12) = 0.0075, below the 0.01 floor
	f := &Features{AsOfDate: "2026-01-15", BPSysTrend14d: fptr(0.5)}

	riskScore, _, drivers, _ := ScoreRule(f)

	assert.Greater(t, riskScore, 0.05)
	require.Len(t, drivers, 1)
	assert.Equal(t, "Baseline", drivers[0].Name)
}

func TestScoreRule_RiskClippedToOne(t *testing.T) {
	f := &Features{
		AsOfDate:         "2026-01-15",
		BPSysTrend14d:    fptr(1000),
		BPSysVar7d:       fptr(1000),
		BPDiaTrend14d:    fptr(1000),
		BPDiaVar7d:       fptr(1000),
		HRVZ7d:           fptr(-1000),
		RHRZ7d:           fptr(1000),
		StepsZ7d:         fptr(-1000),
		SleepDebtHours7d: fptr(1000),
		WeightTrend14d:   fptr(1000),
		GlucoseTrend14d:  fptr(1000),
		A1cLatest:        fptr(1000),
		LDLLatest:        fptr(1000),
		AdherenceNudge7d: fptr(0.0),
	}

	riskScore, band, drivers, _ := ScoreRule(f)

	assert.LessOrEqual(t, riskScore, 1.0)
	assert.Equal(t, BandRed, band)
	assert.Len(t, drivers, MaxDrivers)
}

func TestBandForRisk_Boundaries(t *testing.T) {
	cases := []struct {
		risk float64
		want string
	}{
		{0.0, BandGreen},
		{0.329, BandGreen},
		{0.33, BandAmber},
		{0.659, BandAmber},
		{0.66, BandRed},
		{1.0, BandRed},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, BandForRisk(tc.risk), "risk=%v", tc.risk)
	}
}

func TestSortDrivers(t *testing.T) {
	drivers := []Driver{
		{Name: "b", Contribution: 0.1},
		{Name: "a", Contribution: -0.1},
		{Name: "c", Contribution: 0.5},
		{Name: "d", Contribution: 0.02},
		{Name: "e", Contribution: 0.03},
		{Name: "f", Contribution: 0.04},
		{Name: "g", Contribution: 0.01},
	}

	sorted := SortDrivers(drivers)

	require.Len(t, sorted, MaxDrivers)
	assert.Equal(t, "c", sorted[0].Name)
	// |0.1| tie: alphabetical
	assert.Equal(t, "a", sorted[1].Name)
	assert.Equal(t, "b", sorted[2].Name)
	assert.Equal(t, "g", sorted[5].Name)
}
