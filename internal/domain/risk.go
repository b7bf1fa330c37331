package domain

// Risk levels for the composite score and the per-factor labels.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// RiskAssessment is the scored view of a FeatureRecord: a bounded composite
// score, its categorical level, and per-factor explainability labels.
// Derived purely from the record, no hidden state.
type RiskAssessment struct {
	Score   float64     `json:"score"`
	Level   string      `json:"level"`
	Factors RiskFactors `json:"risk_factors"`
}

// RiskFactors restates each factor category as a Low/Medium/High label for
// output explainability. The label thresholds are independent of the numeric
// tier boundaries.
type RiskFactors struct {
	Speed      string `json:"speed_risk"`
	Weather    string `json:"weather_risk"`
	Temporal   string `json:"temporal_risk"`
	Location   string `json:"location_risk"`
	Visibility string `json:"visibility_risk"`
}

// ScoreRisk computes the composite risk score on a 0-10 scale from five
// weighted factors. Within each category only the first matching tier
// applies, except location whose two sub-conditions are additive. The sum is
// clamped at 10; there are no negative contributions.
func ScoreRisk(f FeatureRecord) RiskAssessment {
	score := 0.0

	// Speed factor (0-3 points).
	switch {
	case f.SpeedLimit > 100:
		score += 3
	case f.SpeedLimit > 70:
		score += 2
	case f.SpeedLimit > 50:
		score += 1
	}

	// Weather factor (0-2 points).
	switch {
	case f.IsWet || f.Temperature < 3:
		score += 2
	case f.Temperature < 10:
		score += 1
	}

	// Time factor (0-2 points).
	switch {
	case f.IsNight:
		score += 2
	case f.IsRushHour:
		score += 1
	}

	// Location factor (0-2 points): the two sub-conditions are independent.
	if f.AreaType == AreaRural {
		score++
	}
	if f.Lit == "no" || f.Lit == "unknown" {
		score++
	}

	// Parties factor (0-1 point).
	if f.PartyCount > 1 {
		score++
	}

	if score > 10 {
		score = 10
	}

	return RiskAssessment{
		Score:   score,
		Level:   riskLevel(score),
		Factors: riskFactors(f),
	}
}

// riskLevel buckets a score: >= 7 High, >= 4 Medium, else Low. Boundaries
// are inclusive at the lower threshold.
func riskLevel(score float64) string {
	switch {
	case score >= 7:
		return RiskHigh
	case score >= 4:
		return RiskMedium
	default:
		return RiskLow
	}
}

func riskFactors(f FeatureRecord) RiskFactors {
	return RiskFactors{
		Speed:      speedLabel(f.SpeedLimit),
		Weather:    weatherLabel(f),
		Temporal:   temporalLabel(f),
		Location:   locationLabel(f.AreaType),
		Visibility: visibilityLabel(f.Lighting),
	}
}

func speedLabel(limit int) string {
	switch {
	case limit > 80:
		return RiskHigh
	case limit > 50:
		return RiskMedium
	default:
		return RiskLow
	}
}

func weatherLabel(f FeatureRecord) string {
	switch {
	case f.IsWet || f.Temperature < 3:
		return RiskHigh
	case f.Temperature < 10:
		return RiskMedium
	default:
		return RiskLow
	}
}

func temporalLabel(f FeatureRecord) string {
	switch {
	case f.IsNight:
		return RiskHigh
	case f.IsRushHour:
		return RiskMedium
	default:
		return RiskLow
	}
}

func locationLabel(areaType string) string {
	if areaType == AreaRural {
		return RiskMedium
	}
	return RiskLow
}

func visibilityLabel(lighting string) string {
	if lighting == LightingDarkness {
		return RiskHigh
	}
	return RiskLow
}
