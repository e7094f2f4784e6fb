package hazard

import (
	"math"
	"strings"
)

// Storm signal thresholds.
const (
	StormGustThreshold     = 18.0  // m/s
	StormPressureThreshold = 996.0 // hPa
)

// ClassifySeismic maps BMKG tsunami-potential text to a severity level.
// Unrecognized or empty text is SAFE.
func ClassifySeismic(potential string) Level {
	p := strings.ToLower(potential)
	if strings.Contains(p, "potensi tsunami") || strings.Contains(p, "awas") {
		return Danger
	}
	if strings.Contains(p, "waspada") || strings.Contains(p, "siaga") {
		return Warning
	}
	return Safe
}

// ClassifyPrecipitation maps a corrected 24-hour accumulation in mm to a
// severity level. Thresholds are exclusive: exactly 150.0 is still WARNING.
func ClassifyPrecipitation(totalMM float64) Level {
	switch {
	case totalMM > 150:
		return Danger
	case totalMM > 100:
		return Warning
	case totalMM > 50:
		return Waspada
	default:
		return Safe
	}
}

// WeatherScore maps weather description text to a 0-100 danger score.
func WeatherScore(text string) int {
	t := strings.ToLower(text)
	if strings.Contains(t, "petir") || strings.Contains(t, "lebat") {
		return 100
	}
	if strings.Contains(t, "sedang") {
		return 75
	}
	if strings.Contains(t, "ringan") || strings.Contains(t, "lokal") {
		return 50
	}
	return 0
}

// ScoreLevel maps a weather danger score to a severity level.
func ScoreLevel(score int) Level {
	switch {
	case score >= 100:
		return Danger
	case score >= 75:
		return Warning
	case score >= 50:
		return Waspada
	default:
		return Safe
	}
}

// StormSignal reports whether a reading trips the storm alert. A gust above
// 18 m/s or pressure below 996 hPa is each sufficient on its own. Nil values
// never trip.
func StormSignal(gustMS, pressureHPa *float64) bool {
	if gustMS != nil && *gustMS > StormGustThreshold {
		return true
	}
	if pressureHPa != nil && *pressureHPa < StormPressureThreshold {
		return true
	}
	return false
}

// Aggregator reconciles overlapping precipitation samples into a corrected
// 24-hour total.
type Aggregator struct {
	// RollingDivisor corrects the overcount from summing rolling-accumulation
	// samples. Hourly polls of a 3-hour accumulation overlap threefold, so the
	// divisor defaults to 3; it must track the polling cadence.
	RollingDivisor float64
}

// Total24h combines raw per-semantics sums: pointSum is from sources that
// report point-in-time amounts (factor 1), rollingSum from sources that
// report a trailing accumulation (divided by RollingDivisor). The result is
// non-negative and rounded to 2 decimal places.
func (a Aggregator) Total24h(pointSum, rollingSum float64) float64 {
	divisor := a.RollingDivisor
	if divisor <= 0 {
		divisor = 3
	}
	total := pointSum + rollingSum/divisor
	if total < 0 {
		return 0
	}
	return math.Round(total*100) / 100
}
