// Package risk maps raw detection intensity onto discrete risk levels.
package risk

import (
	"github.com/vietddude/mevwatch/internal/core/domain"
)

// maxIntensity clamps the intensity factor so a single extreme signal
// cannot more than double a pattern's base risk.
const maxIntensity = 2.0

// Level maps an intensity factor and a pattern's base risk onto one of
// the four risk levels. Monotonically non-decreasing in intensity for
// a fixed base risk.
func Level(intensity, baseRisk float64) domain.RiskLevel {
	if intensity > maxIntensity {
		intensity = maxIntensity
	}
	if intensity < 0 {
		intensity = 0
	}

	effective := baseRisk * intensity
	switch {
	case effective >= 0.9:
		return domain.RiskCritical
	case effective >= 0.7:
		return domain.RiskHigh
	case effective >= 0.4:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}
