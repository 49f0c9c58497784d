package detect

import (
	"encoding/json"

	"github.com/vietddude/mevwatch/internal/core/domain"
	"github.com/vietddude/mevwatch/internal/engine/signals"
)

// CompositeDetector catches activity that clears no single pattern
// threshold but combines gas, timing, and value suspicion at once.
// It labels its alert frontrunning: the composite pass does not
// distinguish sub-type, and frontrunning is the conservative default.
type CompositeDetector struct {
	limits signals.ValueLimits
}

func NewCompositeDetector(limits signals.ValueLimits) *CompositeDetector {
	return &CompositeDetector{limits: limits}
}

func (d *CompositeDetector) Type() domain.AttackType {
	return domain.AttackFrontrunning
}

func (d *CompositeDetector) Detect(in Input) ([]*domain.Alert, error) {
	if len(in.Txs) == 0 {
		return nil, nil
	}

	gas := signals.AnalyzeGas(in.Txs)
	timing := signals.AnalyzeTiming(in.Txs)
	value := signals.AnalyzeValue(in.Txs, d.limits)
	if !gas.Suspicious || !timing.Rapid || !value.HighValue {
		return nil, nil
	}

	alert := newAlert(in, domain.AttackFrontrunning, in.Txs[0])
	alert.RiskLevel = domain.RiskHigh
	alert.Confidence = 0.8
	alert.Description = "combined gas, timing, and value anomalies without a single dominant pattern"
	// Extractor outputs go into metadata verbatim for operator triage.
	alert.Metadata["gas_analysis"] = marshalSignal(gas)
	alert.Metadata["timing_analysis"] = marshalSignal(timing)
	alert.Metadata["value_analysis"] = marshalSignal(value)

	return []*domain.Alert{alert}, nil
}

func marshalSignal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
