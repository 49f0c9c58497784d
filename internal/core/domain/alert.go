package domain

// AttackType classifies a detected MEV pattern.
type AttackType string

const (
	AttackFrontrunning AttackType = "frontrunning"
	AttackBackrunning  AttackType = "backrunning"
	AttackSandwich     AttackType = "sandwich"
	AttackArbitrage    AttackType = "arbitrage"
	AttackLiquidation  AttackType = "liquidation"
	AttackOracle       AttackType = "oracle_manipulation"
	AttackFlashLoan    AttackType = "flash_loan_attack"
)

// RiskLevel is a coarse discretization of detection confidence for
// operator triage.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Alert is a risk-scored MEV detection. Created once by a detector
// and never mutated afterwards; corrections require a superseding
// alert. DetectedAt carries the block timestamp, not wall-clock.
type Alert struct {
	ID              string            `json:"id"`
	ContractID      string            `json:"contract_id"`
	ChainID         ChainID           `json:"chain_id"`
	AttackType      AttackType        `json:"attack_type"`
	RiskLevel       RiskLevel         `json:"risk_level"`
	Confidence      float64           `json:"confidence"`
	Description     string            `json:"description"`
	TxHash          string            `json:"tx_hash"`
	BlockNumber     uint64            `json:"block_number"`
	GasPriceGwei    string            `json:"gas_price_gwei"`
	EstimatedProfit string            `json:"estimated_profit,omitempty"`
	VictimAddress   string            `json:"victim_address,omitempty"`
	AttackerAddress string            `json:"attacker_address,omitempty"`
	DetectedAt      uint64            `json:"detected_at"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// AlertStats is a read-time rollup over stored alerts for one
// monitored contract.
type AlertStats struct {
	ContractID          string             `json:"contract_id"`
	TotalAlerts         int                `json:"total_alerts"`
	AlertsByType        map[AttackType]int `json:"alerts_by_type"`
	AlertsByRisk        map[RiskLevel]int  `json:"alerts_by_risk"`
	TotalEstimatedValue float64            `json:"total_estimated_value"`
	LastAlertAt         uint64             `json:"last_alert_at"`
}
