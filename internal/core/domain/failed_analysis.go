package domain

// FailedAnalysis records a block whose analysis could not complete
// (typically an RPC fetch failure). Queued for retry outside the
// detection core.
type FailedAnalysis struct {
	ID          string      `json:"id"`
	ChainID     string      `json:"chain_id"`
	ContractID  string      `json:"contract_id"`
	BlockNumber uint64      `json:"block_number"`
	FailureType FailureType `json:"failure_type"`
	Error       string      `json:"error_msg"`
	RetryCount  int         `json:"retry_count"`
	FailedAt    uint64      `json:"failed_at"`
}

type FailureType string

const (
	FailureTypeRPC      FailureType = "rpc"
	FailureTypeParsing  FailureType = "parsing"
	FailureTypeDatabase FailureType = "database"
)
