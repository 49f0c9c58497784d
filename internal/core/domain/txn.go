package domain

// Transaction represents a blockchain transaction as fetched from a
// chain connector. Value and GasPrice are decimal wei strings; the
// engine converts to native units / gwei at analysis time. Missing
// fields decode to zero values, never errors.
type Transaction struct {
	ChainID     ChainID `json:"chain_id"`
	BlockNumber uint64  `json:"block_number"`
	TxHash      string  `json:"tx_hash"`
	TxIndex     int     `json:"tx_index"`
	From        string  `json:"from_address"`
	To          string  `json:"to_address"`
	Value       string  `json:"value"`
	GasPrice    string  `json:"gas_price"`
	Nonce       uint64  `json:"nonce"`
	InputSize   int     `json:"input_size"`
	Timestamp   uint64  `json:"timestamp"`
}
