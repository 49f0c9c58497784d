package domain

// Block represents a blockchain block with its transactions in
// on-chain inclusion order. That order is significant: sandwich
// detection depends on it.
type Block struct {
	ChainID      ChainID
	Number       uint64
	Hash         string
	Timestamp    uint64
	Transactions []*Transaction
}
