// Package chain defines the connector boundary between the detection
// core and chain-specific block retrieval.
package chain

import (
	"context"

	"github.com/vietddude/mevwatch/internal/core/domain"
)

// Connector abstracts block retrieval for one chain. Implementations
// must populate sender, recipient, value, gas price, nonce, and
// calldata length on every transaction; an absent field decodes to its
// zero value rather than failing the fetch, so detectors stay
// conservative instead of crash-prone.
type Connector interface {
	// GetLatestBlock returns the latest block number on the chain.
	GetLatestBlock(ctx context.Context) (uint64, error)

	// GetBlock fetches a block with its full transaction list in
	// on-chain inclusion order. Returns nil for a block that does not
	// exist yet.
	GetBlock(ctx context.Context, blockNumber uint64) (*domain.Block, error)

	// GetChainID returns the chain identifier.
	GetChainID() domain.ChainID
}

// Connectors maps chain identifiers to their connector. Built once at
// process start and injected wherever block retrieval is needed; there
// is no package-level provider registry.
type Connectors map[domain.ChainID]Connector
