// Package evm implements the chain connector for EVM JSON-RPC chains.
package evm

import (
	"context"
	"fmt"

	"github.com/vietddude/mevwatch/internal/core/domain"
	"github.com/vietddude/mevwatch/internal/infra/rpc"
)

// RPCClient is the subset of the rpc client the connector needs.
type RPCClient interface {
	Call(ctx context.Context, method string, params []any) (any, error)
}

// Connector fetches blocks with full transactions over JSON-RPC.
type Connector struct {
	chainID domain.ChainID
	client  RPCClient
}

var _ RPCClient = (*rpc.Client)(nil)

func NewConnector(chainID domain.ChainID, client RPCClient) *Connector {
	return &Connector{
		chainID: chainID,
		client:  client,
	}
}

func (c *Connector) GetChainID() domain.ChainID {
	return c.chainID
}

func (c *Connector) GetLatestBlock(ctx context.Context) (uint64, error) {
	result, err := c.client.Call(ctx, "eth_blockNumber", nil)
	if err != nil {
		return 0, fmt.Errorf("eth_blockNumber failed: %w", err)
	}

	blockHex, ok := result.(string)
	if !ok {
		return 0, fmt.Errorf("invalid block number response")
	}

	return parseHexUint(blockHex)
}

// GetBlock fetches a block with its full transaction objects. Returns
// nil for a block that does not exist yet.
func (c *Connector) GetBlock(ctx context.Context, blockNumber uint64) (*domain.Block, error) {
	blockHex := fmt.Sprintf("0x%x", blockNumber)
	result, err := c.client.Call(ctx, "eth_getBlockByNumber", []any{blockHex, true})
	if err != nil {
		return nil, fmt.Errorf("eth_getBlockByNumber failed: %w", err)
	}
	if result == nil {
		return nil, nil // Not found/future
	}

	rawBlock, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid block format")
	}

	return c.parseBlock(rawBlock), nil
}

// parseBlock decodes the raw JSON-RPC block. Missing or malformed
// fields decode to zero values so a sparse response still analyzes.
func (c *Connector) parseBlock(raw map[string]any) *domain.Block {
	number, _ := parseHexUint(getString(raw["number"]))
	timestamp, _ := parseHexUint(getString(raw["timestamp"]))

	block := &domain.Block{
		ChainID:   c.chainID,
		Number:    number,
		Hash:      getString(raw["hash"]),
		Timestamp: timestamp,
	}

	rawTxs, _ := raw["transactions"].([]any)
	for i, rawTx := range rawTxs {
		txMap, ok := rawTx.(map[string]any)
		if !ok {
			continue
		}
		block.Transactions = append(block.Transactions, c.parseTransaction(txMap, block, i))
	}
	return block
}

func (c *Connector) parseTransaction(raw map[string]any, block *domain.Block, index int) *domain.Transaction {
	nonce, _ := parseHexUint(getString(raw["nonce"]))

	return &domain.Transaction{
		ChainID:     c.chainID,
		BlockNumber: block.Number,
		TxHash:      getString(raw["hash"]),
		TxIndex:     index,
		From:        getString(raw["from"]),
		To:          getString(raw["to"]),
		Value:       hexToDecimalString(getString(raw["value"])),
		GasPrice:    hexToDecimalString(getString(raw["gasPrice"])),
		Nonce:       nonce,
		InputSize:   calldataBytes(getString(raw["input"])),
		Timestamp:   block.Timestamp,
	}
}
