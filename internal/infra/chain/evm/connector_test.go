package evm

import (
	"context"
	"errors"
	"testing"

	"github.com/vietddude/mevwatch/internal/core/domain"
)

type mockRPCClient struct {
	results map[string]any
	err     error
	lastReq struct {
		method string
		params []any
	}
}

func (m *mockRPCClient) Call(ctx context.Context, method string, params []any) (any, error) {
	m.lastReq.method = method
	m.lastReq.params = params
	if m.err != nil {
		return nil, m.err
	}
	return m.results[method], nil
}

func TestGetLatestBlock(t *testing.T) {
	client := &mockRPCClient{results: map[string]any{"eth_blockNumber": "0x12d687"}}
	c := NewConnector(domain.ChainIDEthereum, client)

	num, err := c.GetLatestBlock(context.Background())
	if err != nil {
		t.Fatalf("GetLatestBlock failed: %v", err)
	}
	if num != 0x12d687 {
		t.Errorf("Expected %d, got %d", 0x12d687, num)
	}
}

func TestGetBlock_ParsesTransactions(t *testing.T) {
	client := &mockRPCClient{results: map[string]any{
		"eth_getBlockByNumber": map[string]any{
			"number":    "0x64",
			"hash":      "0xblockhash",
			"timestamp": "0x6554b1c0",
			"transactions": []any{
				map[string]any{
					"hash":     "0xtx1",
					"from":     "0xSender",
					"to":       "0xContract",
					"value":    "0xde0b6b3a7640000", // 1e18 wei
					"gasPrice": "0x4a817c800",       // 20 gwei
					"nonce":    "0x5",
					"input":    "0xdeadbeef",
				},
			},
		},
	}}
	c := NewConnector(domain.ChainIDEthereum, client)

	block, err := c.GetBlock(context.Background(), 100)
	if err != nil {
		t.Fatalf("GetBlock failed: %v", err)
	}
	if client.lastReq.method != "eth_getBlockByNumber" {
		t.Errorf("Expected eth_getBlockByNumber, got %s", client.lastReq.method)
	}
	if len(client.lastReq.params) != 2 || client.lastReq.params[0] != "0x64" || client.lastReq.params[1] != true {
		t.Errorf("Expected params [0x64 true], got %v", client.lastReq.params)
	}

	if block.Number != 100 {
		t.Errorf("Expected block 100, got %d", block.Number)
	}
	if len(block.Transactions) != 1 {
		t.Fatalf("Expected 1 transaction, got %d", len(block.Transactions))
	}

	tx := block.Transactions[0]
	if tx.Value != "1000000000000000000" {
		t.Errorf("Expected decimal wei value, got %s", tx.Value)
	}
	if tx.GasPrice != "20000000000" {
		t.Errorf("Expected 20 gwei in wei, got %s", tx.GasPrice)
	}
	if tx.Nonce != 5 {
		t.Errorf("Expected nonce 5, got %d", tx.Nonce)
	}
	if tx.InputSize != 4 {
		t.Errorf("Expected 4 calldata bytes, got %d", tx.InputSize)
	}
	if tx.Timestamp != block.Timestamp {
		t.Errorf("Expected tx timestamp copied from block")
	}
}

func TestGetBlock_NotFound(t *testing.T) {
	client := &mockRPCClient{results: map[string]any{}}
	c := NewConnector(domain.ChainIDEthereum, client)

	block, err := c.GetBlock(context.Background(), 999999999)
	if err != nil {
		t.Fatalf("GetBlock failed: %v", err)
	}
	if block != nil {
		t.Errorf("Expected nil for unknown block, got %+v", block)
	}
}

func TestGetBlock_Error(t *testing.T) {
	client := &mockRPCClient{err: errors.New("provider down")}
	c := NewConnector(domain.ChainIDEthereum, client)

	if _, err := c.GetBlock(context.Background(), 100); err == nil {
		t.Errorf("Expected error to propagate")
	}
}

func TestGetBlock_SparseTransaction(t *testing.T) {
	client := &mockRPCClient{results: map[string]any{
		"eth_getBlockByNumber": map[string]any{
			"number": "0x64",
			"transactions": []any{
				map[string]any{"hash": "0xtx1"},
			},
		},
	}}
	c := NewConnector(domain.ChainIDEthereum, client)

	block, err := c.GetBlock(context.Background(), 100)
	if err != nil {
		t.Fatalf("GetBlock failed: %v", err)
	}

	tx := block.Transactions[0]
	if tx.Value != "0" || tx.GasPrice != "0" {
		t.Errorf("Expected zero wei strings for missing fields, got %s / %s", tx.Value, tx.GasPrice)
	}
	if tx.InputSize != 0 || tx.Nonce != 0 {
		t.Errorf("Expected zero calldata and nonce, got %d / %d", tx.InputSize, tx.Nonce)
	}
}

func TestHexHelpers(t *testing.T) {
	if got := hexToDecimalString("0xzz"); got != "0" {
		t.Errorf("Malformed hex should decode to 0, got %s", got)
	}
	if got := hexToDecimalString(""); got != "0" {
		t.Errorf("Empty hex should decode to 0, got %s", got)
	}
	if got := calldataBytes("0x"); got != 0 {
		t.Errorf("Empty calldata should be 0 bytes, got %d", got)
	}
	if _, err := parseHexUint("0x10"); err != nil {
		t.Errorf("parseHexUint failed: %v", err)
	}
}
