package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/vietddude/mevwatch/internal/core/domain"
	"github.com/vietddude/mevwatch/internal/engine/patterns"
	"github.com/vietddude/mevwatch/internal/engine/signals"
	"github.com/vietddude/mevwatch/internal/infra/chain"
)

type mockConnector struct {
	chainID domain.ChainID
	block   *domain.Block
	err     error
}

func (c *mockConnector) GetLatestBlock(ctx context.Context) (uint64, error) {
	if c.block == nil {
		return 0, c.err
	}
	return c.block.Number, nil
}

func (c *mockConnector) GetBlock(ctx context.Context, blockNumber uint64) (*domain.Block, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.block, nil
}

func (c *mockConnector) GetChainID() domain.ChainID { return c.chainID }

func newAnalyzer(conn chain.Connector, opts ...Option) *Analyzer {
	connectors := chain.Connectors{domain.ChainIDEthereum: conn}
	return New(connectors, patterns.NewLibrary(), signals.DefaultValueLimits, opts...)
}

func frontrunBlock() *domain.Block {
	return &domain.Block{
		ChainID:   domain.ChainIDEthereum,
		Number:    100,
		Timestamp: 1700000000,
		Transactions: []*domain.Transaction{
			{TxHash: "0xaaa", From: "0xAttacker", To: "0xContract", GasPrice: "200000000000", Nonce: 1},
			{TxHash: "0xbbb", From: "0xVictim", To: "0xContract", GasPrice: "50000000000", Nonce: 2},
		},
	}
}

func TestAnalyzeBlock_FetchFailureYieldsEmpty(t *testing.T) {
	var hookCalls int
	conn := &mockConnector{chainID: domain.ChainIDEthereum, err: errors.New("rpc unavailable")}
	a := newAnalyzer(conn, WithFetchErrorHook(func(chainID domain.ChainID, blockNumber uint64, contractID string, err error) {
		hookCalls++
		if blockNumber != 100 {
			t.Errorf("Expected block 100 in hook, got %d", blockNumber)
		}
	}))

	alerts := a.AnalyzeBlock(context.Background(), domain.ChainIDEthereum, 100, "0xContract")
	if alerts != nil {
		t.Errorf("Expected nil alerts on fetch failure, got %d", len(alerts))
	}
	if hookCalls != 1 {
		t.Errorf("Expected 1 hook call, got %d", hookCalls)
	}
}

func TestAnalyzeBlock_UnknownChain(t *testing.T) {
	a := newAnalyzer(&mockConnector{chainID: domain.ChainIDEthereum, block: frontrunBlock()})

	if alerts := a.AnalyzeBlock(context.Background(), domain.ChainIDPolygon, 100, "0xContract"); alerts != nil {
		t.Errorf("Expected nil alerts for unknown chain, got %d", len(alerts))
	}
}

func TestAnalyzeBlock_DetectsAndScopes(t *testing.T) {
	conn := &mockConnector{chainID: domain.ChainIDEthereum, block: frontrunBlock()}
	a := newAnalyzer(conn)

	alerts := a.AnalyzeBlock(context.Background(), domain.ChainIDEthereum, 100, "0xContract")
	if len(alerts) == 0 {
		t.Fatalf("Expected alerts for outbid pair")
	}
	for _, alert := range alerts {
		if alert.ContractID != "0xContract" {
			t.Errorf("Expected contract scoping, got %s", alert.ContractID)
		}
		if alert.BlockNumber != 100 {
			t.Errorf("Expected block 100, got %d", alert.BlockNumber)
		}
	}

	// A contract the block never touches yields nothing
	if alerts := a.AnalyzeBlock(context.Background(), domain.ChainIDEthereum, 100, "0xOther"); alerts != nil {
		t.Errorf("Expected nil for untouched contract, got %d alerts", len(alerts))
	}
}

func TestDeduplicate_FirstSeenWins(t *testing.T) {
	conn := &mockConnector{chainID: domain.ChainIDEthereum, block: frontrunBlock()}
	a := newAnalyzer(conn)

	alerts := a.AnalyzeBlock(context.Background(), domain.ChainIDEthereum, 100, "0xContract")
	if len(alerts) == 0 {
		t.Fatalf("Expected alerts")
	}

	// Re-running the suite over the same block produces identity
	// duplicates; merging both runs must collapse back to one set
	doubled := append(append([]*domain.Alert{}, alerts...), alerts...)
	deduped := Deduplicate(doubled)
	if len(deduped) != len(alerts) {
		t.Errorf("Expected %d alerts after dedup, got %d", len(alerts), len(deduped))
	}
	for i, alert := range deduped {
		if alert.ID != alerts[i].ID {
			t.Errorf("Dedup should keep first-seen alert at %d", i)
		}
	}
}

func TestFilterByContract_CaseInsensitive(t *testing.T) {
	txs := []*domain.Transaction{
		{TxHash: "0x1", From: "0xABCDEF", To: "0xother"},
		{TxHash: "0x2", From: "0xsender", To: "0xabcdef"},
		{TxHash: "0x3", From: "0xsender", To: "0xunrelated"},
	}
	out := FilterByContract(txs, "0xAbCdEf")
	if len(out) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(out))
	}
	if out[0].TxHash != "0x1" || out[1].TxHash != "0x2" {
		t.Errorf("Expected matches in block order, got %s %s", out[0].TxHash, out[1].TxHash)
	}
}
