// Package rpc provides the high-level JSON-RPC client the chain
// connectors use: one facade per chain over a failover router.
package rpc

import (
	"context"

	"github.com/vietddude/mevwatch/internal/core/domain"
	"github.com/vietddude/mevwatch/internal/infra/rpc/routing"
)

// Client is the high-level interface for making RPC calls.
type Client struct {
	chainID domain.ChainID
	router  routing.Router
	retry   routing.RetryConfig
}

// NewClient creates a new RPC client for one chain.
func NewClient(chainID domain.ChainID, router routing.Router) *Client {
	return &Client{
		chainID: chainID,
		router:  router,
		retry:   routing.DefaultRetryConfig,
	}
}

// Call makes an RPC call with automatic retry and provider failover.
func (c *Client) Call(ctx context.Context, method string, params []any) (any, error) {
	return routing.CallWithRetryAndFailover(ctx, c.router, c.chainID, method, params, c.retry)
}
