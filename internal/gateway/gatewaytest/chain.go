// Package gatewaytest provides an in-memory chain for exercising the gateway
// and the monitors without a network.
package gatewaytest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/and161185/typestate-monitor/internal/gateway"
	"github.com/and161185/typestate-monitor/model"
)

// Endpoint is the fake endpoint NewGateway dials.
const Endpoint = "https://rpc.test/v2/"

// Token is the on-chain state of one fake ERC-20 contract.
// A non-nil Err fails every call made against it.
type Token struct {
	Supply   *big.Int
	Decimals uint8
	Err      error
}

// Chain answers totalSupply and decimals calls for registered tokens.
type Chain struct {
	mu     sync.Mutex
	tokens map[common.Address]Token
	calls  int
	dials  int
	closed int
}

func NewChain() *Chain {
	return &Chain{tokens: make(map[common.Address]Token)}
}

// Set registers or replaces the token at address.
func (c *Chain) Set(address string, t Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[common.HexToAddress(address)] = t
}

// CallContract implements gateway.Caller.
func (c *Chain) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++

	if msg.To == nil {
		return nil, errors.New("missing call target")
	}
	tok, ok := c.tokens[*msg.To]
	if !ok {
		// Calls to an address without code succeed with empty output.
		return nil, nil
	}
	if tok.Err != nil {
		return nil, tok.Err
	}
	if len(msg.Data) < 4 {
		return nil, errors.New("execution reverted")
	}

	method, err := gateway.ERC20.MethodById(msg.Data[:4])
	if err != nil {
		return nil, fmt.Errorf("execution reverted: %w", err)
	}
	switch method.Name {
	case "totalSupply":
		return method.Outputs.Pack(tok.Supply)
	case "decimals":
		return method.Outputs.Pack(tok.Decimals)
	}
	return nil, errors.New("execution reverted")
}

// Close implements gateway.Caller.
func (c *Chain) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
}

// Dialer returns a gateway.Dialer that always hands out this chain.
func (c *Chain) Dialer() gateway.Dialer {
	return func(context.Context, string) (gateway.Caller, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.dials++
		return c, nil
	}
}

// Calls returns how many contract calls were served.
func (c *Chain) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Dials returns how many connections were opened.
func (c *Chain) Dials() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dials
}

// Closed returns how many times a connection was closed.
func (c *Chain) Closed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// NewGateway builds a gateway wired to chain with a static credential.
func NewGateway(chain *Chain, assets []model.Asset, opts ...gateway.Option) *gateway.Gateway {
	base := []gateway.Option{
		gateway.WithDialer(chain.Dialer()),
		gateway.WithCredential(gateway.StaticCredential("test-key")),
		gateway.WithAssets(assets),
	}
	return gateway.New(Endpoint, append(base, opts...)...)
}

// Stablecoins registers the default assets with the given supplies, all using
// the supplied decimals, and returns the chain.
func Stablecoins(usdt, usdc int64, decimals uint8) *Chain {
	c := NewChain()
	c.Set(model.DefaultAssets[0].Address, Token{Supply: big.NewInt(usdt), Decimals: decimals})
	c.Set(model.DefaultAssets[1].Address, Token{Supply: big.NewInt(usdc), Decimals: decimals})
	return c
}
