package gateway

import (
	"context"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum"

	"github.com/and161185/typestate-monitor/internal/errs"
)

// Caller is the subset of an Ethereum RPC client the gateway needs.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	Close()
}

// Connection is a reference-counted handle to an RPC client.
// The client is closed when the last reference is released.
type Connection struct {
	caller Caller
	host   string
	secret string // masked out of call errors
	refs   atomic.Int32
}

func newConnection(caller Caller, host, secret string) *Connection {
	c := &Connection{caller: caller, host: host, secret: secret}
	c.refs.Store(1)
	return c
}

// Host returns the endpoint host the connection was opened against.
func (c *Connection) Host() string { return c.host }

// Refs returns the number of live references.
func (c *Connection) Refs() int32 { return c.refs.Load() }

// Retain adds a reference. It fails once the connection has been fully released.
func (c *Connection) Retain() error {
	for {
		n := c.refs.Load()
		if n <= 0 {
			return errs.ErrConnectionClosed
		}
		if c.refs.CompareAndSwap(n, n+1) {
			return nil
		}
	}
}

// Release drops a reference and closes the client when none remain.
// Releasing an already closed connection is a no-op.
func (c *Connection) Release() {
	for {
		n := c.refs.Load()
		if n <= 0 {
			return
		}
		if c.refs.CompareAndSwap(n, n-1) {
			if n == 1 {
				c.caller.Close()
			}
			return
		}
	}
}

func (c *Connection) call(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	if c.refs.Load() <= 0 {
		return nil, errs.ErrConnectionClosed
	}
	out, err := c.caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, redact(err, c.secret)
	}
	return out, nil
}
