// Package gateway reads ERC-20 supply figures over Ethereum JSON-RPC.
package gateway

import (
	"context"
	"fmt"
	"math/big"
	"net/url"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/and161185/typestate-monitor/internal/errs"
	"github.com/and161185/typestate-monitor/model"
)

// Dialer opens an RPC client for rawURL.
type Dialer func(ctx context.Context, rawURL string) (Caller, error)

// DialEthereum is the default Dialer backed by ethclient.
func DialEthereum(ctx context.Context, rawURL string) (Caller, error) {
	c, err := ethclient.DialContext(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Gateway opens connections and queries the configured assets.
type Gateway struct {
	endpoint   string
	credential CredentialFunc
	dial       Dialer
	assets     []model.Asset
	logger     *zap.SugaredLogger
}

// Option customises a Gateway.
type Option func(*Gateway)

// WithDialer replaces the RPC dialer.
func WithDialer(d Dialer) Option {
	return func(g *Gateway) { g.dial = d }
}

// WithCredential replaces the credential source.
func WithCredential(f CredentialFunc) Option {
	return func(g *Gateway) { g.credential = f }
}

// WithAssets replaces the queried asset list.
func WithAssets(assets []model.Asset) Option {
	return func(g *Gateway) { g.assets = append([]model.Asset(nil), assets...) }
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(g *Gateway) { g.logger = l }
}

// New returns a Gateway for endpoint. The credential is appended to endpoint
// when a connection is opened.
func New(endpoint string, opts ...Option) *Gateway {
	g := &Gateway{
		endpoint:   endpoint,
		credential: EnvCredential("ALCHEMY_API_KEY"),
		dial:       DialEthereum,
		assets:     append([]model.Asset(nil), model.DefaultAssets...),
		logger:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Assets returns a copy of the configured asset list.
func (g *Gateway) Assets() []model.Asset {
	return append([]model.Asset(nil), g.assets...)
}

// OpenConnection reads the credential and dials the endpoint.
func (g *Gateway) OpenConnection(ctx context.Context) (*Connection, error) {
	key, err := g.credential()
	if err != nil {
		return nil, errs.Connect(err)
	}

	u, err := url.Parse(g.endpoint + key)
	if err != nil {
		return nil, errs.Connect(fmt.Errorf("%w: %v", errs.ErrEndpointInvalid, redact(err, key)))
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return nil, errs.Connect(fmt.Errorf("%w: unsupported scheme %q", errs.ErrEndpointInvalid, u.Scheme))
	}
	if u.Host == "" {
		return nil, errs.Connect(fmt.Errorf("%w: missing host", errs.ErrEndpointInvalid))
	}

	caller, err := g.dial(ctx, u.String())
	if err != nil {
		return nil, errs.Connect(fmt.Errorf("%w: dial %s: %v", errs.ErrEndpointInvalid, u.Host, redact(err, key)))
	}

	g.logger.Debugf("rpc connection opened [host=%s]", u.Host)
	return newConnection(caller, u.Host, key), nil
}

// QueryAll reads totalSupply and decimals for every asset in order.
// It returns either a complete set or an error; partial results are discarded.
func (g *Gateway) QueryAll(ctx context.Context, conn *Connection) (model.MetricSet, error) {
	if len(g.assets) == 0 {
		return nil, errs.Fetch("", errs.ErrNoAssets)
	}
	if conn == nil {
		return nil, errs.Fetch("", errs.ErrConnectionClosed)
	}

	set := make(model.MetricSet, 0, len(g.assets))
	for _, asset := range g.assets {
		rec, err := g.queryAsset(ctx, conn, asset)
		if err != nil {
			g.logger.Errorf("failed to query asset [name=%s, address=%s]: %v", asset.Name, asset.Address, err)
			return nil, errs.Fetch(asset.Name, err)
		}
		g.logger.Debugf("asset queried [name=%s, decimals=%d]", asset.Name, rec.Decimals())
		set = append(set, rec)
	}
	return set, nil
}

func (g *Gateway) queryAsset(ctx context.Context, conn *Connection, asset model.Asset) (model.MetricRecord, error) {
	if !common.IsHexAddress(asset.Address) {
		return model.MetricRecord{}, fmt.Errorf("invalid contract address %q", asset.Address)
	}
	addr := common.HexToAddress(asset.Address)

	supplyOut, err := callMethod(ctx, conn, addr, methodTotalSupply)
	if err != nil {
		return model.MetricRecord{}, err
	}
	supply, ok := supplyOut.(*big.Int)
	if !ok {
		return model.MetricRecord{}, fmt.Errorf("%w: %s returned %T", errs.ErrMalformedContract, methodTotalSupply, supplyOut)
	}

	decimalsOut, err := callMethod(ctx, conn, addr, methodDecimals)
	if err != nil {
		return model.MetricRecord{}, err
	}
	decimals, ok := decimalsOut.(uint8)
	if !ok {
		return model.MetricRecord{}, fmt.Errorf("%w: %s returned %T", errs.ErrMalformedContract, methodDecimals, decimalsOut)
	}

	rec, err := model.NewMetricRecord(asset.Name, supply, decimals)
	if err != nil {
		return model.MetricRecord{}, fmt.Errorf("%w: %w", errs.ErrMalformedContract, err)
	}
	return rec, nil
}

func callMethod(ctx context.Context, conn *Connection, addr common.Address, method string) (any, error) {
	data, err := ERC20.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("%w: pack %s: %w", errs.ErrMalformedContract, method, err)
	}

	out, err := conn.call(ctx, ethereum.CallMsg{To: &addr, Data: data})
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	vals, err := ERC20.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("%w: unpack %s: %w", errs.ErrMalformedContract, method, err)
	}
	if len(vals) != 1 {
		return nil, fmt.Errorf("%w: %s returned %d values", errs.ErrMalformedContract, method, len(vals))
	}
	return vals[0], nil
}
