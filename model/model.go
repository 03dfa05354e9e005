// Package model contains core data types for the project.
package model

import (
	"errors"
	"fmt"
	"math/big"
)

// MaxDecimals is the largest scaling exponent a MetricRecord accepts.
// 10^77 already exceeds the uint256 range an ERC-20 supply can hold.
const MaxDecimals = 77

var (
	ErrEmptyName        = errors.New("empty asset name")
	ErrInvalidQuantity  = errors.New("quantity must be a non-negative integer")
	ErrDecimalsTooLarge = fmt.Errorf("scaling exponent exceeds %d", MaxDecimals)
)

// Asset is a monitored token contract.
type Asset struct {
	Address string `json:"address"` // Hex contract address.
	Name    string `json:"name"`    // Display name.
}

// DefaultAssets is the fixed list of stablecoins queried on every pass.
var DefaultAssets = []Asset{
	{Address: "0xdAC17F958D2ee523a2206206994597C13D831ec7", Name: "USDT"},
	{Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Name: "USDC"},
}

// MetricRecord is the supply reading of one asset. It is immutable once constructed.
type MetricRecord struct {
	name     string
	quantity *big.Int
	decimals uint8
}

// NewMetricRecord validates and copies its inputs into a MetricRecord.
func NewMetricRecord(name string, quantity *big.Int, decimals uint8) (MetricRecord, error) {
	if name == "" {
		return MetricRecord{}, ErrEmptyName
	}
	if quantity == nil || quantity.Sign() < 0 {
		return MetricRecord{}, fmt.Errorf("%s: %w", name, ErrInvalidQuantity)
	}
	if decimals > MaxDecimals {
		return MetricRecord{}, fmt.Errorf("%s: %w (got %d)", name, ErrDecimalsTooLarge, decimals)
	}
	return MetricRecord{
		name:     name,
		quantity: new(big.Int).Set(quantity),
		decimals: decimals,
	}, nil
}

// Name returns the asset display name.
func (r MetricRecord) Name() string { return r.name }

// Quantity returns a copy of the raw total quantity.
func (r MetricRecord) Quantity() *big.Int {
	if r.quantity == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(r.quantity)
}

// Decimals returns how many fractional decimal digits Quantity encodes.
func (r MetricRecord) Decimals() uint8 { return r.decimals }

// MetricSet holds one record per monitored asset, in query order.
type MetricSet []MetricRecord
