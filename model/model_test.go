package model

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMetricRecord(t *testing.T) {
	tests := []struct {
		name     string
		asset    string
		quantity *big.Int
		decimals uint8
		wantErr  error
	}{
		{"valid", "USDT", big.NewInt(1_500_000), 6, nil},
		{"zero_quantity", "USDC", big.NewInt(0), 6, nil},
		{"max_decimals", "X", big.NewInt(1), MaxDecimals, nil},
		{"empty_name", "", big.NewInt(1), 6, ErrEmptyName},
		{"nil_quantity", "USDT", nil, 6, ErrInvalidQuantity},
		{"negative_quantity", "USDT", big.NewInt(-1), 6, ErrInvalidQuantity},
		{"decimals_too_large", "USDT", big.NewInt(1), MaxDecimals + 1, ErrDecimalsTooLarge},
	}

	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			rec, err := NewMetricRecord(v.asset, v.quantity, v.decimals)
			if v.wantErr != nil {
				require.ErrorIs(t, err, v.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, v.asset, rec.Name())
			require.Equal(t, 0, rec.Quantity().Cmp(v.quantity))
			require.Equal(t, v.decimals, rec.Decimals())
		})
	}
}

func TestMetricRecord_Immutable(t *testing.T) {
	q := big.NewInt(100)
	rec, err := NewMetricRecord("USDT", q, 2)
	require.NoError(t, err)

	q.SetInt64(5)
	require.Equal(t, int64(100), rec.Quantity().Int64())

	out := rec.Quantity()
	out.SetInt64(7)
	require.Equal(t, int64(100), rec.Quantity().Int64())
}

func TestDefaultAssets_Order(t *testing.T) {
	require.Len(t, DefaultAssets, 2)
	require.Equal(t, "USDT", DefaultAssets[0].Name)
	require.Equal(t, "USDC", DefaultAssets[1].Name)
}
