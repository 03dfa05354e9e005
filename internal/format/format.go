// Package format renders metric sets as display lines.
package format

import (
	"fmt"
	"math/big"

	"github.com/and161185/typestate-monitor/model"
)

// Precision is the number of fractional digits shown for a supply.
const Precision = 2

// Supply renders quantity / 10^decimals rounded to Precision digits.
func Supply(r model.MetricRecord) string {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(r.Decimals())), nil)
	return new(big.Rat).SetFrac(r.Quantity(), scale).FloatString(Precision)
}

// Line renders one record as "<name> Supply: $<value>".
func Line(r model.MetricRecord) string {
	return fmt.Sprintf("%s Supply: $%s", r.Name(), Supply(r))
}

// Lines renders set in order, one line per record.
func Lines(set model.MetricSet) []string {
	out := make([]string, 0, len(set))
	for _, r := range set {
		out = append(out, Line(r))
	}
	return out
}
