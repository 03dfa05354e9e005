package gateway

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	methodTotalSupply = "totalSupply"
	methodDecimals    = "decimals"
)

// erc20JSON declares the two read-only ERC-20 functions the monitor queries.
const erc20JSON = `[
	{"constant":true,"inputs":[],"name":"totalSupply","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
]`

// ERC20 is the parsed contract interface used to encode calls and decode results.
var ERC20 = mustParseABI(erc20JSON)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic("invalid ERC-20 ABI: " + err.Error())
	}
	return parsed
}
