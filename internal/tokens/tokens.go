// Package tokens holds the per-chain token configuration and identity overrides.
package tokens

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"pairScope/internal/model"
)

// SupportedChainID enumerates the chains the dashboard can run on.
type SupportedChainID uint64

const (
	Mainnet SupportedChainID = 1
	Rinkeby SupportedChainID = 4
)

// IsSupported reports whether id is a known chain.
func IsSupported(id uint64) bool {
	switch SupportedChainID(id) {
	case Mainnet, Rinkeby:
		return true
	}
	return false
}

func (c SupportedChainID) String() string {
	switch c {
	case Mainnet:
		return "mainnet"
	case Rinkeby:
		return "rinkeby"
	default:
		return "unknown"
	}
}

var wrappedNative = map[SupportedChainID]string{
	Mainnet: "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
	Rinkeby: "0xdf032bc4b9dc2782bb09352007d4c57b75160b15",
}

// WrappedNative returns the lowercase wrapped native token address of a chain.
func WrappedNative(chain SupportedChainID) (string, bool) {
	addr, ok := wrappedNative[chain]
	return addr, ok
}

// Override replaces the display identity of a token.
type Override struct {
	Name   string
	Symbol string
}

// Overrides is keyed by lowercase token address.
var Overrides = map[string]Override{
	"0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2": {Name: "Ether (Wrapped)", Symbol: "ETH"},
	"0x1416946162b1c2c871a73b07e932d2fb6c932069": {Name: "Energi", Symbol: "NRGE"},
}

// NormalizeAddress validates a hex address and returns it lowercased.
func NormalizeAddress(addr string) (string, bool) {
	addr = strings.TrimSpace(addr)
	if !common.IsHexAddress(addr) {
		return "", false
	}
	return strings.ToLower(common.HexToAddress(addr).Hex()), true
}

// NormalizeNames applies the override table to both tokens of a pair. Applying it twice
// gives the same result as applying it once.
func NormalizeNames(p *model.PairSnapshot) {
	if p == nil {
		return
	}
	normalizeToken(&p.Token0)
	normalizeToken(&p.Token1)
}

func normalizeToken(t *model.TokenRef) {
	o, ok := Overrides[strings.ToLower(t.ID)]
	if !ok {
		return
	}
	t.Name = o.Name
	t.Symbol = o.Symbol
}
