package evm

import (
	"fmt"
	"math/big"
	"strings"
)

func parseHexUint(hexStr string) (uint64, error) {
	if hexStr == "" {
		return 0, nil
	}
	n := new(big.Int)
	if _, ok := n.SetString(strings.TrimPrefix(hexStr, "0x"), 16); !ok {
		return 0, fmt.Errorf("invalid hex: %s", hexStr)
	}
	return n.Uint64(), nil
}

// hexToDecimalString converts a hex quantity to a decimal wei string.
// Malformed input becomes "0": detectors stay conservative rather than
// crash-prone.
func hexToDecimalString(hexStr string) string {
	if hexStr == "" {
		return "0"
	}
	n := new(big.Int)
	if _, ok := n.SetString(strings.TrimPrefix(hexStr, "0x"), 16); !ok {
		return "0"
	}
	return n.String()
}

// calldataBytes returns the byte length of a 0x-prefixed calldata
// string.
func calldataBytes(input string) int {
	trimmed := strings.TrimPrefix(input, "0x")
	return len(trimmed) / 2
}

func getString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
