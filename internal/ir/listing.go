package ir

import (
	"fmt"
	"strings"
)

// Listing renders code as a human-readable instruction listing, one
// instruction per line with a zero-based index prefix.
func Listing(code []Instruction) string {
	var sb strings.Builder
	for i, ins := range code {
		fmt.Fprintf(&sb, "%3d: %s\n", i, ins)
	}
	return sb.String()
}
