package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

var adjectives = []string{
	"amber", "azure", "bold", "brave", "bright",
	"calm", "clear", "crisp", "deep", "early",
	"fast", "fresh", "glad", "gold", "green",
	"keen", "kind", "light", "mild", "neat",
	"prime", "pure", "quiet", "rare", "swift",
}

var nouns = []string{
	"abacus", "angle", "axis", "cipher", "cube",
	"decimal", "digit", "divisor", "factor", "figure",
	"fraction", "integer", "ledger", "matrix", "modulus",
	"number", "operand", "product", "quotient", "radix",
	"ratio", "sigma", "slide", "sum", "tally",
}

// NewID generates a human-friendly session ID in the form "adjective-noun-xxxx".
func NewID() string {
	var suffix [2]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		// crypto/rand does not fail on supported platforms
		return fmt.Sprintf("%s-%s", pickRandom(adjectives), pickRandom(nouns))
	}
	return fmt.Sprintf("%s-%s-%s", pickRandom(adjectives), pickRandom(nouns), hex.EncodeToString(suffix[:]))
}

func pickRandom(list []string) string {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(list))))
	if err != nil {
		return list[0]
	}
	return list[n.Int64()]
}
