// Package roomid generates human-readable room identifiers from an
// embedded word list, e.g. "cedar-lantern-wren".
package roomid

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	_ "embed"
)

//go:embed wordlist.txt
var rawWordList string

const wordsPerID = 3

var words = func() []string {
	lines := strings.Split(strings.TrimSpace(rawWordList), "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if w := strings.TrimSpace(l); w != "" {
			out = append(out, w)
		}
	}
	return out
}()

// New returns a fresh room id of three random hyphen-joined words.
func New() (string, error) {
	picks := make([]string, 0, wordsPerID)
	max := big.NewInt(int64(len(words)))
	for i := 0; i < wordsPerID; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("pick word: %w", err)
		}
		picks = append(picks, words[n.Int64()])
	}
	return strings.Join(picks, "-"), nil
}
