package issue

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	CodeLength   = 6
)

// RandomSource yields uniform integers in [0, n).
type RandomSource interface {
	Intn(n int) int
}

// CryptoRandom draws from crypto/rand.
type CryptoRandom struct{}

func (CryptoRandom) Intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}
	return int(v.Int64())
}

// NewCode draws a CodeLength-character base-36 uppercase code.
func NewCode(r RandomSource) string {
	var b strings.Builder
	b.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		b.WriteByte(CodeAlphabet[r.Intn(len(CodeAlphabet))])
	}
	return b.String()
}

// FallbackCode is derived from a fresh UUID. Its length never equals CodeLength, so it cannot
// collide with a drawn code.
func FallbackCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}
