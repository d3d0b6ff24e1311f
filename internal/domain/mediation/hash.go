package mediation

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize folds text to NFC, trims it and collapses internal whitespace runs to one space.
func Normalize(text string) string {
	return strings.Join(strings.Fields(norm.NFC.String(text)), " ")
}

// ContentHash is the lowercase hex MD5 digest of the normalized text.
func ContentHash(text string) string {
	sum := md5.Sum([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])
}

// CacheKey addresses one group of interchangeable proposal variants.
type CacheKey struct {
	CategoryNo int64
	Hash       string
}

func NewCacheKey(categoryNo int64, conflictText string) CacheKey {
	return CacheKey{CategoryNo: categoryNo, Hash: ContentHash(conflictText)}
}

func (k CacheKey) String() string {
	return strconv.FormatInt(k.CategoryNo, 10) + ":" + k.Hash
}
