package mediation

import (
	"errors"
	"testing"
)

func TestContentHashNormalizes(t *testing.T) {
	a := ContentHash("dispute A")
	b := ContentHash("  dispute \n\t A ")
	if a != b {
		t.Fatalf("ContentHash() differs for whitespace variants: %q vs %q", a, b)
	}
	// e + combining acute folds to the precomposed form
	if ContentHash("cafe\u0301") != ContentHash("caf\u00e9") {
		t.Fatalf("ContentHash() should fold to NFC")
	}
	if len(a) != 32 {
		t.Fatalf("ContentHash() length = %d, want 32", len(a))
	}
	if ContentHash("dispute B") == a {
		t.Fatalf("ContentHash() collided for different text")
	}
}

func TestCacheKeyString(t *testing.T) {
	key := CacheKey{CategoryNo: 7, Hash: "abc"}
	if key.String() != "7:abc" {
		t.Fatalf("String() = %q", key.String())
	}
}

func TestStripFence(t *testing.T) {
	cases := map[string]string{
		"```json\n[\"a\"]\n```": `["a"]`,
		"```\n[\"a\"]```":       `["a"]`,
		"```[\"a\"]```":         `["a"]`,
		"  [\"a\"]  ":           `["a"]`,
	}
	for in, want := range cases {
		if got := StripFence(in); got != want {
			t.Fatalf("StripFence(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseVariants(t *testing.T) {
	got, err := ParseVariants("```json\n[\"one\", \" \", {\"proposal\": \"two\"}]\n```")
	if err != nil {
		t.Fatalf("ParseVariants() error = %v", err)
	}
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Fatalf("ParseVariants() = %#v", got)
	}

	if _, err := ParseVariants("not json"); !errors.Is(err, ErrMalformedVariants) {
		t.Fatalf("ParseVariants(not json) error = %v", err)
	}
	if _, err := ParseVariants(`{"proposal":"x"}`); !errors.Is(err, ErrMalformedVariants) {
		t.Fatalf("ParseVariants(object) error = %v", err)
	}
	if _, err := ParseVariants(`[]`); !errors.Is(err, ErrNoVariants) {
		t.Fatalf("ParseVariants([]) error = %v", err)
	}
}

func TestOriginalGroupAndReuse(t *testing.T) {
	issueNo := int64(3)
	key := NewCacheKey(3, "dispute A")
	group := OriginalGroup(key, "g1", "dispute A", "refund", "m", []string{"a", "b", "c", "d"}, &issueNo)
	for i, e := range group {
		if e.Sequence != i+1 || !e.IsFromAPI || e.Hash != key.Hash {
			t.Fatalf("OriginalGroup()[%d] = %#v", i, e)
		}
	}

	group[1].No = 42
	reused := ReuseOf(group[1], "g2", "dispute A", "refund", nil)
	if reused.IsFromAPI || reused.SourceLogNo == nil || *reused.SourceLogNo != 42 {
		t.Fatalf("ReuseOf() = %#v", reused)
	}
	if reused.SimilarityScore != ExactMatchSimilarity || reused.ProposalText != "b" || reused.GroupID != "g2" {
		t.Fatalf("ReuseOf() = %#v", reused)
	}
}
