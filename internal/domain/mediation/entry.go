package mediation

import "time"

// ExactMatchSimilarity is recorded on rows reused through an identical content hash.
const ExactMatchSimilarity = 1.0

// ProposalLogEntry is one cached proposal variant.
type ProposalLogEntry struct {
	No                int64
	ID                string
	CategoryNo        int64
	Hash              string
	GroupID           string
	ConflictSituation string
	Requirements      string
	ProposalText      string
	AIModel           string
	IsFromAPI         bool
	SourceLogNo       *int64
	SimilarityScore   float64
	ReuseCount        int64
	LastReusedAt      *time.Time
	IssueNo           *int64
	Sequence          int
	CreatedAt         time.Time
}

func (e ProposalLogEntry) Key() CacheKey {
	return CacheKey{CategoryNo: e.CategoryNo, Hash: e.Hash}
}

// ReuseOf builds the row recorded when source is served from cache.
func ReuseOf(source ProposalLogEntry, groupID, conflict, requirements string, issueNo *int64) ProposalLogEntry {
	sourceNo := source.No
	return ProposalLogEntry{
		CategoryNo:        source.CategoryNo,
		Hash:              source.Hash,
		GroupID:           groupID,
		ConflictSituation: conflict,
		Requirements:      requirements,
		ProposalText:      source.ProposalText,
		AIModel:           source.AIModel,
		IsFromAPI:         false,
		SourceLogNo:       &sourceNo,
		SimilarityScore:   ExactMatchSimilarity,
		IssueNo:           issueNo,
		Sequence:          source.Sequence,
	}
}

// OriginalGroup builds one original row per variant, numbered from 1 and sharing groupID.
func OriginalGroup(key CacheKey, groupID, conflict, requirements, model string, variants []string, issueNo *int64) []ProposalLogEntry {
	out := make([]ProposalLogEntry, 0, len(variants))
	for i, text := range variants {
		out = append(out, ProposalLogEntry{
			CategoryNo:        key.CategoryNo,
			Hash:              key.Hash,
			GroupID:           groupID,
			ConflictSituation: conflict,
			Requirements:      requirements,
			ProposalText:      text,
			AIModel:           model,
			IsFromAPI:         true,
			IssueNo:           issueNo,
			Sequence:          i + 1,
		})
	}
	return out
}

// Texts returns the proposal text of each entry in order.
func Texts(entries []ProposalLogEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ProposalText)
	}
	return out
}
