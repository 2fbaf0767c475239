package domain

import "time"

// UnitResult is the per-unit outcome of a pipeline run.
type UnitResult struct {
	// Index is the unit's position in the run.
	Index int `json:"index"`

	// SegmentIndex is the segment the unit belongs to.
	SegmentIndex int `json:"segment_index"`

	// Text is the unit text.
	Text string `json:"-"`

	// Length is the unit length in characters.
	Length int `json:"length"`

	// Score is the local score used for escalation and ranking.
	Score float64 `json:"score"`

	// StyleScore is the local scorer's output for the unit.
	StyleScore float64 `json:"style_score"`

	// Similarity is the best candidate similarity, 0 with no candidates.
	Similarity float64 `json:"similarity"`

	// Escalated is true when the unit was sent to the external verifier.
	Escalated bool `json:"escalated"`

	// Verdict is the verifier's or the fallback verdict.
	Verdict VerificationVerdict `json:"verdict"`
}

// MatchedFile is a prior file referenced by one or more verdicts.
type MatchedFile struct {
	// Source is the corpus entry filename.
	Source string `json:"source"`

	// AvgSimilarity is the mean reported similarity over all references.
	AvgSimilarity float64 `json:"avg_similarity"`

	// References is the number of references averaged.
	References int `json:"references"`
}

// FlaggedUnit is one unit with a positive classification, kept for review.
type FlaggedUnit struct {
	// UnitIndex is the unit's position in the run.
	UnitIndex int `json:"unit_index"`

	// SegmentIndex is the segment the unit belongs to.
	SegmentIndex int `json:"segment_index"`

	// Excerpt is a bounded excerpt of the unit text.
	Excerpt string `json:"excerpt"`

	// Score is the unit's local score.
	Score float64 `json:"score"`

	// Verdict is the unit's verdict.
	Verdict VerificationVerdict `json:"verdict"`
}

// AggregateReport is the document-level result of one pipeline run.
// It is computed once and never mutated afterwards.
type AggregateReport struct {
	// ID is the unique identifier for the report.
	ID string `json:"id"`

	// Kind is the pipeline that produced the report.
	Kind PipelineKind `json:"kind"`

	// DocumentDigest keys the report to the document's resolved identity.
	DocumentDigest string `json:"document_digest"`

	// StoredName is the resolved stored name of the document.
	StoredName string `json:"stored_name"`

	// Filename is the name the document was uploaded under.
	Filename string `json:"filename"`

	// ScorerTier is the local scorer backend used for the run.
	ScorerTier ScorerTier `json:"scorer_tier"`

	// Percentage is the pipeline's overall metric in [0,100].
	Percentage float64 `json:"percentage"`

	// TotalUnits is the number of scored units.
	TotalUnits int `json:"total_units"`

	// Escalated is the number of units sent to the verifier.
	Escalated int `json:"escalated"`

	// FallbackCount is the number of units with fallback verdicts.
	FallbackCount int `json:"fallback_count"`

	// Counts holds the number of units per classification.
	Counts map[Classification]int `json:"counts"`

	// MatchedFiles is the user-facing ranked list of prior files.
	MatchedFiles []MatchedFile `json:"matched_files"`

	// AllMatchedFiles is the full ranked list. It is persisted but not rendered.
	AllMatchedFiles []MatchedFile `json:"all_matched_files"`

	// Flagged holds the highest-scoring positive units.
	Flagged []FlaggedUnit `json:"flagged"`

	// Units holds every unit result in index order.
	Units []UnitResult `json:"units"`

	// CreatedAt is when the report was computed.
	CreatedAt time.Time `json:"created_at"`
}

// ReportSummary is the listing view of a stored report.
type ReportSummary struct {
	ID             string       `json:"id"`
	Kind           PipelineKind `json:"kind"`
	DocumentDigest string       `json:"document_digest"`
	StoredName     string       `json:"stored_name"`
	Percentage     float64      `json:"percentage"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Summary returns the listing view of the report.
func (r *AggregateReport) Summary() ReportSummary {
	return ReportSummary{
		ID:             r.ID,
		Kind:           r.Kind,
		DocumentDigest: r.DocumentDigest,
		StoredName:     r.StoredName,
		Percentage:     r.Percentage,
		CreatedAt:      r.CreatedAt,
	}
}
