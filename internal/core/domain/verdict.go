package domain

// VerificationVerdict is the structured outcome of verifying one unit.
// It is produced once per unit and never mutated.
type VerificationVerdict struct {
	// Classification is one of the pipeline's closed set.
	Classification Classification `json:"classification"`

	// Confidence is in [0,1]. Fallback verdicts always carry 0.
	Confidence float64 `json:"confidence"`

	// Rationale is free text from the verifier, or the fallback reason.
	Rationale string `json:"rationale"`

	// References are the corpus entries the verdict relies on.
	References []Reference `json:"references,omitempty"`

	// Fallback is true when the verdict was derived from the local score.
	Fallback bool `json:"fallback"`
}

// Reference links a verdict to a corpus entry.
type Reference struct {
	// EntryID is the corpus entry identifier.
	EntryID string `json:"id"`

	// Source is the entry's filename.
	Source string `json:"source"`

	// Similarity is the reported similarity in [0,1].
	Similarity float64 `json:"similarity"`
}

// VerifyRequest is the input to one external verification.
type VerifyRequest struct {
	// UnitIndex identifies the unit within the run.
	UnitIndex int

	// Text is the unit text.
	Text string

	// Score is the unit's local score.
	Score float64

	// Candidates is the shortlist from the candidate selector.
	Candidates []Candidate
}
