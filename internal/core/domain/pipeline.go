package domain

const unknownDescription = "Unknown"

// PipelineKind identifies one instance of the evaluation pipeline.
type PipelineKind string

// Available pipeline kinds.
const (
	// PipelinePlagiarism scores segments for copied or paraphrased material.
	PipelinePlagiarism PipelineKind = "plagiarism"

	// PipelineAI scores sentences for machine authorship.
	PipelineAI PipelineKind = "ai"

	// PipelineNovelty checks extracted claims against prior material.
	PipelineNovelty PipelineKind = "novelty"
)

// UnitKind names the unit a pipeline instance scores and verifies.
type UnitKind string

// Available unit kinds.
const (
	UnitSegment  UnitKind = "segment"
	UnitSentence UnitKind = "sentence"
	UnitClaim    UnitKind = "claim"
)

// Classification is a verdict class from a pipeline's closed set.
type Classification string

// Classifications across all pipeline kinds.
const (
	ClassCopied      Classification = "copied"
	ClassParaphrased Classification = "paraphrased"
	ClassOriginal    Classification = "original"

	ClassAI    Classification = "ai"
	ClassHuman Classification = "human"

	ClassMatched   Classification = "matched"
	ClassUnmatched Classification = "unmatched"

	ClassUncertain Classification = "uncertain"
)

// cutPoint maps a minimum local score to a classification.
type cutPoint struct {
	min   float64
	class Classification
}

// fallbackCutPoints are evaluated top-down; the last entry is the floor.
// Every positive class starts at or above the default escalation threshold.
var fallbackCutPoints = map[PipelineKind][]cutPoint{
	PipelinePlagiarism: {
		{0.90, ClassCopied},
		{0.70, ClassParaphrased},
		{0, ClassOriginal},
	},
	PipelineAI: {
		{0.80, ClassAI},
		{0.50, ClassUncertain},
		{0, ClassHuman},
	},
	PipelineNovelty: {
		{0.80, ClassMatched},
		{0.50, ClassUncertain},
		{0, ClassUnmatched},
	},
}

// IsValid returns true if the pipeline kind is recognised.
func (k PipelineKind) IsValid() bool {
	switch k {
	case PipelinePlagiarism, PipelineAI, PipelineNovelty:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k PipelineKind) String() string {
	return string(k)
}

// Description returns a human-readable description of the pipeline.
func (k PipelineKind) Description() string {
	switch k {
	case PipelinePlagiarism:
		return "Plagiarism (copied and paraphrased segments)"
	case PipelineAI:
		return "AI authorship (machine-written sentences)"
	case PipelineNovelty:
		return "Novelty (claims without prior match)"
	default:
		return unknownDescription
	}
}

// Unit returns the unit kind this pipeline scores.
func (k PipelineKind) Unit() UnitKind {
	switch k {
	case PipelineAI:
		return UnitSentence
	case PipelineNovelty:
		return UnitClaim
	default:
		return UnitSegment
	}
}

// Classes returns the closed classification set of this pipeline.
func (k PipelineKind) Classes() []Classification {
	switch k {
	case PipelinePlagiarism:
		return []Classification{ClassCopied, ClassParaphrased, ClassOriginal}
	case PipelineAI:
		return []Classification{ClassAI, ClassHuman, ClassUncertain}
	case PipelineNovelty:
		return []Classification{ClassMatched, ClassUnmatched, ClassUncertain}
	default:
		return nil
	}
}

// Accepts returns true if c belongs to this pipeline's classification set.
func (k PipelineKind) Accepts(c Classification) bool {
	for _, class := range k.Classes() {
		if class == c {
			return true
		}
	}
	return false
}

// IsPositive returns true if c marks a unit as suspicious for this pipeline.
func (k PipelineKind) IsPositive(c Classification) bool {
	switch k {
	case PipelinePlagiarism:
		return c == ClassCopied || c == ClassParaphrased
	case PipelineAI:
		return c == ClassAI
	case PipelineNovelty:
		return c == ClassMatched
	default:
		return false
	}
}

// FallbackClassification derives a classification from a local score using
// the pipeline's fixed cut points.
func (k PipelineKind) FallbackClassification(score float64) Classification {
	points := fallbackCutPoints[k]
	for _, p := range points {
		if score >= p.min {
			return p.class
		}
	}
	if len(points) > 0 {
		return points[len(points)-1].class
	}
	return ClassUncertain
}

// UsesCorpusSimilarity returns true if the pipeline's local score is the
// unit's best corpus similarity rather than the stylometric score.
func (k PipelineKind) UsesCorpusSimilarity() bool {
	return k == PipelinePlagiarism || k == PipelineNovelty
}

// AllPipelineKinds returns all available pipeline kinds.
func AllPipelineKinds() []PipelineKind {
	return []PipelineKind{PipelinePlagiarism, PipelineAI, PipelineNovelty}
}

// ParsePipelineKind converts a string to a PipelineKind.
func ParsePipelineKind(s string) (PipelineKind, error) {
	k := PipelineKind(s)
	if !k.IsValid() {
		return "", ErrUnknownPipeline
	}
	return k, nil
}
