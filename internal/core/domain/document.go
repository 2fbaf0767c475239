package domain

import "time"

// Document is an uploaded document after identity resolution and extraction.
// It is immutable once created.
type Document struct {
	// ID is the unique identifier for this upload.
	ID string

	// Filename is the name the document was uploaded under.
	Filename string

	// StoredName is the collision-free name the raw bytes are stored under.
	// For duplicates this is the name of the previously stored blob.
	StoredName string

	// Digest is the content digest of the raw bytes ("sha256:<hex>").
	Digest string

	// MIMEType is the content type of the raw bytes.
	MIMEType string

	// Text is the extracted plain text.
	Text string

	// CreatedAt is when the document was received.
	CreatedAt time.Time
}

// Segment is an ordered, contiguous slice of a document's text.
// Index is stable within the document and is the join key for all
// downstream results.
type Segment struct {
	// Index is the position of the segment in the document.
	Index int

	// Text is the segment text.
	Text string

	// Sentences are the sentences of this segment in order.
	Sentences []Sentence
}

// Len returns the segment length in characters.
func (s Segment) Len() int {
	return len([]rune(s.Text))
}

// Sentence is an atomic unit inside a Segment.
type Sentence struct {
	// Index is the position of the sentence within its segment.
	Index int

	// Text is the sentence text.
	Text string
}

// Claim is a distinct declarative statement extracted for novelty checks.
type Claim struct {
	// Index is the position of the claim among the document's claims.
	Index int

	// SegmentIndex is the segment the claim was taken from.
	SegmentIndex int

	// SentenceIndex is the sentence within that segment.
	SentenceIndex int

	// Text is the claim text as it appears in the document.
	Text string
}

// SegmentScore is the local scorer's self-contained result for one segment.
type SegmentScore struct {
	// SegmentIndex joins the score back to its segment.
	SegmentIndex int

	// Score is the segment-level local score in [0,1].
	Score float64

	// SentenceScores holds one score per sentence, in sentence order.
	SentenceScores []float64

	// Degraded is true when the worker failed and the zero score was substituted.
	Degraded bool
}

// Identity is the outcome of resolving an upload against stored raw documents.
type Identity struct {
	// Digest is the content digest of the raw bytes.
	Digest string

	// StoredName is the name the bytes are (or already were) stored under.
	StoredName string

	// Duplicate is true when identical bytes were already stored.
	Duplicate bool

	// Renamed is true when the filename was taken and a version suffix was added.
	Renamed bool

	// Stored is true when the bytes were written by this resolution.
	Stored bool
}

// StoredBlob describes a raw document held by the blob store.
type StoredBlob struct {
	// Name is the unique stored name.
	Name string

	// Digest is the content digest of the bytes.
	Digest string

	// MIMEType is the content type supplied at upload.
	MIMEType string

	// Size is the content length in bytes.
	Size int64

	// CreatedAt is when the blob was stored.
	CreatedAt time.Time
}
