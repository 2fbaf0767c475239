package mcp

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/veritas-cli/internal/candidates"
	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driving"
)

const (
	inlineFilename = "inline.txt"
	excerptChars   = 240
)

// EvaluateInput is the input schema for the evaluate_document tool.
type EvaluateInput struct {
	Path      string   `json:"path,omitempty" jsonschema:"path of a local document to evaluate"`
	Text      string   `json:"text,omitempty" jsonschema:"inline plain text to evaluate when no path is given"`
	Filename  string   `json:"filename,omitempty" jsonschema:"name to record for inline text (default inline.txt)"`
	Kind      string   `json:"kind" jsonschema:"pipeline to run: plagiarism, ai or novelty"`
	Threshold *float64 `json:"threshold,omitempty" jsonschema:"escalation threshold override in [0,1]"`
}

// ReportOutput is the output schema for report tools.
type ReportOutput struct {
	ID            string              `json:"id"`
	Kind          string              `json:"kind"`
	Filename      string              `json:"filename"`
	StoredName    string              `json:"stored_name"`
	Digest        string              `json:"digest"`
	ScorerTier    string              `json:"scorer_tier"`
	Percentage    float64             `json:"percentage"`
	TotalUnits    int                 `json:"total_units"`
	Escalated     int                 `json:"escalated"`
	FallbackCount int                 `json:"fallback_count"`
	Counts        map[string]int      `json:"counts"`
	MatchedFiles  []MatchedFileOutput `json:"matched_files"`
	Flagged       []FlaggedUnitOutput `json:"flagged"`
	CreatedAt     string              `json:"created_at"`
}

// MatchedFileOutput is one prior file in a report.
type MatchedFileOutput struct {
	Source        string  `json:"source"`
	AvgSimilarity float64 `json:"avg_similarity"`
	References    int     `json:"references"`
}

// FlaggedUnitOutput is one flagged unit in a report.
type FlaggedUnitOutput struct {
	UnitIndex      int     `json:"unit_index"`
	SegmentIndex   int     `json:"segment_index"`
	Excerpt        string  `json:"excerpt"`
	Score          float64 `json:"score"`
	Classification string  `json:"classification"`
	Confidence     float64 `json:"confidence"`
	Rationale      string  `json:"rationale"`
	Fallback       bool    `json:"fallback"`
}

// GetReportInput is the input schema for the get_report tool.
type GetReportInput struct {
	ID string `json:"id" jsonschema:"report id"`
}

// ListReportsInput is the input schema for the list_reports tool.
type ListReportsInput struct {
	Digest string `json:"digest,omitempty" jsonschema:"document digest to filter by; empty lists all reports"`
}

// ListReportsOutput is the output schema for the list_reports tool.
type ListReportsOutput struct {
	Reports []ReportSummaryOutput `json:"reports"`
	Count   int                   `json:"count"`
}

// ReportSummaryOutput is one listed report.
type ReportSummaryOutput struct {
	ID         string  `json:"id"`
	Kind       string  `json:"kind"`
	StoredName string  `json:"stored_name"`
	Digest     string  `json:"digest"`
	Percentage float64 `json:"percentage"`
	CreatedAt  string  `json:"created_at"`
}

// ListCorpusInput is the input schema for the list_corpus tool.
type ListCorpusInput struct {
	Kind string `json:"kind" jsonschema:"pipeline whose corpus to list: plagiarism, ai or novelty"`
}

// ListCorpusOutput is the output schema for the list_corpus tool.
type ListCorpusOutput struct {
	Entries []CorpusEntryOutput `json:"entries"`
	Count   int                 `json:"count"`
}

// CorpusEntryOutput is one corpus entry.
type CorpusEntryOutput struct {
	ID            string `json:"id"`
	Source        string `json:"source"`
	Texts         int    `json:"texts"`
	HasEmbeddings bool   `json:"has_embeddings"`
	CreatedAt     string `json:"created_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "evaluate_document",
		Description: "Evaluate a document for plagiarism, AI authorship or novelty against the local corpus. " +
			"Pass a local file path or inline text.",
	}, s.handleEvaluate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_report",
		Description: "Get a stored evaluation report by id",
	}, s.handleGetReport)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_reports",
		Description: "List stored evaluation reports, newest first",
	}, s.handleListReports)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_corpus",
		Description: "List the entries of a pipeline's comparison corpus",
	}, s.handleListCorpus)
}

// handleEvaluate handles the evaluate_document tool invocation.
func (s *Server) handleEvaluate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EvaluateInput,
) (*mcp.CallToolResult, ReportOutput, error) {
	kind, err := domain.ParsePipelineKind(input.Kind)
	if err != nil {
		return nil, ReportOutput{}, toolError(fmt.Errorf("kind %q: %w", input.Kind, err))
	}

	req := driving.EvaluateRequest{Kind: kind, Threshold: input.Threshold}
	switch {
	case input.Path != "":
		content, err := s.readFile(input.Path)
		if err != nil {
			return nil, ReportOutput{}, toolError(err)
		}
		req.Filename = filepath.Base(input.Path)
		req.Content = content
	case input.Text != "":
		req.Filename = input.Filename
		if req.Filename == "" {
			req.Filename = inlineFilename
		}
		req.MIMEType = "text/plain"
		req.Content = []byte(input.Text)
	default:
		return nil, ReportOutput{}, toolError(fmt.Errorf("path or text required: %w", domain.ErrInvalidInput))
	}

	report, err := s.ports.Evaluation.Evaluate(ctx, req)
	if err != nil {
		return nil, ReportOutput{}, toolError(err)
	}
	return nil, reportOutput(report), nil
}

// handleGetReport handles the get_report tool invocation.
func (s *Server) handleGetReport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetReportInput,
) (*mcp.CallToolResult, ReportOutput, error) {
	if s.ports.Report == nil {
		return nil, ReportOutput{}, ErrServiceUnavailable
	}
	report, err := s.ports.Report.Get(ctx, input.ID)
	if err != nil {
		return nil, ReportOutput{}, toolError(err)
	}
	return nil, reportOutput(report), nil
}

// handleListReports handles the list_reports tool invocation.
func (s *Server) handleListReports(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListReportsInput,
) (*mcp.CallToolResult, ListReportsOutput, error) {
	if s.ports.Report == nil {
		return nil, ListReportsOutput{}, ErrServiceUnavailable
	}
	summaries, err := s.ports.Report.List(ctx, input.Digest)
	if err != nil {
		return nil, ListReportsOutput{}, toolError(err)
	}

	output := ListReportsOutput{
		Reports: make([]ReportSummaryOutput, len(summaries)),
		Count:   len(summaries),
	}
	for i, r := range summaries {
		output.Reports[i] = ReportSummaryOutput{
			ID:         r.ID,
			Kind:       r.Kind.String(),
			StoredName: r.StoredName,
			Digest:     r.DocumentDigest,
			Percentage: r.Percentage,
			CreatedAt:  r.CreatedAt.Format(time.RFC3339),
		}
	}
	return nil, output, nil
}

// handleListCorpus handles the list_corpus tool invocation.
func (s *Server) handleListCorpus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListCorpusInput,
) (*mcp.CallToolResult, ListCorpusOutput, error) {
	if s.ports.Corpus == nil {
		return nil, ListCorpusOutput{}, ErrServiceUnavailable
	}
	kind, err := domain.ParsePipelineKind(input.Kind)
	if err != nil {
		return nil, ListCorpusOutput{}, toolError(fmt.Errorf("kind %q: %w", input.Kind, err))
	}
	entries, err := s.ports.Corpus.List(ctx, kind)
	if err != nil {
		return nil, ListCorpusOutput{}, toolError(err)
	}

	output := ListCorpusOutput{
		Entries: make([]CorpusEntryOutput, len(entries)),
		Count:   len(entries),
	}
	for i := range entries {
		output.Entries[i] = CorpusEntryOutput{
			ID:            entries[i].ID,
			Source:        entries[i].Source,
			Texts:         len(entries[i].Texts),
			HasEmbeddings: entries[i].HasEmbeddings(),
			CreatedAt:     entries[i].CreatedAt.Format(time.RFC3339),
		}
	}
	return nil, output, nil
}

// readFile reads a local document, refusing directories and oversized files.
func (s *Server) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, domain.ErrInvalidInput)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", path, domain.ErrInvalidInput)
	}
	if info.Size() > s.maxFileBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes: %w", path, s.maxFileBytes, domain.ErrInvalidInput)
	}
	return io.ReadAll(io.LimitReader(f, s.maxFileBytes))
}

func reportOutput(r *domain.AggregateReport) ReportOutput {
	out := ReportOutput{
		ID:            r.ID,
		Kind:          r.Kind.String(),
		Filename:      r.Filename,
		StoredName:    r.StoredName,
		Digest:        r.DocumentDigest,
		ScorerTier:    r.ScorerTier.String(),
		Percentage:    r.Percentage,
		TotalUnits:    r.TotalUnits,
		Escalated:     r.Escalated,
		FallbackCount: r.FallbackCount,
		Counts:        make(map[string]int, len(r.Counts)),
		MatchedFiles:  make([]MatchedFileOutput, len(r.MatchedFiles)),
		Flagged:       make([]FlaggedUnitOutput, len(r.Flagged)),
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
	for class, n := range r.Counts {
		out.Counts[string(class)] = n
	}
	for i, m := range r.MatchedFiles {
		out.MatchedFiles[i] = MatchedFileOutput{
			Source:        m.Source,
			AvgSimilarity: m.AvgSimilarity,
			References:    m.References,
		}
	}
	for i, f := range r.Flagged {
		out.Flagged[i] = FlaggedUnitOutput{
			UnitIndex:      f.UnitIndex,
			SegmentIndex:   f.SegmentIndex,
			Excerpt:        candidates.Truncate(f.Excerpt, excerptChars),
			Score:          f.Score,
			Classification: string(f.Verdict.Classification),
			Confidence:     f.Verdict.Confidence,
			Rationale:      f.Verdict.Rationale,
			Fallback:       f.Verdict.Fallback,
		}
	}
	return out
}
