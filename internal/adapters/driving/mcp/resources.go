package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for Veritas resources.
	uriScheme = "veritas://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "reports",
		Name:        "reports",
		Description: "Summaries of all stored evaluation reports",
		MIMEType:    "application/json",
	}, s.handleReportsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "reports/{reportId}",
		Name:        "report",
		Description: "A full stored evaluation report",
		MIMEType:    "application/json",
	}, s.handleReportResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "Raw documents stored by previous evaluations",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)
}

// handleReportsResource returns summaries of every stored report.
func (s *Server) handleReportsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Report == nil {
		return jsonResult(req.Params.URI, []string{})
	}

	summaries, err := s.ports.Report.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	if summaries == nil {
		summaries = []domain.ReportSummary{}
	}
	return jsonResult(req.Params.URI, summaries)
}

// handleReportResource returns one full report.
func (s *Server) handleReportResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Report == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// veritas://reports/{reportId}
	id := extractReportID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	report, err := s.ports.Report.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting report: %w", err)
	}
	return jsonResult(req.Params.URI, reportOutput(report))
}

// handleDocumentsResource lists stored raw documents.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Document == nil {
		return jsonResult(req.Params.URI, []string{})
	}

	blobs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	type docInfo struct {
		Name      string `json:"name"`
		Digest    string `json:"digest"`
		MIMEType  string `json:"mime_type"`
		Size      int64  `json:"size"`
		CreatedAt string `json:"created_at"`
	}

	infos := make([]docInfo, len(blobs))
	for i, b := range blobs {
		infos[i] = docInfo{
			Name:      b.Name,
			Digest:    b.Digest,
			MIMEType:  b.MIMEType,
			Size:      b.Size,
			CreatedAt: b.CreatedAt.Format(time.RFC3339),
		}
	}
	return jsonResult(req.Params.URI, infos)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractReportID extracts the report ID from a URI like veritas://reports/{reportId}.
func extractReportID(uri string) string {
	const prefix = uriScheme + "reports/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
