package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

// excerptWidth caps excerpts printed for flagged units.
const excerptWidth = 160

// Renderer writes reports with a fixed set of styles.
type Renderer struct {
	styles *Styles
}

// New creates a renderer. Colour is used only when color is true.
func New(color bool) *Renderer {
	if color {
		return &Renderer{styles: NewStyles(nil)}
	}
	return &Renderer{styles: Plain()}
}

// Headline returns the pipeline's percentage label, such as "42.0% plagiarised".
func Headline(r *domain.AggregateReport) string {
	switch r.Kind {
	case domain.PipelinePlagiarism:
		return fmt.Sprintf("%.1f%% plagiarised", r.Percentage)
	case domain.PipelineAI:
		return fmt.Sprintf("%.1f%% AI-written", r.Percentage)
	case domain.PipelineNovelty:
		return fmt.Sprintf("%.1f%% novel", r.Percentage)
	default:
		return fmt.Sprintf("%.1f%%", r.Percentage)
	}
}

// Summary returns a one-line summary of the report.
func (rd *Renderer) Summary(r *domain.AggregateReport) string {
	return fmt.Sprintf("%s  %s  %s",
		rd.styles.Label.Render(r.StoredName),
		rd.styles.Title.Render(Headline(r)),
		rd.styles.Muted.Render(fmt.Sprintf("(%s, %d units, report %s)", r.Kind, r.TotalUnits, r.ID)),
	)
}

// Report writes the full report.
func (rd *Renderer) Report(w io.Writer, r *domain.AggregateReport) error {
	var b strings.Builder
	s := rd.styles

	b.WriteString(s.Title.Render(r.Kind.Description()))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", s.Label.Render("Document:"), r.StoredName)
	if r.Filename != "" && r.Filename != r.StoredName {
		fmt.Fprintf(&b, "%s %s\n", s.Label.Render("Uploaded as:"), r.Filename)
	}
	fmt.Fprintf(&b, "%s %s\n", s.Label.Render("Report:"), r.ID)
	fmt.Fprintf(&b, "%s %s\n", s.Label.Render("Scorer:"), r.ScorerTier.Description())
	b.WriteString("\n")
	b.WriteString(s.Box.Render(Headline(r)))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s %d units, %d escalated", s.Label.Render("Units:"), r.TotalUnits, r.Escalated)
	if r.FallbackCount > 0 {
		fmt.Fprintf(&b, ", %s", s.Uncertain.Render(fmt.Sprintf("%d fallback verdicts", r.FallbackCount)))
	}
	b.WriteString("\n")
	for _, class := range r.Kind.Classes() {
		fmt.Fprintf(&b, "  %-12s %d\n", s.Class(r.Kind, class).Render(string(class)), r.Counts[class])
	}

	if len(r.MatchedFiles) > 0 {
		b.WriteString("\n")
		b.WriteString(s.Label.Render("Matched files:"))
		b.WriteString("\n")
		for _, m := range r.MatchedFiles {
			fmt.Fprintf(&b, "  %-40s %5.1f%%  %s\n",
				m.Source, m.AvgSimilarity*100, s.Muted.Render(fmt.Sprintf("(%d refs)", m.References)))
		}
	}

	if len(r.Flagged) > 0 {
		b.WriteString("\n")
		b.WriteString(s.Label.Render("Flagged:"))
		b.WriteString("\n")
		for _, f := range r.Flagged {
			verdict := s.Class(r.Kind, f.Verdict.Classification).Render(string(f.Verdict.Classification))
			fmt.Fprintf(&b, "  #%d %s score %.2f", f.UnitIndex, verdict, f.Score)
			if f.Verdict.Fallback {
				b.WriteString(s.Muted.Render(" (fallback)"))
			}
			b.WriteString("\n")
			fmt.Fprintf(&b, "     %s\n", s.Muted.Render(excerpt(f.Excerpt)))
			if f.Verdict.Rationale != "" {
				fmt.Fprintf(&b, "     %s\n", f.Verdict.Rationale)
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func excerpt(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= excerptWidth {
		return text
	}
	return string(runes[:excerptWidth-3]) + "..."
}
