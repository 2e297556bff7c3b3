package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter renders a Summary as a Markdown report.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate headings and labels.
func WithTranslator(fn func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		if fn != nil {
			f.translate = fn
		}
	}
}

// WithVersion adds the tool version to the footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a formatter with English labels.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Replay Summary"))
	fmt.Fprintf(&b, "%s: %s\n\n", t("Generated"), s.GeneratedAt.Format(time.RFC3339))

	fmt.Fprintf(&b, "## %s\n\n", t("Session"))
	b.WriteString("| | |\n|---|---|\n")
	row(&b, t("Session ID"), orDash(s.Session.ID))
	row(&b, t("Document ID"), orDash(s.Session.DocumentID))
	row(&b, t("Script"), orDash(s.Session.Script))
	row(&b, t("Canvas"), fmt.Sprintf("%dx%d", s.Document.Width, s.Document.Height))
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", t("Replay"))
	b.WriteString("| | |\n|---|---|\n")
	row(&b, t("Steps"), fmt.Sprint(s.Replay.Steps))
	row(&b, t("Gestures"), fmt.Sprint(s.Replay.Gestures))
	row(&b, t("Points"), fmt.Sprintf("%d (%d %s)", s.Replay.Points, s.Replay.Skipped, t("skipped")))
	row(&b, t("Segments"), fmt.Sprint(s.Replay.Segments))
	row(&b, t("Failed Steps"), fmt.Sprint(s.Replay.Failures))
	row(&b, t("Script Time"), fmt.Sprintf("%d ms", s.Replay.ScriptMs))
	if s.Replay.Realtime {
		row(&b, t("Elapsed"), fmt.Sprintf("%d ms", s.Replay.ElapsedMs))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", t("Layers"))
	if len(s.Document.Layers) == 0 {
		fmt.Fprintf(&b, "%s\n\n", t("No layers"))
	} else {
		fmt.Fprintf(&b, "| # | %s | %s | %s | %s |\n|---|---|---|---|---|\n",
			t("Name"), t("Visible"), t("Opacity"), t("Blend Mode"))
		for i := len(s.Document.Layers) - 1; i >= 0; i-- {
			l := s.Document.Layers[i]
			name := l.Name
			if l.Active {
				name = "**" + name + "**"
			}
			visible := t("yes")
			if !l.Visible {
				visible = t("no")
			}
			fmt.Fprintf(&b, "| %d | %s | %s | %.0f%% | %s |\n", i+1, name, visible, l.Opacity*100, l.BlendMode)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## %s\n\n", t("Compositor"))
	b.WriteString("| | |\n|---|---|\n")
	c := s.Compositor
	row(&b, t("Renders"), fmt.Sprint(c.Renders))
	row(&b, t("Immediate"), fmt.Sprint(c.Immediate))
	row(&b, t("Deferred"), fmt.Sprint(c.Deferred))
	row(&b, t("Forced"), fmt.Sprint(c.Forced))
	row(&b, t("Coalesced"), fmt.Sprint(c.Coalesced))
	row(&b, t("Failures"), fmt.Sprint(c.Failures))
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", t("History"))
	fmt.Fprintf(&b, "%s: %d / %d, %s: %d\n\n", t("Undo"), len(s.History.Undo), s.History.MaxDepth, t("Redo"), len(s.History.Redo))
	for i, label := range s.History.Undo {
		fmt.Fprintf(&b, "%d. %s\n", i+1, label)
	}
	if len(s.History.Undo) > 0 {
		b.WriteString("\n")
	}

	if o := s.Outputs; o.PNGPath != "" || o.PDFPath != "" || o.DocumentPath != "" {
		fmt.Fprintf(&b, "## %s\n\n", t("Outputs"))
		b.WriteString("| | | |\n|---|---|---|\n")
		output(&b, "PNG", o.PNGPath, o.PNGSize)
		output(&b, "PDF", o.PDFPath, o.PDFSize)
		output(&b, t("Document"), o.DocumentPath, o.DocumentSize)
		b.WriteString("\n")
	}

	b.WriteString("---\n")
	if f.version != "" {
		fmt.Fprintf(&b, "layerpaint %s\n", f.version)
	} else {
		b.WriteString("layerpaint\n")
	}
	return b.String()
}

func row(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "| %s | %s |\n", label, value)
}

func output(b *strings.Builder, kind, path string, size int64) {
	if path == "" {
		return
	}
	fmt.Fprintf(b, "| %s | %s | %s |\n", kind, path, formatBytes(size))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// formatBytes renders a byte count with a binary unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMG"[exp])
}

var _ Formatter = (*MarkdownFormatter)(nil)
