// Package output renders scan reports and rule catalogs for the terminal.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
)

var (
	okColor      = lipgloss.Color("#22C55E")
	warnColor    = lipgloss.Color("#F59E0B")
	failColor    = lipgloss.Color("#EF4444")
	unknownColor = lipgloss.Color("#8B949E")
)

// TableOptions controls which columns RenderTable renders and how status is coloured.
type TableOptions struct {
	// Colored styles status labels. Default false (CI-safe).
	Colored bool

	// IncludeProfile adds a PROFILE column.
	IncludeProfile bool

	// IncludeProvider adds a PROVIDER column (useful when several providers ran).
	IncludeProvider bool

	// LocationLabel is the column header for the region/context column.
	// Defaults to "REGION".
	LocationLabel string
}

// statusStyles maps each status to its style on renderer r.
func statusStyles(r *lipgloss.Renderer) map[models.Status]lipgloss.Style {
	return map[models.Status]lipgloss.Style{
		models.StatusOK:      r.NewStyle().Foreground(okColor),
		models.StatusWarn:    r.NewStyle().Foreground(warnColor),
		models.StatusFail:    r.NewStyle().Foreground(failColor).Bold(true),
		models.StatusUnknown: r.NewStyle().Foreground(unknownColor),
	}
}

// newRenderer returns a lipgloss renderer for w. Colour is forced on when
// asked for, since w is rarely a terminal lipgloss can probe.
func newRenderer(w io.Writer, colored bool) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	if colored {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}

// ShortenMessage truncates msg to at most max runes, appending "..." when truncated.
// max is treated as at least 4 to guarantee space for the ellipsis.
func ShortenMessage(msg string, max int) string {
	if max < 4 {
		max = 4
	}
	runes := []rune(msg)
	if len(runes) <= max {
		return msg
	}
	return string(runes[:max-3]) + "..."
}

// statusCell returns the status padded to width characters. Styling wraps
// only the text so trailing padding stays plain and columns stay aligned.
func statusCell(s models.Status, width int, styles map[models.Status]lipgloss.Style) string {
	text := s.String()
	spaces := width - len(text)
	if spaces < 0 {
		spaces = 0
	}
	if style, ok := styles[s]; ok {
		text = style.Render(text)
	}
	return text + strings.Repeat(" ", spaces)
}

// truncateField shortens s to at most max runes for ID/label columns.
func truncateField(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// resourceOf returns the finding's resource, or its region for region-level
// findings.
func resourceOf(f models.Finding) string {
	if f.Resource != "" {
		return f.Resource
	}
	return f.Region
}

// RenderTable writes a formatted findings table to w.
//
// Column order:
//
//	RESOURCE  [PROFILE]  [PROVIDER]  LOCATION  STATUS  RULE  MESSAGE
func RenderTable(w io.Writer, findings []models.Finding, opts TableOptions) {
	if opts.LocationLabel == "" {
		opts.LocationLabel = "REGION"
	}

	if len(findings) == 0 {
		fmt.Fprintln(w, "No findings.")
		return
	}

	styles := statusStyles(newRenderer(w, opts.Colored))

	const (
		wResource = 36
		wProfile  = 12
		wProvider = 10
		wLocation = 15
		wStatus   = 7
		wRule     = 32
		wMessage  = 60
	)

	var hb strings.Builder
	hb.WriteString(fmt.Sprintf("%-*s", wResource, "RESOURCE"))
	if opts.IncludeProfile {
		hb.WriteString(fmt.Sprintf("  %-*s", wProfile, "PROFILE"))
	}
	if opts.IncludeProvider {
		hb.WriteString(fmt.Sprintf("  %-*s", wProvider, "PROVIDER"))
	}
	hb.WriteString(fmt.Sprintf("  %-*s", wLocation, opts.LocationLabel))
	hb.WriteString(fmt.Sprintf("  %-*s", wStatus, "STATUS"))
	hb.WriteString(fmt.Sprintf("  %-*s", wRule, "RULE"))
	hb.WriteString("  MESSAGE")
	header := hb.String()

	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)+wMessage-len("MESSAGE")))

	for _, f := range findings {
		var rb strings.Builder
		rb.WriteString(fmt.Sprintf("%-*s", wResource, truncateField(resourceOf(f), wResource)))
		if opts.IncludeProfile {
			rb.WriteString(fmt.Sprintf("  %-*s", wProfile, truncateField(f.Profile, wProfile)))
		}
		if opts.IncludeProvider {
			rb.WriteString(fmt.Sprintf("  %-*s", wProvider, truncateField(f.Provider, wProvider)))
		}
		rb.WriteString(fmt.Sprintf("  %-*s", wLocation, truncateField(f.Region, wLocation)))
		rb.WriteString("  " + statusCell(f.Status, wStatus, styles))
		rb.WriteString(fmt.Sprintf("  %-*s", wRule, truncateField(f.RuleID, wRule)))
		rb.WriteString("  " + ShortenMessage(f.Message, wMessage))
		fmt.Fprintln(w, rb.String())
	}
}

// RenderSummary writes one line of status counts, plus the crashed rules
// when there are any.
func RenderSummary(w io.Writer, s models.ScanSummary, colored bool) {
	styles := statusStyles(newRenderer(w, colored))
	fmt.Fprintf(w, "%d findings from %d rules: %s %d  %s %d  %s %d  %s %d\n",
		s.TotalFindings, s.RulesEvaluated,
		styles[models.StatusOK].Render("OK"), s.OKFindings,
		styles[models.StatusWarn].Render("WARN"), s.WarnFindings,
		styles[models.StatusFail].Render("FAIL"), s.FailFindings,
		styles[models.StatusUnknown].Render("UNKNOWN"), s.UnknownFindings,
	)
	if len(s.CrashedRules) > 0 {
		fmt.Fprintf(w, "crashed rules: %s\n", strings.Join(s.CrashedRules, ", "))
	}
}
