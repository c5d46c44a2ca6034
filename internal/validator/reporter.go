package validator

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
)

// Format specifies the output format for check reports.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// maxValueLen bounds how much of an offending value the text report shows.
const maxValueLen = 50

// Reporter formats and writes check results.
type Reporter struct {
	out    io.Writer
	format Format
}

// NewReporter creates a new Reporter.
func NewReporter(out io.Writer, format Format) *Reporter {
	return &Reporter{
		out:    out,
		format: format,
	}
}

// Report writes the check result to the output.
func (r *Reporter) Report(result *Result) error {
	if result == nil {
		return nil
	}

	switch r.format {
	case FormatJSON:
		return r.reportJSON(result)
	default:
		return r.reportText(result)
	}
}

func (r *Reporter) reportJSON(result *Result) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(result), "encoding JSON report")
}

// reportText prints a summary line, then the issues grouped by file. Files
// are sorted by path and site-wide issues come last.
func (r *Reporter) reportText(result *Result) error {
	errs, warnings := result.Errors(), result.Warnings()
	if len(errs) == 0 && len(warnings) == 0 {
		fmt.Fprintln(r.out, color.GreenString("✓ No problems found in %d file(s)", result.Files))
		return nil
	}

	var summary []string
	if len(errs) > 0 {
		summary = append(summary, color.RedString("%d error(s)", len(errs)))
	}
	if len(warnings) > 0 {
		summary = append(summary, color.YellowString("%d warning(s)", len(warnings)))
	}
	verdict := "Check passed with warnings"
	if len(errs) > 0 {
		verdict = "Check failed"
	}
	fmt.Fprintf(r.out, "%s: %s in %d file(s)\n", verdict, strings.Join(summary, ", "), result.Files)

	groups := make(map[string][]Issue)
	for _, issue := range result.Issues {
		groups[issue.Location()] = append(groups[issue.Location()], issue)
	}
	locations := make([]string, 0, len(groups))
	for loc := range groups {
		locations = append(locations, loc)
	}
	slices.SortFunc(locations, func(a, b string) int {
		if (a == "") != (b == "") {
			if a == "" {
				return 1
			}
			return -1
		}
		return cmp.Compare(a, b)
	})

	for _, loc := range locations {
		label := loc
		if label == "" {
			label = "(site)"
		}
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, color.New(color.Bold).Sprint(label))
		for _, issue := range groups[loc] {
			r.printIssue(issue)
		}
	}
	return nil
}

func (r *Reporter) printIssue(i Issue) {
	mark, c := color.YellowString("!"), color.New(color.FgYellow)
	if i.Severity == SeverityError {
		mark, c = color.RedString("✗"), color.New(color.FgRed)
	}

	var sb strings.Builder
	sb.WriteString("  ")
	sb.WriteString(mark)
	sb.WriteString(" ")
	if i.Kind != "" {
		fmt.Fprintf(&sb, "[%s] ", i.Kind)
	}
	if i.Field != "" {
		sb.WriteString(c.Sprint(i.Field))
		sb.WriteString(": ")
	}
	sb.WriteString(i.Message)

	if i.Value != nil {
		val := fmt.Sprint(i.Value)
		if len(val) > maxValueLen {
			val = val[:maxValueLen-3] + "..."
		}
		sb.WriteString(color.New(color.FgHiBlack).Sprintf(" [%s]", val))
	}
	if slug := i.Context["slug"]; slug != "" {
		sb.WriteString(color.New(color.FgHiBlack).Sprintf(" (%s/%s)", i.Context["collection"], slug))
	}

	fmt.Fprintln(r.out, sb.String())
}
