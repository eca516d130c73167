package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"sigs.k8s.io/yaml"

	"github.com/Azure/appengine-prune/pkg/domain/errors"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

var allFormats = []Format{FormatTable, FormatJSON, FormatYAML, FormatMarkdown}

// Formats returns the supported report formats as strings.
func Formats() []string {
	out := make([]string, len(allFormats))
	for i, f := range allFormats {
		out[i] = string(f)
	}
	return out
}

// ParseFormat validates a report format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range allFormats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", errors.Usage("unknown output format %q, must be one of: %s", s, strings.Join(Formats(), ", "))
}

// IsMachineReadable reports whether f is meant for other programs rather
// than people.
func (f Format) IsMachineReadable() bool {
	return f == FormatJSON || f == FormatYAML
}

// ProjectReport is the serialised form of a ProjectResult.
type ProjectReport struct {
	Project  string   `json:"project"`
	Outcome  Outcome  `json:"outcome"`
	Services int      `json:"services"`
	Versions int      `json:"versions"`
	Labels   []string `json:"labels"`
	Command  string   `json:"command,omitempty"`
	Elapsed  string   `json:"elapsed"`
	Error    string   `json:"error,omitempty"`
}

func NewProjectReport(r ProjectResult) ProjectReport {
	report := ProjectReport{
		Project:  r.Project,
		Outcome:  r.Outcome,
		Services: r.Services,
		Versions: r.Versions,
		Labels:   r.Labels,
		Command:  strings.Join(r.Command, " "),
		Elapsed:  r.Duration.String(),
	}
	if report.Labels == nil {
		report.Labels = []string{}
	}
	if r.Err != nil {
		report.Error = r.Err.Error()
	}
	return report
}

// EncodeReport writes results to w in the given format.
func EncodeReport(w io.Writer, format Format, results []ProjectResult) error {
	reports := make([]ProjectReport, len(results))
	for i, r := range results {
		reports[i] = NewProjectReport(r)
	}

	var data []byte
	var err error
	switch format {
	case FormatTable:
		data = encodeTable(reports)
	case FormatJSON:
		data, err = json.MarshalIndent(reports, "", "  ")
		data = append(data, '\n')
	case FormatYAML:
		data, err = yaml.Marshal(reports)
	case FormatMarkdown:
		data = []byte(formatMarkdownReport(reports))
	default:
		err = errors.Usage("unknown output format %q", format)
	}
	if err != nil {
		return fmt.Errorf("encoding report as %q failed: %w", format, err)
	}
	_, err = w.Write(data)
	return err
}

func encodeTable(reports []ProjectReport) []byte {
	var buf bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.AppendHeader(table.Row{"Project", "Outcome", "Versions", "Delete", "Error"})
	for _, r := range reports {
		t.AppendRow(table.Row{r.Project, r.Outcome, r.Versions, strings.Join(r.Labels, " "), r.Error})
	}
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
	return buf.Bytes()
}

func formatMarkdownReport(reports []ProjectReport) string {
	var md strings.Builder

	failed := 0
	for _, r := range reports {
		if r.Outcome == OutcomeFailed {
			failed++
		}
	}
	md.WriteString(fmt.Sprintf("**Projects:** %d\n\n", len(reports)))
	md.WriteString(fmt.Sprintf("**Failed:** %d\n\n", failed))
	md.WriteString("## Projects\n\n")

	if len(reports) == 0 {
		md.WriteString("No projects processed.\n")
		return md.String()
	}
	md.WriteString("| Project | Outcome | Versions | Delete | Error |\n")
	md.WriteString("|---------|---------|----------|--------|-------|\n")
	for _, r := range reports {
		md.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %s |\n",
			r.Project, r.Outcome, r.Versions, strings.Join(r.Labels, " "), strings.ReplaceAll(r.Error, "\n", " ")))
	}
	return md.String()
}
