// Package report renders valuation results as markdown, HTML or CSV.
package report

import (
	"fmt"
	"io"
	"strings"

	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/utils"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

type Format string

const (
	Markdown Format = "md"
	HTML     Format = "html"
	CSV      Format = "csv"
)

// ParseFormat accepts md, markdown, html or csv.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return Markdown, nil
	case "html":
		return HTML, nil
	case "csv":
		return CSV, nil
	}
	return "", fmt.Errorf("%w: unknown report format %q", assumption.ErrInvalidInput, s)
}

// table is the common shape behind the markdown and HTML renderers.
type table struct {
	title   string
	headers []string
	rows    [][]string
}

func (t table) markdown(b *strings.Builder) {
	if t.title != "" {
		fmt.Fprintf(b, "## %s\n\n", t.title)
	}
	b.WriteString("| " + strings.Join(t.headers, " | ") + " |\n")
	seps := make([]string, len(t.headers))
	for i := range seps {
		seps[i] = "---"
	}
	b.WriteString("| " + strings.Join(seps, " | ") + " |\n")
	for _, r := range t.rows {
		b.WriteString("| " + strings.Join(r, " | ") + " |\n")
	}
	b.WriteString("\n")
}

// write renders tables as markdown or HTML; CSV goes through csvRows.
func write(w io.Writer, f Format, tables []table, csvRows interface{}) error {
	if f == CSV {
		if err := gocsv.Marshal(csvRows, w); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
		return nil
	}

	var b strings.Builder
	for _, t := range tables {
		t.markdown(&b)
	}
	out := b.String()
	if f == HTML {
		html, err := utils.MarkdownToHTML(out)
		if err != nil {
			return err
		}
		out = html
	}
	_, err := io.WriteString(w, out)
	return err
}

// money rounds to cents.
func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func percent(v float64) string {
	return decimal.NewFromFloat(v*100).StringFixed(1) + "%"
}

func signedPercent(v float64) string {
	s := percent(v)
	if v > 0 {
		s = "+" + s
	}
	return s
}
