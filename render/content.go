// Package render maps a merged entry onto an ordered list of titled sections for the
// chosen source, degrading through the monograph corpus and scalar fields when the
// structured VetLek data is missing.
package render

import (
	"strings"

	xhtml "golang.org/x/net/html"

	"github.com/giygas/vetref/datasetparser/entities"
)

// HTML is markup taken from the datasets and emitted without escaping. Strings that
// come from users must go through Text.
type HTML string

// Text escapes s for inclusion in HTML
func Text(s string) HTML {
	return HTML(xhtml.EscapeString(s))
}

// Tier names the step of the chain that produced the content
type Tier string

const (
	TierStructured  Tier = "structured"
	TierRecordHTML  Tier = "record_html"
	TierMonograph   Tier = "monograph"
	TierFields      Tier = "fields"
	TierPlaceholder Tier = "placeholder"
	TierEmpty       Tier = "empty"
	TierError       Tier = "error"
)

// Table is a rendered table; cells are dataset content
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Section is one titled block of a monograph
type Section struct {
	Key   string `json:"key,omitempty"`
	Title string `json:"title"`
	Body  HTML   `json:"body,omitempty"`
	Table *Table `json:"table,omitempty"`
}

// Content is the rendered view of one entry in one source
type Content struct {
	Key       string          `json:"key"`
	Name      string          `json:"name"`
	Source    entities.Source `json:"source"`
	LatinName string          `json:"latin_name,omitempty"`
	Tier      Tier            `json:"tier"`
	Sections  []Section       `json:"sections"`
}

// NewTable derives the columns from the first row's keys. Keys that only appear in
// later rows are dropped and missing cells are empty strings.
func NewTable(rows entities.Table) *Table {
	if len(rows) == 0 {
		return nil
	}

	header := append([]string(nil), rows[0].Keys()...)
	t := &Table{Header: header, Rows: make([][]string, 0, len(rows))}
	for _, row := range rows {
		cells := make([]string, len(header))
		for i, col := range header {
			cells[i] = row.Cell(col)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// HTML renders the table markup
func (t *Table) HTML() HTML {
	var sb strings.Builder
	sb.WriteString("<table><thead><tr>")
	for _, h := range t.Header {
		sb.WriteString("<th>" + h + "</th>")
	}
	sb.WriteString("</tr></thead><tbody>")
	for _, row := range t.Rows {
		sb.WriteString("<tr>")
		for _, cell := range row {
			sb.WriteString("<td>" + cell + "</td>")
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString("</tbody></table>")
	return HTML(sb.String())
}

// HTML renders the whole content as one fragment
func (c Content) HTML() HTML {
	var sb strings.Builder
	sb.WriteString("<h1>" + string(Text(c.Name)) + "</h1>")
	if c.LatinName != "" {
		sb.WriteString("<p class=\"latin\">" + string(Text(c.LatinName)) + "</p>")
	}
	for _, s := range c.Sections {
		sb.WriteString("<section><h2>" + string(Text(s.Title)) + "</h2>")
		sb.WriteString(string(s.Body))
		if s.Table != nil {
			sb.WriteString(string(s.Table.HTML()))
		}
		sb.WriteString("</section>")
	}
	return HTML(sb.String())
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "section": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "table": true,
}

// PlainText flattens markup to text, one line per block element
func PlainText(h HTML) string {
	var sb strings.Builder
	z := xhtml.NewTokenizer(strings.NewReader(string(h)))
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			return collapseLines(sb.String())
		case xhtml.TextToken:
			sb.Write(z.Text())
		case xhtml.StartTagToken, xhtml.EndTagToken, xhtml.SelfClosingTagToken:
			tok := z.Token()
			switch {
			case blockElements[tok.Data]:
				sb.WriteByte('\n')
			case tok.Type == xhtml.StartTagToken && (tok.Data == "td" || tok.Data == "th"):
				sb.WriteString(" | ")
			}
		}
	}
}

func collapseLines(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		line = strings.Trim(line, "| ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
