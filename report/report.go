// Package report renders a translation result as a standalone HTML review
// sheet: one table per processor listing each address with its source and
// translated text.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ZaguanLabs/miztl"
)

// Row status values.
const (
	StatusTranslated = "translated"
	StatusUnchanged  = "unchanged"
)

const style = `body{font-family:sans-serif;margin:2em}
table{border-collapse:collapse;width:100%;margin-bottom:2em}
th,td{border:1px solid #ccc;padding:4px 8px;vertical-align:top;white-space:pre-wrap}
tr.unchanged td{color:#888}
code{font-size:90%}`

// Options controls the rendered sheet.
type Options struct {
	Title  string    // Page title (default: "Translation report")
	Source string    // Mission file the result belongs to
	Now    time.Time // Generation time (default: time.Now)
}

// Write renders result to w.
func Write(w io.Writer, result *miztl.Result, opts Options) error {
	return html.Render(w, Build(result, opts))
}

// WriteFile renders result to the file at path.
func WriteFile(path string, result *miztl.Result, opts Options) error {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	if err := Write(f, result, opts); err != nil {
		f.Close()
		return fmt.Errorf("rendering report: %w", err)
	}
	return f.Close()
}

// Build returns the report as a document node.
func Build(result *miztl.Result, opts Options) *html.Node {
	if opts.Title == "" {
		opts.Title = "Translation report"
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html, "lang", "en")
	doc.AppendChild(root)

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, "charset", "utf-8"))
	head.AppendChild(withText(element(atom.Title), opts.Title))
	head.AppendChild(withText(element(atom.Style), style))
	root.AppendChild(head)

	body := element(atom.Body)
	root.AppendChild(body)
	body.AppendChild(withText(element(atom.H1), opts.Title))

	meta := element(atom.P, "class", "meta")
	line := fmt.Sprintf("Target language: %s. Generated %s.", result.TargetLang, opts.Now.UTC().Format(time.RFC3339))
	if opts.Source != "" {
		line = "Mission: " + opts.Source + ". " + line
	}
	if result.CacheLocation != "" {
		line += " Cache: " + result.CacheLocation + "."
	}
	body.AppendChild(withText(meta, line))

	body.AppendChild(summary(result))
	for _, pr := range result.Processors {
		body.AppendChild(withText(element(atom.H2, "id", pr.Processor), pr.Processor))
		body.AppendChild(entries(pr))
	}

	return doc
}

func summary(result *miztl.Result) *html.Node {
	table := element(atom.Table, "class", "summary")
	table.AppendChild(headerRow("Processor", "Entries", "Distinct", "Cached", "Translated", "Failed"))
	for _, pr := range result.Processors {
		table.AppendChild(row("", pr.Processor,
			strconv.Itoa(pr.Entries),
			strconv.Itoa(pr.Distinct),
			strconv.Itoa(pr.Cached),
			strconv.Itoa(pr.Translated),
			strconv.Itoa(pr.Failed)))
	}
	return table
}

func entries(pr miztl.ProcessorResult) *html.Node {
	table := element(atom.Table, "class", "entries", "data-processor", pr.Processor)
	table.AppendChild(headerRow("Address", "Source", "Translation"))

	for addr, text := range pr.Source.All() {
		out, ok := pr.Output.Get(addr)
		if !ok {
			out = text
		}
		status := StatusTranslated
		if out == text {
			status = StatusUnchanged
		}

		tr := row(status, "", text, out)
		tr.Attr = append(tr.Attr, html.Attribute{Key: "data-hash", Val: miztl.ShortHash(text)})
		tr.FirstChild.AppendChild(withText(element(atom.Code), addr.String()))
		table.AppendChild(tr)
	}
	return table
}

func headerRow(cells ...string) *html.Node {
	tr := element(atom.Tr)
	for _, c := range cells {
		tr.AppendChild(withText(element(atom.Th), c))
	}
	return tr
}

func row(class string, cells ...string) *html.Node {
	tr := element(atom.Tr)
	if class != "" {
		tr.Attr = append(tr.Attr, html.Attribute{Key: "class", Val: class})
	}
	for _, c := range cells {
		td := element(atom.Td)
		if c != "" {
			withText(td, c)
		}
		tr.AppendChild(td)
	}
	return tr
}

// element creates an element node with key/value attribute pairs.
func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func withText(n *html.Node, text string) *html.Node {
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}
