// Package monograph parses the raw VetLek monograph corpus, a flat sequence of
// <article id> fragments, and looks fragments up by drug name.
package monograph

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/giygas/vetref/normalize"
)

var ErrNoArticle = errors.New("no monograph article matches the drug name")

// Article is one fragment of the corpus. HTML is the inner markup with images and
// image links removed.
type Article struct {
	ID      string
	Heading string
	HTML    string
}

// Corpus is an immutable parsed monograph document
type Corpus struct {
	articles []Article
}

// Parse reads an HTML document and collects its article elements carrying an id
func Parse(r io.Reader) (*Corpus, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse monograph corpus: %w", err)
	}

	c := &Corpus{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Article {
			if id := attr(n, "id"); id != "" {
				c.articles = append(c.articles, newArticle(id, n))
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return c, nil
}

func newArticle(id string, n *html.Node) Article {
	clean(n)

	var buf bytes.Buffer
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		_ = html.Render(&buf, child)
	}

	return Article{
		ID:      id,
		Heading: heading(n),
		HTML:    strings.TrimSpace(buf.String()),
	}
}

// Len returns the number of articles
func (c *Corpus) Len() int {
	return len(c.articles)
}

// Articles returns the articles in document order
func (c *Corpus) Articles() []Article {
	return c.articles
}

// Find returns the first article, in document order, whose normalized heading
// contains the normalized name or is contained in it.
func (c *Corpus) Find(name string) (Article, error) {
	key := normalize.Key(name)
	if key == "" {
		return Article{}, ErrNoArticle
	}

	for _, a := range c.articles {
		h := normalize.Key(a.Heading)
		if h == "" {
			continue
		}
		if strings.Contains(h, key) || strings.Contains(key, h) {
			return a, nil
		}
	}
	return Article{}, ErrNoArticle
}

// Candidate is a loose heading match annotated with the word-overlap check
type Candidate struct {
	ID       string `json:"id"`
	Heading  string `json:"heading"`
	Relevant bool   `json:"relevant"`
}

// Candidates lists every article Find would accept for name, in document order
func (c *Corpus) Candidates(name string) []Candidate {
	key := normalize.Key(name)
	out := []Candidate{}
	if key == "" {
		return out
	}

	for _, a := range c.articles {
		h := normalize.Key(a.Heading)
		if h == "" || !(strings.Contains(h, key) || strings.Contains(key, h)) {
			continue
		}
		out = append(out, Candidate{ID: a.ID, Heading: a.Heading, Relevant: IsRelevantMatch(name, a.Heading)})
	}
	return out
}

// heading returns the text of the first h1-h6 below n, whitespace collapsed
func heading(n *html.Node) string {
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
				found = n
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)

	if found == nil {
		return ""
	}
	return strings.Join(strings.Fields(text(found)), " ")
}

func text(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		sb.WriteString(text(child))
	}
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".svg":  true,
}

// isImageLink reports whether href points at an image file
func isImageLink(href string) bool {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return false
	}
	return imageExtensions[strings.ToLower(path.Ext(u.Path))]
}

// clean removes img elements and links whose target is an image, in place
func clean(n *html.Node) {
	for child := n.FirstChild; child != nil; {
		next := child.NextSibling
		if child.Type == html.ElementNode &&
			(child.DataAtom == atom.Img || (child.DataAtom == atom.A && isImageLink(attr(child, "href")))) {
			n.RemoveChild(child)
		} else {
			clean(child)
		}
		child = next
	}
}

// Clean strips images and image links from an HTML fragment
func Clean(fragment string) (string, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return "", fmt.Errorf("failed to parse fragment: %w", err)
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		body.AppendChild(n)
	}
	clean(body)
	for child := body.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&buf, child); err != nil {
			return "", fmt.Errorf("failed to render fragment: %w", err)
		}
	}
	return buf.String(), nil
}
