package scraper

import (
	"bytes"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Document is a parsed product page.
type Document struct {
	doc *goquery.Document
}

// ParseDocument decodes body to UTF-8 (using contentType and any <meta
// charset> hint) and parses it into a queryable tree.
func ParseDocument(body io.Reader, contentType string) (*Document, error) {
	r, err := charset.NewReader(body, contentType)
	if err != nil {
		return nil, fmt.Errorf("parse: decode charset: %w", err)
	}

	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	return &Document{doc: goquery.NewDocumentFromNode(root)}, nil
}

func parsePage(p *page) (*Document, error) {
	return ParseDocument(bytes.NewReader(p.Body), p.ContentType)
}

// find returns every element matching sel.
func (d *Document) find(sel cascadia.Selector) *goquery.Selection {
	return d.doc.FindMatcher(sel)
}

// attr returns the named attribute of the first element matching sel, or ""
// when there is no such element or attribute.
func (d *Document) attr(sel cascadia.Selector, name string) string {
	v, _ := d.find(sel).First().Attr(name)
	return v
}
