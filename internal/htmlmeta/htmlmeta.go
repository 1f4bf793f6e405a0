// Package htmlmeta reads the static metadata of a slide before it is
// rendered: its title, the canvas selector it declares, the remote
// resources it pulls in, and a content digest used to tell runs of
// different revisions apart.
package htmlmeta

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/sha3"
	"golang.org/x/net/html"
)

// CanvasMetaName is the meta name a document uses to declare its canvas
// root, e.g. <meta name="slideshot:canvas" content="#slide">.
const CanvasMetaName = "slideshot:canvas"

// Document holds the metadata of one HTML file.
type Document struct {
	// Title is the trimmed text of the <title> element.
	Title string

	// CanvasSelector is the selector declared by the canvas meta tag.
	// Empty when the document declares none.
	CanvasSelector string

	// Digest is the hex encoded SHA3-256 of the file contents.
	Digest string

	// Size is the file size in bytes.
	Size int64

	// RemoteResources lists http(s) URLs referenced by src or href
	// attributes. They may delay or change the rendering.
	RemoteResources []string
}

// ParseFile reads and parses the HTML file at path.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is the user's slide
	if err != nil {
		return nil, err
	}
	return Parse(bytes.NewReader(data), data)
}

// Parse parses HTML from r. raw is the exact content used for the digest;
// when nil, r is read fully first.
func Parse(r io.Reader, raw []byte) (*Document, error) {
	if raw == nil {
		var err error
		raw, err = io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(raw)
	}

	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	sum := sha3.Sum256(raw)
	doc := &Document{
		Digest:          hex.EncodeToString(sum[:]),
		Size:            int64(len(raw)),
		RemoteResources: make([]string, 0),
	}

	seen := make(map[string]bool)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			doc.processElement(n, seen)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return doc, nil
}

func (d *Document) processElement(n *html.Node, seen map[string]bool) {
	switch n.Data {
	case "title":
		if d.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			d.Title = strings.TrimSpace(n.FirstChild.Data)
		}
	case "meta":
		if d.CanvasSelector == "" && strings.EqualFold(getAttr(n, "name"), CanvasMetaName) {
			d.CanvasSelector = strings.TrimSpace(getAttr(n, "content"))
		}
	}

	for _, key := range []string{"src", "href"} {
		v := strings.TrimSpace(getAttr(n, key))
		if isRemote(v) && !seen[v] {
			seen[v] = true
			d.RemoteResources = append(d.RemoteResources, v)
		}
	}
}

// isRemote reports whether a reference points off the local filesystem.
func isRemote(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "//")
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
