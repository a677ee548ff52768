package mediawiki

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// infoboxMarker identifies infobox-like templates (Infobox film, Taxobox, ...)
const infoboxMarker = "box"

// The tokenizer reads <title> content as raw text, which would swallow
// nested markup in template names.
var titleTagRenamer = strings.NewReplacer("<title>", "<tplname>", "</title>", "</tplname>")

// ppNode is one element (or text run) of a MediaWiki preprocessor parse tree
type ppNode struct {
	name     string // element name; empty for text
	text     string
	children []*ppNode
}

// parseTree reads the XML parse tree returned by action=parse&prop=parsetree
func parseTree(xml string) (*ppNode, error) {
	root := &ppNode{name: "#document"}
	stack := []*ppNode{root}

	z := html.NewTokenizer(strings.NewReader(titleTagRenamer.Replace(xml)))
	for {
		tt := z.Next()
		top := stack[len(stack)-1]

		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				if len(stack) != 1 {
					return nil, fmt.Errorf("parse tree: unclosed <%s>", top.name)
				}
				return root, nil
			}
			return nil, fmt.Errorf("parse tree: %w", z.Err())

		case html.TextToken:
			top.children = append(top.children, &ppNode{text: string(z.Text())})

		case html.StartTagToken:
			name, _ := z.TagName()
			n := &ppNode{name: string(name)}
			top.children = append(top.children, n)
			stack = append(stack, n)

		case html.SelfClosingTagToken:
			name, _ := z.TagName()
			top.children = append(top.children, &ppNode{name: string(name)})

		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) != top.name || len(stack) == 1 {
				return nil, fmt.Errorf("parse tree: unexpected </%s>", name)
			}
			stack = stack[:len(stack)-1]
		}
	}
}

func (n *ppNode) child(name string) *ppNode {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// Wikitext reassembles the markup the node was parsed from
func (n *ppNode) Wikitext() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *ppNode) write(b *strings.Builder) {
	switch n.name {
	case "":
		b.WriteString(n.text)
	case "template":
		b.WriteString("{{")
		n.writeInvocation(b)
		b.WriteString("}}")
	case "tplarg":
		b.WriteString("{{{")
		n.writeInvocation(b)
		b.WriteString("}}}")
	case "ext":
		n.writeExtension(b)
	default:
		n.writeChildren(b)
	}
}

func (n *ppNode) writeChildren(b *strings.Builder) {
	for _, c := range n.children {
		c.write(b)
	}
}

// writeInvocation writes a template or argument body: the name followed by
// "|"-separated parts. A part is name, "=", value for named parameters and
// just the value for positional ones.
func (n *ppNode) writeInvocation(b *strings.Builder) {
	for _, c := range n.children {
		switch c.name {
		case "tplname":
			c.writeChildren(b)
		case "part":
			b.WriteByte('|')
			c.writeChildren(b)
		}
	}
}

// writeExtension writes an extension tag such as <ref name="x">...</ref>
// or <ref name="x"/>
func (n *ppNode) writeExtension(b *strings.Builder) {
	name := n.child("name")
	if name == nil {
		return
	}
	b.WriteByte('<')
	name.writeChildren(b)
	if attr := n.child("attr"); attr != nil {
		attr.writeChildren(b)
	}
	inner := n.child("inner")
	if inner == nil {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')
	inner.writeChildren(b)
	if closing := n.child("close"); closing != nil {
		closing.writeChildren(b)
	}
}

// templates returns every template in document order, outer before inner
func (n *ppNode) templates() []*ppNode {
	var out []*ppNode
	var walk func(*ppNode)
	walk = func(node *ppNode) {
		if node.name == "template" {
			out = append(out, node)
		}
		for _, c := range node.children {
			walk(c)
		}
	}
	walk(n)
	return out
}

// parameters maps each named part of a template to its value as wikitext.
// Names and values are trimmed; positional and empty parameters are
// skipped, and a repeated name keeps its last value as MediaWiki does.
func (n *ppNode) parameters() map[string]string {
	params := make(map[string]string)
	for _, part := range n.children {
		if part.name != "part" {
			continue
		}
		nameNode, valueNode := part.child("name"), part.child("value")
		if nameNode == nil || valueNode == nil {
			continue
		}
		name := strings.TrimSpace(nameNode.Wikitext())
		value := strings.TrimSpace(valueNode.Wikitext())
		if name == "" || value == "" {
			continue
		}
		params[name] = value
	}
	return params
}

// ParseInfobox finds the first infobox-like template in a parse tree (any
// template whose name contains "box" and that has at least one named,
// non-empty parameter) and returns its parameters as raw wikitext.
func ParseInfobox(parseTreeXML string) (map[string]string, error) {
	if strings.TrimSpace(parseTreeXML) == "" {
		return nil, ErrNoInfobox
	}

	root, err := parseTree(parseTreeXML)
	if err != nil {
		return nil, err
	}

	for _, tpl := range root.templates() {
		title := tpl.child("tplname")
		if title == nil || !strings.Contains(title.Wikitext(), infoboxMarker) {
			continue
		}
		if params := tpl.parameters(); len(params) > 0 {
			return params, nil
		}
	}
	return nil, ErrNoInfobox
}
