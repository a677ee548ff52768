package mediawiki

import (
	"errors"
	"reflect"
	"testing"
)

const filmParseTree = `<root><template><title>Infobox film
</title><part><name> name </name><equals>=</equals><value> Example Film
</value></part><part><name> director </name><equals>=</equals><value> [[Jane Doe]]
</value></part><part><name> starring </name><equals>=</equals><value> <template lineStart="1"><title>Plainlist</title><part><name index="1"/><value>
* [[Ann Lee]]
* [[Carl Mint]]
</value></part></template>
</value></part><part><name> runtime </name><equals>=</equals><value> 120 minutes<ext><name>ref</name><attr> name="bbfc"</attr><inner>{{cite web |url=http://example.org}}</inner><close>&lt;/ref&gt;</close></ext>
</value></part><part><name> country </name><equals>=</equals><value> United States<ext><name>ref</name><attr> name="afi" </attr></ext>
</value></part><part><name> language </name><equals>=</equals><value> English &amp; French<comment>&lt;!-- per sources --&gt;</comment>
</value></part><part><name> budget </name><equals>=</equals><value>
</value></part></template>'''Example Film''' is a film.
<h level="2" i="1">== Plot ==</h>
Set in <template><title>Lang</title><part><name index="1"/><value>fr</value></part><part><name index="2"/><value>Paris</value></part></template>.</root>`

func TestParseInfobox(t *testing.T) {
	got, err := ParseInfobox(filmParseTree)
	if err != nil {
		t.Fatalf("ParseInfobox: %v", err)
	}

	want := map[string]string{
		"name":     "Example Film",
		"director": "[[Jane Doe]]",
		"starring": "{{Plainlist|\n* [[Ann Lee]]\n* [[Carl Mint]]\n}}",
		"runtime":  `120 minutes<ref name="bbfc">{{cite web |url=http://example.org}}</ref>`,
		"country":  `United States<ref name="afi" />`,
		"language": "English & French<!-- per sources -->",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseInfobox mismatch\n got: %#v\nwant: %#v", got, want)
	}
}

func TestParseInfobox_SkipsBoxesWithoutNamedParameters(t *testing.T) {
	xml := `<root><template><title>Userbox</title><part><name index="1"/><value>x</value></part></template>` +
		`<template><title>infobox film</title><part><name>director</name><equals>=</equals><value>Bob Roe</value></part></template></root>`

	got, err := ParseInfobox(xml)
	if err != nil {
		t.Fatalf("ParseInfobox: %v", err)
	}
	if got["director"] != "Bob Roe" || len(got) != 1 {
		t.Errorf("expected the second template, got %#v", got)
	}
}

func TestParseInfobox_RepeatedParameterKeepsLast(t *testing.T) {
	xml := `<root><template><title>Infobox film</title>` +
		`<part><name>director</name><equals>=</equals><value>First</value></part>` +
		`<part><name>director</name><equals>=</equals><value>Second</value></part></template></root>`

	got, err := ParseInfobox(xml)
	if err != nil {
		t.Fatalf("ParseInfobox: %v", err)
	}
	if got["director"] != "Second" {
		t.Errorf("expected last value, got %q", got["director"])
	}
}

func TestParseInfobox_NoInfobox(t *testing.T) {
	for _, xml := range []string{
		"",
		"<root>Plain text only.</root>",
		`<root>Claim.<template><title>Citation needed</title><part><name>date</name><equals>=</equals><value>May 2018</value></part></template></root>`,
		`<root><template><title>Infobox film</title><part><name>name</name><equals>=</equals><value> </value></part></template></root>`,
	} {
		if _, err := ParseInfobox(xml); !errors.Is(err, ErrNoInfobox) {
			t.Errorf("ParseInfobox(%q): expected ErrNoInfobox, got %v", xml, err)
		}
	}
}

func TestParseInfobox_Malformed(t *testing.T) {
	for _, xml := range []string{
		"<root><template><title>Infobox film</title>",
		"<root></template></root>",
	} {
		_, err := ParseInfobox(xml)
		if err == nil || errors.Is(err, ErrNoInfobox) {
			t.Errorf("ParseInfobox(%q): expected parse error, got %v", xml, err)
		}
	}
}

func TestPPNode_Wikitext(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want string
	}{
		{"text", "<root>a &lt;b&gt; c</root>", "a <b> c"},
		{"heading", `<root><h level="2" i="1">== Plot ==</h></root>`, "== Plot =="},
		{"template", `<root><template><title>Lang</title><part><name index="1"/><value>fr</value></part><part><name>italic</name><equals>=</equals><value>no</value></part></template></root>`, "{{Lang|fr|italic=no}}"},
		{"template argument", `<root><tplarg><title>1</title><part><name index="1"/><value>default</value></part></tplarg></root>`, "{{{1|default}}}"},
		{"nested title", `<root><template><title>Infobox <template><title>PAGENAME</title></template></title></template></root>`, "{{Infobox {{PAGENAME}}}}"},
		{"ignored markup", `<root><ignore>&lt;includeonly&gt;</ignore>x<ignore>&lt;/includeonly&gt;</ignore></root>`, "<includeonly>x</includeonly>"},
		{"extension", `<root><ext><name>nowiki</name><attr/><inner>[[x]]</inner><close>&lt;/nowiki&gt;</close></ext></root>`, "<nowiki>[[x]]</nowiki>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := parseTree(tt.xml)
			if err != nil {
				t.Fatalf("parseTree: %v", err)
			}
			if got := root.Wikitext(); got != tt.want {
				t.Errorf("Wikitext = %q, want %q", got, tt.want)
			}
		})
	}
}
