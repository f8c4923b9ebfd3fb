// Package template loads crawl templates: XML documents describing a site,
// its pages, the regex entries applied to each page and the actions run for
// every match.
//
//	<site root="https://example.com" authenticated="true">
//	  <page url="/list?p={index}" start="1" save-progress="true">
//	    <entry regex="href=&quot;/item/(\d+)&quot;" enumerate="all">
//	      <action type="download" url="/files/{0}.zip"/>
//	      <action type="extract"/>
//	      <action type="delete" regex=".*\.txt"/>
//	      <action type="register"/>
//	    </entry>
//	  </page>
//	</site>
package template

import (
	"regexp"
	"strings"
)

// IndexPlaceholder marks the pagination position in a page URL.
const IndexPlaceholder = "{index}"

// Site is the root of a loaded template. It is not modified after loading.
type Site struct {
	Root          string
	Authenticated bool
	Pages         []*Page
}

type Page struct {
	URL          string
	Start        int
	SaveProgress bool
	Entries      []*Entry
}

// Paginated reports whether the page URL carries an {index} placeholder.
func (p *Page) Paginated() bool {
	return strings.Contains(p.URL, IndexPlaceholder)
}

type Entry struct {
	Regex       *regexp.Regexp
	Enumeration Enumeration
	Steps       []Step
}

// Step is one element of an entry body: exactly one of Action or Page is set.
// A nested Page is crawled with the current match as its substitution context.
type Step struct {
	Action *Action
	Page   *Page
}

type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionDownload
	ActionExtract
	ActionDelete
	ActionLogin
	ActionRegister
)

var actionKinds = map[string]ActionKind{
	"download": ActionDownload,
	"extract":  ActionExtract,
	"delete":   ActionDelete,
	"login":    ActionLogin,
	"register": ActionRegister,
}

func (k ActionKind) String() string {
	for name, kind := range actionKinds {
		if kind == k {
			return name
		}
	}
	return "unknown"
}

// NeedsInput reports whether the action consumes the result of an earlier
// action in the same chain.
func (k ActionKind) NeedsInput() bool {
	return k == ActionExtract || k == ActionDelete || k == ActionRegister
}

// ProducesResult reports whether the action yields a path for the next action.
func (k ActionKind) ProducesResult() bool {
	return k == ActionDownload || k == ActionExtract || k == ActionDelete
}

type Action struct {
	Kind ActionKind
	// RawType is the type attribute as written, kept for unknown kinds.
	RawType string

	URL         string         // download
	Pattern     *regexp.Regexp // delete
	Method      string         // login
	FormEncoded string         // login
}
