package template

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// node is the untyped element tree decoded before validation.
type node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Nodes   []node     `xml:",any"`
}

func (n *node) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (n *node) boolAttr(name string) bool {
	v, ok := n.attr(name)
	return ok && strings.EqualFold(strings.TrimSpace(v), "true")
}

// LoadFile reads and validates the template at path.
func LoadFile(path string) (*Site, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load decodes and validates a template. It never touches the network.
func Load(r io.Reader) (*Site, error) {
	var root node
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &Error{Tag: "site", Msg: "template is empty"}
		}
		return nil, &Error{Tag: "site", Msg: "malformed markup: " + err.Error()}
	}

	if root.XMLName.Local != "site" {
		return nil, &Error{Path: root.XMLName.Local, Tag: root.XMLName.Local, Msg: "root tag must be <site>"}
	}

	siteRoot, ok := root.attr("root")
	if !ok || strings.TrimSpace(siteRoot) == "" {
		return nil, &Error{Path: "site", Tag: "site", Attr: "root", Msg: "missing required attribute"}
	}

	site := &Site{
		Root:          strings.TrimRight(strings.TrimSpace(siteRoot), "/"),
		Authenticated: root.boolAttr("authenticated"),
	}

	for i := range root.Nodes {
		child := &root.Nodes[i]
		path := fmt.Sprintf("site/%s[%d]", child.XMLName.Local, i)
		if child.XMLName.Local != "page" {
			return nil, &Error{Path: path, Tag: child.XMLName.Local, Msg: "expected <page>"}
		}
		page, err := buildPage(child, path)
		if err != nil {
			return nil, err
		}
		site.Pages = append(site.Pages, page)
	}

	return site, nil
}

func buildPage(n *node, path string) (*Page, error) {
	url, ok := n.attr("url")
	if !ok || strings.TrimSpace(url) == "" {
		return nil, &Error{Path: path, Tag: "page", Attr: "url", Msg: "missing required attribute"}
	}

	page := &Page{
		URL:          strings.TrimSpace(url),
		SaveProgress: n.boolAttr("save-progress"),
	}

	if start, ok := n.attr("start"); ok {
		v, err := strconv.Atoi(strings.TrimSpace(start))
		if err != nil || v < 0 {
			return nil, &Error{Path: path, Tag: "page", Attr: "start", Msg: "must be a non-negative integer"}
		}
		page.Start = v
	}

	for i := range n.Nodes {
		child := &n.Nodes[i]
		childPath := fmt.Sprintf("%s/%s[%d]", path, child.XMLName.Local, i)
		if child.XMLName.Local != "entry" {
			return nil, &Error{Path: childPath, Tag: child.XMLName.Local, Msg: "expected <entry>"}
		}
		entry, err := buildEntry(child, childPath)
		if err != nil {
			return nil, err
		}
		page.Entries = append(page.Entries, entry)
	}

	return page, nil
}

func buildEntry(n *node, path string) (*Entry, error) {
	expr, ok := n.attr("regex")
	if !ok || expr == "" {
		return nil, &Error{Path: path, Tag: "entry", Attr: "regex", Msg: "missing required attribute"}
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &Error{Path: path, Tag: "entry", Attr: "regex", Msg: err.Error()}
	}

	entry := &Entry{Regex: re}

	if raw, ok := n.attr("enumerate"); ok {
		enum, err := ParseEnumeration(raw)
		if err != nil {
			return nil, &Error{Path: path, Tag: "entry", Attr: "enumerate", Msg: err.Error()}
		}
		entry.Enumeration = enum
	}

	hasResult := false
	for i := range n.Nodes {
		child := &n.Nodes[i]
		childPath := fmt.Sprintf("%s/%s[%d]", path, child.XMLName.Local, i)

		switch child.XMLName.Local {
		case "page":
			page, err := buildPage(child, childPath)
			if err != nil {
				return nil, err
			}
			entry.Steps = append(entry.Steps, Step{Page: page})

		case "action":
			action, err := buildAction(child, childPath)
			if err != nil {
				return nil, err
			}
			if action.Kind.NeedsInput() && !hasResult {
				return nil, &Error{
					Path: childPath,
					Tag:  "action",
					Attr: "type",
					Msg:  fmt.Sprintf("%s needs the result of a preceding download or extract action", action.Kind),
				}
			}
			if action.Kind.ProducesResult() {
				hasResult = true
			}
			entry.Steps = append(entry.Steps, Step{Action: action})

		default:
			return nil, &Error{Path: childPath, Tag: child.XMLName.Local, Msg: "expected <action> or <page>"}
		}
	}

	return entry, nil
}

func buildAction(n *node, path string) (*Action, error) {
	rawType, ok := n.attr("type")
	if !ok || strings.TrimSpace(rawType) == "" {
		return nil, &Error{Path: path, Tag: "action", Attr: "type", Msg: "missing required attribute"}
	}
	rawType = strings.TrimSpace(rawType)

	kind, known := actionKinds[strings.ToLower(rawType)]
	action := &Action{Kind: kind, RawType: rawType}
	if !known {
		slog.Warn("unrecognized action type, it will be skipped", "type", rawType, "path", path)
		return action, nil
	}

	switch kind {
	case ActionDownload:
		url, ok := n.attr("url")
		if !ok || strings.TrimSpace(url) == "" {
			return nil, &Error{Path: path, Tag: "action", Attr: "url", Msg: "download action requires a url"}
		}
		action.URL = strings.TrimSpace(url)

	case ActionDelete:
		expr, ok := n.attr("regex")
		if !ok || expr == "" {
			return nil, &Error{Path: path, Tag: "action", Attr: "regex", Msg: "delete action requires a regex"}
		}
		// file names are matched from their first character
		re, err := regexp.Compile(`^(?:` + expr + `)`)
		if err != nil {
			return nil, &Error{Path: path, Tag: "action", Attr: "regex", Msg: err.Error()}
		}
		action.Pattern = re

	case ActionLogin:
		body, ok := n.attr("form-encoded")
		if !ok || strings.TrimSpace(body) == "" {
			return nil, &Error{Path: path, Tag: "action", Attr: "form-encoded", Msg: "login action requires a form-encoded body"}
		}
		for _, part := range strings.Fields(body) {
			if !strings.Contains(part, "=") {
				return nil, &Error{Path: path, Tag: "action", Attr: "form-encoded", Msg: fmt.Sprintf("field %q is not key=value", part)}
			}
		}
		action.FormEncoded = body
		action.Method = "POST"
		if method, ok := n.attr("method"); ok && strings.TrimSpace(method) != "" {
			action.Method = strings.ToUpper(strings.TrimSpace(method))
		}
	}

	return action, nil
}

// Name returns the template identity used to scope credentials and logs:
// the file name without extension.
func Name(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
