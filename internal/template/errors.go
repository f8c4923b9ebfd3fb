package template

import "fmt"

// Error reports a malformed template. Path locates the element, for example
// "site/page[1]/entry[0]".
type Error struct {
	Path string
	Tag  string
	Attr string
	Msg  string
}

func (e *Error) Error() string {
	loc := e.Path
	if loc == "" {
		loc = e.Tag
	}
	if e.Attr != "" {
		return fmt.Sprintf("invalid template at %s: <%s> attribute %q: %s", loc, e.Tag, e.Attr, e.Msg)
	}
	return fmt.Sprintf("invalid template at %s: <%s>: %s", loc, e.Tag, e.Msg)
}
