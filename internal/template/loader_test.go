package template

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const galleryTemplate = `<?xml version="1.0"?>
<!-- gallery crawl -->
<site root="https://example.com/" authenticated="TRUE">
  <page url="/login">
    <entry regex="name=&quot;token&quot; value=&quot;(\w+)&quot;">
      <action type="login" method="post" form-encoded="user={username} pass={password} token={0}"/>
    </entry>
  </page>
  <page url="/list?p={index}" start="1" save-progress="true" ignored="x">
    <entry regex="href=&quot;/item/(\d+)&quot;" enumerate="all">
      <action type="download" url="/files/{0}.zip"/>
      <action type="extract"/>
      <action type="delete" regex=".*\.txt"/>
      <action type="register"/>
      <page url="/item/{0}">
        <entry regex="src=&quot;([^&quot;]+\.jpg)&quot;" enumerate="0-2">
          <action type="download" url="{0}"/>
          <action type="register"/>
        </entry>
      </page>
    </entry>
  </page>
</site>`

func regexpComparer() cmp.Option {
	return cmp.Comparer(func(a, b *regexp.Regexp) bool {
		if a == nil || b == nil {
			return a == b
		}
		return a.String() == b.String()
	})
}

func TestLoad(t *testing.T) {
	site, err := Load(strings.NewReader(galleryTemplate))
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", site.Root)
	assert.True(t, site.Authenticated)
	require.Len(t, site.Pages, 2)

	login := site.Pages[0]
	assert.False(t, login.Paginated())
	require.Len(t, login.Entries, 1)
	require.Len(t, login.Entries[0].Steps, 1)
	loginAction := login.Entries[0].Steps[0].Action
	require.NotNil(t, loginAction)
	assert.Equal(t, ActionLogin, loginAction.Kind)
	assert.Equal(t, "POST", loginAction.Method)
	assert.Equal(t, "user={username} pass={password} token={0}", loginAction.FormEncoded)

	list := site.Pages[1]
	assert.True(t, list.Paginated())
	assert.Equal(t, 1, list.Start)
	assert.True(t, list.SaveProgress)
	require.Len(t, list.Entries, 1)

	entry := list.Entries[0]
	assert.Equal(t, Enumeration{Kind: EnumerateAll}, entry.Enumeration)
	require.Len(t, entry.Steps, 5)

	kinds := []ActionKind{ActionDownload, ActionExtract, ActionDelete, ActionRegister}
	for i, kind := range kinds {
		require.NotNil(t, entry.Steps[i].Action, "step %d", i)
		assert.Equal(t, kind, entry.Steps[i].Action.Kind)
	}
	assert.Equal(t, "/files/{0}.zip", entry.Steps[0].Action.URL)
	assert.True(t, entry.Steps[2].Action.Pattern.MatchString("notes.txt"))
	assert.False(t, entry.Steps[2].Action.Pattern.MatchString("a.jpg"))

	detail := entry.Steps[4].Page
	require.NotNil(t, detail)
	assert.Nil(t, entry.Steps[4].Action)
	assert.Equal(t, "/item/{0}", detail.URL)
	assert.Equal(t, Enumeration{Kind: EnumerateRange, From: 0, To: 2}, detail.Entries[0].Enumeration)
}

func TestLoad_Idempotent(t *testing.T) {
	first, err := Load(strings.NewReader(galleryTemplate))
	require.NoError(t, err)
	second, err := Load(strings.NewReader(galleryTemplate))
	require.NoError(t, err)

	if diff := cmp.Diff(first, second, regexpComparer()); diff != "" {
		t.Errorf("loading twice produced different trees (-first +second):\n%s", diff)
	}
}

func TestLoad_UnknownActionIsKept(t *testing.T) {
	site, err := Load(strings.NewReader(`<site root="https://x.org">
  <page url="/"><entry regex="a">
    <action type="screenshot"/>
    <action type="download" url="/f"/>
  </entry></page>
</site>`))
	require.NoError(t, err)

	steps := site.Pages[0].Entries[0].Steps
	require.Len(t, steps, 2)
	assert.Equal(t, ActionUnknown, steps[0].Action.Kind)
	assert.Equal(t, "screenshot", steps[0].Action.RawType)
	assert.Equal(t, ActionDownload, steps[1].Action.Kind)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		markup   string
		wantTag  string
		wantAttr string
	}{
		{"empty", ``, "site", ""},
		{"malformed", `<site root="x"><page url="/">`, "site", ""},
		{"wrong root", `<pages/>`, "pages", ""},
		{"missing root attribute", `<site/>`, "site", "root"},
		{"site child", `<site root="x"><entry regex="a"/></site>`, "entry", ""},
		{"missing page url", `<site root="x"><page/></site>`, "page", "url"},
		{"bad start", `<site root="x"><page url="/{index}" start="-1"/></site>`, "page", "start"},
		{"page child", `<site root="x"><page url="/"><action type="download" url="/f"/></page></site>`, "action", ""},
		{"missing entry regex", `<site root="x"><page url="/"><entry/></page></site>`, "entry", "regex"},
		{"bad entry regex", `<site root="x"><page url="/"><entry regex="("/></page></site>`, "entry", "regex"},
		{"bad enumerate", `<site root="x"><page url="/"><entry regex="a" enumerate="3-1"/></page></site>`, "entry", "enumerate"},
		{"entry child", `<site root="x"><page url="/"><entry regex="a"><entry regex="b"/></entry></page></site>`, "entry", ""},
		{"missing action type", `<site root="x"><page url="/"><entry regex="a"><action/></entry></page></site>`, "action", "type"},
		{"download without url", `<site root="x"><page url="/"><entry regex="a"><action type="download"/></entry></page></site>`, "action", "url"},
		{"delete without regex", `<site root="x"><page url="/"><entry regex="a"><action type="download" url="/f"/><action type="extract"/><action type="delete"/></entry></page></site>`, "action", "regex"},
		{"login without body", `<site root="x"><page url="/"><entry regex="a"><action type="login"/></entry></page></site>`, "action", "form-encoded"},
		{"login malformed body", `<site root="x"><page url="/"><entry regex="a"><action type="login" form-encoded="user"/></entry></page></site>`, "action", "form-encoded"},
		{"extract without download", `<site root="x"><page url="/"><entry regex="a"><action type="extract"/></entry></page></site>`, "action", "type"},
		{"register without download", `<site root="x"><page url="/"><entry regex="a"><action type="login" form-encoded="a=b"/><action type="register"/></entry></page></site>`, "action", "type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.markup))
			require.Error(t, err)

			var tmplErr *Error
			require.True(t, errors.As(err, &tmplErr), "expected *Error, got %T", err)
			assert.Equal(t, tt.wantTag, tmplErr.Tag)
			assert.Equal(t, tt.wantAttr, tmplErr.Attr)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gallery.xml")
	require.NoError(t, os.WriteFile(path, []byte(galleryTemplate), 0644))

	site, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, site.Pages, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.xml"))
	assert.Error(t, err)
}

func TestName(t *testing.T) {
	assert.Equal(t, "gallery", Name("/data/templates/gallery.xml"))
	assert.Equal(t, "gallery", Name("gallery"))
}
