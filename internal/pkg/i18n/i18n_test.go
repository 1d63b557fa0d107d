//go:build unit
// +build unit

package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MGTheTrain/admin-console/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func writeCatalogs(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	testutil.WriteTestFile(t, dir, "en/users.yaml", []byte(`
locale: en
namespace: users
messages:
  users.created: "User :name created"
  users.title: Users
`))
	testutil.WriteTestFile(t, dir, "en/messages.yaml", []byte(`
messages:
  Save: Save
`))
	testutil.WriteTestFile(t, dir, "de/users.yaml", []byte(`
messages:
  users.title: Benutzer
`))
	return dir
}

func TestLoadAndTranslate(t *testing.T) {
	c, err := Load(writeCatalogs(t), "en", "en", "de")
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "de"}, c.Locales())
	assert.Equal(t, "Benutzer", c.Translate("de", "users.title", nil))
	assert.Equal(t, "User Ada created", c.Translate("de", "users.created", map[string]string{"name": "Ada"}))
	assert.Equal(t, "teams.missing", c.Translate("de", "teams.missing", nil))
	assert.Equal(t, "Save", c.Translate("en", "Save", nil))
}

func TestLoad_RejectsForeignNamespaceKey(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTestFile(t, dir, "en/users.yaml", []byte("messages:\n  teams.title: Teams\n"))

	_, err := Load(dir, "en")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "belongs to namespace teams")
}

func TestReplacePlaceholders_LongestFirst(t *testing.T) {
	out := ReplacePlaceholders(":user_name is :user", map[string]string{"user": "U", "user_name": "Ada"})
	assert.Equal(t, "Ada is U", out)
}

func TestNamespace(t *testing.T) {
	assert.Equal(t, "users", Namespace("users.title"))
	assert.Equal(t, DefaultNamespace, Namespace("Save"))
	assert.Equal(t, DefaultNamespace, Namespace(".odd"))
}

func TestRegister(t *testing.T) {
	c := NewCatalog(t.TempDir(), "en", "de")
	c.Set("de", "greeting.hello", "Hallo")
	require.NoError(t, c.Register())

	p := message.NewPrinter(language.German)
	assert.Equal(t, "Hallo", p.Sprintf("greeting.hello"))
}

func TestNegotiate(t *testing.T) {
	n := NewNegotiator([]string{"en", "de", "fr"})

	tests := []struct {
		name                   string
		query, cookie, accept string
		expected               string
	}{
		{"query wins", "de", "fr", "fr", "de"},
		{"cookie", "", "fr", "de", "fr"},
		{"accept language", "", "", "de-CH,de;q=0.9,en;q=0.5", "de"},
		{"invalid query falls through", "!!", "", "fr-FR", "fr"},
		{"default", "", "", "", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.Negotiate(tt.query, tt.cookie, tt.accept))
		})
	}
}

func TestExtractKeys(t *testing.T) {
	src := "msg := T(\"users.created\")\n" +
		"x := Trans( \"teams.title\" )\n" +
		"y := T(`raw.key`)\n" +
		"<h1>{{ t \"users.title\" }}</h1>{{- t \"Save\" }}\n" +
		"__('js.key') __(\"users.created\")\n" +
		"h.T(ctx, \"auth.password_reset\", nil)\n" +
		"Tr(\"not.a.key\")"

	assert.Equal(t, []string{"Save", "auth.password_reset", "js.key", "raw.key", "teams.title", "users.created", "users.title"}, ExtractKeys(src))
}

func TestScanner(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTestFile(t, dir, "src/a.go", []byte(`T("a.one")`))
	testutil.WriteTestFile(t, dir, "src/views/b.html", []byte(`{{ t "b.two" }} {{ t "a.one" }}`))
	testutil.WriteTestFile(t, dir, "src/a_test.go", []byte(`T("test.only")`))
	testutil.WriteTestFile(t, dir, "src/notes.txt", []byte(`T("txt.key")`))
	testutil.WriteTestFile(t, dir, "src/.hidden/c.go", []byte(`T("hidden.key")`))

	found, err := NewScanner([]string{filepath.Join(dir, "src"), filepath.Join(dir, "missing")}, []string{"_test.go"}).Scan()
	require.NoError(t, err)

	assert.Equal(t, []string{"a.one", "b.two"}, SortedKeys(found))
	assert.Len(t, found["a.one"], 2)
}

func TestSyncAndPrune(t *testing.T) {
	c := NewCatalog(t.TempDir(), "en", "de")
	c.Set("en", "users.title", "Users")
	c.Set("de", "users.title", "Benutzer")
	c.Set("de", "users.old", "Alt")

	dry := Sync(c, []string{"users.title", "users.new"}, true)
	assert.Equal(t, map[string][]string{"en": {"users.new"}, "de": {"users.new"}}, dry.Added)
	_, ok := c.Lookup("en", "users.new")
	assert.False(t, ok)

	result := Sync(c, []string{"users.title", "users.new"}, false)
	assert.Equal(t, 2, result.Total())
	v, _ := c.Lookup("de", "users.new")
	assert.Equal(t, "users.new", v)

	pruned := Prune(c, []string{"users.title", "users.new"}, false)
	assert.Equal(t, map[string][]string{"de": {"users.old"}}, pruned.Removed)
	assert.Equal(t, []string{"users.new", "users.title"}, c.Keys("de"))
}

func TestSaveRoundTrip(t *testing.T) {
	dir := writeCatalogs(t)
	c, err := Load(dir, "en", "en", "de")
	require.NoError(t, err)

	c.Set("de", "teams.title", "Teams")
	c.Delete("en", "Save")
	require.NoError(t, c.Save())

	_, err = os.Stat(filepath.Join(dir, "en", "messages.yaml"))
	assert.True(t, os.IsNotExist(err))

	reloaded, err := Load(dir, "en", "en", "de")
	require.NoError(t, err)
	v, ok := reloaded.Lookup("de", "teams.title")
	assert.True(t, ok)
	assert.Equal(t, "Teams", v)
	assert.Equal(t, []string{"users.created", "users.title"}, reloaded.Keys("en"))
}
