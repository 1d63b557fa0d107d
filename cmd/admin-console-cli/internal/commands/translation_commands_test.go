//go:build unit
// +build unit

package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MGTheTrain/admin-console/internal/pkg/i18n"
	"github.com/MGTheTrain/admin-console/internal/pkg/testutil"
)

type translationFixture struct {
	dir        string
	configPath string
	catalog    string
}

func newTranslationFixture(t *testing.T) *translationFixture {
	t.Helper()
	dir := t.TempDir()

	testutil.WriteTestFile(t, dir, "src/handler.go", []byte(`msg := h.T(ctx, "greetings.hello", nil)
bye := T("greetings.bye")`))
	catalog := testutil.WriteTestFile(t, dir, "locales/en/greetings.yaml", []byte(`locale: en
namespace: greetings
messages:
  greetings.bye: Goodbye
  greetings.unused: Never shown
`))

	configPath := testutil.WriteTestFile(t, dir, "config.yaml", []byte(`
i18n:
  locales_dir: `+filepath.Join(dir, "locales")+`
  base_locale: en
  locales: [en]
  scan_paths: [`+filepath.Join(dir, "src")+`]
`))

	return &translationFixture{dir: dir, configPath: configPath, catalog: catalog}
}

func (f *translationFixture) execute(t *testing.T, args ...string) string {
	t.Helper()
	rootCmd := &cobra.Command{Use: "admin-console-cli", SilenceUsage: true}
	rootCmd.PersistentFlags().String(ConfigFlag, "", "")
	require.NoError(t, InitTranslationCommands(rootCmd))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "--"+ConfigFlag, f.configPath))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestTranslationCommands_Scan(t *testing.T) {
	f := newTranslationFixture(t)

	out := f.execute(t, "translations", "scan")
	assert.Contains(t, out, "greetings.hello\t1")
	assert.Contains(t, out, "greetings.bye\t1")
}

func TestTranslationCommands_SyncDryRunLeavesCatalog(t *testing.T) {
	f := newTranslationFixture(t)
	before, err := os.ReadFile(f.catalog)
	require.NoError(t, err)

	out := f.execute(t, "translations", "sync", "--dry-run")

	var result i18n.SyncResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.DryRun)
	assert.Equal(t, []string{"greetings.hello"}, result.Added["en"])

	after, err := os.ReadFile(f.catalog)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestTranslationCommands_SyncWritesMissingKeys(t *testing.T) {
	f := newTranslationFixture(t)

	f.execute(t, "translations", "sync")

	catalog, err := i18n.Load(filepath.Join(f.dir, "locales"), "en", "en")
	require.NoError(t, err)
	value, ok := catalog.Lookup("en", "greetings.hello")
	require.True(t, ok)
	assert.Equal(t, "greetings.hello", value)
}

func TestTranslationCommands_PruneRemovesUnusedKeys(t *testing.T) {
	f := newTranslationFixture(t)

	out := f.execute(t, "translations", "prune")

	var result i18n.PruneResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, []string{"greetings.unused"}, result.Removed["en"])

	catalog, err := i18n.Load(filepath.Join(f.dir, "locales"), "en", "en")
	require.NoError(t, err)
	_, ok := catalog.Lookup("en", "greetings.unused")
	assert.False(t, ok)
	_, ok = catalog.Lookup("en", "greetings.bye")
	assert.True(t, ok)
}

func TestOlderThanFlag(t *testing.T) {
	cmd := &cobra.Command{Use: "prune"}
	cmd.Flags().Duration("older-than", 0, "")

	_, err := olderThanFlag(cmd)
	assert.Error(t, err)

	require.NoError(t, cmd.Flags().Set("older-than", "48h"))
	d, err := olderThanFlag(cmd)
	require.NoError(t, err)
	assert.Equal(t, "48h0m0s", d.String())
}
