package lang_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/recast/ir"
	"github.com/jward/recast/lang"
	"github.com/jward/recast/lang/lua"
	"github.com/jward/recast/lang/typescript"
)

func TestRegistry_BuiltinsResolveByName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"typescript", "lua"} {
		require.NotNil(t, lang.ReaderForLanguage(name), "reader %s", name)
		require.NotNil(t, lang.WriterForLanguage(name), "writer %s", name)
	}
	assert.Nil(t, lang.ReaderForLanguage("cobol"))
	assert.Nil(t, lang.WriterForLanguage("cobol"))
}

func TestRegistry_ExtensionLookup(t *testing.T) {
	t.Parallel()

	// Every extension a reader claims resolves to that same instance.
	byName := lang.ReaderForLanguage("typescript")
	for _, ext := range []string{"ts", "tsx", "js", "jsx", ".ts"} {
		assert.Same(t, byName, lang.ReaderForExtension(ext), "extension %q", ext)
	}
	assert.Same(t, lang.ReaderForLanguage("lua"), lang.ReaderForExtension(".lua"))
	assert.Nil(t, lang.ReaderForExtension("py"))
}

func TestRegistry_LookupsAreStable(t *testing.T) {
	t.Parallel()

	// Built-ins are instantiated once; repeated lookups return the same
	// instance rather than re-running factories.
	assert.Same(t, lang.ReaderForLanguage("lua"), lang.ReaderForLanguage("lua"))
	assert.Same(t, lang.WriterForLanguage("typescript"), lang.WriterForLanguage("typescript"))
}

func TestRegistry_ConcurrentLookups(t *testing.T) {
	t.Parallel()

	// Hammer the registry from many goroutines; the race detector guards the
	// lazy-seeding path.
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NotNil(t, lang.ReaderForLanguage("lua"))
			assert.NotNil(t, lang.WriterForLanguage("typescript"))
			assert.NotNil(t, lang.ReaderForExtension("ts"))
			lang.Readers()
			lang.Writers()
		}()
	}
	wg.Wait()
}

// duplicateReader registers under an already-taken language name.
type duplicateReader struct {
	lua.Reader
}

func TestRegistry_FirstRegisteredWins(t *testing.T) {
	// Not parallel: registration mutates the process-wide table.
	first := lang.ReaderForLanguage("lua")
	require.NotNil(t, first)

	lang.RegisterReader(&duplicateReader{})
	assert.Same(t, first, lang.ReaderForLanguage("lua"), "duplicates are allowed, first registration wins")

	// The duplicate is still present in the collection.
	var count int
	for _, r := range lang.Readers() {
		if r.Language() == "lua" {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestRegistry_SnapshotsAreIsolated(t *testing.T) {
	t.Parallel()

	a := lang.Readers()
	require.NotEmpty(t, a)
	a[0] = nil
	b := lang.Readers()
	assert.NotNil(t, b[0], "mutating a snapshot does not affect the registry")
}

func TestRegistry_ContractSmoke(t *testing.T) {
	t.Parallel()

	// The two built-in backends satisfy the interfaces symmetrically: a
	// trivial program survives reader -> writer -> reader in each language.
	src := map[string]string{
		"typescript": "const x = 1;",
		"lua":        "local x = 1",
	}
	for name, s := range src {
		r := lang.ReaderForLanguage(name)
		w := lang.WriterForLanguage(name)
		prog, err := r.Parse(s)
		require.NoError(t, err, name)
		back, err := r.Parse(w.Emit(prog))
		require.NoError(t, err, name)
		assert.True(t, ir.Equal(prog, back), name)
	}
}

var (
	_ lang.Reader = (*typescript.Reader)(nil)
	_ lang.Writer = (*typescript.Writer)(nil)
	_ lang.Reader = (*lua.Reader)(nil)
	_ lang.Writer = (*lua.Writer)(nil)
)
