package recast

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/jward/recast/internal/cache"
	"github.com/jward/recast/lang"

	// Built-in language backends register themselves with the lang registry.
	_ "github.com/jward/recast/lang/lua"
	_ "github.com/jward/recast/lang/typescript"
)

// extToLanguage maps file extensions to canonical source language names.
// This table only drives source-language inference; target resolution always
// goes through the registry by name.
var extToLanguage = map[string]string{
	".ts":  "typescript",
	".tsx": "typescript",
	".js":  "typescript",
	".jsx": "typescript",
	".lua": "lua",
	".py":  "python",
}

// InferLanguage returns the canonical language name for a file path based on
// its extension. Returns ("", false) if the extension is not recognized.
func InferLanguage(path string) (string, bool) {
	l, ok := extToLanguage[strings.ToLower(filepath.Ext(path))]
	return l, ok
}

// Translator orchestrates translations into one target language: reader
// resolution, parsing, emission, and the optional output cache. A Translator
// holds no per-call state; one instance may serve concurrent translations.
type Translator struct {
	target  string
	source  string // explicit source language; empty means infer per file
	cache   *cache.Cache
	workers int
}

// Option configures a Translator.
type Option func(*Translator)

// WithSourceLanguage pins the source language, disabling extension
// inference.
func WithSourceLanguage(language string) Option {
	return func(t *Translator) {
		t.source = language
	}
}

// WithCache attaches a translation cache. Lookups are keyed by source hash
// and language pair; cache failures are ignored rather than failing the
// translation.
func WithCache(c *cache.Cache) Option {
	return func(t *Translator) {
		t.cache = c
	}
}

// WithConcurrency bounds the worker count used by TranslateDir. Values below
// one reset to the default of one worker per CPU.
func WithConcurrency(n int) Option {
	return func(t *Translator) {
		t.workers = n
	}
}

// New creates a Translator targeting the given language.
func New(target string, opts ...Option) *Translator {
	t := &Translator{
		target:  target,
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.workers < 1 {
		t.workers = 1
	}
	return t
}

// Target returns the target language this Translator emits.
func (t *Translator) Target() string { return t.target }

// TranslateSource translates source text from the given language into the
// target language and returns the emitted text. The source language must be
// named: with no filename there is nothing to infer from.
func (t *Translator) TranslateSource(source, fromLanguage string) (string, error) {
	if fromLanguage == "" {
		fromLanguage = t.source
	}
	if fromLanguage == "" {
		return "", &UnknownLanguageError{}
	}
	return t.translate(source, fromLanguage)
}

// TranslateFile reads inputPath, translates it, and writes the result to
// outputPath. When outputPath is empty the result goes to stdout. The source
// language comes from WithSourceLanguage or the input extension. No output
// file is written on failure.
func (t *Translator) TranslateFile(inputPath, outputPath string) error {
	fromLanguage := t.source
	if fromLanguage == "" {
		var ok bool
		fromLanguage, ok = InferLanguage(inputPath)
		if !ok {
			return &UnknownLanguageError{Path: inputPath}
		}
	}

	content, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", inputPath, err)
	}
	out, err := t.translate(string(content), fromLanguage)
	if err != nil {
		return err
	}
	if outputPath == "" {
		_, err = os.Stdout.WriteString(out)
		return err
	}
	if err := os.WriteFile(outputPath, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	return nil
}

// translate runs the parse/emit pipeline for one source text. Parse errors
// propagate verbatim: they already name the language and the offending
// construct, and they are never transient, so there are no retries.
func (t *Translator) translate(source, fromLanguage string) (string, error) {
	reader := lang.ReaderForLanguage(fromLanguage)
	if reader == nil {
		return "", &NoReaderError{Language: fromLanguage}
	}
	writer := lang.WriterForLanguage(t.target)
	if writer == nil {
		return "", &NoWriterError{Language: t.target}
	}

	var key string
	if t.cache != nil {
		key = cache.Key(source)
		if out, ok, err := t.cache.Get(key, fromLanguage, t.target); err == nil && ok {
			return out, nil
		}
	}

	program, err := reader.Parse(source)
	if err != nil {
		return "", err
	}
	out := writer.Emit(program)

	if t.cache != nil {
		// Best effort: a full or read-only cache must not fail the translation.
		_ = t.cache.Put(key, fromLanguage, t.target, out)
	}
	return out, nil
}
