package recast

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jward/recast/lang"
	"golang.org/x/sync/errgroup"
)

// skipDirs are directory names never descended into during a tree walk.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
}

// BatchResult summarizes a TranslateDir run.
type BatchResult struct {
	// Translated lists output files written, in no particular order.
	Translated []string
	// Skipped counts files whose language could not be inferred or already
	// matched the target.
	Skipped int
	// Failed maps input paths to their translation errors.
	Failed map[string]error
}

// TranslateDir walks root and translates every supported source file into the
// target language, writing each output next to its input with the target
// writer's extension. Hidden directories and dependency trees (node_modules,
// vendor, __pycache__) are skipped, as are files already in the target
// language. Files are processed concurrently, bounded by WithConcurrency.
//
// Per-file failures do not stop the batch: they are collected in the result
// and folded into the returned error.
func (t *Translator) TranslateDir(ctx context.Context, root string) (*BatchResult, error) {
	res := &BatchResult{Failed: make(map[string]error)}

	var inputs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		from, ok := InferLanguage(path)
		if !ok || from == t.target {
			res.Skipped++
			return nil
		}
		inputs = append(inputs, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers)
	for _, input := range inputs {
		input := input
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			output, err := t.outputPath(input)
			if err == nil {
				err = t.TranslateFile(input, output)
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed[input] = err
				return nil
			}
			res.Translated = append(res.Translated, output)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	if n := len(res.Failed); n > 0 {
		errs := make([]error, 0, n)
		for path, ferr := range res.Failed {
			errs = append(errs, fmt.Errorf("%s: %w", path, ferr))
		}
		return res, fmt.Errorf("translation had %d error(s): %w", n, errors.Join(errs...))
	}
	return res, nil
}

// outputPath derives the output filename for an input by swapping its
// extension for the target writer's.
func (t *Translator) outputPath(input string) (string, error) {
	writer := lang.WriterForLanguage(t.target)
	if writer == nil {
		return "", &NoWriterError{Language: t.target}
	}
	ext := filepath.Ext(input)
	return input[:len(input)-len(ext)] + "." + writer.Extension(), nil
}
