package lang

import (
	"strings"
	"sync"
)

// The registry is seeded lazily: built-in backends hand over a factory during
// package init, and the first lookup instantiates them all under initOnce.
// After that the tables only grow through Register* calls and every read
// takes the read lock, so post-init lookups never block each other.
var (
	builtinMu      sync.Mutex
	builtinReaders []func() Reader
	builtinWriters []func() Writer

	initOnce sync.Once

	mu      sync.RWMutex
	readers []Reader
	writers []Writer
)

// RegisterBuiltinReader records a factory for a compiled-in reader. Called
// from the init function of a language backend package; the factory runs at
// most once, when the registry is first consulted.
func RegisterBuiltinReader(f func() Reader) {
	builtinMu.Lock()
	defer builtinMu.Unlock()
	builtinReaders = append(builtinReaders, f)
}

// RegisterBuiltinWriter records a factory for a compiled-in writer.
func RegisterBuiltinWriter(f func() Writer) {
	builtinMu.Lock()
	defer builtinMu.Unlock()
	builtinWriters = append(builtinWriters, f)
}

// ensureInit moves the registry from uninitialized to ready exactly once.
// Concurrent first lookups block here until the built-ins are fully
// installed; a partially seeded table is never observable.
func ensureInit() {
	initOnce.Do(func() {
		builtinMu.Lock()
		rf := builtinReaders
		wf := builtinWriters
		builtinMu.Unlock()

		mu.Lock()
		defer mu.Unlock()
		for _, f := range rf {
			readers = append(readers, f())
		}
		for _, f := range wf {
			writers = append(writers, f())
		}
	})
}

// RegisterReader appends a caller-supplied reader to the searchable
// collection. Registration before the first lookup places the reader ahead
// of the built-ins; duplicate language names are not rejected, the
// first-registered implementation wins on lookup.
func RegisterReader(r Reader) {
	mu.Lock()
	defer mu.Unlock()
	readers = append(readers, r)
}

// RegisterWriter appends a caller-supplied writer to the searchable
// collection.
func RegisterWriter(w Writer) {
	mu.Lock()
	defer mu.Unlock()
	writers = append(writers, w)
}

// ReaderForLanguage returns the first registered reader for the canonical
// language name, or nil if none is registered.
func ReaderForLanguage(name string) Reader {
	ensureInit()
	mu.RLock()
	defer mu.RUnlock()
	for _, r := range readers {
		if r.Language() == name {
			return r
		}
	}
	return nil
}

// ReaderForExtension returns the first registered reader claiming the file
// extension (with or without a leading dot), or nil.
func ReaderForExtension(ext string) Reader {
	ext = strings.TrimPrefix(ext, ".")
	ensureInit()
	mu.RLock()
	defer mu.RUnlock()
	for _, r := range readers {
		for _, e := range r.Extensions() {
			if e == ext {
				return r
			}
		}
	}
	return nil
}

// WriterForLanguage returns the first registered writer for the canonical
// language name, or nil.
func WriterForLanguage(name string) Writer {
	ensureInit()
	mu.RLock()
	defer mu.RUnlock()
	for _, w := range writers {
		if w.Language() == name {
			return w
		}
	}
	return nil
}

// Readers returns a snapshot of all registered readers in lookup order.
func Readers() []Reader {
	ensureInit()
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Reader, len(readers))
	copy(out, readers)
	return out
}

// Writers returns a snapshot of all registered writers in lookup order.
func Writers() []Writer {
	ensureInit()
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Writer, len(writers))
	copy(out, writers)
	return out
}
