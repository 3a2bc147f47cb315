// Package recast translates source code between scripting languages through a
// language-agnostic intermediate representation.
//
// # Pipeline
//
// A translation is two steps over the shared IR:
//
//  1. Parse: a per-language Reader turns source text into an [ir.Program],
//     resolving operator precedence into explicit expression nesting. Any
//     construct the IR cannot represent fails the parse — there are no
//     partial trees.
//
//  2. Emit: a per-language Writer serializes the Program as idiomatic target
//     source, re-deriving parenthesization from the tree shape with the
//     target language's own precedence table. Emission never fails.
//
// Readers and Writers are resolved at runtime through the registry in the
// lang package, by language name or file extension. Built-in backends
// (TypeScript/JavaScript and Lua) register themselves when this package is
// imported; callers add languages with [lang.RegisterReader] and
// [lang.RegisterWriter].
//
// # Usage
//
// Create a Translator for a target language and feed it source text or
// files:
//
//	t := recast.New("lua")
//	out, err := t.TranslateSource(src, "typescript")
//	err = t.TranslateFile("main.ts", "main.lua")
//	res, err := t.TranslateDir(ctx, "path/to/project")
//
// The source language is explicit or inferred from the input file extension.
// [Translator.TranslateDir] walks a tree and translates every supported file
// concurrently.
//
// # Structural equality
//
// [ir.Equal] compares two programs modulo language-specific surface artifacts
// (const-ness of a binding, dot versus bracket member access), which is the
// relation the round-trip tests in this repository are written against: a
// program parsed from language A, emitted to language B, and re-parsed by B's
// reader is structurally equal to the original.
//
// # Caching
//
// An optional SQLite cache (internal/cache, enabled with [WithCache]) keys
// emitted output by source hash and language pair, so repeated translations
// of unchanged inputs skip parsing entirely.
package recast
