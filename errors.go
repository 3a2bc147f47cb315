package recast

import "fmt"

// UnknownLanguageError reports that no source language was given and none
// could be inferred from the input's file extension.
type UnknownLanguageError struct {
	Path string
}

func (e *UnknownLanguageError) Error() string {
	if e.Path == "" {
		return "cannot infer source language: no input filename"
	}
	return fmt.Sprintf("cannot infer source language from %q", e.Path)
}

// NoReaderError reports that no reader is registered for a language.
type NoReaderError struct {
	Language string
}

func (e *NoReaderError) Error() string {
	return fmt.Sprintf("no reader registered for language %q", e.Language)
}

// NoWriterError reports that no writer is registered for a language.
type NoWriterError struct {
	Language string
}

func (e *NoWriterError) Error() string {
	return fmt.Sprintf("no writer registered for language %q", e.Language)
}
