// Package errors provides classified error primitives used across docsite.
//
// A ClassifiedError carries a category (config, source, markdown, snapshot,
// cache, ...), a severity and a retry hint, plus structured context. The
// indexing pipeline uses the category to decide whether a failure is
// recoverable per document, recoverable per subsystem, or fatal at startup.
//
// Example usage:
//
//	err := errors.SourceError("fetch raw content failed").
//		WithContext("path", path).
//		WithCause(originalErr).
//		Build()
package errors
