// Package handlers contains HTTP handlers for the docsite HTTP API.
//
// This package provides handlers for:
//   - Document listing, lookup, sidebar, search and metadata queries
//   - Cache revalidation
//   - Health, pass history and stylesheet endpoints
//   - Shared response helper functions
//
// Errors are reported through the foundation/errors HTTP adapter and
// responses use the types in server/responses.
package handlers
