package eventstore

// Sentinel errors for pass history operations. They classify store failures
// so the CLI can map them to an exit code.

import (
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

var (
	// ErrDatabaseOpenFailed indicates the SQLite database could not be opened.
	ErrDatabaseOpenFailed = errors.EventStoreError("could not open pass history database").Build()

	// ErrInitializeSchemaFailed indicates the database schema could not be initialized.
	ErrInitializeSchemaFailed = errors.EventStoreError("failed to initialize pass history schema").Build()

	// ErrPassAppendFailed indicates recording a pass failed.
	ErrPassAppendFailed = errors.EventStoreError("failed to append pass record").Build()

	// ErrPassQueryFailed indicates querying pass records failed.
	ErrPassQueryFailed = errors.EventStoreError("failed to query pass records").Build()
)
