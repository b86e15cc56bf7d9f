package errors

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation", err: ValidationError("bad flag").Build(), expected: 2},
		{name: "not found", err: NotFoundError("no such slug").Build(), expected: 3},
		{name: "auth", err: AuthError("bad token").Build(), expected: 5},
		{name: "config", err: ConfigError("no repo").Build(), expected: 7},
		{name: "source", err: SourceError("listing failed").Build(), expected: 8},
		{name: "markdown", err: MarkdownError("parse failed").Build(), expected: 11},
		{name: "unclassified", err: stderrors.New("boom"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_Handle(t *testing.T) {
	var out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	adapter.out = &out

	code := adapter.Handle(ConfigError("github.repo is required").WithContext("path", "config.yaml").Build())

	assert.Equal(t, 7, code)
	assert.Equal(t, "Error: github.repo is required (config.yaml)\n", out.String())
}
