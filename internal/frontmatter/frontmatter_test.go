package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\nkey: value\n---\n# Title\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("key: value\n"), fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	input := []byte("---\nkey: value\n# Title\n")

	_, _, had, err := Split(input)
	require.Error(t, err)
	require.False(t, had)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestSplit_CRLF_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\r\nkey: value\r\n---\r\n# Title\r\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("key: value\r\n"), fm)
	require.Equal(t, []byte("# Title\r\n"), body)
}

func TestSplit_EmptyFrontmatterBlock_SplitsAsHadWithEmptyFrontmatter(t *testing.T) {
	input := []byte("---\n---\n# Title\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_ClosingDelimiterAtEOF(t *testing.T) {
	fm, body, had, err := Split([]byte("\xEF\xBB\xBF---\ntitle: Only\n---"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Only\n"), fm)
	require.Empty(t, body)
}

func TestParse_DecodesKnownFields(t *testing.T) {
	input := []byte(`---
title: "  Getting Started  "
description: First steps
date: 2024-03-01
category: guide
tags: [setup, basics]
author: Docs Team
sidebar_position: 2
sidebar_label: Start
unknown_field: ignored
---
# Getting Started
`)

	doc, err := Parse(input)
	meta, body := doc.Metadata, doc.Body
	require.NoError(t, err)
	require.Equal(t, "Getting Started", meta.Title)
	require.Equal(t, "First steps", meta.Description)
	require.Equal(t, "2024-03-01", meta.Date)
	require.Equal(t, "guide", meta.Category)
	require.Equal(t, []string{"setup", "basics"}, meta.Tags)
	require.Equal(t, "Docs Team", meta.Author)
	require.NotNil(t, meta.SidebarPosition)
	require.Equal(t, 2, *meta.SidebarPosition)
	require.Equal(t, "Start", meta.SidebarLabel)
	require.Equal(t, "# Getting Started\n", string(body))
}

func TestParse_ScalarTagsAndStringPosition(t *testing.T) {
	doc, err := Parse([]byte("---\ntags: single\nsidebar_position: \"0\"\n---\nbody\n"))
	require.NoError(t, err)
	meta := doc.Metadata
	require.Equal(t, []string{"single"}, meta.Tags)
	require.NotNil(t, meta.SidebarPosition)
	require.Equal(t, 0, *meta.SidebarPosition)

	doc, err = Parse([]byte("---\ntags: go, cli ,, docs\n---\nbody\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"go", "cli", "docs"}, doc.Metadata.Tags)
}

func TestParse_NoFrontmatter(t *testing.T) {
	doc, err := Parse([]byte("# Plain\n"))
	meta, body := doc.Metadata, doc.Body
	require.NoError(t, err)
	require.Empty(t, meta.Title)
	require.Nil(t, meta.SidebarPosition)
	require.Equal(t, "# Plain\n", string(body))
}

func TestParse_InvalidYAML_ReturnsError(t *testing.T) {
	_, err := Parse([]byte("---\n: not yaml\n---\nbody\n"))
	require.Error(t, err)
}

func TestParse_NonNumericPosition_ReturnsError(t *testing.T) {
	_, err := Parse([]byte("---\nsidebar_position: first\n---\nbody\n"))
	require.Error(t, err)
}
