// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)

	htmlSanitizer = bluemonday.UGCPolicy()
)

// RenderMarkdown converts a project description to sanitized HTML. Raw HTML in
// the source is never passed through.
func RenderMarkdown(src string) template.HTML {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}

	var b bytes.Buffer
	if err := markdownRenderer.Convert([]byte(src), &b); err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(src) + "</p>")
	}
	return template.HTML(htmlSanitizer.SanitizeBytes(b.Bytes()))
}
