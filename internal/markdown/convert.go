// Package markdown converts extracted documentation HTML into Markdown
// files: conversion with a front-matter header, filename sanitization,
// and URL-based categorization.
package markdown

import (
	"fmt"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// Converter turns content HTML into a Markdown document with front
// matter recording the title, source URL and download time.
type Converter struct {
	conv *md.Converter
}

// NewConverter creates a converter.
func NewConverter() *Converter {
	return &Converter{
		conv: md.NewConverter("", true, nil),
	}
}

// Convert renders html to Markdown and prepends the front-matter header.
func (c *Converter) Convert(html, title, sourceURL string, downloaded time.Time) (string, error) {
	body, err := c.conv.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}

	return fmt.Sprintf(`---
title: %s
source: %s
downloaded: %s
---

%s
`, title, sourceURL, downloaded.Format("2006-01-02 15:04:05"), body), nil
}
