package config

import "regexp"

const (
	RendererMmark    = "mmark"
	RendererClassic  = "classic"
	RendererGoldmark = "goldmark"
)

var MarkdownRenderers = []string{RendererMmark, RendererClassic, RendererGoldmark}

var (
	RegexCallout = regexp.MustCompile(`//\s*&lt;&lt;(\d+)&gt;&gt;`)
)
