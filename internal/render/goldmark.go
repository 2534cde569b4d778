package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	gutil "github.com/yuin/goldmark/util"
)

// RenderMarkdownGoldmark renders md as GitHub-flavoured markdown.
func RenderMarkdownGoldmark(md []byte, highlightTheme string) ([]byte, error) {
	engine := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.DefinitionList,
		),
		goldmark.WithParserOptions(
			gparser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			renderer.WithNodeRenderers(
				gutil.Prioritized(&codeBlockRenderer{theme: highlightTheme}, 100),
			),
		),
	)

	var buf bytes.Buffer
	if err := engine.Convert(md, &buf); err != nil {
		return nil, fmt.Errorf("markdown parse: %w", err)
	}
	return buf.Bytes(), nil
}

// codeBlockRenderer replaces goldmark's fenced code output with chroma.
type codeBlockRenderer struct {
	theme string
}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(gast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w gutil.BufWriter, source []byte, node gast.Node, entering bool) (gast.WalkStatus, error) {
	if !entering {
		return gast.WalkContinue, nil
	}

	n := node.(*gast.FencedCodeBlock)
	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	fmt.Fprintf(w, "<div class=\"highlight\">%s</div>", HighlightCode(code.String(), string(n.Language(source)), r.theme))
	return gast.WalkSkipChildren, nil
}
