package docs

import (
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// PlainText renders markdown to a single line of plain text: markup is
// dropped, and block boundaries and line breaks become single spaces.
func PlainText(markdown string) string {
	source := []byte(markdown)
	root := goldmark.New().Parser().Parse(text.NewReader(source))

	var b strings.Builder
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			if n.Type() == gmast.TypeBlock {
				b.WriteByte(' ')
			}
			return gmast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *gmast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(node.Value)
		case *gmast.AutoLink:
			b.Write(node.URL(source))
		case *gmast.FencedCodeBlock, *gmast.CodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(source))
				b.WriteByte(' ')
			}
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(b.String()), " ")
}
