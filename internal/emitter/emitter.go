package emitter

import (
	"fmt"
	"io"
	"strings"

	"github.com/frederic-klein/rsbundle/internal/module"
)

// Emitter writes a bundle tree as a single merged source file. Text outside
// declaration spans passes through byte-for-byte; each unresolved
// declaration is replaced by an inline module block holding the recursively
// emitted child, with the declaration's attribute/visibility prefix kept
// verbatim. Already-inline bodies keep their own header and braces and only
// have the declarations inside them rewritten.
type Emitter struct {
	w io.Writer
}

// New creates an emitter over w.
func New(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Emit writes the bundled source for the tree rooted at root. The tree is
// structurally valid by construction; the only failures are writer failures.
func (e *Emitter) Emit(root *module.Node) error {
	return e.emitNode(root)
}

func (e *Emitter) emitNode(n *module.Node) error {
	src := n.Source
	last := 0
	for _, child := range n.Children {
		decl := child.Decl
		if decl.Inline {
			// Header and braces stay in place; the closing brace is part
			// of the next verbatim chunk.
			if _, err := io.WriteString(e.w, src[last:decl.BodyStart]); err != nil {
				return err
			}
			if err := e.emitNode(child.Node); err != nil {
				return err
			}
			last = decl.BodyEnd
			continue
		}
		if _, err := io.WriteString(e.w, src[last:decl.Start]); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(e.w, "%smod %s {\n", decl.Prefix, decl.Name); err != nil {
			return err
		}
		if err := e.emitNode(child.Node); err != nil {
			return err
		}
		if _, err := io.WriteString(e.w, "}"); err != nil {
			return err
		}
		last = decl.End
	}
	_, err := io.WriteString(e.w, src[last:])
	return err
}

// EmitString bundles the tree into a string.
func EmitString(root *module.Node) string {
	var sb strings.Builder
	// strings.Builder writes cannot fail.
	_ = New(&sb).Emit(root)
	return sb.String()
}
