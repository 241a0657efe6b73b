package module

// Declaration is a single top-level module declaration found by the scanner.
// Byte offsets are relative to the buffer the declaration was scanned from.
type Declaration struct {
	Name   string // declared module name, e.g. "game"
	Prefix string // raw leading text: attributes, visibility qualifier, trailing whitespace
	Start  int    // offset of the statement start (prefix included)
	End    int    // offset just past the statement

	Inline    bool // declaration carries an inline `{ ... }` body instead of a `;`
	BodyStart int  // offset just past the opening brace (Inline only)
	BodyEnd   int  // offset of the closing brace (Inline only)
}

// Node is one module in the bundle tree. The entry file is the root node;
// every resolved `mod name;` and every inline module body becomes a child.
// A node exclusively owns its children and is never mutated after loading.
type Node struct {
	Name     string // module name; for the root, the entry module name
	Path     string // resolved source file path; empty for inline module bodies
	RelDir   string // directory, relative to the search roots, where child declarations resolve
	Source   string // raw source text; child declaration spans index into it
	Children []Child
}

// Child pairs a declaration with the node loaded for it. Children appear in
// the order their declarations appear in the parent's source.
type Child struct {
	Decl Declaration
	Node *Node
}

// Count returns the number of file-backed modules in the tree rooted at n,
// the root included. Inline module bodies are not counted.
func (n *Node) Count() int {
	total := 0
	if n.Path != "" {
		total = 1
	}
	for _, c := range n.Children {
		total += c.Node.Count()
	}
	return total
}
