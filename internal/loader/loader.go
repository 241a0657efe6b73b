package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/frederic-klein/rsbundle/internal/fsys"
	"github.com/frederic-klein/rsbundle/internal/module"
	"github.com/frederic-klein/rsbundle/internal/resolver"
	"github.com/frederic-klein/rsbundle/internal/scanner"
)

// CycleError reports a module file that declares itself, directly or through
// a chain of declarations. Chain holds the file paths from the first
// occurrence down to the repeat.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic module reference: %s", strings.Join(e.Chain, " -> "))
}

// Loader builds the bundle tree for an entry module. It drives the scanner
// over each loaded file, resolves every unresolved declaration to a source
// file, and recurses depth-first. A path stack of the ancestors currently
// being loaded catches cycles; loading the same file again on a non-ancestor
// path (a diamond reference) is allowed and yields an independent copy,
// since inlining is positional.
type Loader struct {
	fs       fsys.FS
	resolver *resolver.Resolver
	logger   *log.Logger
	stack    []string
}

// New creates a loader. A nil logger disables tracing.
func New(fs fsys.FS, res *resolver.Resolver, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Loader{fs: fs, resolver: res, logger: logger}
}

// Load resolves the entry module against the search roots and builds the
// whole tree beneath it. The returned root node owns every descendant.
func (l *Loader) Load(entry string) (*module.Node, error) {
	path, err := l.resolver.Resolve(entry, "")
	if err != nil {
		return nil, err
	}
	return l.loadFile(entry, path, childBase("", entry, path))
}

// childBase returns the directory, relative to the search roots, in which a
// module's own declarations resolve. A `name.rs` module shares its declaring
// directory; a `name/mod.rs` module owns its directory.
func childBase(relDir, name, path string) string {
	if resolver.IsDirModule(path) {
		return filepath.Join(relDir, name)
	}
	return relDir
}

func (l *Loader) loadFile(name, path, relDir string) (*module.Node, error) {
	for i, ancestor := range l.stack {
		if ancestor == path {
			chain := append(append([]string{}, l.stack[i:]...), path)
			return nil, &CycleError{Chain: chain}
		}
	}
	src, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading module %s: %w", name, err)
	}
	l.logger.Debug("loaded module", "module", name, "path", path)

	node := &module.Node{Name: name, Path: path, RelDir: relDir, Source: src}
	l.stack = append(l.stack, path)
	err = l.attachChildren(node)
	l.stack = l.stack[:len(l.stack)-1]
	if err != nil {
		return nil, err
	}
	return node, nil
}

// attachChildren scans the node's source and builds a child for every
// top-level declaration. Unresolved declarations load a file; inline bodies
// are re-scanned in place, with their resolution directory extended by the
// module name.
func (l *Loader) attachChildren(node *module.Node) error {
	decls, err := scanner.ScanAll(node.Source)
	if err != nil {
		if node.Path != "" {
			return fmt.Errorf("scanning %s: %w", node.Path, err)
		}
		return fmt.Errorf("scanning inline module %s: %w", node.Name, err)
	}
	for _, decl := range decls {
		var child *module.Node
		if decl.Inline {
			child, err = l.loadInline(node, decl)
		} else {
			var path string
			path, err = l.resolver.Resolve(decl.Name, node.RelDir)
			if err != nil {
				return err
			}
			child, err = l.loadFile(decl.Name, path, childBase(node.RelDir, decl.Name, path))
		}
		if err != nil {
			return err
		}
		node.Children = append(node.Children, module.Child{Decl: decl, Node: child})
	}
	return nil
}

// loadInline builds a node for an already-inline module body. No file is
// read; the body text becomes the node's source, and any unresolved
// declarations inside it resolve under the enclosing directory plus the
// module's own name segment.
func (l *Loader) loadInline(parent *module.Node, decl module.Declaration) (*module.Node, error) {
	node := &module.Node{
		Name:   decl.Name,
		RelDir: filepath.Join(parent.RelDir, decl.Name),
		Source: parent.Source[decl.BodyStart:decl.BodyEnd],
	}
	if err := l.attachChildren(node); err != nil {
		return nil, err
	}
	return node, nil
}
