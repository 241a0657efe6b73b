package resolver

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/frederic-klein/rsbundle/internal/fsys"
)

const (
	sourceExt     = ".rs"
	dirModuleFile = "mod.rs"
)

// NotFoundError reports a module declaration with no matching source file
// under any configured search root.
type NotFoundError struct {
	Name     string
	Searched []string // every candidate path tried, in order
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("module %q not found (searched: %s)",
		e.Name, strings.Join(e.Searched, ", "))
}

// Resolver maps module names to source files under an ordered list of search
// roots. For each root it tries `<name>.rs`, then the directory-module form
// `<name>/mod.rs`; the first existing file wins. A module shadowed by an
// earlier root is silently ignored, so precedence is controlled entirely by
// root order.
type Resolver struct {
	fs     fsys.FS
	roots  []string
	logger *log.Logger
}

// New creates a resolver over the given roots. A nil logger disables tracing.
func New(fs fsys.FS, roots []string, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Resolver{fs: fs, roots: roots, logger: logger}
}

// Resolve locates the source file for a module declared in a file whose
// directory, relative to the search roots, is relDir. The entry module uses
// an empty relDir.
func (r *Resolver) Resolve(name, relDir string) (string, error) {
	var searched []string
	for _, root := range r.roots {
		candidates := []string{
			filepath.Join(root, relDir, name+sourceExt),
			filepath.Join(root, relDir, name, dirModuleFile),
		}
		for _, candidate := range candidates {
			r.logger.Debug("trying candidate", "module", name, "path", candidate)
			if r.fs.Exists(candidate) {
				return candidate, nil
			}
			searched = append(searched, candidate)
		}
	}
	return "", &NotFoundError{Name: name, Searched: searched}
}

// IsDirModule reports whether path was resolved through the directory-module
// convention (`<name>/mod.rs`). Such a module resolves its own children
// inside its directory rather than beside itself.
func IsDirModule(path string) bool {
	return filepath.Base(path) == dirModuleFile
}
