package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frederic-klein/rsbundle/internal/fsys"
	"github.com/frederic-klein/rsbundle/internal/resolver"
)

func newLoader(files fsys.MapFS) *Loader {
	res := resolver.New(files, []string{"src"}, nil)
	return New(files, res, nil)
}

func TestLoadSingleChild(t *testing.T) {
	files := fsys.MapFS{
		"src/main.rs":   "mod common;\npub fn main(){ reusable_function(); }\n",
		"src/common.rs": "pub enum MyType { A, B }\n",
	}
	ld := newLoader(files)

	tree, err := ld.Load("main")
	require.NoError(t, err)

	assert.Equal(t, "main", tree.Name)
	assert.Equal(t, "src/main.rs", tree.Path)
	require.Len(t, tree.Children, 1)

	child := tree.Children[0]
	assert.Equal(t, "common", child.Node.Name)
	assert.Equal(t, "src/common.rs", child.Node.Path)
	assert.Equal(t, files["src/common.rs"], child.Node.Source)
	assert.False(t, child.Decl.Inline)
	assert.Equal(t, 2, tree.Count())
}

func TestLoadChainAndOrder(t *testing.T) {
	files := fsys.MapFS{
		"src/main.rs": "mod b;\nfn f() {}\nmod a;\n",
		"src/a.rs":    "pub fn a() {}\n",
		"src/b.rs":    "mod leaf;\n",
		"src/leaf.rs": "pub fn leaf() {}\n",
	}
	ld := newLoader(files)

	tree, err := ld.Load("main")
	require.NoError(t, err)
	require.Len(t, tree.Children, 2)

	// Children keep declaration order, not alphabetical order.
	assert.Equal(t, "b", tree.Children[0].Node.Name)
	assert.Equal(t, "a", tree.Children[1].Node.Name)

	b := tree.Children[0].Node
	require.Len(t, b.Children, 1)
	assert.Equal(t, "src/leaf.rs", b.Children[0].Node.Path)
}

func TestLoadDirectoryModule(t *testing.T) {
	files := fsys.MapFS{
		"src/main.rs":       "mod game;\n",
		"src/game/mod.rs":   "mod round;\n",
		"src/game/round.rs": "pub struct Round;\n",
	}
	ld := newLoader(files)

	tree, err := ld.Load("main")
	require.NoError(t, err)

	game := tree.Children[0].Node
	assert.Equal(t, "src/game/mod.rs", game.Path)
	require.Len(t, game.Children, 1)
	assert.Equal(t, "src/game/round.rs", game.Children[0].Node.Path)
}

func TestLoadInlineBodyResolvesByNameSegment(t *testing.T) {
	files := fsys.MapFS{
		"src/main.rs":        "mod outer { mod inner; }\n",
		"src/outer/inner.rs": "pub fn inner() {}\n",
	}
	ld := newLoader(files)

	tree, err := ld.Load("main")
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)

	outer := tree.Children[0]
	assert.True(t, outer.Decl.Inline)
	assert.Empty(t, outer.Node.Path)
	require.Len(t, outer.Node.Children, 1)
	assert.Equal(t, "src/outer/inner.rs", outer.Node.Children[0].Node.Path)
}

func TestLoadDiamondDuplicates(t *testing.T) {
	files := fsys.MapFS{
		"src/main.rs": "mod b;\nmod c;\n",
		"src/b.rs":    "mod d;\n",
		"src/c.rs":    "mod d;\n",
		"src/d.rs":    "pub fn shared() {}\n",
	}
	ld := newLoader(files)

	tree, err := ld.Load("main")
	require.NoError(t, err)
	require.Len(t, tree.Children, 2)

	dViaB := tree.Children[0].Node.Children[0].Node
	dViaC := tree.Children[1].Node.Children[0].Node
	assert.Equal(t, "src/d.rs", dViaB.Path)
	assert.Equal(t, "src/d.rs", dViaC.Path)
	assert.NotSame(t, dViaB, dViaC)
}

func TestLoadCycle(t *testing.T) {
	files := fsys.MapFS{
		"src/a.rs": "mod b;\n",
		"src/b.rs": "mod a;\n",
	}
	ld := newLoader(files)

	_, err := ld.Load("a")
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []string{"src/a.rs", "src/b.rs", "src/a.rs"}, cycleErr.Chain)
}

func TestLoadSelfCycle(t *testing.T) {
	files := fsys.MapFS{
		"src/a.rs": "mod a;\n",
	}
	ld := newLoader(files)

	_, err := ld.Load("a")
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []string{"src/a.rs", "src/a.rs"}, cycleErr.Chain)
}

func TestLoadMissingModule(t *testing.T) {
	files := fsys.MapFS{
		"src/main.rs": "mod nowhere;\n",
	}
	ld := newLoader(files)

	_, err := ld.Load("main")
	var notFound *resolver.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nowhere", notFound.Name)
	assert.Equal(t, []string{"src/nowhere.rs", "src/nowhere/mod.rs"}, notFound.Searched)
}

func TestLoadScanFailureNamesFile(t *testing.T) {
	files := fsys.MapFS{
		"src/main.rs":   "mod broken;\n",
		"src/broken.rs": "fn f() {} /* unterminated",
	}
	ld := newLoader(files)

	_, err := ld.Load("main")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "src/broken.rs")
}

func TestLoadMissingEntry(t *testing.T) {
	ld := newLoader(fsys.MapFS{})

	_, err := ld.Load("main")
	var notFound *resolver.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "main", notFound.Name)
}
