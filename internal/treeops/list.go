package treeops

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"disc/internal/sandbox"
)

// ListTree returns the display paths of the entries below dir whose names
// match pattern. An empty pattern matches everything.
//
// Without recursive only direct children are considered. With recursive the
// pattern is applied again inside every subdirectory, level by level, and
// the results are concatenated in the order the directories were visited.
// Symlinked directories are not descended into.
func (t *Tree) ListTree(dir sandbox.ResolvedPath, pattern string, recursive bool) ([]string, error) {
	if err := t.sb.ExistsRequired(dir, sandbox.KindDirectory); err != nil {
		return nil, err
	}
	if pattern == "" {
		pattern = "*"
	}
	display := t.sb.Display(dir)
	if !doublestar.ValidatePattern(pattern) {
		return nil, sandbox.Wrap("list", display, sandbox.ErrInvalidName, doublestar.ErrBadPattern)
	}

	root, err := os.OpenRoot(dir.Abs)
	if err != nil {
		return nil, sandbox.Wrap("list", display, nil, err)
	}
	defer root.Close()
	fsys := root.FS()

	var results []string
	queue := []string{"."}
	for len(queue) > 0 {
		rel := queue[0]
		queue = queue[1:]

		level, err := fs.Sub(fsys, rel)
		if err != nil {
			return nil, sandbox.Wrap("list", display, nil, err)
		}
		matches, err := doublestar.Glob(level, pattern)
		if err != nil {
			return nil, sandbox.Wrap("list", display, sandbox.ErrInvalidName, err)
		}
		for _, m := range matches {
			abs := filepath.Join(dir.Abs, filepath.FromSlash(path.Join(rel, m)))
			results = append(results, t.sb.StripRootPath(abs, true))
		}

		if !recursive {
			break
		}
		entries, err := fs.ReadDir(fsys, rel)
		if err != nil {
			// Unreadable subdirectories are skipped like the entries glob
			// could not see.
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				queue = append(queue, path.Join(rel, e.Name()))
			}
		}
	}
	return results, nil
}
