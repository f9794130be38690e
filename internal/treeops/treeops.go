// Package treeops copies, removes and lists whole directory trees inside a
// sandbox.
package treeops

import (
	"errors"
	"os"

	"disc/internal/sandbox"
)

// ErrDestinationInsideSource is returned by CopyTree when the destination
// lies within the tree being copied.
var ErrDestinationInsideSource = errors.New("destination is inside source")

// Tree runs tree operations against one sandbox.
type Tree struct {
	sb *sandbox.Sandbox

	// remove is swapped out by tests to observe removal order.
	remove func(path string) error
}

// New returns a Tree operating inside sb.
func New(sb *sandbox.Sandbox) *Tree {
	return &Tree{sb: sb, remove: os.Remove}
}
