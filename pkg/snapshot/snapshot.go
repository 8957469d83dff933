// Package snapshot serializes trees so they can be cached, stored and
// served. A snapshot keeps everything a tree needs to come back exactly as
// it was: names, leaf sizes, colours, expansion and truncation flags. Rectangles are not
// kept; callers lay the restored tree out again.
package snapshot

import (
	"time"

	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/source/filesystem"
	"github.com/matzehuels/treemap/pkg/tree"
)

// Version is the current snapshot format version.
const Version = 1

// Snapshot is a serialized tree plus where it came from.
type Snapshot struct {
	Version  int       `json:"version" bson:"version"`
	Kind     string    `json:"kind,omitempty" bson:"kind,omitempty"`         // Source kind ("fs", "manifest")
	Location string    `json:"location,omitempty" bson:"location,omitempty"` // Source path
	Created  time.Time `json:"created" bson:"created"`
	Root     Node      `json:"root" bson:"root"`
}

// Node is one serialized tree node.
type Node struct {
	Name     string `json:"name" bson:"name"`
	Size     int64  `json:"size" bson:"size"`
	Colour   string `json:"colour" bson:"colour"`
	Expanded bool   `json:"expanded,omitempty" bson:"expanded,omitempty"`
	// Truncated leaves summarise a subtree that was not scanned.
	Truncated bool   `json:"truncated,omitempty" bson:"truncated,omitempty"`
	Children  []Node `json:"children,omitempty" bson:"children,omitempty"`
}

// New captures root. Kind and location describe the source and pick the
// labeler on restore.
func New(root *tree.Node, kind, location string) *Snapshot {
	return &Snapshot{
		Version:  Version,
		Kind:     kind,
		Location: location,
		Created:  time.Now().UTC(),
		Root:     fromTree(root),
	}
}

func fromTree(n *tree.Node) Node {
	if n.IsEmpty() {
		return Node{}
	}
	out := Node{
		Name:      n.Name(),
		Size:      n.Size(),
		Colour:    n.Colour().Hex(),
		Expanded:  n.Expanded(),
		Truncated: n.Truncated(),
	}
	if kids := n.Children(); len(kids) > 0 {
		out.Children = make([]Node, len(kids))
		for i, c := range kids {
			out.Children[i] = fromTree(c)
		}
	}
	return out
}

// Tree rebuilds the tree and checks its invariants.
func (s *Snapshot) Tree() (*tree.Node, error) {
	if s.Version != Version {
		return nil, errs.New(errs.ErrCodeUnsupported, "snapshot version %d (want %d)", s.Version, Version)
	}
	if s.Root.Name == "" && len(s.Root.Children) == 0 {
		return tree.Empty(), nil
	}
	root, err := s.Root.build()
	if err != nil {
		return nil, err
	}
	if err := root.Validate(); err != nil {
		return nil, err
	}
	return root, nil
}

func (n *Node) build() (*tree.Node, error) {
	col, err := tree.ParseColour(n.Colour)
	if err != nil {
		return nil, err
	}
	opts := []tree.Option{tree.WithColour(col), tree.WithExpanded(n.Expanded), tree.WithTruncated(n.Truncated)}

	if len(n.Children) == 0 {
		return tree.NewLeaf(n.Name, n.Size, opts...)
	}
	children := make([]*tree.Node, len(n.Children))
	for i := range n.Children {
		c, err := n.Children[i].build()
		if err != nil {
			return nil, err
		}
		children[i] = c
	}
	return tree.NewInternal(n.Name, children, opts...)
}

// Labeler returns the label rules matching the snapshot's source kind.
func (s *Snapshot) Labeler() tree.Labeler {
	if s.Kind == "fs" {
		return filesystem.Labeler{}
	}
	return tree.PlainLabeler{}
}
