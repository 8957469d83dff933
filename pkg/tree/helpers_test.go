package tree

import (
	"math/rand/v2"
	"strconv"
	"testing"
)

var testColours = NewSeededColours(7)

func leaf(t *testing.T, name string, size int64) *Node {
	t.Helper()
	n, err := NewLeaf(name, size, WithColours(testColours))
	if err != nil {
		t.Fatalf("NewLeaf(%q, %d): %v", name, size, err)
	}
	return n
}

func dir(t *testing.T, name string, children ...*Node) *Node {
	t.Helper()
	n, err := NewInternal(name, children, WithColours(testColours))
	if err != nil {
		t.Fatalf("NewInternal(%q): %v", name, err)
	}
	return n
}

// sampleTree builds:
//
//	root
//	├── a
//	│   ├── a1 (10)
//	│   └── a2 (30)
//	├── b (40)
//	└── c
//	    └── c1 (20)
func sampleTree(t *testing.T) *Node {
	t.Helper()
	return dir(t, "root",
		dir(t, "a", leaf(t, "a1", 10), leaf(t, "a2", 30)),
		leaf(t, "b", 40),
		dir(t, "c", leaf(t, "c1", 20)),
	)
}

// randomTree builds a tree of the given depth with random fan-out and leaf
// sizes, some of them zero.
func randomTree(t *testing.T, rng *rand.Rand, name string, depth int) *Node {
	t.Helper()
	if depth == 0 || rng.IntN(4) == 0 {
		size := int64(rng.IntN(60))
		if rng.IntN(5) == 0 {
			size = 0
		}
		return leaf(t, name, size)
	}
	kids := make([]*Node, 1+rng.IntN(5))
	for i := range kids {
		kids[i] = randomTree(t, rng, name+"/"+strconv.Itoa(i), depth-1)
	}
	return dir(t, name, kids...)
}

func mustValidate(t *testing.T, n *Node) {
	t.Helper()
	if err := n.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func names(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name()
	}
	return out
}
