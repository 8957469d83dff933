package tree_test

import (
	"fmt"

	"github.com/matzehuels/treemap/pkg/tree"
)

func ExampleNode_UpdateRectangles() {
	colours := tree.WithColours(tree.NewSeededColours(1))
	docs, _ := tree.NewLeaf("docs", 30, colours)
	media, _ := tree.NewLeaf("media", 70, colours)
	root, _ := tree.NewInternal("home", []*tree.Node{docs, media}, colours)

	root.Expand()
	root.UpdateRectangles(tree.Rect{W: 100, H: 50})

	for _, t := range root.Rectangles() {
		fmt.Println(t.Node.Name(), t.Rect)
	}
	// Output:
	// docs (0,0 30x50)
	// media (30,0 70x50)
}

func ExampleNode_TreeAtPosition() {
	colours := tree.WithColours(tree.NewSeededColours(1))
	a, _ := tree.NewLeaf("a", 1, colours)
	b, _ := tree.NewLeaf("b", 1, colours)
	root, _ := tree.NewInternal("root", []*tree.Node{a, b}, colours)

	root.Expand()
	root.UpdateRectangles(tree.Rect{W: 100, H: 100})

	fmt.Println(root.TreeAtPosition(tree.Point{X: 10, Y: 80}).Name())
	fmt.Println(root.TreeAtPosition(tree.Point{X: 10, Y: 50}).Name())
	fmt.Println(root.TreeAtPosition(tree.Point{X: 101, Y: 50}) == nil)
	// Output:
	// b
	// a
	// true
}

func ExampleFormatSize() {
	fmt.Println(tree.FormatSize(512))
	fmt.Println(tree.FormatSize(3 << 20))
	// Output:
	// 512.00B
	// 3.00MB
}
