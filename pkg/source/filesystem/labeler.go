package filesystem

import (
	"fmt"
	"os"

	"github.com/matzehuels/treemap/pkg/tree"
)

// Labeler formats filesystem paths and descriptions.
type Labeler struct{}

// Separator returns the OS path separator.
func (Labeler) Separator() string { return string(os.PathSeparator) }

// Suffix returns " (file, <size>)" for files, " (folder, <N> items, <size>)"
// for folders and " (folder, <size>)" for folders cut off at the scan depth.
func (Labeler) Suffix(n *tree.Node) string {
	if n.IsLeaf() {
		if n.Truncated() {
			return fmt.Sprintf(" (folder, %s)", tree.FormatSize(n.Size()))
		}
		return fmt.Sprintf(" (file, %s)", tree.FormatSize(n.Size()))
	}
	return fmt.Sprintf(" (folder, %d items, %s)", n.NumChildren(), tree.FormatSize(n.Size()))
}
