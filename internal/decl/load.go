package decl

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	surferrors "surfex/internal/errors"
)

// Load reads a serialized declaration tree and checks its minimal structure.
// The engine assumes a structurally valid tree beyond these checks; deeper
// problems are the front-end's responsibility.
func Load(r io.Reader) (*Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, surferrors.New(surferrors.DeclInputInvalid, "failed to read declaration tree", err)
	}

	var root Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, surferrors.New(surferrors.DeclInputInvalid, "failed to parse declaration tree", err)
	}

	if root.Kind != KindPackage {
		return nil, surferrors.New(surferrors.DeclInputInvalid,
			fmt.Sprintf("declaration tree root must be a package, got %q", root.Kind), nil)
	}
	if root.Name == "" {
		return nil, surferrors.New(surferrors.DeclInputInvalid, "declaration tree root has no package name", nil)
	}

	normalizeTags(&root)
	return &root, nil
}

// LoadFile reads a serialized declaration tree from path.
func LoadFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, surferrors.New(surferrors.DeclInputInvalid,
			fmt.Sprintf("cannot open declaration tree %q", path), err)
	}
	defer func() { _ = f.Close() }()

	return Load(f)
}

// normalizeTags folds the front-end's explicit "none" spelling into TagNone so
// the stability filter only deals with one spelling.
func normalizeTags(n *Node) {
	if n.ReleaseTag == "none" {
		n.ReleaseTag = TagNone
	}
	for _, m := range n.Members {
		normalizeTags(m)
	}
	for _, p := range n.Parameters {
		normalizeTags(p)
	}
}
