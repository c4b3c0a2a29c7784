package apischema

import (
	"context"
	"fmt"
	"sort"

	goskema "github.com/reoring/goskema"
	js "github.com/reoring/goskema/jsonschema"
)

// Validator validates canonical report documents against the versioned
// per-kind schemas. Build one per engine instance; construction compiles the
// full schema set once.
type Validator struct {
	kinds map[string]goskema.Schema[map[string]any]
}

// New compiles the schema set for the current Version.
func New() *Validator {
	return &Validator{kinds: buildKindSchemas()}
}

// KnownKinds returns the published kind discriminator vocabulary, sorted.
func (v *Validator) KnownKinds() []string {
	kinds := make([]string, 0, len(v.kinds))
	for k := range v.kinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// ValidateDocument checks the whole assembled document, recursing through the
// fixed container keys. It returns goskema.Issues carrying JSON-Pointer paths
// rooted at the document.
func (v *Validator) ValidateDocument(ctx context.Context, doc map[string]any) error {
	if kind, _ := doc["kind"].(string); kind != KindPackage {
		return goskema.Issues{goskema.Issue{
			Path:    "/kind",
			Code:    goskema.CodeInvalidEnum,
			Message: fmt.Sprintf("document root must have kind %q, got %q", KindPackage, kind),
		}}
	}

	iss := v.validateNode(ctx, "", doc)
	if len(iss) > 0 {
		return iss
	}
	return nil
}

func (v *Validator) validateNode(ctx context.Context, path string, node map[string]any) goskema.Issues {
	var iss goskema.Issues

	kind, _ := node["kind"].(string)
	schema, ok := v.kinds[kind]
	if !ok {
		return goskema.Issues{goskema.Issue{
			Path:    path + "/kind",
			Code:    goskema.CodeInvalidEnum,
			Message: fmt.Sprintf("unknown kind discriminator %q", kind),
		}}
	}

	if _, err := schema.Parse(ctx, node); err != nil {
		if parsed, ok := goskema.AsIssues(err); ok {
			iss = goskema.AppendIssues(iss, prefixIssues(path, parsed)...)
		} else {
			iss = goskema.AppendIssues(iss, goskema.Issue{
				Path:    path,
				Code:    goskema.CodeParseError,
				Message: err.Error(),
				Cause:   err,
			})
		}
	}

	containerKey, hasContainer := containerKeys[kind]
	if !hasContainer {
		return iss
	}

	container, ok := node[containerKey].(map[string]any)
	if !ok {
		// Missing or mistyped container was already reported by Parse.
		return iss
	}

	names := make([]string, 0, len(container))
	for name := range container {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		childPath := path + "/" + containerKey + "/" + name
		child, ok := container[name].(map[string]any)
		if !ok {
			iss = goskema.AppendIssues(iss, goskema.Issue{
				Path:    childPath,
				Code:    goskema.CodeInvalidType,
				Message: "container entry is not an object",
			})
			continue
		}
		iss = goskema.AppendIssues(iss, v.validateNode(ctx, childPath, child)...)
	}

	return iss
}

func prefixIssues(path string, in goskema.Issues) goskema.Issues {
	if path == "" {
		return in
	}
	out := make(goskema.Issues, 0, len(in))
	for _, it := range in {
		p := it.Path
		switch {
		case p == "" || p == "/":
			p = path
		case p[0] == '/':
			p = path + p
		default:
			p = path + "/" + p
		}
		it.Path = p
		out = append(out, it)
	}
	return out
}

// JSONSchema projects every kind schema into its JSON Schema representation,
// keyed by kind discriminator.
func (v *Validator) JSONSchema() (map[string]*js.Schema, error) {
	out := make(map[string]*js.Schema, len(v.kinds))
	for kind, schema := range v.kinds {
		projected, err := schema.JSONSchema()
		if err != nil {
			return nil, fmt.Errorf("projecting schema for kind %q: %w", kind, err)
		}
		out[kind] = projected
	}
	return out, nil
}
