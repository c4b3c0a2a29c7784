package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"surfex/internal/decl"
	surferrors "surfex/internal/errors"
	"surfex/internal/output"
)

// widgetTree builds a package exporting one public class Widget with one
// public method render(x: number): string and one internal method debug().
func widgetTree() *decl.Node {
	return &decl.Node{
		Kind:    decl.KindPackage,
		Name:    "widgets",
		Summary: "widget toolkit",
		Members: []*decl.Node{
			{
				Kind:       decl.KindClass,
				Name:       "Widget",
				ReleaseTag: decl.TagPublic,
				Members: []*decl.Node{
					{
						Kind:              decl.KindMethod,
						Name:              "render",
						ReleaseTag:        decl.TagPublic,
						Signature:         "render(x: number): string",
						AccessModifier:    "Public",
						ReturnType:        "string",
						ReturnDescription: "rendered markup",
						Parameters: []*decl.Node{
							{Kind: decl.KindParameter, Name: "x", Type: "number", Description: "scale factor"},
						},
					},
					{
						Kind:       decl.KindMethod,
						Name:       "debug",
						ReleaseTag: decl.TagInternal,
						Signature:  "debug(): void",
						ReturnType: "void",
					},
				},
			},
		},
	}
}

func extract(t *testing.T, root *decl.Node) map[string]any {
	t.Helper()
	e := NewExtractor(Options{})
	doc, err := e.Extract(context.Background(), root)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	return doc
}

func memberOf(t *testing.T, doc map[string]any, path ...string) map[string]any {
	t.Helper()
	current := doc
	for _, key := range path {
		next, ok := current[key].(map[string]any)
		if !ok {
			t.Fatalf("path %v: %q missing or not an object in %v", path, key, current)
		}
		current = next
	}
	return current
}

func TestRoundTripWidgetScenario(t *testing.T) {
	doc := extract(t, widgetTree())

	render := memberOf(t, doc, "exports", "Widget", "members", "render")
	if render["kind"] != "method" {
		t.Errorf("render kind = %v, want method", render["kind"])
	}

	returnValue := memberOf(t, doc, "exports", "Widget", "members", "render", "returnValue")
	if returnValue["type"] != "string" {
		t.Errorf("returnValue.type = %v, want string", returnValue["type"])
	}

	x := memberOf(t, doc, "exports", "Widget", "members", "render", "parameters", "x")
	if x["type"] != "number" {
		t.Errorf("parameter x type = %v, want number", x["type"])
	}
	if x["isOptional"] != false || x["isSpread"] != false {
		t.Errorf("parameter x flags = %v/%v, want false/false", x["isOptional"], x["isSpread"])
	}

	members := memberOf(t, doc, "exports", "Widget", "members")
	if _, exists := members["debug"]; exists {
		t.Error("internal method debug must not appear under Widget.members")
	}
}

func TestDeterminism(t *testing.T) {
	first, err := output.Encode(extract(t, widgetTree()))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	second, err := output.Encode(extract(t, widgetTree()))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("two runs produced different documents:\n%s\n%s", first, second)
	}
}

func TestFilterSoundnessTransitive(t *testing.T) {
	root := &decl.Node{
		Kind: decl.KindPackage,
		Name: "pkg",
		Members: []*decl.Node{
			{
				Kind:       decl.KindClass,
				Name:       "Hidden",
				ReleaseTag: decl.TagInternal,
				Members: []*decl.Node{
					// Individually public, but the containing class is internal:
					// the subtree is never visited.
					{Kind: decl.KindMethod, Name: "leak", ReleaseTag: decl.TagPublic},
				},
			},
			{
				Kind:       decl.KindFunction,
				Name:       "experimental",
				ReleaseTag: decl.TagAlpha,
			},
			{
				Kind:       decl.KindFunction,
				Name:       "stable",
				ReleaseTag: decl.TagPublic,
			},
		},
	}

	doc := extract(t, root)
	encoded, err := output.Encode(doc)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	for _, banned := range []string{"Hidden", "leak", "experimental"} {
		if bytes.Contains(encoded, []byte(banned)) {
			t.Errorf("filtered name %q leaked into document: %s", banned, encoded)
		}
	}

	exports := memberOf(t, doc, "exports")
	if _, ok := exports["stable"]; !ok {
		t.Error("public function stable missing from exports")
	}
}

func TestSetterSuppression(t *testing.T) {
	root := &decl.Node{
		Kind: decl.KindPackage,
		Name: "pkg",
		Members: []*decl.Node{
			{
				Kind:       decl.KindClass,
				Name:       "Widget",
				ReleaseTag: decl.TagPublic,
				Members: []*decl.Node{
					{Kind: decl.KindGetter, Name: "label", Type: "string"},
					{Kind: decl.KindSetter, Name: "label", Type: "string"},
				},
			},
		},
	}

	doc := extract(t, root)
	members := memberOf(t, doc, "exports", "Widget", "members")

	if len(members) != 1 {
		t.Fatalf("getter/setter pair must produce exactly one entry, got %d: %v", len(members), members)
	}
	label := memberOf(t, doc, "exports", "Widget", "members", "label")
	if label["kind"] != "property" {
		t.Errorf("label kind = %v, want property", label["kind"])
	}
}

func TestSetterOnlyProducesNothing(t *testing.T) {
	root := &decl.Node{
		Kind: decl.KindPackage,
		Name: "pkg",
		Members: []*decl.Node{
			{
				Kind:       decl.KindClass,
				Name:       "Widget",
				ReleaseTag: decl.TagPublic,
				Members: []*decl.Node{
					{Kind: decl.KindSetter, Name: "writeOnly", Type: "string"},
				},
			},
		},
	}

	doc := extract(t, root)
	members := memberOf(t, doc, "exports", "Widget", "members")
	if len(members) != 0 {
		t.Errorf("setter-only accessor must be suppressed entirely, got %v", members)
	}
}

func TestConstructorDistinctness(t *testing.T) {
	root := &decl.Node{
		Kind: decl.KindPackage,
		Name: "pkg",
		Members: []*decl.Node{
			{
				Kind:       decl.KindClass,
				Name:       "Widget",
				ReleaseTag: decl.TagPublic,
				Members: []*decl.Node{
					{
						Kind:      decl.KindMethod,
						Name:      decl.ConstructorName,
						Signature: "constructor(width: number)",
						Parameters: []*decl.Node{
							{Kind: decl.KindParameter, Name: "width", Type: "number"},
						},
					},
				},
			},
		},
	}

	doc := extract(t, root)
	ctor := memberOf(t, doc, "exports", "Widget", "members", decl.ConstructorName)

	if ctor["kind"] != "constructor" {
		t.Errorf("constructor kind = %v, want constructor", ctor["kind"])
	}
	for _, banned := range []string{"accessModifier", "isStatic", "isOptional", "returnValue", "isBeta"} {
		if _, exists := ctor[banned]; exists {
			t.Errorf("constructor must not carry %q", banned)
		}
	}
	if _, ok := ctor["parameters"].(map[string]any)["width"]; !ok {
		t.Error("constructor parameters missing width")
	}
}

func TestEnumValueLiteralCapture(t *testing.T) {
	root := &decl.Node{
		Kind: decl.KindPackage,
		Name: "pkg",
		Members: []*decl.Node{
			{
				Kind:       decl.KindEnum,
				Name:       "Color",
				ReleaseTag: decl.TagPublic,
				Members: []*decl.Node{
					{Kind: decl.KindEnumValue, Name: "A", Value: "5"},
					{Kind: decl.KindEnumValue, Name: "B"},
				},
			},
		},
	}

	doc := extract(t, root)
	a := memberOf(t, doc, "exports", "Color", "values", "A")
	if a["value"] != "5" {
		t.Errorf("explicit initializer: value = %v, want \"5\"", a["value"])
	}
	b := memberOf(t, doc, "exports", "Color", "values", "B")
	if b["value"] != "" {
		t.Errorf("implicit initializer: value = %v, want empty string", b["value"])
	}
}

func TestUnknownMemberShapePlaceholder(t *testing.T) {
	root := &decl.Node{
		Kind: decl.KindPackage,
		Name: "pkg",
		Members: []*decl.Node{
			{
				Kind:       decl.KindInterface,
				Name:       "Callable",
				ReleaseTag: decl.TagPublic,
				Members: []*decl.Node{
					{Kind: decl.KindMember, Name: "callSig", DeclarationKind: "CallSignature"},
				},
			},
		},
	}

	doc := extract(t, root)
	placeholder := memberOf(t, doc, "exports", "Callable", "members", "callSig")

	if placeholder["kind"] != "member" {
		t.Errorf("placeholder kind = %v, want member", placeholder["kind"])
	}
	if placeholder["declarationKind"] != "CallSignature" {
		t.Errorf("declarationKind = %v, want CallSignature", placeholder["declarationKind"])
	}
	if len(placeholder) != 2 {
		t.Errorf("placeholder must carry only kind and declarationKind, got %v", placeholder)
	}
}

func TestNameFilter(t *testing.T) {
	root := &decl.Node{
		Kind: decl.KindPackage,
		Name: "pkg",
		Members: []*decl.Node{
			{Kind: decl.KindClass, Name: "_InternalWidget", ReleaseTag: decl.TagPublic},
			{Kind: decl.KindClass, Name: "Widget", ReleaseTag: decl.TagPublic},
			// Module-level variables are exempt from the name filter.
			{Kind: decl.KindVariable, Name: "_defaultTheme", Type: "Theme", Value: "dark"},
		},
	}

	doc := extract(t, root)
	exports := memberOf(t, doc, "exports")

	if _, exists := exports["_InternalWidget"]; exists {
		t.Error("underscore-prefixed class must be dropped by the name filter")
	}
	if _, ok := exports["Widget"]; !ok {
		t.Error("Widget missing from exports")
	}
	if _, ok := exports["_defaultTheme"]; !ok {
		t.Error("module-level variable must be exempt from the name filter")
	}
}

func TestNameFilterInjectable(t *testing.T) {
	e := NewExtractor(Options{
		SupportedName: func(name string) bool { return name != "Banned" },
	})

	root := &decl.Node{
		Kind: decl.KindPackage,
		Name: "pkg",
		Members: []*decl.Node{
			{Kind: decl.KindClass, Name: "Banned", ReleaseTag: decl.TagPublic},
			{Kind: decl.KindClass, Name: "Allowed", ReleaseTag: decl.TagPublic},
		},
	}

	doc, err := e.Extract(context.Background(), root)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	exports := memberOf(t, doc, "exports")
	if _, exists := exports["Banned"]; exists {
		t.Error("injected predicate should drop Banned")
	}
	if _, ok := exports["Allowed"]; !ok {
		t.Error("Allowed missing from exports")
	}
}

func TestBetaFlag(t *testing.T) {
	root := &decl.Node{
		Kind: decl.KindPackage,
		Name: "pkg",
		Members: []*decl.Node{
			{Kind: decl.KindFunction, Name: "preview", ReleaseTag: decl.TagBeta, ReturnType: "void"},
		},
	}

	doc := extract(t, root)
	preview := memberOf(t, doc, "exports", "preview")
	if preview["isBeta"] != true {
		t.Errorf("beta declaration must set isBeta, got %v", preview["isBeta"])
	}
}

func TestNamespaceNesting(t *testing.T) {
	root := &decl.Node{
		Kind: decl.KindPackage,
		Name: "pkg",
		Members: []*decl.Node{
			{
				Kind:       decl.KindNamespace,
				Name:       "geometry",
				ReleaseTag: decl.TagPublic,
				Members: []*decl.Node{
					{Kind: decl.KindFunction, Name: "area", ReleaseTag: decl.TagPublic, ReturnType: "number"},
				},
			},
		},
	}

	doc := extract(t, root)
	area := memberOf(t, doc, "exports", "geometry", "exports", "area")
	if area["kind"] != "function" {
		t.Errorf("nested function kind = %v, want function", area["kind"])
	}
}

func TestAccessModifierLowercased(t *testing.T) {
	doc := extract(t, widgetTree())
	render := memberOf(t, doc, "exports", "Widget", "members", "render")
	if render["accessModifier"] != "public" {
		t.Errorf("accessModifier = %v, want lowercase public", render["accessModifier"])
	}
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "api-report.json")

	e := NewExtractor(Options{})
	encoded, err := e.WriteReport(context.Background(), widgetTree(), path)
	if err != nil {
		t.Fatalf("WriteReport() error: %v", err)
	}

	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !bytes.Equal(onDisk, encoded) {
		t.Error("bytes on disk differ from returned encoding")
	}

	// Second run over the same tree must be byte-identical.
	path2 := filepath.Join(dir, "api-report-2.json")
	encoded2, err := e.WriteReport(context.Background(), widgetTree(), path2)
	if err != nil {
		t.Fatalf("WriteReport() error: %v", err)
	}
	if !bytes.Equal(encoded, encoded2) {
		t.Error("re-running the extractor produced different bytes")
	}
}

func TestWriteReportFailureCarriesFilename(t *testing.T) {
	e := NewExtractor(Options{})
	path := filepath.Join(t.TempDir(), "missing-dir", "api-report.json")

	_, err := e.WriteReport(context.Background(), widgetTree(), path)
	if err == nil {
		t.Fatal("WriteReport into a missing directory must fail")
	}
	surfErr, ok := err.(*surferrors.SurfError)
	if !ok {
		t.Fatalf("expected *SurfError, got %T", err)
	}
	if surfErr.Code != surferrors.ReportWriteFailed {
		t.Errorf("Code = %v, want %v", surfErr.Code, surferrors.ReportWriteFailed)
	}
	if !bytes.Contains([]byte(surfErr.Message), []byte(path)) {
		t.Errorf("error message should carry the target filename: %q", surfErr.Message)
	}
}

func TestDispatchPanicsOnForeignKind(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("dispatch must panic on a kind outside the closed set")
		}
	}()

	e := NewExtractor(Options{})
	e.visit(&decl.Node{Kind: decl.Kind("gadget"), Name: "x"}, map[string]any{})
}

func TestDefaultSupportedName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Widget", true},
		{"render", true},
		{"_private", false},
		{"with space", false},
		{"", false},
		{"x1_y2", true},
	}

	for _, tt := range tests {
		if got := DefaultSupportedName(tt.name); got != tt.want {
			t.Errorf("DefaultSupportedName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
