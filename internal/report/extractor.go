// Package report transforms a resolved declaration tree into the canonical,
// schema-validated API report document.
//
// The transformation is a single-threaded, depth-first walk: every visit
// funnels through the stability and name filters once, then a kind projector
// installs exactly one entry in the container frame owned by the caller.
// Prose documentation is passed through as opaque text; re-running the
// extractor on unchanged input produces a byte-identical document.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goskema "github.com/reoring/goskema"

	"surfex/internal/apischema"
	"surfex/internal/decl"
	surferrors "surfex/internal/errors"
	"surfex/internal/output"
	"surfex/internal/slogutil"
)

// Extractor builds canonical API report documents from declaration trees.
type Extractor struct {
	logger        *slog.Logger
	supportedName func(string) bool

	// validator is built on first use and cached for the extractor's lifetime.
	validator *apischema.Validator
}

// Options configures a new Extractor.
type Options struct {
	Logger *slog.Logger
	// SupportedName overrides the naming-support predicate. Nil selects
	// DefaultSupportedName.
	SupportedName func(string) bool
}

// NewExtractor creates a new report extractor.
func NewExtractor(opts Options) *Extractor {
	logger := opts.Logger
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	supported := opts.SupportedName
	if supported == nil {
		supported = DefaultSupportedName
	}
	return &Extractor{
		logger:        logger,
		supportedName: supported,
	}
}

// Extract assembles the canonical document for root and validates it against
// the report schema. A validation failure is an unrecoverable engine defect,
// surfaced as a SCHEMA_MISMATCH error with the structured diagnostic attached.
func (e *Extractor) Extract(ctx context.Context, root *decl.Node) (map[string]any, error) {
	doc := e.projectPackage(root)

	if err := e.schemaValidator().ValidateDocument(ctx, doc); err != nil {
		return nil, surferrors.New(surferrors.SchemaMismatch,
			"canonical document failed schema validation; a projector emitted a shape the schema does not describe", err).
			WithDetails(issueDetails(err))
	}
	return doc, nil
}

// WriteReport assembles, validates, and persists the canonical document to
// path using deterministic indented JSON. It returns the encoded bytes.
// Errors carry the target filename along with the validator diagnostic.
func (e *Extractor) WriteReport(ctx context.Context, root *decl.Node, path string) ([]byte, error) {
	doc := e.projectPackage(root)

	if err := e.schemaValidator().ValidateDocument(ctx, doc); err != nil {
		return nil, surferrors.New(surferrors.SchemaMismatch,
			fmt.Sprintf("refusing to write %q: canonical document failed schema validation", path), err).
			WithDetails(issueDetails(err))
	}

	encoded, err := output.EncodeIndented(doc, "  ")
	if err != nil {
		return nil, surferrors.New(surferrors.InternalError,
			fmt.Sprintf("failed to encode report for %q", path), err)
	}
	encoded = append(encoded, '\n')

	if err := os.WriteFile(path, encoded, 0644); err != nil {
		return nil, surferrors.New(surferrors.ReportWriteFailed,
			fmt.Sprintf("failed to write report %q", path), err)
	}

	exports, _ := doc["exports"].(map[string]any)
	e.logger.Info("report written",
		"path", path,
		"package", root.Name,
		"exports", len(exports),
		"schemaVersion", apischema.Version,
	)
	return encoded, nil
}

func (e *Extractor) schemaValidator() *apischema.Validator {
	if e.validator == nil {
		e.validator = apischema.New()
	}
	return e.validator
}

// visit routes one node through the filters to its kind projector. Each
// projector installs exactly one entry in out, keyed by the node's name;
// setters install nothing (the getter of the pair owns the entry).
func (e *Extractor) visit(n *decl.Node, out map[string]any) {
	if !e.admitted(n) {
		return
	}

	switch n.Kind {
	case decl.KindNamespace:
		out[n.Name] = e.projectNamespace(n)
	case decl.KindClass, decl.KindInterface:
		out[n.Name] = e.projectStructuredType(n)
	case decl.KindEnum:
		out[n.Name] = e.projectEnum(n)
	case decl.KindEnumValue:
		out[n.Name] = e.projectEnumValue(n)
	case decl.KindFunction:
		out[n.Name] = e.projectFunction(n)
	case decl.KindMethod:
		if n.Name == decl.ConstructorName {
			out[decl.ConstructorName] = e.projectConstructor(n)
		} else {
			out[n.Name] = e.projectMethod(n)
		}
	case decl.KindProperty, decl.KindGetter:
		out[n.Name] = e.projectProperty(n)
	case decl.KindSetter:
		// Setter-only accessors are suppressed entirely; a getter/setter pair
		// yields a single property entry from the getter path.
	case decl.KindVariable:
		out[n.Name] = e.projectVariable(n)
	case decl.KindMember:
		e.logger.Warn("unsupported member shape, emitting placeholder",
			"name", n.Name,
			"declarationKind", n.DeclarationKind,
		)
		out[n.Name] = map[string]any{
			"kind":            apischema.KindMember,
			"declarationKind": n.DeclarationKind,
		}
	default:
		// The kind set is closed; reaching here is a programming error, not
		// an input condition.
		panic(fmt.Sprintf("report: no projector for kind %q", n.Kind))
	}
}

func (e *Extractor) projectPackage(n *decl.Node) map[string]any {
	exports := map[string]any{}
	for _, m := range n.SortedMembers() {
		e.visit(m, exports)
	}
	return map[string]any{
		"kind":    apischema.KindPackage,
		"summary": n.Summary,
		"remarks": n.Remarks,
		"exports": exports,
	}
}

func (e *Extractor) projectNamespace(n *decl.Node) map[string]any {
	exports := map[string]any{}
	for _, m := range n.SortedMembers() {
		e.visit(m, exports)
	}
	return map[string]any{
		"kind":              apischema.KindNamespace,
		"deprecatedMessage": n.DeprecatedMessage,
		"summary":           n.Summary,
		"remarks":           n.Remarks,
		"isBeta":            isBeta(n),
		"exports":           exports,
	}
}

func (e *Extractor) projectStructuredType(n *decl.Node) map[string]any {
	members := map[string]any{}
	for _, m := range n.SortedMembers() {
		e.visit(m, members)
	}

	typeParameters := make([]any, 0, len(n.TypeParameters))
	for _, tp := range n.TypeParameters {
		typeParameters = append(typeParameters, tp)
	}

	return map[string]any{
		"kind":              string(n.Kind),
		"extends":           n.Extends,
		"implements":        n.Implements,
		"typeParameters":    typeParameters,
		"deprecatedMessage": n.DeprecatedMessage,
		"summary":           n.Summary,
		"remarks":           n.Remarks,
		"isBeta":            isBeta(n),
		"members":           members,
	}
}

func (e *Extractor) projectEnum(n *decl.Node) map[string]any {
	values := map[string]any{}
	for _, m := range n.SortedMembers() {
		e.visit(m, values)
	}
	return map[string]any{
		"kind":              apischema.KindEnum,
		"values":            values,
		"deprecatedMessage": n.DeprecatedMessage,
		"summary":           n.Summary,
		"remarks":           n.Remarks,
		"isBeta":            isBeta(n),
	}
}

func (e *Extractor) projectEnumValue(n *decl.Node) map[string]any {
	// Value is the literal text of an explicit initializer; implicit values
	// stay empty.
	return map[string]any{
		"kind":              apischema.KindEnumValue,
		"value":             n.Value,
		"deprecatedMessage": n.DeprecatedMessage,
		"summary":           n.Summary,
		"remarks":           n.Remarks,
		"isBeta":            isBeta(n),
	}
}

func (e *Extractor) projectFunction(n *decl.Node) map[string]any {
	return map[string]any{
		"kind":              apischema.KindFunction,
		"returnValue":       projectReturnValue(n),
		"parameters":        projectParameters(n),
		"deprecatedMessage": n.DeprecatedMessage,
		"summary":           n.Summary,
		"remarks":           n.Remarks,
		"isBeta":            isBeta(n),
	}
}

func (e *Extractor) projectMethod(n *decl.Node) map[string]any {
	return map[string]any{
		"kind":              apischema.KindMethod,
		"signature":         n.Signature,
		"accessModifier":    strings.ToLower(n.AccessModifier),
		"isOptional":        n.IsOptional,
		"isStatic":          n.IsStatic,
		"returnValue":       projectReturnValue(n),
		"parameters":        projectParameters(n),
		"deprecatedMessage": n.DeprecatedMessage,
		"summary":           n.Summary,
		"remarks":           n.Remarks,
		"isBeta":            isBeta(n),
	}
}

// projectConstructor emits the reduced constructor shape: no visibility,
// staticness, return value, or beta flag, since constructors carry none of
// those semantics.
func (e *Extractor) projectConstructor(n *decl.Node) map[string]any {
	return map[string]any{
		"kind":              apischema.KindConstructor,
		"signature":         n.Signature,
		"parameters":        projectParameters(n),
		"deprecatedMessage": n.DeprecatedMessage,
		"summary":           n.Summary,
		"remarks":           n.Remarks,
	}
}

func (e *Extractor) projectProperty(n *decl.Node) map[string]any {
	return map[string]any{
		"kind":              apischema.KindProperty,
		"isOptional":        n.IsOptional,
		"isReadOnly":        n.IsReadOnly,
		"isStatic":          n.IsStatic,
		"type":              n.Type,
		"deprecatedMessage": n.DeprecatedMessage,
		"summary":           n.Summary,
		"remarks":           n.Remarks,
		"isBeta":            isBeta(n),
	}
}

func (e *Extractor) projectVariable(n *decl.Node) map[string]any {
	return map[string]any{
		"kind":              apischema.KindVariable,
		"type":              n.Type,
		"value":             n.Value,
		"deprecatedMessage": n.DeprecatedMessage,
		"summary":           n.Summary,
		"remarks":           n.Remarks,
		"isBeta":            isBeta(n),
	}
}

func projectReturnValue(n *decl.Node) map[string]any {
	return map[string]any{
		"type":        n.ReturnType,
		"description": n.ReturnDescription,
	}
}

func projectParameters(n *decl.Node) map[string]any {
	parameters := map[string]any{}
	for _, p := range n.Parameters {
		record := map[string]any{
			"description": p.Description,
		}
		projectParameter(p, record)
		parameters[p.Name] = record
	}
	return parameters
}

// projectParameter mutates the caller-supplied record in place rather than
// installing a keyed entry of its own.
func projectParameter(p *decl.Node, record map[string]any) {
	record["isOptional"] = p.IsOptional
	record["isSpread"] = p.IsSpread
	record["type"] = p.Type
}

func isBeta(n *decl.Node) bool {
	return n.ReleaseTag == decl.TagBeta
}

// issueDetails flattens goskema issues into a JSON-friendly diagnostic list.
func issueDetails(err error) []map[string]string {
	iss, ok := goskema.AsIssues(err)
	if !ok {
		return []map[string]string{{"message": err.Error()}}
	}
	details := make([]map[string]string, 0, len(iss))
	for _, it := range iss {
		details = append(details, map[string]string{
			"path":    it.Path,
			"code":    it.Code,
			"message": it.Message,
		})
	}
	return details
}
