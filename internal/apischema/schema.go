// Package apischema defines the versioned schema for canonical API report
// documents and validates assembled documents against it.
//
// The schema is closed: every kind discriminator the report engine can emit
// has exactly one shape here, with unknown keys rejected. A validation failure
// therefore always means a projector emitted a shape the schema does not
// describe, which is an engine defect, never a caller mistake.
package apischema

import (
	goskema "github.com/reoring/goskema"
	g "github.com/reoring/goskema/dsl"
)

// Version identifies the report schema revision. It changes whenever a
// projector's field set changes.
const Version = "1.1.0"

// Kind discriminator strings of the published vocabulary.
const (
	KindPackage     = "package"
	KindNamespace   = "namespace"
	KindClass       = "class"
	KindInterface   = "interface"
	KindEnum        = "enum"
	KindEnumValue   = "enumValue"
	KindFunction    = "function"
	KindMethod      = "method"
	KindConstructor = "constructor"
	KindProperty    = "property"
	KindVariable    = "variable"
	KindMember      = "member"
)

// containerKeys maps container-bearing kinds to their fixed container key.
var containerKeys = map[string]string{
	KindPackage:   "exports",
	KindNamespace: "exports",
	KindClass:     "members",
	KindInterface: "members",
	KindEnum:      "values",
}

func buildKindSchemas() map[string]goskema.Schema[map[string]any] {
	returnValue := g.Object().
		Field("type", g.StringOf[string]()).Required().
		Field("description", g.StringOf[string]()).Required().
		UnknownStrict().
		MustBuild()

	parameter := g.Object().
		Field("description", g.StringOf[string]()).Required().
		Field("isOptional", g.BoolOf[bool]()).Required().
		Field("isSpread", g.BoolOf[bool]()).Required().
		Field("type", g.StringOf[string]()).Required().
		UnknownStrict().
		MustBuild()

	// Containers hold name-keyed child nodes; children are validated
	// recursively by the walker, not here.
	container := g.SchemaOf[map[string]any](g.MapAny())

	pkg := g.Object().
		Field("kind", g.StringOf[string]()).Required().
		Field("summary", g.StringOf[string]()).Required().
		Field("remarks", g.StringOf[string]()).Required().
		Field("exports", container).Required().
		UnknownStrict().
		MustBuild()

	namespace := g.Object().
		Field("kind", g.StringOf[string]()).Required().
		Field("deprecatedMessage", g.StringOf[string]()).Required().
		Field("summary", g.StringOf[string]()).Required().
		Field("remarks", g.StringOf[string]()).Required().
		Field("isBeta", g.BoolOf[bool]()).Required().
		Field("exports", container).Required().
		UnknownStrict().
		MustBuild()

	structured := g.Object().
		Field("kind", g.StringOf[string]()).Required().
		Field("extends", g.StringOf[string]()).Required().
		Field("implements", g.StringOf[string]()).Required().
		Field("typeParameters", g.ArrayOf[string](g.String())).Required().
		Field("deprecatedMessage", g.StringOf[string]()).Required().
		Field("summary", g.StringOf[string]()).Required().
		Field("remarks", g.StringOf[string]()).Required().
		Field("isBeta", g.BoolOf[bool]()).Required().
		Field("members", container).Required().
		UnknownStrict().
		MustBuild()

	enum := g.Object().
		Field("kind", g.StringOf[string]()).Required().
		Field("values", container).Required().
		Field("deprecatedMessage", g.StringOf[string]()).Required().
		Field("summary", g.StringOf[string]()).Required().
		Field("remarks", g.StringOf[string]()).Required().
		Field("isBeta", g.BoolOf[bool]()).Required().
		UnknownStrict().
		MustBuild()

	enumValue := g.Object().
		Field("kind", g.StringOf[string]()).Required().
		Field("value", g.StringOf[string]()).Required().
		Field("deprecatedMessage", g.StringOf[string]()).Required().
		Field("summary", g.StringOf[string]()).Required().
		Field("remarks", g.StringOf[string]()).Required().
		Field("isBeta", g.BoolOf[bool]()).Required().
		UnknownStrict().
		MustBuild()

	function := g.Object().
		Field("kind", g.StringOf[string]()).Required().
		Field("returnValue", g.SchemaOf[map[string]any](returnValue)).Required().
		Field("parameters", g.MapOf[map[string]any](parameter)).Required().
		Field("deprecatedMessage", g.StringOf[string]()).Required().
		Field("summary", g.StringOf[string]()).Required().
		Field("remarks", g.StringOf[string]()).Required().
		Field("isBeta", g.BoolOf[bool]()).Required().
		UnknownStrict().
		MustBuild()

	method := g.Object().
		Field("kind", g.StringOf[string]()).Required().
		Field("signature", g.StringOf[string]()).Required().
		Field("accessModifier", g.StringOf[string]()).Required().
		Field("isOptional", g.BoolOf[bool]()).Required().
		Field("isStatic", g.BoolOf[bool]()).Required().
		Field("returnValue", g.SchemaOf[map[string]any](returnValue)).Required().
		Field("parameters", g.MapOf[map[string]any](parameter)).Required().
		Field("deprecatedMessage", g.StringOf[string]()).Required().
		Field("summary", g.StringOf[string]()).Required().
		Field("remarks", g.StringOf[string]()).Required().
		Field("isBeta", g.BoolOf[bool]()).Required().
		UnknownStrict().
		MustBuild()

	// Constructors have no visibility, staticness, or return semantics.
	constructor := g.Object().
		Field("kind", g.StringOf[string]()).Required().
		Field("signature", g.StringOf[string]()).Required().
		Field("parameters", g.MapOf[map[string]any](parameter)).Required().
		Field("deprecatedMessage", g.StringOf[string]()).Required().
		Field("summary", g.StringOf[string]()).Required().
		Field("remarks", g.StringOf[string]()).Required().
		UnknownStrict().
		MustBuild()

	property := g.Object().
		Field("kind", g.StringOf[string]()).Required().
		Field("isOptional", g.BoolOf[bool]()).Required().
		Field("isReadOnly", g.BoolOf[bool]()).Required().
		Field("isStatic", g.BoolOf[bool]()).Required().
		Field("type", g.StringOf[string]()).Required().
		Field("deprecatedMessage", g.StringOf[string]()).Required().
		Field("summary", g.StringOf[string]()).Required().
		Field("remarks", g.StringOf[string]()).Required().
		Field("isBeta", g.BoolOf[bool]()).Required().
		UnknownStrict().
		MustBuild()

	variable := g.Object().
		Field("kind", g.StringOf[string]()).Required().
		Field("type", g.StringOf[string]()).Required().
		Field("value", g.StringOf[string]()).Required().
		Field("deprecatedMessage", g.StringOf[string]()).Required().
		Field("summary", g.StringOf[string]()).Required().
		Field("remarks", g.StringOf[string]()).Required().
		Field("isBeta", g.BoolOf[bool]()).Required().
		UnknownStrict().
		MustBuild()

	member := g.Object().
		Field("kind", g.StringOf[string]()).Required().
		Field("declarationKind", g.StringOf[string]()).Required().
		UnknownStrict().
		MustBuild()

	return map[string]goskema.Schema[map[string]any]{
		KindPackage:     pkg,
		KindNamespace:   namespace,
		KindClass:       structured,
		KindInterface:   structured,
		KindEnum:        enum,
		KindEnumValue:   enumValue,
		KindFunction:    function,
		KindMethod:      method,
		KindConstructor: constructor,
		KindProperty:    property,
		KindVariable:    variable,
		KindMember:      member,
	}
}
