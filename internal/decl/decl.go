// Package decl defines the resolved declaration tree consumed by the report
// extractor. The tree is produced by an external front-end (parser + type and
// doc-tag resolver) and serialized as JSON; surfex only reads it, never
// mutates it.
package decl

import (
	"sort"
)

// Kind identifies the declaration shape of a node. The set is closed: the
// front-end maps any declaration form it cannot specialize to KindMember.
type Kind string

const (
	KindPackage   Kind = "package"
	KindNamespace Kind = "namespace"
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindEnum      Kind = "enum"
	KindEnumValue Kind = "enumValue"
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindProperty  Kind = "property"
	KindGetter    Kind = "getter"
	KindSetter    Kind = "setter"
	KindVariable  Kind = "variable"
	KindParameter Kind = "parameter"
	// KindMember is the generic member shape: a class or interface member the
	// front-end could not specialize further.
	KindMember Kind = "member"
)

// ConstructorName is the reserved synthetic name under which the front-end
// reports a constructor (as a method-kind member).
const ConstructorName = "__constructor"

// ReleaseTag gates whether a declaration is part of the committed public
// contract.
type ReleaseTag string

const (
	TagNone     ReleaseTag = ""
	TagBeta     ReleaseTag = "beta"
	TagPublic   ReleaseTag = "public"
	TagAlpha    ReleaseTag = "alpha"
	TagInternal ReleaseTag = "internal"
)

// Node is one declaration in the resolved tree. Only the fields relevant to a
// node's kind are populated; the rest stay at their zero values. Documentation
// fields are opaque text blocks, passed through or dropped but never
// interpreted.
type Node struct {
	Kind       Kind       `json:"kind"`
	Name       string     `json:"name"`
	ReleaseTag ReleaseTag `json:"releaseTag,omitempty"`

	// Documentation blocks
	Summary           string `json:"summary,omitempty"`
	Remarks           string `json:"remarks,omitempty"`
	DeprecatedMessage string `json:"deprecatedMessage,omitempty"`

	// Container kinds (package, namespace, class, interface, enum)
	Members []*Node `json:"members,omitempty"`

	// Structured types
	Extends        string   `json:"extends,omitempty"`
	Implements     string   `json:"implements,omitempty"`
	TypeParameters []string `json:"typeParameters,omitempty"`

	// Callable kinds
	Signature         string  `json:"signature,omitempty"`
	AccessModifier    string  `json:"accessModifier,omitempty"`
	ReturnType        string  `json:"returnType,omitempty"`
	ReturnDescription string  `json:"returnDescription,omitempty"`
	Parameters        []*Node `json:"parameters,omitempty"`

	// Properties, variables, enum values, parameters
	Type        string `json:"type,omitempty"`
	Value       string `json:"value,omitempty"`
	Description string `json:"description,omitempty"`

	IsOptional bool `json:"isOptional,omitempty"`
	IsReadOnly bool `json:"isReadOnly,omitempty"`
	IsStatic   bool `json:"isStatic,omitempty"`
	IsSpread   bool `json:"isSpread,omitempty"`

	// DeclarationKind is the front-end's raw declaration-kind tag, set only on
	// KindMember nodes so the report can say what shape it could not project.
	DeclarationKind string `json:"declarationKind,omitempty"`
}

// SortedMembers returns the node's members in the model's canonical order:
// by name, then by kind for same-named members (a getter/setter pair).
// The returned slice is a copy; the tree itself is never reordered.
func (n *Node) SortedMembers() []*Node {
	members := make([]*Node, len(n.Members))
	copy(members, n.Members)
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].Name != members[j].Name {
			return members[i].Name < members[j].Name
		}
		return members[i].Kind < members[j].Kind
	})
	return members
}

// IsContainer reports whether the node's kind carries a member container.
func (n *Node) IsContainer() bool {
	switch n.Kind {
	case KindPackage, KindNamespace, KindClass, KindInterface, KindEnum:
		return true
	default:
		return false
	}
}
