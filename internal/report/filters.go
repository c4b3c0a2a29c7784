package report

import (
	"regexp"

	"surfex/internal/decl"
)

// supportedNamePattern is the default naming-support predicate: plain
// identifiers only, with leading underscores treated as internal-only naming.
var supportedNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// DefaultSupportedName reports whether an identifier is eligible to appear in
// the public report. The CLI can inject a different predicate when the
// front-end supplies its own rule.
func DefaultSupportedName(name string) bool {
	return supportedNamePattern.MatchString(name)
}

// stabilityAdmitted reports whether a node's release tag permits inclusion.
// Alpha and internal declarations are rejected unconditionally; rejection is
// silent and covers the whole subtree.
func stabilityAdmitted(n *decl.Node) bool {
	switch n.ReleaseTag {
	case decl.TagNone, decl.TagBeta, decl.TagPublic:
		return true
	default:
		return false
	}
}

// nameFilterExempt reports whether a node has no "unsupported name" concept:
// the root package and bare module-level variables skip the name filter, as
// does the reserved synthetic constructor name.
func nameFilterExempt(n *decl.Node) bool {
	if n.Kind == decl.KindPackage || n.Kind == decl.KindVariable {
		return true
	}
	return n.Kind == decl.KindMethod && n.Name == decl.ConstructorName
}

// admitted applies both filters. This is the only gate on the way into the
// projectors; the dispatcher funnels every visit through it exactly once.
func (e *Extractor) admitted(n *decl.Node) bool {
	if !stabilityAdmitted(n) {
		return false
	}
	if nameFilterExempt(n) {
		return true
	}
	return e.supportedName(n.Name)
}
