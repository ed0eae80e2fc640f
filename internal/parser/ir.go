// Package parser implements the ways DSL grammar (state/transition/option
// clauses) and assembles its intermediate representation: an ordered list
// of per-state RuleGroups ready for the class compressor and transition
// materializer.
package parser

// Rule is the parsed form of one `transition` clause. Zero value is a rule
// with no options at all, which the parser rejects as an error (infinite
// self-loop); the materializer does not check this itself.
type Rule struct {
	HasOn   bool
	OnChars []byte // deduplicated byte set, in source order
	OnEOS   bool

	HasGo bool
	Go    string

	HasToken bool
	Token    string

	HasFailure bool
	Failure    string

	Keep  bool
	Skip  bool
	Clear bool

	Line, Column int
}

// IsDefault reports whether this rule omits `on` entirely, making it the
// state's default rule.
func (r Rule) IsDefault() bool { return !r.HasOn }

// RuleGroup is the accumulated rule list for one state name. A state name
// may be declared more than once in a document; subsequent declarations
// append to the same RuleGroup rather than creating a new one.
type RuleGroup struct {
	Name    string
	Initial bool
	Rules   []Rule

	// Line/Column of the group's first declaration, for diagnostics that
	// reference the group itself (e.g. "state declared with zero rules").
	Line, Column int
}

// Document is the parser's output: the ordered list of RuleGroups plus the
// resolved initial state index.
type Document struct {
	Groups       []RuleGroup
	StateMap     map[string]int // state name -> index into Groups
	InitialIndex int
}
