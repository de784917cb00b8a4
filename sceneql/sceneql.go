// Package sceneql parses the scene query language used by editor tooling to
// select entities: CONTAINS/EXACT over component types, TAG over tag labels,
// ALL as the universal match, composed with !, & and |.
//
//	CONTAINS(Transform, MeshRenderer) & !TAG("flying-enemy")
package sceneql

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/rotisserie/eris"

	"github.com/meshforge/scenecore/filter"
	"github.com/meshforge/scenecore/types"
)

type sceneqlOperator int

const (
	opAnd sceneqlOperator = iota
	opOr
)

var operatorMap = map[string]sceneqlOperator{"&": opAnd, "|": opOr}

// Capture tells the parser how to transform a parsed operator token into the
// operator type.
func (o *sceneqlOperator) Capture(s []string) error {
	if len(s) == 0 {
		return eris.New("invalid operator")
	}
	operator, ok := operatorMap[s[0]]
	if !ok {
		return eris.New("invalid operator")
	}
	*o = operator
	return nil
}

type sceneqlComponent struct {
	Name string `parser:"@Ident"`
}

type sceneqlAll struct{}

func (a *sceneqlAll) Capture(values []string) error {
	if values[0] == "ALL" && values[1] == "(" && values[2] == ")" {
		*a = sceneqlAll{}
	}
	return nil
}

type sceneqlNot struct {
	SubExpression *sceneqlValue `parser:"\"!\" @@"`
}

type sceneqlExact struct {
	Components []*sceneqlComponent `parser:"\"EXACT\" \"(\" (@@ \",\")* @@ \")\""`
}

type sceneqlContains struct {
	Components []*sceneqlComponent `parser:"\"CONTAINS\" \"(\" (@@ \",\")* @@ \")\""`
}

type sceneqlTag struct {
	Name string `parser:"\"TAG\" \"(\" @(String | Ident) \")\""`
}

type sceneqlValue struct {
	All           *sceneqlAll      `parser:"@(\"ALL\" \"(\" \")\")"`
	Exact         *sceneqlExact    `parser:"| @@"`
	Contains      *sceneqlContains `parser:"| @@"`
	Tag           *sceneqlTag      `parser:"| @@"`
	Not           *sceneqlNot      `parser:"| @@"`
	Subexpression *sceneqlTerm     `parser:"| \"(\" @@ \")\""`
}

type sceneqlFactor struct {
	Base *sceneqlValue `parser:"@@"`
}

type sceneqlOpFactor struct {
	Operator sceneqlOperator `parser:"@(\"&\" | \"|\")"`
	Factor   *sceneqlFactor  `parser:"@@"`
}

type sceneqlTerm struct {
	Left  *sceneqlFactor     `parser:"@@"`
	Right []*sceneqlOpFactor `parser:"@@*"`
}

// Display

func (o sceneqlOperator) String() string {
	switch o {
	case opAnd:
		return "&"
	case opOr:
		return "|"
	}
	panic("unsupported operator")
}

func (a *sceneqlAll) String() string {
	return "ALL()"
}

func (e *sceneqlExact) String() string {
	parameters := ""
	for i, comp := range e.Components {
		parameters += comp.Name
		if i < len(e.Components)-1 {
			parameters += ", "
		}
	}
	return "EXACT(" + parameters + ")"
}

func (e *sceneqlContains) String() string {
	parameters := ""
	for i, comp := range e.Components {
		parameters += comp.Name
		if i < len(e.Components)-1 {
			parameters += ", "
		}
	}
	return "CONTAINS(" + parameters + ")"
}

func (g *sceneqlTag) String() string {
	return fmt.Sprintf("TAG(%q)", g.Name)
}

func (v *sceneqlValue) String() string {
	switch {
	case v.Exact != nil:
		return v.Exact.String()
	case v.Contains != nil:
		return v.Contains.String()
	case v.Tag != nil:
		return v.Tag.String()
	case v.All != nil:
		return v.All.String()
	case v.Not != nil:
		return "!(" + v.Not.SubExpression.String() + ")"
	case v.Subexpression != nil:
		return "(" + v.Subexpression.String() + ")"
	default:
		panic("logic error displaying scene query AST")
	}
}

func (f *sceneqlFactor) String() string {
	return f.Base.String()
}

func (o *sceneqlOpFactor) String() string {
	return fmt.Sprintf("%s %s", o.Operator, o.Factor)
}

func (t *sceneqlTerm) String() string {
	out := []string{t.Left.String()}
	for _, r := range t.Right {
		out = append(out, r.String())
	}
	return strings.Join(out, " ")
}

var internalParser = participle.MustBuild[sceneqlTerm](participle.Unquote("String"))

// EntityFilter decides whether one entity matches a parsed query. Component
// membership is judged from the entity's component list; tag membership is
// judged through the resolver's tag lookup.
type EntityFilter interface {
	MatchesEntity(id types.EntityID, components []types.Component) bool
}

// Resolver supplies the lookups needed to bind a parsed query to a scene.
type Resolver struct {
	// ComponentByName resolves a component type name to its registered
	// metadata. Unknown names fail the parse.
	ComponentByName func(name string) (types.ComponentMetadata, error)
	// HasTag reports whether an entity carries a tag.
	HasTag func(id types.EntityID, tag string) bool
}

type componentEntityFilter struct {
	inner filter.ComponentFilter
}

func (f componentEntityFilter) MatchesEntity(_ types.EntityID, components []types.Component) bool {
	return f.inner.MatchesComponents(components)
}

type tagEntityFilter struct {
	tag    string
	hasTag func(types.EntityID, string) bool
}

func (f tagEntityFilter) MatchesEntity(id types.EntityID, _ []types.Component) bool {
	return f.hasTag(id, f.tag)
}

type notEntityFilter struct {
	inner EntityFilter
}

func (f notEntityFilter) MatchesEntity(id types.EntityID, components []types.Component) bool {
	return !f.inner.MatchesEntity(id, components)
}

type andEntityFilter struct {
	left, right EntityFilter
}

func (f andEntityFilter) MatchesEntity(id types.EntityID, components []types.Component) bool {
	return f.left.MatchesEntity(id, components) && f.right.MatchesEntity(id, components)
}

type orEntityFilter struct {
	left, right EntityFilter
}

func (f orEntityFilter) MatchesEntity(id types.EntityID, components []types.Component) bool {
	return f.left.MatchesEntity(id, components) || f.right.MatchesEntity(id, components)
}

func resolveComponents(names []*sceneqlComponent, resolver Resolver) ([]filter.ComponentWrapper, error) {
	components := make([]filter.ComponentWrapper, 0, len(names))
	for _, componentName := range names {
		comp, err := resolver.ComponentByName(componentName.Name)
		if err != nil {
			return nil, eris.Wrap(err, "")
		}
		components = append(components, filter.ComponentWrapper{Component: comp})
	}
	return components, nil
}

// TODO: the AST represents a sum as a product type; reject values where more
// than one branch is filled instead of relying on the grammar alone.
func valueToEntityFilter(value *sceneqlValue, resolver Resolver) (EntityFilter, error) {
	switch {
	case value.Not != nil:
		resultFilter, err := valueToEntityFilter(value.Not.SubExpression, resolver)
		if err != nil {
			return nil, err
		}
		return notEntityFilter{inner: resultFilter}, nil
	case value.Exact != nil:
		if len(value.Exact.Components) == 0 {
			return nil, eris.New("EXACT cannot have zero parameters")
		}
		components, err := resolveComponents(value.Exact.Components, resolver)
		if err != nil {
			return nil, err
		}
		return componentEntityFilter{inner: filter.Exact(components...)}, nil
	case value.Contains != nil:
		if len(value.Contains.Components) == 0 {
			return nil, eris.New("CONTAINS cannot have zero parameters")
		}
		components, err := resolveComponents(value.Contains.Components, resolver)
		if err != nil {
			return nil, err
		}
		return componentEntityFilter{inner: filter.Contains(components...)}, nil
	case value.Tag != nil:
		if resolver.HasTag == nil {
			return nil, eris.New("TAG is not available without a tag lookup")
		}
		return tagEntityFilter{tag: value.Tag.Name, hasTag: resolver.HasTag}, nil
	case value.All != nil:
		return componentEntityFilter{inner: filter.All()}, nil
	case value.Subexpression != nil:
		return termToEntityFilter(value.Subexpression, resolver)
	default:
		return nil, eris.New("unknown error during conversion from scene query AST to filter")
	}
}

func factorToEntityFilter(factor *sceneqlFactor, resolver Resolver) (EntityFilter, error) {
	return valueToEntityFilter(factor.Base, resolver)
}

func opFactorToEntityFilter(
	opFactor *sceneqlOpFactor,
	resolver Resolver,
) (*sceneqlOperator, EntityFilter, error) {
	resultFilter, err := factorToEntityFilter(opFactor.Factor, resolver)
	if err != nil {
		return nil, nil, err
	}
	return &opFactor.Operator, resultFilter, nil
}

func termToEntityFilter(term *sceneqlTerm, resolver Resolver) (EntityFilter, error) {
	if term.Left == nil {
		return nil, eris.New("not enough values in expression")
	}
	acc, err := factorToEntityFilter(term.Left, resolver)
	if err != nil {
		return nil, err
	}
	for _, opFactor := range term.Right {
		operator, resultFilter, err := opFactorToEntityFilter(opFactor, resolver)
		if err != nil {
			return nil, err
		}
		switch *operator {
		case opAnd:
			acc = andEntityFilter{left: acc, right: resultFilter}
		case opOr:
			acc = orEntityFilter{left: acc, right: resultFilter}
		default:
			return nil, eris.New("invalid operator")
		}
	}
	return acc, nil
}

// Parse compiles queryText into an EntityFilter bound to the resolver's
// lookups. Component names are resolved at parse time, so a query referencing
// an unregistered type fails here rather than matching nothing.
func Parse(queryText string, resolver Resolver) (EntityFilter, error) {
	term, err := internalParser.ParseString("", queryText)
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	resultFilter, err := termToEntityFilter(term, resolver)
	if err != nil {
		return nil, err
	}
	return resultFilter, nil
}
