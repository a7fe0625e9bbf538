package document

import (
	"github.com/vektah/gqlparser/v2/ast"
)

// DirectiveRule selects directives to strip from a document.
type DirectiveRule struct {
	// Name matches directives by name. Ignored when Test is set.
	Name string
	// Test matches directives by predicate.
	Test func(*ast.Directive) bool
	// Remove drops the whole node carrying the directive (field, inline
	// fragment, fragment spread or operation) instead of only the directive.
	Remove bool
}

func (r DirectiveRule) matches(d *ast.Directive) bool {
	if r.Test != nil {
		return r.Test(d)
	}
	return r.Name != "" && d.Name == r.Name
}

// RemoveDirectives returns a copy of doc with the directives matched by rules
// removed. The input document is not modified.
//
// Selections, fragments and operations left empty by the removal are pruned,
// as are fragment definitions and variable definitions that are no longer
// referenced. When no operation survives, RemoveDirectives returns nil.
func RemoveDirectives(doc *ast.QueryDocument, rules ...DirectiveRule) *ast.QueryDocument {
	return (&transformer{src: doc, rules: rules}).run()
}

// RemoveFields returns a copy of doc without the fields matched by match.
// Pruning follows the same rules as RemoveDirectives.
func RemoveFields(doc *ast.QueryDocument, match func(*ast.Field) bool) *ast.QueryDocument {
	return (&transformer{src: doc, dropField: match}).run()
}

type visitState int

const (
	unvisited visitState = iota
	visiting
	visited
)

type transformer struct {
	src       *ast.QueryDocument
	rules     []DirectiveRule
	dropField func(*ast.Field) bool

	state     map[string]visitState
	fragments map[string]*ast.FragmentDefinition // nil value: fragment was pruned
}

func (t *transformer) run() *ast.QueryDocument {
	if t.src == nil {
		return nil
	}
	t.state = make(map[string]visitState)
	t.fragments = make(map[string]*ast.FragmentDefinition)

	out := *t.src
	out.Operations = nil
	out.Fragments = nil

	for _, op := range t.src.Operations {
		dirs, remove := t.directives(op.Directives)
		if remove {
			continue
		}
		sel := t.selectionSet(op.SelectionSet)
		if len(sel) == 0 {
			continue
		}
		o := *op
		o.Directives = dirs
		o.SelectionSet = sel
		out.Operations = append(out.Operations, &o)
	}
	if len(out.Operations) == 0 {
		return nil
	}

	reachable := make(map[string]struct{})
	for _, op := range out.Operations {
		t.collectSpreads(op.SelectionSet, reachable)
	}
	for _, frag := range t.src.Fragments {
		if _, ok := reachable[frag.Name]; !ok {
			continue
		}
		if def := t.fragments[frag.Name]; def != nil {
			out.Fragments = append(out.Fragments, def)
		}
	}

	for _, op := range out.Operations {
		op.VariableDefinitions = t.usedVariables(op)
	}
	return &out
}

// directives filters a directive list. The second result reports that the
// node carrying the list must be removed entirely.
func (t *transformer) directives(list ast.DirectiveList) (ast.DirectiveList, bool) {
	if len(list) == 0 || len(t.rules) == 0 {
		return list, false
	}
	var out ast.DirectiveList
	for _, d := range list {
		rule, ok := t.match(d)
		if !ok {
			out = append(out, d)
			continue
		}
		if rule.Remove {
			return nil, true
		}
	}
	return out, false
}

func (t *transformer) match(d *ast.Directive) (DirectiveRule, bool) {
	for _, r := range t.rules {
		if r.matches(d) {
			return r, true
		}
	}
	return DirectiveRule{}, false
}

func (t *transformer) selectionSet(set ast.SelectionSet) ast.SelectionSet {
	out := make(ast.SelectionSet, 0, len(set))
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			if t.dropField != nil && t.dropField(s) {
				continue
			}
			dirs, remove := t.directives(s.Directives)
			if remove {
				continue
			}
			f := *s
			f.Directives = dirs
			if len(s.SelectionSet) > 0 {
				f.SelectionSet = t.selectionSet(s.SelectionSet)
				if len(f.SelectionSet) == 0 {
					continue
				}
			}
			out = append(out, &f)

		case *ast.InlineFragment:
			dirs, remove := t.directives(s.Directives)
			if remove {
				continue
			}
			inner := t.selectionSet(s.SelectionSet)
			if len(inner) == 0 {
				continue
			}
			f := *s
			f.Directives = dirs
			f.SelectionSet = inner
			out = append(out, &f)

		case *ast.FragmentSpread:
			dirs, remove := t.directives(s.Directives)
			if remove {
				continue
			}
			if !t.keepFragment(s.Name) {
				continue
			}
			f := *s
			f.Directives = dirs
			out = append(out, &f)
		}
	}
	return out
}

// keepFragment transforms the named fragment once and reports whether
// spreads of it survive. Unknown fragments are kept untouched.
func (t *transformer) keepFragment(name string) bool {
	switch t.state[name] {
	case visiting:
		// Fragment cycles are invalid GraphQL; leave the spread alone.
		return true
	case visited:
		src := t.src.Fragments.ForName(name)
		return src == nil || t.fragments[name] != nil
	}

	src := t.src.Fragments.ForName(name)
	if src == nil {
		t.state[name] = visited
		return true
	}

	t.state[name] = visiting
	dirs, remove := t.directives(src.Directives)
	var sel ast.SelectionSet
	if !remove {
		sel = t.selectionSet(src.SelectionSet)
	}
	t.state[name] = visited

	if remove || len(sel) == 0 {
		t.fragments[name] = nil
		return false
	}
	def := *src
	def.Directives = dirs
	def.SelectionSet = sel
	t.fragments[name] = &def
	return true
}

func (t *transformer) collectSpreads(set ast.SelectionSet, into map[string]struct{}) {
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			t.collectSpreads(s.SelectionSet, into)
		case *ast.InlineFragment:
			t.collectSpreads(s.SelectionSet, into)
		case *ast.FragmentSpread:
			if _, seen := into[s.Name]; seen {
				continue
			}
			into[s.Name] = struct{}{}
			if def := t.fragments[s.Name]; def != nil {
				t.collectSpreads(def.SelectionSet, into)
			}
		}
	}
}

func (t *transformer) usedVariables(op *ast.OperationDefinition) ast.VariableDefinitionList {
	if len(op.VariableDefinitions) == 0 {
		return op.VariableDefinitions
	}

	used := make(map[string]struct{})
	collectDirectiveVars(op.Directives, used)
	t.collectSelectionVars(op.SelectionSet, used, make(map[string]struct{}))

	var out ast.VariableDefinitionList
	for _, def := range op.VariableDefinitions {
		if _, ok := used[def.Variable]; ok {
			out = append(out, def)
		}
	}
	return out
}

func (t *transformer) collectSelectionVars(set ast.SelectionSet, used, seenFragments map[string]struct{}) {
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			for _, arg := range s.Arguments {
				collectValueVars(arg.Value, used)
			}
			collectDirectiveVars(s.Directives, used)
			t.collectSelectionVars(s.SelectionSet, used, seenFragments)
		case *ast.InlineFragment:
			collectDirectiveVars(s.Directives, used)
			t.collectSelectionVars(s.SelectionSet, used, seenFragments)
		case *ast.FragmentSpread:
			collectDirectiveVars(s.Directives, used)
			if _, seen := seenFragments[s.Name]; seen {
				continue
			}
			seenFragments[s.Name] = struct{}{}
			def := t.fragments[s.Name]
			if def == nil {
				def = t.src.Fragments.ForName(s.Name)
			}
			if def != nil {
				collectDirectiveVars(def.Directives, used)
				t.collectSelectionVars(def.SelectionSet, used, seenFragments)
			}
		}
	}
}

func collectDirectiveVars(list ast.DirectiveList, used map[string]struct{}) {
	for _, d := range list {
		for _, arg := range d.Arguments {
			collectValueVars(arg.Value, used)
		}
	}
}

func collectValueVars(v *ast.Value, used map[string]struct{}) {
	if v == nil {
		return
	}
	if v.Kind == ast.Variable {
		used[v.Raw] = struct{}{}
	}
	for _, child := range v.Children {
		collectValueVars(child.Value, used)
	}
}
