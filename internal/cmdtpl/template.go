// Package cmdtpl renders command templates against the resolved package
// sets and tokenizes the result into an executable argument vector.
//
// The template language is a small subset of the familiar brace syntax:
// {{ name }} substitutes a variable, and {% for x in name %} ... {% endfor %}
// iterates a list. Exactly three top-level variables exist: packages,
// excludes, and args. Referencing anything else is a hard error; the
// template is contractual with the tool's output shape, so an unknown
// name means a misconfiguration, not an empty value.
package cmdtpl

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrUnsupportedVariable is returned when a template references a name
// outside the packages/excludes/args allow-list.
var ErrUnsupportedVariable = errors.New("unsupported variable")

// ErrEmptyCommand is returned when a rendered template contains no
// program name.
var ErrEmptyCommand = errors.New("rendered command is empty")

// Bindings holds the values a template may reference.
type Bindings struct {
	// Packages is the affected package name set, in its deterministic
	// output order.
	Packages []string
	// Excludes is the complement: every workspace package not affected.
	Excludes []string
	// Args is the extra-argument list passed through unchanged.
	Args []string
}

func (b Bindings) lookup(name string) ([]string, bool) {
	switch name {
	case "packages":
		return b.Packages, true
	case "excludes":
		return b.Excludes, true
	case "args":
		return b.Args, true
	}
	return nil, false
}

// node is one parsed template element.
type node interface {
	// variables accumulates free variable names, excluding names bound by
	// an enclosing for-loop.
	variables(bound map[string]bool, out map[string]bool)
	render(sb *strings.Builder, scope map[string][]string) error
}

// textNode is literal template text.
type textNode string

func (t textNode) variables(map[string]bool, map[string]bool) {}

func (t textNode) render(sb *strings.Builder, _ map[string][]string) error {
	sb.WriteString(string(t))
	return nil
}

// varNode is a {{ name }} substitution. A list value renders
// space-joined; a loop variable renders as the current element.
type varNode string

func (v varNode) variables(bound, out map[string]bool) {
	if !bound[string(v)] {
		out[string(v)] = true
	}
}

func (v varNode) render(sb *strings.Builder, scope map[string][]string) error {
	values, ok := scope[string(v)]
	if !ok {
		return fmt.Errorf("%w `%s`", ErrUnsupportedVariable, string(v))
	}
	sb.WriteString(strings.Join(values, " "))
	return nil
}

// forNode is a {% for x in name %} ... {% endfor %} loop.
type forNode struct {
	loopVar string
	source  string
	body    []node
}

func (f *forNode) variables(bound, out map[string]bool) {
	if !bound[f.source] {
		out[f.source] = true
	}
	inner := map[string]bool{f.loopVar: true}
	for k := range bound {
		inner[k] = true
	}
	for _, n := range f.body {
		n.variables(inner, out)
	}
}

func (f *forNode) render(sb *strings.Builder, scope map[string][]string) error {
	values, ok := scope[f.source]
	if !ok {
		return fmt.Errorf("%w `%s`", ErrUnsupportedVariable, f.source)
	}
	for _, v := range values {
		inner := make(map[string][]string, len(scope)+1)
		for k, vals := range scope {
			inner[k] = vals
		}
		inner[f.loopVar] = []string{v}
		for _, n := range f.body {
			if err := n.render(sb, inner); err != nil {
				return err
			}
		}
	}
	return nil
}

// Template is a parsed command template.
type Template struct {
	nodes []node
}

// Parse parses src once. Parse errors name the offending token; variable
// validation happens at render time against the referenced set.
func Parse(src string) (*Template, error) {
	p := &parser{src: src}
	nodes, err := p.parseNodes(false)
	if err != nil {
		return nil, err
	}
	return &Template{nodes: nodes}, nil
}

// Variables returns the free variable names the template references,
// in no particular order.
func (t *Template) Variables() map[string]bool {
	out := make(map[string]bool)
	for _, n := range t.nodes {
		n.variables(map[string]bool{}, out)
	}
	return out
}

// Render validates every referenced variable against the allow-list,
// binds it, and expands the template to a single string.
func (t *Template) Render(b Bindings) (string, error) {
	scope := make(map[string][]string, 3)
	for name := range t.Variables() {
		values, ok := b.lookup(name)
		if !ok {
			return "", fmt.Errorf("%w `%s`", ErrUnsupportedVariable, name)
		}
		scope[name] = values
	}

	var sb strings.Builder
	for _, n := range t.nodes {
		if err := n.render(&sb, scope); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// parser scans src for {{ ... }} and {% ... %} markers.
type parser struct {
	src string
	pos int
}

// parseNodes consumes nodes until end of input or, when insideFor is
// set, until the matching {% endfor %}.
func (p *parser) parseNodes(insideFor bool) ([]node, error) {
	var nodes []node
	for p.pos < len(p.src) {
		next := p.findMarker()
		if next < 0 {
			nodes = append(nodes, textNode(p.src[p.pos:]))
			p.pos = len(p.src)
			break
		}
		if next > p.pos {
			nodes = append(nodes, textNode(p.src[p.pos:next]))
			p.pos = next
		}

		switch {
		case strings.HasPrefix(p.src[p.pos:], "{{"):
			name, err := p.parseSubstitution()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, varNode(name))

		case strings.HasPrefix(p.src[p.pos:], "{%"):
			words, err := p.parseTag()
			if err != nil {
				return nil, err
			}
			switch {
			case len(words) == 1 && words[0] == "endfor":
				if !insideFor {
					return nil, fmt.Errorf("unexpected {%% endfor %%} at offset %d", p.pos)
				}
				return nodes, nil
			case len(words) == 4 && words[0] == "for" && words[2] == "in":
				if !isIdent(words[1]) || !isIdent(words[3]) {
					return nil, fmt.Errorf("malformed for tag {%% %s %%}", strings.Join(words, " "))
				}
				body, err := p.parseNodes(true)
				if err != nil {
					return nil, err
				}
				nodes = append(nodes, &forNode{loopVar: words[1], source: words[3], body: body})
			default:
				return nil, fmt.Errorf("unsupported tag {%% %s %%}", strings.Join(words, " "))
			}
		}
	}
	if insideFor {
		return nil, errors.New("unterminated for loop: missing {% endfor %}")
	}
	return nodes, nil
}

// findMarker returns the offset of the next {{ or {% marker at or after
// the current position, or -1.
func (p *parser) findMarker() int {
	for i := p.pos; i+1 < len(p.src); i++ {
		if p.src[i] == '{' && (p.src[i+1] == '{' || p.src[i+1] == '%') {
			return i
		}
	}
	return -1
}

// parseSubstitution consumes "{{ ident }}" and returns the identifier.
func (p *parser) parseSubstitution() (string, error) {
	end := strings.Index(p.src[p.pos:], "}}")
	if end < 0 {
		return "", fmt.Errorf("unterminated substitution at offset %d", p.pos)
	}
	inner := strings.TrimSpace(p.src[p.pos+2 : p.pos+end])
	if !isIdent(inner) {
		return "", fmt.Errorf("invalid substitution `{{ %s }}`", inner)
	}
	p.pos += end + 2
	return inner, nil
}

// parseTag consumes "{% ... %}" and returns its space-separated words.
func (p *parser) parseTag() ([]string, error) {
	end := strings.Index(p.src[p.pos:], "%}")
	if end < 0 {
		return nil, fmt.Errorf("unterminated tag at offset %d", p.pos)
	}
	inner := strings.TrimSpace(p.src[p.pos+2 : p.pos+end])
	p.pos += end + 2
	return strings.Fields(inner), nil
}

// isIdent reports whether s is a plain identifier: letters, digits, and
// underscores, not starting with a digit.
func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case unicode.IsDigit(r) && i > 0:
		default:
			return false
		}
	}
	return true
}
