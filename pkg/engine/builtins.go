package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/timschmidt/alumina-ui/pkg/design"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms script source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: schwarz-p -> schwarz_p
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpPortRef wraps a node's primary output port so node forms can be
// nested and assigned to variables.
type sexpPortRef struct {
	node design.NodeID
	out  design.OutputID
}

func (p *sexpPortRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(node %s)", p.node)
}
func (p *sexpPortRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a design.Vec3.
type sexpVec3 struct {
	vec design.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builtinName converts a catalog kind name to the underscore form zygomys
// accepts as an identifier; the preprocessor rewrites kebab-case calls in
// source to match.
func builtinName(t design.Template) string {
	return strings.ReplaceAll(t.String(), "-", "_")
}

// registerBuiltins installs one builtin per catalog kind into a zygomys
// environment, plus the vec3 constructor. Each node form instantiates a
// node in g: positional arguments feed the kind's connection-only ports
// in signature order, and keyword arguments bind ports by name, either
// as connections (node references) or inline constants (numbers, vec3).
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens are converted to recognizable
// string literals.
func registerBuiltins(env *zygo.Zlisp, g *design.Graph) {
	for _, tmpl := range design.AllTemplates() {
		tmpl := tmpl
		env.AddFunction(builtinName(tmpl), func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			ref, err := buildNode(g, tmpl, args)
			if err != nil {
				return zygo.SexpNull, err
			}
			return ref, nil
		})
	}

	// (vec3 1 2 3)
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var v design.Vec3
		for i, dst := range []*float64{&v.X, &v.Y, &v.Z} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: component %d: %w", i, err)
			}
			*dst = f
		}
		return &sexpVec3{vec: v}, nil
	})
}

// buildNode instantiates one catalog node and wires its arguments.
func buildNode(g *design.Graph, tmpl design.Template, args []zygo.Sexp) (*sexpPortRef, error) {
	node := g.AddNode(tmpl)
	pa := parseArgs(args)

	// Positional arguments fill connection-only ports in order.
	pos := 0
	for _, port := range node.Inputs {
		if port.Kind != design.ConnectionOnly || pos >= len(pa.positional) {
			continue
		}
		if err := bindPort(g, node, port, pa.positional[pos]); err != nil {
			return nil, fmt.Errorf("%s: %w", tmpl, err)
		}
		pos++
	}
	if pos < len(pa.positional) {
		return nil, fmt.Errorf("%s: %d positional arguments for %d geometry inputs",
			tmpl, len(pa.positional), pos)
	}

	// Keyword arguments bind any port by name.
	for name, arg := range pa.kw {
		port := matchPort(node, name)
		if port == nil {
			return nil, fmt.Errorf("%s: no input named %q", tmpl, name)
		}
		if err := bindPort(g, node, port, arg); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", tmpl, name, err)
		}
	}

	return &sexpPortRef{node: node.ID, out: node.Outputs[0].ID}, nil
}

// matchPort finds a node input by keyword name, tolerating the
// underscore form the preprocessor may have produced.
func matchPort(node *design.Node, name string) *design.InputPort {
	normalized := strings.ReplaceAll(name, "-", "_")
	for _, port := range node.Inputs {
		if strings.EqualFold(port.Name, name) || strings.EqualFold(port.Name, normalized) {
			return port
		}
	}
	return nil
}

// bindPort wires one argument to an input port: node references become
// edges, numbers and vec3 values become inline constants.
func bindPort(g *design.Graph, node *design.Node, port *design.InputPort, arg zygo.Sexp) error {
	switch v := arg.(type) {
	case *sexpPortRef:
		return g.Connect(v.out, port.ID)
	}
	if port.Kind == design.ConnectionOnly {
		return fmt.Errorf("input %q needs a node reference, got %T (%s)",
			port.Name, arg, arg.SexpString(nil))
	}
	switch v := arg.(type) {
	case *sexpVec3:
		return g.SetConstant(port.ID, design.Vector3Value(v.vec))
	case *zygo.SexpInt, *zygo.SexpFloat:
		f, err := toFloat64(arg)
		if err != nil {
			return err
		}
		return g.SetConstant(port.ID, design.ScalarValue(f))
	}
	return fmt.Errorf("expected node reference, number or vec3, got %T (%s)",
		arg, arg.SexpString(nil))
}
