package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chazu/roundex/pkg/geom"
	"github.com/chazu/roundex/pkg/graph"
	"github.com/chazu/roundex/pkg/kernel"
	"github.com/chazu/roundex/pkg/plane"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms roundex Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: move-points -> move_points
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
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, kwPrefix...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Only when the hyphen sits between identifier characters (not a minus operator).
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

// sexpPoint wraps the raw components of (vec2 x y [r]).
type sexpPoint struct {
	raw []float64
}

func (p *sexpPoint) SexpString(ps *zygo.PrintState) string {
	parts := make([]string, len(p.raw))
	for i, c := range p.raw {
		parts[i] = fmt.Sprintf("%g", c)
	}
	return "(vec2 " + strings.Join(parts, " ") + ")"
}
func (p *sexpPoint) Type() *zygo.RegisteredType { return nil }

// sexpProfile wraps a normalized geom.Profile.
type sexpProfile struct {
	profile geom.Profile
}

func (p *sexpProfile) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(points <%d>)", len(p.profile))
}
func (p *sexpProfile) Type() *zygo.RegisteredType { return nil }

// sexpBody wraps an unnamed body returned from `solid`, `shell` or `beam`
// and consumed by `defbody`, `place` or `assembly`.
type sexpBody struct {
	kind graph.NodeKind
	data graph.NodeData
}

func (b *sexpBody) SexpString(ps *zygo.PrintState) string {
	sw, _ := graph.BodySweep(b.data)
	return fmt.Sprintf("(%s %s %g)", b.kind, sw.Plane, sw.Length)
}
func (b *sexpBody) Type() *zygo.RegisteredType { return nil }

// sexpNodeRef wraps a graph.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   graph.NodeID
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(noderef %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a geom.Vec3.
type sexpVec3 struct {
	vec geom.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
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

// only returns an error naming the first keyword not in allowed.
func (a kwArgs) only(op string, allowed ...string) error {
	ok := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		ok[k] = true
	}
	var unknown []string
	for k := range a.kw {
		if !ok[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("%s: unknown keyword :%s", op, unknown[0])
}

// getFloat sets *dst from keyword k if present.
func (a kwArgs) getFloat(op, k string, dst *float64) error {
	v, ok := a.kw[k]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", op, k, err)
	}
	*dst = f
	return nil
}

// getInt sets *dst from keyword k if present.
func (a kwArgs) getInt(op, k string, dst *int) error {
	v, ok := a.kw[k]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", op, k, err)
	}
	if f != float64(int(f)) {
		return fmt.Errorf("%s: %s: expected integer, got %g", op, k, f)
	}
	*dst = int(f)
	return nil
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

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean from a Sexp. A trailing flag keyword (nil) is true.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	if s == zygo.SexpNull {
		return true, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_open) and plain strings ("open").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toPlane converts "+X" ... "-Z" into a plane.Plane.
func toPlane(s zygo.Sexp) (plane.Plane, error) {
	name, err := toString(s)
	if err != nil {
		return plane.Invalid, err
	}
	return plane.Parse(name)
}

// toBeamMode converts a keyword or string such as :forward-only.
func toBeamMode(s zygo.Sexp) (kernel.BeamMode, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, err
	}
	return kernel.ParseBeamMode(name)
}

// toRawPoint extracts point components from (vec2 ...) or a numeric list.
func toRawPoint(s zygo.Sexp) ([]float64, error) {
	if p, ok := s.(*sexpPoint); ok {
		return p.raw, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, fmt.Errorf("expected point, got %T (%s)", s, s.SexpString(nil))
	}
	raw := make([]float64, len(items))
	for i, item := range items {
		f, err := toFloat64(item)
		if err != nil {
			return nil, fmt.Errorf("point component %d: %w", i, err)
		}
		raw[i] = f
	}
	return raw, nil
}

// toProfile accepts (points ...) or a list of points.
func toProfile(s zygo.Sexp) (geom.Profile, error) {
	if p, ok := s.(*sexpProfile); ok {
		return p.profile, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, fmt.Errorf("expected points, got %T (%s)", s, s.SexpString(nil))
	}
	return pointsFrom(items)
}

func pointsFrom(items []zygo.Sexp) (geom.Profile, error) {
	raw := make([][]float64, len(items))
	for i, item := range items {
		p, err := toRawPoint(item)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		raw[i] = p
	}
	return geom.NormalizeStrict(raw)
}

// toVec2 extracts a 2D vector from (vec2 x y).
func toVec2(s zygo.Sexp) (geom.Vec2, error) {
	raw, err := toRawPoint(s)
	if err != nil {
		return geom.Vec2{}, err
	}
	if len(raw) != 2 {
		return geom.Vec2{}, fmt.Errorf("expected 2 components, got %d", len(raw))
	}
	return geom.Vec2{X: raw[0], Y: raw[1]}, nil
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (geom.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return geom.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Body parameters
// ---------------------------------------------------------------------------

var sweepKeys = []string{"plane", "length", "center", "r1", "r2", "resolution", "convexity"}

// parseSweep reads the keywords shared by every body. The plane defaults to
// +Z; the length is required.
func parseSweep(op string, pa kwArgs) (graph.Sweep, error) {
	sw := graph.Sweep{Plane: plane.PlusZ}

	if v, ok := pa.kw["plane"]; ok {
		p, err := toPlane(v)
		if err != nil {
			return sw, fmt.Errorf("%s: plane: %w", op, err)
		}
		sw.Plane = p
	}
	if _, ok := pa.kw["length"]; !ok {
		return sw, fmt.Errorf("%s: :length is required", op)
	}
	if err := pa.getFloat(op, "length", &sw.Length); err != nil {
		return sw, err
	}
	if v, ok := pa.kw["center"]; ok {
		b, err := toBool(v)
		if err != nil {
			return sw, fmt.Errorf("%s: center: %w", op, err)
		}
		sw.Center = b
	}
	if err := pa.getFloat(op, "r1", &sw.R1); err != nil {
		return sw, err
	}
	if err := pa.getFloat(op, "r2", &sw.R2); err != nil {
		return sw, err
	}
	if err := pa.getInt(op, "resolution", &sw.Resolution); err != nil {
		return sw, err
	}
	if err := pa.getInt(op, "convexity", &sw.Convexity); err != nil {
		return sw, err
	}
	return sw, nil
}

// profileArg returns the profile given by keyword k or, failing that, the
// first positional argument.
func profileArg(op, k string, pa kwArgs) (geom.Profile, error) {
	v, ok := pa.kw[k]
	if !ok {
		if len(pa.positional) == 0 {
			return nil, fmt.Errorf("%s: :%s is required", op, k)
		}
		v = pa.positional[0]
	}
	p, err := toProfile(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, k, err)
	}
	return p, nil
}

func parseSolid(args []zygo.Sexp) (*sexpBody, error) {
	pa := parseArgs(args)
	if err := pa.only("solid", append(sweepKeys, "points", "twist", "slices")...); err != nil {
		return nil, err
	}
	sw, err := parseSweep("solid", pa)
	if err != nil {
		return nil, err
	}
	d := graph.SolidData{Sweep: sw}
	if d.Points, err = profileArg("solid", "points", pa); err != nil {
		return nil, err
	}
	if err := pa.getFloat("solid", "twist", &d.Twist); err != nil {
		return nil, err
	}
	if err := pa.getInt("solid", "slices", &d.Slices); err != nil {
		return nil, err
	}
	return &sexpBody{kind: graph.NodeSolid, data: d}, nil
}

func parseShell(args []zygo.Sexp) (*sexpBody, error) {
	pa := parseArgs(args)
	if err := pa.only("shell", append(sweepKeys, "points", "inner", "outer",
		"min-outer-radius", "min-inner-radius", "children")...); err != nil {
		return nil, err
	}
	sw, err := parseSweep("shell", pa)
	if err != nil {
		return nil, err
	}
	d := graph.ShellData{Sweep: sw}
	if d.Points, err = profileArg("shell", "points", pa); err != nil {
		return nil, err
	}
	for k, dst := range map[string]*float64{
		"inner":            &d.InnerOffset,
		"outer":            &d.OuterOffset,
		"min-outer-radius": &d.MinOuterRadius,
		"min-inner-radius": &d.MinInnerRadius,
	} {
		if err := pa.getFloat("shell", k, dst); err != nil {
			return nil, err
		}
	}
	if v, ok := pa.kw["children"]; ok {
		items, err := sexpListToSlice(v)
		if err != nil {
			return nil, fmt.Errorf("shell: children: %w", err)
		}
		for i, item := range items {
			c, err := toProfile(item)
			if err != nil {
				return nil, fmt.Errorf("shell: child %d: %w", i, err)
			}
			d.Children = append(d.Children, c)
		}
	}
	return &sexpBody{kind: graph.NodeShell, data: d}, nil
}

func parseBeam(args []zygo.Sexp) (*sexpBody, error) {
	pa := parseArgs(args)
	if err := pa.only("beam", append(sweepKeys, "path", "inner", "outer", "mode",
		"start-angle", "end-angle", "min-radius")...); err != nil {
		return nil, err
	}
	sw, err := parseSweep("beam", pa)
	if err != nil {
		return nil, err
	}
	d := graph.BeamData{Sweep: sw}
	if d.Path, err = profileArg("beam", "path", pa); err != nil {
		return nil, err
	}
	if err := pa.getFloat("beam", "inner", &d.InnerOffset); err != nil {
		return nil, err
	}
	if err := pa.getFloat("beam", "outer", &d.OuterOffset); err != nil {
		return nil, err
	}
	if err := pa.getFloat("beam", "min-radius", &d.MinRadius); err != nil {
		return nil, err
	}
	if v, ok := pa.kw["mode"]; ok {
		m, err := toBeamMode(v)
		if err != nil {
			return nil, fmt.Errorf("beam: mode: %w", err)
		}
		d.Mode = m
	}
	for k, dst := range map[string]**float64{"start-angle": &d.StartAngle, "end-angle": &d.EndAngle} {
		if _, ok := pa.kw[k]; !ok {
			continue
		}
		var a float64
		if err := pa.getFloat("beam", k, &a); err != nil {
			return nil, err
		}
		*dst = &a
	}
	return &sexpBody{kind: graph.NodeBeam, data: d}, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all roundex DSL builtins into a zygomys environment.
// The builtins operate on the provided DesignGraph, populating it during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, g *graph.DesignGraph) {
	// Anonymous node suffixes are per evaluation so IDs are deterministic.
	var anon int
	nextSuffix := func() string {
		anon++
		return fmt.Sprintf("_anon_%d", anon)
	}

	// addBody adds an anonymous body node and returns its reference.
	addBody := func(b *sexpBody) *sexpNodeRef {
		id := graph.NewNodeID(b.kind.String() + "/" + nextSuffix())
		g.AddNode(&graph.Node{ID: id, Kind: b.kind, Data: b.data})
		return &sexpNodeRef{id: id}
	}

	// toRef accepts a node reference or an unnamed body.
	toRef := func(s zygo.Sexp) (*sexpNodeRef, error) {
		switch v := s.(type) {
		case *sexpNodeRef:
			return v, nil
		case *sexpBody:
			return addBody(v), nil
		}
		return nil, fmt.Errorf("expected node reference or body, got %T (%s)", s, s.SexpString(nil))
	}

	// -----------------------------------------------------------------------
	// (vec2 10 0) or (vec2 10 0 2) with a corner radius
	// -----------------------------------------------------------------------
	env.AddFunction("vec2", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 && len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec2 requires 2 or 3 arguments, got %d", len(args))
		}
		raw := make([]float64, len(args))
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec2: argument %d: %w", i+1, err)
			}
			raw[i] = f
		}
		return &sexpPoint{raw: raw}, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: geom.Vec3{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (points (vec2 0 0) (vec2 10 0 2) [10 10] ...)
	// -----------------------------------------------------------------------
	env.AddFunction("points", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		p, err := pointsFrom(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("points: %w", err)
		}
		return &sexpProfile{profile: p}, nil
	})

	// -----------------------------------------------------------------------
	// (move-points pts :by (vec2 5 0) :rotate 90)
	// -----------------------------------------------------------------------
	env.AddFunction("move_points", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.only("move-points", "by", "rotate"); err != nil {
			return zygo.SexpNull, err
		}
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("move-points requires exactly one point list")
		}
		p, err := toProfile(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-points: %w", err)
		}

		var by geom.Vec2
		if v, ok := pa.kw["by"]; ok {
			if by, err = toVec2(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("move-points: by: %w", err)
			}
		}
		var deg float64
		if err := pa.getFloat("move-points", "rotate", &deg); err != nil {
			return zygo.SexpNull, err
		}

		return &sexpProfile{profile: geom.Transform(p, by, deg)}, nil
	})

	// -----------------------------------------------------------------------
	// (solid (points ...) :plane "+Z" :length 5 :r1 0 :r2 1)
	// -----------------------------------------------------------------------
	env.AddFunction("solid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		b, err := parseSolid(args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return b, nil
	})

	// -----------------------------------------------------------------------
	// (shell (points ...) :inner -2 :outer 0 :length 5 :children (list ...))
	// -----------------------------------------------------------------------
	env.AddFunction("shell", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		b, err := parseShell(args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return b, nil
	})

	// -----------------------------------------------------------------------
	// (beam (points ...) :inner 1 :outer -1 :mode :free-ends :length 3)
	// -----------------------------------------------------------------------
	env.AddFunction("beam", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		b, err := parseBeam(args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return b, nil
	})

	// -----------------------------------------------------------------------
	// (defbody "name" (solid ...))
	// -----------------------------------------------------------------------
	env.AddFunction("defbody", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("defbody requires a name and a body expression")
		}

		bodyName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defbody: name: %w", err)
		}
		if g.Lookup(bodyName) != nil {
			return zygo.SexpNull, fmt.Errorf("defbody: %q is already defined", bodyName)
		}

		body, ok := args[1].(*sexpBody)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("defbody: expected solid, shell or beam expression, got %T", args[1])
		}

		id := graph.NewNodeID(body.kind.String() + "/" + bodyName)
		g.AddNode(&graph.Node{
			ID:   id,
			Kind: body.kind,
			Name: bodyName,
			Data: body.data,
		})

		return &sexpNodeRef{id: id, name: bodyName}, nil
	})

	// -----------------------------------------------------------------------
	// (body "name")
	// -----------------------------------------------------------------------
	env.AddFunction("body", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("body requires a name argument")
		}

		bodyName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("body: name: %w", err)
		}

		n := g.Lookup(bodyName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("body: no body named %q", bodyName)
		}

		return &sexpNodeRef{id: n.ID, name: bodyName}, nil
	})

	// -----------------------------------------------------------------------
	// (place (body "rail") :at (vec3 0 0 19) :rotate (vec3 0 0 90))
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.only("place", "at", "rotate"); err != nil {
			return zygo.SexpNull, err
		}

		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("place requires a body reference as first argument")
		}

		child, err := toRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}

		td := graph.TransformData{}
		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: at: %w", err)
			}
			td.Translation = &vec
		}
		if v, ok := pa.kw["rotate"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: rotate: %w", err)
			}
			td.Rotation = &vec
		}

		label := child.name
		if label == "" {
			label = child.id.Short()
		}
		id := graph.NewNodeID("place/" + label + "/" + nextSuffix())

		g.AddNode(&graph.Node{
			ID:       id,
			Kind:     graph.NodeTransform,
			Children: []graph.NodeID{child.id},
			Data:     td,
		})

		return &sexpNodeRef{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (assembly "name" (place ...) (body "x") (solid ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("assembly", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("assembly requires a name argument")
		}

		asmName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("assembly: name: %w", err)
		}

		var children []graph.NodeID
		for i := 1; i < len(args); i++ {
			ref, err := toRef(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("assembly: child %d: %w", i, err)
			}
			children = append(children, ref.id)
		}

		id := graph.NewNodeID("assembly/" + asmName)
		g.AddNode(&graph.Node{
			ID:       id,
			Kind:     graph.NodeGroup,
			Name:     asmName,
			Children: children,
			Data:     graph.GroupData{},
		})
		g.AddRoot(id)

		return &sexpNodeRef{id: id, name: asmName}, nil
	})
}
