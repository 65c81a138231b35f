// Package tessellate walks a design graph and produces triangle meshes
// through the extrusion pipeline. One mesh is produced per placed body.
package tessellate

import (
	"fmt"

	"github.com/chazu/roundex/pkg/extrude"
	"github.com/chazu/roundex/pkg/geom"
	"github.com/chazu/roundex/pkg/graph"
	"github.com/chazu/roundex/pkg/kernel"
	"go.uber.org/zap"
)

// Placed is a body solid moved into its final position.
type Placed struct {
	Name  string
	Node  graph.NodeID
	Solid kernel.Solid
}

// Option configures a walk.
type Option func(*walker)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *walker) {
		if l != nil {
			w.log = l
		}
	}
}

// frame is one transform node on the path from a root to a body.
type frame struct {
	translation geom.Vec3
	rotation    geom.Vec3
}

// transformStack accumulates transform frames during graph traversal.
type transformStack struct {
	frames []frame
}

func (ts *transformStack) push(td graph.TransformData) {
	var f frame
	if td.Translation != nil {
		f.translation = *td.Translation
	}
	if td.Rotation != nil {
		f.rotation = *td.Rotation
	}
	ts.frames = append(ts.frames, f)
}

func (ts *transformStack) pop() {
	if len(ts.frames) > 0 {
		ts.frames = ts.frames[:len(ts.frames)-1]
	}
}

// apply moves s through every frame, innermost first. Each frame rotates
// and then translates.
func (ts *transformStack) apply(k kernel.Kernel, s kernel.Solid) kernel.Solid {
	for i := len(ts.frames) - 1; i >= 0; i-- {
		f := ts.frames[i]
		if !f.rotation.IsZero() {
			s = k.Rotate(s, f.rotation.X, f.rotation.Y, f.rotation.Z)
		}
		if !f.translation.IsZero() {
			s = k.Translate(s, f.translation.X, f.translation.Y, f.translation.Z)
		}
	}
	return s
}

type walker struct {
	g   *graph.DesignGraph
	ex  *extrude.Extruder
	log *zap.Logger
	ts  transformStack
	out []Placed
}

// Collect walks the graph from its roots and builds every body it reaches,
// placed by the transforms above it. A graph without roots yields its
// bodies unplaced. The graph is never mutated.
func Collect(g *graph.DesignGraph, ex *extrude.Extruder, opts ...Option) ([]Placed, error) {
	if g == nil {
		return nil, nil
	}
	w := &walker{g: g, ex: ex, log: zap.NewNop()}
	for _, opt := range opts {
		opt(w)
	}

	if len(g.Roots) == 0 {
		for _, n := range g.Bodies() {
			if err := w.body(n); err != nil {
				return nil, fmt.Errorf("tessellate: %w", err)
			}
		}
		return w.out, nil
	}

	for _, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			continue
		}
		if err := w.walk(root); err != nil {
			return nil, fmt.Errorf("tessellate: error walking root %s: %w", rootID.Short(), err)
		}
	}
	return w.out, nil
}

// Tessellate builds every placed body and converts each to a mesh. Meshes
// carry the body's name, or its short ID when it has none.
func Tessellate(g *graph.DesignGraph, ex *extrude.Extruder, opts ...Option) ([]*kernel.Mesh, error) {
	placed, err := Collect(g, ex, opts...)
	if err != nil {
		return nil, err
	}

	k := ex.Kernel()
	meshes := make([]*kernel.Mesh, 0, len(placed))
	for _, p := range placed {
		mesh, err := k.ToMesh(p.Solid)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for body %s: %w", p.Name, err)
		}
		mesh.BodyName = p.Name
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// walk recursively traverses a node and its children, collecting bodies.
func (w *walker) walk(n *graph.Node) error {
	switch n.Kind {
	case graph.NodeSolid, graph.NodeShell, graph.NodeBeam:
		return w.body(n)

	case graph.NodeTransform:
		td, ok := n.Data.(graph.TransformData)
		if !ok {
			return fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		w.ts.push(td)
		defer w.ts.pop()
		return w.children(n)

	case graph.NodeGroup:
		return w.children(n)

	default:
		return fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

func (w *walker) children(n *graph.Node) error {
	for _, child := range w.g.Children(n) {
		if err := w.walk(child); err != nil {
			return err
		}
	}
	return nil
}

// body builds a body node and places it.
func (w *walker) body(n *graph.Node) error {
	s, err := Build(w.ex, n, w.g.Defaults)
	if err != nil {
		return err
	}

	name := n.Name
	if name == "" {
		name = n.ID.Short()
	}
	w.log.Debug("body built",
		zap.String("body", name),
		zap.Stringer("kind", n.Kind),
		zap.Int("depth", len(w.ts.frames)),
	)

	w.out = append(w.out, Placed{
		Name:  name,
		Node:  n.ID,
		Solid: w.ts.apply(w.ex.Kernel(), s),
	})
	return nil
}

// Build runs a single body node through the extruder on its own plane.
// Zero resolution and convexity fall back to the graph defaults.
func Build(ex *extrude.Extruder, n *graph.Node, d graph.GlobalDefaults) (kernel.Solid, error) {
	pick := func(v, def int) int {
		if v > 0 {
			return v
		}
		return def
	}

	var (
		s   kernel.Solid
		err error
	)
	switch data := n.Data.(type) {
	case graph.SolidData:
		res := pick(data.Resolution, d.Resolution)
		s, err = ex.Solid(data.Points.Points(), extrude.SolidParams{
			Plane:      data.Plane,
			Length:     data.Length,
			Center:     data.Center,
			R1:         data.R1,
			R2:         data.R2,
			Resolution: res,
			Convexity:  pick(data.Convexity, d.Convexity),
			Twist:      data.Twist,
			Slices:     data.Slices,
		})

	case graph.ShellData:
		res := pick(data.Resolution, d.Resolution)
		var kids []kernel.Outline
		for i, c := range data.Children {
			o, cerr := ex.Outline(c.Points(), res)
			if cerr != nil {
				return nil, fmt.Errorf("body %s: child %d: %w", n.ID.Short(), i, cerr)
			}
			kids = append(kids, o)
		}
		s, err = ex.Shell(data.Points.Points(), extrude.ShellParams{
			Plane:          data.Plane,
			Length:         data.Length,
			Center:         data.Center,
			InnerOffset:    data.InnerOffset,
			OuterOffset:    data.OuterOffset,
			R1:             data.R1,
			R2:             data.R2,
			MinOuterRadius: data.MinOuterRadius,
			MinInnerRadius: data.MinInnerRadius,
			Resolution:     res,
			Convexity:      pick(data.Convexity, d.Convexity),
			Children:       kids,
		})

	case graph.BeamData:
		s, err = ex.Beam(data.Path.Points(), extrude.BeamParams{
			Plane:       data.Plane,
			Length:      data.Length,
			Center:      data.Center,
			InnerOffset: data.InnerOffset,
			OuterOffset: data.OuterOffset,
			Mode:        data.Mode,
			StartAngle:  data.StartAngle,
			EndAngle:    data.EndAngle,
			MinRadius:   data.MinRadius,
			R1:          data.R1,
			R2:          data.R2,
			Resolution:  pick(data.Resolution, d.Resolution),
			Convexity:   pick(data.Convexity, d.Convexity),
		})

	default:
		return nil, fmt.Errorf("body node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}
	if err != nil {
		return nil, fmt.Errorf("body %s: %w", n.ID.Short(), err)
	}
	return s, nil
}
