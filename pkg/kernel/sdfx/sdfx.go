// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"errors"
	"fmt"
	"math"
	"runtime/debug"

	"github.com/chazu/roundex/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// ErrUnsupported is returned for parameter combinations sdfx cannot build.
var ErrUnsupported = errors.New("unsupported by sdfx kernel")

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// defaultFacets is the corner facet count used when no resolution is given.
const defaultFacets = 10

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// sdfxOutline wraps an sdf.SDF2 to implement kernel.Outline.
type sdfxOutline struct {
	s sdf.SDF2
}

// BoundingBox returns the axis-aligned bounding rectangle.
func (o *sdfxOutline) BoundingBox() (min, max [2]float64) {
	bb := o.s.BoundingBox()
	min = [2]float64{bb.Min.X, bb.Min.Y}
	max = [2]float64{bb.Max.X, bb.Max.Y}
	return min, max
}

// shapeError carries a panic raised inside sdfx back as an error.
type shapeError struct {
	panicObj interface{}
	stack    string
}

func (e *shapeError) Error() string {
	return fmt.Sprintf("sdfx: %v", e.panicObj)
}

// recoverShape converts a panic from an sdfx constructor into *err.
// It must be deferred directly.
func recoverShape(err *error) {
	if r := recover(); r != nil {
		*err = &shapeError{panicObj: r, stack: string(debug.Stack())}
	}
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	meshCells int
	log       *zap.Logger
}

// Option configures an SdfxKernel.
type Option func(*SdfxKernel)

// WithMeshCells sets the marching cubes cell count along the longest axis.
func WithMeshCells(n int) Option {
	return func(k *SdfxKernel) {
		if n > 0 {
			k.meshCells = n
		}
	}
}

// WithLogger sets the logger used for tessellation diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(k *SdfxKernel) {
		if l != nil {
			k.log = l
		}
	}
}

// New returns a new SdfxKernel.
func New(opts ...Option) *SdfxKernel {
	k := &SdfxKernel{
		meshCells: defaultMeshCells,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// unwrapOutline extracts the sdf.SDF2 behind an outline built by this kernel.
func unwrapOutline(o kernel.Outline) (sdf.SDF2, error) {
	so, ok := o.(*sdfxOutline)
	if !ok || so == nil {
		return nil, fmt.Errorf("%w: outline of type %T", ErrUnsupported, o)
	}
	return so.s, nil
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	sdf3 := unwrap(s)

	renderer := render.NewMarchingCubesUniform(k.meshCells)
	triangles := render.ToTriangles(sdf3, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	k.log.Debug("tessellated solid",
		zap.Int("cells", k.meshCells),
		zap.Int("triangles", numTri),
	)

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

// ExportSTL renders a solid with marching cubes and writes it to path.
func (k *SdfxKernel) ExportSTL(s kernel.Solid, path string) error {
	sol, ok := s.(*sdfxSolid)
	if !ok {
		return fmt.Errorf("%w: solid of type %T", ErrUnsupported, s)
	}
	render.ToSTL(sol.s, path, render.NewMarchingCubesUniform(k.meshCells))
	return nil
}
