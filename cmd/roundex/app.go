package main

import (
	"fmt"

	"github.com/chazu/roundex/pkg/config"
	"github.com/chazu/roundex/pkg/engine"
	"github.com/chazu/roundex/pkg/extrude"
	"github.com/chazu/roundex/pkg/graph"
	"github.com/chazu/roundex/pkg/kernel/sdfx"
	"github.com/chazu/roundex/pkg/tessellate"
	"go.uber.org/zap"
)

// colorPalette is a default palette used to assign distinct colors to bodies.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App wires the engine, the extruder and the sdfx kernel together.
type App struct {
	cfg    *config.Config
	log    *zap.Logger
	engine *engine.Engine
	kernel *sdfx.SdfxKernel
	ex     *extrude.Extruder
}

// MeshData is the JSON-serializable mesh format written by render.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	BodyName string    `json:"bodyName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of evaluating a source file.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates an App from a loaded configuration.
func NewApp(cfg *config.Config, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	k := sdfx.New(
		sdfx.WithMeshCells(cfg.Mesh.Cells),
		sdfx.WithLogger(log.Named("sdfx")),
	)
	return &App{
		cfg: cfg,
		log: log,
		engine: engine.NewEngine(
			engine.WithTimeout(cfg.Eval.Timeout),
			engine.WithLogger(log.Named("engine")),
		),
		kernel: k,
		ex: extrude.New(k,
			extrude.WithDefaults(cfg.Geometry.Resolution, cfg.Geometry.Convexity),
			extrude.WithLogger(log.Named("extrude")),
		),
	}
}

// Check evaluates and validates source without building geometry.
func (a *App) Check(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
	a.evaluate(source, &result)
	return result
}

// Evaluate takes Lisp source and returns mesh data plus errors.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	g := a.evaluate(source, &result)
	if g == nil {
		return result
	}

	meshes, err := tessellate.Tessellate(g, a.ex, tessellate.WithLogger(a.log.Named("tessellate")))
	if err != nil {
		a.log.Warn("tessellation failed", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}

	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			BodyName: m.BodyName,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	return result
}

// ExportSTL evaluates source and writes the union of every placed body.
func (a *App) ExportSTL(source, path string) error {
	var result EvalResult
	g := a.evaluate(source, &result)
	if g == nil {
		if len(result.Errors) > 0 {
			return fmt.Errorf("%s", result.Errors[0].Message)
		}
		return fmt.Errorf("evaluation produced no graph")
	}

	placed, err := tessellate.Collect(g, a.ex, tessellate.WithLogger(a.log.Named("tessellate")))
	if err != nil {
		return err
	}
	if len(placed) == 0 {
		return fmt.Errorf("design has no bodies")
	}

	s := placed[0].Solid
	for _, p := range placed[1:] {
		s = a.kernel.Union(s, p.Solid)
	}
	a.log.Info("writing stl", zap.String("path", path), zap.Int("bodies", len(placed)))
	return a.kernel.ExportSTL(s, path)
}

// evaluate runs the engine and validation, filling result. It returns the
// graph with configured defaults applied, or nil on any error.
func (a *App) evaluate(source string, result *EvalResult) *graph.DesignGraph {
	res, err := a.engine.EvaluateAndValidate(source)
	if err != nil {
		a.log.Warn("evaluate fatal error", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return nil
	}
	for _, e := range res.Errors {
		result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
	}
	for _, w := range res.Warnings {
		msg := w.Message
		if !w.NodeID.IsZero() {
			msg = fmt.Sprintf("node %s: %s", w.NodeID.Short(), msg)
		}
		result.Warnings = append(result.Warnings, EvalErrorData{Message: msg})
	}
	if res.Graph == nil {
		return nil
	}

	res.Graph.Defaults.Resolution = a.cfg.Geometry.Resolution
	res.Graph.Defaults.Convexity = a.cfg.Geometry.Convexity
	return res.Graph
}
