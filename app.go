package main

import (
	"context"
	"log"

	"github.com/timschmidt/alumina-ui/pkg/design"
	"github.com/timschmidt/alumina-ui/pkg/engine"
	"github.com/timschmidt/alumina-ui/pkg/kernel"
	"github.com/timschmidt/alumina-ui/pkg/kernel/sdfx"
	"github.com/timschmidt/alumina-ui/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx    context.Context
	engine *engine.Engine
	kernel kernel.Kernel
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Meshes []MeshData      `json:"meshes"`
	Errors []EvalErrorData `json:"errors"`
}

// PortInfo describes one input port of a catalog kind for the frontend
// node finder.
type PortInfo struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	ConnectionOnly bool   `json:"connectionOnly"`
}

// NodeInfo describes one catalog kind.
type NodeInfo struct {
	Name     string     `json:"name"`
	Label    string     `json:"label"`
	Category string     `json:"category"`
	Inputs   []PortInfo `json:"inputs"`
	Outputs  []PortInfo `json:"outputs"`
}

// NewApp creates a new App with an engine and the sdfx kernel.
func NewApp() *App {
	return &App{
		engine: engine.NewEngine(),
		kernel: sdfx.New(),
	}
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// Evaluate takes Lisp source and returns mesh data + errors.
// This is the primary binding called by the frontend editor.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes: []MeshData{},
		Errors: []EvalErrorData{},
	}

	// Step 1: evaluate the Lisp source into a design graph.
	g, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Step 2: evaluate every root and tessellate. Healthy roots still
	// render when others fail, so errors and meshes can both be present.
	meshes, err := tessellate.Materialize(g, a.kernel)
	if err != nil {
		log.Printf("Materialize error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
	}

	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}

	return result
}

// Catalog returns the full node catalog for the frontend node finder.
func (a *App) Catalog() []NodeInfo {
	var infos []NodeInfo
	for _, tmpl := range design.AllTemplates() {
		sig := tmpl.Signature()
		info := NodeInfo{
			Name:     tmpl.String(),
			Label:    tmpl.Label(),
			Category: tmpl.Category(),
		}
		for _, in := range sig.Inputs {
			info.Inputs = append(info.Inputs, PortInfo{
				Name:           in.Name,
				Type:           in.Type.String(),
				ConnectionOnly: in.Kind == design.ConnectionOnly,
			})
		}
		for _, out := range sig.Outputs {
			info.Outputs = append(info.Outputs, PortInfo{
				Name: out.Name,
				Type: out.Type.String(),
			})
		}
		infos = append(infos, info)
	}
	return infos
}
