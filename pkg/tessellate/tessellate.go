// Package tessellate turns evaluated design graphs into render meshes.
// Each graph root becomes one mesh; failures on one root do not stop the
// others.
package tessellate

import (
	"errors"
	"fmt"

	"github.com/timschmidt/alumina-ui/pkg/design"
	"github.com/timschmidt/alumina-ui/pkg/kernel"
)

// Materialize evaluates every mesh-typed root of g against k and
// tessellates the results. Sketch-typed roots are skipped: they have no
// solid to mesh. The returned error joins the per-root failures; meshes
// for the roots that succeeded are returned either way.
func Materialize(g *design.Graph, k kernel.Kernel) ([]*kernel.Mesh, error) {
	ev := design.NewEvaluator(k)

	var meshes []*kernel.Mesh
	var errs []error

	for _, root := range g.Roots() {
		port := g.Output(root)
		if port.Type != design.MeshType {
			continue
		}

		solid, err := ev.Evaluate(g, root)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		mesh, err := k.ToMesh(solid)
		if err != nil {
			errs = append(errs, fmt.Errorf("tessellating %s: %w", root, err))
			continue
		}
		mesh.PartName = partName(g, root)
		meshes = append(meshes, mesh)
	}

	return meshes, errors.Join(errs...)
}

// partName labels a mesh by its producing node.
func partName(g *design.Graph, root design.OutputID) string {
	port := g.Output(root)
	node := g.Node(port.Node)
	if len(node.Outputs) > 1 {
		return fmt.Sprintf("%s.%s", node.ID, port.Name)
	}
	return string(node.ID)
}
