package graph

import (
	"fmt"

	"github.com/chazu/roundex/pkg/kernel"
)

// validateParams flags degenerate body parameters. The geometry engines
// decide what such bodies look like, so these are advisory only.
func validateParams(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning
	warn := func(id NodeID, format string, args ...interface{}) {
		warnings = append(warnings, ValidationWarning{NodeID: id, Message: fmt.Sprintf(format, args...)})
	}

	for _, node := range g.Nodes {
		sw, ok := BodySweep(node.Data)
		if !ok {
			continue
		}

		if sw.Length <= 0 {
			warn(node.ID, "length is %.4f, expected positive", sw.Length)
		}
		if sw.R1 < 0 || sw.R2 < 0 {
			warn(node.ID, "negative end fillet (r1 %.4f, r2 %.4f)", sw.R1, sw.R2)
		}
		if sw.Length > 0 && sw.R1+sw.R2 > sw.Length {
			warn(node.ID, "end fillets %.4f + %.4f exceed length %.4f", sw.R1, sw.R2, sw.Length)
		}

		switch d := node.Data.(type) {
		case SolidData:
			if len(d.Points) < 3 {
				warn(node.ID, "profile has %d points, need at least 3", len(d.Points))
			}
			if d.Twist != 0 && (d.R1 != 0 || d.R2 != 0) {
				warn(node.ID, "twist combined with end fillets is not supported by every kernel")
			}
		case ShellData:
			if len(d.Points) < 3 {
				warn(node.ID, "profile has %d points, need at least 3", len(d.Points))
			}
			switch {
			case d.OuterOffset == d.InnerOffset:
				warn(node.ID, "inner and outer offsets are both %.4f, wall is empty", d.InnerOffset)
			case d.OuterOffset < d.InnerOffset:
				warn(node.ID, "outer offset %.4f is inside inner offset %.4f, offsets are swapped", d.OuterOffset, d.InnerOffset)
			}
			if d.MinOuterRadius < 0 || d.MinInnerRadius < 0 {
				warn(node.ID, "negative minimum corner radius")
			}
		case BeamData:
			if len(d.Path) < 2 {
				warn(node.ID, "path has %d points, need at least 2", len(d.Path))
			}
			// Beam offsets may lie on either side of the path in any order.
			if d.Mode != kernel.BeamForwardOnly && d.InnerOffset == d.OuterOffset {
				warn(node.ID, "inner and outer offsets are both %.4f, beam has no width", d.InnerOffset)
			}
		}
	}

	return warnings
}
