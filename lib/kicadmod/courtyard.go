package kicadmod

import (
	"github.com/xoviat/kfgen/lib/geom"

	"github.com/xoviat/kfgen/lib/config"
)

/*
Courtyard draws the courtyard rectangle around the union of the copper
and fab extents, offset outward and snapped outward to the courtyard
grid.
*/
func Courtyard(f *Footprint, cfg *config.GlobalConfig, offset float64) geom.BoundingBox {
	bb := f.CopperBoundingBox()
	bb.IncludeBox(f.BoundingBoxOnLayer(LayerFFab))
	grid := cfg.CourtyardGrid
	out := geom.BoundingBox{}
	out.IncludePoint(geom.Vector2D{
		X: geom.RoundToGridDown(bb.Min.X-offset, grid, 1e-7),
		Y: geom.RoundToGridDown(bb.Min.Y-offset, grid, 1e-7),
	})
	out.IncludePoint(geom.Vector2D{
		X: geom.RoundToGridUp(bb.Max.X+offset, grid, 1e-7),
		Y: geom.RoundToGridUp(bb.Max.Y+offset, grid, 1e-7),
	})
	f.Append(&RectOutline{
		Rect:  geom.Rect{Center: out.Center(), Size: out.Size()},
		Layer: LayerFCourtyard,
		Width: cfg.CourtyardLineWidth,
	})
	return out
}
