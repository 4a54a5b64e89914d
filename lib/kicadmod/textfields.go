package kicadmod

import (
	"github.com/xoviat/kfgen/lib/config"
	"github.com/xoviat/kfgen/lib/geom"
)

/*
AddTextFields places the reference and value above and below the
courtyard, and a second reference on the fab layer scaled to fit the
body. The fab reference shrinks until roughly four characters fit
across the body, clamped to the configured min and max.
*/
func AddTextFields(f *Footprint, cfg *config.GlobalConfig, courtyard geom.BoundingBox, body geom.Rect) {
	silk := cfg.TextSilk
	f.Append(&Text{
		Kind:      TextReference,
		Text:      "REF**",
		At:        geom.Vector2D{X: courtyard.Center().X, Y: courtyard.Top() - silk.SizeNom},
		Size:      geom.Vector2D{X: silk.SizeNom, Y: silk.SizeNom},
		Thickness: silk.SizeNom * silk.ThicknessRatio,
		Layer:     LayerFSilk,
	})
	f.Append(&Text{
		Kind:      TextValue,
		Text:      f.Name,
		At:        geom.Vector2D{X: courtyard.Center().X, Y: courtyard.Bottom() + silk.SizeNom},
		Size:      geom.Vector2D{X: silk.SizeNom, Y: silk.SizeNom},
		Thickness: silk.SizeNom * silk.ThicknessRatio,
		Layer:     LayerFFab,
	})

	fab := cfg.TextFab
	size := fabRefSize(body, fab)
	f.Append(&Text{
		Kind:      TextUser,
		Text:      "${REFERENCE}",
		At:        body.Center,
		Size:      geom.Vector2D{X: size, Y: size},
		Thickness: size * fab.ThicknessRatio,
		Layer:     LayerFFab,
	})
}

func fabRefSize(body geom.Rect, fab config.TextLayer) float64 {
	// a glyph is roughly as wide as its size, "REF**"-ish labels need
	// about four glyph widths
	size := body.Size.X / 4
	if body.Size.Y < size {
		size = body.Size.Y
	}
	if size > fab.SizeMax {
		size = fab.SizeMax
	}
	if size < fab.SizeMin {
		size = fab.SizeMin
	}
	return geom.RoundToGridNearest(size, 0.01)
}
