// Package geometry holds the pure positioning rules used while editing:
// grid snapping and keeping elements inside page margins. Units are
// millimetres throughout.
package geometry

import (
	"math"

	"github.com/mithrel/folio/pkg/api"
)

const (
	DefaultGridSize      = 10
	DefaultSnapTolerance = 5
	MarginSnapTolerance  = 5
	// MinSize is the smallest width or height an element can be resized to.
	MinSize = 1
)

// Bounds is the usable area of a page once margins are removed.
type Bounds struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

var paperSizes = map[api.PageSize]api.Size{
	api.SizeA4:     {Width: 210, Height: 297},
	api.SizeA3:     {Width: 297, Height: 420},
	api.SizeLetter: {Width: 216, Height: 279},
	api.SizeLegal:  {Width: 216, Height: 356},
}

// Dimensions returns the page width and height for the settings, honouring
// orientation. Custom pages without a custom size fall back to A4.
func Dimensions(ps api.PageSettings) api.Size {
	sz, ok := paperSizes[ps.Size]
	if ps.Size == api.SizeCustom && ps.CustomSize != nil {
		sz, ok = *ps.CustomSize, true
	}
	if !ok {
		sz = paperSizes[api.SizeA4]
	}
	if ps.Orientation == api.Landscape {
		sz.Width, sz.Height = sz.Height, sz.Width
	}
	return sz
}

// BoundsFor returns the margin-respecting bounds of a page.
func BoundsFor(ps api.PageSettings) Bounds {
	sz := Dimensions(ps)
	return Bounds{
		MinX: ps.Margins.Left,
		MinY: ps.Margins.Top,
		MaxX: sz.Width - ps.Margins.Right,
		MaxY: sz.Height - ps.Margins.Bottom,
	}
}

func snapAxis(v, grid, tolerance float64) float64 {
	if grid <= 0 {
		return v
	}
	nearest := math.Round(v/grid) * grid
	if tolerance == 0 || math.Abs(v-nearest) <= tolerance {
		return nearest
	}
	return v
}

// Snap pulls each axis of p onto the grid independently. A zero tolerance
// always rounds; otherwise an axis moves only when within tolerance.
func Snap(p api.Position, grid, tolerance float64, enabled bool) api.Position {
	if !enabled {
		return p
	}
	return api.Position{X: snapAxis(p.X, grid, tolerance), Y: snapAxis(p.Y, grid, tolerance)}
}

func SnapX(x, grid, tolerance float64, enabled bool) float64 {
	if !enabled {
		return x
	}
	return snapAxis(x, grid, tolerance)
}

func SnapY(y, grid, tolerance float64, enabled bool) float64 {
	if !enabled {
		return y
	}
	return snapAxis(y, grid, tolerance)
}

// IsSnapped reports whether both axes lie within tolerance of a grid line.
func IsSnapped(p api.Position, grid, tolerance float64) bool {
	if grid <= 0 {
		return false
	}
	onGrid := func(v float64) bool {
		return math.Abs(v-math.Round(v/grid)*grid) <= tolerance
	}
	return onGrid(p.X) && onGrid(p.Y)
}

// NearestGridPoint rounds both axes to the grid.
func NearestGridPoint(p api.Position, grid float64) api.Position {
	return api.Position{X: snapAxis(p.X, grid, 0), Y: snapAxis(p.Y, grid, 0)}
}

// ClampToPageBounds moves p so an element of size s stays inside b.
func ClampToPageBounds(p api.Position, s api.Size, b Bounds) api.Position {
	maxX := math.Max(b.MinX, b.MaxX-s.Width)
	maxY := math.Max(b.MinY, b.MaxY-s.Height)
	return api.Position{
		X: math.Min(math.Max(p.X, b.MinX), maxX),
		Y: math.Min(math.Max(p.Y, b.MinY), maxY),
	}
}

// ClampSize limits a requested size for an element at pos so it never
// crosses the bounds, and never shrinks below MinSize.
func ClampSize(pos api.Position, requested api.Size, b Bounds) api.Size {
	availW := math.Max(MinSize, b.MaxX-pos.X)
	availH := math.Max(MinSize, b.MaxY-pos.Y)
	return api.Size{
		Width:  math.Min(math.Max(requested.Width, MinSize), availW),
		Height: math.Min(math.Max(requested.Height, MinSize), availH),
	}
}

// IsPositionValid reports whether an element at p with size s fits inside b.
func IsPositionValid(p api.Position, s api.Size, b Bounds) bool {
	return p.X >= b.MinX && p.Y >= b.MinY && p.X+s.Width <= b.MaxX && p.Y+s.Height <= b.MaxY
}

// SnapToMargins aligns element edges with the margin lines when they are
// within tolerance of them.
func SnapToMargins(p api.Position, s api.Size, b Bounds, tolerance float64) api.Position {
	out := p
	switch {
	case math.Abs(p.X-b.MinX) <= tolerance:
		out.X = b.MinX
	case math.Abs(p.X+s.Width-b.MaxX) <= tolerance:
		out.X = b.MaxX - s.Width
	}
	switch {
	case math.Abs(p.Y-b.MinY) <= tolerance:
		out.Y = b.MinY
	case math.Abs(p.Y+s.Height-b.MaxY) <= tolerance:
		out.Y = b.MaxY - s.Height
	}
	return out
}
