package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mithrel/folio/pkg/api"
)

func pos(x, y float64) api.Position { return api.Position{X: x, Y: y} }

func TestSnap(t *testing.T) {
	cases := []struct {
		name      string
		in        api.Position
		tolerance float64
		enabled   bool
		want      api.Position
	}{
		{"zero tolerance rounds", pos(12, 18), 0, true, pos(10, 20)},
		{"zero tolerance rounds half up", pos(5, 5), 0, true, pos(10, 10)},
		{"both axes within tolerance", pos(7, 8), 3, true, pos(10, 10)},
		{"axes evaluated independently", pos(6, 12), 3, true, pos(6, 10)},
		{"disabled is identity", pos(12, 18), 0, false, pos(12, 18)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Snap(tc.in, 10, tc.tolerance, tc.enabled))
		})
	}
}

func TestSnapNonPositiveGrid(t *testing.T) {
	assert.Equal(t, pos(13, 17), Snap(pos(13, 17), 0, 0, true))
	assert.False(t, IsSnapped(pos(0, 0), 0, 1))
}

func TestSingleAxisSnap(t *testing.T) {
	assert.Equal(t, 10.0, SnapX(8, 10, 3, true))
	assert.Equal(t, 6.0, SnapY(6, 10, 3, true))
	assert.Equal(t, 8.0, SnapX(8, 10, 3, false))
}

func TestIsSnappedIgnoresEnabledFlag(t *testing.T) {
	assert.True(t, IsSnapped(pos(9, 21), 10, 1))
	assert.False(t, IsSnapped(pos(9, 25), 10, 1))
	assert.Equal(t, pos(10, 30), NearestGridPoint(pos(11, 26), 10))
}

func TestDimensions(t *testing.T) {
	a4 := api.DefaultPageSettings()
	assert.Equal(t, api.Size{Width: 210, Height: 297}, Dimensions(a4))

	land := a4
	land.Orientation = api.Landscape
	assert.Equal(t, api.Size{Width: 297, Height: 210}, Dimensions(land))

	custom := a4
	custom.Size = api.SizeCustom
	custom.CustomSize = &api.Size{Width: 100, Height: 150}
	assert.Equal(t, api.Size{Width: 100, Height: 150}, Dimensions(custom))

	custom.CustomSize = nil
	assert.Equal(t, api.Size{Width: 210, Height: 297}, Dimensions(custom))

	b := BoundsFor(a4)
	assert.Equal(t, Bounds{MinX: 20, MinY: 20, MaxX: 190, MaxY: 277}, b)
	assert.Equal(t, 170.0, b.Width())
}

func TestClampToPageBounds(t *testing.T) {
	b := Bounds{MinX: 10, MinY: 10, MaxX: 100, MaxY: 100}
	s := api.Size{Width: 30, Height: 20}

	assert.Equal(t, pos(10, 10), ClampToPageBounds(pos(-5, 0), s, b))
	assert.Equal(t, pos(70, 80), ClampToPageBounds(pos(95, 99), s, b))
	assert.Equal(t, pos(40, 50), ClampToPageBounds(pos(40, 50), s, b))

	// wider than the page: pinned to the left margin
	assert.Equal(t, pos(10, 10), ClampToPageBounds(pos(50, 10), api.Size{Width: 200, Height: 5}, b))
}

func TestClampSize(t *testing.T) {
	b := Bounds{MaxX: 40, MaxY: 100}

	got := ClampSize(pos(0, 0), api.Size{Width: 100, Height: 50}, b)
	assert.Equal(t, api.Size{Width: 40, Height: 50}, got)

	got = ClampSize(pos(0, 0), api.Size{Width: 0, Height: -3}, b)
	assert.Equal(t, api.Size{Width: MinSize, Height: MinSize}, got)
}

func TestIsPositionValid(t *testing.T) {
	b := BoundsFor(api.DefaultPageSettings())
	assert.True(t, IsPositionValid(pos(20, 20), api.Size{Width: 50, Height: 50}, b))
	assert.False(t, IsPositionValid(pos(19, 20), api.Size{Width: 50, Height: 50}, b))
	assert.False(t, IsPositionValid(pos(150, 20), api.Size{Width: 50, Height: 50}, b))
}

func TestSnapToMargins(t *testing.T) {
	b := Bounds{MinX: 20, MinY: 20, MaxX: 190, MaxY: 277}
	s := api.Size{Width: 50, Height: 30}

	assert.Equal(t, pos(20, 20), SnapToMargins(pos(23, 17), s, b, MarginSnapTolerance))
	assert.Equal(t, pos(140, 247), SnapToMargins(pos(138, 250), s, b, MarginSnapTolerance))
	assert.Equal(t, pos(80, 100), SnapToMargins(pos(80, 100), s, b, MarginSnapTolerance))
}
