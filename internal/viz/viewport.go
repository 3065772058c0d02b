package viz

import (
	"math"

	"github.com/san-kum/graphsim/internal/force"
)

// Viewport maps world coordinates to canvas sub-pixels with one uniform
// scale, centring the layout.
type Viewport struct {
	minX, minY float64
	scale      float64
	offX, offY float64
}

// FitViewport sizes a viewport so every node circle fits inside a
// subW x subH area with pad sub-pixels of border.
func FitViewport(nodes []force.Node, subW, subH, pad int) Viewport {
	if len(nodes) == 0 {
		return Viewport{scale: 1, offX: float64(subW) / 2, offY: float64(subH) / 2}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		minX = math.Min(minX, n.X-n.Radius)
		minY = math.Min(minY, n.Y-n.Radius)
		maxX = math.Max(maxX, n.X+n.Radius)
		maxY = math.Max(maxY, n.Y+n.Radius)
	}
	w, h := maxX-minX, maxY-minY
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	availW := float64(subW - 2*pad)
	availH := float64(subH - 2*pad)
	if availW < 1 {
		availW = 1
	}
	if availH < 1 {
		availH = 1
	}
	scale := math.Min(availW/w, availH/h)
	return Viewport{
		minX:  minX,
		minY:  minY,
		scale: scale,
		offX:  float64(pad) + (availW-w*scale)/2,
		offY:  float64(pad) + (availH-h*scale)/2,
	}
}

func (v Viewport) Project(x, y float64) (int, int) {
	return int(math.Round((x-v.minX)*v.scale + v.offX)),
		int(math.Round((y-v.minY)*v.scale + v.offY))
}

// Length converts a world distance to sub-pixels.
func (v Viewport) Length(d float64) int {
	return int(math.Round(d * v.scale))
}

func (v Viewport) Scale() float64 { return v.scale }
