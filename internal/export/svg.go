// Package export renders layouts and run traces as standalone SVG documents.
package export

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/san-kum/graphsim/internal/force"
	"github.com/san-kum/graphsim/internal/metrics"
)

const (
	DefaultNodeColor = "#6366f1"
	DefaultLinkColor = "#4b5563"
	background       = "#0a0a0a"
)

// LayoutOptions controls LayoutToSVG. Colors maps node ids to fill colors;
// nodes without an entry use NodeColor.
type LayoutOptions struct {
	Width, Height int
	Labels        bool
	NodeColor     string
	LinkColor     string
	Colors        map[string]string
}

func (o *LayoutOptions) defaults() {
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Height <= 0 {
		o.Height = 600
	}
	if o.NodeColor == "" {
		o.NodeColor = DefaultNodeColor
	}
	if o.LinkColor == "" {
		o.LinkColor = DefaultLinkColor
	}
}

// LayoutToSVG draws every node as a circle of its simulated radius and every
// resolvable link as a line. The layout is scaled uniformly to fit the
// document with a 5% margin.
func LayoutToSVG(nodes []force.Node, links []force.Link, opts LayoutOptions) string {
	opts.defaults()
	w, h := float64(opts.Width), float64(opts.Height)

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		minX = math.Min(minX, n.X-n.Radius)
		minY = math.Min(minY, n.Y-n.Radius)
		maxX = math.Max(maxX, n.X+n.Radius)
		maxY = math.Max(maxY, n.Y+n.Radius)
	}
	if len(nodes) == 0 {
		minX, minY, maxX, maxY = 0, 0, 1, 1
	}
	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	scale := math.Min(w*0.9/rangeX, h*0.9/rangeY)
	offX := (w - rangeX*scale) / 2
	offY := (h - rangeY*scale) / 2
	project := func(x, y float64) (float64, float64) {
		return (x-minX)*scale + offX, (y-minY)*scale + offY
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, opts.Width, opts.Height, opts.Width, opts.Height, background))

	index := make(map[string]int, len(nodes))
	for i := range nodes {
		index[nodes[i].ID] = i
	}
	sb.WriteString(fmt.Sprintf(`<g stroke="%s" stroke-width="1.5">
`, opts.LinkColor))
	for _, l := range links {
		si, okS := index[l.Source]
		ti, okT := index[l.Target]
		if !okS || !okT {
			continue
		}
		x1, y1 := project(nodes[si].X, nodes[si].Y)
		x2, y2 := project(nodes[ti].X, nodes[ti].Y)
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
`, x1, y1, x2, y2))
	}
	sb.WriteString("</g>\n<g>\n")

	for _, n := range nodes {
		cx, cy := project(n.X, n.Y)
		fill := opts.NodeColor
		if c, ok := opts.Colors[n.ID]; ok && c != "" {
			fill = c
		}
		sb.WriteString(fmt.Sprintf(`<circle id="%s" cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, html.EscapeString(n.ID), cx, cy, n.Radius*scale, html.EscapeString(fill)))
	}
	sb.WriteString("</g>\n")

	if opts.Labels {
		sb.WriteString(`<g fill="#e5e7eb" font-family="sans-serif" font-size="12" text-anchor="middle">
`)
		for _, n := range nodes {
			label := n.Label
			if label == "" {
				label = n.ID
			}
			cx, cy := project(n.X, n.Y)
			sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f">%s</text>
`, cx, cy+4, html.EscapeString(label)))
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TraceToSVG plots alpha (fixed 0..1 axis) and kinetic energy (scaled to its
// own peak) against tick. It returns an empty string for fewer than two
// samples.
func TraceToSVG(samples []metrics.Sample, width, height int) string {
	if len(samples) < 2 {
		return ""
	}

	first, last := samples[0].Tick, samples[len(samples)-1].Tick
	span := float64(last - first)
	if span == 0 {
		span = 1
	}
	peak := 0.0
	for _, s := range samples {
		peak = math.Max(peak, s.Energy)
	}
	if peak == 0 {
		peak = 1
	}

	w, h := float64(width), float64(height)
	path := func(value func(metrics.Sample) float64) string {
		var sb strings.Builder
		for i, s := range samples {
			x := float64(s.Tick-first) / span * w
			y := h - value(s)*h
			if i == 0 {
				sb.WriteString(fmt.Sprintf("M%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		return sb.String()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))
	sb.WriteString(fmt.Sprintf(`<path id="alpha" fill="none" stroke="#00ffff" stroke-width="1.5" d="%s"/>
`, path(func(s metrics.Sample) float64 { return s.Alpha })))
	sb.WriteString(fmt.Sprintf(`<path id="energy" fill="none" stroke="#ff00ff" stroke-width="1.5" d="%s"/>
`, path(func(s metrics.Sample) float64 { return s.Energy / peak })))
	sb.WriteString("</svg>")
	return sb.String()
}
