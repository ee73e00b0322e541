// Package chart is the styled, format-independent model of a WBS chart.
//
// A [Chart] pairs each laid-out box with the style of its level and carries
// the canvas and WBS block it was laid out in. Sinks in the sink subpackage
// draw a Chart; they never look at the layout config or the style table
// again.
package chart

import (
	"github.com/matzehuels/wbsgen/pkg/layout"
	"github.com/matzehuels/wbsgen/pkg/style"
)

// Chart is everything a sink needs to draw one WBS chart. Units are
// centimetres with a top-left origin.
type Chart struct {
	Title  string      `json:"title,omitempty"`
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Block  layout.Rect `json:"block"`
	Boxes  []Box       `json:"boxes"`
}

// Box is one styled node of the chart.
type Box struct {
	Code  string      `json:"code"`
	Text  string      `json:"text"`
	Level int         `json:"level"`
	Depth int         `json:"depth"`
	X     float64     `json:"x"`
	Y     float64     `json:"y"`
	W     float64     `json:"w"`
	H     float64     `json:"h"`
	Style style.Style `json:"style"`
}

// Label returns "code text".
func (b Box) Label() string {
	if b.Text == "" {
		return b.Code
	}
	return b.Code + " " + b.Text
}

// CX returns the horizontal center of the box.
func (b Box) CX() float64 { return b.X + b.W/2 }

// CY returns the vertical center of the box.
func (b Box) CY() float64 { return b.Y + b.H/2 }

// Right returns the x coordinate of the right edge.
func (b Box) Right() float64 { return b.X + b.W }

// Build styles geoms for drawing on the canvas of cfg. Box order follows
// geoms, which is depth-first pre-order when it comes from [layout.Layout].
func Build(title string, cfg layout.Config, geoms []layout.Geometry, styles style.Table) Chart {
	c := Chart{
		Title:  title,
		Width:  cfg.CanvasWidth,
		Height: cfg.CanvasHeight,
		Block:  cfg.Block(),
		Boxes:  make([]Box, 0, len(geoms)),
	}
	for _, g := range geoms {
		c.Boxes = append(c.Boxes, Box{
			Code:  g.Code,
			Text:  g.Text,
			Level: g.Level,
			Depth: g.Depth,
			X:     g.X,
			Y:     g.Y,
			W:     g.Width,
			H:     g.Height,
			Style: styles.For(g.Level),
		})
	}
	return c
}
