// Package stroke renders freehand pen, brush, paintbrush, spray and eraser
// marks onto a raster.Buffer.
package stroke

import (
	"fmt"
	"strings"

	"ColoringBoard/internal/raster"
)

// Tool is a drawing tool.
type Tool int

const (
	Pen Tool = iota
	Brush
	Paintbrush
	Spray
	Eraser
)

var toolNames = [...]string{"pen", "brush", "paintbrush", "spray", "eraser"}

func (t Tool) String() string {
	if t < 0 || int(t) >= len(toolNames) {
		return fmt.Sprintf("tool(%d)", int(t))
	}
	return toolNames[t]
}

// ParseTool returns the tool with the given name.
func ParseTool(name string) (Tool, error) {
	for i, n := range toolNames {
		if strings.EqualFold(n, name) {
			return Tool(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tool %q", name)
}

// profile describes how a tool turns the brush size into marks.
type profile struct {
	widthMul    float64
	opacity     float64
	glowMul     float64 // extra halo width as a multiple of the size
	glowOpacity float64
}

var profiles = [...]profile{
	Pen:        {widthMul: 1, opacity: 1},
	Brush:      {widthMul: 1.5, opacity: 0.9, glowMul: 0.5, glowOpacity: 0.25},
	Paintbrush: {widthMul: 2.5, opacity: 0.7, glowMul: 1, glowOpacity: 0.3},
	Spray:      {widthMul: 1, opacity: 0.5},
	Eraser:     {widthMul: 2, opacity: 1},
}

// Spray parameters.
const (
	sprayDotRadius   = 1.0
	sprayRadiusMul   = 2.0
	sprayDensityMul  = 3.0
	sprayMinDots     = 6
	defaultBrushSize = 8.0
)

// Style is the tool, color and size of a stroke.
type Style struct {
	Tool  Tool
	Color raster.Color
	Size  float64
}

func (s Style) profile() profile {
	if s.Tool < 0 || int(s.Tool) >= len(profiles) {
		return profiles[Pen]
	}
	return profiles[s.Tool]
}

func (s Style) size() float64 {
	if s.Size <= 0 {
		return defaultBrushSize
	}
	return s.Size
}

// Width returns the line width the tool draws with.
func (s Style) Width() float64 {
	return s.size() * s.profile().widthMul
}

// glowWidth returns the halo width, 0 for tools without one.
func (s Style) glowWidth() float64 {
	p := s.profile()
	if p.glowMul == 0 {
		return 0
	}
	return s.Width() + s.size()*p.glowMul
}

func (s Style) sprayRadius() float64 { return s.size() * sprayRadiusMul }

func (s Style) sprayDots() int {
	return max(sprayMinDots, int(s.size()*sprayDensityMul))
}
