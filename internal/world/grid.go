package world

import (
	"fmt"
	"math"
)

// Grid holds the complete tile grid. Tiles are created once at generation
// and live for the life of the grid.
type Grid struct {
	Width  int
	Height int
	tiles  []*Tile // row-major, y*Width+x
}

// NewGrid creates an empty grid of the given dimensions.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		tiles:  make([]*Tile, width*height),
	}
}

// Get returns the tile at (x, y), or nil if out of bounds.
func (g *Grid) Get(x, y int) *Tile {
	if !g.InBounds(x, y) {
		return nil
	}
	return g.tiles[y*g.Width+x]
}

// Set places a tile at its own coordinates.
func (g *Grid) Set(t *Tile) {
	if !g.InBounds(t.X, t.Y) {
		return
	}
	g.tiles[t.Y*g.Width+t.X] = t
}

// InBounds reports whether (x, y) lies on the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// TilesWithin returns every tile whose center lies within Euclidean distance
// radius of (cx, cy).
func (g *Grid) TilesWithin(cx, cy, radius float64) []*Tile {
	if radius <= 0 {
		return nil
	}
	minX := int(math.Floor(cx - radius))
	maxX := int(math.Ceil(cx + radius))
	minY := int(math.Floor(cy - radius))
	maxY := int(math.Ceil(cy + radius))

	var out []*Tile
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			t := g.Get(x, y)
			if t == nil {
				continue
			}
			dx := float64(x) - cx
			dy := float64(y) - cy
			if dx*dx+dy*dy <= radius*radius {
				out = append(out, t)
			}
		}
	}
	return out
}

// Advance runs recovery for every tile.
func (g *Grid) Advance(p RecoveryParams, elapsed float64) {
	for _, t := range g.tiles {
		if t != nil {
			t.Advance(p, elapsed)
		}
	}
}

// TileCount returns the number of placed tiles.
func (g *Grid) TileCount() int {
	n := 0
	for _, t := range g.tiles {
		if t != nil {
			n++
		}
	}
	return n
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d, tiles=%d)", g.Width, g.Height, g.TileCount())
}
