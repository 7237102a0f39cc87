// Package geom holds the small 2D value types shared by the physics core and
// its collaborators.
package geom

// Point represents a 2D point in world space (y grows upward)
type Point struct {
	X, Y float64
}

// Add returns p translated by q
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Coord represents a cell coordinate on a raster grid
type Coord struct {
	X, Y int
}

// Rect is an axis-aligned rectangle in world space with Min <= Max on both axes
type Rect struct {
	Min, Max Point
}

// Overlaps reports whether two rectangles share interior area.
// Touching edges do not count as overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.Min.X < o.Max.X && o.Min.X < r.Max.X &&
		r.Min.Y < o.Max.Y && o.Min.Y < r.Max.Y
}

// Contains reports whether p lies inside r (min edges inclusive)
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X < r.Max.X && p.Y >= r.Min.Y && p.Y < r.Max.Y
}
