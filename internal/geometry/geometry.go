// Package geometry implements the hit testing used to validate people-tagging
// guesses against admin-drawn zones. All checks work in photo pixel
// coordinates.
package geometry

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Shape type tags as stored in person_zones.shape_type.
const (
	ShapeRect    = "rect"
	ShapeCircle  = "circle"
	ShapePolygon = "polygon"
)

// Point is a position in photo pixel coordinates
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Shape is a tagged zone variant. Contains reports whether the point falls
// inside the shape expanded by tolerancePx pixels.
type Shape interface {
	Type() string
	Contains(p Point, tolerancePx int) bool
}

// Rect is an axis-aligned rectangle with inclusive bounds
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Type returns the shape tag
func (r Rect) Type() string { return ShapeRect }

// Contains grows the rectangle by tolerancePx on every side before testing
func (r Rect) Contains(p Point, tolerancePx int) bool {
	t := float64(tolerancePx)
	return p.X >= r.X-t && p.X <= r.X+r.Width+t &&
		p.Y >= r.Y-t && p.Y <= r.Y+r.Height+t
}

// Circle is a center point with a radius
type Circle struct {
	CX     float64 `json:"cx"`
	CY     float64 `json:"cy"`
	Radius float64 `json:"radius"`
}

// Type returns the shape tag
func (c Circle) Type() string { return ShapeCircle }

// Contains adds tolerancePx to the radius before the distance check
func (c Circle) Contains(p Point, tolerancePx int) bool {
	dx := p.X - c.CX
	dy := p.Y - c.CY
	r := c.Radius + float64(tolerancePx)
	return math.Sqrt(dx*dx+dy*dy) <= r
}

// Polygon is an ordered vertex list. Fewer than three vertices never
// contains anything.
type Polygon struct {
	Points []Point `json:"points"`
}

// Type returns the shape tag
func (pg Polygon) Type() string { return ShapePolygon }

// Contains runs the ray-casting parity test. Tolerance is not applied to
// polygons; the incoming value is ignored on purpose so existing zones keep
// their behavior.
func (pg Polygon) Contains(p Point, _ int) bool {
	n := len(pg.Points)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		a, b := pg.Points[i], pg.Points[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// DecodeShape turns a stored shape_type tag plus its JSON payload into the
// matching variant. Decoding happens once, at the repository boundary.
func DecodeShape(shapeType string, data []byte) (Shape, error) {
	switch shapeType {
	case ShapeRect:
		var r Rect
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("failed to decode rect shape: %w", err)
		}
		return r, nil
	case ShapeCircle:
		var c Circle
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to decode circle shape: %w", err)
		}
		return c, nil
	case ShapePolygon:
		var pg Polygon
		if err := json.Unmarshal(data, &pg); err != nil {
			return nil, fmt.Errorf("failed to decode polygon shape: %w", err)
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown shape type %q", shapeType)
	}
}

// Zone is a decoded person zone: one person, one shape, one tolerance
type Zone struct {
	ID          string
	PhotoID     string
	PersonName  string
	Shape       Shape
	TolerancePx int
}

// TaggedPoint is a guessed coordinate with the person name the player
// assigned to it
type TaggedPoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	PersonName string  `json:"person_name"`
}

// TaggingResult lists which zones were hit and whether every zone was
type TaggingResult struct {
	Hit    []Zone
	Missed []Zone
	AllHit bool
}

// ValidatePeopleTagging checks every zone against the guessed coordinates.
// A zone counts as hit when at least one coordinate both names the zone's
// person (case-insensitive) and lands inside the tolerance-expanded shape.
// Zero zones never yields AllHit; a zone can only be satisfied positively.
func ValidatePeopleTagging(coords []TaggedPoint, zones []Zone) TaggingResult {
	res := TaggingResult{}
	for _, zone := range zones {
		hit := false
		for _, c := range coords {
			if !strings.EqualFold(c.PersonName, zone.PersonName) {
				continue
			}
			if zone.Shape.Contains(Point{X: c.X, Y: c.Y}, zone.TolerancePx) {
				hit = true
				break
			}
		}
		if hit {
			res.Hit = append(res.Hit, zone)
		} else {
			res.Missed = append(res.Missed, zone)
		}
	}
	res.AllHit = len(zones) > 0 && len(res.Missed) == 0
	return res
}
