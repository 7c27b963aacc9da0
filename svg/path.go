package svg

import (
	"strings"

	"github.com/rmorshead/nbsvg/common"
)

// Segment is one command of a path, e.g. `M 10 20` or `l 5 5 10 0`.
type Segment struct {
	// Command is the path command letter: upper case for absolute coordinates,
	// lower case for relative ones.
	Command byte

	Coords []float64

	// Close the sub-path after this segment (`Z`).
	Close bool
}

// String renders the segment as it appears in the `d` attribute.
func (s Segment) String() string {
	parts := make([]string, 0, len(s.Coords)+1)
	parts = append(parts, string(s.Command))
	for _, c := range s.Coords {
		parts = append(parts, formatNumber(c))
	}
	str := strings.Join(parts, " ")
	if s.Close {
		str += " Z"
	}
	return str
}

// Path adds an empty path. Use its segment methods (M, L, A and their relative
// versions) to draw it.
func (e *Element) Path() *Element {
	p := e.add("path")
	p.setAttr("d", "")
	return p.shapeDefaults()
}

// Segments returns a copy of the segments of a path.
func (e *Element) Segments() []Segment {
	segments := make([]Segment, len(e.segments))
	copy(segments, e.segments)
	return segments
}

func (e *Element) mustBePath(method string) {
	if e.tag != "path" {
		common.Panicf("svg: %s() called on <%s>, it's only valid for <path>", method, e.tag)
	}
}

func (e *Element) updatePath() *Element {
	parts := make([]string, len(e.segments))
	for ii, s := range e.segments {
		parts[ii] = s.String()
	}
	e.setAttr("d", strings.Join(parts, " "))
	e.changed()
	return e
}

func (e *Element) appendSegment(method string, command byte, coords ...float64) *Element {
	e.mustBePath(method)
	e.segments = append(e.segments, Segment{Command: command, Coords: coords})
	return e.updatePath()
}

// M moves to the absolute position (x, y).
func (e *Element) M(x, y float64) *Element {
	return e.appendSegment("M", 'M', x, y)
}

// MRel (`m`) moves by (dx, dy), relative to the current position.
func (e *Element) MRel(dx, dy float64) *Element {
	return e.appendSegment("MRel", 'm', dx, dy)
}

// L draws lines through the given absolute points, given as x, y pairs.
// It panics if an odd number of coordinates is given.
func (e *Element) L(xy ...float64) *Element {
	if len(xy)%2 != 0 {
		common.Panicf("svg: L() takes pairs of coordinates, got %d values", len(xy))
	}
	return e.appendSegment("L", 'L', xy...)
}

// LRel (`l`) draws lines through the given points, each relative to the previous one.
// It panics if an odd number of coordinates is given.
func (e *Element) LRel(dxy ...float64) *Element {
	if len(dxy)%2 != 0 {
		common.Panicf("svg: LRel() takes pairs of coordinates, got %d values", len(dxy))
	}
	return e.appendSegment("LRel", 'l', dxy...)
}

func boolFlag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// A draws an elliptical arc to the absolute position (x, y), with radii (rx, ry),
// rotated by xRotation degrees.
func (e *Element) A(rx, ry, xRotation float64, largeArc, sweep bool, x, y float64) *Element {
	return e.appendSegment("A", 'A', rx, ry, xRotation, boolFlag(largeArc), boolFlag(sweep), x, y)
}

// ARel (`a`) is like A, but the end position is relative to the current position.
func (e *Element) ARel(rx, ry, xRotation float64, largeArc, sweep bool, dx, dy float64) *Element {
	return e.appendSegment("ARel", 'a', rx, ry, xRotation, boolFlag(largeArc), boolFlag(sweep), dx, dy)
}

// Z closes the current sub-path, after the last segment.
// It panics if the path has no segments.
func (e *Element) Z() *Element {
	e.mustBePath("Z")
	if len(e.segments) == 0 {
		common.Panicf("svg: Z() called on an empty path")
	}
	e.segments[len(e.segments)-1].Close = true
	return e.updatePath()
}

// ClearPath removes all segments of the path.
func (e *Element) ClearPath() *Element {
	e.mustBePath("ClearPath")
	e.segments = nil
	return e.updatePath()
}
