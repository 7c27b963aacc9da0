package svg

import (
	"strings"

	"github.com/rmorshead/nbsvg/common"
)

// add creates a child with the given tag and appends it to e, without notifying.
// The constructors notify once, after the child is fully configured.
func (e *Element) add(tag string) *Element {
	if !e.IsContainer() {
		common.Panicf("svg: cannot add <%s> to <%s>, only <svg> and <g> can hold other elements", tag, e.tag)
	}
	child := &Element{tag: tag, parent: e}
	e.children = append(e.children, child)
	return child
}

// shapeDefaults are the display attributes of a newly created shape.
func (e *Element) shapeDefaults() *Element {
	e.setAttr("fill", "none")
	e.setAttr("stroke", "gray")
	e.setAttr("stroke-width", Length(1))
	e.changed()
	return e
}

// Group adds an empty group (`<g>`) to e. Display attributes set on a group
// override those of its children, see Fill.
func (e *Element) Group() *Element {
	g := e.add("g")
	g.changed()
	return g
}

// Circle adds a circle centered in (cx, cy) with radius r.
func (e *Element) Circle(cx, cy, r any) *Element {
	c := e.add("circle")
	c.setAttr("cx", Length(cx))
	c.setAttr("cy", Length(cy))
	c.setAttr("r", Length(r))
	return c.shapeDefaults()
}

// Ellipse adds an ellipse centered in (cx, cy), with radii rx and ry.
func (e *Element) Ellipse(cx, cy, rx, ry any) *Element {
	el := e.add("ellipse")
	el.setAttr("cx", Length(cx))
	el.setAttr("cy", Length(cy))
	el.setAttr("rx", Length(rx))
	el.setAttr("ry", Length(ry))
	return el.shapeDefaults()
}

// Line adds a line from (x1, y1) to (x2, y2).
func (e *Element) Line(x1, y1, x2, y2 any) *Element {
	l := e.add("line")
	l.setAttr("x1", Length(x1))
	l.setAttr("y1", Length(y1))
	l.setAttr("x2", Length(x2))
	l.setAttr("y2", Length(y2))
	return l.shapeDefaults()
}

// Polyline adds an open shape going through the given points.
func (e *Element) Polyline(points ...Point) *Element {
	pl := e.add("polyline")
	pl.setAttr("points", formatPoints(points))
	return pl.shapeDefaults()
}

// Polygon adds a closed shape with the given points as vertices.
func (e *Element) Polygon(points ...Point) *Element {
	pg := e.add("polygon")
	pg.setAttr("points", formatPoints(points))
	return pg.shapeDefaults()
}

// SetPoints replaces the points of a polyline or polygon.
func (e *Element) SetPoints(points ...Point) *Element {
	if e.tag != "polyline" && e.tag != "polygon" {
		common.Panicf("svg: SetPoints() called on <%s>, it's only valid for <polyline> and <polygon>", e.tag)
	}
	e.setAttr("points", formatPoints(points))
	e.changed()
	return e
}

func formatPoints(points []Point) string {
	parts := make([]string, 0, len(points))
	for _, p := range points {
		parts = append(parts, formatNumber(p.X)+","+formatNumber(p.Y))
	}
	return strings.Join(parts, " ")
}

// Text adds the string s, positioned at (x, y).
func (e *Element) Text(x, y any, s string) *Element {
	t := e.add("text")
	t.setAttr("x", Length(x))
	t.setAttr("y", Length(y))
	t.setAttr("fill", "black")
	t.setAttr("stroke", "none")
	t.setAttr("stroke-width", Length(0))
	t.text = s
	t.changed()
	return t
}
