package svg

import (
	"fmt"
	"strings"
)

// Fill sets the fill color. On a group, it also clears the fill of the group's
// children, so the group's value is the one used.
func (e *Element) Fill(color string) *Element {
	return e.setDisplay("fill", color)
}

// Stroke sets the stroke color. On a group, it also clears the stroke of the group's children.
func (e *Element) Stroke(color string) *Element {
	return e.setDisplay("stroke", color)
}

// StrokeWidth sets the stroke width, formatted with Length. On a group, it also clears
// the stroke width of the group's children.
func (e *Element) StrokeWidth(width any) *Element {
	return e.setDisplay("stroke-width", Length(width))
}

func (e *Element) setDisplay(name, value string) *Element {
	if e.tag == "g" {
		for _, child := range e.children {
			child.deleteAttr(name)
		}
	}
	e.setAttr(name, value)
	e.changed()
	return e
}

type transformKind int

const (
	transformTranslate transformKind = iota
	transformRotate
	transformScale
	transformSkewX
	transformSkewY
	transformMatrix
	numTransforms
)

var transformNames = [numTransforms]string{"translate", "rotate", "scale", "skewX", "skewY", "matrix"}

func (e *Element) setTransform(kind transformKind, args ...float64) *Element {
	e.transforms[kind] = args
	if value := e.transformValue(); value != "" {
		e.setAttr("transform", value)
	} else {
		e.deleteAttr("transform")
	}
	e.changed()
	return e
}

// transformValue renders the transform functions, always in the same order:
// translate, rotate, scale, skewX, skewY and matrix.
func (e *Element) transformValue() string {
	var parts []string
	for kind, args := range e.transforms {
		if args == nil {
			continue
		}
		formatted := make([]string, len(args))
		for ii, arg := range args {
			formatted[ii] = formatNumber(arg)
		}
		parts = append(parts, fmt.Sprintf("%s(%s)", transformNames[kind], strings.Join(formatted, " ")))
	}
	return strings.Join(parts, " ")
}

// Translate moves the element by (x, y).
func (e *Element) Translate(x, y float64) *Element {
	return e.setTransform(transformTranslate, x, y)
}

// Rotate rotates the element by deg degrees around the origin.
func (e *Element) Rotate(deg float64) *Element {
	return e.setTransform(transformRotate, deg)
}

// RotateAround rotates the element by deg degrees around the point (x, y).
func (e *Element) RotateAround(deg, x, y float64) *Element {
	return e.setTransform(transformRotate, deg, x, y)
}

// Scale scales the element by x horizontally and y vertically.
func (e *Element) Scale(x, y float64) *Element {
	return e.setTransform(transformScale, x, y)
}

// SkewX skews the element along the x-axis by deg degrees.
func (e *Element) SkewX(deg float64) *Element {
	return e.setTransform(transformSkewX, deg)
}

// SkewY skews the element along the y-axis by deg degrees.
func (e *Element) SkewY(deg float64) *Element {
	return e.setTransform(transformSkewY, deg)
}

// Matrix sets a transformation matrix of the form:
//
//	| a c e |
//	| b d f |
//	| 0 0 1 |
func (e *Element) Matrix(a, b, c, d, ee, f float64) *Element {
	return e.setTransform(transformMatrix, a, b, c, d, ee, f)
}

// ClearTransforms removes all transformations of the element.
func (e *Element) ClearTransforms() *Element {
	e.transforms = [numTransforms][]float64{}
	e.deleteAttr("transform")
	e.changed()
	return e
}
