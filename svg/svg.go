// Package svg builds SVG drawings as a tree of elements, and renders them to markup.
//
// Drawings start with New, and elements are added with the constructor methods of
// container elements (the root `<svg>` and groups):
//
//	root := svg.New(200, 100)
//	root.Circle(50, 50, 20).Fill("red")
//	g := root.Group().Stroke("blue")
//	g.Line(0, 0, 200, 100)
//	g.Path().M(10, 10).L(20, 20, 30, 10).Z()
//	markup := root.Markup()
//
// Every change to an element of the tree is reported to the root's change hook (see
// OnChange), which is how package widget keeps a model in sync with a drawing.
//
// Elements are not safe for concurrent use.
package svg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rmorshead/nbsvg/common"
	"github.com/rmorshead/nbsvg/protocol"
	"golang.org/x/exp/slices"
	"golang.org/x/net/html"
)

// Point is a 2D coordinate, used by polylines and polygons.
type Point struct {
	X, Y float64
}

// Pt is a shortcut to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

type attribute struct {
	name, value string
}

// Element is a node of an SVG drawing.
type Element struct {
	tag      string
	attrs    []attribute
	children []*Element
	parent   *Element
	text     string

	transforms [numTransforms][]float64
	segments   []Segment

	onChange func()
	noSync   bool
}

// New creates the root `<svg>` element of a drawing, with the given width and height.
// See Length for how sizes are rendered.
func New(width, height any) *Element {
	e := &Element{tag: "svg"}
	e.setAttr("xmlns", protocol.SVGNamespace)
	e.setAttr("width", Length(width))
	e.setAttr("height", Length(height))
	return e
}

// NewElement creates a detached element with an arbitrary tag, that can be added to a
// drawing with Append.
func NewElement(tag string) *Element {
	return &Element{tag: tag}
}

// Length formats a size or coordinate: integer and floating point values are
// given in pixels ("px"), strings are used as is (e.g. "50%" or "2em").
func Length(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%dpx", v)
	case float32:
		return formatNumber(float64(v)) + "px"
	case float64:
		return formatNumber(v) + "px"
	case nil:
		return ""
	}
	return fmt.Sprint(value)
}

// formatNumber with the minimum number of digits needed.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Tag returns the element's tag, e.g. "circle".
func (e *Element) Tag() string {
	return e.tag
}

// Parent returns the element that contains e, or nil for a root or detached element.
func (e *Element) Parent() *Element {
	return e.parent
}

// Root returns the top-most ancestor of e.
func (e *Element) Root() *Element {
	root := e
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// Children returns a copy of the list of children of the element.
func (e *Element) Children() []*Element {
	return slices.Clone(e.children)
}

// IsContainer returns whether the element can hold other elements: the root `<svg>` and groups.
func (e *Element) IsContainer() bool {
	return e.tag == "svg" || e.tag == "g"
}

// OnChange sets the function called after any change to the drawing. It should be set on
// the root element: changes anywhere in the tree are reported to the root's hook.
// Use nil to remove the hook.
func (e *Element) OnChange(fn func()) *Element {
	e.onChange = fn
	return e
}

// SetSync enables or disables change notifications for changes to this element.
// It is enabled by default.
func (e *Element) SetSync(enabled bool) *Element {
	e.noSync = !enabled
	return e
}

// changed reports a change of e to the root's hook.
func (e *Element) changed() {
	if e.noSync {
		return
	}
	if root := e.Root(); root.onChange != nil {
		root.onChange()
	}
}

// Attr returns the value of an attribute, and whether it is set.
func (e *Element) Attr(name string) (string, bool) {
	name = attrName(name)
	for _, attr := range e.attrs {
		if attr.name == name {
			return attr.value, true
		}
	}
	return "", false
}

// attrName converts underscores to dashes, so `stroke_width` becomes `stroke-width`.
func attrName(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

func (e *Element) setAttr(name, value string) {
	name = attrName(name)
	for ii := range e.attrs {
		if e.attrs[ii].name == name {
			e.attrs[ii].value = value
			return
		}
	}
	e.attrs = append(e.attrs, attribute{name: name, value: value})
}

func (e *Element) deleteAttr(name string) {
	name = attrName(name)
	e.attrs = slices.DeleteFunc(e.attrs, func(attr attribute) bool { return attr.name == name })
}

// Set an arbitrary attribute. Numeric values are formatted with Length.
func (e *Element) Set(name string, value any) *Element {
	e.setAttr(name, Length(value))
	e.changed()
	return e
}

// Unset removes an attribute.
func (e *Element) Unset(name string) *Element {
	e.deleteAttr(name)
	e.changed()
	return e
}

// SetId sets the `id` attribute.
func (e *Element) SetId(id string) *Element {
	return e.Set("id", id)
}

// SetClass sets the `class` attribute.
func (e *Element) SetClass(class string) *Element {
	return e.Set("class", class)
}

// SetText sets the text content of a `<text>` element.
func (e *Element) SetText(text string) *Element {
	if e.tag != "text" {
		common.Panicf("svg: SetText() called on <%s>, it's only valid for <text>", e.tag)
	}
	e.text = text
	e.changed()
	return e
}

// TextContent returns the text content of a `<text>` element.
func (e *Element) TextContent() string {
	return e.text
}

// Append child to the container element e. If child belongs to another element, it is
// moved.
func (e *Element) Append(child *Element) *Element {
	if !e.IsContainer() {
		common.Panicf("svg: cannot append <%s> to <%s>, only <svg> and <g> can hold other elements", child.tag, e.tag)
	}
	if child.parent != nil {
		child.parent.removeChild(child)
	}
	child.parent = e
	e.children = append(e.children, child)
	e.changed()
	return e
}

// Remove child from e. It is a no-op if child is not a child of e.
func (e *Element) Remove(child *Element) *Element {
	if child.parent != e {
		return e
	}
	e.removeChild(child)
	e.changed()
	return e
}

func (e *Element) removeChild(child *Element) {
	e.children = slices.DeleteFunc(e.children, func(c *Element) bool { return c == child })
	child.parent = nil
}

// Markup renders the element and its descendants.
func (e *Element) Markup() string {
	var b strings.Builder
	e.render(&b)
	return b.String()
}

// String implements fmt.Stringer, and returns Markup.
func (e *Element) String() string {
	return e.Markup()
}

func (e *Element) render(b *strings.Builder) {
	b.WriteString("<")
	b.WriteString(e.tag)
	for _, attr := range e.attrs {
		fmt.Fprintf(b, ` %s="%s"`, attr.name, html.EscapeString(attr.value))
	}
	switch {
	case e.IsContainer():
		b.WriteString(">\n")
		for ii, child := range e.children {
			if ii > 0 {
				b.WriteString("\n")
			}
			child.render(b)
		}
		fmt.Fprintf(b, "\n</%s>", e.tag)
	case e.tag == "text":
		fmt.Fprintf(b, ">%s</%s>", html.EscapeString(e.text), e.tag)
	default:
		b.WriteString("/>")
	}
}
