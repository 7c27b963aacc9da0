package svg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLength(t *testing.T) {
	assert.Equal(t, "10px", Length(10))
	assert.Equal(t, "2.5px", Length(2.5))
	assert.Equal(t, "50%", Length("50%"))
	assert.Equal(t, "", Length(nil))
}

func TestMarkup(t *testing.T) {
	root := New(200, 100)
	assert.Equal(t, "<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"200px\" height=\"100px\">\n\n</svg>", root.Markup())

	root.Circle(50, 50, 20).Fill("red")
	root.Text(3, 15, "a<b")
	want := "<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"200px\" height=\"100px\">\n" +
		`<circle cx="50px" cy="50px" r="20px" fill="red" stroke="gray" stroke-width="1px"/>` + "\n" +
		`<text x="3px" y="15px" fill="black" stroke="none" stroke-width="0px">a&lt;b</text>` +
		"\n</svg>"
	assert.Equal(t, want, root.Markup())
	assert.Equal(t, want, root.String())
}

func TestShapes(t *testing.T) {
	root := New("100%", "100%")
	g := root.Group()
	assert.Equal(t, `<line x1="0px" y1="1px" x2="2px" y2="3px" fill="none" stroke="gray" stroke-width="1px"/>`,
		g.Line(0, 1, 2, 3).Markup())
	assert.Equal(t, `<ellipse cx="12px" cy="12px" rx="10px" ry="5px" fill="none" stroke="gray" stroke-width="1px"/>`,
		g.Ellipse(12, 12, 10, 5).Markup())
	pl := g.Polyline(Pt(2, 2), Pt(12, 12))
	v, _ := pl.Attr("points")
	assert.Equal(t, "2,2 12,12", v)
	pl.SetPoints(Pt(0, 0.5))
	v, _ = pl.Attr("points")
	assert.Equal(t, "0,0.5", v)
	pg := g.Polygon(Pt(2, 30), Pt(12, 10), Pt(22, 30))
	v, _ = pg.Attr("points")
	assert.Equal(t, "2,30 12,10 22,30", v)
	assert.Len(t, g.Children(), 4)
	assert.Same(t, root, pg.Root())
	assert.Same(t, g, pg.Parent())

	require.Panics(t, func() { pl.Circle(1, 1, 1) }, "shapes cannot hold other elements")
	require.Panics(t, func() { pl.SetText("x") })
	require.Panics(t, func() { g.SetPoints() })
}

func TestAttributes(t *testing.T) {
	root := New(10, 10)
	c := root.Circle(1, 2, 3).SetId("c0").SetClass("dot").Set("stroke_dasharray", "4 2")
	v, found := c.Attr("stroke-dasharray")
	assert.True(t, found)
	assert.Equal(t, "4 2", v)
	v, _ = c.Attr("id")
	assert.Equal(t, "c0", v)
	c.Unset("class")
	_, found = c.Attr("class")
	assert.False(t, found)
	c.Set("title", `say "hi"`)
	assert.Contains(t, c.Markup(), `title="say &#34;hi&#34;"`)
}

func TestTransforms(t *testing.T) {
	root := New(10, 10)
	c := root.Circle(0, 0, 1).Rotate(45).Translate(10, 5)
	v, _ := c.Attr("transform")
	assert.Equal(t, "translate(10 5) rotate(45)", v)

	c.RotateAround(30, 1, 2).Scale(2, 0.5).SkewX(10).SkewY(-10).Matrix(1, 0, 0, 1, 0, 0)
	v, _ = c.Attr("transform")
	assert.Equal(t, "translate(10 5) rotate(30 1 2) scale(2 0.5) skewX(10) skewY(-10) matrix(1 0 0 1 0 0)", v)

	c.ClearTransforms()
	_, found := c.Attr("transform")
	assert.False(t, found)
}

func TestGroupOverride(t *testing.T) {
	root := New(10, 10)
	g := root.Group()
	c0 := g.Circle(0, 0, 1).Fill("red")
	c1 := g.Circle(1, 1, 1).Stroke("blue")
	g.Fill("green")
	_, found := c0.Attr("fill")
	assert.False(t, found, "group fill overrides the children's")
	_, found = c1.Attr("fill")
	assert.False(t, found)
	v, _ := c1.Attr("stroke")
	assert.Equal(t, "blue", v, "other display attributes are kept")
	v, _ = g.Attr("fill")
	assert.Equal(t, "green", v)

	g.StrokeWidth(3)
	_, found = c1.Attr("stroke-width")
	assert.False(t, found)
}

func TestPath(t *testing.T) {
	root := New(100, 100)
	p := root.Path().M(10, 10).L(20, 20, 30, 10).Z()
	v, _ := p.Attr("d")
	assert.Equal(t, "M 10 10 L 20 20 30 10 Z", v)

	p.MRel(5, 5).LRel(1, 1).A(20, 20, 0, false, true, 50, 50).ARel(5, 5, 45, true, false, 1, 2)
	v, _ = p.Attr("d")
	assert.Equal(t, "M 10 10 L 20 20 30 10 Z m 5 5 l 1 1 A 20 20 0 0 1 50 50 a 5 5 45 1 0 1 2", v)
	assert.Len(t, p.Segments(), 6)
	assert.Equal(t, byte('L'), p.Segments()[1].Command)

	require.Panics(t, func() { p.L(1, 2, 3) })
	require.Panics(t, func() { p.LRel(1) })
	require.Panics(t, func() { root.Circle(0, 0, 1).M(0, 0) })
	require.Panics(t, func() { root.Path().Z() })

	p.ClearPath()
	v, _ = p.Attr("d")
	assert.Equal(t, "", v)
}

func TestSelect(t *testing.T) {
	root := New(100, 100)
	c0 := root.Circle(0, 0, 10).Fill("red")
	g := root.Group()
	c1 := g.Circle(5, 5, 10)
	l := g.Line(0, 0, 1, 1).Fill("red")
	root.Circle(1, 1, 3)

	assert.Same(t, c0, root.Select(Tag("circle")))
	assert.Same(t, c1, root.Select(All(Tag("circle"), AttrEquals("cx", 5))))
	assert.Equal(t, []*Element{c0, c1}, root.SelectAll(AttrEquals("r", 10)))
	assert.Equal(t, []*Element{c0, l}, root.SelectAll(AttrEquals("fill", "red")))
	assert.Nil(t, root.Select(Tag("g")), "groups are not matched")
	assert.Len(t, root.SelectAll(HasAttr("stroke")), 4)
	assert.Nil(t, root.Select(HasAttr("missing")))
}

func TestOnChange(t *testing.T) {
	root := New(100, 100)
	count := 0
	root.OnChange(func() { count++ })

	c := root.Circle(0, 0, 1)
	assert.Equal(t, 1, count, "constructors notify once")
	c.Fill("red")
	assert.Equal(t, 2, count)
	g := root.Group()
	g.Path().M(0, 0)
	assert.Equal(t, 5, count)

	c.SetSync(false)
	c.Fill("blue")
	assert.Equal(t, 5, count, "sync disabled for the element")
	c.SetSync(true)

	// Moving elements around.
	g.Append(c)
	assert.Equal(t, 6, count)
	assert.Len(t, root.Children(), 1)
	assert.Len(t, g.Children(), 2)
	g.Remove(c)
	assert.Equal(t, 7, count)
	assert.Nil(t, c.Parent())
	g.Remove(c) // Not a child anymore: no-op.
	assert.Equal(t, 7, count)

	detached := NewElement("rect").Set("width", 3)
	root.Append(detached)
	assert.Equal(t, 8, count)
	assert.Contains(t, root.Markup(), `<rect width="3px"/>`)

	root.OnChange(nil)
	c.Fill("green")
	assert.Equal(t, 8, count)
}
