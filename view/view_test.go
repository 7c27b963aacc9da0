package view

import (
	"strings"
	"testing"
	"time"

	"github.com/rmorshead/nbsvg/dom"
	"github.com/rmorshead/nbsvg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mountNew creates a model with the given svg markup and a view mounted on a fresh memory document.
func mountNew(t *testing.T, svg string) (*dom.Memory, *model.Model, *SVGView) {
	doc := dom.NewMemory()
	m := model.New(map[string]any{AttrSVG: svg})
	v := New(doc, doc.Root("host"), m)
	v.Mount()
	t.Cleanup(v.Close)
	return doc, m, v
}

func TestInitialRender(t *testing.T) {
	doc, _, v := mountNew(t, "<circle r='5'/>")
	require.True(t, v.Mounted())
	c := v.Container()
	assert.Equal(t, ContainerTag, doc.Tag(c))
	assert.True(t, doc.IsSVG(c))
	assert.Equal(t, []dom.Handle{c}, doc.Children("host"))
	assert.Equal(t, "<circle r='5'/>", doc.Markup(c))
	assert.Equal(t, 1, doc.Elements(c, "circle"))
}

func TestReactivity(t *testing.T) {
	doc, m, v := mountNew(t, "")
	for _, svg := range []string{"<rect/>", "<line/>", ""} {
		m.Set(AttrSVG, svg)
		assert.Equal(t, svg, doc.Markup(v.Container()))
	}
	m.Set("other", "<circle/>")
	assert.Equal(t, "", doc.Markup(v.Container()), "changes to other attributes are ignored")
}

func TestIdempotentSync(t *testing.T) {
	doc, _, v := mountNew(t, "<rect/><rect/>")
	v.Sync()
	first := doc.Render(v.Container())
	v.Sync()
	assert.Equal(t, first, doc.Render(v.Container()))
	assert.Equal(t, "<rect/><rect/>", doc.Markup(v.Container()))
	assert.Equal(t, 2, doc.Elements(v.Container(), "rect"))
}

func TestSingleSubscription(t *testing.T) {
	doc, m, v := mountNew(t, "")
	assert.Equal(t, 1, m.Subscribers(model.ChangeEvent(AttrSVG)))
	v.Mount() // Ignored.
	assert.Equal(t, 1, m.Subscribers(model.ChangeEvent(AttrSVG)))
	assert.Len(t, doc.Children("host"), 1)

	const numNotifications = 7
	for ii := 0; ii < numNotifications; ii++ {
		m.Set(AttrSVG, strings.Repeat("<g/>", ii+1))
	}
	// One write on mount, plus one per notification.
	assert.Equal(t, 1+numNotifications, doc.Writes(v.Container()))
}

func TestIsolation(t *testing.T) {
	doc := dom.NewMemory()
	m0 := model.New(map[string]any{AttrSVG: "<rect/>"})
	m1 := model.New(map[string]any{AttrSVG: "<line/>"})
	v0 := New(doc, doc.Root("host0"), m0)
	v1 := New(doc, doc.Root("host1"), m1)
	v0.Mount()
	v1.Mount()
	defer v0.Close()
	defer v1.Close()

	m0.Set(AttrSVG, "<circle/>")
	assert.Equal(t, "<circle/>", doc.Markup(v0.Container()))
	assert.Equal(t, "<line/>", doc.Markup(v1.Container()))
	assert.Equal(t, 1, doc.Writes(v1.Container()))
}

func TestOverflowHidden(t *testing.T) {
	big := "<rect width='100000' height='100000'/>"
	doc, _, v := mountNew(t, big)
	assert.Equal(t, "hidden", doc.Style("host", "overflow"))
	assert.Equal(t, big, doc.Markup(v.Container()))

	doc, _, _ = mountNew(t, "")
	assert.Equal(t, "hidden", doc.Style("host", "overflow"))
}

func TestClose(t *testing.T) {
	doc, m, v := mountNew(t, "<rect/>")
	v.Close()
	v.Close() // No-op.
	assert.Equal(t, 0, m.Subscribers(model.ChangeEvent(AttrSVG)))
	m.Set(AttrSVG, "<line/>")
	assert.Equal(t, "<rect/>", doc.Markup(v.Container()))
	assert.Equal(t, []dom.Handle{v.Container()}, doc.Children("host"), "container is left to the host")

	// Closing a view never mounted does nothing.
	New(doc, "host", m).Close()
}

func TestMissingAttribute(t *testing.T) {
	doc := dom.NewMemory()
	m := model.New(nil)
	v := New(doc, doc.Root("host"), m)
	v.Mount()
	defer v.Close()
	assert.Equal(t, "", doc.Markup(v.Container()))
	m.Set(AttrSVG, "<rect/>")
	assert.Equal(t, "<rect/>", doc.Markup(v.Container()))
}

// racingDocument starts a change of the model while the first markup is being written.
type racingDocument struct {
	*dom.Memory
	m       *model.Model
	started bool
	setDone chan struct{}
}

func (d *racingDocument) SetInnerMarkup(h dom.Handle, markup string) {
	d.Memory.SetInnerMarkup(h, markup)
	if d.started {
		return
	}
	d.started = true
	setStarted := make(chan struct{})
	go func() {
		close(setStarted)
		d.m.Set(AttrSVG, "<line/>")
		close(d.setDone)
	}()
	<-setStarted
	// Give the concurrent Set time to reach the model.
	time.Sleep(20 * time.Millisecond)
}

func TestMountConcurrentSet(t *testing.T) {
	m := model.New(map[string]any{AttrSVG: "<rect/>"})
	doc := &racingDocument{Memory: dom.NewMemory(), m: m, setDone: make(chan struct{})}
	v := New(doc, doc.Root("host"), m)
	v.Mount()
	defer v.Close()

	select {
	case <-doc.setDone:
	case <-time.After(5 * time.Second):
		t.Fatal("concurrent Set never finished")
	}
	assert.Equal(t, "<line/>", m.String(AttrSVG))
	assert.Equal(t, "<line/>", doc.Markup(v.Container()), "container must hold the latest value")
	assert.Equal(t, 2, doc.Writes(v.Container()))
}
