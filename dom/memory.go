package dom

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/exp/slices"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"k8s.io/klog/v2"
)

// Memory is an in-memory Document. It is safe for concurrent use.
//
// Besides the Document operations, it offers accessors to inspect what was
// rendered, and how many times: see Markup, Writes, Style, Children and Render.
type Memory struct {
	mu       sync.Mutex
	elements map[Handle]*memElement
	count    int
}

type memElement struct {
	node     *html.Node
	parent   Handle
	children []Handle

	// markup is the raw string last given to SetInnerMarkup, and writes the number of calls.
	markup string
	writes int

	styles     map[string]string
	styleOrder []string
}

// NewMemory returns an empty in-memory document.
func NewMemory() *Memory {
	return &Memory{elements: make(map[Handle]*memElement)}
}

func newMemElement(tag string) *memElement {
	node := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	if tag == "svg" {
		node.Namespace = "svg"
	}
	return &memElement{node: node, styles: make(map[string]string)}
}

// Root creates a `<div>` host element identified by id, and returns its handle.
// If it already exists, it simply returns its handle.
func (d *Memory) Root(id string) Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	h := Handle(id)
	if _, found := d.elements[h]; !found {
		e := newMemElement("div")
		e.node.Attr = []html.Attribute{{Key: "id", Val: id}}
		d.elements[h] = e
	}
	return h
}

// getLocked returns the element for handle h, or nil if it doesn't exist. It assumes d.mu is locked.
func (d *Memory) getLocked(h Handle, op string) *memElement {
	e, found := d.elements[h]
	if !found {
		klog.Warningf("dom.Memory.%s(): unknown element %q", op, h)
		return nil
	}
	return e
}

// CreateElement implements Document.
func (d *Memory) CreateElement(tag string) Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.count++
	h := Handle(fmt.Sprintf("%s_%d", tag, d.count))
	e := newMemElement(tag)
	e.node.Attr = []html.Attribute{{Key: "id", Val: string(h)}}
	d.elements[h] = e
	return h
}

// AppendChild implements Document.
func (d *Memory) AppendChild(parent, child Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, c := d.getLocked(parent, "AppendChild"), d.getLocked(child, "AppendChild")
	if p == nil || c == nil {
		return
	}
	d.detachLocked(child, c)
	p.node.AppendChild(c.node)
	p.children = append(p.children, child)
	c.parent = parent
}

// detachLocked removes element c (with handle h) from its parent, if it has one.
func (d *Memory) detachLocked(h Handle, c *memElement) {
	if c.node.Parent != nil {
		c.node.Parent.RemoveChild(c.node)
	}
	if c.parent == "" {
		return
	}
	if p, found := d.elements[c.parent]; found {
		p.children = slices.DeleteFunc(p.children, func(ch Handle) bool { return ch == h })
	}
	c.parent = ""
}

// SetInnerMarkup implements Document. The markup is parsed in the context of the element,
// so SVG content is parsed as SVG. Parsing problems are not reported: whatever the parser
// manages to recover is kept.
func (d *Memory) SetInnerMarkup(h Handle, markup string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e := d.getLocked(h, "SetInnerMarkup")
	if e == nil {
		return
	}
	for _, child := range slices.Clone(e.children) {
		d.detachLocked(child, d.elements[child])
	}
	for e.node.FirstChild != nil {
		e.node.RemoveChild(e.node.FirstChild)
	}
	e.markup = markup
	e.writes++

	nodes, err := html.ParseFragment(strings.NewReader(markup), e.node)
	if err != nil {
		klog.V(1).Infof("dom.Memory.SetInnerMarkup(%q): content dropped, failed to parse: %v", h, err)
		return
	}
	for _, node := range nodes {
		e.node.AppendChild(node)
	}
}

// SetStyle implements Document. The styles are also reflected in the element's `style` attribute.
func (d *Memory) SetStyle(h Handle, property, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e := d.getLocked(h, "SetStyle")
	if e == nil {
		return
	}
	if _, found := e.styles[property]; !found {
		e.styleOrder = append(e.styleOrder, property)
	}
	e.styles[property] = value

	parts := make([]string, 0, len(e.styleOrder))
	for _, prop := range e.styleOrder {
		parts = append(parts, fmt.Sprintf("%s: %s;", prop, e.styles[prop]))
	}
	style := strings.Join(parts, " ")
	e.node.Attr = slices.DeleteFunc(e.node.Attr, func(attr html.Attribute) bool { return attr.Key == "style" })
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: "style", Val: style})
}

// Markup returns the raw markup last set with SetInnerMarkup on the element.
func (d *Memory) Markup(h Handle) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, found := d.elements[h]; found {
		return e.markup
	}
	return ""
}

// Writes returns the number of times SetInnerMarkup was called on the element.
func (d *Memory) Writes(h Handle) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, found := d.elements[h]; found {
		return e.writes
	}
	return 0
}

// Style returns the value of a style property of the element, or "" if not set.
func (d *Memory) Style(h Handle, property string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, found := d.elements[h]; found {
		return e.styles[property]
	}
	return ""
}

// Tag returns the tag of the element, or "" if it doesn't exist.
func (d *Memory) Tag(h Handle) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, found := d.elements[h]; found {
		return e.node.Data
	}
	return ""
}

// Children returns the handles of the elements appended to the element with AppendChild,
// and still attached to it.
func (d *Memory) Children(h Handle) []Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, found := d.elements[h]; found {
		return slices.Clone(e.children)
	}
	return nil
}

// Parent returns the handle of the element's parent, or "" if it is detached.
func (d *Memory) Parent(h Handle) Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, found := d.elements[h]; found {
		return e.parent
	}
	return ""
}

// Render serializes the element and its whole (parsed) content as HTML.
func (d *Memory) Render(h Handle) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, found := d.elements[h]
	if !found {
		return ""
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, e.node); err != nil {
		klog.Warningf("dom.Memory.Render(%q): %v", h, err)
	}
	return buf.String()
}

// Elements returns the number of parsed elements under h with the given tag,
// e.g. Elements(container, "circle").
func (d *Memory) Elements(h Handle, tag string) (count int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, found := d.elements[h]
	if !found {
		return 0
	}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == tag {
				count++
			}
			walk(c)
		}
	}
	walk(e.node)
	return
}

// IsSVG returns whether the element was created in the SVG namespace.
func (d *Memory) IsSVG(h Handle) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, found := d.elements[h]
	return found && e.node.Namespace == "svg"
}
