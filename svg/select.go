package svg

// Selector matches elements of a drawing, see Element.Select.
type Selector func(e *Element) bool

// HasAttr matches elements that have the attribute set.
func HasAttr(name string) Selector {
	return func(e *Element) bool {
		_, found := e.Attr(name)
		return found
	}
}

// AttrEquals matches elements whose attribute has the given value. Numeric values
// are formatted with Length before comparing, so AttrEquals("r", 10) matches `r="10px"`.
func AttrEquals(name string, value any) Selector {
	want := Length(value)
	return func(e *Element) bool {
		got, found := e.Attr(name)
		return found && got == want
	}
}

// Tag matches elements with the given tag.
func Tag(tag string) Selector {
	return func(e *Element) bool {
		return e.tag == tag
	}
}

// All matches elements matched by every one of the selectors.
func All(selectors ...Selector) Selector {
	return func(e *Element) bool {
		for _, sel := range selectors {
			if !sel(e) {
				return false
			}
		}
		return true
	}
}

// Select returns the first descendant of e matched by sel, or nil if there is none.
// Groups are searched, but are not themselves matched.
func (e *Element) Select(sel Selector) *Element {
	for _, child := range e.children {
		if child.tag == "g" {
			if found := child.Select(sel); found != nil {
				return found
			}
		} else if sel(child) {
			return child
		}
	}
	return nil
}

// SelectAll returns all descendants of e matched by sel, in document order.
// Groups are searched, but are not themselves matched.
func (e *Element) SelectAll(sel Selector) (selection []*Element) {
	for _, child := range e.children {
		if child.tag == "g" {
			selection = append(selection, child.SelectAll(sel)...)
		} else if sel(child) {
			selection = append(selection, child)
		}
	}
	return
}
