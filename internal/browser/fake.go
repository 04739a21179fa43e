package browser

import "fmt"

// FakeElement is a scripted DOM node used by the Fake driver in tests.
type FakeElement struct {
	Text  string
	Attrs map[string]string

	// OnClick runs when the element is clicked; it typically mutates the
	// owning page to simulate the site reacting.
	OnClick func() error

	// Typed accumulates SendKeys input.
	Typed []string

	children map[string][]*FakeElement
}

// SetAttr sets an attribute, allocating the map on first use.
func (e *FakeElement) SetAttr(name, value string) *FakeElement {
	if e.Attrs == nil {
		e.Attrs = map[string]string{}
	}
	e.Attrs[name] = value
	return e
}

// AddChild registers nested elements reachable via LocateIn.
func (e *FakeElement) AddChild(sel Selector, els ...*FakeElement) *FakeElement {
	if e.children == nil {
		e.children = map[string][]*FakeElement{}
	}
	e.children[sel.String()] = append(e.children[sel.String()], els...)
	return e
}

// FakePage is the element tree served for one URL.
type FakePage struct {
	Source   string
	elements map[string][]*FakeElement
}

func NewFakePage() *FakePage {
	return &FakePage{elements: map[string][]*FakeElement{}}
}

func (p *FakePage) Add(sel Selector, els ...*FakeElement) *FakePage {
	p.elements[sel.String()] = append(p.elements[sel.String()], els...)
	return p
}

func (p *FakePage) Set(sel Selector, els ...*FakeElement) *FakePage {
	p.elements[sel.String()] = els
	return p
}

func (p *FakePage) Clear(sel Selector) *FakePage {
	delete(p.elements, sel.String())
	return p
}

// Fake is an in-memory scripted Driver for tests. It is deliberately strict:
// locating on a page that was never registered still succeeds with not-found,
// mirroring a live page that simply lacks the element.
type Fake struct {
	pages  map[string]*FakePage
	url    string
	active string

	Windows   []string
	UserAgent string
	Refreshes int
	NavLog    []string

	// NavigateErr fails navigation to specific URLs.
	NavigateErr map[string]error
}

func NewFake() *Fake {
	return &Fake{
		pages:   map[string]*FakePage{},
		Windows: []string{"w0"},
		active:  "w0",
	}
}

// Register installs (or replaces) the page served at url and returns it.
func (f *Fake) Register(url string) *FakePage {
	p := NewFakePage()
	f.pages[url] = p
	return p
}

// Page returns the page registered at url, creating it when absent, so tests
// can mutate element trees from OnClick hooks.
func (f *Fake) Page(url string) *FakePage {
	p, ok := f.pages[url]
	if !ok {
		p = f.Register(url)
	}
	return p
}

func (f *Fake) Navigate(url string) error {
	if err := f.NavigateErr[url]; err != nil {
		return err
	}
	f.url = url
	f.NavLog = append(f.NavLog, url)
	return nil
}

func (f *Fake) Refresh() error {
	f.Refreshes++
	return nil
}

func (f *Fake) CurrentURL() (string, error) { return f.url, nil }

func (f *Fake) PageSource() (string, error) {
	if p, ok := f.pages[f.url]; ok {
		return p.Source, nil
	}
	return "", nil
}

func (f *Fake) Locate(sel Selector) (Element, error) {
	els, err := f.LocateAll(sel)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, ErrNotFound
	}
	return els[0], nil
}

func (f *Fake) LocateAll(sel Selector) ([]Element, error) {
	p, ok := f.pages[f.url]
	if !ok {
		return nil, nil
	}
	found := p.elements[sel.String()]
	out := make([]Element, len(found))
	for i, el := range found {
		out[i] = el
	}
	return out, nil
}

func (f *Fake) LocateIn(scope Element, sel Selector) (Element, error) {
	els, err := f.LocateAllIn(scope, sel)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, ErrNotFound
	}
	return els[0], nil
}

func (f *Fake) LocateAllIn(scope Element, sel Selector) ([]Element, error) {
	parent, err := f.fakeElement(scope)
	if err != nil {
		return nil, err
	}
	found := parent.children[sel.String()]
	out := make([]Element, len(found))
	for i, el := range found {
		out[i] = el
	}
	return out, nil
}

func (f *Fake) Click(el Element) error {
	fe, err := f.fakeElement(el)
	if err != nil {
		return err
	}
	if fe.OnClick != nil {
		return fe.OnClick()
	}
	return nil
}

func (f *Fake) SendKeys(el Element, keys string) error {
	fe, err := f.fakeElement(el)
	if err != nil {
		return err
	}
	fe.Typed = append(fe.Typed, keys)
	return nil
}

func (f *Fake) GetAttribute(el Element, name string) (string, error) {
	fe, err := f.fakeElement(el)
	if err != nil {
		return "", err
	}
	return fe.Attrs[name], nil
}

func (f *Fake) GetText(el Element) (string, error) {
	fe, err := f.fakeElement(el)
	if err != nil {
		return "", err
	}
	return fe.Text, nil
}

func (f *Fake) WindowHandles() ([]string, error) {
	return append([]string(nil), f.Windows...), nil
}

func (f *Fake) CurrentWindow() (string, error) { return f.active, nil }

func (f *Fake) SwitchWindow(handle string) error {
	for _, w := range f.Windows {
		if w == handle {
			f.active = handle
			return nil
		}
	}
	return &TransportError{Op: "switch window", Err: fmt.Errorf("unknown window %q", handle)}
}

func (f *Fake) SetUserAgent(ua string) error {
	f.UserAgent = ua
	return nil
}

func (f *Fake) fakeElement(el Element) (*FakeElement, error) {
	fe, ok := el.(*FakeElement)
	if !ok {
		return nil, &TransportError{Op: "element handle", Err: fmt.Errorf("foreign element handle %T", el)}
	}
	return fe, nil
}
