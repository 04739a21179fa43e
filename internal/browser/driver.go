package browser

import "fmt"

// Element is an opaque, non-owning reference to a located DOM node.
// Handles are valid only within the current page load: any navigation or
// refresh invalidates them, and they must never be cached across fetches.
type Element interface{}

// Selector identifies DOM nodes for Locate calls.
type Selector struct {
	By    string
	Value string
}

const (
	ByCSS   = "css selector"
	ByID    = "id"
	ByClass = "class name"
	ByTag   = "tag name"
)

func CSS(value string) Selector   { return Selector{By: ByCSS, Value: value} }
func ID(value string) Selector    { return Selector{By: ByID, Value: value} }
func Class(value string) Selector { return Selector{By: ByClass, Value: value} }
func Tag(value string) Selector   { return Selector{By: ByTag, Value: value} }

func (s Selector) String() string {
	return fmt.Sprintf("%s=%s", s.By, s.Value)
}

// Key presses understood by SendKeys.
const (
	KeyEnter     = ""
	KeyBackspace = ""
)

// Driver is the browser capability consumed by the task engine. All calls may
// fail with ErrNotFound (missing element) or a *TransportError (driver or
// browser fault). Implementations are not safe for concurrent use.
type Driver interface {
	Navigate(url string) error
	Refresh() error
	CurrentURL() (string, error)
	PageSource() (string, error)

	Locate(sel Selector) (Element, error)
	LocateAll(sel Selector) ([]Element, error)
	LocateIn(scope Element, sel Selector) (Element, error)
	LocateAllIn(scope Element, sel Selector) ([]Element, error)

	Click(el Element) error
	SendKeys(el Element, keys string) error
	GetAttribute(el Element, name string) (string, error)
	GetText(el Element) (string, error)

	WindowHandles() ([]string, error)
	CurrentWindow() (string, error)
	SwitchWindow(handle string) error
}

// UserAgentSwitcher is implemented by drivers that can swap the session user
// agent in place. Mobile searches require it; callers should degrade
// gracefully when the driver does not support it.
type UserAgentSwitcher interface {
	SetUserAgent(ua string) error
}
