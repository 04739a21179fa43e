package browser

import (
	"fmt"
	"strings"
	"time"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
)

// RemoteOptions configures a Selenium-backed driver session.
type RemoteOptions struct {
	// URL of the WebDriver endpoint, e.g. http://localhost:9515.
	ServerURL string

	// Path to the Chrome/Chromium binary. Empty uses the system default.
	BinaryPath string

	// Chromium user data dir holding the logged-in profile. Empty starts a
	// throwaway profile (a login flow is then required).
	ProfileDir string

	Headless     bool
	ImplicitWait time.Duration
}

// Remote adapts a tebeka/selenium WebDriver to the Driver capability.
type Remote struct {
	wd selenium.WebDriver
}

// NewRemote opens a WebDriver session against opts.ServerURL.
func NewRemote(opts RemoteOptions) (*Remote, error) {
	caps := selenium.Capabilities{"browserName": "chrome"}

	chromeCaps := chrome.Capabilities{Path: opts.BinaryPath}
	if opts.ProfileDir != "" {
		chromeCaps.Args = append(chromeCaps.Args, "--user-data-dir="+opts.ProfileDir)
	}
	if opts.Headless {
		chromeCaps.Args = append(chromeCaps.Args, "--headless=new")
	}
	caps.AddChrome(chromeCaps)

	wd, err := selenium.NewRemote(caps, opts.ServerURL)
	if err != nil {
		return nil, &TransportError{Op: "new session", Err: err}
	}
	if opts.ImplicitWait > 0 {
		if err := wd.SetImplicitWaitTimeout(opts.ImplicitWait); err != nil {
			_ = wd.Quit()
			return nil, &TransportError{Op: "set implicit wait", Err: err}
		}
	}
	return &Remote{wd: wd}, nil
}

// Quit tears down the WebDriver session.
func (r *Remote) Quit() error {
	if err := r.wd.Quit(); err != nil {
		return &TransportError{Op: "quit", Err: err}
	}
	return nil
}

func (r *Remote) Navigate(url string) error {
	if err := r.wd.Get(url); err != nil {
		return &TransportError{Op: "navigate", Err: err}
	}
	return nil
}

func (r *Remote) Refresh() error {
	if err := r.wd.Refresh(); err != nil {
		return &TransportError{Op: "refresh", Err: err}
	}
	return nil
}

func (r *Remote) CurrentURL() (string, error) {
	url, err := r.wd.CurrentURL()
	if err != nil {
		return "", &TransportError{Op: "current url", Err: err}
	}
	return url, nil
}

func (r *Remote) PageSource() (string, error) {
	src, err := r.wd.PageSource()
	if err != nil {
		return "", &TransportError{Op: "page source", Err: err}
	}
	return src, nil
}

func (r *Remote) Locate(sel Selector) (Element, error) {
	el, err := r.wd.FindElement(sel.By, sel.Value)
	if err != nil {
		return nil, mapFindError("locate", err)
	}
	return el, nil
}

func (r *Remote) LocateAll(sel Selector) ([]Element, error) {
	els, err := r.wd.FindElements(sel.By, sel.Value)
	if err != nil {
		return nil, mapFindError("locate all", err)
	}
	out := make([]Element, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out, nil
}

func (r *Remote) LocateIn(scope Element, sel Selector) (Element, error) {
	parent, err := r.webElement(scope)
	if err != nil {
		return nil, err
	}
	el, err := parent.FindElement(sel.By, sel.Value)
	if err != nil {
		return nil, mapFindError("locate in", err)
	}
	return el, nil
}

func (r *Remote) LocateAllIn(scope Element, sel Selector) ([]Element, error) {
	parent, err := r.webElement(scope)
	if err != nil {
		return nil, err
	}
	els, err := parent.FindElements(sel.By, sel.Value)
	if err != nil {
		return nil, mapFindError("locate all in", err)
	}
	out := make([]Element, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out, nil
}

func (r *Remote) Click(el Element) error {
	we, err := r.webElement(el)
	if err != nil {
		return err
	}
	if err := we.Click(); err != nil {
		return mapFindError("click", err)
	}
	return nil
}

func (r *Remote) SendKeys(el Element, keys string) error {
	we, err := r.webElement(el)
	if err != nil {
		return err
	}
	if err := we.SendKeys(keys); err != nil {
		return mapFindError("send keys", err)
	}
	return nil
}

func (r *Remote) GetAttribute(el Element, name string) (string, error) {
	we, err := r.webElement(el)
	if err != nil {
		return "", err
	}
	value, err := we.GetAttribute(name)
	if err != nil {
		return "", mapFindError("get attribute", err)
	}
	return value, nil
}

func (r *Remote) GetText(el Element) (string, error) {
	we, err := r.webElement(el)
	if err != nil {
		return "", err
	}
	text, err := we.Text()
	if err != nil {
		return "", mapFindError("get text", err)
	}
	return text, nil
}

func (r *Remote) WindowHandles() ([]string, error) {
	handles, err := r.wd.WindowHandles()
	if err != nil {
		return nil, &TransportError{Op: "window handles", Err: err}
	}
	return handles, nil
}

func (r *Remote) CurrentWindow() (string, error) {
	handle, err := r.wd.CurrentWindowHandle()
	if err != nil {
		return "", &TransportError{Op: "current window", Err: err}
	}
	return handle, nil
}

func (r *Remote) SwitchWindow(handle string) error {
	if err := r.wd.SwitchWindow(handle); err != nil {
		return &TransportError{Op: "switch window", Err: err}
	}
	return nil
}

// chromeDPExecutor matches the devtools escape hatch the chromedriver-backed
// WebDriver exposes.
type chromeDPExecutor interface {
	ExecuteChromeDPCommand(cmd string, params map[string]interface{}) (interface{}, error)
}

// SetUserAgent overrides the session user agent through the Chrome devtools
// protocol. Drivers other than chromedriver do not support it.
func (r *Remote) SetUserAgent(ua string) error {
	exec, ok := r.wd.(chromeDPExecutor)
	if !ok {
		return &TransportError{Op: "set user agent", Err: fmt.Errorf("driver does not expose devtools commands")}
	}
	_, err := exec.ExecuteChromeDPCommand("Network.setUserAgentOverride", map[string]interface{}{
		"userAgent": ua,
	})
	if err != nil {
		return &TransportError{Op: "set user agent", Err: err}
	}
	return nil
}

func (r *Remote) webElement(el Element) (selenium.WebElement, error) {
	we, ok := el.(selenium.WebElement)
	if !ok {
		return nil, &TransportError{Op: "element handle", Err: fmt.Errorf("foreign element handle %T", el)}
	}
	return we, nil
}

func mapFindError(op string, err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "no such element") || strings.Contains(msg, "stale element") {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return &TransportError{Op: op, Err: err}
}
