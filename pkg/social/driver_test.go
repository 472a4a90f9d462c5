package social

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/entrhq/threadline/pkg/browser"
	"github.com/entrhq/threadline/pkg/config"
)

// fakeDriver is an in-memory page. Selectors listed in present exist; any
// recorded action listed in reveal makes more selectors appear.
type fakeDriver struct {
	url     string
	present map[string]bool
	reveal  map[string][]string
	content string
	attrs   map[string]string
	texts   map[string]string
	scripts map[string]interface{}

	roleErr error
	textErr error
	fillErr error
	navErr  error

	actions []string
	saved   []string
}

var _ Driver = (*fakeDriver)(nil)

func newFakeDriver(present ...string) *fakeDriver {
	d := &fakeDriver{
		url:     "about:blank",
		present: make(map[string]bool),
		reveal:  make(map[string][]string),
		attrs:   make(map[string]string),
		texts:   make(map[string]string),
		scripts: make(map[string]interface{}),
	}
	for _, s := range present {
		d.present[s] = true
	}
	return d
}

func (d *fakeDriver) record(action string) {
	d.actions = append(d.actions, action)
	for _, s := range d.reveal[action] {
		d.present[s] = true
	}
}

func (d *fakeDriver) Navigate(url string, opts browser.NavigateOptions) error {
	if d.navErr != nil {
		return d.navErr
	}
	d.url = url
	d.record("goto:" + url)
	return nil
}

func (d *fakeDriver) URL() string { return d.url }

func (d *fakeDriver) WaitForLoad(state string, timeout float64) error { return nil }

func (d *fakeDriver) Wait(opts browser.WaitOptions) error {
	if !d.present[opts.Selector] {
		return fmt.Errorf("timeout waiting for %s", opts.Selector)
	}
	return nil
}

func (d *fakeDriver) Fill(opts browser.FillOptions) error {
	if d.fillErr != nil {
		return d.fillErr
	}
	if !d.present[opts.Selector] {
		return fmt.Errorf("no element %s", opts.Selector)
	}
	d.record("fill:" + opts.Selector + "=" + opts.Value)
	return nil
}

func (d *fakeDriver) Click(opts browser.ClickOptions) error {
	if !d.present[opts.Selector] {
		return fmt.Errorf("no element %s", opts.Selector)
	}
	d.record("click:" + opts.Selector)
	return nil
}

func (d *fakeDriver) Probe(candidates []string, opts browser.ProbeOptions) (string, error) {
	for _, c := range candidates {
		if d.present[c] {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %s", browser.ErrNoMatch, strings.Join(candidates, " | "))
}

func (d *fakeDriver) ClickFirst(candidates []string, delay float64, opts browser.ProbeOptions) (string, error) {
	selector, err := d.Probe(candidates, opts)
	if err != nil {
		return "", err
	}
	return selector, d.Click(browser.ClickOptions{Selector: selector})
}

func (d *fakeDriver) FillFirst(candidates []string, value string, opts browser.ProbeOptions) (string, error) {
	selector, err := d.Probe(candidates, opts)
	if err != nil {
		return "", err
	}
	return selector, d.Fill(browser.FillOptions{Selector: selector, Value: value})
}

func (d *fakeDriver) ClickRole(role, name string, timeout float64) error {
	if d.roleErr != nil {
		return d.roleErr
	}
	d.record("role:" + name)
	return nil
}

func (d *fakeDriver) ClickText(text string, timeout float64) error {
	if d.textErr != nil {
		return d.textErr
	}
	d.record("text:" + text)
	return nil
}

func (d *fakeDriver) Evaluate(script string, args ...interface{}) (interface{}, error) {
	d.record("eval")
	return d.scripts[script], nil
}

func (d *fakeDriver) Content() (string, error) { return d.content, nil }

func (d *fakeDriver) Text(selector string) (string, error) {
	text, ok := d.texts[selector]
	if !ok {
		return "", fmt.Errorf("no element %s", selector)
	}
	return text, nil
}

func (d *fakeDriver) Attribute(selector, name string) (string, error) {
	value, ok := d.attrs[selector+"|"+name]
	if !ok {
		return "", fmt.Errorf("no element %s", selector)
	}
	return value, nil
}

func (d *fakeDriver) Screenshot(name string) (string, error) { return "", nil }

func (d *fakeDriver) SaveStorageState(path string) error {
	d.saved = append(d.saved, path)
	return nil
}

// indexOf returns the position of the first action with the given prefix.
func (d *fakeDriver) indexOf(prefix string) int {
	for i, a := range d.actions {
		if strings.HasPrefix(a, prefix) {
			return i
		}
	}
	return -1
}

type fakeCodes struct {
	code  string
	err   error
	calls int
}

func (f *fakeCodes) Code(ctx context.Context) (string, error) {
	f.calls++
	return f.code, f.err
}

var errBoom = errors.New("boom")

func testOptions() Options {
	cfg := config.DefaultConfig()
	cfg.Browser.SessionFile = "session.json"
	return Options{
		Config: cfg,
		Credentials: config.Credentials{
			Username: "alice",
			Password: "hunter2",
		},
		Pacer: NoPacer(),
	}
}
