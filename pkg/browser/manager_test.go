package browser

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManager_RequiresInitialize(t *testing.T) {
	m := NewSessionManager()
	_, err := m.StartSession("main", SessionOptions{Headless: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
}

func TestSessionManager_UnknownSession(t *testing.T) {
	m := NewSessionManager()
	err := m.CloseSession("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, m.Shutdown())
}

func TestWithDefaults(t *testing.T) {
	opts := withDefaults(SessionOptions{})
	require.NotNil(t, opts.Viewport)
	assert.Equal(t, DefaultViewportWidth, opts.Viewport.Width)
	assert.Equal(t, DefaultViewportHeight, opts.Viewport.Height)
	assert.Equal(t, DefaultTimeout, opts.Timeout)

	opts = withDefaults(SessionOptions{Viewport: &Viewport{Width: 10, Height: 20}, Timeout: 5})
	assert.Equal(t, 10, opts.Viewport.Width)
	assert.Equal(t, 5.0, opts.Timeout)
}

func TestScreenshotName(t *testing.T) {
	assert.Equal(t, "001_login_page.png", screenshotName(1, "login page"))
	assert.Equal(t, "012_after_submit.png", screenshotName(12, "after/submit!"))
	assert.Equal(t, "003_page.png", screenshotName(3, "///"))
}

func TestScreenshot_DisabledWithoutArtifactsDir(t *testing.T) {
	s := &Session{}
	path, err := s.Screenshot("anything")
	require.NoError(t, err)
	assert.Empty(t, path)
}

// TestSession_Live drives a real Chromium against a data URL. It needs the
// Playwright driver and browsers, so it only runs on request.
func TestSession_Live(t *testing.T) {
	if os.Getenv("THREADLINE_BROWSER_TESTS") != "1" {
		t.Skip("set THREADLINE_BROWSER_TESTS=1 to run browser tests")
	}

	m := NewSessionManager()
	require.NoError(t, m.Initialize())
	defer m.Shutdown()

	dir := t.TempDir()
	session, err := m.StartSession("live", SessionOptions{
		Headless:     true,
		Args:         DefaultArgs,
		Timeout:      10000,
		ArtifactsDir: dir,
	})
	require.NoError(t, err)

	_, err = m.StartSession("live", SessionOptions{Headless: true})
	assert.ErrorContains(t, err, "already exists")

	page := `data:text/html,<input id="name"><button id="go" onclick="document.title='clicked'">Go</button><p id="msg">hello <b>there</b></p>`
	require.NoError(t, session.Navigate(page, NavigateOptions{WaitUntil: "load"}))

	selector, err := session.Probe([]string{"#missing", "#name"}, ProbeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "#name", selector)

	_, err = session.Probe([]string{"#missing"}, ProbeOptions{Timeout: 200})
	assert.ErrorIs(t, err, ErrNoMatch)

	_, err = session.FillFirst([]string{"#name"}, "threadline", ProbeOptions{})
	require.NoError(t, err)
	value, err := session.Evaluate(`() => document.querySelector('#name').value`)
	require.NoError(t, err)
	assert.Equal(t, "threadline", value)

	require.NoError(t, session.ClickRole("button", "Go", 2000))
	title, err := session.Evaluate(`() => document.title`)
	require.NoError(t, err)
	assert.Equal(t, "clicked", title)

	text, err := session.Text("#msg")
	require.NoError(t, err)
	assert.Equal(t, "hello there", text)

	path, err := session.Screenshot("done")
	require.NoError(t, err)
	assert.FileExists(t, path)

	statePath := dir + "/state.json"
	require.NoError(t, session.SaveStorageState(statePath))
	assert.FileExists(t, statePath)

	require.NoError(t, m.CloseSession("live"))
	assert.Error(t, m.CloseSession("live"))
}
