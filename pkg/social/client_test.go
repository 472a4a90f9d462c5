package social

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/entrhq/threadline/pkg/thread"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginDriver() *fakeDriver {
	d := newFakeDriver(usernameSelectors[0], passwordSelectors[0])
	d.reveal["role:Log in"] = []string{loggedInSelectors[1]}
	d.content = "<html>Home timeline</html>"
	return d
}

func TestStart_ReusesPersistedSession(t *testing.T) {
	d := newFakeDriver(loggedInSelectors[0])

	c, err := Start(context.Background(), d, testOptions())
	require.NoError(t, err)
	assert.True(t, c.LoggedIn())
	assert.Equal(t, []string{"goto:https://x.com/home"}, d.actions)
	assert.Empty(t, d.saved)
}

func TestStart_LogsInWhenSessionMissing(t *testing.T) {
	d := loginDriver()

	c, err := Start(context.Background(), d, testOptions())
	require.NoError(t, err)
	assert.True(t, c.LoggedIn())

	user := d.indexOf(`fill:input[name="text"]=alice`)
	next := d.indexOf("role:Next")
	pass := d.indexOf(`fill:input[name="password"]=hunter2`)
	submit := d.indexOf("role:Log in")
	require.True(t, user >= 0 && next >= 0 && pass >= 0 && submit >= 0, "actions: %v", d.actions)
	assert.Less(t, user, next)
	assert.Less(t, next, pass)
	assert.Less(t, pass, submit)
	assert.Contains(t, d.actions, "goto:https://x.com/i/flow/login")
	assert.Equal(t, []string{"session.json"}, d.saved)
}

func TestLogin_MissingCredentials(t *testing.T) {
	opts := testOptions()
	opts.Credentials.Password = ""
	c, err := New(loginDriver(), opts)
	require.NoError(t, err)

	err = c.Login(context.Background())
	assert.ErrorIs(t, err, ErrAuthFailed)
	assert.False(t, c.LoggedIn())
}

func TestLogin_ButtonFallbacks(t *testing.T) {
	d := loginDriver()
	d.roleErr = errBoom
	d.reveal["text:Log in"] = []string{loggedInSelectors[1]}

	c, err := New(d, testOptions())
	require.NoError(t, err)
	require.NoError(t, c.Login(context.Background()))
	assert.Contains(t, d.actions, "text:Next")
	assert.Contains(t, d.actions, "text:Log in")
}

func TestLogin_FillFallsBackToScript(t *testing.T) {
	d := newFakeDriver()
	d.scripts[fillScript] = true
	d.reveal["role:Log in"] = []string{loggedInSelectors[0]}

	c, err := New(d, testOptions())
	require.NoError(t, err)
	require.NoError(t, c.Login(context.Background()))
}

func TestLogin_VerificationCode(t *testing.T) {
	d := loginDriver()
	d.present[codeSelectors[0]] = true
	d.content = "We sent you a confirmation code"
	codes := &fakeCodes{code: "482910"}

	opts := testOptions()
	opts.Codes = codes
	c, err := New(d, opts)
	require.NoError(t, err)
	require.NoError(t, c.Login(context.Background()))

	assert.Equal(t, 1, codes.calls)
	code := d.indexOf(fmt.Sprintf("fill:%s=482910", codeSelectors[0]))
	require.GreaterOrEqual(t, code, 0, "actions: %v", d.actions)
	assert.Less(t, d.indexOf("role:Log in"), code)
}

func TestLogin_VerificationCodeWithoutSource(t *testing.T) {
	d := loginDriver()
	d.content = "Verify it’s you"

	c, err := New(d, testOptions())
	require.NoError(t, err)
	err = c.Login(context.Background())
	require.ErrorIs(t, err, ErrAuthFailed)
	assert.Contains(t, err.Error(), "no code source")
	assert.Empty(t, d.saved)
}

func TestLogin_CodeSourceError(t *testing.T) {
	d := loginDriver()
	d.content = "confirmation code"

	opts := testOptions()
	opts.Codes = &fakeCodes{err: errBoom}
	c, err := New(d, opts)
	require.NoError(t, err)
	err = c.Login(context.Background())
	assert.ErrorIs(t, err, ErrAuthFailed)
	assert.Contains(t, err.Error(), "boom")
}

func TestLogin_DismissesOtherChallenges(t *testing.T) {
	d := loginDriver()
	d.content = "We noticed an unusual login attempt"
	d.scripts[clickButtonTextScript] = true

	c, err := New(d, testOptions())
	require.NoError(t, err)
	require.NoError(t, c.Login(context.Background()))
}

func TestLogin_VerificationFails(t *testing.T) {
	d := loginDriver()
	d.reveal = map[string][]string{}
	d.scripts[pageErrorsScript] = "Wrong password!"

	c, err := New(d, testOptions())
	require.NoError(t, err)
	err = c.Login(context.Background())
	require.ErrorIs(t, err, ErrAuthFailed)
	assert.Contains(t, err.Error(), "Wrong password!")
	assert.False(t, c.LoggedIn())
}

func TestLogin_VerifiedByPageScript(t *testing.T) {
	d := loginDriver()
	d.reveal = map[string][]string{}
	d.scripts[homeCheckScript] = true

	c, err := New(d, testOptions())
	require.NoError(t, err)
	require.NoError(t, c.Login(context.Background()))
}

func TestLogin_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, err := New(loginDriver(), testOptions())
	require.NoError(t, err)
	assert.ErrorIs(t, c.Login(ctx), context.Canceled)
}

func TestPublish_Empty(t *testing.T) {
	c, err := New(newFakeDriver(), testOptions())
	require.NoError(t, err)

	assert.ErrorIs(t, c.Publish(context.Background(), nil), ErrEmptyContent)
	assert.ErrorIs(t, c.Publish(context.Background(), []string{"one", "  "}), ErrEmptyContent)

	_, err = c.PublishContent(context.Background(), " \n ")
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestPublish_Single(t *testing.T) {
	d := newFakeDriver(composeSelectors[2], editorSelectors[0], postButtonSelectors[1])
	c, err := New(d, testOptions())
	require.NoError(t, err)

	require.NoError(t, c.Publish(context.Background(), []string{"hello world"}))

	assert.Equal(t, []string{
		"goto:https://x.com/home",
		"click:" + composeSelectors[2],
		"fill:" + editorSelectors[0] + "=hello world",
		"click:" + postButtonSelectors[1],
	}, d.actions)
}

func TestPublish_SingleSkipsNavigationWhenHome(t *testing.T) {
	d := newFakeDriver(composeSelectors[0], editorSelectors[2], postButtonSelectors[0])
	d.url = "https://x.com/home?tab=following"
	c, err := New(d, testOptions())
	require.NoError(t, err)

	require.NoError(t, c.Publish(context.Background(), []string{"hi"}))
	assert.Equal(t, -1, d.indexOf("goto:"))
}

func TestPublish_SingleComposeScriptFallback(t *testing.T) {
	d := newFakeDriver(editorSelectors[0], postButtonSelectors[0])
	d.url = "https://x.com/home"
	d.scripts[clickSelectorScript] = true
	c, err := New(d, testOptions())
	require.NoError(t, err)

	require.NoError(t, c.Publish(context.Background(), []string{"hi"}))
}

func TestPublish_SingleMissingEditor(t *testing.T) {
	d := newFakeDriver(composeSelectors[0])
	d.url = "https://x.com/home"
	c, err := New(d, testOptions())
	require.NoError(t, err)

	err = c.Publish(context.Background(), []string{"hi"})
	assert.ErrorIs(t, err, ErrPublishFailed)
}

func TestPublish_ThreadKeepsOrder(t *testing.T) {
	d := newFakeDriver(threadEditor(0), addButtonSelectors[0], threadPostButtonSelectors[0])
	d.reveal["click:"+addButtonSelectors[0]] = []string{threadEditor(1), threadEditor(2)}
	c, err := New(d, testOptions())
	require.NoError(t, err)

	require.NoError(t, c.Publish(context.Background(), []string{"first", "second", "third"}))

	assert.Equal(t, []string{
		"goto:https://x.com/compose/post",
		"fill:" + threadEditor(0) + "=first",
		"click:" + addButtonSelectors[0],
		"fill:" + threadEditor(1) + "=second",
		"click:" + addButtonSelectors[0],
		"fill:" + threadEditor(2) + "=third",
		"click:" + threadPostButtonSelectors[0],
	}, d.actions)
}

func TestPublish_ThreadMissingAddButton(t *testing.T) {
	d := newFakeDriver(threadEditor(0))
	c, err := New(d, testOptions())
	require.NoError(t, err)

	err = c.Publish(context.Background(), []string{"first", "second"})
	require.ErrorIs(t, err, ErrPublishFailed)
	assert.Contains(t, err.Error(), "post 2/2")
	assert.Equal(t, -1, d.indexOf("click:"+threadPostButtonSelectors[0]))
}

func TestPublishContent(t *testing.T) {
	long := strings.Repeat("Sentence number one is here. ", 25)
	want, err := thread.Segment(long, thread.DefaultLimit)
	require.NoError(t, err)
	require.Greater(t, len(want), 1)

	d := newFakeDriver(threadEditor(0), addButtonSelectors[0], threadPostButtonSelectors[0])
	var editors []string
	for i := 1; i < len(want); i++ {
		editors = append(editors, threadEditor(i))
	}
	d.reveal["click:"+addButtonSelectors[0]] = editors
	c, err := New(d, testOptions())
	require.NoError(t, err)

	got, err := c.PublishContent(context.Background(), long)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPublishContent_AtCapIsSingle(t *testing.T) {
	content := strings.Repeat("a", thread.PlatformCap)
	d := newFakeDriver(composeSelectors[0], editorSelectors[0], postButtonSelectors[0])
	d.url = "https://x.com/home"
	c, err := New(d, testOptions())
	require.NoError(t, err)

	got, err := c.PublishContent(context.Background(), content)
	require.NoError(t, err)
	assert.Equal(t, []string{content}, got)
}

func TestFetchLatestPost(t *testing.T) {
	d := newFakeDriver(postSelectors[0])
	d.attrs[postSelectors[0]+` a[href*="/status/"]|href`] = "/alice/status/1790000000000000001/analytics"
	d.texts[postSelectors[0]+" "+postTextSelectors[0]] = "gm everyone"
	c, err := New(d, testOptions())
	require.NoError(t, err)

	post, err := c.FetchLatestPost(context.Background(), "@alice")
	require.NoError(t, err)
	assert.Equal(t, &Post{
		URL:     "https://x.com/alice/status/1790000000000000001",
		Text:    "gm everyone",
		Account: "alice",
	}, post)
	assert.Equal(t, "goto:https://x.com/alice", d.actions[0])
}

func TestFetchLatestPost_FallsBackToCardText(t *testing.T) {
	d := newFakeDriver(postSelectors[2])
	d.attrs[postSelectors[2]+` a[href*="/status/"]|href`] = "https://x.com/bob/status/7"
	d.texts[postSelectors[2]] = "Bob\n@bob\nhello"
	c, err := New(d, testOptions())
	require.NoError(t, err)

	post, err := c.FetchLatestPost(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, "https://x.com/bob/status/7", post.URL)
	assert.Equal(t, "Bob\n@bob\nhello", post.Text)
}

func TestFetchLatestPost_NotFound(t *testing.T) {
	c, err := New(newFakeDriver(), testOptions())
	require.NoError(t, err)
	_, err = c.FetchLatestPost(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	d := newFakeDriver(postSelectors[0])
	c, err = New(d, testOptions())
	require.NoError(t, err)
	_, err = c.FetchLatestPost(context.Background(), "nolinks")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.FetchLatestPost(context.Background(), " @ ")
	assert.Error(t, err)
}

func TestPostReply_Validation(t *testing.T) {
	c, err := New(newFakeDriver(), testOptions())
	require.NoError(t, err)
	ctx := context.Background()
	target := "https://x.com/alice/status/42"

	assert.ErrorIs(t, c.PostReply(ctx, target, "   "), ErrEmptyContent)
	assert.ErrorIs(t, c.PostReply(ctx, target, strings.Repeat("x", thread.PlatformCap+1)), ErrTooLong)
	assert.ErrorIs(t, c.PostReply(ctx, "https://evil.example/alice/status/42", "hi"), ErrTargetNotAllowed)
	assert.ErrorIs(t, c.PostReply(ctx, "https://x.com/alice", "hi"), ErrTargetNotAllowed)
}

func TestPostReply(t *testing.T) {
	d := newFakeDriver(replyButtonSelectors[0], replyEditorSelectors[0], replySubmitSelectors[0])
	c, err := New(d, testOptions())
	require.NoError(t, err)

	target := "https://twitter.com/alice/status/42"
	require.NoError(t, c.PostReply(context.Background(), target, " nice one "))
	assert.Equal(t, []string{
		"goto:" + target,
		"click:" + replyButtonSelectors[0],
		"fill:" + replyEditorSelectors[0] + "=nice one",
		"click:" + replySubmitSelectors[0],
	}, d.actions)
}

func TestPostReply_MissingButton(t *testing.T) {
	c, err := New(newFakeDriver(), testOptions())
	require.NoError(t, err)
	err = c.PostReply(context.Background(), "https://x.com/alice/status/42", "hi")
	assert.ErrorIs(t, err, ErrPublishFailed)
}

func TestNew_InvalidPattern(t *testing.T) {
	opts := testOptions()
	opts.Config.Reply.AllowedTargets = []string{"[oops"}
	_, err := New(newFakeDriver(), opts)
	assert.Error(t, err)
}

func TestClose_PersistsSession(t *testing.T) {
	d := newFakeDriver()
	c, err := New(d, testOptions())
	require.NoError(t, err)

	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, []string{"session.json"}, d.saved)
}
