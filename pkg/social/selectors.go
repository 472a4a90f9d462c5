package social

import "fmt"

// Candidate selectors, most specific first. The site reshuffles its markup
// frequently; when a flow breaks, this is usually the only file to touch.
var (
	usernameSelectors = []string{
		`input[name="text"]`,
		`input[autocomplete="username"]`,
		`[data-testid="LoginForm_Username_Input"]`,
		`input[type="text"]`,
	}

	passwordSelectors = []string{
		`input[name="password"]`,
		`input[autocomplete="current-password"]`,
		`[data-testid="LoginForm_Password_Input"]`,
		`input[type="password"]`,
		`input[aria-label="Password"]`,
	}

	codeSelectors = []string{
		`input[data-testid="ocfEnterTextTextInput"]`,
		`input[autocomplete="one-time-code"]`,
		`input[inputmode="numeric"]`,
		`input[name="text"]`,
	}

	// Present only for an authenticated home timeline
	loggedInSelectors = []string{
		`[data-testid="SideNav_NewTweet_Button"]`,
		`[data-testid="AppTabBar_Home_Link"]`,
		`[aria-label="Home"]`,
		`[aria-label="Tweet"]`,
		`[data-testid="tweetButtonInline"]`,
	}

	composeSelectors = []string{
		`a[href="/compose/post"]`,
		`a[href="/compose/tweet"]`,
		`a[data-testid="SideNav_NewTweet_Button"]`,
		`a[aria-label="Post"]`,
		`a[aria-label="Tweet"]`,
		`div[aria-label="Post"]`,
		`div[aria-label="Tweet"]`,
	}

	editorSelectors = []string{
		`div[role="textbox"][data-testid="tweetTextarea_0"]`,
		`div[contenteditable="true"][data-testid="tweetTextarea_0"]`,
		`div[role="textbox"]`,
		`div[contenteditable="true"]`,
	}

	postButtonSelectors = []string{
		`div[data-testid="tweetButtonInline"]`,
		`[data-testid="tweetButton"]`,
		`div[role="button"]:has-text("Post")`,
		`div[role="button"]:has-text("Tweet")`,
	}

	threadPostButtonSelectors = []string{
		`[data-testid="tweetButton"]`,
		`div[role="button"]:has-text("Post all")`,
	}

	addButtonSelectors = []string{
		`[data-testid="addButton"]`,
		`div[aria-label="Add"]`,
		`div[aria-label="Add post"]`,
		`div[role="button"]:has-text("Add")`,
	}

	postSelectors = []string{
		`article[data-testid="tweet"]`,
		`[data-testid="tweet"]`,
		`article[role="article"]`,
	}

	postTextSelectors = []string{
		`[data-testid="tweetText"]`,
	}

	replyButtonSelectors = []string{
		`[data-testid="reply"]`,
		`div[aria-label="Reply"]`,
		`div[role="button"]:has-text("Reply")`,
	}

	replyEditorSelectors = []string{
		`[data-testid="tweetTextarea_0"]`,
		`div[role="textbox"]`,
		`div[contenteditable="true"]`,
	}

	replySubmitSelectors = []string{
		`[data-testid="tweetButton"]`,
		`div[data-testid="tweetButtonInline"]`,
		`div[role="button"]:has-text("Reply")`,
		`div[role="button"]:has-text("Post")`,
	}
)

// threadEditor returns the selector of the i-th editor in a thread composer.
func threadEditor(i int) string {
	return fmt.Sprintf(`[data-testid="tweetTextarea_%d"]`, i)
}
