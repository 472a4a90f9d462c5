package social

// In-page fallbacks used when Playwright's own actionability checks refuse an
// element the page will still accept. Values are always passed as arguments,
// never interpolated into the source.

// fillScript sets the value of the first element matching any selector and
// fires the events the site's form handlers listen for.
const fillScript = `([selectors, value]) => {
	for (const selector of selectors) {
		const el = document.querySelector(selector);
		if (!el) continue;
		el.focus();
		el.value = value;
		el.dispatchEvent(new Event('input', { bubbles: true }));
		el.dispatchEvent(new Event('change', { bubbles: true }));
		return true;
	}
	return false;
}`

// clickButtonTextScript clicks the first role=button whose text contains any
// of the given labels.
const clickButtonTextScript = `(labels) => {
	const buttons = Array.from(document.querySelectorAll('div[role="button"], button'));
	const match = buttons.find(el => labels.some(label => el.textContent.includes(label)));
	if (!match) return false;
	match.click();
	return true;
}`

// clickSelectorScript clicks the first element matching any selector.
const clickSelectorScript = `(selectors) => {
	for (const selector of selectors) {
		const el = document.querySelector(selector);
		if (el) {
			el.click();
			return true;
		}
	}
	return false;
}`

// homeCheckScript detects the authenticated timeline when none of the
// logged-in selectors became visible in time.
const homeCheckScript = `() => {
	const home = document.querySelectorAll('[aria-label="Home"]');
	const compose = document.querySelectorAll('[aria-label="Tweet"], [aria-label="Post"]');
	const timeline = document.querySelector('[data-testid="primaryColumn"]');
	return home.length > 0 || compose.length > 0 || timeline !== null;
}`

// pageErrorsScript collects visible error messages.
const pageErrorsScript = `() => {
	const nodes = document.querySelectorAll('[role="alert"], .error-message, [data-testid*="error"]');
	return Array.from(nodes).map(el => el.textContent.trim()).filter(Boolean).join(", ");
}`

// Non-code challenges are dismissed with whichever of these appears.
var dismissLabels = []string{"Skip", "Continue", "Not now"}

// Compose fallbacks when no compose link is visible.
var composeScriptSelectors = []string{
	`a[href="/compose/post"]`,
	`a[href="/compose/tweet"]`,
	`[data-testid="SideNav_NewTweet_Button"]`,
	`[data-testid="FloatingActionButton_Tweet"]`,
	`[aria-label="Post"]`,
	`[aria-label="Tweet"]`,
}
