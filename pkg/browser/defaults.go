package browser

// DefaultArgs are the Chromium switches used for unattended runs in
// containers and CI.
var DefaultArgs = []string{
	"--no-sandbox",
	"--disable-setuid-sandbox",
	"--disable-dev-shm-usage",
	"--window-size=1920,1080",
	"--no-first-run",
	"--no-service-autorun",
	"--disable-extensions",
	"--font-render-hinting=none",
}
