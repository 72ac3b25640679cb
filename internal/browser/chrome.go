// Package browser implements crawler.BrowserSession against a real
// headless Chrome/Chromium process via chromedp.
package browser

import (
	"os/exec"

	"github.com/quietpath/crawlerctl/internal/logger"
)

// chromeBinaryNames are searched in order, by PATH lookup then by absolute
// path, to locate a Chrome/Chromium executable when chromedp's own default
// discovery doesn't find one.
var chromeBinaryNames = []string{
	"google-chrome-stable",
	"google-chrome",
	"chromium",
	"chromium-browser",
	"chrome",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
	"/usr/bin/google-chrome-stable",
	"/usr/bin/google-chrome",
	"/usr/bin/chromium",
	"/usr/bin/chromium-browser",
	"/snap/bin/chromium",
	`C:\Program Files\Google\Chrome\Application\chrome.exe`,
	`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
}

// FindChromePath searches PATH and a list of common install locations for a
// Chrome/Chromium binary, returning "" if none is found.
func FindChromePath() string {
	for _, name := range chromeBinaryNames {
		if path, err := exec.LookPath(name); err == nil {
			logger.Debug("found Chrome binary", "name", name, "path", path)
			return path
		}
	}
	logger.Warn("no Chrome binary found on this system")
	return ""
}
