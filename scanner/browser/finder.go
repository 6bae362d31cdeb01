package browser

import (
	"os"
	"runtime"
)

// ChromeEnv overrides the chrome executable FindChrome returns
const ChromeEnv = "BROWSERKER_CHROME"

// FindChrome on the FS, returns the executable and the temp dir for profiles
func FindChrome() (string, string) {
	chrome, tmp := defaultChrome()
	if env := os.Getenv(ChromeEnv); env != "" {
		chrome = env
	}
	return chrome, tmp
}

func defaultChrome() (string, string) {
	switch runtime.GOOS {
	case "windows":
		return "C:\\Program Files (x86)\\Google\\Chrome\\Application\\chrome.exe", "C:\\Temp\\gcd\\"
	case "darwin":
		return "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome", "/tmp/gcd/"
	case "linux":
		return "/usr/bin/chromium-browser", "/tmp/gcd/"
	}
	return "", "tmp"
}
