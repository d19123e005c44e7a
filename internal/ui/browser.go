package ui

import (
	"os/exec"
	"runtime"
)

// openBrowser opens url in the OS default browser.
func openBrowser(url string) {
	var name string
	switch runtime.GOOS {
	case "darwin":
		name = "open"
	case "windows":
		name = "cmd"
	default:
		name = "xdg-open"
	}
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command(name, "/c", "start", url)
	} else {
		cmd = exec.Command(name, url)
	}
	_ = cmd.Start()
}
