package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// StyleInfo colors informational text.
var StyleInfo = StyleAddress

// Info formats an informational message.
func Info(msg string) string { return StyleInfo.Render("ℹ " + msg) }

// Hint formats a follow-up hint.
func Hint(msg string) string { return StyleMeta.Render("  ↳ " + msg) }

// PromptInput reads one line of input after printing a label.
func PromptInput(label string) string {
	fmt.Printf("%s: ", StyleMeta.Render(label))
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

// ConfirmDanger asks the user to confirm a destructive action. Only an
// explicit "y"/"yes" proceeds.
func ConfirmDanger(question string) bool {
	answer := PromptInput(StyleWarning.Render("⚠ ") + question + " [y/N]")
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}
