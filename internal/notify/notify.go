package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Notifier sends desktop notifications.
type Notifier struct {
	Enabled bool
	// Send overrides the platform notifier, mainly for tests.
	SendFunc func(title, message string) error
}

// Send displays a notification. On macOS it uses osascript and on Linux
// notify-send when available; elsewhere it is a no-op.
func (n *Notifier) Send(title, message string) error {
	if n == nil || !n.Enabled {
		return nil
	}
	if n.SendFunc != nil {
		return n.SendFunc(title, message)
	}

	switch runtime.GOOS {
	case "darwin":
		return sendMacOSNotification(title, message)
	case "linux":
		return sendLinuxNotification(title, message)
	default:
		return nil
	}
}

func sendMacOSNotification(title, message string) error {
	title = strings.ReplaceAll(title, `"`, `\"`)
	message = strings.ReplaceAll(message, `"`, `\"`)

	script := fmt.Sprintf(`display notification "%s" with title "%s"`, message, title)
	cmd := exec.Command("osascript", "-e", script)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

func sendLinuxNotification(title, message string) error {
	path, err := exec.LookPath("notify-send")
	if err != nil {
		return nil
	}
	if err := exec.Command(path, title, message).Run(); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

// FormatVentureLive formats the notification for a venture whose first run started.
func FormatVentureLive(ventureID, runID string, runNumber int) (title, message string) {
	title = "🚀 OpenFounder Venture Live"
	message = fmt.Sprintf("%s: run #%d started (%s)", ventureID, runNumber, runID)
	return title, message
}

// FormatSeedFailed formats the notification for a seed that stopped at stage.
func FormatSeedFailed(ventureID, stage string, err error) (title, message string) {
	title = "⚠️ OpenFounder Seed Failed"
	if ventureID == "" {
		ventureID = "venture"
	}
	reason := "unknown error"
	if err != nil {
		reason, _, _ = strings.Cut(err.Error(), "\n")
	}
	message = fmt.Sprintf("%s: %s failed: %s", ventureID, stage, reason)
	return title, message
}
