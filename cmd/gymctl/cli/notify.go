// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/taibuivan/uptowngym/internal/session"
)

// # Styles

var (
	badgeStyles = map[session.Level]lipgloss.Style{
		session.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		session.LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		session.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
	badgeSymbols = map[session.Level]string{
		session.LevelInfo:    "i",
		session.LevelSuccess: "✓",
		session.LevelError:   "✗",
	}

	titleStyle   = lipgloss.NewStyle().Bold(true)
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(10)
	adminStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
)

// terminalNotifier prints coordinator notifications, one per line.
type terminalNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

func newTerminalNotifier(out io.Writer) *terminalNotifier {
	return &terminalNotifier{out: out}
}

// Notify implements [session.Notifier].
func (notifier *terminalNotifier) Notify(notification session.Notification) {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	fmt.Fprintln(notifier.out, renderNotification(notification))
}

func renderNotification(notification session.Notification) string {
	style, ok := badgeStyles[notification.Level]
	if !ok {
		style = badgeStyles[session.LevelInfo]
	}

	line := style.Render(badgeSymbols[notification.Level]) + " " + titleStyle.Render(notification.Title)
	if notification.Message != "" {
		line += "  " + messageStyle.Render(notification.Message)
	}
	return line
}
