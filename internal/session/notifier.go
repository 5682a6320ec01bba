// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"log/slog"
)

// Level is the severity of a user-visible [Notification].
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a message for the person using the application.
type Notification struct {
	Level   Level
	Title   string
	Message string
}

// Notifier surfaces notifications to the user (toast, terminal line...).
type Notifier interface {
	Notify(notification Notification)
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(Notification)

// Notify implements [Notifier].
func (fn NotifierFunc) Notify(notification Notification) {
	fn(notification)
}

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier constructs a [LogNotifier].
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify implements [Notifier].
func (notifier *LogNotifier) Notify(notification Notification) {
	level := slog.LevelInfo
	if notification.Level == LevelError {
		level = slog.LevelWarn
	}
	notifier.logger.Log(context.Background(), level, "user_notification",
		slog.String("level", string(notification.Level)),
		slog.String("title", notification.Title),
		slog.String("message", notification.Message),
	)
}
