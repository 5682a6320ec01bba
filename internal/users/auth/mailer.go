// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"log/slog"
)

// LogMailer writes outbound links to the structured log instead of sending
// mail. It is the only [Mailer] until an SMTP relay is provisioned.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a mailer that logs at info level.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendConfirmation logs the sign-up confirmation link.
func (mailer *LogMailer) SendConfirmation(context context.Context, email, link string) error {
	mailer.logger.InfoContext(context, "mail_confirmation_queued",
		slog.String("to", email),
		slog.String("link", link),
	)
	return nil
}

// SendRecovery logs the password recovery link.
func (mailer *LogMailer) SendRecovery(context context.Context, email, link string) error {
	mailer.logger.InfoContext(context, "mail_recovery_queued",
		slog.String("to", email),
		slog.String("link", link),
	)
	return nil
}
