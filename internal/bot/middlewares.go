package bot

import (
	"context"

	"gopkg.in/telebot.v4"
)

// RegisteredMiddleware lets through only users who have sent /start.
func (b *Bot) RegisteredMiddleware(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(tCtx telebot.Context) error {
		userID := tCtx.Sender().ID

		ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
		defer cancel()

		isRegistered, err := b.repo.IsUserRegistered(ctx, userID)
		if err != nil {
			b.log.ErrorContext(ctx, "Failed to check user registration", "id", userID, "error", err)
			b.metrics.SentMessages.WithLabelValues("error").Inc()
			return tCtx.Send(b.t(b.getUserLanguage(ctx, tCtx), "error.internal"))
		}

		if !isRegistered {
			b.log.InfoContext(ctx, "Unregistered user", "username", tCtx.Sender().Username, "id", userID)
			text := b.t(b.getUserLanguage(ctx, tCtx), "error.not_registered")
			if tCtx.Callback() != nil {
				return tCtx.Respond(&telebot.CallbackResponse{Text: text, ShowAlert: true})
			}
			return tCtx.Send(text)
		}

		return next(tCtx)
	}
}
