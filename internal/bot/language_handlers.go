package bot

import (
	"context"
	"strings"

	"gopkg.in/telebot.v4"
)

// languageHandler presents the user with a menu to choose their preferred language.
func (b *Bot) languageHandler(tCtx telebot.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	b.metrics.CommandReceived.WithLabelValues("language").Inc()
	lang := b.getUserLanguage(ctx, tCtx)

	menu := &telebot.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data(b.t(lang, "language.button.english"), "language_en")),
		menu.Row(menu.Data(b.t(lang, "language.button.spanish"), "language_es")),
	)

	b.metrics.SentMessages.WithLabelValues("text").Inc()
	return tCtx.Send(b.t(lang, "language.select"), menu)
}

// languageChangeHandler stores the chosen language and redraws the current menu in it.
func (b *Bot) languageChangeHandler(tCtx telebot.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	userID := tCtx.Sender().ID
	langCode, ok := strings.CutPrefix(tCtx.Callback().Unique, "language_")
	if !ok || !b.localizer.Has(langCode, "language.changed") {
		b.log.ErrorContext(ctx, "Unknown language callback", "data", tCtx.Callback().Unique)
		return tCtx.Respond(&telebot.CallbackResponse{Text: "Unknown language"})
	}

	if err := b.repo.SetUserLanguage(ctx, userID, langCode); err != nil {
		b.log.ErrorContext(ctx, "Failed to set user language", "error", err, "userID", userID)
		b.metrics.SentMessages.WithLabelValues("error").Inc()
		return tCtx.Respond(&telebot.CallbackResponse{Text: b.t(langCode, "error.internal")})
	}

	b.log.InfoContext(ctx, "User changed language", "userID", userID, "language", langCode)

	b.metrics.SentMessages.WithLabelValues("respond").Inc()
	_ = tCtx.Respond(&telebot.CallbackResponse{Text: "✅"})

	current := b.navigator.Current(ctx, userID)
	return b.showMenu(ctx, tCtx, langCode, current, b.t(langCode, "language.changed"))
}
