package bot

import (
	"context"
	"strings"

	"github.com/UnknownOlympus/nomina/internal/records"
	"github.com/cockroachdb/errors"
	"gopkg.in/telebot.v4"
)

// handleRecordButton runs a button of the record screen the user is on.
func (b *Bot) handleRecordButton(ctx context.Context, tCtx telebot.Context, lang, handler string) error {
	userID := tCtx.Sender().ID

	screen, ok := b.currentScreen(ctx, userID)
	if !ok {
		return b.showMenu(ctx, tCtx, lang, MenuMain, "")
	}
	entity := screen.Entity()
	b.metrics.CommandReceived.WithLabelValues(entity + "_" + handler).Inc()

	switch handler {
	case handlerSetID:
		b.stateManager.Set(userID, UserState{WaitingFor: stateAwaitingID, Entity: entity})
		b.metrics.SentMessages.WithLabelValues("text").Inc()
		return tCtx.Send(b.tWithData(lang, "prompt.id", map[string]any{"entity": b.entityNoun(lang, entity)}))
	case handlerDatabase:
		b.stateManager.Set(userID, UserState{WaitingFor: stateAwaitingDatabase, Entity: entity})
		b.metrics.SentMessages.WithLabelValues("text").Inc()
		return tCtx.Send(b.t(lang, "prompt.database"), b.buildDatabaseKeyboard(entity))
	case handlerEdit:
		b.metrics.SentMessages.WithLabelValues("text").Inc()
		return tCtx.Send(b.t(lang, "prompt.choose_field"), b.buildFieldKeyboard(lang, screen))
	case handlerClear:
		screen.Reset()
		return b.sendCard(tCtx, lang, screen, b.t(lang, "form.cleared"))
	case handlerExport:
		return b.exportHandler(ctx, tCtx, lang, screen)
	default:
		return b.runOperation(tCtx, lang, screen, handler)
	}
}

// runOperation performs one backend operation and reports its outcome.
func (b *Bot) runOperation(tCtx telebot.Context, lang string, screen recordScreen, handler string) error {
	var operation func(context.Context) (records.Status, error)
	switch handler {
	case handlerGet:
		operation = screen.Get
	case handlerCreate:
		operation = screen.Create
	case handlerUpdate:
		operation = screen.Update
	case handlerDelete:
		operation = screen.Delete
	case handlerActivate:
		operation = func(ctx context.Context) (records.Status, error) { return screen.SetInactive(ctx, false) }
	case handlerDeactivate:
		operation = func(ctx context.Context) (records.Status, error) { return screen.SetInactive(ctx, true) }
	default:
		b.metrics.SentMessages.WithLabelValues("reply").Inc()
		return tCtx.Reply(b.t(lang, "general.use_buttons"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.opTimeout)
	defer cancel()

	_ = tCtx.Notify(telebot.Typing)

	status, err := operation(ctx)
	if err != nil {
		switch {
		case errors.Is(err, records.ErrSuperseded):
			b.log.DebugContext(ctx, "Outcome superseded, not reporting", "handler", handler)
			return nil
		case errors.Is(err, records.ErrActivationUnsupported):
			b.metrics.SentMessages.WithLabelValues("reply").Inc()
			return tCtx.Reply(b.t(lang, "general.use_buttons"))
		}
		b.log.InfoContext(ctx, "Record operation did not succeed",
			"entity", screen.Entity(), "handler", handler, "error", err)
	}

	return b.sendCard(tCtx, lang, screen, b.renderStatus(lang, screen.Entity(), status))
}

// fieldCallbackHandler asks for the new value of the field picked on the inline keyboard.
func (b *Bot) fieldCallbackHandler(tCtx telebot.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	lang := b.getUserLanguage(ctx, tCtx)
	entity, key, ok := strings.Cut(tCtx.Data(), "|")
	screen, found := screenFor(b.sessions.Workspace(ctx, tCtx.Sender().ID), entity)
	if !ok || !found {
		b.log.ErrorContext(ctx, "Invalid field callback", "data", tCtx.Data())
		return tCtx.Respond(&telebot.CallbackResponse{Text: b.t(lang, "error.unknown_field")})
	}

	b.stateManager.Set(tCtx.Sender().ID, UserState{WaitingFor: stateAwaitingField, Entity: entity, Field: key})
	_ = tCtx.Respond()

	b.metrics.SentMessages.WithLabelValues("text").Inc()
	return tCtx.Send(b.tWithData(lang, "prompt.field", map[string]any{"field": b.fieldLabel(lang, screen, key)}))
}

// databaseCallbackHandler selects the database picked on the inline keyboard.
func (b *Bot) databaseCallbackHandler(tCtx telebot.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	lang := b.getUserLanguage(ctx, tCtx)
	entity, database, ok := strings.Cut(tCtx.Data(), "|")
	screen, found := screenFor(b.sessions.Workspace(ctx, tCtx.Sender().ID), entity)
	if !ok || !found {
		b.log.ErrorContext(ctx, "Invalid database callback", "data", tCtx.Data())
		return tCtx.Respond(&telebot.CallbackResponse{Text: b.t(lang, "error.internal")})
	}

	b.stateManager.Clear(tCtx.Sender().ID)
	_ = tCtx.Respond()

	return b.selectDatabase(ctx, tCtx, lang, screen, database)
}

// selectDatabase sets the database context of screen and remembers it for new sessions.
func (b *Bot) selectDatabase(
	ctx context.Context,
	tCtx telebot.Context,
	lang string,
	screen recordScreen,
	database string,
) error {
	database = strings.TrimSpace(database)
	if database == "" {
		return tCtx.Send(b.t(lang, "general.cancelled"))
	}

	screen.SetDatabase(database)
	if err := b.repo.SetUserDatabase(ctx, tCtx.Sender().ID, database); err != nil {
		b.log.WarnContext(ctx, "Failed to remember database", "userID", tCtx.Sender().ID, "error", err)
	}

	return b.sendCard(tCtx, lang, screen, b.tWithData(lang, "form.database_set", map[string]any{"database": database}))
}
