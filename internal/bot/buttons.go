package bot

import (
	"github.com/samber/lo"
	"gopkg.in/telebot.v4"
)

// Callback uniques of the record screen inline keyboards. Their data is "entity|value".
const (
	callbackField    = "field"
	callbackDatabase = "database"
)

const (
	databasesPerRow = 3
	fieldsPerRow    = 2
)

// buildDatabaseKeyboard offers the configured database contexts for entity.
func (b *Bot) buildDatabaseKeyboard(entity string) *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{}

	rows := lo.Map(lo.Chunk(b.databases, databasesPerRow), func(chunk []string, _ int) telebot.Row {
		return menu.Row(lo.Map(chunk, func(database string, _ int) telebot.Btn {
			return menu.Data(database, callbackDatabase, entity, database)
		})...)
	})
	menu.Inline(rows...)

	return menu
}

// buildFieldKeyboard offers the editable fields of screen with their localized labels.
func (b *Bot) buildFieldKeyboard(lang string, screen recordScreen) *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{}

	rows := lo.Map(lo.Chunk(screen.Fields(), fieldsPerRow), func(chunk []fieldValue, _ int) telebot.Row {
		return menu.Row(lo.Map(chunk, func(field fieldValue, _ int) telebot.Btn {
			return menu.Data(b.t(lang, field.Label), callbackField, screen.Entity(), field.Key)
		})...)
	})
	menu.Inline(rows...)

	return menu
}
