package bot

import (
	"strings"

	"github.com/UnknownOlympus/nomina/internal/records"
	"gopkg.in/telebot.v4"
)

// renderStatus localizes a status line. Failures show the backend's own message.
func (b *Bot) renderStatus(lang, entity string, status records.Status) string {
	var prefix string
	switch status.Kind {
	case records.StatusSuccess:
		prefix = "✅ "
	case records.StatusWarning:
		prefix = "⚠️ "
	case records.StatusError:
		return "❌ " + status.Text
	default:
		return ""
	}

	key := status.Code
	data := map[string]any{"entity": b.entityTitle(lang, entity), "id": status.RecordID}
	switch {
	case key == records.CodeMissingID:
		data["entity"] = b.entityNoun(lang, entity)
	case key == records.CodeCreated && status.RecordID != "":
		key = "status.created_with_id"
	}

	if !b.localizer.Has(lang, key) && !b.localizer.Has("en", key) {
		return prefix + status.Text
	}
	return prefix + b.tWithData(lang, key, data)
}

// formatCard renders the loaded record, or the form inputs when nothing is loaded.
func (b *Bot) formatCard(lang string, view cardView) string {
	var sb strings.Builder

	if view.Loaded {
		sb.WriteString(b.t(lang, "card.title"))
	} else {
		sb.WriteString(b.t(lang, "card.form"))
	}
	sb.WriteString(" · " + b.entityTitle(lang, view.Entity) + "\n")

	b.writeLine(&sb, lang, "card.id", view.ID)
	b.writeLine(&sb, lang, "card.database", view.Database)
	if view.Inactive != nil {
		b.writeLine(&sb, lang, "card.status", b.activityText(lang, *view.Inactive))
	}
	for _, field := range view.Fields {
		b.writeLine(&sb, lang, field.Label, field.Value)
	}

	return strings.TrimRight(sb.String(), "\n")
}

func (b *Bot) writeLine(sb *strings.Builder, lang, labelKey, value string) {
	if value == "" {
		value = b.t(lang, "card.empty_value")
	}
	sb.WriteString(b.t(lang, labelKey) + ": " + value + "\n")
}

// sendCard sends header followed by the card of screen. An empty header repeats
// the last status of the screen.
func (b *Bot) sendCard(tCtx telebot.Context, lang string, screen recordScreen, header string) error {
	view := screen.View()
	if header == "" {
		header = b.renderStatus(lang, view.Entity, view.Status)
	}

	text := b.formatCard(lang, view)
	if header != "" {
		text = header + "\n\n" + text
	}

	b.metrics.SentMessages.WithLabelValues("card").Inc()
	return tCtx.Send(text)
}

func (b *Bot) activityText(lang string, inactive bool) string {
	if inactive {
		return b.t(lang, records.CodeInactive)
	}
	return b.t(lang, records.CodeActive)
}

func (b *Bot) entityTitle(lang, entity string) string {
	return b.t(lang, "entity."+entity)
}

// entityNoun is the entity name as used inside a sentence.
func (b *Bot) entityNoun(lang, entity string) string {
	return strings.ToLower(b.entityTitle(lang, entity))
}
