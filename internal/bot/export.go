package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/UnknownOlympus/nomina/internal/report"
	"gopkg.in/telebot.v4"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// exportHandler sends the loaded record of screen as an xlsx workbook.
func (b *Bot) exportHandler(ctx context.Context, tCtx telebot.Context, lang string, screen recordScreen) error {
	view := screen.View()
	if !view.Loaded {
		b.metrics.SentMessages.WithLabelValues("reply").Inc()
		return tCtx.Reply(b.t(lang, "export.empty"))
	}

	startTime := time.Now()
	buffer, err := report.GenerateRecordCards(b.exportCard(lang, view, startTime))
	b.metrics.ExportGeneration.Observe(time.Since(startTime).Seconds())
	if err != nil {
		b.log.ErrorContext(ctx, "Failed to generate record card", "entity", view.Entity, "error", err)
		b.metrics.SentMessages.WithLabelValues("error").Inc()
		return tCtx.Send(b.t(lang, "error.internal"))
	}

	document := &telebot.Document{
		File:     telebot.FromReader(buffer),
		FileName: fmt.Sprintf("%s_%s_%s.xlsx", view.Entity, view.ID, view.Database),
		MIME:     xlsxMIME,
		Caption: b.tWithData(lang, "export.caption", map[string]any{
			"entity":   b.entityTitle(lang, view.Entity),
			"id":       view.ID,
			"database": view.Database,
		}),
	}

	b.log.InfoContext(ctx, "Exported record card", "entity", view.Entity, "id", view.ID)
	b.metrics.SentMessages.WithLabelValues("file").Inc()
	return tCtx.Send(document)
}

// exportCard converts a loaded record view into a localized workbook card.
func (b *Bot) exportCard(lang string, view cardView, generatedAt time.Time) report.Card {
	rows := make([]report.Row, 0, len(view.Fields))
	for _, field := range view.Fields {
		rows = append(rows, report.Row{Label: b.t(lang, field.Label), Value: field.Value})
	}

	status := b.renderStatus(lang, view.Entity, view.Status)
	if view.Inactive != nil {
		status = b.activityText(lang, *view.Inactive)
	}

	return report.Card{
		Title:       b.entityTitle(lang, view.Entity),
		Database:    view.Database,
		ID:          view.ID,
		Status:      status,
		GeneratedAt: generatedAt,
		Fields:      rows,
		Headers:     [2]string{b.t(lang, "card.field"), b.t(lang, "card.value")},
		MetaLabels: report.MetaLabels{
			Database:  b.t(lang, "card.database"),
			ID:        b.t(lang, "card.id"),
			Status:    b.t(lang, "card.status"),
			Generated: b.t(lang, "card.generated"),
		},
	}
}
