package bot

import (
	"log/slog"

	"github.com/UnknownOlympus/nomina/internal/i18n"
	"github.com/samber/lo"
	"gopkg.in/telebot.v4"
)

// MenuBuilder handles dynamic menu generation with i18n support.
type MenuBuilder struct {
	localizer *i18n.Localizer
	log       *slog.Logger
	registry  *MenuRegistry
}

// NewMenuBuilder creates a new menu builder instance.
func NewMenuBuilder(localizer *i18n.Localizer, log *slog.Logger) *MenuBuilder {
	return &MenuBuilder{
		localizer: localizer,
		log:       log,
		registry:  NewMenuRegistry(),
	}
}

// Registry returns the menu definitions the builder renders.
func (mb *MenuBuilder) Registry() *MenuRegistry {
	return mb.registry
}

// Build generates a telebot.ReplyMarkup from a menu definition.
func (mb *MenuBuilder) Build(lang string, menuType MenuType) *telebot.ReplyMarkup {
	menuDef := mb.registry.Get(menuType)
	if menuDef == nil {
		mb.log.Error("Menu definition not found", "menuType", menuType)
		return mb.buildFallbackMenu(lang)
	}

	menu := &telebot.ReplyMarkup{ResizeKeyboard: true}
	rows := mb.buildRows(lang, menu, menuDef.Buttons, menuDef.Layout)

	if menuDef.HasBack {
		btnBack := menu.Text(mb.localizer.Get(lang, "menu.back"))
		rows = append(rows, menu.Row(btnBack))
	}

	menu.Reply(rows...)
	return menu
}

// buildRows creates telebot.Row slices based on button layout.
func (mb *MenuBuilder) buildRows(
	lang string,
	menu *telebot.ReplyMarkup,
	buttons []MenuButton,
	layout []int,
) []telebot.Row {
	rows := make([]telebot.Row, 0, len(layout))
	buttonIdx := 0

	for _, rowSize := range layout {
		if buttonIdx >= len(buttons) {
			break
		}

		end := min(buttonIdx+rowSize, len(buttons))
		rowButtons := lo.Map(buttons[buttonIdx:end], func(btn MenuButton, _ int) telebot.Btn {
			return menu.Text(mb.localizer.Get(lang, btn.TextKey))
		})
		buttonIdx = end

		rows = append(rows, menu.Row(rowButtons...))
	}

	// Handle remaining buttons if any
	for _, btn := range buttons[buttonIdx:] {
		rows = append(rows, menu.Row(menu.Text(mb.localizer.Get(lang, btn.TextKey))))
	}

	return rows
}

// buildFallbackMenu creates a safe fallback menu in case of errors.
func (mb *MenuBuilder) buildFallbackMenu(lang string) *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{ResizeKeyboard: true}
	btnBack := menu.Text(mb.localizer.Get(lang, "menu.back"))
	menu.Reply(menu.Row(btnBack))
	return menu
}

// Title returns the message sent together with the menu keyboard.
func (mb *MenuBuilder) Title(lang string, menuType MenuType) string {
	menuDef := mb.registry.Get(menuType)
	if menuDef == nil || menuDef.TitleKey == "" {
		return mb.localizer.Get(lang, "general.welcome_back")
	}
	return mb.localizer.Get(lang, menuDef.TitleKey)
}

// ResolveButton looks up the button whose caption is text, trying the user's
// language first and then every other supported language.
func (mb *MenuBuilder) ResolveButton(lang, text string) (MenuButton, bool) {
	languages := append([]string{lang}, lo.Without(i18n.Languages, lang)...)

	for _, checkLang := range languages {
		if text == mb.localizer.Get(checkLang, "menu.back") {
			return MenuButton{TextKey: "menu.back", Handler: handlerBack}, true
		}

		for _, menuDef := range mb.registry.All() {
			btn, ok := lo.Find(menuDef.Buttons, func(btn MenuButton) bool {
				return mb.localizer.Get(checkLang, btn.TextKey) == text
			})
			if ok {
				return btn, true
			}
		}
	}

	return MenuButton{}, false
}
