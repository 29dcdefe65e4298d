package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/nomina/internal/i18n"
	"github.com/UnknownOlympus/nomina/internal/metrics"
	"github.com/UnknownOlympus/nomina/internal/repository"
	"github.com/UnknownOlympus/nomina/internal/session"
	"gopkg.in/telebot.v4"
)

const dbTimeout = 3 * time.Second

// Settings configures the Telegram side of the bot.
type Settings struct {
	Token     string
	Poller    time.Duration
	Databases []string      // database contexts offered by the picker
	OpTimeout time.Duration // upper bound of one backend operation
}

// Bot contains the bot API instance and other information.
type Bot struct {
	bot          *telebot.Bot
	log          *slog.Logger
	repo         repository.Interface
	sessions     *session.Manager
	metrics      *metrics.Metrics
	stateManager *StateManager
	localizer    *i18n.Localizer
	menus        *MenuBuilder
	navigator    *Navigator
	databases    []string
	opTimeout    time.Duration
}

// NewBot creates a new bot with the given settings.
func NewBot(
	log *slog.Logger,
	repo repository.Interface,
	sessions *session.Manager,
	appMetrics *metrics.Metrics,
	settings Settings,
) (*Bot, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  settings.Token,
		Poller: &telebot.LongPoller{Timeout: settings.Poller},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.Info("Authorized on account", "account", bot.Me.Username)

	botInstance, err := newBot(log, repo, sessions, appMetrics, settings)
	if err != nil {
		return nil, err
	}
	botInstance.bot = bot
	botInstance.registerRoutes()

	return botInstance, nil
}

// newBot wires everything except the Telegram connection.
func newBot(
	log *slog.Logger,
	repo repository.Interface,
	sessions *session.Manager,
	appMetrics *metrics.Metrics,
	settings Settings,
) (*Bot, error) {
	localizer, err := i18n.NewLocalizer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize localizer: %w", err)
	}

	menus := NewMenuBuilder(localizer, log)

	return &Bot{
		log:          log,
		repo:         repo,
		sessions:     sessions,
		metrics:      appMetrics,
		stateManager: NewStateManager(),
		localizer:    localizer,
		menus:        menus,
		navigator:    NewNavigator(sessions, menus.Registry()),
		databases:    settings.Databases,
		opTimeout:    settings.OpTimeout,
	}, nil
}

// Start launches the bot to listen for updates.
func (b *Bot) Start() {
	b.log.Info("Telegram bot is starting...")
	b.bot.Start()
}

// Stop gracefully stops the Telegram bot and logs the action.
func (b *Bot) Stop() {
	b.log.Info("Telegram bot is stopped...")
	b.bot.Stop()
}

// registerRoutes configures all routes (commands).
func (b *Bot) registerRoutes() {
	b.bot.Handle("/start", b.startHandler)

	registered := b.RegisteredMiddleware
	b.bot.Handle("/language", b.languageHandler, registered)
	b.bot.Handle(telebot.OnText, b.routeTextHandler, registered)

	// Language selection callbacks
	b.bot.Handle("\flanguage_en", b.languageChangeHandler, registered)
	b.bot.Handle("\flanguage_es", b.languageChangeHandler, registered)

	// Record screen callbacks
	b.bot.Handle("\f"+callbackField, b.fieldCallbackHandler, registered)
	b.bot.Handle("\f"+callbackDatabase, b.databaseCallbackHandler, registered)
}

// getUserLanguage retrieves the user's language preference from the database,
// falling back to the language of the Telegram client.
func (b *Bot) getUserLanguage(ctx context.Context, tCtx telebot.Context) string {
	userID := tCtx.Sender().ID

	lang, err := b.repo.GetUserLanguage(ctx, userID)
	if err != nil || lang == "" {
		if err != nil {
			b.log.DebugContext(ctx, "Failed to get user language, using client language", "error", err, "userID", userID)
		}
		return i18n.NormalizeLanguageCode(tCtx.Sender().LanguageCode)
	}

	return lang
}

// t is a shorthand method for getting translations.
func (b *Bot) t(lang, key string) string {
	return b.localizer.Get(lang, key)
}

// tWithData is a shorthand method for getting translations with placeholder data.
func (b *Bot) tWithData(lang, key string, data map[string]any) string {
	return b.localizer.GetWithData(lang, key, data)
}

// showMenu moves the user to menuType and sends its keyboard with message,
// or with the menu title when message is empty.
func (b *Bot) showMenu(ctx context.Context, tCtx telebot.Context, lang string, menuType MenuType, message string) error {
	b.navigator.Open(ctx, tCtx.Sender().ID, menuType)

	if message == "" {
		message = b.menus.Title(lang, menuType)
	}

	b.metrics.SentMessages.WithLabelValues("menu").Inc()
	return tCtx.Send(message, b.menus.Build(lang, menuType))
}
