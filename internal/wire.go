//go:build wireinject
// +build wireinject

package internal

import (
	"net/http"
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dushixiang/tradenote/internal/config"
	"github.com/dushixiang/tradenote/internal/handler"
	"github.com/dushixiang/tradenote/internal/service"
	"github.com/dushixiang/tradenote/internal/telegram"
)

const telegramHTTPTimeout = 10 * time.Second

var (
	handlerSet = wire.NewSet(
		handler.NewAuthHandler,
		handler.NewTradeHandler,
		handler.NewAnalyticsHandler,
		handler.NewNewsHandler,
	)

	serviceSet = wire.NewSet(
		service.NewAuthService,
		service.NewStorageService,
		service.NewTradeService,
		service.NewAnalyticsService,
		service.NewNewsService,
	)
)

func InitializeApp(logger *zap.Logger, db *gorm.DB, conf *config.Config) (*AppComponents, error) {
	wire.Build(
		handlerSet,
		serviceSet,
		provideTelegram,
		wire.Struct(new(AppComponents), "*"),
	)
	return nil, nil
}

// provideTelegram returns nil when notifications are disabled; the trade
// service treats a nil notifier as a no-op.
func provideTelegram(logger *zap.Logger, conf *config.Config) *telegram.Telegram {
	if !conf.Telegram.Enabled {
		return nil
	}

	httpClient := &http.Client{Timeout: telegramHTTPTimeout}

	tg, err := telegram.NewTelegram(logger, telegram.Settings{
		Token:  conf.Telegram.Token,
		Client: httpClient,
	})
	if err != nil {
		logger.Error("failed to init telegram", zap.Error(err))
		return nil
	}

	tg.Start()
	return tg
}
