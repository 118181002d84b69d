//go:build wireinject
// +build wireinject

package internal

import (
	"github.com/google/wire"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dushixiang/tradenote/internal/config"
	"github.com/dushixiang/tradenote/internal/handler"
	"github.com/dushixiang/tradenote/internal/service"
)

var (
	handlerSet = wire.NewSet(
		handler.NewAuthHandler,
		handler.NewInstrumentHandler,
		handler.NewTradeHandler,
		handler.NewAnalyticsHandler,
		handler.NewLibraryHandler,
		handler.NewJournalHandler,
	)

	serviceSet = wire.NewSet(
		provideAuthService,
		provideAnalyticsService,
		service.NewInstrumentService,
		service.NewTradeService,
		service.NewTradingModelService,
		service.NewTagService,
		service.NewJournalService,
		service.NewImportService,
	)
)

// InitializeApp 初始化应用
func InitializeApp(logger *zap.Logger, db *gorm.DB, conf *config.Config) (*AppComponents, error) {
	wire.Build(
		handlerSet,
		serviceSet,
		wire.Struct(new(AppComponents), "*"),
	)
	return nil, nil
}

func provideAuthService(logger *zap.Logger, db *gorm.DB, conf *config.Config) *service.AuthService {
	return service.NewAuthService(logger, db, conf.Auth)
}

func provideAnalyticsService(logger *zap.Logger, db *gorm.DB, conf *config.Config) *service.AnalyticsService {
	return service.NewAnalyticsService(logger, db, conf.Analytics)
}
