package internal

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dushixiang/tradenote/internal/config"
	"github.com/dushixiang/tradenote/internal/handler"
	appmiddleware "github.com/dushixiang/tradenote/internal/middleware"
	"github.com/dushixiang/tradenote/internal/models"
	"github.com/dushixiang/tradenote/internal/service"
	"github.com/dushixiang/tradenote/pkg/nostd"
	"github.com/go-orz/orz"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func Run(configPath string) error {
	app := NewTradenoteApp()

	framework, err := orz.NewFramework(
		orz.WithConfig(configPath),
		orz.WithLoggerFromConfig(),
		orz.WithDatabase(),
		orz.WithHTTP(),
		orz.WithApplication(app),
	)
	if err != nil {
		return err
	}

	return framework.Run()
}

func NewTradenoteApp() orz.Application {
	return &TradenoteApp{}
}

var _ orz.Application = (*TradenoteApp)(nil)

type AppComponents struct {
	AuthHandler       *handler.AuthHandler
	InstrumentHandler *handler.InstrumentHandler
	TradeHandler      *handler.TradeHandler
	AnalyticsHandler  *handler.AnalyticsHandler
	LibraryHandler    *handler.LibraryHandler
	JournalHandler    *handler.JournalHandler

	AuthService         *service.AuthService
	InstrumentService   *service.InstrumentService
	TradeService        *service.TradeService
	AnalyticsService    *service.AnalyticsService
	TradingModelService *service.TradingModelService
	TagService          *service.TagService
	JournalService      *service.JournalService
	ImportService       *service.ImportService
}

type TradenoteApp struct {
	components *AppComponents
	conf       *config.Config
	cron       *cron.Cron
}

// GetComponents 获取应用组件
func (r *TradenoteApp) GetComponents() *AppComponents {
	return r.components
}

func (r *TradenoteApp) Configure(app *orz.App) error {
	logger := app.Logger()
	e := app.GetEcho()
	db := app.GetDatabase()

	var conf config.Config
	err := app.GetConfig().App.Unmarshal(&conf)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %v", err)
	}
	conf.Normalize()

	components, err := InitializeApp(logger, db, &conf)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %v", err)
	}
	r.components = components
	r.conf = &conf

	if err := db.AutoMigrate(
		models.User{}, models.Instrument{},
		models.Trade{}, models.EntryPoint{}, models.ExitPoint{},
		models.Tag{}, models.TradingModel{},
		models.DailyJournal{}, models.P12Scenario{},
	); err != nil {
		logger.Fatal("database auto migrate failed", zap.Error(err))
	}

	if err := r.Init(logger); err != nil {
		logger.Fatal("app init failed", zap.Error(err))
	}

	e.HidePort = true
	e.HideBanner = true

	e.Use(middleware.Gzip())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		Skipper:      middleware.DefaultSkipper,
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			sugar := logger.Sugar()
			sugar.Error(fmt.Sprintf("[PANIC RECOVER] %v %s\n", err, stack))
			return err
		},
	}))
	e.Use(WithErrorHandler(logger))
	customValidator := nostd.CustomValidator{Validator: validator.New()}
	if err := customValidator.TransInit(); err != nil {
		logger.Sugar().Fatal("failed to init custom validator", zap.Error(err))
	}
	e.Validator = &customValidator

	api := e.Group("/api")
	{
		r.components.AuthHandler.RegisterPublicRoutes(api)

		authed := api.Group("", appmiddleware.JWTAuth(appmiddleware.JWTAuthConfig{
			AuthService: r.components.AuthService,
			Logger:      logger,
		}))
		r.components.AuthHandler.RegisterRoutes(authed)
		r.components.InstrumentHandler.RegisterRoutes(authed)
		r.components.TradeHandler.RegisterRoutes(authed)
		r.components.AnalyticsHandler.RegisterRoutes(authed)
		r.components.LibraryHandler.RegisterRoutes(authed)
		r.components.JournalHandler.RegisterRoutes(authed)

		admin := authed.Group("/admin", appmiddleware.RequireAdmin())
		r.components.InstrumentHandler.RegisterAdminRoutes(admin)
		r.components.JournalHandler.RegisterAdminRoutes(admin)
	}

	return nil
}

func (r *TradenoteApp) Init(logger *zap.Logger) error {
	logger.Info("=================================================")
	logger.Info("Tradenote Trading Journal Starting...")
	logger.Info("=================================================")

	components := r.GetComponents()
	if components == nil {
		return fmt.Errorf("components not initialized")
	}

	ctx := context.Background()

	// 首次启动引导：管理员账户与基础数据
	needsSetup, err := components.AuthService.NeedsSetup(ctx)
	if err != nil {
		return err
	}
	if needsSetup && r.conf.Auth.AdminUsername != "" {
		if err := components.AuthService.CreateUser(ctx,
			r.conf.Auth.AdminUsername,
			r.conf.Auth.AdminEmail,
			r.conf.Auth.AdminPassword,
			"Administrator",
			models.RoleAdmin,
		); err != nil {
			return fmt.Errorf("failed to bootstrap admin user: %v", err)
		}
		logger.Info("admin user bootstrapped", zap.String("username", r.conf.Auth.AdminUsername))
	}
	if err := components.InstrumentService.EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("failed to seed default instruments: %v", err)
	}
	if err := components.TagService.EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("failed to seed default tags: %v", err)
	}

	// 夜间盈亏缓存校对任务
	r.cron = cron.New()
	if _, err := r.cron.AddFunc(r.conf.Jobs.PnlRefreshCron, func() {
		if _, err := components.TradeService.RefreshAllPnl(context.Background()); err != nil {
			logger.Error("pnl refresh job failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule pnl refresh job: %v", err)
	}
	r.cron.Start()
	logger.Info("pnl refresh job scheduled", zap.String("cron", r.conf.Jobs.PnlRefreshCron))

	return nil
}
