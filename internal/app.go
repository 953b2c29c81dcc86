package internal

import (
	"fmt"
	"net/http"

	"github.com/dushixiang/tradenote/internal/config"
	"github.com/dushixiang/tradenote/internal/handler"
	appmw "github.com/dushixiang/tradenote/internal/middleware"
	"github.com/dushixiang/tradenote/internal/models"
	"github.com/dushixiang/tradenote/internal/service"
	"github.com/dushixiang/tradenote/pkg/nostd"
	"github.com/go-orz/orz"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
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
	AuthHandler      *handler.AuthHandler
	TradeHandler     *handler.TradeHandler
	AnalyticsHandler *handler.AnalyticsHandler
	NewsHandler      *handler.NewsHandler

	AuthService      *service.AuthService
	TradeService     *service.TradeService
	AnalyticsService *service.AnalyticsService
	NewsService      *service.NewsService
	StorageService   *service.StorageService
}

type TradenoteApp struct {
	components *AppComponents
	conf       *config.Config
}

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

	components, err := InitializeApp(logger, db, &conf)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %v", err)
	}
	r.components = components
	r.conf = &conf

	if err := db.AutoMigrate(
		models.User{}, models.Trade{},
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

	e.Server.RegisterOnShutdown(func() {
		components.NewsService.StopRefreshWorker()
	})

	e.Static("/uploads", components.StorageService.BaseDir())

	api := e.Group("/api")
	{
		components.AuthHandler.RegisterPublicRoutes(api)

		protected := api.Group("", appmw.JWTAuth(appmw.JWTAuthConfig{
			AuthService: components.AuthService,
			Logger:      logger,
		}))
		components.AuthHandler.RegisterRoutes(protected)
		components.TradeHandler.RegisterRoutes(protected)
		components.AnalyticsHandler.RegisterRoutes(protected)
		components.NewsHandler.RegisterRoutes(protected)
	}

	return nil
}

func (r *TradenoteApp) Init(logger *zap.Logger) error {
	components := r.GetComponents()
	if components == nil {
		return fmt.Errorf("components not initialized")
	}

	logger.Info("tradenote starting")

	if r.conf.News.Enabled {
		if err := components.NewsService.StartRefreshWorker(); err != nil {
			return fmt.Errorf("failed to start news refresh worker: %v", err)
		}
		logger.Info("news refresh worker started")
	}

	return nil
}
