package main

import (
	"context"
	"os"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/labstack/echo/v4"

	adaptermiddleware "sales-cockpit/internal/adapters/http/middleware"
	adapterlogger "sales-cockpit/internal/adapters/logger"
	"sales-cockpit/internal/application"
	"sales-cockpit/internal/infrastructure/auth"
	"sales-cockpit/internal/infrastructure/config"
	"sales-cockpit/internal/infrastructure/dynamodb"
	"sales-cockpit/internal/infrastructure/metabase"
	"sales-cockpit/internal/infrastructure/openai"
	httpiface "sales-cockpit/internal/interfaces/http"
)

func main() {
	logger := adapterlogger.New()
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Error(ctx, "configuration error", "error", err)
		os.Exit(1)
	}
	xray.Configure(xray.Config{LogLevel: "error"})

	ddbClient, err := dynamodb.NewClient(ctx, cfg.Region, cfg.TableName)
	if err != nil {
		logger.Error(ctx, "failed to initialize dynamodb client", "error", err)
		os.Exit(1)
	}
	profileRepo := dynamodb.NewProfileRepository(ddbClient)
	roleRepo := dynamodb.NewRoleRepository(ddbClient)
	summaryRepo := dynamodb.NewSummaryRepository(ddbClient)

	issuer, err := metabase.NewIssuer(cfg.MetabaseSiteURL, cfg.MetabaseSecretKey, cfg.EmbedTokenTTL)
	if err != nil {
		logger.Error(ctx, "failed to initialize embed issuer", "error", err)
		os.Exit(1)
	}
	aiClient := openai.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.ChatModel, cfg.TranscriptionModel, cfg.OpenAIClientTimeout)

	dashboardSvc := application.NewDashboardService(profileRepo, roleRepo, issuer, logger)
	emailSvc := application.NewEmailService(aiClient, logger)
	summarySvc := application.NewSummaryService(aiClient, aiClient, summaryRepo, logger)
	userSvc := application.NewUserService(profileRepo, roleRepo, logger)

	mode, err := adaptermiddleware.ParseAuthMode(cfg.AuthMode)
	if err != nil {
		logger.Error(ctx, "configuration error", "error", err)
		os.Exit(1)
	}
	var session echo.MiddlewareFunc
	switch mode {
	case adaptermiddleware.ModeSecret:
		verifier, err := auth.NewSecretVerifier(cfg.AuthSecret)
		if err != nil {
			logger.Error(ctx, "failed to initialize session verifier", "error", err)
			os.Exit(1)
		}
		session = auth.SessionMiddleware(verifier)
	case adaptermiddleware.ModeJWKS:
		verifier, err := auth.NewJWKSVerifier(cfg.AuthJWKS)
		if err != nil {
			logger.Error(ctx, "failed to initialize session verifier", "error", err)
			os.Exit(1)
		}
		session = auth.SessionMiddleware(verifier)
	}
	authMiddleware, err := adaptermiddleware.AuthMiddleware(mode, session)
	if err != nil {
		logger.Error(ctx, "failed to initialize auth middleware", "error", err)
		os.Exit(1)
	}

	mw := httpiface.Middleware{
		Auth:          authMiddleware,
		XRay:          adaptermiddleware.XRayMiddleware("sales-cockpit-http"),
		RequestLogger: adaptermiddleware.RequestLogger(logger),
	}

	e := httpiface.NewRouter(
		httpiface.NewDashboardHandler(dashboardSvc),
		httpiface.NewEmailsHandler(emailSvc),
		httpiface.NewCallsHandler(summarySvc),
		httpiface.NewUsersHandler(userSvc),
		mw,
	)
	logger.Info(ctx, "starting http server", "port", cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
