package main

import (
	"log"
	"time"

	"study-platform/config"
	"study-platform/database"
	adminapi "study-platform/internal/api/admin"
	authapi "study-platform/internal/api/auth"
	billingapi "study-platform/internal/api/billing"
	"study-platform/internal/api/generate"
	"study-platform/internal/api/health"
	plansapi "study-platform/internal/api/plans"
	programsapi "study-platform/internal/api/programs"
	progressapi "study-platform/internal/api/progress"
	stripewebhooks "study-platform/internal/api/stripewebhook"
	studyapi "study-platform/internal/api/study"
	usersapi "study-platform/internal/api/users"
	routes "study-platform/internal/app/http"
	"study-platform/internal/domain/billing"
	"study-platform/internal/domain/plans"
	"study-platform/internal/domain/programs"
	"study-platform/internal/domain/progress"
	"study-platform/internal/domain/study"
	"study-platform/internal/domain/users"
	"study-platform/internal/generation"
	"study-platform/internal/infra/email"
	"study-platform/internal/infra/openai"
	stripeinfra "study-platform/internal/infra/stripe"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.DBURL)
	if err != nil {
		log.Fatalf("%v", err)
	}
	models := []any{
		&users.User{}, &users.VerificationToken{}, &plans.Plan{},
		&billing.UserSubscription{}, &billing.Payment{}, &billing.WebhookEvent{},
	}
	models = append(models, study.Models()...)
	models = append(models, progress.Models()...)
	models = append(models, programs.Models()...)
	if err := database.Migrate(db, models...); err != nil {
		log.Fatalf("%v", err)
	}

	stripeClient := stripeinfra.NewClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	if !stripeClient.Configured() {
		log.Println("[billing] STRIPE_SECRET_KEY not set, billing endpoints will answer 503")
	}
	reconciler := billing.NewReconciler(db, stripeClient)

	ai := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	if ai == nil {
		log.Println("[generation] OPENAI_API_KEY not set, generation requests will fail")
	}
	gateway := generation.NewGateway(db, ai, generation.Options{
		Model:        cfg.OpenAIModel,
		GradingModel: cfg.OpenAIGradingModel,
	})

	detail := !cfg.IsProduction()
	mail := email.New(cfg.SendgridAPIKey, cfg.MailFrom)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		DB:        db,
		JWTSecret: []byte(cfg.JWTSecret),
		Health:    health.NewHandler(db),
		Auth: authapi.NewHandler(db, mail, cfg.JWTSecret, cfg.AppURL, authapi.GoogleConfig{
			ClientID:         cfg.GoogleClientID,
			ClientSecret:     cfg.GoogleClientSecret,
			RedirectURL:      cfg.GoogleRedirectURL,
			FrontendRedirect: cfg.GoogleFrontendRedirect,
		}),
		Users: usersapi.NewHandler(db),
		Plans: plansapi.NewHandler(db, stripeClient, detail),
		Billing: billingapi.NewHandler(db, stripeClient, billingapi.Options{
			AppURL: cfg.AppURL,
			AppEnv: cfg.AppEnv,
			Detail: detail,
		}),
		Webhooks: stripewebhooks.NewHandler(db, stripeClient, reconciler),
		Generate: generate.NewHandler(gateway, detail),
		Study:    studyapi.NewHandler(db, gateway, gateway, detail),
		Progress: progressapi.NewHandler(db, gateway, detail),
		Programs: programsapi.NewHandler(db),
		Admin:    adminapi.NewHandler(db),
	})

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
