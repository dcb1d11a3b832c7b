package routes

import (
	adminapi "study-platform/internal/api/admin"
	authapi "study-platform/internal/api/auth"
	"study-platform/internal/api/billing"
	"study-platform/internal/api/generate"
	"study-platform/internal/api/health"
	"study-platform/internal/api/plans"
	programsapi "study-platform/internal/api/programs"
	progressapi "study-platform/internal/api/progress"
	stripewebhooks "study-platform/internal/api/stripewebhook"
	studyapi "study-platform/internal/api/study"
	"study-platform/internal/api/users"
	"study-platform/internal/app/http/middleware"
	"study-platform/internal/domain/access"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps carries the constructed handlers into the router.
type Deps struct {
	DB        *gorm.DB
	JWTSecret []byte

	Health   *health.Handler
	Auth     *authapi.Handler
	Users    *users.Handler
	Plans    *plans.Handler
	Billing  *billing.Handler
	Webhooks *stripewebhooks.Handler
	Generate *generate.Handler
	Study    *studyapi.Handler
	Progress *progressapi.Handler
	Programs *programsapi.Handler
	Admin    *adminapi.Handler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// the webhook signature covers the raw body, so it stays outside sanitization
	r.POST("/webhook", d.Webhooks.StripeWebhook)
	r.GET("/health", d.Health.Live)
	r.GET("/ready", d.Health.Ready)

	public := r.Group("/")
	public.Use(middleware.SanitizeInput())

	public.POST("/register", d.Auth.Register)
	public.POST("/login", d.Auth.Login)
	public.GET("/plans", d.Plans.ListPlans)
	public.GET("/verify", d.Auth.VerifyEmail)
	public.POST("/resend-verification", d.Auth.ResendVerification)
	public.POST("/request-password-reset", d.Auth.RequestPasswordReset)
	public.POST("/reset-password", d.Auth.ResetPassword)

	public.GET("/auth/google", d.Auth.GoogleStart)
	public.GET("/auth/google/callback", d.Auth.GoogleCallback)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(d.JWTSecret), middleware.SanitizeInput())
	auth.GET("/me", d.Users.GetCurrentUser)
	auth.PUT("/me/profile", d.Users.UpdateProfile)
	auth.POST("/me/onboarding", d.Users.Onboarding)
	auth.POST("/change-password", d.Auth.ChangePassword)

	auth.GET("/billing/payments", d.Billing.GetPaymentHistory)
	auth.GET("/billing/subscriptions", d.Billing.GetSubscriptions)
	auth.POST("/billing/checkout/:plan_id", d.Billing.CreateCheckoutSession)
	auth.POST("/billing/portal", d.Billing.CreateBillingPortal)

	auth.POST("/generate", middleware.RequireCapability(d.DB, access.CapGeneration), d.Generate.Generate)
	auth.POST("/chat", middleware.RequireCapability(d.DB, access.CapChat), d.Study.Chat)

	auth.GET("/practice-tests", d.Study.ListPracticeTests)
	auth.GET("/practice-tests/:id", d.Study.GetPracticeTest)
	auth.DELETE("/practice-tests/:id", d.Study.DeletePracticeTest)
	auth.POST("/practice-tests/:id/submit", d.Study.SubmitPracticeTest)

	auth.GET("/writing-tasks", d.Study.ListWritingTasks)
	auth.POST("/writing-tasks", d.Study.CreateWritingTask)
	auth.GET("/writing-tasks/:id", d.Study.GetWritingTask)
	auth.DELETE("/writing-tasks/:id", d.Study.DeleteWritingTask)
	auth.GET("/writing-results/:id", d.Study.GetWritingResult)

	auth.GET("/flashcard-sets", d.Study.ListFlashcardSets)
	auth.GET("/flashcard-sets/:id", d.Study.GetFlashcardSet)
	auth.DELETE("/flashcard-sets/:id", d.Study.DeleteFlashcardSet)
	auth.POST("/flashcard-sets/:id/reset", d.Study.ResetFlashcards)
	auth.POST("/flashcard-sets/:id/answer", d.Study.AnswerFlashcard)
	auth.GET("/flashcard-sets/:id/summary", d.Study.FlashcardSummary)
	auth.GET("/flashcard-sets/:id/navigate", d.Study.NavigateFlashcards)

	auth.GET("/dashboard", d.Progress.Dashboard)
	auth.GET("/progress", middleware.RequireCapability(d.DB, access.CapProgressTracking), d.Progress.Summary)
	auth.GET("/progress/insights", middleware.RequireCapability(d.DB, access.CapAIInsights), d.Progress.Insights)
	auth.GET("/achievements", d.Progress.Achievements)

	programs := auth.Group("/programs")
	programs.Use(middleware.RequireCapability(d.DB, access.CapPrograms))
	programs.GET("", d.Programs.ListPrograms)
	programs.GET("/:id", d.Programs.GetProgram)

	// Essays are graded as written; markup stripping would drop text like "<y>".
	raw := r.Group("/")
	raw.Use(middleware.AuthMiddleware(d.JWTSecret))
	raw.POST("/writing-tasks/:id/submit", d.Study.SubmitEssay)

	// Subscribed users
	subscribed := auth.Group("/")
	subscribed.Use(middleware.RequireActiveSubscription(d.DB))
	subscribed.POST("/billing/cancel", d.Billing.CancelSubscription)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(d.JWTSecret), middleware.RequireRole("admin"))
	admin.GET("/dashboard", d.Admin.AdminDashboard)
	admin.GET("/users", d.Admin.ListAllUsers)
	admin.GET("/payments", d.Admin.ListAllPayments)
	admin.GET("/user/:id", d.Admin.GetUserDetails)
	admin.POST("/sync-plans", d.Plans.SyncPlansFromStripe)
	admin.POST("/programs", d.Programs.CreateProgram)
	admin.DELETE("/programs/:id", d.Programs.DeleteProgram)
}
