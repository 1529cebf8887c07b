package main

import (
	"context"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/meridiancrm/backend/internal/ai"
	"github.com/meridiancrm/backend/internal/application/services"
	"github.com/meridiancrm/backend/internal/bootstrap"
	"github.com/meridiancrm/backend/internal/infrastructure/database"
	"github.com/meridiancrm/backend/internal/interfaces/middleware"
	"github.com/meridiancrm/backend/internal/interfaces/rest"
)

func main() {
	// .env is optional; real deployments set environment variables directly
	if err := godotenv.Load(); err == nil {
		log.Println("📄 Loaded configuration from .env")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	// Initialize database connection
	db, err := database.GetInstance()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("✅ Database connection established")

	ctx := context.Background()

	if err := bootstrap.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	// AI clients. Both speak the OpenAI wire format, so local services
	// (LM Studio, Ollama, vLLM) work by pointing the base URLs at them.
	embedModel := os.Getenv("EMBED_MODEL")
	if embedModel == "" {
		embedModel = "text-embedding-3-small"
	}
	embedder, err := ai.NewOpenAIEmbedder(os.Getenv("EMBED_BASE_URL"), os.Getenv("OPENAI_API_KEY"), embedModel)
	if err != nil {
		log.Fatalf("Failed to create embedding client: %v", err)
	}

	chatModel := os.Getenv("CHAT_MODEL")
	if chatModel == "" {
		chatModel = "gpt-4o-mini"
	}
	chat := ai.NewOpenAIChatClient(os.Getenv("CHAT_BASE_URL"), os.Getenv("OPENAI_API_KEY"))

	// Initialize service manager
	svcMgr := services.NewServiceManager(db, embedder, embedModel, chat, chatModel)
	log.Println("🔧 Service manager initialized")

	// Initialize system data (admin user)
	if err := bootstrap.InitializeSystemData(ctx, svcMgr.Auth); err != nil {
		log.Fatalf("Failed to initialize system data: %v", err)
	}

	// Hydrate vector indexes and start background workers
	if err := svcMgr.Start(ctx, os.Getenv("EMBED_REFRESH_CRON")); err != nil {
		log.Fatalf("Failed to start services: %v", err)
	}
	log.Println("🧠 Vector indexes hydrated, embedding worker started")

	// Create Gin router
	router := gin.Default()

	// CORS middleware - Allow credentials from any origin
	router.Use(middleware.CORS())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"server": "golang",
		})
	})

	// Debug/pprof endpoints for goroutine debugging
	// Access: http://localhost:3001/debug/pprof/
	debug := router.Group("/debug/pprof")
	{
		debug.GET("/", gin.WrapF(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/debug/pprof/", http.StatusMovedPermanently)
		})))
		debug.GET("/goroutine", gin.WrapH(http.DefaultServeMux))
		debug.GET("/heap", gin.WrapH(http.DefaultServeMux))
		debug.GET("/profile", gin.WrapH(http.DefaultServeMux))
		debug.GET("/trace", gin.WrapH(http.DefaultServeMux))
	}

	// Initialize handlers
	authHandler := rest.NewAuthHandler(svcMgr)
	userHandler := rest.NewUserHandler(svcMgr)
	leadHandler := rest.NewLeadHandler(svcMgr)
	companyHandler := rest.NewCompanyHandler(svcMgr)
	contactHandler := rest.NewContactHandler(svcMgr)
	dealHandler := rest.NewDealHandler(svcMgr)
	activityHandler := rest.NewActivityHandler(svcMgr)
	emailHandler := rest.NewEmailHandler(svcMgr)
	searchHandler := rest.NewSearchHandler(svcMgr)
	assistHandler := rest.NewAssistHandler(svcMgr)
	analyticsHandler := rest.NewAnalyticsHandler(svcMgr)
	adminHandler := rest.NewAdminHandler(svcMgr)

	// Initialize middleware
	requireAuth := middleware.RequireAuth(svcMgr.Auth)
	requireSystemAdmin := middleware.RequireSystemAdmin()

	// API routes
	api := router.Group("/api")
	{
		// Public Auth routes (no authentication required)
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", requireAuth, authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetMe)
			auth.POST("/change-password", requireAuth, authHandler.ChangePassword)
			auth.GET("/sessions", requireAuth, authHandler.GetSessions)

			auth.POST("/register", requireAuth, requireSystemAdmin, userHandler.Register)
			auth.GET("/users", requireAuth, requireSystemAdmin, userHandler.GetUsers)
		}

		// Leads
		leads := api.Group("/leads")
		leads.Use(requireAuth)
		{
			leads.POST("", leadHandler.Create)
			leads.GET("", leadHandler.List)
			leads.GET("/:id", leadHandler.Get)
			leads.PATCH("/:id", leadHandler.Update)
			leads.DELETE("/:id", leadHandler.Delete)
			leads.POST("/:id/persona", assistHandler.GeneratePersona)
			leads.GET("/:id/persona", assistHandler.GetPersona)
		}

		// Companies
		companies := api.Group("/companies")
		companies.Use(requireAuth)
		{
			companies.POST("", companyHandler.Create)
			companies.GET("", companyHandler.List)
			companies.GET("/:id", companyHandler.Get)
			companies.PATCH("/:id", companyHandler.Update)
			companies.DELETE("/:id", companyHandler.Delete)
			companies.GET("/:id/contacts", companyHandler.Contacts)
		}

		// Contacts
		contacts := api.Group("/contacts")
		contacts.Use(requireAuth)
		{
			contacts.POST("", contactHandler.Create)
			contacts.GET("", contactHandler.List)
			contacts.GET("/:id", contactHandler.Get)
			contacts.PATCH("/:id", contactHandler.Update)
			contacts.DELETE("/:id", contactHandler.Delete)
		}

		// Deals
		deals := api.Group("/deals")
		deals.Use(requireAuth)
		{
			deals.POST("", dealHandler.Create)
			deals.GET("", dealHandler.List)
			deals.GET("/:id", dealHandler.Get)
			deals.PATCH("/:id", dealHandler.Update)
			deals.DELETE("/:id", dealHandler.Delete)
			deals.GET("/:id/emails", dealHandler.Emails)
			deals.POST("/:id/coach", assistHandler.CoachDeal)
		}

		// Activities
		activities := api.Group("/activities")
		activities.Use(requireAuth)
		{
			activities.POST("", activityHandler.Create)
			activities.GET("", activityHandler.List)
			activities.GET("/:id", activityHandler.Get)
			activities.PATCH("/:id", activityHandler.Update)
			activities.DELETE("/:id", activityHandler.Delete)
		}

		// Emails
		emails := api.Group("/emails")
		emails.Use(requireAuth)
		{
			emails.POST("", emailHandler.Create)
			emails.GET("", emailHandler.List)
			emails.GET("/:id", emailHandler.Get)
			emails.DELETE("/:id", emailHandler.Delete)
			emails.POST("/:id/summarize", assistHandler.SummarizeEmail)
		}

		// Hybrid search
		api.POST("/search", requireAuth, searchHandler.Search)

		// Assist
		assist := api.Group("/assist")
		assist.Use(requireAuth)
		{
			assist.POST("/draft-email", assistHandler.DraftEmail)
			assist.POST("/research", assistHandler.Research)
		}

		// Analytics (read-only SQL with row-level ownership filtering)
		api.POST("/analytics/query", requireAuth, analyticsHandler.Query)

		// Admin
		admin := api.Group("/admin")
		admin.Use(requireAuth, requireSystemAdmin)
		{
			admin.GET("/embeddings", adminHandler.EmbeddingStatus)
			admin.POST("/embeddings/refresh", adminHandler.RefreshEmbeddings)
			admin.POST("/score-rules", adminHandler.CreateScoreRule)
			admin.GET("/score-rules", adminHandler.ListScoreRules)
			admin.PATCH("/score-rules/:id", adminHandler.UpdateScoreRule)
			admin.DELETE("/score-rules/:id", adminHandler.DeleteScoreRule)
			admin.POST("/score-rules/rescore", adminHandler.RescoreLeads)
		}
	}

	// Start server
	log.Println("\n═══════════════════════════════════════════════════════════")
	log.Println("🚀 MeridianCRM Backend Started Successfully")
	log.Println("═══════════════════════════════════════════════════════════")
	log.Printf("\n📍 Server:       http://localhost:%s", port)
	log.Printf("🔐 Auth API:     http://localhost:%s/api/auth", port)
	log.Printf("🔍 Search API:   http://localhost:%s/api/search", port)
	log.Printf("📊 Analytics:    http://localhost:%s/api/analytics/query", port)
	log.Printf("💚 Health check: http://localhost:%s/health\n", port)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	svcMgr.Stop()
	log.Println("🛑 Embedding worker stopped")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}
