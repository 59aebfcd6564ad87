package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"bookmarket/admin"
	"bookmarket/analytics"
	"bookmarket/auth"
	"bookmarket/cache"
	"bookmarket/common"
	"bookmarket/config"
	"bookmarket/database"
	"bookmarket/ingest"
	"bookmarket/pagesite"
	"bookmarket/storage"
	"bookmarket/store"
)

func main() {
	cfg := config.Load()

	db := common.ConnectDb(cfg.SQLitePath)
	if db == nil {
		log.Fatal("Failed to connect to database")
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	router := gin.Default()

	if cfg.SessionSecret == "" {
		log.Fatal("SESSION_SECRET environment variable not set")
	}

	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   false,
	})

	router.Use(sessions.Sessions("bookmarket-session", sessionStore))

	router.SetFuncMap(map[string]interface{}{
		"now": func() time.Time {
			return time.Now()
		},
		"domain": func() string {
			return cfg.Domain
		},
	})

	router.LoadHTMLGlob("*/views/*.html")

	router.Static("/public", "./public")
	router.Static("/datafiles", cfg.DataFilesDir)

	authService := auth.NewService(db)
	if err := authService.Bootstrap(cfg.AdminPassword); err != nil {
		log.Fatal("Failed to bootstrap accounts:", err)
	}

	pageStore := store.New(storage.NewGormKV(db), store.Config{
		DefaultLink:   cfg.DefaultLink,
		AdminPassword: cfg.AdminPassword,
	})

	analyticsModule := analytics.NewAnalyticsModule(common.ConnectAnalyticsDb(cfg.AnalyticsDB))
	loader := ingest.NewLoader(os.DirFS(cfg.DataFilesDir))

	adminModule := admin.NewAdminModule(pageStore, authService, analyticsModule, loader)
	adminModule.RegisterRoutes(router)

	siteModule := pagesite.NewPageSiteModule(pageStore, analyticsModule)
	cache.SetRoot(cfg.CacheDir)
	router.Use(cache.Middleware(10*time.Minute, siteModule.ResolveCode, siteModule.CountVisit))
	siteModule.RegisterRoutes(router)

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/admin")
	})

	log.Printf("Starting server on port %s...", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
