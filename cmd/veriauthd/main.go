// Command veriauthd serves the registration, login, and session endpoints
// over HTTP, wiring the engine to Postgres, Redis, and an SMTP mailer.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/veriauth/veriauth"
	"github.com/veriauth/veriauth/mail"
	authmw "github.com/veriauth/veriauth/middleware"
	"github.com/veriauth/veriauth/password"
	"github.com/veriauth/veriauth/postgres"
)

type envConfig struct {
	Port          string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string

	JWTSecret        string
	JWTRefreshSecret string

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string

	VerifyLinkBase string
	CORSOrigin     string
	SecureCookies  bool
}

func loadEnv() envConfig {
	_ = godotenv.Load()
	return envConfig{
		Port:             getenv("PORT", "5000"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisAddr:        getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		SMTPHost:         getenv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:         getenv("SMTP_PORT", "465"),
		SMTPUser:         os.Getenv("SMTP_USER"),
		SMTPPassword:     os.Getenv("SMTP_PASSWORD"),
		VerifyLinkBase:   getenv("VERIFY_LINK_BASE", "http://localhost:5000/api/user/verify"),
		CORSOrigin:       getenv("CORS_ORIGIN", "*"),
		SecureCookies:    os.Getenv("SECURE_COOKIES") == "true",
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	env := loadEnv()
	if env.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not found in environment")
	}
	if env.JWTSecret == "" || env.JWTRefreshSecret == "" {
		log.Fatal("JWT_SECRET and JWT_REFRESH_SECRET are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(connectCtx, env.DatabaseURL)
	if err != nil {
		log.Fatal("database pool", zap.Error(err))
	}
	defer pool.Close()
	if err := pool.Ping(connectCtx); err != nil {
		log.Fatal("database unreachable", zap.Error(err))
	}

	users := postgres.NewUserStore(pool)
	if err := users.Migrate(connectCtx); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     env.RedisAddr,
		Password: env.RedisPassword,
	})
	defer rdb.Close()

	hasher, err := password.NewBcrypt(password.DefaultCost)
	if err != nil {
		log.Fatal("hasher", zap.Error(err))
	}

	cfg := veriauth.DefaultConfig()
	cfg.JWT.AccessSecret = []byte(env.JWTSecret)
	cfg.JWT.RefreshSecret = []byte(env.JWTRefreshSecret)
	cfg.Verification.LinkBase = env.VerifyLinkBase

	engine, err := veriauth.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserStore(users).
		WithMailer(mail.NewSender(env.SMTPHost, env.SMTPPort, env.SMTPUser, env.SMTPPassword)).
		WithHasher(hasher).
		WithLogger(log).
		Build()
	if err != nil {
		log.Fatal("engine", zap.Error(err))
	}

	h := &handlers{engine: engine, config: cfg, log: log, secureCookies: env.SecureCookies}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{env.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api/user", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/verify/{token}", h.verifyEmail)
		r.Post("/login", h.login)
		r.Post("/verify", h.verifyOTP)
		r.Post("/refresh", h.refresh)
		r.Group(func(r chi.Router) {
			r.Use(authmw.Auth(engine))
			r.Get("/me", h.profile)
			r.Post("/logout", h.logout)
		})
	})

	srv := &http.Server{
		Addr:    ":" + env.Port,
		Handler: r,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
}
