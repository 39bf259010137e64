package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mr0ak1/social-app/internal/handler"
	"github.com/mr0ak1/social-app/internal/httputil"
	authmw "github.com/mr0ak1/social-app/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	PostHandler         *handler.PostHandler
	CommentHandler      *handler.CommentHandler
	MessageHandler      *handler.MessageHandler
	NotificationHandler *handler.NotificationHandler

	Tokens          authmw.TokenParser
	TokenExpiredErr error

	CORSOrigins []string
	RateLimiter *authmw.RateLimiter // nil disables rate limiting
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(authmw.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Handler)
		}

		// Public routes - no authentication required
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/login", cfg.AuthHandler.Login)
			r.Get("/logout", cfg.AuthHandler.Logout)
		})

		// Protected routes - require authentication
		r.Group(func(r chi.Router) {
			r.Use(authmw.AuthMiddleware(cfg.Tokens, cfg.TokenExpiredErr))

			r.Route("/user", func(r chi.Router) {
				r.Get("/me", cfg.UserHandler.Me)
				r.Get("/search", cfg.UserHandler.Search)
				r.Post("/follow/{id}", cfg.UserHandler.ToggleFollow)
				r.Get("/followdata/{id}", cfg.UserHandler.FollowData)
				r.Get("/{id}", cfg.UserHandler.Profile)
				r.Post("/{id}", cfg.UserHandler.UpdatePassword)
				r.Put("/{id}", cfg.UserHandler.UpdateProfile)
			})

			r.Route("/post", func(r chi.Router) {
				r.Post("/new", cfg.PostHandler.Create)
				r.Get("/all", cfg.PostHandler.All)
				r.Post("/like/{id}", cfg.PostHandler.ToggleLike)
				r.Post("/comment/{id}", cfg.CommentHandler.Add)
				r.Delete("/comment/{id}", cfg.CommentHandler.Remove)
				r.Put("/{id}", cfg.PostHandler.UpdateCaption)
				r.Delete("/{id}", cfg.PostHandler.Delete)
			})

			r.Route("/message", func(r chi.Router) {
				r.Post("/send/{recipientId}", cfg.MessageHandler.Send)
				r.Get("/get/{id}", cfg.MessageHandler.Get)
				r.Get("/chats", cfg.MessageHandler.Chats)
				r.Put("/seen/{otherUserId}", cfg.MessageHandler.Seen)
				r.Get("/unread-count", cfg.MessageHandler.UnreadCount)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", cfg.NotificationHandler.List)
				r.Get("/unread-count", cfg.NotificationHandler.UnreadCount)
				r.Put("/mark-all-read", cfg.NotificationHandler.MarkAllRead)
				r.Put("/{id}/read", cfg.NotificationHandler.MarkRead)
				r.Delete("/{id}", cfg.NotificationHandler.Delete)
			})

			r.Route("/devices", func(r chi.Router) {
				r.Post("/token", cfg.NotificationHandler.RegisterToken)
				r.Delete("/token", cfg.NotificationHandler.RemoveToken)
			})
		})
	})

	return r
}
