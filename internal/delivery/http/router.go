package http

import (
	"log/slog"
	"net/http"

	"eventscape/internal/delivery/http/controllers"
	"eventscape/internal/delivery/http/middleware"
	"eventscape/internal/domain"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Auth          *controllers.AuthController
	User          *controllers.UserController
	Event         *controllers.EventController
	RSVP          *controllers.RSVPController
	Announcement  *controllers.AnnouncementController
	Invitation    *controllers.InvitationController
	Notification  *controllers.NotificationController
	Stats         *controllers.StatsController
	Health        *controllers.HealthController
	RealtimeServe http.HandlerFunc
}

// RouterConfig holds what the router needs besides the controllers.
type RouterConfig struct {
	Verifier       domain.TokenVerifier
	Resolver       middleware.IdentityResolver
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(cfg.Verifier, cfg.Resolver, cfg.Logger)

	// Health
	mux.HandleFunc("GET /status", c.Health.Status)
	mux.HandleFunc("GET /db/ping", c.Health.Ping)
	mux.HandleFunc("GET /db/tables", c.Health.Tables)
	mux.HandleFunc("GET /db/counts", c.Health.Counts)

	// Auth
	mux.HandleFunc("POST /auth/register", c.Auth.Register)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("POST /auth/logout", c.Auth.Logout)

	// Users
	mux.HandleFunc("GET /users", auth(c.User.ListUsers))
	mux.HandleFunc("POST /users", auth(c.User.CreateUser))
	mux.HandleFunc("GET /users/me", auth(c.User.GetMe))
	mux.HandleFunc("PATCH /users/me", auth(c.User.UpdateMe))

	// Events
	mux.HandleFunc("POST /events", auth(c.Event.CreateEvent))
	mux.HandleFunc("GET /events", auth(c.Event.ListEvents))
	mux.HandleFunc("GET /events/{eventID}", auth(c.Event.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", auth(c.Event.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(c.Event.DeleteEvent))

	mux.HandleFunc("POST /events/{eventID}/rsvp", auth(c.RSVP.Respond))
	mux.HandleFunc("GET /events/{eventID}/rsvps", auth(c.RSVP.ListRSVPs))

	mux.HandleFunc("POST /events/{eventID}/announcements", auth(c.Announcement.CreateAnnouncement))
	mux.HandleFunc("GET /events/{eventID}/announcements", auth(c.Announcement.ListAnnouncements))

	// Invitations
	mux.HandleFunc("POST /invitations", auth(c.Invitation.CreateInvitation))
	mux.HandleFunc("GET /events/{eventID}/invitations", auth(c.Invitation.ListInvitations))
	mux.HandleFunc("POST /invitations/{invitationID}/respond", auth(c.Invitation.RespondInvitation))

	// Notifications
	mux.HandleFunc("GET /notifications", auth(c.Notification.ListNotifications))
	mux.HandleFunc("POST /notifications/{notificationID}/read", auth(c.Notification.MarkRead))

	// Dashboard
	mux.HandleFunc("GET /dashboard/stats", auth(c.Stats.GetDashboardStats))
	mux.HandleFunc("GET /ws", c.RealtimeServe)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return middleware.CORS(cfg.AllowedOrigins, middleware.LoggingMiddleware(cfg.Logger, mux))
}
