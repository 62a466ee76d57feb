package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventgate/internal/delivery/http/controllers"
	"eventgate/internal/delivery/http/middleware"
	"eventgate/internal/domain"
)

// Controllers bundles the controllers served by the router.
type Controllers struct {
	Auth        *controllers.AuthController
	Checkin     *controllers.CheckinController
	RSVP        *controllers.RSVPController
	Event       *controllers.EventController
	Venue       *controllers.VenueController
	User        *controllers.UserController
	Participant *controllers.ParticipantController
	Calendar    *controllers.CalendarController
}

// NewRouter initializes the HTTP router with all application routes.
// Check-in verify/process are public so scanned QR codes work without a
// session; everything under /admin requires the admin role.
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	authed := middleware.RequireAuth(verifier, logger)
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return authed(middleware.RequireAdmin()(h))
	}

	// Public
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("GET /checkin/verify", c.Checkin.Verify)
	mux.HandleFunc("POST /checkin/process", c.Checkin.Process)

	// Authenticated
	mux.HandleFunc("GET /events", authed(c.Event.List))
	mux.HandleFunc("GET /events/{eventID}", authed(c.Event.Get))
	mux.HandleFunc("GET /rsvp/events/{eventID}", authed(c.RSVP.Status))
	mux.HandleFunc("POST /rsvp/events/{eventID}", authed(c.RSVP.Respond))
	mux.HandleFunc("GET /calendar/events/{eventID}", authed(c.Calendar.EventICS))
	mux.HandleFunc("GET /calendar/my-events", authed(c.Calendar.MyEventsICS))

	// Admin: users
	mux.HandleFunc("POST /admin/users", admin(c.User.Create))
	mux.HandleFunc("GET /admin/users", admin(c.User.List))
	mux.HandleFunc("GET /admin/users/export", admin(c.User.ExportCSV))
	mux.HandleFunc("POST /admin/users/import", admin(c.User.ImportCSV))
	mux.HandleFunc("POST /admin/users/bulk", admin(c.User.BulkAction))
	mux.HandleFunc("GET /admin/users/{userID}", admin(c.User.Get))
	mux.HandleFunc("PUT /admin/users/{userID}", admin(c.User.Update))
	mux.HandleFunc("DELETE /admin/users/{userID}", admin(c.User.Delete))

	// Admin: venues
	mux.HandleFunc("POST /admin/venues", admin(c.Venue.Create))
	mux.HandleFunc("GET /admin/venues", admin(c.Venue.List))
	mux.HandleFunc("GET /admin/venues/{venueID}", admin(c.Venue.Get))
	mux.HandleFunc("PUT /admin/venues/{venueID}", admin(c.Venue.Update))
	mux.HandleFunc("DELETE /admin/venues/{venueID}", admin(c.Venue.Delete))

	// Admin: events
	mux.HandleFunc("POST /admin/events", admin(c.Event.Create))
	mux.HandleFunc("PUT /admin/events/{eventID}", admin(c.Event.Update))
	mux.HandleFunc("DELETE /admin/events/{eventID}", admin(c.Event.Delete))
	mux.HandleFunc("GET /admin/events/{eventID}/stats", admin(c.Event.Stats))

	// Admin: rosters
	mux.HandleFunc("GET /admin/events/{eventID}/participants", admin(c.Participant.List))
	mux.HandleFunc("POST /admin/events/{eventID}/participants", admin(c.Participant.Add))
	mux.HandleFunc("POST /admin/events/{eventID}/participants/invite", admin(c.Participant.BulkInvite))
	mux.HandleFunc("GET /admin/events/{eventID}/participants/export", admin(c.Participant.ExportCSV))
	mux.HandleFunc("PUT /admin/events/{eventID}/participants/{participantID}", admin(c.Participant.Update))
	mux.HandleFunc("DELETE /admin/events/{eventID}/participants/{participantID}", admin(c.Participant.Remove))

	// Admin: check-in
	mux.HandleFunc("POST /admin/checkin/manual", admin(c.Checkin.ManualCheckin))
	mux.HandleFunc("DELETE /admin/checkin/{participantID}", admin(c.Checkin.UndoCheckin))
	mux.HandleFunc("POST /admin/events/{eventID}/checkin/bulk", admin(c.Checkin.BulkCheckin))
	mux.HandleFunc("GET /admin/events/{eventID}/checkin/stats", admin(c.Checkin.Stats))
	mux.HandleFunc("GET /admin/participants/{participantID}/qr", admin(c.Checkin.QRCode))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
