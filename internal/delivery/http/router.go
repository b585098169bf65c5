package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventbookingsystem/internal/delivery/http/controllers"
	"eventbookingsystem/internal/delivery/http/middleware"
	"eventbookingsystem/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	bookingController *controllers.BookingController,
	verifier domain.TokenVerifier,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Event catalog
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("GET /events/{eventID}", eventController.GetEventByID)
	mux.HandleFunc("POST /events", auth(eventController.CreateEvent))
	mux.HandleFunc("PUT /events/{eventID}", auth(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(eventController.DeleteEvent))

	// Bookings
	mux.HandleFunc("POST /events/{eventID}/bookings", auth(bookingController.CreateBooking))
	mux.HandleFunc("GET /bookings/{bookingID}", auth(bookingController.GetBookingByID))
	mux.HandleFunc("DELETE /bookings/{bookingID}", auth(bookingController.CancelBooking))
	mux.HandleFunc("GET /users/me/bookings", auth(bookingController.ListMyBookings))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
