package router

import (
	"context"
	"eventers-ticketing/auth"
	"eventers-ticketing/cache"
	"eventers-ticketing/clock"
	"eventers-ticketing/config"
	"eventers-ticketing/event"
	"eventers-ticketing/factory"
	"eventers-ticketing/handler"
	"eventers-ticketing/healthcheck"
	"eventers-ticketing/logger"
	"eventers-ticketing/middleware"
	"eventers-ticketing/model"
	"eventers-ticketing/reservation"
	"eventers-ticketing/response"
	"eventers-ticketing/store"
	"eventers-ticketing/user"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/viper"
)

// Services are the collaborators the routes are bound to.
type Services struct {
	Reservation handler.Purchaser
	Events      handler.EventService
	Accounts    handler.AccountService
	Tokens      middleware.Verifier
	Health      healthcheck.Pinger
}

// Router wires the production services and returns the CORS-wrapped API
// handler.
func Router(ctx context.Context, f factory.Factory) http.Handler {
	secret := viper.GetString(config.Secret)
	if secret == "" {
		logger.Fatalf(ctx, "router: %s must be set", config.Secret)
	}

	clk := clock.NewSystem()
	st := store.NewStore(f.DB(ctx))
	tokens := auth.NewTokens(secret, viper.GetDuration(config.JWTTTL), clk)

	var reservationOpts []reservation.Option
	var listings event.ListingCache
	if client := f.Redis(ctx); client != nil {
		l := cache.NewListings(client, viper.GetDuration(config.RedisListingTTL))
		listings = l
		reservationOpts = append(reservationOpts, reservation.WithInvalidator(l))
	}

	r := New(Services{
		Reservation: reservation.NewService(st, clk, reservationOpts...),
		Events:      event.NewEvent(st, clk, listings),
		Accounts:    user.NewUser(st, tokens, clk),
		Tokens:      tokens,
		Health:      st,
	})

	return cors.New(cors.Options{
		AllowedOrigins:   viper.GetStringSlice(config.CORSAllowedOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Correlation-Id"},
		ExposedHeaders:   []string{"Correlation-Id"},
		AllowCredentials: true,
	}).Handler(r)
}

// New returns the route table for s.
func New(s Services) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.SetCorrelationIDHeader)
	r.Use(middleware.PanicHandler)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		response.ResourceNotFound(fmt.Sprintf("The requested resource was not found: path: %s, method: %s", req.URL.Path, req.Method), "The requested resource was not found!").Send(req.Context(), w)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		response.MethodNotAllowed(req.Method, req.URL.Path).Send(req.Context(), w)
	})

	r.Use(middleware.ResponseTimeLogging)
	r.Use(middleware.RequestLogging)
	r.Use(middleware.SetContentTypeHeader)

	authenticate := middleware.Authenticate(s.Tokens)
	as := func(role string, h http.HandlerFunc) http.Handler {
		return authenticate(middleware.RestrictTo(role)(h))
	}

	r.HandleFunc("/healthcheck", healthcheck.Self(s.Health)).Methods(http.MethodGet)

	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/signup", handler.Signup(s.Accounts)).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", handler.Login(s.Accounts)).Methods(http.MethodPost)

	eventRouter := r.PathPrefix("/events").Subrouter()
	eventRouter.HandleFunc("", handler.ListEvents(s.Events)).Methods(http.MethodGet)
	eventRouter.Handle("", as(model.RoleOrganizer, handler.CreateEvent(s.Events))).Methods(http.MethodPost)
	eventRouter.Handle("/mine", as(model.RoleOrganizer, handler.MyEvents(s.Events))).Methods(http.MethodGet)
	eventRouter.HandleFunc("/{eventId:[0-9]+}", handler.GetEvent(s.Events)).Methods(http.MethodGet)
	eventRouter.Handle("/{eventId:[0-9]+}", as(model.RoleOrganizer, handler.UpdateEvent(s.Events))).Methods(http.MethodPut)
	eventRouter.Handle("/{eventId:[0-9]+}", as(model.RoleOrganizer, handler.DeleteEvent(s.Events))).Methods(http.MethodDelete)
	eventRouter.Handle("/{eventId:[0-9]+}/purchase", as(model.RoleBuyer, handler.Purchase(s.Reservation))).Methods(http.MethodPost)

	r.Handle("/tickets/mine", as(model.RoleBuyer, handler.MyTickets(s.Accounts))).Methods(http.MethodGet)

	return r
}
