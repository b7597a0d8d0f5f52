package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/posqueue/internal/logging"
	"github.com/dmitrijs2005/posqueue/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Paths served by the router. The terminal's REST client uses the same ones.
const (
	PathPing   = "/api/ping"
	PathLogin  = "/api/login"
	PathOrders = "/api/orders"

	ClientRefHeader = "X-Client-Ref"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

type UserService interface {
	Login(ctx context.Context, userName, password string) (*services.LoginResult, error)
	Authenticate(accessToken string) (string, error)
}

type OrderService interface {
	Submit(ctx context.Context, userID, clientRef string, payload []byte) (string, bool, error)
}

type Server struct {
	address string
	users   UserService
	orders  OrderService
	logger  logging.Logger
}

func NewServer(a string, l logging.Logger, us UserService, ors OrderService) *Server {
	return &Server{
		address: a,
		logger:  l.With("module", "rest_server"),
		users:   us,
		orders:  ors,
	}
}

// Router builds the chi router with all intake routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", ClientRefHeader},
		MaxAge:         300,
	}))

	r.Get(PathPing, s.ping)
	r.Post(PathLogin, s.login)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post(PathOrders, s.submitOrder)
	})

	return r
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve serves on lis until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-stopped
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Debug(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
