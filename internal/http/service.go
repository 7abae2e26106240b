package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/product-discount/internal/config"
	"github.com/tuanvumaihuynh/product-discount/internal/discount"
	"github.com/tuanvumaihuynh/product-discount/internal/http/apierr"
	"github.com/tuanvumaihuynh/product-discount/internal/http/metric"
	"github.com/tuanvumaihuynh/product-discount/internal/http/middleware"
	"github.com/tuanvumaihuynh/product-discount/internal/http/swagger"
	"github.com/tuanvumaihuynh/product-discount/internal/service"
	"github.com/tuanvumaihuynh/product-discount/internal/storage/db"
	"github.com/tuanvumaihuynh/product-discount/pkg/validator"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg     config.HTTP
	logger  *slog.Logger
	metrics *metric.Metrics

	productSvc    service.ProductService
	evaluator     *discount.Evaluator
	today         func() time.Time
	healthChecker db.HealthChecker
}

type CleanupFunc func(ctx context.Context) error

// New creates the HTTP service. today returns the current time in the time
// zone whose calendar date decides which discounts apply.
func New(
	cfg config.HTTP,
	log *slog.Logger,
	productSvc service.ProductService,
	evaluator *discount.Evaluator,
	today func() time.Time,
	healthChecker db.HealthChecker,
) *Service {
	return &Service{
		cfg:           cfg,
		logger:        log.With(slog.String("service", "http")),
		metrics:       metric.New(),
		productSvc:    productSvc,
		evaluator:     evaluator,
		today:         today,
		healthChecker: healthChecker,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	r, err := s.Router()
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}

	return s.RunWithServer(ctx, r)
}

// Router builds the complete HTTP handler: middlewares, docs, API routes and metrics.
func (s *Service) Router() (chi.Router, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r)
	}

	if err := s.RegisterHandlers(r); err != nil {
		return nil, err
	}

	return r, nil
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.ErrorContext(ctx, "http server stopped unexpectedly", slog.Any("error", err))
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(s.cfg.CORSAllowedOrigins),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) error {
	h, err := s.newHandler()
	if err != nil {
		return fmt.Errorf("new handler: %w", err)
	}

	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.handle(h.ListProducts))
		r.Post("/", s.handle(h.CreateProduct))
		r.Get("/{id}", s.handle(h.GetProduct))
		r.Put("/{id}", s.handle(h.UpdateProduct))
		r.Delete("/{id}", s.handle(h.DeleteProduct))
	})

	r.Get("/healthz", s.handle(h.Health))

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))

	return nil
}

// handlerFunc is an http.HandlerFunc that reports failures instead of writing them.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *Service) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		err := fn(ww, r)
		if err == nil {
			return
		}

		// once the status line is out, an error envelope would corrupt the body
		if ww.Status() != 0 {
			s.logger.ErrorContext(r.Context(), "http response failed after headers were written",
				slog.Int("status", ww.Status()),
				slog.Any("error", err),
			)
			return
		}

		s.handleResponseError(w, r, err)
	}
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}

type handler struct {
	*productHandler
	*healthHandler
}

func (s *Service) newHandler() (*handler, error) {
	v, err := validator.NewDefaultValidator()
	if err != nil {
		return nil, fmt.Errorf("new validator: %w", err)
	}

	return &handler{
		productHandler: newProductHandler(s.logger, s.metrics, v, s.productSvc, s.evaluator, s.today),
		healthHandler:  newHealthHandler(s.healthChecker),
	}, nil
}
