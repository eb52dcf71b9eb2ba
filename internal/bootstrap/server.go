package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	httpSwagger "github.com/swaggo/http-swagger"
	"google.golang.org/grpc"

	"github.com/Domenick1991/skysailor/api"
	"github.com/Domenick1991/skysailor/config"
	"github.com/Domenick1991/skysailor/internal/api/grpcapi"
	"github.com/Domenick1991/skysailor/internal/auth"
	"github.com/Domenick1991/skysailor/internal/metrics"
	"github.com/Domenick1991/skysailor/internal/service/booking"
	"github.com/Domenick1991/skysailor/internal/service/flights"
	"github.com/Domenick1991/skysailor/internal/service/notify"
	"github.com/Domenick1991/skysailor/internal/service/offers"
)

const swaggerDocPath = "/docs/skysailor.swagger.json"

// Deps is everything the HTTP and gRPC surfaces serve.
type Deps struct {
	Flights       flights.FlightUseCase
	Bookings      booking.BookingUseCase
	Offers        offers.OfferUseCase
	Notifications notify.SchedulerUseCase
	Provider      api.ProviderStore
	Tokens        *auth.Tokens
	NATS          *nats.Conn
	// OnAuthenticated runs for every authenticated request, e.g. to start the
	// user's booked flight sync.
	OnAuthenticated []auth.Hook
}

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
}

// Run starts the gRPC and HTTP servers and blocks until ctx is canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, deps Deps) error {
	s := newServers(cfg, deps)

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	go func() { errCh <- s.grpcServer.Serve(lis) }()

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info().Str("http", cfg.HTTP.Address).Str("grpc", cfg.GRPC.Address).Msg("servers started")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServers(cfg *config.Config, deps Deps) *Servers {
	grpcSrv := grpc.NewServer(
		grpc.ForceServerCodec(grpcapi.Codec()),
		grpc.UnaryInterceptor(auth.UnaryInterceptor(deps.Tokens, deps.OnAuthenticated...)),
		grpc.StreamInterceptor(auth.StreamInterceptor(deps.Tokens, deps.OnAuthenticated...)),
	)
	grpcapi.RegisterFlightsService(grpcSrv, grpcapi.NewFlightsServer(deps.Flights))
	grpcapi.RegisterBookingsService(grpcSrv, grpcapi.NewBookingsServer(deps.Bookings, deps.NATS, cfg.NATS.SubjectPrefix))

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           NewRouter(cfg, deps),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewRouter wires the REST API, metrics and docs.
func NewRouter(cfg *config.Config, deps Deps) *gin.Engine {
	if !cfg.App.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestMetrics())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET(swaggerDocPath, func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", swaggerDoc(cfg.HTTP.SwaggerDir))
	})
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(swaggerDocPath))))

	v1 := router.Group("/api/v1")
	api.NewFlightHandler(deps.Flights).Register(v1.Group("/flights"))

	protected := v1.Group("", auth.Middleware(deps.Tokens, deps.OnAuthenticated...))
	api.NewBookingHandler(deps.Bookings).Register(protected.Group("/bookings"))
	api.NewOfferHandler(deps.Offers).Register(protected.Group("/offers"))
	api.NewNotificationHandler(deps.Notifications).Register(protected.Group("/notifications"))
	api.NewProviderHandler(deps.Provider).Register(protected.Group("/provider"))

	return router
}

// swaggerDoc prefers a doc on disk so it can be edited without a rebuild.
func swaggerDoc(dir string) []byte {
	if dir != "" {
		if data, err := os.ReadFile(filepath.Join(dir, "skysailor.swagger.json")); err == nil {
			return data
		}
	}
	return api.SwaggerDoc
}

func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
