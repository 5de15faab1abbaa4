package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"eskytrack/internal/api/handler"
	"eskytrack/internal/api/middleware"
	"eskytrack/internal/core/service"
)

type Options struct {
	JWTSecret string
	Gatherer  prometheus.Gatherer
	Logger    *zap.Logger
}

func NewRouter(
	deviceService service.DeviceService,
	positionService service.PositionService,
	opts Options,
) http.Handler {
	// Initialize handlers
	deviceHandler := handler.NewDeviceHandler(deviceService)
	positionHandler := handler.NewPositionHandler(positionService)
	authMiddleware := middleware.NewAuthMiddleware(opts.JWTSecret)
	logging := middleware.LoggingMiddleware(opts.Logger)

	mux := http.NewServeMux()

	public := func(h http.Handler) http.Handler {
		return middleware.CORSMiddleware(logging(h))
	}
	withMiddleware := func(h http.Handler) http.Handler {
		return public(authMiddleware.Authenticate(h))
	}

	// Health check endpoint
	mux.Handle("/health", public(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})))

	if opts.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	// Device routes with method handling
	mux.Handle("/api/devices", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			deviceHandler.Create(w, r)
		case http.MethodDelete:
			deviceHandler.Delete(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/api/devices/list", withMiddleware(getOnly(deviceHandler.GetDevices)))
	mux.Handle("/api/devices/get", withMiddleware(getOnly(deviceHandler.GetDevice)))

	mux.Handle("/api/positions/list", withMiddleware(getOnly(positionHandler.GetPositions)))
	mux.Handle("/api/positions/latest", withMiddleware(getOnly(positionHandler.GetLatestPosition)))

	mux.Handle("/api/positions/raw", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			positionHandler.ProcessRawData(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	return mux
}

func getOnly(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	})
}
