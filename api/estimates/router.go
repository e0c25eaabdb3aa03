package estimates

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kilianp07/carprice/core/logger"
)

// RouterConfig holds the HTTP front settings.
type RouterConfig struct {
	RateLimit  float64
	Burst      int
	CORSOrigin string
}

// NewRouter builds the HTTP API around svc.
func NewRouter(svc Service, cfg RouterConfig, log logger.Logger) http.Handler {
	if log == nil {
		log = logger.NopLogger{}
	}
	r := chi.NewRouter()
	limiter := NewRateLimiter(cfg.RateLimit, cfg.Burst)
	r.Use(
		Recover(log),
		RequestLogger(log),
		CORS(cfg.CORSOrigin),
		limiter.Middleware(),
	)
	New(svc, log).Register(r)
	return Chain(r, OTel("carprice-api"))
}
