// Package gateway is the public edge: it authenticates requests, forwards
// them to the upstream services and reports upstream failures as 502s.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"slices"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/homehelp/homehelp-api/apperror"
	"github.com/homehelp/homehelp-api/controllers"
	"github.com/homehelp/homehelp-api/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultTimeout bounds the wait for an upstream response
const DefaultTimeout = 15 * time.Second

const routeKey = "gateway_route"

// Options configure a Gateway
type Options struct {
	Routes         []Route
	Trust          *middleware.TrustPropagator
	Timeout        time.Duration
	AllowedOrigins []string
	Logger         *slog.Logger
	Registry       *prometheus.Registry
}

// Gateway routes public requests to upstream services
type Gateway struct {
	routes   []Route
	proxies  map[string]*httputil.ReverseProxy
	trust    *middleware.TrustPropagator
	timeout  time.Duration
	origins  []string
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *Metrics
}

// New creates a gateway. A nil Registry gets a private one.
func New(opts Options) (*Gateway, error) {
	if opts.Trust == nil {
		return nil, errors.New("gateway requires a trust propagator")
	}
	if len(opts.Routes) == 0 {
		return nil, errors.New("gateway requires at least one route")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	g := &Gateway{
		routes:   opts.Routes,
		proxies:  make(map[string]*httputil.ReverseProxy, len(opts.Routes)),
		trust:    opts.Trust,
		timeout:  opts.Timeout,
		origins:  opts.AllowedOrigins,
		logger:   opts.Logger,
		registry: opts.Registry,
		metrics:  NewMetrics(opts.Registry),
	}
	for _, route := range opts.Routes {
		if _, dup := g.proxies[route.Name]; dup {
			return nil, fmt.Errorf("duplicate route name %q", route.Name)
		}
		g.proxies[route.Name] = g.newProxy(route)
	}
	return g, nil
}

// Router builds the gin engine serving the gateway
func (g *Gateway) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.EdgeRequestID(), middleware.RequestLogger(g.logger), g.cors())

	health := controllers.NewHealthController(nil)
	r.GET("/health", health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(g.registry, promhttp.HandlerOpts{})))

	r.Any("/api/*path", g.resolve, g.observe, g.trust.Middleware(), g.forward)
	r.NoRoute(g.notFound)
	return r
}

func (g *Gateway) cors() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(g.origins) == 0 || slices.Contains(g.origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = g.origins
	}
	return cors.New(cfg)
}

// resolve finds the route for the request or answers 404
func (g *Gateway) resolve(c *gin.Context) {
	route, ok := lookup(g.routes, c.Request.URL.Path)
	if !ok {
		g.notFound(c)
		return
	}
	c.Set(routeKey, route)
	c.Next()
}

// observe counts every routed request, including the ones rejected by the trust check
func (g *Gateway) observe(c *gin.Context) {
	c.Next()
	route := c.MustGet(routeKey).(Route)
	g.metrics.requests.WithLabelValues(route.Name, strconv.Itoa(c.Writer.Status())).Inc()
}

// forward proxies the request upstream within the gateway timeout
func (g *Gateway) forward(c *gin.Context) {
	route := c.MustGet(routeKey).(Route)

	ctx, cancel := context.WithTimeout(c.Request.Context(), g.timeout)
	defer cancel()

	g.logger.InfoContext(ctx, "forwarding request",
		slog.String("request_id", middleware.GetRequestID(c)),
		slog.String("route", route.Name),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("upstream", route.Target.Host),
	)

	start := time.Now()
	g.proxies[route.Name].ServeHTTP(c.Writer, c.Request.WithContext(ctx))
	g.metrics.duration.WithLabelValues(route.Name).Observe(time.Since(start).Seconds())
}

func (g *Gateway) newProxy(route Route) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Path = route.upstreamPath(pr.In.URL.Path)
			pr.Out.URL.RawPath = ""
			pr.SetURL(route.Target)
			pr.SetXForwarded()
		},
		ModifyResponse: func(resp *http.Response) error {
			g.logger.InfoContext(resp.Request.Context(), "upstream response",
				slog.String("request_id", resp.Request.Header.Get(middleware.HeaderRequestID)),
				slog.String("route", route.Name),
				slog.Int("status", resp.StatusCode),
			)
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			g.upstreamError(w, r, route, err)
		},
	}
}

// upstreamError answers transport failures with 502 and the failure reason
func (g *Gateway) upstreamError(w http.ResponseWriter, r *http.Request, route Route, err error) {
	reason := err.Error()
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(r.Context().Err(), context.DeadlineExceeded) {
		reason = fmt.Sprintf("upstream %s timed out after %s", route.Name, g.timeout)
	}

	g.logger.WarnContext(r.Context(), "upstream unavailable",
		slog.String("request_id", r.Header.Get(middleware.HeaderRequestID)),
		slog.String("route", route.Name),
		slog.String("upstream", route.Target.Host),
		slog.Any("error", err),
	)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(apperror.UpstreamUnavailable.Status())
	if encodeErr := json.NewEncoder(w).Encode(map[string]string{
		"error":   "Upstream unavailable",
		"code":    apperror.UpstreamUnavailable.Code(),
		"details": reason,
	}); encodeErr != nil {
		g.logger.WarnContext(r.Context(), "failed to write error response", slog.Any("error", encodeErr))
	}
}

func (g *Gateway) notFound(c *gin.Context) {
	g.metrics.requests.WithLabelValues("unmatched", strconv.Itoa(http.StatusNotFound)).Inc()
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
		"error": "Not found",
		"code":  apperror.NotFound.Code(),
		"path":  c.Request.URL.Path,
	})
}
