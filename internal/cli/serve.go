package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/scottvr/phart/pkg/cache"
	"github.com/scottvr/phart/pkg/dot"
	"github.com/scottvr/phart/pkg/graph"
	"github.com/scottvr/phart/pkg/layout"
	"github.com/scottvr/phart/pkg/render"
)

// serveOpts holds the flags for the serve command.
type serveOpts struct {
	addr     string
	redis    string // Redis address; empty selects the file cache
	redisDB  int
	prefix   string // cache key namespace for shared backends
	ttl      time.Duration
	noCache  bool
	shutdown time.Duration
}

// newServeCmd creates the serve command: an HTTP endpoint that renders
// posted graphs. With --redis the render cache is shared across instances;
// otherwise it falls back to the local file cache.
func newServeCmd() *cobra.Command {
	opts := serveOpts{
		addr:     ":8080",
		ttl:      24 * time.Hour,
		shutdown: 10 * time.Second,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendering over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redis, "redis", "", "Redis address for a shared render cache")
	cmd.Flags().IntVar(&opts.redisDB, "redis-db", 0, "Redis logical database")
	cmd.Flags().StringVar(&opts.prefix, "cache-prefix", "", "key namespace when several deployments share one cache backend")
	cmd.Flags().DurationVar(&opts.ttl, "cache-ttl", opts.ttl, "render cache entry lifetime")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")

	return cmd
}

func runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	c, err := serverCache(opts)
	if err != nil {
		return err
	}
	defer c.Close()

	s := &server{
		cache: c,
		keyer: serverKeyer(opts.prefix),
		ttl:   opts.ttl,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(ctx))
	r.Get("/healthz", s.handleHealth)
	r.Post("/render", s.handleRender)

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	logger.Info("listening", "addr", opts.addr)
	printInfo("Serving on %s", styleAddr.Render(opts.addr))

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.shutdown)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// serverKeyer builds the key scheme for the serve command. A non-empty
// prefix scopes every key, so deployments pointing --redis at the same
// server keep separate namespaces.
func serverKeyer(prefix string) cache.Keyer {
	if prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, prefix+":")
}

// serverCache picks the serve backend: Redis when configured, the local
// file cache otherwise, null when disabled.
func serverCache(opts *serveOpts) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	if opts.redis != "" {
		return cache.NewRedisCache(opts.redis, "", opts.redisDB), nil
	}
	return newCache(false)
}

// =============================================================================
// Middleware
// =============================================================================

// requestIDKey is the context key for the request's correlation ID.
const requestIDKey ctxKey = 1

// requestID tags every request with a UUID, exposed in the X-Request-ID
// response header and the request context.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// requestLogger logs one line per request with the correlation ID, using
// the logger carried by the server's root context.
func requestLogger(ctx context.Context) func(http.Handler) http.Handler {
	logger := loggerFromContext(ctx)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			id, _ := r.Context().Value(requestIDKey).(string)
			logger.Debug("request",
				"id", id,
				"method", r.Method,
				"path", r.URL.Path,
				"duration", time.Since(start).Round(time.Millisecond))
		})
	}
}

// =============================================================================
// Handlers
// =============================================================================

// server holds the HTTP handler state.
type server struct {
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// renderRequest is the POST /render body: the graph in its file format,
// optional layout options, and the desired output format.
type renderRequest struct {
	Graph   graph.File      `json:"graph"`
	Options *optionsPayload `json:"options,omitempty"`
	Format  string          `json:"format,omitempty"` // text (default), dot, svg
}

// renderResponse is the POST /render reply.
type renderResponse struct {
	Diagram string `json:"diagram"`
	Format  string `json:"format"`
	Cached  bool   `json:"cached"`
}

// optionsPayload mirrors the config file's option fields for the HTTP API.
type optionsPayload struct {
	Style        *string  `json:"style,omitempty"`
	ASCII        *bool    `json:"ascii,omitempty"`
	Arrows       *bool    `json:"arrows,omitempty"`
	NodeSpacing  *int     `json:"node_spacing,omitempty"`
	LayerSpacing *int     `json:"layer_spacing,omitempty"`
	BinaryTree   *bool    `json:"binary_tree,omitempty"`
	Density      *float64 `json:"density_threshold,omitempty"`
}

// options converts the payload to validated layout options.
func (p *optionsPayload) options() (layout.Options, error) {
	opts := layout.Default()
	if p == nil {
		return opts, nil
	}
	if p.Style != nil {
		style, err := layout.ParseStyle(*p.Style)
		if err != nil {
			return opts, err
		}
		opts.NodeStyle = style
	}
	if p.ASCII != nil {
		opts.UseASCII = *p.ASCII
	}
	if p.Arrows != nil {
		opts.ShowArrows = *p.Arrows
	}
	if p.NodeSpacing != nil {
		opts.NodeSpacing = *p.NodeSpacing
	}
	if p.LayerSpacing != nil {
		opts.LayerSpacing = *p.LayerSpacing
	}
	if p.BinaryTree != nil {
		opts.BinaryTreeLayout = *p.BinaryTree
	}
	if p.Density != nil {
		opts.DensityThreshold = *p.Density
	}
	return opts, opts.Validate()
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	format := req.Format
	if format == "" {
		format = "text"
	}

	g, err := graph.FromFile(req.Graph)
	if err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}
	opts, err := req.Options.options()
	if err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}

	diagram, cached, err := s.produce(r.Context(), g, opts, format)
	if err != nil {
		httpError(w, http.StatusUnprocessableEntity, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(renderResponse{
		Diagram: diagram,
		Format:  format,
		Cached:  cached,
	})
}

// produce renders the requested artifact through the cache.
func (s *server) produce(ctx context.Context, g *graph.Graph, opts layout.Options, format string) (string, bool, error) {
	raw, err := graph.MarshalGraph(g)
	if err != nil {
		return "", false, err
	}
	hash := cache.Hash(raw)

	var key string
	switch format {
	case "text":
		key = s.keyer.RenderKey(hash, renderKeyOpts(opts))
	case "dot", "svg":
		key = s.keyer.ArtifactKey(hash, cache.ArtifactKeyOpts{Format: format})
	default:
		return "", false, fmt.Errorf("invalid format: %s (must be 'text', 'dot', or 'svg')", format)
	}

	// Transient backend failures (the Redis backend marks them retryable)
	// get a couple more attempts before the request falls through to a
	// fresh render.
	var data []byte
	var hit bool
	getErr := cache.RetryWithBackoff(ctx, func() error {
		var err error
		data, hit, err = s.cache.Get(ctx, key)
		return err
	})
	if getErr == nil && hit {
		return string(data), true, nil
	}

	var out string
	switch format {
	case "text":
		out, err = render.Render(g, opts)
	case "dot":
		out = dot.ToDOT(g, dot.Options{})
	case "svg":
		var svg []byte
		svg, err = dot.RenderSVG(dot.ToDOT(g, dot.Options{}))
		out = string(svg)
	}
	if err != nil {
		return "", false, err
	}

	_ = cache.RetryWithBackoff(ctx, func() error {
		return s.cache.Set(ctx, key, []byte(out), s.ttl)
	})
	return out, false, nil
}

// httpError writes a JSON error body with the given status.
func httpError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
