// Package inspector serves a Store over HTTP: its state as JSON, a route
// sending named actions, a websocket streaming every published state, and the
// Prometheus collectors.
package inspector

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/on-the-ground/composable_go/metrics"
	"github.com/on-the-ground/composable_go/store"
)

var ErrUnknownAction = errors.New("unknown action")

const maxActionBody = 64 << 10

// Decoder turns an action name and its JSON body into an action. It returns
// ErrUnknownAction for names it does not know.
type Decoder[A any] func(name string, body []byte) (A, error)

type options struct {
	logger  *zap.Logger
	metrics *metrics.Collectors
}

type Option func(*options)

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics mounts c on /metrics.
func WithMetrics(c *metrics.Collectors) Option {
	return func(o *options) { o.metrics = c }
}

type Server[S, A any] struct {
	store    *store.Store[S, A]
	decode   Decoder[A]
	logger   *zap.Logger
	metrics  *metrics.Collectors
	upgrader websocket.Upgrader
}

func New[S, A any](s *store.Store[S, A], decode Decoder[A], opts ...Option) *Server[S, A] {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server[S, A]{
		store:   s,
		decode:  decode,
		logger:  o.logger.With(zap.String("store", s.Name())),
		metrics: o.metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (srv *Server[S, A]) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/state", srv.handleState)
	r.Post("/actions/{name}", srv.handleAction)
	r.Get("/ws", srv.handleStream)
	if srv.metrics != nil {
		r.Handle("/metrics", srv.metrics.Handler())
	}
	return r
}

func (srv *Server[S, A]) writeState(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(srv.store.State()); err != nil {
		srv.logger.Warn("encode state", zap.Error(err))
	}
}

func (srv *Server[S, A]) handleState(w http.ResponseWriter, _ *http.Request) {
	srv.writeState(w, http.StatusOK)
}

// handleAction sends the named action. With ?wait=true it answers once every
// effect the action started has finished.
func (srv *Server[S, A]) handleAction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	body, err := io.ReadAll(io.LimitReader(r.Body, maxActionBody))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	action, err := srv.decode(name, body)
	switch {
	case errors.Is(err, ErrUnknownAction):
		http.Error(w, fmt.Sprintf("%s: %s", err, name), http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	task := srv.store.Send(action)
	if r.URL.Query().Get("wait") == "true" {
		if err := task.Wait(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusRequestTimeout)
			return
		}
		srv.writeState(w, http.StatusOK)
		return
	}
	srv.writeState(w, http.StatusAccepted)
}

// handleStream writes the current state and then every published state as a
// JSON text frame until the client goes away.
func (srv *Server[S, A]) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := srv.upgrader.Upgrade(w, r, nil)
	if err != nil {
		srv.logger.Debug("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	gone := make(chan struct{})
	unsubscribe := srv.store.Subscribe(func(state S) {
		if err := conn.WriteJSON(state); err != nil {
			srv.logger.Debug("websocket write", zap.Error(err))
		}
	})
	defer unsubscribe()

	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-gone:
	case <-srv.store.Done():
	case <-r.Context().Done():
	}
}
