package inspector_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/on-the-ground/composable_go/casestudies/counter"
	"github.com/on-the-ground/composable_go/effects/log"
	"github.com/on-the-ground/composable_go/internal/inspector"
	"github.com/on-the-ground/composable_go/metrics"
	"github.com/on-the-ground/composable_go/store"
)

func decode(name string, _ []byte) (counter.Action, error) {
	switch name {
	case "increment":
		return counter.IncrementTapped{}, nil
	case "decrement":
		return counter.DecrementTapped{}, nil
	default:
		return nil, inspector.ErrUnknownAction
	}
}

func newServer(t *testing.T, opts ...inspector.Option) *httptest.Server {
	t.Helper()
	s := store.New(counter.State{}, counter.Reducer(),
		store.WithName("counter"),
		store.WithLogger(log.NewTest()),
	)
	t.Cleanup(func() { _ = s.Close() })

	srv := httptest.NewServer(inspector.New(s, decode, opts...).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func readState(t *testing.T, resp *http.Response) counter.State {
	t.Helper()
	defer resp.Body.Close()
	var state counter.State
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	return state
}

func TestServer_StateAndActions(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/state")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, readState(t, resp).Count)

	resp, err = http.Post(srv.URL+"/actions/increment?wait=true", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, readState(t, resp).Count)

	resp, err = http.Post(srv.URL+"/actions/decrement", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, 0, readState(t, resp).Count)

	resp, err = http.Post(srv.URL+"/actions/launch", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_StreamsStates(t *testing.T) {
	srv := newServer(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))

	var state counter.State
	require.NoError(t, conn.ReadJSON(&state))
	assert.Equal(t, 0, state.Count)

	for i := 1; i <= 3; i++ {
		resp, err := http.Post(fmt.Sprintf("%s/actions/increment?wait=true", srv.URL), "application/json", nil)
		require.NoError(t, err)
		resp.Body.Close()
	}

	for state.Count < 3 {
		require.NoError(t, conn.ReadJSON(&state))
	}
	assert.Equal(t, 3, state.Count)
}

func TestServer_Metrics(t *testing.T) {
	c := metrics.New(metrics.WithRegistry(prometheus.NewRegistry()))
	c.SharedWrite("stats")
	srv := newServer(t, inspector.WithMetrics(c))

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(newServer(t).URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
