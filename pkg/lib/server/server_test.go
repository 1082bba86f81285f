package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerRoutes(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_metric_total",
		Help: "Test metric",
	})
	registry.MustRegister(counter)
	counter.Inc()

	tests := []struct {
		name       string
		profiling  bool
		trace      bool
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "healthz",
			path:       "/healthz",
			wantStatus: http.StatusOK,
		},
		{
			name:       "metrics served from the configured gatherer",
			path:       "/metrics",
			wantStatus: http.StatusOK,
			wantBody:   "test_metric_total 1",
		},
		{
			name:       "pprof disabled by default",
			path:       "/debug/pprof/cmdline",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "pprof enabled",
			profiling:  true,
			path:       "/debug/pprof/cmdline",
			wantStatus: http.StatusOK,
		},
		{
			name:       "pprof index enabled",
			profiling:  true,
			path:       "/debug/pprof/",
			wantStatus: http.StatusOK,
		},
		{
			name:       "execution trace off by default",
			profiling:  true,
			path:       "/debug/pprof/trace?seconds=0",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "execution trace enabled",
			profiling:  true,
			trace:      true,
			path:       "/debug/pprof/trace?seconds=0",
			wantStatus: http.StatusOK,
		},
		{
			name:       "execution trace needs profiling",
			trace:      true,
			path:       "/debug/pprof/trace?seconds=0",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := defaultServerConfig()
			sc.apply([]Option{WithGatherer(registry), WithProfiling(tt.profiling), WithExecutionTrace(tt.trace)})

			server := httptest.NewServer(sc.handler())
			defer server.Close()

			resp, err := http.Get(server.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != "" {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Contains(t, string(body), tt.wantBody)
			}
		})
	}
}

func TestWithOptions(t *testing.T) {
	logger := logrus.New()
	registry := prometheus.NewRegistry()

	sc := defaultServerConfig()
	sc.apply([]Option{
		WithLogger(logger),
		WithAddress("127.0.0.1:9090"),
		WithProfiling(true),
		WithExecutionTrace(true),
		WithGatherer(registry),
	})

	assert.Equal(t, logger, sc.logger, "Logger should be set")
	assert.Equal(t, "127.0.0.1:9090", sc.address, "Address should be set")
	assert.True(t, sc.profiling, "Profiling should be enabled")
	assert.True(t, sc.trace, "Execution trace should be enabled")
	assert.Equal(t, registry, sc.gatherer, "Gatherer should be set")
}

func TestGetListenAndServeFuncRequiresAddress(t *testing.T) {
	_, err := GetListenAndServeFunc(WithAddress(""))
	require.Error(t, err)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	address := l.Addr().String()
	require.NoError(t, l.Close())

	serve, err := GetListenAndServeFunc(WithAddress(address))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		errs <- serve(ctx)
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + address + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errs:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop after cancellation")
	}
}
