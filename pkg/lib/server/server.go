package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/operator-framework/boxopt/pkg/lib/profile"
)

const shutdownTimeout = 5 * time.Second

// Option applies a configuration option to the given config.
type Option func(s *serverConfig)

// GetListenAndServeFunc returns a function that serves /healthz, /metrics
// and, when profiling is enabled, the pprof handlers until its context is
// cancelled.
func GetListenAndServeFunc(options ...Option) (func(ctx context.Context) error, error) {
	sc := defaultServerConfig()
	sc.apply(options)

	return sc.getListenAndServeFunc()
}

func WithAddress(address string) Option {
	return func(sc *serverConfig) {
		sc.address = address
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(sc *serverConfig) {
		sc.logger = logger
	}
}

// WithProfiling registers the pprof index and CPU profile handlers.
func WithProfiling(profiling bool) Option {
	return func(sc *serverConfig) {
		sc.profiling = profiling
	}
}

// WithExecutionTrace additionally registers the execution trace handler.
// It has no effect unless profiling is enabled.
func WithExecutionTrace(trace bool) Option {
	return func(sc *serverConfig) {
		sc.trace = trace
	}
}

// WithGatherer serves metrics from g instead of the default registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(sc *serverConfig) {
		sc.gatherer = g
	}
}

type serverConfig struct {
	logger    logrus.FieldLogger
	address   string
	profiling bool
	trace     bool
	gatherer  prometheus.Gatherer
}

func (sc *serverConfig) apply(options []Option) {
	for _, o := range options {
		o(sc)
	}
}

func defaultServerConfig() serverConfig {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return serverConfig{
		logger:    logger,
		address:   ":8080",
		profiling: false,
		trace:     false,
		gatherer:  prometheus.DefaultGatherer,
	}
}

func (sc *serverConfig) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(sc.gatherer, promhttp.HandlerOpts{}))
	if sc.profiling {
		profile.RegisterHandlers(mux,
			profile.WithIndex(true),
			profile.WithProfile(true),
			profile.WithTrace(sc.trace),
		)
	}
	return mux
}

func (sc serverConfig) getListenAndServeFunc() (func(ctx context.Context) error, error) {
	if sc.address == "" {
		return nil, fmt.Errorf("a listen address is required")
	}

	s := &http.Server{
		Handler: sc.handler(),
		Addr:    sc.address,
	}

	return func(ctx context.Context) error {
		errs := make(chan error, 1)
		go func() {
			sc.logger.WithField("address", sc.address).Info("serving metrics")
			errs <- s.ListenAndServe()
		}()

		select {
		case err := <-errs:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}, nil
}
