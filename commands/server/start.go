package server

import (
	"flag"
	"fmt"
	"net/http"

	"github.com/iov-one/custody/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagBind    = "bind"
	flagDebug   = "debug"
	flagMetrics = "metrics"
)

// Options are the values an AppGenerator builds the application from.
type Options struct {
	Home   string
	Logger log.Logger
	Debug  bool
	// Registry collects the application metrics. It is always set, but it
	// is only exposed over http when a metrics address is given.
	Registry *prometheus.Registry
}

type startArgs struct {
	bind    string
	metrics string
	debug   bool
}

func parseFlags(args []string) (startArgs, error) {
	var res startArgs
	startFlags := flag.NewFlagSet("start", flag.ContinueOnError)
	startFlags.StringVar(&res.bind, flagBind, "tcp://localhost:26658", "address server listens on")
	startFlags.StringVar(&res.metrics, flagMetrics, "", "address to serve prometheus metrics on, disabled when empty")
	startFlags.BoolVar(&res.debug, flagDebug, false, "call stack returned on error")
	if err := startFlags.Parse(args); err != nil {
		return res, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return res, nil
}

// AppGenerator lets us lazily initialize app, using home dir
// and logger potentially initialized with other flags
type AppGenerator func(*Options) (abci.Application, error)

// StartCmd initializes the application, and runs the abci server until
// the process is interrupted.
func StartCmd(gen AppGenerator, logger log.Logger, home string, args []string) error {
	flags, err := parseFlags(args)
	if err != nil {
		return err
	}

	opts := &Options{
		Home:     home,
		Logger:   logger,
		Debug:    flags.debug,
		Registry: prometheus.NewRegistry(),
	}
	app, err := gen(opts)
	if err != nil {
		return err
	}

	var metrics *http.Server
	if flags.metrics != "" {
		metrics = serveMetrics(flags.metrics, opts.Registry, logger)
	}

	logger.Info("Starting ABCI app", "bind", flags.bind)
	svr, err := server.NewServer(flags.bind, "socket", app)
	if err != nil {
		return fmt.Errorf("Error creating listener: %v\n", err)
	}
	svr.SetLogger(logger.With("module", "abci-server"))
	if err := svr.Start(); err != nil {
		return errors.Wrap(errors.ErrInvalidState, err.Error())
	}

	// Wait forever
	cmn.TrapSignal(logger, func() {
		// Cleanup
		svr.Stop()
		if metrics != nil {
			metrics.Close()
		}
	})
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger log.Logger) *http.Server {
	srv := &http.Server{Addr: addr, Handler: metricsHandler(reg)}

	logger.Info("Serving metrics", "addr", addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Metrics server failed", "err", err)
		}
	}()
	return srv
}

func metricsHandler(reg prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return mux
}
