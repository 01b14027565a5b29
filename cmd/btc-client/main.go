package main

import (
	"flag"
	"net/netip"
	"os"

	"github.com/keato/btc-client/internal/config"
	"github.com/keato/btc-client/internal/logger"
	"github.com/keato/btc-client/internal/metrics"
	"github.com/keato/btc-client/internal/session"
	"github.com/keato/btc-client/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file (optional)")
	peerFlag := flag.String("peer", "", "peer address to connect to on startup, ip:port (optional)")
	jsonLogs := flag.Bool("json-logs", false, "emit logs as JSON instead of the console format")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.SetLevel(cfg.LogLevel)
	if *jsonLogs || cfg.LogJSON {
		logger.SetJSONOutput()
	}

	var peer netip.AddrPort
	var hasPeer bool
	if *peerFlag != "" {
		peer, err = netip.ParseAddrPort(*peerFlag)
		if err != nil {
			logger.Log.Fatal().Err(err).Str("peer", *peerFlag).Msg("invalid peer address")
		}
		hasPeer = true
	}

	metrics.StartMetricsServer(cfg.MetricsAddr)
	logger.Log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics server started")

	sess := session.New(cfg)

	stop := make(chan struct{})
	sessionDone := make(chan struct{})
	go func() {
		sess.Run(stop)
		close(sessionDone)
	}()

	if hasPeer {
		sess.Connect(peer)
	}

	front, err := ui.New(sess)
	if err != nil {
		close(stop)
		<-sessionDone
		logger.Log.Fatal().Err(err).Msg("failed to initialize terminal UI")
	}

	front.Run(stop)
	front.Close()

	close(stop)
	<-sessionDone
	os.Exit(0)
}
