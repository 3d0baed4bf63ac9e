// Command roon-mpris bridges Roon zones onto the desktop: every zone
// the core reports becomes its own MPRIS player on the D-Bus session
// bus, and desktop media controls are routed back to the zone.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nsyntych/roon-mpris/internal/bridge"
	"github.com/nsyntych/roon-mpris/internal/config"
	"github.com/nsyntych/roon-mpris/internal/logging"
	"github.com/nsyntych/roon-mpris/internal/mpris"
	"github.com/nsyntych/roon-mpris/internal/roon"
)

const (
	version     = "0.1.0"
	extensionID = "org.nsyntych.roon-mpris"
	defaultPort = 9100

	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

var (
	flagConfig   string
	flagDebug    bool
	flagPauseAll bool
)

var rootCmd = &cobra.Command{
	Use:          "roon-mpris",
	Short:        "Expose Roon zones as MPRIS players",
	Long:         "roon-mpris connects to a Roon core and presents every zone as its own MPRIS media player on the D-Bus session bus.",
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to config file")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&flagPauseAll, "pause-all", false, "pause every zone that can pause, then exit")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	logger := logging.Setup(flagDebug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flagPauseAll {
		return pauseAll(ctx, cfg, logger)
	}
	return serve(ctx, cfg, logger)
}

// pauseAll is the one-shot control surface: connect, pause every zone
// that can pause, exit.
func pauseAll(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	client, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.PauseAll(ctx); err != nil {
		return fmt.Errorf("pause all zones: %w", err)
	}
	logger.Info().Msg("all zones paused")
	return nil
}

// serve runs the bridge until the process is signalled, reconnecting
// with backoff whenever the core goes away.
func serve(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	host := mpris.NewHost(logger)
	backoff := initialBackoff

	for {
		client, err := connect(ctx, cfg, logger)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Warn().Err(err).Dur("retry_in", backoff).Msg("cannot reach core")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = initialBackoff

		err = runBridge(ctx, cfg, logger, host, client)
		client.Close()
		if err != nil || ctx.Err() != nil {
			return err
		}
		logger.Warn().Msg("connection to core lost, reconnecting")
	}
}

// runBridge wires one connected client to the engine and blocks until
// the connection dies or the process is signalled.
func runBridge(ctx context.Context, cfg *config.Config, logger zerolog.Logger,
	host *mpris.Host, client *roon.Client,
) error {
	b := bridge.New(host, client, bridge.Options{
		ExpectedAdvance: int64(cfg.Seek.ExpectedAdvanceMs) * 1000,
		MaxDeviation:    int64(cfg.Seek.MaxDeviationMs) * 1000,
		Log:             logger,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	loopDone := make(chan error, 1)
	go func() { loopDone <- b.Run(runCtx) }()

	if err := client.SubscribeZones(b); err != nil {
		cancel()
		<-loopDone
		return fmt.Errorf("subscribe to zones: %w", err)
	}
	logger.Info().Msg("bridging zones")

	select {
	case <-ctx.Done():
	case <-client.Done():
	}
	cancel()
	if err := <-loopDone; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// connect resolves the core endpoint, dials it and completes the
// registration handshake, replaying the stored pairing token.
func connect(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*roon.Client, error) {
	addr, coreID := "", ""
	if cfg.Core.Host != "" {
		port := cfg.Core.Port
		if port == 0 {
			port = defaultPort
		}
		addr = net.JoinHostPort(cfg.Core.Host, strconv.Itoa(port))
	} else {
		timeout := time.Duration(cfg.Core.DiscoveryTimeoutSec) * time.Second
		endpoint, err := roon.Discover(ctx, timeout)
		if err != nil {
			return nil, fmt.Errorf("discover core: %w", err)
		}
		addr = endpoint.Address()
		coreID = endpoint.CoreID
		logger.Info().Str("core", endpoint.DisplayName).Str("addr", addr).Msg("core discovered")
	}

	client, err := roon.Dial(ctx, addr, logger)
	if err != nil {
		return nil, err
	}

	token, err := config.LoadToken(coreID)
	if err != nil {
		logger.Warn().Err(err).Msg("cannot read stored pairing token")
	}

	newToken, err := client.Register(ctx, roon.ExtensionInfo{
		ExtensionID:    extensionID,
		DisplayName:    cfg.Extension.DisplayName,
		DisplayVersion: version,
		Publisher:      cfg.Extension.Publisher,
		Email:          cfg.Extension.Email,
		Website:        cfg.Extension.Website,
	}, token)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("register with core: %w", err)
	}
	if newToken != "" && newToken != token {
		if err := config.SaveToken(coreID, newToken); err != nil {
			logger.Warn().Err(err).Msg("cannot persist pairing token")
		}
	}
	logger.Info().Str("addr", addr).Msg("registered with core")
	return client, nil
}
