// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command econet-monitor connects to a Plum ecoMAX controller over a
// serial line or a TCP bridge to one, and logs sensor readings as they
// arrive.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/plumio/econet/config"
	"github.com/plumio/econet/protocol"
	"github.com/plumio/econet/structures"
	"github.com/plumio/econet/transport"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		tcpAddr    string
		serialDev  string
		configPath string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "econet-monitor",
		Short: "Connect to a Plum ecoMAX controller and stream sensor data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tcpAddr == "" && serialDev == "" {
				return fmt.Errorf("one of --tcp or --serial is required")
			}

			log, err := newLogger(verbose)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			cfg := config.DefaultDispatcher
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cfg = loaded.Dispatcher
			}

			dial := dialerFor(tcpAddr, serialDev)
			dispatcher := protocol.NewDispatcher(dial,
				protocol.WithLogger(log),
				protocol.WithReconnectDelay(time.Duration(cfg.ReconnectDelayS)*time.Second),
			)

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			runDone := make(chan error, 1)
			go func() { runDone <- dispatcher.Run(ctx) }()

			go watchEcomax(ctx, dispatcher, log)

			err = <-runDone
			dispatcher.Shutdown()
			if err != nil && err != context.Canceled {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tcpAddr, "tcp", "", "dial an ecoNET TCP bridge, e.g. 192.168.1.50:8899")
	cmd.Flags().StringVar(&serialDev, "serial", "", "open a local RS-485 serial device, e.g. /dev/ttyUSB0")
	cmd.Flags().StringVar(&configPath, "config", "", "path to a dispatcher/product-overrides YAML file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")
	return cmd
}

func dialerFor(tcpAddr, serialDev string) protocol.Dial {
	if tcpAddr != "" {
		return func(ctx context.Context) (transport.Transport, error) {
			return transport.DialTCP(ctx, tcpAddr)
		}
	}
	return func(ctx context.Context) (transport.Transport, error) {
		return transport.DialSerial(serialDev, transport.DefaultSerialConfig)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// watchEcomax waits for the ecomax device to appear on the bus, then logs
// every sensor-data update it publishes.
func watchEcomax(ctx context.Context, dispatcher *protocol.Dispatcher, log *zap.Logger) {
	ecomax, err := dispatcher.GetDevice(ctx, "ecomax")
	if err != nil {
		return
	}
	ecomax.Subscribe("sensors", func(ctx context.Context, value any) (any, error) {
		sd, ok := value.(*structures.SensorData)
		if !ok {
			return value, nil
		}
		log.Info("sensor update",
			zap.String("state", sd.State.String()),
			zap.Int("temperature_count", len(sd.Temperatures)),
			zap.Int("mixers_connected", sd.MixersConnected),
			zap.Int("thermostats_connected", sd.ThermostatsConnected),
		)
		return value, nil
	})
	<-ctx.Done()
}
