package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-mysb/bootloader"
	"github.com/moffa90/go-mysb/config"
	"github.com/moffa90/go-mysb/transport"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the firmware update bridge",
	Long: `Connect to the MQTT broker and answer MYSBootloader requests.

The configuration file is watched; on change the bridge reconnects with the
new settings and reloads firmware files. An invalid configuration is logged
and the running bridge is kept.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// bridge is one running dispatcher and its broker connection.
type bridge struct {
	client     *transport.Client
	dispatcher *bootloader.Dispatcher
}

func (b *bridge) stop() {
	b.client.Close()
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logrus.New()

	v, err := config.Open(cfgFile)
	if err != nil {
		return err
	}

	cfg, err := config.Decode(v)
	if err != nil {
		return err
	}

	reload := make(chan fsnotify.Event, 1)
	if file := v.ConfigFileUsed(); file != "" {
		v.OnConfigChange(func(e fsnotify.Event) {
			select {
			case reload <- e:
			default:
			}
		})
		v.WatchConfig()
		log.WithField("file", file).Info("loaded configuration")
	}

	b, err := startBridge(ctx, cfg, log)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			b.stop()
			return nil

		case e := <-reload:
			log.WithField("file", e.Name).Info("configuration changed")

			next, err := config.Decode(v)
			if err != nil {
				log.WithError(err).Error("ignoring invalid configuration")
				continue
			}

			b.stop()
			if b, err = startBridge(ctx, next, log); err != nil {
				return err
			}
		}
	}
}

// startBridge connects to the broker and starts a dispatcher for cfg.
func startBridge(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*bridge, error) {
	if err := configureLogger(log, cfg.Log, verbose); err != nil {
		return nil, err
	}

	opts := append(cfg.DispatcherOptions(),
		bootloader.WithLogger(NewLogger(log.WithField("component", "dispatcher"))),
	)
	d := bootloader.New(cfg.Catalog(), opts...)

	client := transport.New(cfg.TransportOptions(), log.WithField("component", "mqtt"))
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}

	if err := d.Start(client); err != nil {
		client.Close()
		return nil, fmt.Errorf("start dispatcher: %w", err)
	}

	return &bridge{client: client, dispatcher: d}, nil
}
