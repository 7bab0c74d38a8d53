package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"worktrack/internal/bootstrap"
	"worktrack/internal/ctl"
	trackingdto "worktrack/internal/modules/tracking/dto"
	"worktrack/internal/platform/config"
	"worktrack/internal/platform/logging"
)

type globalFlags struct {
	configPath string
	host       string
	json       bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "worktrack",
		Short:         "Automatic work session tracking",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", defaultConfigPath(), "daemon config file (TOML)")
	root.PersistentFlags().StringVar(&flags.host, "host", "", "daemon base URL (default: derived from server.bind)")
	root.PersistentFlags().BoolVar(&flags.json, "json", false, "print raw JSON")

	root.AddCommand(newDaemonCmd(flags))
	root.AddCommand(newConfigCmd(flags))
	root.AddCommand(newStatusCmd(flags))
	root.AddCommand(newStartCmd(flags))
	root.AddCommand(newSimpleEventCmd(flags, "stop", "Stop the running session", "manual_stop"))
	root.AddCommand(newSimpleEventCmd(flags, "pause", "Pause the running session", "pause_start"))
	root.AddCommand(newSimpleEventCmd(flags, "resume", "Resume a paused session", "pause_end"))
	root.AddCommand(newGeofenceCmd(flags))
	root.AddCommand(newBeaconCmd(flags))
	root.AddCommand(newSessionsCmd(flags))
	root.AddCommand(newNotesCmd(flags))
	root.AddCommand(newSignalsCmd(flags))
	root.AddCommand(newWatchCmd(flags))
	return root
}

func defaultConfigPath() string {
	return filepath.Join(config.Default().Data.Dir, "config.toml")
}

func loadConfig(flags *globalFlags) (config.Config, error) {
	return config.Load(flags.configPath)
}

func newClient(flags *globalFlags) (*ctl.Client, config.Config, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, cfg, err
	}
	host := flags.host
	if host == "" {
		host = "http://" + cfg.Server.Bind
	}
	return ctl.NewClient(host), cfg, nil
}

func newDaemonCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the tracking daemon in the foreground",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Dev)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			daemon, err := bootstrap.NewDaemon(ctx, cfg, logger)
			if err != nil {
				logger.Error("startup failed", zap.Error(err))
				return err
			}
			defer func() {
				if err := daemon.Close(); err != nil {
					logger.Warn("close database", zap.Error(err))
				}
			}()
			return daemon.App.Run(ctx)
		},
	}
}

func newConfigCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective daemon configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if flags.json {
				return ctl.PrintJSON(cmd.OutOrStdout(), cfg)
			}
			b, err := toml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}

func newStatusCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show tracking state and daemon status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := newClient(flags)
			if err != nil {
				return err
			}
			status, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}
			if flags.json {
				return ctl.PrintJSON(cmd.OutOrStdout(), status)
			}
			ctl.RenderStatus(cmd.OutOrStdout(), status, time.Now())
			return nil
		},
	}
}

func newStartCmd(flags *globalFlags) *cobra.Command {
	var sessionType, at string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a session manually",
		RunE: func(cmd *cobra.Command, _ []string) error {
			when, err := parseAt(at)
			if err != nil {
				return err
			}
			return sendEvent(cmd, flags, trackingdto.EventInput{
				Type:        "manual_start",
				SessionType: strings.ToUpper(sessionType),
				Time:        when,
			})
		},
	}
	cmd.Flags().StringVar(&sessionType, "type", "MANUAL", "session type: MANUAL|HOME_OFFICE|COMMUTE")
	cmd.Flags().StringVar(&at, "at", "", "start time (RFC 3339, default now)")
	return cmd
}

func newSimpleEventCmd(flags *globalFlags, use, short, eventType string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sendEvent(cmd, flags, trackingdto.EventInput{Type: eventType})
		},
	}
}

func newGeofenceCmd(flags *globalFlags) *cobra.Command {
	geofence := &cobra.Command{Use: "geofence", Short: "Report geofence transitions"}
	var at string
	for _, dir := range []struct{ use, eventType string }{
		{"enter", "geofence_entered"},
		{"exit", "geofence_exited"},
	} {
		eventType := dir.eventType
		sub := &cobra.Command{
			Use:   dir.use + " <HOME_STATION|OFFICE_STATION|OFFICE>",
			Short: "Report a geofence " + dir.use,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				when, err := parseAt(at)
				if err != nil {
					return err
				}
				if when.IsZero() {
					when = time.Now()
				}
				return sendEvent(cmd, flags, trackingdto.EventInput{
					Type: eventType,
					Zone: strings.ToUpper(args[0]),
					Time: when,
				})
			},
		}
		sub.Flags().StringVar(&at, "at", "", "event time (RFC 3339, default now)")
		geofence.AddCommand(sub)
	}
	return geofence
}

func newBeaconCmd(flags *globalFlags) *cobra.Command {
	beacon := &cobra.Command{Use: "beacon", Short: "Report raw beacon radio callbacks"}
	beacon.AddCommand(&cobra.Command{
		Use:   "seen <beacon-id>",
		Short: "Report a beacon sighting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(flags)
			if err != nil {
				return err
			}
			return client.BeaconSeen(cmd.Context(), args[0])
		},
	})
	beacon.AddCommand(&cobra.Command{
		Use:   "exited",
		Short: "Report leaving the beacon region",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := newClient(flags)
			if err != nil {
				return err
			}
			return client.BeaconExited(cmd.Context())
		},
	})
	return beacon
}

func newSessionsCmd(flags *globalFlags) *cobra.Command {
	var from, to string
	var limit int
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, cfg, err := newClient(flags)
			if err != nil {
				return err
			}
			sessions, err := client.Sessions(cmd.Context(), from, to, limit)
			if err != nil {
				return err
			}
			if flags.json {
				return ctl.PrintJSON(cmd.OutOrStdout(), sessions)
			}
			ctl.RenderSessions(cmd.OutOrStdout(), sessions, cfg.Location())
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day, inclusive (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum sessions")
	return cmd
}

func newNotesCmd(flags *globalFlags) *cobra.Command {
	notes := &cobra.Command{Use: "notes", Short: "Daily markdown notes"}
	var from, to string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write daily notes for the given days",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := newClient(flags)
			if err != nil {
				return err
			}
			out, err := client.ExportNotes(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			if flags.json {
				return ctl.PrintJSON(cmd.OutOrStdout(), out)
			}
			for _, p := range out.Paths {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	export.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD, default today)")
	export.Flags().StringVar(&to, "to", "", "last day, inclusive (YYYY-MM-DD, default today)")
	notes.AddCommand(export)
	return notes
}

func newSignalsCmd(flags *globalFlags) *cobra.Command {
	signals := &cobra.Command{Use: "signals", Short: "Signal source plugins"}
	signals.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered signal sources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := newClient(flags)
			if err != nil {
				return err
			}
			sources, err := client.Signals(cmd.Context())
			if err != nil {
				return err
			}
			if flags.json {
				return ctl.PrintJSON(cmd.OutOrStdout(), sources)
			}
			ctl.RenderSignals(cmd.OutOrStdout(), sources)
			return nil
		},
	})
	signals.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Check signal source binaries, checksums and lifecycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := newClient(flags)
			if err != nil {
				return err
			}
			results, err := client.SignalDoctor(cmd.Context())
			if err != nil {
				return err
			}
			if flags.json {
				return ctl.PrintJSON(cmd.OutOrStdout(), results)
			}
			ctl.RenderDoctor(cmd.OutOrStdout(), results)
			return nil
		},
	})
	return signals
}

func newWatchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow tracking state live",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := newClient(flags)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if flags.json {
				return ctl.Stream(ctx, client, cmd.OutOrStdout())
			}
			return ctl.Watch(ctx, client)
		},
	}
}

func sendEvent(cmd *cobra.Command, flags *globalFlags, input trackingdto.EventInput) error {
	client, _, err := newClient(flags)
	if err != nil {
		return err
	}
	state, err := client.SendEvent(cmd.Context(), input)
	if err != nil {
		return err
	}
	if flags.json {
		return ctl.PrintJSON(cmd.OutOrStdout(), state)
	}
	ctl.RenderState(cmd.OutOrStdout(), state)
	return nil
}

func parseAt(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("--at: %w", err)
	}
	return t, nil
}
