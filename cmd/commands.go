package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vibe-coding/cliprelay/pkg/clip"
	"github.com/vibe-coding/cliprelay/pkg/config"
	"github.com/vibe-coding/cliprelay/pkg/hotkey"
	"github.com/vibe-coding/cliprelay/pkg/keys"
	"github.com/vibe-coding/cliprelay/pkg/monitor"
	"github.com/vibe-coding/cliprelay/pkg/state"
	"github.com/vibe-coding/cliprelay/pkg/storage"
)

// Version is overridden by main.
var Version = "dev"

var (
	configPath   string
	statePath    string
	triggerDelay time.Duration
)

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}
	return config.Load(path)
}

func resolveStatePath() (string, error) {
	if statePath != "" {
		return statePath, nil
	}
	return storage.GetDefaultPath()
}

func getManager() (*state.Manager, string, error) {
	path, err := resolveStatePath()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get state path: %w", err)
	}
	return state.NewManager(storage.NewJSONStorage(path)), path, nil
}

// setup loads config and state and installs the configured logger as the
// slog default.
func setup() (*config.Config, *state.Manager, string, *slog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, "", nil, err
	}
	logger := cfg.Log.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	mgr, path, err := getManager()
	if err != nil {
		return nil, nil, "", nil, err
	}
	return cfg, mgr, path, logger, nil
}

var StartCmd = &cobra.Command{
	Use:   "start",
	Short: "Listen for hotkeys and run the timer",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, mgr, path, logger, err := setup()
		if err != nil {
			return err
		}

		m, err := monitor.New(monitor.Options{
			Config:    cfg,
			Keyboard:  keys.NewSystemSimulator(cfg.KeyDelay()),
			Clipboard: &clip.SystemClipboard{},
			Hook:      hotkey.SystemHook{},
			State:     mgr,
			StatePath: path,
			Logger:    logger,
		})
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		logger.Info("cliprelay started", "version", Version)
		for _, hk := range cfg.Hotkeys {
			logger.Info("hotkey", "combo", hk.Combo, "event", hk.Event)
		}
		return m.Run(ctx)
	},
}

var TriggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Run the copy/delete/print chain once",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, mgr, _, logger, err := setup()
		if err != nil {
			return err
		}

		m, err := monitor.New(monitor.Options{
			Config:    cfg,
			Keyboard:  keys.NewSystemSimulator(cfg.KeyDelay()),
			Clipboard: &clip.SystemClipboard{},
			State:     mgr,
			Logger:    logger,
			OnCapture: func(text string) { fmt.Fprintln(cmd.OutOrStdout(), text) },
		})
		if err != nil {
			return err
		}

		if triggerDelay > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "Running in %s, focus the target window...\n", triggerDelay)
			select {
			case <-time.After(triggerDelay):
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			}
		}
		return m.Trigger(monitor.SourceManual)
	},
}

var PauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Stop the periodic timer from starting chains",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, err := getManager()
		if err != nil {
			return err
		}
		if err := mgr.SetActive(false); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Timer paused")
		return nil
	},
}

var ResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Let the periodic timer start chains again",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, err := getManager()
		if err != nil {
			return err
		}
		if err := mgr.SetActive(true); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Timer resumed")
		return nil
	},
}

var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show timer state and capture statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, err := getManager()
		if err != nil {
			return err
		}
		st, err := mgr.Status()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		mode := "active"
		if !st.Active {
			mode = "paused"
		}
		fmt.Fprintf(out, "Timer: %s\n", mode)
		fmt.Fprintf(out, "Captures: %d\n", st.Captures)
		if st.Captures > 0 {
			fmt.Fprintf(out, "Last capture: %s (%d bytes)\n", st.LastCaptureAt.Format(time.RFC3339), st.LastCaptureLen)
		}
		return nil
	},
}

var ResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear capture statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, err := getManager()
		if err != nil {
			return err
		}
		if err := mgr.Reset(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Statistics cleared")
		return nil
	},
}

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and exit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
	},
}

var RootCmd = &cobra.Command{
	Use:   "cliprelay",
	Short: "cliprelay copies the current selection on a hotkey and reads it back",
	Long: `A desktop helper that, on a global hotkey or a periodic timer, copies
the current selection, deletes it and reads the clipboard text.`,
	SilenceUsage: true,
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return RootCmd.ExecuteContext(ctx)
}

func init() {
	RootCmd.AddCommand(StartCmd)
	RootCmd.AddCommand(TriggerCmd)
	RootCmd.AddCommand(PauseCmd)
	RootCmd.AddCommand(ResumeCmd)
	RootCmd.AddCommand(StatusCmd)
	RootCmd.AddCommand(ResetCmd)
	RootCmd.AddCommand(VersionCmd)
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ~/.cliprelay/config.toml)")
	RootCmd.PersistentFlags().StringVar(&statePath, "state", "", "State file (default ~/.cliprelay/state.json)")
	TriggerCmd.Flags().DurationVarP(&triggerDelay, "delay", "d", 0, "Wait before sending keystrokes")
}
