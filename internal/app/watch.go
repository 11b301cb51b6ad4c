package app

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Ayt3ck/puppet-homebrew/internal/watcher"
)

var (
	watchDaemon      bool
	watchDaemonChild bool
	watchPIDFile     string
	watchLogFile     string
	watchStop        bool

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Keep the state cache in step with the Homebrew prefix",
		Long: `Watch the Homebrew Cellar and Caskroom for packages appearing or
disappearing outside the agent (a developer running brew by hand, another
tool) and refresh the observed-state cache when they do.

Watch modes:
  • Foreground (default): run in the current terminal, Ctrl+C to stop
  • Daemon: run as a background process
  • Stop: stop a running daemon`,
		Example: `  # Run in foreground
  brewpkg watch

  # Run as background daemon
  brewpkg watch --daemon

  # Stop running daemon
  brewpkg watch --stop`,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run as background daemon")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal flag for daemon child process")
	watchCmd.Flags().StringVar(&watchPIDFile, "pid-file", "", "PID file path (default: ~/.brewpkg/watch.pid)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "log file path (default: ~/.brewpkg/watch.log)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop running daemon")

	watchCmd.Flags().MarkHidden("daemon-child")

	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchPIDFile == "" {
		defaultPID, err := getDefaultPIDFile()
		if err != nil {
			return err
		}
		watchPIDFile = defaultPID
	}
	if watchLogFile == "" {
		defaultLog, err := getDefaultLogFile()
		if err != nil {
			return err
		}
		watchLogFile = defaultLog
	}

	if watchStop {
		if err := watcher.StopDaemon(watchPIDFile); err != nil {
			return err
		}
		fmt.Println("Stopped watch daemon")
		return nil
	}

	if watchDaemon {
		if err := watcher.StartDaemon(watchPIDFile, watchLogFile); err != nil {
			return err
		}
		fmt.Printf("Started watch daemon (PID file: %s)\n", watchPIDFile)
		return nil
	}

	w, err := buildWatcher()
	if err != nil {
		return err
	}

	if watchDaemonChild {
		return w.RunDaemon(watchPIDFile)
	}
	return runWatchForeground(w)
}

// buildWatcher wires the provider, store and prefix directories together.
func buildWatcher() (*watcher.Watcher, error) {
	p, err := newProvider()
	if err != nil {
		return nil, err
	}

	prefix, err := p.Prefix()
	if err != nil {
		return nil, err
	}
	roots := []string{
		filepath.Join(prefix, "Cellar"),
		filepath.Join(prefix, "Caskroom"),
	}

	st, err := openStore()
	if err != nil {
		return nil, err
	}

	return watcher.New(p, st, roots, log)
}

func runWatchForeground(w *watcher.Watcher) error {
	if err := w.Start(); err != nil {
		return err
	}
	fmt.Println("Watching Homebrew prefix (Ctrl+C to stop)")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh

	return w.Stop()
}
