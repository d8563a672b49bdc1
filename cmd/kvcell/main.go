// kvcell: inspect and edit persisted key/value cells from the shell.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/kvcell/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kvcell",
		Short: "Persisted key/value cells with change notification",
		Long: `kvcell reads and writes the kind-tagged envelopes that kvcell cells store,
against any of the supported providers (memory, sqlite, redis, bigcache,
ristretto), and can follow a key's changes over a Redis notification bus.

"kvcell encode/decode/classify" work on envelopes without touching a store.
"kvcell get/set/rm/watch" operate on one key of the configured provider.

Config file search order (first found wins):
  /etc/kvcell/kvcell.toml
  $HOME/.config/kvcell/kvcell.toml
  path supplied via --config

All flags can be set via KVCELL_<FLAG> env vars (dashes become
underscores) or config-file keys.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newEncodeCmd(),
		newDecodeCmd(),
		newClassifyCmd(),
		newGetCmd(),
		newSetCmd(),
		newRmCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kvcell %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
// One-shot commands log at warn unless asked otherwise.
func resolveLogging(formatStr, levelStr string) {
	format := logging.ParseFormat(formatStr)
	level := logging.ParseLevel(levelStr)
	logging.Setup(format, level)
}
