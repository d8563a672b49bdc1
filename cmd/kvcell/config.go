package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// bindViper wires a command's flags into a viper instance with the standard
// config file search order and KVCELL_* env var prefix.
//
// Precedence (lowest → highest): defaults → config file → KVCELL_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("kvcell")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/kvcell/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(fmt.Sprintf("%s/.config/kvcell", home))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("KVCELL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	setupLogging(v)
	return nil
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "warn", "log level: debug|info|warn|error")
	cmd.Flags().String("log-backend", "slog", "logger behind cell diagnostics: slog|zap|logrus")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// addEnvelopeFlags adds the flags shared by every command that reads or
// writes envelopes.
func addEnvelopeFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "json", "envelope wire format: json|cbor|msgpack|proto (binary formats are base64 on the terminal)")
	cmd.Flags().Bool("strict", false, "reject unparsable date payloads instead of decoding the invalid date")
}

// addStoreFlags adds provider, bus and key layout flags.
func addStoreFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("provider", "sqlite", "storage provider: memory|sqlite|redis|bigcache|ristretto")
	f.String("sqlite-path", "kvcell.db", "sqlite database file")
	f.String("sqlite-table", "", "sqlite table name (default kvcell)")
	f.String("redis-addr", "localhost:6379", "redis address for the redis provider, bus and revision store")
	f.String("redis-password", "", "redis password")
	f.Int("redis-db", 0, "redis database number")
	f.String("redis-key-prefix", "", "extra namespace prepended to redis keys")
	f.String("bus", "none", "change notification bus: none|redis")
	f.String("channel", "", "bus channel (default \"default\")")
	f.String("prefix", "", "storage key prefix (default \"sky-hooks\")")
	f.Bool("no-prefix", false, "store under the bare key")
	f.Duration("ttl", 0, "entry expiry for writes; 0 keeps entries forever")
	f.Int64("max-cost", 64<<20, "ristretto capacity in bytes")
}

// setupLogging reads logging flags from viper and configures slog.
func setupLogging(v *viper.Viper) {
	resolveLogging(v.GetString("log-format"), v.GetString("log-level"))
}
