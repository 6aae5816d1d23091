package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --backend
// on both "gloss ask" and "gloss research" and "gloss chat").
type Flag struct {
	// Name is the long flag name (e.g. "backend").
	Name string

	// Shorthand is the one-letter short flag (e.g. "b"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "backend.url").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagBackend       = "backend"
	FlagTopK          = "top-k"
	FlagMaxTokens     = "max-tokens"
	FlagHistoryDriver = "history-driver"
	FlagSQLite        = "sqlite"
	FlagPostgres      = "postgres"
	FlagEventsTopic   = "events-topic"
	FlagServeListen   = "serve-listen"
	FlagMCPListen     = "mcp-listen"
)

// DefaultFlags is the shared flag registry for gloss commands. Defaults come
// from NewDefaultConfig() via the viper keys.
var DefaultFlags = FlagSet{
	FlagBackend: {
		Name:        "backend",
		Shorthand:   "b",
		ViperKey:    "backend.url",
		Description: "Backend base URL",
	},
	FlagTopK: {
		Name:        "top-k",
		ViperKey:    "request.top_k",
		Description: "Number of passages to retrieve",
	},
	FlagMaxTokens: {
		Name:        "max-tokens",
		ViperKey:    "request.max_tokens",
		Description: "Maximum tokens in the answer",
	},
	FlagHistoryDriver: {
		Name:        "history-driver",
		ViperKey:    "history.driver",
		Description: "History driver (file, sqlite, postgres, none)",
	},
	FlagSQLite: {
		Name:        "sqlite",
		ViperKey:    "history.sqlite_path",
		Description: "Path to the SQLite history database",
	},
	FlagPostgres: {
		Name:        "postgres",
		ViperKey:    "history.postgres_url",
		Description: "Postgres history connection URL",
	},
	FlagEventsTopic: {
		Name:        "events-topic",
		ViperKey:    "events.topic",
		Description: "Kafka topic for turn-completed events",
	},
	FlagServeListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "serve.listen",
		Description: "Address for the development backend to listen on",
	},
	FlagMCPListen: {
		Name:        "mcp-listen",
		ViperKey:    "serve.mcp_listen",
		Description: "Address for the MCP server to listen on",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
