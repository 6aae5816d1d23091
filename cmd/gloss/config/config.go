// Package configcmder provides the config command for managing persistent
// gloss configuration stored in the .gloss/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent gloss configuration.

Configuration is stored as config.toml in the .gloss/ directory and provides
default values for command flags. CLI flags and GLOSS_* environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  backend.url, backend.chat_path, backend.stream_path,
  backend.deeper_path, backend.feedback_path, backend.timeout_seconds,
  request.top_k, request.threshold, request.temperature, request.max_tokens,
  history.driver, history.sqlite_path, history.postgres_url,
  events.enabled, events.brokers, events.topic,
  serve.listen, serve.mcp_listen,
  log.debug, log.json

Use subcommands to initialize, get, set, or list configuration values:
  gloss config init                 Create a local .gloss/ directory
  gloss config set <key> <value>    Set a configuration value
  gloss config get <key>            Get a configuration value
  gloss config list                 List all configuration values

Examples:
  gloss config init --preset staging
  gloss config set backend.url http://localhost:8787
  gloss config set history.driver sqlite
  gloss config get backend.url
  gloss config list`

const configShortDesc string = "Manage persistent gloss configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
