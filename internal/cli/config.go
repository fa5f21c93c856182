package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// Config is the optional config file. Values act as defaults for the
// matching flags; flags the user sets explicitly always win.
type Config struct {
	Order  string       `toml:"order"`
	Format string       `toml:"format"`
	Style  string       `toml:"style"`
	Source SourceConfig `toml:"source"`
	Cache  CacheConfig  `toml:"cache"`
}

// SourceConfig holds load defaults.
type SourceConfig struct {
	Collection string `toml:"collection"`
	MaxRecords int    `toml:"max_records"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend   string `toml:"backend"`   // file (default), redis, off
	RedisURL  string `toml:"redis_url"` // empty falls back to THREADLINE_REDIS_URL
	Namespace string `toml:"namespace"` // key prefix, for backends shared between users
}

// loadConfig reads the config file if present. A missing file is not an
// error and yields the zero config.
func loadConfig() (Config, error) {
	path, err := configPath()
	if err != nil {
		return Config{}, nil
	}
	return readConfig(path)
}

// readConfig parses the TOML config at path.
func readConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// configCommand creates the hidden config inspection command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "config",
		Short:  "Inspect the configuration",
		Hidden: true,
	}

	cmd.AddCommand(c.configPathCommand())

	return cmd
}

// configPathCommand creates the "config path" subcommand.
func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return fmt.Errorf("get config path: %w", err)
			}
			fmt.Println(path)
			return nil
		},
	}
}
