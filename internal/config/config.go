// Package config layers environment variables under the CLI's own flags
// via viper. Flags always win; RADIO_* environment variables fill in
// anything a flag left at its zero value.
package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the connection parameters shared by every transport-facing
// command.
type Config struct {
	Host      string
	Port      int
	ChunkSize int
	Baud      int
}

const (
	defaultPort      = 8002
	defaultChunkSize = 256
	defaultBaud      = 115200
)

// Load resolves a Config from flagSet, environment variables prefixed
// RADIO_, and built-in defaults, in that order of precedence.
func Load(flagSet *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RADIO")
	v.AutomaticEnv()

	v.SetDefault("host", "")
	v.SetDefault("port", defaultPort)
	v.SetDefault("chunk_size", defaultChunkSize)
	v.SetDefault("baud", defaultBaud)

	if flagSet != nil {
		if err := v.BindPFlag("host", flagSet.Lookup("host")); err != nil {
			return nil, fmt.Errorf("config: bind host flag: %w", err)
		}
		if err := v.BindPFlag("port", flagSet.Lookup("port")); err != nil {
			return nil, fmt.Errorf("config: bind port flag: %w", err)
		}
		if err := v.BindPFlag("chunk_size", flagSet.Lookup("chunk-size")); err != nil {
			return nil, fmt.Errorf("config: bind chunk-size flag: %w", err)
		}
		if err := v.BindPFlag("baud", flagSet.Lookup("baud")); err != nil {
			return nil, fmt.Errorf("config: bind baud flag: %w", err)
		}
	}

	return &Config{
		Host:      v.GetString("host"),
		Port:      v.GetInt("port"),
		ChunkSize: v.GetInt("chunk_size"),
		Baud:      v.GetInt("baud"),
	}, nil
}
