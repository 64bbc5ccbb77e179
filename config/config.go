package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Bootstrap struct {
		// Client is the database client binary resolved on PATH.
		Client string `toml:"client"`
		// Dir is the data directory created by the bootstrap.
		Dir string `toml:"dir"`
		// File is the database file name inside Dir.
		File string `toml:"file"`
	} `toml:"bootstrap"`
	Server struct {
		Addr       string `toml:"addr"`
		StatusAddr string `toml:"status_addr"`
		Height     int    `toml:"height"`
		Width      int    `toml:"width"`
		Database   string `toml:"database"`
		LogFile    string `toml:"log_file"`
	} `toml:"server"`
	Client struct {
		Addr string `toml:"addr"`
	} `toml:"client"`
}

var pathHierarchy = []string{
	"sidestacker.toml",
	"/etc/sidestacker.toml",
	"/usr/local/etc/sidestacker.toml",
	"/opt/local/etc/sidestacker.toml",
}

func Default() *Config {
	var conf Config
	conf.Bootstrap.Client = "sqlite3"
	conf.Bootstrap.Dir = "db"
	conf.Bootstrap.File = "games.db"
	conf.Server.Addr = "0.0.0.0:8080"
	conf.Server.StatusAddr = "127.0.0.1:8081"
	conf.Server.Height = 7
	conf.Server.Width = 7
	conf.Server.Database = "db/games.db"
	conf.Client.Addr = "127.0.0.1:8080"
	return &conf
}

// Load reads the first config file found in the path hierarchy,
// falling back to defaults when none exists. Environment variables
// override either.
func Load() (*Config, error) {
	conf := Default()

	for _, path := range pathHierarchy {
		f, err := os.Open(path)
		if err != nil && os.IsNotExist(err) {
			continue
		} else if err != nil {
			return nil, err
		}

		dec := toml.NewDecoder(f)
		_, err = dec.Decode(conf)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("decoding '%s': %w", path, err)
		}
		break
	}

	if err := conf.applyEnv(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (conf *Config) applyEnv() error {
	envString(&conf.Bootstrap.Client, "SIDESTACKER_CLIENT")
	envString(&conf.Bootstrap.Dir, "SIDESTACKER_DIR")
	envString(&conf.Bootstrap.File, "SIDESTACKER_FILE")
	envString(&conf.Server.Addr, "SIDESTACKER_ADDR")
	envString(&conf.Server.StatusAddr, "SIDESTACKER_STATUS_ADDR")
	envString(&conf.Server.Database, "SIDESTACKER_DATABASE")
	envString(&conf.Server.LogFile, "SIDESTACKER_LOG_FILE")
	envString(&conf.Client.Addr, "SIDESTACKER_SERVER_ADDR")
	if err := envInt(&conf.Server.Height, "SIDESTACKER_HEIGHT"); err != nil {
		return err
	}
	if err := envInt(&conf.Server.Width, "SIDESTACKER_WIDTH"); err != nil {
		return err
	}
	return nil
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parsing %s='%s': %w", key, v, err)
	}
	*dst = n
	return nil
}
