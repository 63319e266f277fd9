package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/urfave/cli/v2"

	"testsuite/internal/domain/suite"
	"testsuite/internal/infra/docker"
	"testsuite/internal/infra/host"
)

const (
	runtimeHost   = "host"
	runtimeDocker = "docker"

	defaultDockerImage = "debian:bookworm-slim"
)

type appConfig struct {
	Runtime   string       `toml:"runtime"`
	Shell     string       `toml:"shell"`
	Cleanup   bool         `toml:"cleanup"`
	Verbosity string       `toml:"verbosity"`
	Docker    dockerConfig `toml:"docker"`
}

type dockerConfig struct {
	Image   string `toml:"image"`
	Workdir string `toml:"workdir"`
	Pull    bool   `toml:"pull"`
	// Memory is a byte count; CPUs may be fractional.
	Memory int64   `toml:"memory"`
	CPUs   float64 `toml:"cpus"`
}

func defaultConfig() appConfig {
	return appConfig{
		Runtime:   runtimeHost,
		Shell:     host.DefaultShell,
		Cleanup:   true,
		Verbosity: "warn",
		Docker: dockerConfig{
			Image:   defaultDockerImage,
			Workdir: docker.DefaultWorkdir,
			Pull:    true,
		},
	}
}

// loadAppConfig layers the suite's config file, then environment variables
// and flags, over the defaults. It also returns the config file keys that
// were not recognized.
func loadAppConfig(c *cli.Context, root string) (appConfig, []string, error) {
	cfg := defaultConfig()

	path := c.String(configFlag)
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	undecoded, err := loadConfigFile(path, &cfg)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) || c.IsSet(configFlag) {
			return appConfig{}, nil, err
		}
	}

	// IsSet covers both the flag and its environment variable.
	if c.IsSet(runtimeFlag) {
		cfg.Runtime = c.String(runtimeFlag)
	}
	if c.IsSet(shellFlag) {
		cfg.Shell = c.String(shellFlag)
	}
	if c.IsSet(verbosityFlag) {
		cfg.Verbosity = c.String(verbosityFlag)
	}
	if c.IsSet(dockerImageFlag) {
		cfg.Docker.Image = c.String(dockerImageFlag)
	}
	if c.IsSet(dockerWorkdirFlag) {
		cfg.Docker.Workdir = c.String(dockerWorkdirFlag)
	}

	if err := cfg.validate(); err != nil {
		return appConfig{}, nil, err
	}
	return cfg, undecoded, nil
}

func loadConfigFile(path string, cfg *appConfig) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var undecoded []string
	for _, key := range md.Undecoded() {
		undecoded = append(undecoded, key.String())
	}
	return undecoded, nil
}

func (cfg appConfig) validate() error {
	switch cfg.Runtime {
	case runtimeHost:
	case runtimeDocker:
		if cfg.Docker.Image == "" {
			return errors.New("docker runtime requires an image")
		}
		if cfg.Docker.Memory < 0 || cfg.Docker.CPUs < 0 {
			return errors.New("docker limits must not be negative")
		}
	default:
		return fmt.Errorf("unknown runtime %q (want %s or %s)", cfg.Runtime, runtimeHost, runtimeDocker)
	}
	return nil
}

func (cfg appConfig) options() suite.Options {
	opts := suite.DefaultOptions()
	opts.Cleanup = cfg.Cleanup
	return opts
}
