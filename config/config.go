// Package config holds the configuration of the `nbsvg` command: a YAML file,
// optionally pointed to by the NBSVG_CONFIG environment variable, whose values can
// be overridden by command-line flags.
//
// Example:
//
//	serve: "localhost:8080"
//	subscribe: "tcp://127.0.0.1:5555"
//	models: [ "5f3a9c1e" ]
//	snapshot: "${HOME}/.cache/nbsvg"
package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rmorshead/nbsvg/common"
	"github.com/rmorshead/nbsvg/protocol"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// Config of the `nbsvg` command.
type Config struct {
	// Serve is the address of the live-view server. Empty disables it.
	Serve string `yaml:"serve"`

	// File is an SVG file loaded into the model, and reloaded when changed.
	File string `yaml:"file"`

	// Subscribe is a ZeroMQ endpoint from where model updates are received.
	Subscribe string `yaml:"subscribe"`

	// Models restricts the updates received from Subscribe to those published by these
	// model ids. Empty accepts every model.
	Models []string `yaml:"models"`

	// Publish is a ZeroMQ endpoint where changes of the model are published.
	Publish string `yaml:"publish"`

	// Attribute is the model attribute holding the markup. Defaults to "svg".
	Attribute string `yaml:"attribute"`

	// Render is a file where a static HTML rendering of the view is written. Empty disables it.
	Render string `yaml:"render"`

	// Demo draws an animated demo drawing into the model.
	Demo bool `yaml:"demo"`

	// Snapshot is a directory where the last drawing is kept, and restored from at start.
	Snapshot string `yaml:"snapshot"`
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	return &Config{Attribute: "svg"}
}

// Load reads the YAML configuration in path, on top of the defaults.
// Environment variables in paths and endpoints (`$VAR` or `${VAR}`) are expanded.
// If path is empty, the NBSVG_CONFIG environment variable is used, and if it is
// also empty, the defaults are returned.
//
// The result is not validated, since flags may still complete it: call Validate after Override.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(protocol.NBSVG_CONFIG_ENV)
	}
	if path == "" {
		return cfg, nil
	}
	path = common.ReplaceEnvVars(path)
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read configuration from %q", path)
	}
	if err = yaml.Unmarshal(contents, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse configuration in %q", path)
	}
	cfg.expand()
	return cfg, nil
}

func (c *Config) expand() {
	for _, field := range []*string{&c.Serve, &c.File, &c.Subscribe, &c.Publish, &c.Render, &c.Snapshot} {
		*field = common.ReplaceEnvVars(*field)
	}
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.Attribute == "" {
		return errors.New("attribute cannot be empty")
	}
	if c.Serve == "" && c.Render == "" && c.Publish == "" {
		return errors.New("nothing to do: at least one of serve, render or publish must be set")
	}
	sources := 0
	for _, enabled := range []bool{c.File != "", c.Subscribe != "", c.Demo} {
		if enabled {
			sources++
		}
	}
	if sources > 1 {
		return errors.New("only one source for the drawing can be used: file, subscribe or demo")
	}
	return nil
}

// Names of the command-line flags that override configuration fields.
const (
	FlagServe     = "serve"
	FlagFile      = "file"
	FlagSubscribe = "bus"
	FlagPublish   = "publish"
	FlagAttribute = "attr"
	FlagRender    = "render"
	FlagDemo      = "demo"
	FlagSnapshot  = "snapshot"
	FlagModel     = "model"
)

// Override sets the fields of c for the flags of fs that were explicitly set.
// Flags not set keep the configured values. Unknown flags are ignored.
//
// A source of the drawing given by flag (file, bus or demo) replaces the configured source.
func (c *Config) Override(fs *flag.FlagSet) error {
	sourceFlags := common.SetWith(FlagFile, FlagSubscribe, FlagDemo)
	fs.Visit(func(f *flag.Flag) {
		if sourceFlags.Has(f.Name) {
			c.File, c.Subscribe, c.Demo = "", "", false
		}
	})

	var err error
	fs.Visit(func(f *flag.Flag) {
		value := f.Value.String()
		switch f.Name {
		case FlagServe:
			c.Serve = value
		case FlagFile:
			c.File = value
		case FlagSubscribe:
			c.Subscribe = value
		case FlagPublish:
			c.Publish = value
		case FlagAttribute:
			c.Attribute = value
		case FlagRender:
			c.Render = value
		case FlagSnapshot:
			c.Snapshot = value
		case FlagModel:
			if models, ok := f.Value.(*common.ArrayFlag); ok {
				c.Models = slices.Clone(*models)
			} else {
				c.Models = strings.Split(value, ",")
			}
		case FlagDemo:
			var demo bool
			demo, err = strconv.ParseBool(value)
			if err != nil {
				err = errors.Wrapf(err, "invalid value for -%s", f.Name)
				return
			}
			c.Demo = demo
		}
	})
	if err != nil {
		return err
	}
	c.expand()
	return nil
}
