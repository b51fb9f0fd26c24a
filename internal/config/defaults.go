// Package config provides configuration loading and defaults for generate_filelist.
package config

import "github.com/blackwell-systems/filelistgen/internal/filelist"

// DefaultConfigDir is the default location for configuration and run state.
const DefaultConfigDir = "~/.config/generate_filelist"

// DefaultDBName is the filename for the run history database.
const DefaultDBName = "history.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// EnvPrefix prefixes environment variables that override config keys,
// e.g. GENERATE_FILELIST_LAYOUT_SRC_DIR.
const EnvPrefix = "GENERATE_FILELIST"

// DefaultLayout is the generator's own default layout.
var DefaultLayout = layoutFrom(filelist.DefaultLayout())

// DefaultHistory leaves run history off so a plain run only touches the
// job directory.
var DefaultHistory = History{
	Enabled: false,
}

// DefaultLog discards log output unless a file or --verbose is given.
var DefaultLog = Log{
	Level: "info",
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
}
