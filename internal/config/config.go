package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/blackwell-systems/filelistgen/internal/filelist"
)

// Config is the top-level generate_filelist configuration.
type Config struct {
	Layout  Layout  `mapstructure:"layout"`
	History History `mapstructure:"history"`
	Log     Log     `mapstructure:"log"`
	Output  Output  `mapstructure:"output"`

	// LockDir holds the per-job lock files.
	LockDir string `mapstructure:"lock_dir"`
}

// Layout names the project subdirectories and the suffixes recognized in each.
type Layout struct {
	SrcDir      string   `mapstructure:"src_dir"`
	TbDir       string   `mapstructure:"tb_dir"`
	IncludeDir  string   `mapstructure:"include_dir"`
	SourceExts  []string `mapstructure:"source_exts"`
	IncludeExts []string `mapstructure:"include_exts"`
	IgnoreFile  string   `mapstructure:"ignore_file"`
}

// History controls the run history database.
type History struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
}

// Log controls diagnostic logging.
type Log struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
}

func layoutFrom(l filelist.Layout) Layout {
	return Layout{
		SrcDir:      l.SrcDir,
		TbDir:       l.TbDir,
		IncludeDir:  l.IncludeDir,
		SourceExts:  l.SourceExts,
		IncludeExts: l.IncludeExts,
		IgnoreFile:  l.IgnoreFile,
	}
}

// FilelistLayout converts the configured layout for the generator.
func (l Layout) FilelistLayout() filelist.Layout {
	return filelist.Layout{
		SrcDir:      l.SrcDir,
		TbDir:       l.TbDir,
		IncludeDir:  l.IncludeDir,
		SourceExts:  l.SourceExts,
		IncludeExts: l.IncludeExts,
		IgnoreFile:  l.IgnoreFile,
	}
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("layout.src_dir", DefaultLayout.SrcDir)
	v.SetDefault("layout.tb_dir", DefaultLayout.TbDir)
	v.SetDefault("layout.include_dir", DefaultLayout.IncludeDir)
	v.SetDefault("layout.source_exts", DefaultLayout.SourceExts)
	v.SetDefault("layout.include_exts", DefaultLayout.IncludeExts)
	v.SetDefault("layout.ignore_file", DefaultLayout.IgnoreFile)
	v.SetDefault("history.enabled", DefaultHistory.Enabled)
	v.SetDefault("history.db_path", DBPath())
	v.SetDefault("log.file", DefaultLog.File)
	v.SetDefault("log.level", DefaultLog.Level)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("lock_dir", LockDir())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	read := true
	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		// An unusable home directory means there is no default config.
		info, err := os.Stat(ConfigDir())
		read = err == nil && info.IsDir()
		v.AddConfigPath(ConfigDir())
		v.SetConfigName(strings.TrimSuffix(DefaultConfigFile, filepath.Ext(DefaultConfigFile)))
		v.SetConfigType("yaml")
	}

	// Missing config file is not an error.
	if read {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.History.DBPath = expandPath(cfg.History.DBPath)
	cfg.Log.File = expandPath(cfg.Log.File)
	cfg.LockDir = expandPath(cfg.LockDir)

	return &cfg, nil
}

// DBPath returns the default path to the run history database.
func DBPath() string {
	return filepath.Join(ConfigDir(), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}

// LockDir returns the directory holding per-job lock files.
func LockDir() string {
	return filepath.Join(ConfigDir(), "locks")
}
