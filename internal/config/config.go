// Package config loads the optional reclaim configuration file.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config represents the optional reclaim configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
	Exclude  ExcludeConfig  `toml:"exclude"`
}

// DefaultsConfig holds persistent flag defaults. Pointer fields distinguish
// "unset" from zero values.
type DefaultsConfig struct {
	MinSize    *string   `toml:"min_size"`
	Extensions *[]string `toml:"extensions"`
	ArchiveDir *string   `toml:"archive_dir"`
	BWLimit    *string   `toml:"bwlimit"`
	Catalog    *string   `toml:"catalog"`
}

// ExcludeConfig controls directory pruning.
type ExcludeConfig struct {
	Roots  []string `toml:"roots"`
	System *bool    `toml:"system"` // include platform system roots, default true
}

// CommonExtensions is the suggestion set offered by the UI layer; an empty
// extension filter still means "match all".
var CommonExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff",
	".zip", ".rar", ".7z", ".exe", ".msi", ".dmg", ".pkg",
	".pdf", ".docx", ".pptx", ".xls", ".xlsx", ".txt",
	".psd", ".ai", ".svg", ".blend", ".skp", ".cad",
	".sldprt", ".sldasm",
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "reclaim", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist. Config is always optional.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}
	return LoadFrom(path)
}

// LoadFrom reads a config file from an explicit path. A missing file is
// not an error.
func LoadFrom(path string) (Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	return cfg, nil
}

// ExcludedRoots resolves the full exclusion list: configured roots plus,
// unless disabled, the platform system roots.
func (c Config) ExcludedRoots() []string {
	roots := append([]string(nil), c.Exclude.Roots...)
	if c.Exclude.System == nil || *c.Exclude.System {
		roots = append(roots, SystemExcludedRoots()...)
	}
	return roots
}

// SystemExcludedRoots returns the OS-managed directories that scanning
// should never descend into.
func SystemExcludedRoots() []string {
	if runtime.GOOS == "windows" {
		return []string{
			os.Getenv("SystemRoot"),
			os.Getenv("ProgramFiles"),
			os.Getenv("ProgramFiles(x86)"),
			os.Getenv("APPDATA"),
			os.Getenv("LOCALAPPDATA"),
		}
	}
	return []string{"/proc", "/sys", "/dev", "/run"}
}

// DefaultArchiveDir returns where bundles are written when no archive
// directory is configured.
func DefaultArchiveDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "reclaim-archives")
	}
	return filepath.Join(home, "Documents", "reclaim-archives")
}
