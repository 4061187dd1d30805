package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ExpandPathVariables expands the ${VAR} placeholders the Python
// config_utils.expand_path_variables recognized: ${USER_HOME},
// ${USER_DATA}, ${USER_CONFIG}, ${USER_CACHE}, ${USER_LOGS}, ${TEMP}.
// The Python implementation leaned on the third-party `platformdirs`
// package; no pack library offers a Go equivalent, so the four USER_*
// directories are derived here from os.UserHomeDir/os.UserCacheDir and the
// XDG environment variables, which is the standard stdlib-only way Go
// programs resolve these paths in the absence of a dedicated dependency.
func ExpandPathVariables(path string) string {
	if path == "" {
		return path
	}
	replacements := map[string]string{
		"${USER_HOME}":   userHomeDir(),
		"${USER_DATA}":   userDataDir(),
		"${USER_CONFIG}": userConfigDir(),
		"${USER_CACHE}":  userCacheDir(),
		"${USER_LOGS}":   userLogDir(),
		"${TEMP}":        os.TempDir(),
	}
	for k, v := range replacements {
		path = strings.ReplaceAll(path, k, v)
	}
	return path
}

func userHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

func userDataDir() string {
	if runtime.GOOS == "darwin" {
		return filepath.Join(userHomeDir(), "Library", "Application Support")
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(userHomeDir(), ".local", "share")
}

func userConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(userHomeDir(), ".config")
	}
	return dir
}

func userCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(userHomeDir(), ".cache")
	}
	return dir
}

func userLogDir() string {
	if runtime.GOOS == "darwin" {
		return filepath.Join(userHomeDir(), "Library", "Logs")
	}
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "log")
	}
	return filepath.Join(userCacheDir(), "log")
}
