package settings

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ordishs/gocore"
)

// ExpandHome resolves a leading "~" (as in "~/.bitcoin/blocks/") against
// the current user's home directory. filepath.Glob and os.ReadFile never
// do this themselves, so paths read from config or flags must be
// expanded before use or they silently match nothing.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

func getString(key, defaultValue string) string {
	value, found := gocore.Config().Get(key)
	if !found {
		return defaultValue
	}

	return value
}

func getInt(key string, defaultValue int) int {
	value, found := gocore.Config().GetInt(key)
	if !found {
		return defaultValue
	}

	return value
}

func getBool(key string, defaultValue bool) bool {
	return gocore.Config().GetBool(key, defaultValue)
}
