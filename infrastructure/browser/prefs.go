package browser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"browserboot/domain/launch"
)

// expandPrefs turns dotted preference names into the nested object layout
// Chrome uses in its Preferences file. Keys are applied in sorted order, so a
// dotted key wins over a scalar stored at one of its parents. The input is
// copied first and never modified.
func expandPrefs(prefs map[string]any) map[string]any {
	prefs = launch.ClonePrefs(prefs)
	root := make(map[string]any)

	keys := make([]string, 0, len(prefs))
	for k := range prefs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		parts := strings.Split(key, ".")
		node := root
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = prefs[key]
	}

	return root
}

// newUserDataDir creates a throwaway user data directory under root with the
// given preferences written to Default/Preferences.
func newUserDataDir(root string, prefs map[string]any) (string, error) {
	dir, err := os.MkdirTemp(root, "browserboot-profile-*")
	if err != nil {
		return "", fmt.Errorf("failed to create user data dir: %w", err)
	}

	if err := writePreferences(dir, prefs); err != nil {
		_ = os.RemoveAll(dir)
		return "", err
	}

	return dir, nil
}

func writePreferences(userDataDir string, prefs map[string]any) error {
	defaultDir := filepath.Join(userDataDir, "Default")
	if err := os.MkdirAll(defaultDir, 0o755); err != nil {
		return fmt.Errorf("failed to create profile dir: %w", err)
	}

	data, err := json.Marshal(expandPrefs(prefs))
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	if err := os.WriteFile(filepath.Join(defaultDir, "Preferences"), data, 0o644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}
