package browser

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"browserboot/domain/launch"
)

func TestExpandPrefs(t *testing.T) {
	got := expandPrefs(map[string]any{
		"download.prompt_for_download":     false,
		"download.directory_upgrade":       true,
		"profile.password_manager_enabled": false,
		"credentials_enable_service":       false,
	})

	want := map[string]any{
		"download": map[string]any{
			"prompt_for_download": false,
			"directory_upgrade":   true,
		},
		"profile": map[string]any{
			"password_manager_enabled": false,
		},
		"credentials_enable_service": false,
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("expandPrefs() = %#v, want %#v", got, want)
	}
}

func TestExpandPrefs_DottedKeyWinsOverParentScalar(t *testing.T) {
	got := expandPrefs(map[string]any{
		"a":   1,
		"a.b": 2,
	})

	want := map[string]any{"a": map[string]any{"b": 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expandPrefs() = %#v, want %#v", got, want)
	}
}

func TestNewUserDataDir(t *testing.T) {
	root := t.TempDir()

	dir, err := newUserDataDir(root, map[string]any{"safebrowsing.enabled": true})
	if err != nil {
		t.Fatalf("newUserDataDir() returned error: %v", err)
	}
	if filepath.Dir(dir) != root {
		t.Errorf("dir %q not created under %q", dir, root)
	}

	data, err := os.ReadFile(filepath.Join(dir, "Default", "Preferences"))
	if err != nil {
		t.Fatalf("Preferences not written: %v", err)
	}

	var prefs map[string]any
	if err := json.Unmarshal(data, &prefs); err != nil {
		t.Fatalf("Preferences is not valid JSON: %v", err)
	}
	safebrowsing, ok := prefs["safebrowsing"].(map[string]any)
	if !ok || safebrowsing["enabled"] != true {
		t.Errorf("Preferences = %s", data)
	}
}

func TestNewUserDataDir_KeepsRegistryPrefs(t *testing.T) {
	registry := launch.NewRegistry()
	yaml := []byte(`profiles:
  - mode: standard
    prefs:
      profile:
        default_content_setting_values:
          notifications: 2
      profile.password_manager_enabled: false
`)
	if err := launch.NewLoader(registry).LoadBytes(yaml); err != nil {
		t.Fatalf("LoadBytes() returned error: %v", err)
	}

	for i := 0; i < 2; i++ {
		profile, err := registry.Resolve(launch.ModeStandard, launch.Overrides{})
		if err != nil {
			t.Fatalf("Resolve() returned error: %v", err)
		}
		if _, err := newUserDataDir(t.TempDir(), profile.Prefs); err != nil {
			t.Fatalf("newUserDataDir() returned error: %v", err)
		}
	}

	want := map[string]any{
		"default_content_setting_values": map[string]any{"notifications": 2},
	}
	got := registry.Get(launch.ModeStandard).Profile.Prefs["profile"]
	if !reflect.DeepEqual(got, want) {
		t.Errorf("registry prefs[profile] = %#v, want %#v", got, want)
	}
}

func TestExpandPrefs_MergesNestedMap(t *testing.T) {
	nested := map[string]any{"a": 1}
	got := expandPrefs(map[string]any{
		"profile":   nested,
		"profile.b": false,
	})

	want := map[string]any{"profile": map[string]any{"a": 1, "b": false}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expandPrefs() = %#v, want %#v", got, want)
	}
	if len(nested) != 1 {
		t.Errorf("input map modified: %#v", nested)
	}
}
