package config

import (
	"os"
	"reflect"
	"testing"

	"github.com/spf13/viper"
)

// resetViper clears all viper state between tests to avoid cross-contamination.
func resetViper() {
	viper.Reset()
}

func TestLoadDefaults(t *testing.T) {
	resetViper()

	cfg := Load()

	wantExts := []string{"rs", "c", "cpp", "h", "hpp", "cc", "cxx", "toml"}
	if !reflect.DeepEqual(cfg.Extensions, wantExts) {
		t.Errorf("Extensions = %v, want %v", cfg.Extensions, wantExts)
	}
	if cfg.Verbose {
		t.Error("Verbose should default to false")
	}
	if len(cfg.Templates) != 0 {
		t.Errorf("Templates = %v, want empty", cfg.Templates)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	resetViper()
	viper.SetEnvPrefix("RIPPLE")
	viper.AutomaticEnv()

	os.Setenv("RIPPLE_VERBOSE", "true")
	defer os.Unsetenv("RIPPLE_VERBOSE")

	cfg := Load()
	if !cfg.Verbose {
		t.Error("RIPPLE_VERBOSE=true not applied")
	}
}

func TestTemplateOverride(t *testing.T) {
	resetViper()

	cfg := Config{Templates: map[string]string{"test": "cargo nextest run"}}

	if got := cfg.Template("test", "fallback"); got != "cargo nextest run" {
		t.Errorf("Template(test) = %q, want override", got)
	}
	if got := cfg.Template("build", "fallback"); got != "fallback" {
		t.Errorf("Template(build) = %q, want fallback", got)
	}
}
