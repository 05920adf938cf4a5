package cli

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

// isolateConfig keeps host config files out of the test run
func isolateConfig(t *testing.T) {
	t.Helper()
	prev := cfgFile
	cfgFile = filepath.Join(t.TempDir(), "config.yaml")
	t.Cleanup(func() {
		cfgFile = prev
		viper.Reset()
	})
}

func TestBuildConfig_EnvOverridesNestedKeys(t *testing.T) {
	isolateConfig(t)
	t.Setenv("SCICHECK_LLM_MODEL", "sonar-pro")
	t.Setenv("SCICHECK_LLM_PROVIDER", "openrouter")
	t.Setenv("SCICHECK_ENRICH_CONTACT", "env@example.com")

	initConfig()

	cfg, err := buildConfig()
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}

	if cfg.LLM.Model != "sonar-pro" {
		t.Errorf("expected model from SCICHECK_LLM_MODEL, got %q", cfg.LLM.Model)
	}
	if cfg.LLM.Provider != "openrouter" {
		t.Errorf("expected provider from SCICHECK_LLM_PROVIDER, got %q", cfg.LLM.Provider)
	}
	if cfg.Enrich.Contact != "env@example.com" {
		t.Errorf("expected contact from SCICHECK_ENRICH_CONTACT, got %q", cfg.Enrich.Contact)
	}
}

func TestBuildConfig_FlagsOverrideEnv(t *testing.T) {
	isolateConfig(t)
	t.Setenv("SCICHECK_LLM_MODEL", "sonar-pro")
	defer func() { llmModel = "" }()

	initConfig()
	llmModel = "sonar-reasoning"

	cfg, err := buildConfig()
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if cfg.LLM.Model != "sonar-reasoning" {
		t.Errorf("flag should win over env, got %q", cfg.LLM.Model)
	}
}
