package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZaguanLabs/miztl"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"OPENAI_API_KEY", "OPENAI_BASE_URL", "MIZTL_MODEL", "MIZTL_CACHE_DIR", "MIZTL_REDIS_URL", "MIZTL_MIN_LENGTH", "MIZTL_RPM"} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "miztl.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.MinLength != miztl.DefaultMinLength {
		t.Errorf("Expected min length %d, got %d", miztl.DefaultMinLength, cfg.MinLength)
	}
	if len(cfg.SkipPrefixes) != 1 || cfg.SkipPrefixes[0] != "DictKey_ActionRadioText" {
		t.Errorf("Unexpected skip prefixes %v", cfg.SkipPrefixes)
	}
	if len(cfg.Identifiers) != 2 || cfg.Identifiers[0] != "subtitle" || cfg.Identifiers[1] != "outText" {
		t.Errorf("Unexpected identifiers %v", cfg.Identifiers)
	}
	if cfg.SourceLang != "EN" {
		t.Errorf("Expected source EN, got %q", cfg.SourceLang)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
target_lang: CN
model: gpt-4o
min_length: 10
identifiers:
  - subtitle
  - text()
redis:
  url: redis://localhost:6379/0
glossary:
  tanker: 加油机
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.TargetLang != "CN" {
		t.Errorf("Expected target CN, got %q", cfg.TargetLang)
	}
	if cfg.Model != "gpt-4o" {
		t.Errorf("Expected model gpt-4o, got %q", cfg.Model)
	}
	if cfg.MinLength != 10 {
		t.Errorf("Expected min length 10, got %d", cfg.MinLength)
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Errorf("Unexpected redis URL %q", cfg.Redis.URL)
	}
	if cfg.Glossary["tanker"] != "加油机" {
		t.Errorf("Unexpected glossary %v", cfg.Glossary)
	}
	if cfg.SourceLang != "EN" {
		t.Error("Unset fields should keep their defaults")
	}

	idents, err := cfg.ParsedIdentifiers()
	if err != nil {
		t.Fatalf("ParsedIdentifiers failed: %v", err)
	}
	if len(idents) != 2 || !idents[1].Call || idents[1].Name != "text" {
		t.Errorf("Unexpected identifiers %+v", idents)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "model: gpt-4o\nmin_length: 10\n")

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("MIZTL_MODEL", "gpt-4.1-mini")
	t.Setenv("MIZTL_MIN_LENGTH", "20")
	t.Setenv("MIZTL_RPM", "30")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.APIKey != "sk-test" {
		t.Errorf("Expected API key from env, got %q", cfg.APIKey)
	}
	if cfg.Model != "gpt-4.1-mini" {
		t.Errorf("Expected model from env, got %q", cfg.Model)
	}
	if cfg.MinLength != 20 {
		t.Errorf("Expected min length 20, got %d", cfg.MinLength)
	}
	if cfg.RequestsPerMinute != 30 {
		t.Errorf("Expected 30 rpm, got %d", cfg.RequestsPerMinute)
	}
}

func TestLoad_InvalidEnvInt(t *testing.T) {
	clearEnv(t)
	t.Setenv("MIZTL_MIN_LENGTH", "lots")

	if _, err := Load(writeFile(t, "")); err == nil {
		t.Error("Expected error for non-numeric MIZTL_MIN_LENGTH")
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing explicit config file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	if _, err := Load(writeFile(t, "min_length: [")); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error without target language")
	}

	cfg.TargetLang = "CN"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error without API key")
	}

	cfg.APIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	cfg.Identifiers = []string{"not valid"}
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for invalid identifier")
	}
}
