package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-invites/internal/runtimeconfig"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
	if cfg.Generator.Enabled() {
		t.Fatalf("expected generator disabled without api key")
	}
}

func TestConfigValidate_RejectsNonPositiveWorkers(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Pipeline.Workers = 0

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrPipelineWorkersInvalid) {
		t.Fatalf("expected ErrPipelineWorkersInvalid, got %v", err)
	}
}

func TestConfigValidate_RequiresDSNForPostgres(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = "postgresql"
	cfg.Storage.DSN = " "

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownDriver(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = "mysql"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrStorageDriverUnknown) {
		t.Fatalf("expected ErrStorageDriverUnknown, got %v", err)
	}
}

func TestConfigValidate_RejectsTemperatureOutOfRange(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Generator.Temperature = 2.5

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrGeneratorTemperatureInvalid) {
		t.Fatalf("expected ErrGeneratorTemperatureInvalid, got %v", err)
	}
}

func TestConfigValidate_RequiresSubjectWithNATS(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Status.NATSURL = "nats://localhost:4222"
	cfg.Status.SubjectPrefix = ""

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrStatusSubjectRequired) {
		t.Fatalf("expected ErrStatusSubjectRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownLoggingProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "syslog"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingLevel(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Level = "verbose"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrLoggingLevelInvalid) {
		t.Fatalf("expected ErrLoggingLevelInvalid, got %v", err)
	}
}

func TestLocaleWeekStartDay(t *testing.T) {
	cases := map[string]time.Weekday{
		"":       time.Monday,
		"Sunday": time.Sunday,
		"sat":    time.Saturday,
		" mon ":  time.Monday,
	}
	for value, want := range cases {
		got, err := runtimeconfig.LocaleConfig{WeekStart: value}.WeekStartDay()
		if err != nil {
			t.Fatalf("WeekStartDay(%q) returned error: %v", value, err)
		}
		if got != want {
			t.Fatalf("WeekStartDay(%q) = %v, want %v", value, got, want)
		}
	}

	if _, err := (runtimeconfig.LocaleConfig{WeekStart: "someday"}).WeekStartDay(); !errors.Is(err, runtimeconfig.ErrWeekStartInvalid) {
		t.Fatalf("expected ErrWeekStartInvalid, got %v", err)
	}
}

func TestLoadMergesFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invites.yaml")
	contents := []byte(`
pipeline:
  workers: 8
  retention: 30m
generator:
  model: gpt-4o-mini
  temperature: 0.5
storage:
  cache:
    ttl: 5m
locale:
  default: ru
`)
	if err := os.WriteFile(path, contents, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("INVITES_PIPELINE_WORKERS", "2")
	t.Setenv("INVITES_GENERATOR_API_KEY", "sk-test")

	cfg, err := runtimeconfig.Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Pipeline.Workers != 2 {
		t.Fatalf("expected env to override workers, got %d", cfg.Pipeline.Workers)
	}
	if cfg.Pipeline.Retention != 30*time.Minute || cfg.Pipeline.QueueSize != 64 {
		t.Fatalf("unexpected pipeline config %+v", cfg.Pipeline)
	}
	if cfg.Generator.Model != "gpt-4o-mini" || cfg.Generator.Temperature != 0.5 || !cfg.Generator.Enabled() {
		t.Fatalf("unexpected generator config %+v", cfg.Generator)
	}
	if cfg.Storage.Cache.TTL != 5*time.Minute || !cfg.Storage.Cache.Enabled {
		t.Fatalf("unexpected cache config %+v", cfg.Storage.Cache)
	}
	if cfg.Locale.Default != "ru" {
		t.Fatalf("expected locale from file, got %q", cfg.Locale.Default)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invites.yaml")
	if err := os.WriteFile(path, []byte("pipeline:\n  workers: 0\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := runtimeconfig.Load(path)
	if !errors.Is(err, runtimeconfig.ErrPipelineWorkersInvalid) {
		t.Fatalf("expected ErrPipelineWorkersInvalid, got %v", err)
	}
}

func TestLoadReportsMissingFile(t *testing.T) {
	if _, err := runtimeconfig.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
