package invites

import "github.com/goliatone/go-invites/internal/runtimeconfig"

var (
	ErrPipelineWorkersInvalid      = runtimeconfig.ErrPipelineWorkersInvalid
	ErrPipelineQueueInvalid        = runtimeconfig.ErrPipelineQueueInvalid
	ErrPipelineRetentionInvalid    = runtimeconfig.ErrPipelineRetentionInvalid
	ErrStorageDriverUnknown        = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired          = runtimeconfig.ErrStorageDSNRequired
	ErrGeneratorTemperatureInvalid = runtimeconfig.ErrGeneratorTemperatureInvalid
	ErrGeneratorMaxTokensInvalid   = runtimeconfig.ErrGeneratorMaxTokensInvalid
	ErrWeekStartInvalid            = runtimeconfig.ErrWeekStartInvalid
	ErrStatusSubjectRequired       = runtimeconfig.ErrStatusSubjectRequired
	ErrLoggingProviderRequired     = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown      = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid         = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid        = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config          = runtimeconfig.Config
	PipelineConfig  = runtimeconfig.PipelineConfig
	GeneratorConfig = runtimeconfig.GeneratorConfig
	GeocoderConfig  = runtimeconfig.GeocoderConfig
	StorageConfig   = runtimeconfig.StorageConfig
	CacheConfig     = runtimeconfig.CacheConfig
	StatusConfig    = runtimeconfig.StatusConfig
	MetricsConfig   = runtimeconfig.MetricsConfig
	LoggingConfig   = runtimeconfig.LoggingConfig
	LocaleConfig    = runtimeconfig.LocaleConfig
	RoutesConfig    = runtimeconfig.RoutesConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig resolves defaults, the YAML file at path and INVITES_* variables.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
