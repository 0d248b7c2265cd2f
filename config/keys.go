package config

const (
	delimiter = "."

	ConfigPrefix = "config"

	ConfigStorePrefix     = ConfigPrefix + delimiter + "store"
	ConfigStoreName       = ConfigStorePrefix + delimiter + "name"
	ConfigStoreBufferSize = ConfigStorePrefix + delimiter + "buffer_size"

	ConfigSharingPrefix       = ConfigPrefix + delimiter + "sharing"
	ConfigSharingNumShards    = ConfigSharingPrefix + delimiter + "num_shards"
	ConfigSharingFileDebounce = ConfigSharingPrefix + delimiter + "file_debounce"
	ConfigSharingFileRoot     = ConfigSharingPrefix + delimiter + "file_root"
	ConfigSharingSQLitePath   = ConfigSharingPrefix + delimiter + "sqlite_path"
	ConfigSharingCacheSize    = ConfigSharingPrefix + delimiter + "cache_size"
	ConfigSharingS3Bucket     = ConfigSharingPrefix + delimiter + "s3_bucket"
	ConfigSharingS3Region     = ConfigSharingPrefix + delimiter + "s3_region"
	ConfigSharingS3Endpoint   = ConfigSharingPrefix + delimiter + "s3_endpoint"

	ConfigLogPrefix      = ConfigPrefix + delimiter + "log"
	ConfigLogLevel       = ConfigLogPrefix + delimiter + "level"
	ConfigLogDevelopment = ConfigLogPrefix + delimiter + "development"

	ConfigMetricsPrefix    = ConfigPrefix + delimiter + "metrics"
	ConfigMetricsNamespace = ConfigMetricsPrefix + delimiter + "namespace"

	ConfigServerPrefix = ConfigPrefix + delimiter + "server"
	ConfigServerAddr   = ConfigServerPrefix + delimiter + "addr"

	ConfigWeatherPrefix   = ConfigPrefix + delimiter + "weather"
	ConfigWeatherBaseURL  = ConfigWeatherPrefix + delimiter + "base_url"
	ConfigWeatherDebounce = ConfigWeatherPrefix + delimiter + "debounce"
	ConfigWeatherTimeout  = ConfigWeatherPrefix + delimiter + "timeout"
)
