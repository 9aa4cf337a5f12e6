// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Downloader - these keys tune how renditions are fetched and written to disk.
const (
	DownloaderOutputDir      = "downloader.output_dir"
	DownloaderRetryDelay     = "downloader.retry_delay"
	DownloaderMaxRetries     = "downloader.max_retries"
	DownloaderChunkSize      = "downloader.chunk_size"
	DownloaderDefaultQuality = "downloader.default_quality"
	DownloaderOpenWith       = "downloader.open_with"
)

// Manifest resolution.
const (
	ManifestCacheLifetime = "manifest.cache_lifetime"
)

// Network - these keys configure the shared HTTP client.
const (
	NetworkTimeout        = "network.timeout"
	NetworkUserAgent      = "network.user_agent"
	NetworkTLSFingerprint = "network.tls_fingerprint"
)

// History Tracking - these keys configure the persistence of completed downloads.
const (
	HistorySave = "history.save"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
	CliSuggestURLs  = "cli.suggest_urls"
)
