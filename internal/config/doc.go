// Package config loads folio's TOML configuration.
//
// # Resolution
//
// Load works in this order:
//
//  1. Each env file passed to Load (normally ".env") is read into the process
//     environment. Variables that are already set are kept. Missing env files
//     are skipped.
//  2. The config file is read from the given path, or from
//     ~/.config/folio/config.toml when the path is empty. A missing file is
//     not an error.
//  3. FOLIO_API_BASE_URL, FOLIO_AUTH_TOKEN, FOLIO_DEVTOOLS_ADDR and
//     FOLIO_STORAGE_BACKEND override the file.
//  4. The result is validated.
//
// # TOML Format
//
//	api_base_url    = "https://api.yourdomain.com"
//	health_interval = 60      # seconds
//	request_timeout = 10000   # milliseconds
//	health_api_id   = "1"
//	catalog_path    = "~/.config/folio/catalog.yaml"
//	catalog_url     = "/catalog"
//	storage_backend = "toml"  # or "sqlite"
//	storage_dir     = "~/.local/share/folio"
//	log_dir         = "~/.local/share/folio/logs"
//	devtools_addr   = "127.0.0.1:7788"
//
// Every field is optional. Blank strings and non-positive durations fall back
// to the defaults. Paths get tilde expansion and are made absolute.
//
// # Errors
//
// Load fails when the home directory cannot be resolved, the file cannot be
// read or parsed, an env file is malformed, the base URL is not an absolute
// http(s) URL, or the storage backend is unknown.
package config
