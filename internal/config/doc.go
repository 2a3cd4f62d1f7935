// Package config loads the cruxlens-server configuration from a YAML file.
//
// Config fields:
//   - Server.HTTPPort   — port for the JSON API (default 8080)
//   - Server.LogLevel   — debug | info | warn | error (default info)
//   - Crux.Endpoint     — CrUX queryRecord URL (defaults to the Google endpoint)
//   - Crux.APIKeyEnv    — environment variable holding the API key (default CRUX_API_KEY)
//   - Crux.Timeout      — per-request upstream budget (default 10s)
//   - Notify.Webhooks   — recommendation delivery targets ({type, url_env})
//
// Load(path) applies defaults before unmarshalling, then validates.
// Watch(ctx, path, onChange) hot-reloads the file via fsnotify; a failed
// reload keeps the previous config.
//
// Credentials never live in the file: APIKeyEnv and URLEnv name environment
// variables that are resolved at use time.
package config
