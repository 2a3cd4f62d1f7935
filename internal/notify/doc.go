// Package notify delivers batch performance recommendations to webhook
// targets (Slack, Teams, or a generic JSON POST). Targets come from the
// notify.webhooks config section with URLs resolved from the environment.
// Delivery is asynchronous and best-effort: failures are logged, never
// returned to the request that triggered them.
package notify
