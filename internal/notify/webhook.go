package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cruxlens/cruxlens/internal/analyze"
	"github.com/cruxlens/cruxlens/internal/config"
)

const deliveryTimeout = 10 * time.Second

// Notifier delivers batch recommendations to the configured webhook targets.
// A Notifier with no webhooks is valid — Deliver becomes a no-op.
type Notifier struct {
	webhooks []config.WebhookConfig
	client   *http.Client
}

// New creates a Notifier from the notify configuration.
func New(cfg config.NotifyConfig) *Notifier {
	return &Notifier{
		webhooks: cfg.Webhooks,
		client:   &http.Client{Timeout: deliveryTimeout},
	}
}

// Deliver sends the per-URL recommendations among insights to every target,
// asynchronously. The all-clear sentinel is never delivered. Failures are
// logged and never surface to the request that produced the insights.
func (n *Notifier) Deliver(insights []analyze.Insight) {
	if len(n.webhooks) == 0 {
		return
	}
	var recs []analyze.Insight
	for _, in := range insights {
		if in.URL != "" && len(in.Recommendations) > 0 {
			recs = append(recs, in)
		}
	}
	if len(recs) == 0 {
		return
	}
	go n.deliver(recs)
}

// deliver fans the recommendations out to all targets sequentially.
func (n *Notifier) deliver(insights []analyze.Insight) {
	for _, wh := range n.webhooks {
		url := wh.URL()
		if url == "" {
			continue
		}

		var err error
		switch wh.Type {
		case "slack":
			err = n.sendSlack(url, insights)
		case "teams":
			err = n.sendTeams(url, insights)
		case "http":
			err = n.sendHTTP(url, insights)
		default:
			slog.Warn("notify: unknown webhook type — skipping", "type", wh.Type)
			continue
		}

		if err != nil {
			slog.Error("notify: webhook delivery failed",
				"type", wh.Type,
				"urls", len(insights),
				"err", err,
			)
		} else {
			slog.Debug("notify: webhook delivered",
				"type", wh.Type,
				"urls", len(insights),
			)
		}
	}
}

func (n *Notifier) sendSlack(url string, insights []analyze.Insight) error {
	body, _ := json.Marshal(map[string]string{
		"text": fmt.Sprintf("*Web performance recommendations*\n%s", summary(insights)),
	})
	return n.post(url, body)
}

func (n *Notifier) sendTeams(url string, insights []analyze.Insight) error {
	payload := map[string]interface{}{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": "FFAB40",
		"summary":    "Web performance recommendations",
		"title":      fmt.Sprintf("CruxLens: %d URL(s) need attention", len(insights)),
		"text":       summary(insights),
	}
	body, _ := json.Marshal(payload)
	return n.post(url, body)
}

func (n *Notifier) sendHTTP(url string, insights []analyze.Insight) error {
	body, _ := json.Marshal(map[string]interface{}{"insights": insights})
	return n.post(url, body)
}

func (n *Notifier) post(url string, body []byte) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// summary renders one line per recommendation, prefixed with its URL.
func summary(insights []analyze.Insight) string {
	var b strings.Builder
	for _, in := range insights {
		for _, rec := range in.Recommendations {
			fmt.Fprintf(&b, "%s: %s\n", in.URL, rec)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
