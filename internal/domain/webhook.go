package domain

// WebhookEvent represents a verified inbound webhook delivery.
type WebhookEvent struct {
	Topic    string `json:"topic"`
	Shop     string `json:"shop"`
	Payload  []byte `json:"payload"`
	Verified bool   `json:"verified"`
}

// AppUninstalledTopic is the one topic this layer must always handle: it
// triggers installation cleanup for the shop.
const AppUninstalledTopic = "app/uninstalled"
