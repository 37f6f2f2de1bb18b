package natsadapter

import (
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects for domain events. The trailing token is the entity ID.
const (
	SubjectZoneCreated      = "greenmap.zones.created"
	SubjectZoneVerified     = "greenmap.zones.verified"
	SubjectCommunityCreated = "greenmap.communities.created"
)

// Channel wildcards, as subscribed to by WebSocket clients.
var Channels = map[string]string{
	"zones":         "greenmap.zones.>",
	"verifications": SubjectZoneVerified + ".>",
	"communities":   "greenmap.communities.>",
}

// streams are created or updated on connect.
var streams = []nats.StreamConfig{
	{
		Name:      "GREENMAP_ZONES",
		Subjects:  []string{"greenmap.zones.>"},
		Retention: nats.InterestPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	},
	{
		Name:      "GREENMAP_COMMUNITIES",
		Subjects:  []string{"greenmap.communities.>"},
		Retention: nats.InterestPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	},
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("greenmap"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
