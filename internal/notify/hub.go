package notify

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

type publisher interface {
	Publish(message []byte) bool
}

// HubNotifier pushes events to websocket clients.
type HubNotifier struct {
	hub publisher
	log *zap.Logger
}

func NewHubNotifier(hub publisher, log *zap.Logger) *HubNotifier {
	return &HubNotifier{hub: hub, log: log}
}

func (n *HubNotifier) Notify(_ context.Context, event Event) {
	msg, err := json.Marshal(event)
	if err != nil {
		n.log.Error("marshal event", zap.String("type", event.Type), zap.Error(err))
		return
	}
	n.hub.Publish(msg)
}
