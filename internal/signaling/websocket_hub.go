package signaling

import (
	"context"
	"fmt"

	"github.com/projectpsu986-droid/pet-monitoring/internal/common"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/log"
)

// AlertHub fans freshly persisted alerts out to every connected websocket
// subscriber. Subscribers are listeners only; nothing a client sends is
// rebroadcast.
type AlertHub struct {
	clients    map[*WebsocketClient]bool
	broadcast  chan common.AlertEvent
	register   chan *WebsocketClient
	unregister chan *WebsocketClient
}

func (h *AlertHub) GetClients() map[*WebsocketClient]bool {
	return h.clients
}

func (h *AlertHub) GetRegister() chan *WebsocketClient {
	return h.register
}

func (h *AlertHub) GetUnregister() chan *WebsocketClient {
	return h.unregister
}

var alertHub *AlertHub

func GetAlertHubInstance() *AlertHub {
	if alertHub == nil {
		panic("AlertHub is not initialized")
	}
	return alertHub
}

func NewAlertHub() *AlertHub {
	alertHub = &AlertHub{
		clients:    make(map[*WebsocketClient]bool),
		broadcast:  make(chan common.AlertEvent, 64),
		register:   make(chan *WebsocketClient),
		unregister: make(chan *WebsocketClient),
	}
	return alertHub
}

// Publish queues an event for fan-out. The hub never blocks its caller: when
// the queue is full the event is dropped, clients can re-sync from the alert
// listing at any time.
func (h *AlertHub) Publish(event common.AlertEvent) {
	select {
	case h.broadcast <- event:
	default:
		log.Default().Warn("alert hub broadcast queue full, dropping event")
	}
}

func (h *AlertHub) Run(ctx context.Context) {
	log.Default().Info("Starting to listen for alert subscribers")
	go func() {
		for {
			select {
			case client := <-h.register:
				h.RegisterNewClient(client)
			case client := <-h.unregister:
				h.RemoveClient(client)
			case event := <-h.broadcast:
				h.HandleEvent(event)
			case <-ctx.Done():
				log.Default().Info("Shutting down alert websocket hub")
				return
			}
		}
	}()
}

func (h *AlertHub) RegisterNewClient(client *WebsocketClient) {
	if _, ok := h.clients[client]; !ok {
		log.Default().Debug(fmt.Sprintf("Registering new subscriber with id [%s]", client.ID.String()))
		h.clients[client] = true
	} else {
		log.Default().Debug(fmt.Sprintf("Subscriber with id [%s] already registered", client.ID.String()))
	}
	log.Default().Debug(fmt.Sprintf("There are [%d] subscribers connected", len(h.clients)))
}

func (h *AlertHub) RemoveClient(client *WebsocketClient) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		log.Default().Debug(fmt.Sprintf("Subscriber with id [%s] disconnected", client.ID.String()))
	}
}

func (h *AlertHub) HandleEvent(event common.AlertEvent) {
	log.Default().Debug(fmt.Sprintf("Publishing alert [%s/%s] to all subscribers", event.Cat, event.Type))
	for client := range h.clients {
		select {
		case client.send <- event:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
}
