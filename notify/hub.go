package notify

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/tableside-app/models"
)

// Channels a websocket client can subscribe to.
const (
	ChannelKitchen      = "kitchen"
	ChannelFrontOfHouse = "front_of_house"
	ChannelTable        = "table"
)

type client struct {
	channel string
	tableID uint // only for ChannelTable clients
}

// Hub fans Notifier events out to connected websocket clients. Kitchen and
// front-of-house clients see their whole channel; table clients only see
// events for their own table.
type Hub struct {
	clients map[*websocket.Conn]client
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]client),
	}
}

// RegisterClient adds a connection to a channel. tableID is ignored unless
// the channel is ChannelTable.
func (h *Hub) RegisterClient(conn *websocket.Conn, channel string, tableID uint) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = client{channel: channel, tableID: tableID}
}

// UnregisterClient releases a connection.
func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

func (h *Hub) OrderCreated(order models.Order) {
	h.send(ChannelKitchen, 0, Message{
		Event: EventNewOrder,
		Data:  order,
	})
}

func (h *Hub) OrderStatusChanged(order models.Order) {
	// The kitchen never sees an item it does not need to act on.
	kitchenView := order
	kitchenView.OrderItems = nil
	for _, item := range order.OrderItems {
		if item.Status != models.OrderItemStatusRejected {
			kitchenView.OrderItems = append(kitchenView.OrderItems, item)
		}
	}
	h.send(ChannelKitchen, 0, Message{
		Event: EventUpdateOrder,
		Data:  kitchenView,
	})

	h.send(ChannelTable, order.TableID, Message{
		Event: EventOrderStatusUpdate,
		Data: map[string]interface{}{
			"order_id": order.ID,
			"status":   order.Status,
		},
	})
}

func (h *Hub) TableUpdated(table models.Table) {
	h.send(ChannelFrontOfHouse, 0, Message{
		Event: EventTableUpdate,
		Data:  table,
	})
}

func (h *Hub) BillRequested(req models.BillRequest) {
	h.send(ChannelFrontOfHouse, 0, Message{
		Event: EventBillRequest,
		Data:  req,
	})
}

func (h *Hub) TableSettled(tableID uint, bill models.Bill) {
	h.send(ChannelFrontOfHouse, 0, Message{
		Event: EventTableUpdate,
		Data: map[string]interface{}{
			"table_id": tableID,
			"status":   "settled",
			"bill_id":  bill.ID,
		},
	})
}

func (h *Hub) PaymentEvent(event string, intentID string) {
	h.send(ChannelFrontOfHouse, 0, Message{
		Event: EventPaymentUpdate,
		Data: map[string]interface{}{
			"provider_event": event,
			"intent_id":      intentID,
		},
	})
}

func (h *Hub) send(channel string, tableID uint, msg Message) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn, cl := range h.clients {
		if cl.channel != channel {
			continue
		}
		if channel == ChannelTable && cl.tableID != tableID {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending message to %s client: %v", cl.channel, err)
		}
	}
}
