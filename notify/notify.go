package notify

import "github.com/yeremiapane/tableside-app/models"

// Event types
const (
	EventNewOrder          = "new_order"
	EventUpdateOrder       = "update_order"
	EventOrderStatusUpdate = "order_status_update"
	EventTableUpdate       = "table_update"
	EventBillRequest       = "bill_request"
	EventPaymentUpdate     = "payment_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Notifier is the side channel into the kitchen, the front of house and the
// guests at a table. Delivery is fire-and-forget; business logic never depends
// on an event arriving. Injected so the engines can be tested without a live
// websocket transport.
type Notifier interface {
	// OrderCreated pushes the full order payload to the kitchen channel.
	OrderCreated(order models.Order)
	// OrderStatusChanged pushes the order to the kitchen with rejected items
	// filtered out, and a lightweight {order_id, status} event to the table.
	OrderStatusChanged(order models.Order)
	// TableUpdated tells the front of house a table changed (settled, freed,
	// QR rotated).
	TableUpdated(table models.Table)
	// BillRequested tells the front of house a guest asked for the bill.
	BillRequested(req models.BillRequest)
	// TableSettled tells the front of house the table is paid and free.
	TableSettled(tableID uint, bill models.Bill)
	// PaymentEvent records provider webhook observations.
	PaymentEvent(event string, intentID string)
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) OrderCreated(models.Order)           {}
func (NopNotifier) OrderStatusChanged(models.Order)     {}
func (NopNotifier) TableUpdated(models.Table)           {}
func (NopNotifier) BillRequested(models.BillRequest)    {}
func (NopNotifier) TableSettled(uint, models.Bill)      {}
func (NopNotifier) PaymentEvent(event, intentID string) {}
