package notify

import (
	"sync"

	"github.com/yeremiapane/tableside-app/models"
)

// Recorder captures events for assertions in tests.
type Recorder struct {
	mu     sync.Mutex
	Events []Message
}

func (r *Recorder) record(msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, msg)
}

// ByEvent returns the recorded messages with the given event type.
func (r *Recorder) ByEvent(event string) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Message
	for _, msg := range r.Events {
		if msg.Event == event {
			out = append(out, msg)
		}
	}
	return out
}

func (r *Recorder) OrderCreated(order models.Order) {
	r.record(Message{Event: EventNewOrder, Data: order})
}

func (r *Recorder) OrderStatusChanged(order models.Order) {
	r.record(Message{Event: EventUpdateOrder, Data: order})
}

func (r *Recorder) TableUpdated(table models.Table) {
	r.record(Message{Event: EventTableUpdate, Data: table})
}

func (r *Recorder) BillRequested(req models.BillRequest) {
	r.record(Message{Event: EventBillRequest, Data: req})
}

func (r *Recorder) TableSettled(tableID uint, bill models.Bill) {
	r.record(Message{Event: EventTableUpdate, Data: bill})
}

func (r *Recorder) PaymentEvent(event string, intentID string) {
	r.record(Message{Event: EventPaymentUpdate, Data: intentID})
}
