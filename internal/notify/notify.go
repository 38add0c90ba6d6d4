// Package notify fans item status changes out to kitchen-display and
// table-view subscribers. Delivery is best effort: a transport failure
// never rolls back a committed local mutation.
package notify

import (
	"context"
	"log"
	"time"

	"github.com/DesumovJP/restaraunt-OS-sub001/internal/models"
)

// StatusEvent is the semantic payload published after every successful
// transition or undo.
type StatusEvent struct {
	OrderID   string            `json:"order_id"`
	TableID   string            `json:"table_id,omitempty"`
	ItemID    string            `json:"item_id"`
	OldStatus models.ItemStatus `json:"old_status"`
	NewStatus models.ItemStatus `json:"new_status"`
	Station   models.Station    `json:"station,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Notifier delivers status events to one transport.
type Notifier interface {
	PublishStatusChange(ctx context.Context, event StatusEvent) error
}

// Fanout delivers each event to every transport, logging failures and
// carrying on.
type Fanout []Notifier

func (f Fanout) PublishStatusChange(ctx context.Context, event StatusEvent) error {
	for _, n := range f {
		if err := n.PublishStatusChange(ctx, event); err != nil {
			log.Printf("notify: dropping status event for item %s: %v", event.ItemID, err)
		}
	}
	return nil
}
