package notify

import "github.com/clemhq/clem/internal/store"

// Broadcast event types.
const (
	EventClaimProcessed = "claim_processed"
	EventClaimUpdated   = "claim_updated"
)

// ClaimEvents adapts a hub to the claims service notifier interface.
// Freshly processed claims broadcast as claim_processed; status changes
// broadcast as claim_updated.
type ClaimEvents struct {
	Hub *Hub
}

func (e ClaimEvents) NotifyClaim(c store.Claim) {
	eventType := EventClaimProcessed
	if c.Status != store.StatusPending {
		eventType = EventClaimUpdated
	}
	e.Hub.Broadcast(eventType, c)
}
