package events

import "context"

// Event types
const (
	EventLeaseCreated      = "lease_created"
	EventRentPaid          = "rent_paid"
	EventRentOverdue       = "rent_overdue"
	EventLeaseCompleted    = "lease_completed"
	EventLeaseTerminated   = "lease_terminated"
	EventReleaseInitiated  = "release_initiated"
	EventReleaseConfirmed  = "release_confirmed"
	EventEscrowReleased    = "escrow_released"
	EventSettleRequested   = "settle_requested"
	EventEscrowSettled     = "escrow_settled"
	EventDisputeRaised     = "dispute_raised"
	EventDisputeResolved   = "dispute_resolved"
	EventListingStatusSync = "listing_status_sync"
)

// Streams
const (
	StreamLease   = "events:lease"
	StreamEscrow  = "events:escrow"
	StreamDispute = "events:dispute"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
