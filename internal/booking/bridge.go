package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vogiaan1904/ticketbottle-museum/internal/repository"
)

type Key string

const (
	KeyTicketSelection  Key = "ticketSelection"
	KeyBookingData      Key = "bookingData"
	KeyConfirmationData Key = "confirmationData"

	KeyTicketDraft    Key = "ticketDraft"
	KeyLockerDraft    Key = "lockerDraft"
	KeyCheckoutState  Key = "checkoutState"
	KeyBookingHistory Key = "bookingHistory"
)

// Bridge is the typed view of one session's stored values.
type Bridge struct {
	store     repository.SessionStore
	sessionID string
}

func NewBridge(store repository.SessionStore, sessionID string) *Bridge {
	return &Bridge{store: store, sessionID: sessionID}
}

func (b *Bridge) SessionID() string {
	return b.sessionID
}

// Save overwrites key with v.
func Save[T any](ctx context.Context, b *Bridge, key Key, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return b.store.Save(ctx, b.sessionID, string(key), data)
}

// Load reports ok=false when key was never saved or has been cleared.
func Load[T any](ctx context.Context, b *Bridge, key Key) (v T, ok bool, err error) {
	data, err := b.store.Load(ctx, b.sessionID, string(key))
	if errors.Is(err, repository.ErrNotFound) {
		return v, false, nil
	}
	if err != nil {
		return v, false, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return v, true, nil
}

// Clear drops every key of the session.
func (b *Bridge) Clear(ctx context.Context) error {
	return b.store.Clear(ctx, b.sessionID)
}
