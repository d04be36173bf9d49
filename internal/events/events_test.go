package events

import (
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishJSON(t *testing.T) {
	logger := zerolog.New(io.Discard)
	bus := NewEventBus(&logger)

	var got []Event
	bus.Subscribe(InvoicePaid, func(e Event) error {
		got = append(got, e)
		return nil
	})
	bus.Subscribe(InvoicePaid, func(Event) error {
		return errors.New("handler failure does not stop delivery")
	})

	require.NoError(t, bus.PublishJSON(InvoicePaid, map[string]int64{"invoice_id": 7}))
	require.NoError(t, bus.PublishJSON(BookingCreated, map[string]int64{"booking_id": 1}))

	require.Len(t, got, 1)
	assert.Equal(t, InvoicePaid, got[0].Type)
	assert.NotZero(t, got[0].ID)
	assert.False(t, got[0].CreatedAt.IsZero())

	var payload struct {
		InvoiceID int64 `json:"invoice_id"`
	}
	require.NoError(t, got[0].Decode(&payload))
	assert.Equal(t, int64(7), payload.InvoiceID)
}

func TestEventBus_PublishJSONMarshalError(t *testing.T) {
	bus := NewEventBus(nil)
	err := bus.PublishJSON(BookingCreated, make(chan int))
	assert.Error(t, err)
}
