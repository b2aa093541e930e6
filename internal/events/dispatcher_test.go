package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var got []string

	d.Subscribe(EventComplaintStatusChanged, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.ComplaintID)
		return errors.New("boom")
	})
	d.Subscribe(EventComplaintStatusChanged, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.ComplaintID)
		return nil
	})
	d.Subscribe(EventComplaintCreated, func(_ context.Context, e Event) error {
		got = append(got, "created:"+e.ComplaintID)
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventComplaintStatusChanged, ComplaintID: "7"}))
	assert.Equal(t, []string{"first:7", "second:7"}, got)
}

func TestAMQPForwarderWithoutURLFails(t *testing.T) {
	f := NewAMQPForwarder("", "complaint.status_changed", nil)
	err := f.Handle(context.Background(), Event{Type: EventComplaintStatusChanged})
	assert.Error(t, err)
	f.Close()
}
