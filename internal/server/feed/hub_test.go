package feed

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/logitrack/internal/common"
	"github.com/dmitrijs2005/logitrack/internal/logging"
	"github.com/dmitrijs2005/logitrack/internal/server/models"
	"github.com/dmitrijs2005/logitrack/internal/server/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	err    error
	closed bool
}

func (s *recordingSink) Publish(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

func (s *recordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *recordingSink) snapshot() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case e := <-sub.C:
		return e
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return Event{}
	}
}

func TestHub_FiltersByCollection(t *testing.T) {
	h := NewHub(logging.Nop{}, 4)
	defer h.Close()

	containers := h.Subscribe(Containers)
	defer containers.Close()
	all := h.Subscribe()
	defer all.Close()

	ctx := context.Background()
	h.Publish(ctx, Event{Collection: Bookings, Op: OpCreated, ID: "b-1"})
	h.Publish(ctx, Event{Collection: Containers, Op: OpUpdated, ID: "c-1"})

	assert.Equal(t, "c-1", receive(t, containers).ID)
	assert.Equal(t, "b-1", receive(t, all).ID)
	assert.Equal(t, "c-1", receive(t, all).ID)

	select {
	case e := <-containers.C:
		t.Fatalf("unexpected event %+v", e)
	default:
	}
}

func TestHub_SlowSubscriberIsLaggedNotBlocking(t *testing.T) {
	h := NewHub(logging.Nop{}, 2)
	defer h.Close()

	sub := h.Subscribe(Containers)
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			h.Publish(context.Background(), Event{Collection: Containers, Op: OpCreated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}

	assert.Len(t, sub.C, 2)
	assert.True(t, sub.Lagged())
	assert.False(t, sub.Lagged(), "lagged flag resets after being read")
}

func TestHub_CloseEndsSubscriptions(t *testing.T) {
	sink := &recordingSink{}
	h := NewHub(logging.Nop{}, 1, sink)
	sub := h.Subscribe()

	require.NoError(t, h.Close())
	_, ok := <-sub.C
	assert.False(t, ok)
	assert.True(t, sink.closed)

	// closing twice and publishing after close are no-ops
	require.NoError(t, h.Close())
	h.Publish(context.Background(), Event{Collection: Users})
	sub.Close()

	late := h.Subscribe(Users)
	_, ok = <-late.C
	assert.False(t, ok)
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	h := NewHub(logging.Nop{}, 1)
	defer h.Close()

	sub := h.Subscribe()
	sub.Close()
	sub.Close()

	_, ok := <-sub.C
	assert.False(t, ok)
}

func TestHub_ForwardsToSinks(t *testing.T) {
	ok := &recordingSink{}
	failing := &recordingSink{err: errors.New("broker down")}
	h := NewHub(logging.Nop{}, 1, failing, ok)

	h.Publish(context.Background(), Event{Collection: Containers, Op: OpDeleted, ID: "c-9"})
	h.Publish(context.Background(), Event{Collection: Bookings, Op: OpCreated, ID: "b-1"})

	// Close drains the sink queue
	require.NoError(t, h.Close())

	got := ok.snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, "containers/c-9", got[0].Key())
	assert.Len(t, failing.snapshot(), 2, "a failing sink does not stop delivery")
}

func TestHub_EmitStampsActor(t *testing.T) {
	h := NewHub(logging.Nop{}, 1)
	defer h.Close()
	sub := h.Subscribe(Bookings)
	defer sub.Close()

	ctx := session.WithSession(context.Background(), session.Session{Email: "dispatch@logitrack.com", Role: models.RoleLogistics})
	h.Emit(ctx, Bookings, OpCreated, "b-1", models.Booking{ID: "b-1", BookingNumber: "BK-1", Qty: 2})

	e := receive(t, sub)
	assert.Equal(t, "dispatch", e.Actor)
	assert.False(t, e.At.IsZero())

	var b models.Booking
	require.NoError(t, json.Unmarshal(e.Data, &b))
	assert.Equal(t, "BK-1", b.BookingNumber)
}

func TestHub_EmitDropsUnencodable(t *testing.T) {
	h := NewHub(logging.Nop{}, 1)
	defer h.Close()
	sub := h.Subscribe()
	defer sub.Close()

	h.Emit(context.Background(), Types, OpCreated, "t-1", make(chan int))
	assert.Len(t, sub.C, 0)
}

func TestNewEvent_NilData(t *testing.T) {
	e, err := NewEvent(context.Background(), Locations, OpDeleted, "l-1", nil)
	require.NoError(t, err)
	assert.Nil(t, e.Data)
	assert.Equal(t, "User", e.Actor)
}

func TestParseCollections(t *testing.T) {
	got, err := ParseCollections(nil)
	require.NoError(t, err)
	assert.Equal(t, Collections, got)

	got, err = ParseCollections([]string{"containers", "bookings", "containers"})
	require.NoError(t, err)
	assert.Equal(t, []Collection{Containers, Bookings}, got)

	_, err = ParseCollections([]string{"trucks"})
	require.ErrorIs(t, err, common.ErrorValidation)
	assert.EqualError(t, err, `unknown collection "trucks"`)
}
