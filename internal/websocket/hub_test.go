package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dom/qa-assessment/internal/domain"
	"github.com/dom/qa-assessment/internal/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newRunningHub(t *testing.T) (*Hub, *metrics.Metrics) {
	t.Helper()
	m := metrics.New()
	hub := NewHub(zap.NewNop(), m)
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub, m
}

func receive(t *testing.T, c *Client) *Message {
	t.Helper()
	select {
	case data, ok := <-c.send:
		require.True(t, ok, "client channel closed")
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return &msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestHub_PublishReachesEveryClient(t *testing.T) {
	hub, m := newRunningHub(t)

	a := NewClient(hub, nil, uuid.New(), "")
	b := NewClient(hub, nil, uuid.New(), "")
	require.True(t, hub.Register(a))
	require.True(t, hub.Register(b))

	post := &domain.Post{ID: uuid.New(), Title: "Hello", Content: "World", AuthorID: a.UserID()}
	hub.Publish(domain.PostEvent{Type: domain.PostCreated, Post: post})

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		assert.Equal(t, MessageTypePostCreated, msg.Type)

		var got domain.Post
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, post.ID, got.ID)
		assert.Equal(t, "Hello", got.Title)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FeedConnections))
}

func TestHub_UnregisterClosesClient(t *testing.T) {
	hub, _ := newRunningHub(t)

	c := NewClient(hub, nil, uuid.New(), "")
	require.True(t, hub.Register(c))
	hub.Unregister(c)

	select {
	case _, ok := <-c.send:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("client was not closed")
	}
}

func TestHub_RevokeSessionClosesOnlyThatSession(t *testing.T) {
	hub, m := newRunningHub(t)

	user := uuid.New()
	revoked := NewClient(hub, nil, user, "session-a")
	sameSession := NewClient(hub, nil, user, "session-a")
	otherSession := NewClient(hub, nil, user, "session-b")
	for _, c := range []*Client{revoked, sameSession, otherSession} {
		require.True(t, hub.Register(c))
	}

	hub.RevokeSession("session-a")
	hub.Publish(domain.PostEvent{Type: domain.PostCreated, Post: &domain.Post{ID: uuid.New()}})

	for _, c := range []*Client{revoked, sameSession} {
		_, ok := <-c.send
		assert.False(t, ok, "revoked client must be closed before later events")
	}
	assert.Equal(t, MessageTypePostCreated, receive(t, otherSession).Type)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FeedConnections))

	hub.RevokeSession("unknown") // no-op
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	hub, m := newRunningHub(t)

	slow := NewClient(hub, nil, uuid.New(), "")
	require.True(t, hub.Register(slow))

	post := &domain.Post{ID: uuid.New()}
	for i := 0; i < cap(slow.send); i++ {
		hub.Publish(domain.PostEvent{Type: domain.PostUpdated, Post: post})
	}
	require.Eventually(t, func() bool {
		return len(slow.send) == cap(slow.send)
	}, 2*time.Second, 5*time.Millisecond)

	hub.Publish(domain.PostEvent{Type: domain.PostUpdated, Post: post})
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.FeedConnections) == 0
	}, 2*time.Second, 5*time.Millisecond)

	drained := 0
	for range slow.send {
		drained++
	}
	assert.Equal(t, cap(slow.send), drained)
}

func TestHub_StopClosesClientsAndRejectsRegistration(t *testing.T) {
	m := metrics.New()
	hub := NewHub(zap.NewNop(), m)
	go hub.Run()

	c := NewClient(hub, nil, uuid.New(), "")
	require.True(t, hub.Register(c))

	hub.Stop()
	hub.Stop() // idempotent

	_, ok := <-c.send
	assert.False(t, ok)
	assert.False(t, hub.Register(NewClient(hub, nil, uuid.New(), "")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.FeedConnections))

	// Publishing after stop must not block.
	hub.Publish(domain.PostEvent{Type: domain.PostDeleted, Post: &domain.Post{}})
}
