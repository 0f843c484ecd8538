package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ht12d/pkg/ht12e"
	"github.com/robotalks/ht12d/pkg/msgs"
)

func TestHubBroadcast(t *testing.T) {
	h := NewHub("")
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	at := time.Unix(1600000000, 0)
	require.NoError(t, h.Publish(context.Background(), msgs.NewStatus("gate", 333*time.Microsecond, at)))

	conn, err := Dial("ws"+strings.TrimPrefix(srv.URL, "http"), "http://localhost/")
	require.NoError(t, err)
	defer conn.Close()

	msg, err := conn.ReadMessage()
	require.NoError(t, err)
	status, ok := msg.(*msgs.Status)
	require.True(t, ok)
	require.Equal(t, "gate", status.Receiver)

	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, h.Publish(context.Background(), msgs.NewFrame("gate", 0x5a5, 333*time.Microsecond, at)))
	msg, err = conn.ReadMessage()
	require.NoError(t, err)
	frame, ok := msg.(*msgs.Frame)
	require.True(t, ok)
	require.Equal(t, ht12e.Word(0x5a5), frame.DecodedWord())

	conn.Close()
	require.Eventually(t, func() bool { return h.Clients() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubDropsForSlowClient(t *testing.T) {
	h := NewHub("")
	c := &client{conn: &Conn{}, out: make(chan []byte, 1)}
	h.add(c)

	frame := msgs.NewFrame("gate", 1, 333*time.Microsecond, time.Unix(1, 0))
	require.NoError(t, h.Publish(context.Background(), frame))
	require.NoError(t, h.Publish(context.Background(), frame))
	require.Equal(t, uint64(1), h.Dropped())
	require.Len(t, c.out, 1)

	h.remove(c)
	require.Equal(t, 0, h.Clients())
}
