package websocket

import (
	"context"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/ht12d/pkg/framework"
	"github.com/robotalks/ht12d/pkg/msgs"
)

// DefaultQueueSize is the number of messages buffered per client.
const DefaultQueueSize = 16

// DefaultPath is where the Hub accepts websocket connections.
const DefaultPath = "/ws"

// Hub broadcasts messages to connected clients. A client whose queue is
// full misses the message. New clients receive the last Status first.
type Hub struct {
	Addr      string
	Path      string
	QueueSize int

	lock    sync.Mutex
	clients map[*client]struct{}
	status  []byte
	dropped uint64
}

type client struct {
	conn *Conn
	out  chan []byte
}

// NewHub creates a Hub listening on addr.
func NewHub(addr string) *Hub {
	return &Hub{Addr: addr, Path: DefaultPath, QueueSize: DefaultQueueSize}
}

// Name implements framework.Named.
func (h *Hub) Name() string {
	return "websocket:" + h.Addr
}

// Handler returns the websocket handler serving clients.
func (h *Hub) Handler() websocket.Handler {
	return websocket.Handler(h.serve)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

// Dropped returns the number of messages not delivered to slow clients.
func (h *Hub) Dropped() uint64 {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.dropped
}

// Publish implements receiver.Sink.
func (h *Hub) Publish(ctx context.Context, msg msgs.Message) error {
	payload, err := msgs.Encode(msg)
	if err != nil {
		return err
	}
	h.lock.Lock()
	defer h.lock.Unlock()
	if _, ok := msg.(*msgs.Status); ok {
		h.status = payload
	}
	for c := range h.clients {
		select {
		case c.out <- payload:
		default:
			h.dropped++
			glog.V(2).Infof("%s: client %s too slow, message dropped", h.Name(), c.conn.remote())
		}
	}
	return nil
}

// Run implements framework.Runnable.
func (h *Hub) Run(ctx context.Context) error {
	path := h.Path
	if path == "" {
		path = DefaultPath
	}
	mux := http.NewServeMux()
	mux.Handle(path, h.Handler())
	srv := &http.Server{Addr: h.Addr, Handler: mux}
	glog.Infof("%s: serving %s", h.Name(), path)
	err := fx.RunWithContextCloser(ctx, srv, srv.ListenAndServe)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (h *Hub) add(c *client) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.clients == nil {
		h.clients = make(map[*client]struct{})
	}
	h.clients[c] = struct{}{}
	if h.status != nil {
		c.out <- h.status
	}
}

func (h *Hub) remove(c *client) {
	h.lock.Lock()
	delete(h.clients, c)
	h.lock.Unlock()
}

func (h *Hub) serve(ws *websocket.Conn) {
	size := h.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	c := &client{conn: Wrap(ws), out: make(chan []byte, size)}
	h.add(c)
	defer h.remove(c)
	glog.V(2).Infof("%s: client %s connected", h.Name(), c.conn.remote())

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, err := c.conn.ReadPacket(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			glog.V(2).Infof("%s: client %s disconnected", h.Name(), c.conn.remote())
			return
		case pkt := <-c.out:
			if err := c.conn.WritePacket(pkt); err != nil {
				glog.V(2).Infof("%s: client %s write error: %v", h.Name(), c.conn.remote(), err)
				ws.Close()
				return
			}
		}
	}
}

func (c *Conn) remote() string {
	if r := (*websocket.Conn)(c).Request(); r != nil {
		return r.RemoteAddr
	}
	return "?"
}
