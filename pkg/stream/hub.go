package stream

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cfoust/vecsim/pkg/particles"

	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
	"golang.org/x/time/rate"
	"nhooyr.io/websocket"
)

const (
	CLIENT_MESSAGE_LIMIT int = 16
)

type client struct {
	host      string
	send      chan []byte
	closeSlow func()
}

// Hub fans frames out to every connected websocket client.
type Hub struct {
	clients      map[*client]struct{}
	mutex        deadlock.Mutex
	limiter      *rate.Limiter
	writeTimeout time.Duration
}

func NewHub(maxFPS int, writeTimeout time.Duration) *Hub {
	return &Hub{
		clients:      make(map[*client]struct{}),
		limiter:      rate.NewLimiter(rate.Limit(maxFPS), 1),
		writeTimeout: writeTimeout,
	}
}

func WriteTimeout(ctx context.Context, timeout time.Duration, c *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Write(ctx, websocket.MessageBinary, msg)
}

func (h *Hub) addClient(c *client) {
	h.mutex.Lock()
	h.clients[c] = struct{}{}
	h.mutex.Unlock()
}

func (h *Hub) removeClient(c *client) {
	h.mutex.Lock()
	delete(h.clients, c)
	h.mutex.Unlock()
}

func (h *Hub) NumClients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Broadcast sends frame to every client unless doing so would exceed the
// frame rate. Clients whose queue is full are dropped from the hub and
// disconnected. It reports whether the frame was sent.
func (h *Hub) Broadcast(frame particles.Frame) (bool, error) {
	if !h.limiter.Allow() {
		return false, nil
	}

	msg, err := cbor.Marshal(frame)
	if err != nil {
		return false, err
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// Only close a slow client once
			delete(h.clients, c)
			go c.closeSlow()
		}
	}

	return true, nil
}

func (h *Hub) handleClient(ctx context.Context, conn *websocket.Conn, host string) error {
	c := &client{
		host: host,
		send: make(chan []byte, CLIENT_MESSAGE_LIMIT),
		closeSlow: func() {
			conn.Close(websocket.StatusPolicyViolation, "connection too slow to keep up with frames")
		},
	}

	h.addClient(c)
	defer h.removeClient(c)

	logger := log.With().Str("host", host).Logger()
	logger.Info().Msg("client joined")

	// Viewers never send anything; this also notices when they leave
	ctx = conn.CloseRead(ctx)

	for {
		select {
		case msg := <-c.send:
			err := WriteTimeout(ctx, h.writeTimeout, conn, msg)
			if err != nil {
				logger.Error().Err(err).Msg("client missed write timeout; disconnecting")
				return err
			}
		case <-ctx.Done():
			logger.Info().Msg("client left")
			return ctx.Err()
		}
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Error().Err(err).Msg("error accepting client connection")
		return
	}

	defer conn.Close(websocket.StatusInternalError, "operational fault during stream")

	host := r.RemoteAddr
	if original, ok := r.Header["X-Forwarded-For"]; ok {
		host = original[0]
	}

	err = h.handleClient(r.Context(), conn, host)
	if errors.Is(err, context.Canceled) {
		return
	}
	if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
		websocket.CloseStatus(err) == websocket.StatusGoingAway {
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("stream to client failed")
	}
}
