package stream

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cfoust/vecsim/pkg/particles"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
	"nhooyr.io/websocket"
)

var frames = []particles.Frame{
	{Tick: 1, Particles: [][3]float64{{0, 0, 0}}},
	{Tick: 2, Particles: [][3]float64{{1.5, -2, 0}, {0, 0.25, 0}}},
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("cbor")
	require.NoError(t, err)
	assert.Equal(t, FormatCBOR, format)

	format, err = ParseFormat("yaml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, format)

	_, err = ParseFormat("json")
	assert.Error(t, err)

	_, err = NewEncoder(io.Discard, Format("xml"))
	assert.Error(t, err)
}

func TestEncodeCBOR(t *testing.T) {
	var buffer bytes.Buffer
	encoder, err := NewEncoder(&buffer, FormatCBOR)
	require.NoError(t, err)
	for _, frame := range frames {
		require.NoError(t, encoder.Encode(frame))
	}
	require.NoError(t, encoder.Close())
	assert.Equal(t, 2, encoder.Count())

	decoder := cbor.NewDecoder(&buffer)
	for _, expected := range frames {
		var frame particles.Frame
		require.NoError(t, decoder.Decode(&frame))
		assert.Equal(t, expected, frame)
	}
}

func TestEncodeYAML(t *testing.T) {
	var buffer bytes.Buffer
	encoder, err := NewEncoder(&buffer, FormatYAML)
	require.NoError(t, err)
	for _, frame := range frames {
		require.NoError(t, encoder.Encode(frame))
	}
	require.NoError(t, encoder.Close())

	assert.Contains(t, buffer.String(), "tick: 2")

	decoder := yaml.NewDecoder(&buffer)
	for _, expected := range frames {
		var frame particles.Frame
		require.NoError(t, decoder.Decode(&frame))
		assert.Equal(t, expected, frame)
	}
}

func TestBroadcastRate(t *testing.T) {
	hub := NewHub(1, time.Second)

	sent, err := hub.Broadcast(frames[0])
	require.NoError(t, err)
	assert.True(t, sent)

	sent, err = hub.Broadcast(frames[1])
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestBroadcastSlowClient(t *testing.T) {
	hub := NewHub(1, time.Second)
	hub.limiter = rate.NewLimiter(rate.Inf, 1)

	var closed atomic.Int32
	slow := &client{
		host:      "slow",
		send:      make(chan []byte),
		closeSlow: func() { closed.Add(1) },
	}
	hub.addClient(slow)

	for _, frame := range append(frames, frames...) {
		sent, err := hub.Broadcast(frame)
		require.NoError(t, err)
		assert.True(t, sent)
		assert.Equal(t, 0, hub.NumClients())
	}

	require.Eventually(t, func() bool {
		return closed.Load() == 1
	}, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), closed.Load())
}

func TestHub(t *testing.T) {
	hub := NewHub(1000, time.Second)
	server := httptest.NewServer(hub)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusInternalError, "")

	require.Eventually(t, func() bool {
		return hub.NumClients() == 1
	}, time.Second, 10*time.Millisecond)

	sent, err := hub.Broadcast(frames[1])
	require.NoError(t, err)
	require.True(t, sent)

	typ, msg, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageBinary, typ)

	var frame particles.Frame
	require.NoError(t, cbor.Unmarshal(msg, &frame))
	assert.Equal(t, frames[1], frame)

	conn.Close(websocket.StatusNormalClosure, "")
	require.Eventually(t, func() bool {
		return hub.NumClients() == 0
	}, time.Second, 10*time.Millisecond)
}
