// Package ws mirrors dispatched frames to browser previews over websockets.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/coreman2200/arcaluminis-fx/internal/color"
	"github.com/coreman2200/arcaluminis-fx/internal/effect"
	"github.com/coreman2200/arcaluminis-fx/internal/topology"
)

// DefaultThrottle caps preview updates at about 20 fps per device.
const DefaultThrottle = 50 * time.Millisecond

const writeTimeout = 200 * time.Millisecond

type Hub struct {
	log      zerolog.Logger
	throttle time.Duration
	devices  func() []*topology.Device
	up       websocket.Upgrader

	mu        sync.RWMutex
	clients   map[*websocket.Conn]bool
	lastEmit  map[*topology.Device]time.Time
	frameID   uint64
	startTime time.Time
}

// NewHub builds a hub. devices supplies the topology sent to new clients.
func NewHub(log zerolog.Logger, devices func() []*topology.Device) *Hub {
	return &Hub{
		log:       log.With().Str("component", "ws").Logger(),
		throttle:  DefaultThrottle,
		devices:   devices,
		up:        websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:   map[*websocket.Conn]bool{},
		lastEmit:  map[*topology.Device]time.Time{},
		startTime: time.Now(),
	}
}

// SetThrottle changes the minimum interval between previews of one device.
func (h *Hub) SetThrottle(d time.Duration) {
	h.mu.Lock()
	h.throttle = d
	h.mu.Unlock()
}

type Frame struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	Device  int    `json:"device"`
	Name    string `json:"name"`
	RGB     []byte `json:"rgb"`
}

type DeviceInfo struct {
	Index int     `json:"index"`
	Name  string  `json:"name"`
	LEDs  int     `json:"leds"`
	Grid  [][]int `json:"grid"`
}

type Hello struct {
	Devices []DeviceInfo `json:"devices"`
}

// Tee returns a sink that forwards to next and previews every accepted frame.
func (h *Hub) Tee(next effect.Sink) effect.Sink {
	return tee{next: next, hub: h}
}

type tee struct {
	next effect.Sink
	hub  *Hub
}

func (t tee) SetDeviceColors(ctx context.Context, dev *topology.Device, colors []color.Color, force bool) error {
	if err := t.next.SetDeviceColors(ctx, dev, colors, force); err != nil {
		return err
	}
	t.hub.Broadcast(dev, colors)
	return nil
}

// Broadcast sends a frame to every client unless the device was previewed
// within the throttle interval.
func (h *Hub) Broadcast(dev *topology.Device, colors []color.Color) {
	h.mu.Lock()
	now := time.Now()
	if h.lastEmit[dev].Add(h.throttle).After(now) || len(h.clients) == 0 {
		h.mu.Unlock()
		return
	}
	h.lastEmit[dev] = now
	h.frameID++
	f := Frame{T: now.UnixNano(), FrameID: h.frameID, Device: dev.Index, Name: dev.Name, RGB: pack(colors)}
	h.mu.Unlock()

	b, _ := json.Marshal(f)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		_ = c.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			h.log.Debug().Err(err).Msg("write frame")
		}
	}
}

func pack(colors []color.Color) []byte {
	rgb := make([]byte, 0, 3*len(colors))
	for _, c := range colors {
		rgb = append(rgb, c.R, c.G, c.B)
	}
	return rgb
}

func (h *Hub) hello() Hello {
	var out Hello
	if h.devices == nil {
		return out
	}
	for _, d := range h.devices() {
		out.Devices = append(out.Devices, DeviceInfo{Index: d.Index, Name: d.Name, LEDs: d.LEDCount, Grid: d.Grid()})
	}
	return out
}

// HandleFrames upgrades the request and streams frames until the client leaves.
func (h *Hub) HandleFrames(w http.ResponseWriter, r *http.Request) {
	conn, err := h.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	b, _ := json.Marshal(h.hello())
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		conn.Close()
		return
	}
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
	h.log.Debug().Str("remote", r.RemoteAddr).Msg("preview client joined")

	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

type Stats struct {
	Frames  uint64  `json:"preview_frames"`
	Clients int     `json:"preview_clients"`
	Uptime  float64 `json:"uptime_s"`
}

func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Stats{Frames: h.frameID, Clients: len(h.clients), Uptime: time.Since(h.startTime).Seconds()}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		_ = c.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeTimeout))
		c.Close()
	}
}
