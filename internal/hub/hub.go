package hub

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"chatspace-backend/internal/snowflake"
	"chatspace-backend/internal/store"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client is one live websocket connection. Frames are pushed through a
// buffered channel so deliveries never block a relay on a slow socket.
type Client struct {
	ConnID int64
	UserID int64 // zero when the handshake carried no user ID
	frames chan OutboundFrame
}

// Hub owns the presence registry and relays authored messages to the live
// connections of their audience. One Hub per process; presence is
// process-local, so horizontally scaled deployments must pin a user's
// connections to a single process.
type Hub struct {
	sugar    *zap.SugaredLogger
	registry *Registry
	messages store.MessageGateway
	channels store.ChannelGateway

	mutex   sync.Mutex
	clients map[int64]*Client
}

func New(sugar *zap.SugaredLogger, messages store.MessageGateway, channels store.ChannelGateway) *Hub {
	return &Hub{
		sugar:    sugar,
		registry: NewRegistry(),
		messages: messages,
		channels: channels,
		clients:  make(map[int64]*Client),
	}
}

// HandleClient upgrades the request and runs the connection until the client
// goes away. The user identity comes from the userId query parameter; a
// connection without one is kept open but never registered, so nothing can be
// delivered to it.
func (h *Hub) HandleClient(w http.ResponseWriter, r *http.Request) {
	var upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.sugar.Error(err)
		return
	}
	defer conn.Close()

	connID, err := snowflake.Generate()
	if err != nil {
		h.sugar.Error(err)
		return
	}

	var userID int64
	if param := r.URL.Query().Get("userId"); param != "" {
		userID, err = strconv.ParseInt(param, 10, 64)
		if err != nil {
			h.sugar.Warnf("Connection [%d] presented a malformed user ID [%s]", connID, param)
			userID = 0
		}
	}

	client := h.register(connID, userID)
	defer h.unregister(client)

	if userID == 0 {
		h.sugar.Warnf("User ID not provided during connection [%d], accepting unregistered", connID)
	} else {
		h.sugar.Debugf("User ID [%d] connected with connection ID [%d]", userID, connID)
	}

	// single writer per connection
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for frame := range client.frames {
			if err := conn.WriteJSON(frame); err != nil {
				h.sugar.Debugf("Write to connection [%d] failed: %s", connID, err)
				return
			}
		}
	}()

	for {
		var inbound InboundFrame
		if err := conn.ReadJSON(&inbound); err != nil {
			h.sugar.Debugf("Connection [%d] closed: %s", connID, err)
			break
		}

		h.dispatch(context.Background(), inbound)
	}

	h.unregister(client)
	<-writerDone
}

// dispatch runs one inbound event to completion. Failures are logged and the
// event is dropped; the emitting client gets no acknowledgment either way.
func (h *Hub) dispatch(ctx context.Context, inbound InboundFrame) {
	switch inbound.Event {
	case SendMessage:
		if err := h.relayDirect(ctx, inbound); err != nil {
			h.sugar.Errorf("Dropping direct message from user ID [%d]: %s", inbound.Sender, err)
		}
	case SendChannelMessage:
		if err := h.relayChannel(ctx, inbound); err != nil {
			h.sugar.Errorf("Dropping channel message from user ID [%d]: %s", inbound.Sender, err)
		}
	default:
		h.sugar.Debugf("Unknown event [%s] from user ID [%d]", inbound.Event, inbound.Sender)
	}
}

func (h *Hub) register(connID int64, userID int64) *Client {
	client := &Client{
		ConnID: connID,
		UserID: userID,
		frames: make(chan OutboundFrame, 16),
	}

	h.mutex.Lock()
	h.clients[connID] = client
	h.mutex.Unlock()

	if userID != 0 {
		h.registry.Set(userID, connID)
	}

	return client
}

func (h *Hub) unregister(client *Client) {
	h.registry.RemoveByConn(client.ConnID)

	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, exists := h.clients[client.ConnID]; !exists {
		return
	}

	delete(h.clients, client.ConnID)
	close(client.frames)
}

// deliver pushes a frame to one connection. Missing connections and full
// buffers are normal outcomes, not errors; a failed delivery to one target
// never affects the others.
func (h *Hub) deliver(connID int64, frame OutboundFrame) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	client, exists := h.clients[connID]
	if !exists {
		return
	}

	select {
	case client.frames <- frame:
	default:
		h.sugar.Warnf("Connection [%d] is too slow, dropping frame", connID)
	}
}
