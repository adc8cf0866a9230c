package hub

import "chatspace-backend/internal/models"

// wire event names, client to server
const (
	SendMessage        = "sendMessage"
	SendChannelMessage = "send-channel-message"
)

// wire event names, server to client
const (
	ReceiveMessage        = "receiveMessage"
	ReceiveChannelMessage = "receive-channel-message"
)

// InboundFrame is what a connected client emits. The sender field is taken
// as claimed; identity is trusted from the session check done before the
// websocket handshake.
type InboundFrame struct {
	Event       string `json:"event"`
	Sender      int64  `json:"sender,string"`
	Recipient   int64  `json:"recipient,string,omitempty"`
	ChannelID   int64  `json:"channelId,string,omitempty"`
	MessageType string `json:"messageType"`
	Content     string `json:"content,omitempty"`
	FileURL     string `json:"fileURL,omitempty"`
}

// OutboundFrame wraps a persisted, identity-resolved message for delivery.
type OutboundFrame struct {
	Event   string         `json:"event"`
	Message models.Message `json:"message"`
}
