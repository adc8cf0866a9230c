package hub

import (
	"context"
	"fmt"

	"chatspace-backend/internal/store"
)

// relayDirect persists an authored direct message, re-reads it with sender
// and recipient identity resolved, then pushes it to whichever of the two
// parties has a live connection. Persistence always completes before any
// delivery attempt; an offline recipient only sees the message later through
// the history endpoint.
func (h *Hub) relayDirect(ctx context.Context, in InboundFrame) error {
	messageID, err := h.messages.Create(ctx, store.MessageDraft{
		SenderID:    in.Sender,
		RecipientID: in.Recipient,
		MessageType: in.MessageType,
		Content:     in.Content,
		FileURL:     in.FileURL,
	})
	if err != nil {
		return fmt.Errorf("persist direct message: %w", err)
	}

	msg, err := h.messages.FindByID(ctx, messageID)
	if err != nil {
		return fmt.Errorf("resolve direct message [%d]: %w", messageID, err)
	}

	frame := OutboundFrame{Event: ReceiveMessage, Message: msg}
	h.fanOut([]int64{in.Recipient, in.Sender}, frame)

	return nil
}

// relayChannel persists the message, links it to the channel (refreshing the
// channel's updated time), then fans the resolved payload out to every member
// and the admin with a live connection. Both durable writes complete before
// any delivery.
func (h *Hub) relayChannel(ctx context.Context, in InboundFrame) error {
	messageID, err := h.messages.Create(ctx, store.MessageDraft{
		SenderID:    in.Sender,
		MessageType: in.MessageType,
		Content:     in.Content,
		FileURL:     in.FileURL,
	})
	if err != nil {
		return fmt.Errorf("persist channel message: %w", err)
	}

	msg, err := h.messages.FindByID(ctx, messageID)
	if err != nil {
		return fmt.Errorf("resolve channel message [%d]: %w", messageID, err)
	}

	if err := h.channels.AppendMessage(ctx, in.ChannelID, messageID); err != nil {
		return fmt.Errorf("append message [%d] to channel [%d]: %w", messageID, in.ChannelID, err)
	}

	members, admin, err := h.channels.LoadMembersAndAdmin(ctx, in.ChannelID)
	if err != nil {
		return fmt.Errorf("load members of channel [%d]: %w", in.ChannelID, err)
	}

	msg.ChannelID = in.ChannelID

	frame := OutboundFrame{Event: ReceiveChannelMessage, Message: msg}
	h.fanOut(append(members, admin), frame)

	return nil
}

// fanOut delivers one frame to the live connection of every listed user,
// at most once per user even when the list repeats (an admin who is also a
// member, or a sender messaging themselves).
func (h *Hub) fanOut(userIDs []int64, frame OutboundFrame) {
	seen := make(map[int64]struct{}, len(userIDs))

	for _, userID := range userIDs {
		if _, done := seen[userID]; done {
			continue
		}
		seen[userID] = struct{}{}

		connID, online := h.registry.Get(userID)
		if !online {
			continue
		}

		h.deliver(connID, frame)
	}
}
