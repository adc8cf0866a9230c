package store

import (
	"context"
	"errors"
	"fmt"

	"chatspace-backend/internal/models"
)

var (
	ErrBadMessageType     = errors.New("message type must be text or file")
	ErrMissingContent     = errors.New("text message requires content")
	ErrMissingFileURL     = errors.New("file message requires a file URL")
	ErrConflictingPayload = errors.New("message can't carry both content and a file URL")
	ErrNotFound           = errors.New("not found")
)

// MessageDraft is what a client supplies when authoring a message. The ID and
// timestamp are assigned at persistence time.
type MessageDraft struct {
	SenderID    int64
	RecipientID int64 // zero for channel messages
	MessageType string
	Content     string
	FileURL     string
}

// Validate enforces the payload kind rules: exactly one of content / fileURL,
// matching the message type.
func (d MessageDraft) Validate() error {
	switch d.MessageType {
	case models.MessageTypeText:
		if d.Content == "" {
			return ErrMissingContent
		}
		if d.FileURL != "" {
			return ErrConflictingPayload
		}
	case models.MessageTypeFile:
		if d.FileURL == "" {
			return ErrMissingFileURL
		}
		if d.Content != "" {
			return ErrConflictingPayload
		}
	default:
		return fmt.Errorf("%w, got %q", ErrBadMessageType, d.MessageType)
	}
	return nil
}

// MessageGateway persists messages and re-reads them with sender and
// recipient identity resolved to display attributes.
type MessageGateway interface {
	Create(ctx context.Context, draft MessageDraft) (int64, error)
	FindByID(ctx context.Context, id int64) (models.Message, error)
}

// ChannelGateway links messages to channels and resolves delivery targets.
// AppendMessage is a separate durable write from MessageGateway.Create; a
// crash between the two leaves a persisted message not linked to any channel.
type ChannelGateway interface {
	AppendMessage(ctx context.Context, channelID int64, messageID int64) error
	LoadMembersAndAdmin(ctx context.Context, channelID int64) (members []int64, admin int64, err error)
}
