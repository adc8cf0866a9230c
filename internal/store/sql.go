package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"chatspace-backend/internal/models"
	"chatspace-backend/internal/snowflake"
)

// SQL implements the gateways over database/sql, so it works against both
// mysql and the self-contained sqlite database.
type SQL struct {
	db *sql.DB
}

func NewSQL(db *sql.DB) *SQL {
	return &SQL{db: db}
}

func (s *SQL) Create(ctx context.Context, draft MessageDraft) (int64, error) {
	if err := draft.Validate(); err != nil {
		return 0, err
	}

	messageID, err := snowflake.Generate()
	if err != nil {
		return 0, err
	}

	// the ID already embeds the creation instant, reuse it so timestamp
	// ordering and ID ordering can't disagree
	timestamp := time.UnixMilli(snowflake.ExtractTimestamp(messageID)).UTC()

	var recipientID any
	if draft.RecipientID != 0 {
		recipientID = draft.RecipientID
	}

	var content, fileURL any
	if draft.Content != "" {
		content = draft.Content
	}
	if draft.FileURL != "" {
		fileURL = draft.FileURL
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO messages VALUES(?, ?, ?, ?, ?, ?, ?)",
		messageID, draft.SenderID, recipientID, draft.MessageType, content, fileURL, timestamp)
	if err != nil {
		return 0, err
	}

	return messageID, nil
}

func (s *SQL) FindByID(ctx context.Context, id int64) (models.Message, error) {
	query := `
		SELECT
			messages.id,
			messages.sender_id,
			messages.recipient_id,
			messages.message_type,
			messages.content,
			messages.file_url,
			messages.timestamp,
			sender.email,
			sender.first_name,
			sender.last_name,
			sender.image,
			sender.color,
			recipient.email,
			recipient.first_name,
			recipient.last_name,
			recipient.image,
			recipient.color
		FROM
			messages
		JOIN
			users sender ON messages.sender_id = sender.id
		LEFT JOIN
			users recipient ON messages.recipient_id = recipient.id
		WHERE
			messages.id = ?
	`

	var msg models.Message
	var recipientID sql.NullInt64
	var content, fileURL, senderImage sql.NullString
	var recipientEmail, recipientFirst, recipientLast, recipientImage sql.NullString
	var recipientColor sql.NullInt64

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&msg.ID,
		&msg.SenderID,
		&recipientID,
		&msg.MessageType,
		&content,
		&fileURL,
		&msg.Timestamp,
		&msg.Sender.Email,
		&msg.Sender.FirstName,
		&msg.Sender.LastName,
		&senderImage,
		&msg.Sender.Color,
		&recipientEmail,
		&recipientFirst,
		&recipientLast,
		&recipientImage,
		&recipientColor,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrNotFound
	} else if err != nil {
		return models.Message{}, err
	}

	msg.Content = content.String
	msg.FileURL = fileURL.String
	msg.Sender.ID = msg.SenderID
	msg.Sender.Image = senderImage.String

	if recipientID.Valid {
		msg.RecipientID = recipientID.Int64
		msg.Recipient = &models.User{
			ID:        recipientID.Int64,
			Email:     recipientEmail.String,
			FirstName: recipientFirst.String,
			LastName:  recipientLast.String,
			Image:     recipientImage.String,
			Color:     int(recipientColor.Int64),
		}
	}

	return msg, nil
}

func (s *SQL) AppendMessage(ctx context.Context, channelID int64, messageID int64) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE channels SET updated_at = ? WHERE id = ?", time.Now().UTC(), channelID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO channel_messages VALUES(?, ?)", channelID, messageID)
	return err
}

func (s *SQL) LoadMembersAndAdmin(ctx context.Context, channelID int64) ([]int64, int64, error) {
	var admin int64
	err := s.db.QueryRowContext(ctx,
		"SELECT admin_id FROM channels WHERE id = ?", channelID).Scan(&admin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, ErrNotFound
	} else if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM channel_members WHERE channel_id = ?", channelID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	members := []int64{}

	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			return nil, 0, err
		}
		members = append(members, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return members, admin, nil
}
