package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"chatspace-backend/internal/models"
	"chatspace-backend/internal/snowflake"

	"github.com/go-chi/chi/v5"
)

func CreateChannel(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(UserIDKeyType{}).(int64)

	type ChannelRequest struct {
		Name    string   `json:"name"`
		Members []string `json:"members"`
	}

	var request ChannelRequest
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	if request.Name == "" {
		http.Error(w, "Channel name is required!", http.StatusBadRequest)
		return
	}

	// deduplicate while parsing, the member list comes straight from a picker
	memberSet := make(map[int64]struct{})
	members := []int64{}
	for _, raw := range request.Members {
		memberID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "Some members are not valid Users!", http.StatusBadRequest)
			return
		}
		if _, exists := memberSet[memberID]; exists {
			continue
		}
		memberSet[memberID] = struct{}{}
		members = append(members, memberID)
	}

	validMembers, err := countExistingUsers(members)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	if validMembers != len(members) {
		http.Error(w, "Some members are not valid Users!", http.StatusBadRequest)
		return
	}

	channelID, err := snowflake.Generate()
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC()
	channel := models.Channel{
		ID:        channelID,
		Name:      request.Name,
		AdminID:   userID,
		Members:   members,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = db.Exec("INSERT INTO channels VALUES(?, ?, ?, ?, ?)", channel.ID, channel.Name, channel.AdminID, channel.CreatedAt, channel.UpdatedAt)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	for _, memberID := range members {
		_, err = db.Exec("INSERT INTO channel_members VALUES(?, ?)", channelID, memberID)
		if err != nil {
			sugar.Error(err)
			http.Error(w, "", http.StatusInternalServerError)
			return
		}
	}

	w.WriteHeader(http.StatusCreated)
	err = json.NewEncoder(w).Encode(map[string]models.Channel{"channel": channel})
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}

func countExistingUsers(userIDs []int64) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(userIDs)), ", ")
	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
	}

	var count int
	err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM users WHERE id IN (%s)", placeholders), args...).Scan(&count)
	return count, err
}

// GetUserChannels lists channels the caller belongs to, as member or admin,
// most recently active first.
func GetUserChannels(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(UserIDKeyType{}).(int64)

	rows, err := db.Query(`
		SELECT DISTINCT channels.id, channels.name, channels.admin_id, channels.created_at, channels.updated_at
		FROM channels
		LEFT JOIN channel_members ON channels.id = channel_members.channel_id
		WHERE channels.admin_id = ? OR channel_members.user_id = ?
		ORDER BY channels.updated_at DESC
		`, userID, userID)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	channels := []models.Channel{}

	for rows.Next() {
		var channel models.Channel

		err := rows.Scan(&channel.ID, &channel.Name, &channel.AdminID, &channel.CreatedAt, &channel.UpdatedAt)
		if err != nil {
			sugar.Error(err)
			http.Error(w, "", http.StatusInternalServerError)
			return
		}

		channels = append(channels, channel)
	}

	if err := rows.Err(); err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	err = json.NewEncoder(w).Encode(map[string][]models.Channel{"channels": channels})
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}

// GetChannelMessages returns a channel's history in append order with the
// sender of every message resolved.
func GetChannelMessages(w http.ResponseWriter, r *http.Request) {
	channelID, err := strconv.ParseInt(chi.URLParam(r, "channelId"), 10, 64)
	if err != nil || channelID == 0 {
		http.Error(w, "Invalid channel ID", http.StatusBadRequest)
		return
	}

	var exists bool
	err = db.QueryRow("SELECT EXISTS(SELECT 1 FROM channels WHERE id = ?)", channelID).Scan(&exists)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	if !exists {
		http.Error(w, "Channel not found!", http.StatusNotFound)
		return
	}

	rows, err := db.Query(`
		SELECT
			messages.id,
			messages.sender_id,
			messages.message_type,
			messages.content,
			messages.file_url,
			messages.timestamp,
			users.email,
			users.first_name,
			users.last_name,
			users.image,
			users.color
		FROM
			channel_messages
		JOIN
			messages ON channel_messages.message_id = messages.id
		JOIN
			users ON messages.sender_id = users.id
		WHERE
			channel_messages.channel_id = ?
		ORDER BY
			messages.id ASC
		`, channelID)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	messages := []models.Message{}

	for rows.Next() {
		var msg models.Message
		var content, fileURL, image sql.NullString

		err := rows.Scan(&msg.ID, &msg.SenderID, &msg.MessageType, &content, &fileURL, &msg.Timestamp,
			&msg.Sender.Email, &msg.Sender.FirstName, &msg.Sender.LastName, &image, &msg.Sender.Color)
		if err != nil {
			sugar.Error(err)
			http.Error(w, "", http.StatusInternalServerError)
			return
		}

		msg.ChannelID = channelID
		msg.Content = content.String
		msg.FileURL = fileURL.String
		msg.Sender.ID = msg.SenderID
		msg.Sender.Image = image.String

		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	err = json.NewEncoder(w).Encode(map[string][]models.Message{"messages": messages})
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}
