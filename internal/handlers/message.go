package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"chatspace-backend/internal/fileHandlers"
	"chatspace-backend/internal/models"
)

// GetMessages returns the full direct-message history between the caller and
// one other user, oldest first. Live delivery happens over the websocket;
// this is how an offline recipient catches up.
func GetMessages(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(UserIDKeyType{}).(int64)

	type MessagesRequest struct {
		ID int64 `json:"id,string"`
	}

	var request MessagesRequest
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	if request.ID == 0 {
		http.Error(w, "Both sender and recipient are required", http.StatusBadRequest)
		return
	}

	rows, err := db.Query(`
		SELECT id, sender_id, recipient_id, message_type, content, file_url, timestamp
		FROM messages
		WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)
		ORDER BY timestamp ASC
		`, userID, request.ID, request.ID, userID)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	messages := []models.Message{}

	for rows.Next() {
		var msg models.Message
		var recipientID sql.NullInt64
		var content, fileURL sql.NullString

		err := rows.Scan(&msg.ID, &msg.SenderID, &recipientID, &msg.MessageType, &content, &fileURL, &msg.Timestamp)
		if err != nil {
			sugar.Error(err)
			http.Error(w, "", http.StatusInternalServerError)
			return
		}

		msg.RecipientID = recipientID.Int64
		msg.Content = content.String
		msg.FileURL = fileURL.String

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

// UploadFile stores a chat attachment and returns the path the sender should
// put into a file message's fileURL.
func UploadFile(w http.ResponseWriter, r *http.Request) {
	filePath, err := fileHandlers.SaveChatFile(r)
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "File is required!", http.StatusBadRequest)
		return
	}

	err = json.NewEncoder(w).Encode(map[string]string{"filePath": filePath})
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}
