package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"chatspace-backend/internal/models"
)

func SearchContacts(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(UserIDKeyType{}).(int64)

	type SearchRequest struct {
		SearchItem *string `json:"searchItem"`
	}

	var search SearchRequest
	err := json.NewDecoder(r.Body).Decode(&search)
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	if search.SearchItem == nil {
		http.Error(w, "Search item is required!", http.StatusBadRequest)
		return
	}

	// escape LIKE wildcards so the search item is matched literally
	sanitized := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(*search.SearchItem)
	pattern := "%" + sanitized + "%"

	rows, err := db.Query(`
		SELECT id, email, first_name, last_name, image, color, profile_setup
		FROM users
		WHERE id != ? AND (first_name LIKE ? OR last_name LIKE ? OR email LIKE ?)
		`, userID, pattern, pattern, pattern)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	contacts := []models.User{}

	for rows.Next() {
		var user models.User
		var image sql.NullString

		err := rows.Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &image, &user.Color, &user.ProfileSetup)
		if err != nil {
			sugar.Error(err)
			http.Error(w, "", http.StatusInternalServerError)
			return
		}

		user.Image = image.String
		contacts = append(contacts, user)
	}

	if err := rows.Err(); err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	err = json.NewEncoder(w).Encode(map[string][]models.User{"contacts": contacts})
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}

// GetContactsForDM lists every user this one has exchanged direct messages
// with, newest conversation first.
func GetContactsForDM(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(UserIDKeyType{}).(int64)

	// message IDs embed the creation instant, so the newest message per
	// contact is simply the one with the highest ID
	query := `
		SELECT
			partners.contact_id,
			messages.timestamp,
			users.email,
			users.first_name,
			users.last_name,
			users.image,
			users.color
		FROM (
			SELECT
				CASE WHEN messages.sender_id = ? THEN messages.recipient_id ELSE messages.sender_id END AS contact_id,
				MAX(messages.id) AS last_message_id
			FROM
				messages
			WHERE
				messages.recipient_id IS NOT NULL
				AND (messages.sender_id = ? OR messages.recipient_id = ?)
			GROUP BY
				contact_id
		) partners
		JOIN
			messages ON messages.id = partners.last_message_id
		JOIN
			users ON users.id = partners.contact_id
		ORDER BY
			partners.last_message_id DESC
	`

	rows, err := db.Query(query, userID, userID, userID)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	contacts := []models.ContactSummary{}

	for rows.Next() {
		var contact models.ContactSummary
		var image sql.NullString

		err := rows.Scan(&contact.ID, &contact.LastMessageTime, &contact.Email, &contact.FirstName, &contact.LastName, &image, &contact.Color)
		if err != nil {
			sugar.Error(err)
			http.Error(w, "", http.StatusInternalServerError)
			return
		}

		contact.Image = image.String
		contacts = append(contacts, contact)
	}

	if err := rows.Err(); err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	err = json.NewEncoder(w).Encode(map[string][]models.ContactSummary{"contacts": contacts})
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}

// GetAllContacts returns label/value pairs for contact pickers.
func GetAllContacts(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(UserIDKeyType{}).(int64)

	rows, err := db.Query("SELECT id, email, first_name, last_name FROM users WHERE id != ?", userID)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	type ContactOption struct {
		Label string `json:"label"`
		Value int64  `json:"value,string"`
	}

	contacts := []ContactOption{}

	for rows.Next() {
		var id int64
		var email, firstName, lastName string

		err := rows.Scan(&id, &email, &firstName, &lastName)
		if err != nil {
			sugar.Error(err)
			http.Error(w, "", http.StatusInternalServerError)
			return
		}

		label := email
		if firstName != "" {
			label = fmt.Sprintf("%s %s", firstName, lastName)
		}

		contacts = append(contacts, ContactOption{Label: label, Value: id})
	}

	if err := rows.Err(); err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	err = json.NewEncoder(w).Encode(map[string][]ContactOption{"contacts": contacts})
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}
