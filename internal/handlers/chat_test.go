package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chatspace-backend/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withUser(r *http.Request, userID int64) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), UserIDKeyType{}, userID))
}

func seedUser(t *testing.T, id int64, email string, firstName string, lastName string) {
	t.Helper()

	_, err := db.Exec(
		"INSERT INTO users (id, email, password, first_name, last_name) VALUES (?, ?, ?, ?, ?)",
		id, email, []byte("not-a-real-hash"), firstName, lastName)
	require.NoError(t, err)
}

func seedDirectMessage(t *testing.T, id int64, senderID int64, recipientID int64, content string, timestamp time.Time) {
	t.Helper()

	_, err := db.Exec(
		"INSERT INTO messages VALUES (?, ?, ?, ?, ?, NULL, ?)",
		id, senderID, recipientID, models.MessageTypeText, content, timestamp)
	require.NoError(t, err)
}

func TestSearchContacts(t *testing.T) {
	setupHandlersTest(t)

	seedUser(t, 1, "alice@example.com", "Alice", "Smith")
	seedUser(t, 2, "bob@example.com", "Bob", "Jones")
	seedUser(t, 3, "smithers@example.com", "Waylon", "Smithers")

	search := func(t *testing.T, callerID int64, body string) []models.User {
		t.Helper()

		w := httptest.NewRecorder()
		SearchContacts(w, withUser(postJSON("/api/contacts/search", body), callerID))
		require.Equal(t, http.StatusOK, w.Code)

		var response map[string][]models.User
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		return response["contacts"]
	}

	t.Run("matches name and email, excludes caller", func(t *testing.T) {
		contacts := search(t, 1, `{"searchItem":"smith"}`)

		// Alice Smith is the caller, only Smithers matches
		require.Len(t, contacts, 1)
		assert.Equal(t, "smithers@example.com", contacts[0].Email)
	})

	t.Run("empty search item matches everyone else", func(t *testing.T) {
		contacts := search(t, 1, `{"searchItem":""}`)
		assert.Len(t, contacts, 2)
	})

	t.Run("wildcards are literal", func(t *testing.T) {
		contacts := search(t, 1, `{"searchItem":"%"}`)
		assert.Empty(t, contacts)
	})

	t.Run("missing search item", func(t *testing.T) {
		w := httptest.NewRecorder()
		SearchContacts(w, withUser(postJSON("/api/contacts/search", `{}`), 1))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetContactsForDM(t *testing.T) {
	setupHandlersTest(t)

	seedUser(t, 1, "alice@example.com", "Alice", "Smith")
	seedUser(t, 2, "bob@example.com", "Bob", "Jones")
	seedUser(t, 3, "carol@example.com", "Carol", "Lee")

	base := time.Now().UTC().Add(-time.Hour)
	seedDirectMessage(t, 101, 1, 2, "to bob", base)
	seedDirectMessage(t, 102, 3, 1, "from carol", base.Add(10*time.Minute))
	seedDirectMessage(t, 103, 2, 1, "bob replies", base.Add(20*time.Minute))

	w := httptest.NewRecorder()
	GetContactsForDM(w, withUser(httptest.NewRequest(http.MethodGet, "/api/contacts/get-contacts-for-dm", nil), 1))
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string][]models.ContactSummary
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	contacts := response["contacts"]
	require.Len(t, contacts, 2)

	// bob's reply is the most recent exchange, so bob sorts first
	assert.Equal(t, int64(2), contacts[0].ID)
	assert.Equal(t, "bob@example.com", contacts[0].Email)
	assert.Equal(t, int64(3), contacts[1].ID)
	assert.True(t, contacts[0].LastMessageTime.After(contacts[1].LastMessageTime))
}

func TestGetAllContacts(t *testing.T) {
	setupHandlersTest(t)

	seedUser(t, 1, "alice@example.com", "Alice", "Smith")
	seedUser(t, 2, "bob@example.com", "Bob", "Jones")
	seedUser(t, 3, "nameless@example.com", "", "")

	w := httptest.NewRecorder()
	GetAllContacts(w, withUser(httptest.NewRequest(http.MethodGet, "/api/contacts/get-all-contacts", nil), 1))
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string][]struct {
		Label string `json:"label"`
		Value int64  `json:"value,string"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	contacts := response["contacts"]
	require.Len(t, contacts, 2)

	labels := map[int64]string{}
	for _, contact := range contacts {
		labels[contact.Value] = contact.Label
	}
	assert.Equal(t, "Bob Jones", labels[2])
	// a user who hasn't set up a profile falls back to the email
	assert.Equal(t, "nameless@example.com", labels[3])
}

func TestGetMessages(t *testing.T) {
	setupHandlersTest(t)

	seedUser(t, 1, "alice@example.com", "Alice", "Smith")
	seedUser(t, 2, "bob@example.com", "Bob", "Jones")
	seedUser(t, 3, "carol@example.com", "Carol", "Lee")

	base := time.Now().UTC().Add(-time.Hour)
	seedDirectMessage(t, 101, 1, 2, "first", base)
	seedDirectMessage(t, 102, 2, 1, "second", base.Add(time.Minute))
	seedDirectMessage(t, 103, 1, 3, "other conversation", base.Add(2*time.Minute))

	w := httptest.NewRecorder()
	GetMessages(w, withUser(postJSON("/api/messages/get-messages", `{"id":"2"}`), 1))
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string][]models.Message
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	messages := response["messages"]
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "second", messages[1].Content)
	assert.Equal(t, int64(1), messages[0].SenderID)
	assert.Equal(t, int64(2), messages[1].SenderID)
}

func TestGetMessagesRequiresContactID(t *testing.T) {
	setupHandlersTest(t)

	w := httptest.NewRecorder()
	GetMessages(w, withUser(postJSON("/api/messages/get-messages", `{}`), 1))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateChannel(t *testing.T) {
	setupHandlersTest(t)

	seedUser(t, 1, "alice@example.com", "Alice", "Smith")
	seedUser(t, 2, "bob@example.com", "Bob", "Jones")
	seedUser(t, 3, "carol@example.com", "Carol", "Lee")

	w := httptest.NewRecorder()
	CreateChannel(w, withUser(postJSON("/api/channel/create-channel",
		`{"name":"project","members":["2","3","2"]}`), 1))

	require.Equal(t, http.StatusCreated, w.Code)

	var response map[string]models.Channel
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	channel := response["channel"]
	assert.Equal(t, "project", channel.Name)
	assert.Equal(t, int64(1), channel.AdminID)
	assert.Equal(t, []int64{2, 3}, channel.Members)

	var memberCount int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM channel_members WHERE channel_id = ?", channel.ID).Scan(&memberCount))
	assert.Equal(t, 2, memberCount)
}

func TestCreateChannelRejectsUnknownMembers(t *testing.T) {
	setupHandlersTest(t)

	seedUser(t, 1, "alice@example.com", "Alice", "Smith")

	w := httptest.NewRecorder()
	CreateChannel(w, withUser(postJSON("/api/channel/create-channel",
		`{"name":"project","members":["999"]}`), 1))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var channelCount int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM channels").Scan(&channelCount))
	assert.Zero(t, channelCount)
}

func TestCreateChannelRequiresName(t *testing.T) {
	setupHandlersTest(t)

	w := httptest.NewRecorder()
	CreateChannel(w, withUser(postJSON("/api/channel/create-channel", `{"members":[]}`), 1))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUserChannels(t *testing.T) {
	setupHandlersTest(t)

	seedUser(t, 1, "alice@example.com", "Alice", "Smith")
	seedUser(t, 2, "bob@example.com", "Bob", "Jones")

	now := time.Now().UTC()
	_, err := db.Exec("INSERT INTO channels VALUES (10, 'older', 1, ?, ?)", now.Add(-time.Hour), now.Add(-time.Hour))
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO channels VALUES (11, 'newer', 2, ?, ?)", now, now)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO channel_members VALUES (11, 1)")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	GetUserChannels(w, withUser(httptest.NewRequest(http.MethodGet, "/api/channel/get-user-channels", nil), 1))
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string][]models.Channel
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	channels := response["channels"]
	require.Len(t, channels, 2)

	// admin of "older", member of "newer"; most recently active first
	assert.Equal(t, "newer", channels[0].Name)
	assert.Equal(t, "older", channels[1].Name)
}

func TestGetChannelMessages(t *testing.T) {
	setupHandlersTest(t)

	seedUser(t, 1, "alice@example.com", "Alice", "Smith")

	now := time.Now().UTC()
	_, err := db.Exec("INSERT INTO channels VALUES (10, 'project', 1, ?, ?)", now, now)
	require.NoError(t, err)

	seedChannelMessage := func(id int64, content string) {
		_, err := db.Exec("INSERT INTO messages VALUES (?, 1, NULL, ?, ?, NULL, ?)",
			id, models.MessageTypeText, content, now)
		require.NoError(t, err)
		_, err = db.Exec("INSERT INTO channel_messages VALUES (10, ?)", id)
		require.NoError(t, err)
	}
	seedChannelMessage(101, "first")
	seedChannelMessage(102, "second")

	router := chi.NewRouter()
	router.Get("/api/channel/get-channel-messages/{channelId}", GetChannelMessages)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, withUser(httptest.NewRequest(http.MethodGet, "/api/channel/get-channel-messages/10", nil), 1))
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string][]models.Message
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	messages := response["messages"]
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "second", messages[1].Content)
	assert.Equal(t, int64(10), messages[0].ChannelID)
	assert.Equal(t, "alice@example.com", messages[0].Sender.Email)
}

func TestGetChannelMessagesUnknownChannel(t *testing.T) {
	setupHandlersTest(t)

	router := chi.NewRouter()
	router.Get("/api/channel/get-channel-messages/{channelId}", GetChannelMessages)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, withUser(httptest.NewRequest(http.MethodGet, "/api/channel/get-channel-messages/999", nil), 1))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
