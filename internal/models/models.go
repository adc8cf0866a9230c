package models

import "time"

const (
	MessageTypeText = "text"
	MessageTypeFile = "file"
)

type User struct {
	ID           int64  `json:"id,string,omitempty"`
	Email        string `json:"email,omitempty"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Image        string `json:"image"`
	Color        int    `json:"color"`
	ProfileSetup bool   `json:"profileSetup"`
	Password     []byte `json:"-"`
}

// Message carries either text content or a file URL depending on MessageType.
// RecipientID is zero for channel messages; ChannelID is zero for direct ones.
type Message struct {
	ID          int64     `json:"id,string"`
	SenderID    int64     `json:"senderID,string"`
	RecipientID int64     `json:"recipientID,string,omitempty"`
	ChannelID   int64     `json:"channelId,string,omitempty"`
	MessageType string    `json:"messageType"`
	Content     string    `json:"content,omitempty"`
	FileURL     string    `json:"fileURL,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Sender      User      `json:"sender"`
	Recipient   *User     `json:"recipient,omitempty"`
}

type Channel struct {
	ID        int64     `json:"id,string"`
	Name      string    `json:"name"`
	AdminID   int64     `json:"admin,string"`
	Members   []int64   `json:"members,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ContactSummary is one row of the direct-message contact list, ordered by
// the most recent exchanged message.
type ContactSummary struct {
	ID              int64     `json:"id,string"`
	LastMessageTime time.Time `json:"lastMessageTime"`
	Email           string    `json:"email"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Image           string    `json:"image"`
	Color           int       `json:"color"`
}

type ConfigFile struct {
	Address           string
	Port              string
	BehindNginx       bool
	TlsCert           string
	TlsKey            string
	PrintHttpRequests bool
	JwtSecret         string
	SnowflakeWorkerID int64
	SelfContained     bool
	DbUser            string
	DbPassword        string
	DbAddress         string
	DbPort            string
	DbDatabase        string
	RedisAddress      string
	RedisPassword     string
}
