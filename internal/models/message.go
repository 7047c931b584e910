package models

import "time"

// MessageType classifies mailbox messages
type MessageType string

const (
	MessageStatus  MessageType = "status"
	MessageAlert   MessageType = "alert"
	MessageGeneral MessageType = "general"
)

// SystemMessage is an entry in a user's mailbox
type SystemMessage struct {
	ID        string      `json:"id" gorm:"primaryKey"`
	UserID    string      `json:"userId" gorm:"index;not null"`
	Text      string      `json:"text" gorm:"not null"`
	Type      MessageType `json:"type"`
	IsRead    bool        `json:"isRead"`
	Timestamp time.Time   `json:"timestamp" gorm:"index"`
	Seq       int64       `json:"-" gorm:"index"`
}

// Notification is the event emitted when something a user cares about happens.
// Transports carry it as JSON.
type Notification struct {
	UserID  string      `json:"userId"`
	OrderID string      `json:"orderId,omitempty"`
	Text    string      `json:"text"`
	Type    MessageType `json:"type"`
	At      time.Time   `json:"at"`
}
