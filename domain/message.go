// Package domain contains core concepts of the chat system.
// This file defines Message records and the rules on who may mutate them.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageAudio MessageType = "audio"
	MessageVideo MessageType = "video"
	MessageFile  MessageType = "file"
)

// FileDescriptor is what the upload store hands back for a stored binary payload.
type FileDescriptor struct {
	URL         string   `json:"url"`
	APIURL      string   `json:"apiUrl"`
	DownloadURL string   `json:"downloadUrl"`
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Size        int64    `json:"size"`
	MimeType    string   `json:"mimetype"`
	Folder      string   `json:"folder"`
	Duration    *float64 `json:"duration,omitempty"`
}

// Message is the authoritative record of one exchange between two users.
// ID, SenderID, ReceiverID and Timestamp never change once persisted.
type Message struct {
	ID         uuid.UUID       `json:"id"`
	SenderID   string          `json:"senderId"`
	ReceiverID string          `json:"receiverId"`
	Content    string          `json:"content"`
	Type       MessageType     `json:"type"`
	File       *FileDescriptor `json:"file"`
	Timestamp  time.Time       `json:"timestamp"`
	Delivered  bool            `json:"delivered"`
	Read       bool            `json:"read"`
	ReadAt     *time.Time      `json:"readAt,omitempty"`
	IsDeleted  bool            `json:"isDeleted"`
	DeletedAt  *time.Time      `json:"deletedAt,omitempty"`
	IsEdited   bool            `json:"isEdited"`
	EditedAt   *time.Time      `json:"editedAt,omitempty"`
}

// CanMutate reports whether userID may edit or delete the message.
func (m Message) CanMutate(userID string) bool {
	return m.SenderID == userID
}

// Participants returns sender and receiver.
func (m Message) Participants() []string {
	return []string{m.SenderID, m.ReceiverID}
}

// Involves reports whether userID is one side of the conversation.
func (m Message) Involves(userID string) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

// Edit replaces the content. Deleted messages are left untouched and report false.
func (m *Message) Edit(content string, at time.Time) bool {
	if m.IsDeleted {
		return false
	}
	m.Content = content
	m.IsEdited = true
	m.EditedAt = &at
	return true
}

// SoftDelete flags the message; content stays in storage but must never be rendered.
func (m *Message) SoftDelete(at time.Time) bool {
	if m.IsDeleted {
		return false
	}
	m.IsDeleted = true
	m.DeletedAt = &at
	return true
}

// MarkRead reports false when the message was already read.
func (m *Message) MarkRead(at time.Time) bool {
	if m.Read {
		return false
	}
	m.Read = true
	m.ReadAt = &at
	return true
}

// Rendered hides the content of a soft-deleted message.
func (m Message) Rendered() Message {
	if m.IsDeleted {
		m.Content = ""
		m.File = nil
	}
	return m
}
