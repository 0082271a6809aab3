package models

import "time"

// MessageTargetType enumerates the closed set of message destinations.
// The empty value means the message is broadcast to every user.
type MessageTargetType string

const (
	TargetBroadcast MessageTargetType = ""
	TargetUser      MessageTargetType = "USER"
	TargetGroup     MessageTargetType = "GROUP"
	TargetCompany   MessageTargetType = "COMPANY"
	TargetProject   MessageTargetType = "PROJECT"
	TargetNode      MessageTargetType = "NODE"
)

// IsBroadcast reports whether the type addresses everybody.
func (t MessageTargetType) IsBroadcast() bool {
	return t == TargetBroadcast
}

// Valid reports whether the type is one of the known destinations.
func (t MessageTargetType) Valid() bool {
	switch t {
	case TargetBroadcast, TargetUser, TargetGroup, TargetCompany, TargetProject, TargetNode:
		return true
	}
	return false
}

// Message is a text addressed to a target audience (PostgreSQL).
// The id is monotonically increasing and doubles as the unread watermark.
type Message struct {
	ID         uint              `json:"id" gorm:"primaryKey"`
	TargetType MessageTargetType `json:"targetType" gorm:"size:10;index"`
	Target     string            `json:"target" gorm:"size:255;index"`
	Value      string            `json:"value" gorm:"size:500"`
	CreatedBy  string            `json:"createdBy" gorm:"size:255;index"`
	CreatedAt  time.Time         `json:"createdDate"`
}

// ReadCursor holds, per login, the highest message id ever shown to the user.
// A missing row is equivalent to a cursor of 0. The identifier of the last
// read message is not a foreign key, so messages can be deleted without
// touching the cursor.
type ReadCursor struct {
	Login             string `json:"login" gorm:"primaryKey;size:255"`
	LastReadMessageID uint   `json:"lastReadMessageId"`
}

// SaveMessageRequest carries a message create or full-replacement update.
// An empty target type means broadcast, in which case target stays empty.
type SaveMessageRequest struct {
	TargetType string `json:"targetType" validate:"omitempty,oneof=USER GROUP COMPANY PROJECT NODE"`
	Target     string `json:"target" validate:"required_with=TargetType,max=255"`
	Value      string `json:"value" validate:"required,max=500"`
}
