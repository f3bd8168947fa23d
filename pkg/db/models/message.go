package models

import "time"

// Message is one append-only entry in a named thread between two users.
type Message struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Sender    string    `gorm:"column:sender;not null;index"`
	Receiver  string    `gorm:"column:receiver;not null;index"`
	Body      string    `gorm:"column:body;not null"`
	Thread    string    `gorm:"column:thread;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
