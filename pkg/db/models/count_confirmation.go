package models

import "time"

// CountConfirmation records that a user confirmed their hub's physical
// count. Deliberately no uniqueness constraint: repeat confirmations
// each produce a row.
type CountConfirmation struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	Username    string    `gorm:"column:username;not null"`
	Hub         string    `gorm:"column:hub;not null"`
	ConfirmedAt time.Time `gorm:"column:confirmed_at;not null;index"`
}
