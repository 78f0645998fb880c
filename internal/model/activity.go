package model

import (
	"time"

	"github.com/google/uuid"
)

// Activity is an append-only audit record of one accepted mutation.
// ID is a database sequence and breaks ties between equal timestamps.
type Activity struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	ProjectID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ActorID   uuid.UUID  `gorm:"type:uuid;not null"`
	TaskID    *uuid.UUID `gorm:"type:uuid"`
	Action    string     `gorm:"not null"`
	Changes   string     `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`

	Actor User `gorm:"foreignKey:ActorID"`
}

func (Activity) TableName() string {
	return "activities"
}
