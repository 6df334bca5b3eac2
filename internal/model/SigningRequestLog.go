package model

import "time"

type SigningRequestLog struct {
	BaseModel

	Role        string    `gorm:"type:text;not null;" json:"role"`
	Action      string    `gorm:"type:text;not null;" json:"action"`
	Actor       string    `gorm:"type:text;not null;" json:"actor"`
	Description string    `gorm:"type:text;not null;" json:"description"`
	Timestamp   time.Time `gorm:"type:timestamptz;not null;" json:"timestamp"`

	SigningRequestID string         `gorm:"type:text;not null;index" json:"signingRequestId"`
	SigningRequest   SigningRequest `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (l SigningRequestLog) TableName() string {
	return "signing_request_logs"
}
