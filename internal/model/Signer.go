package model

import (
	"time"

	"github.com/SeakMengs/SignFlow/pkg/esign"
	"gorm.io/datatypes"
)

type Signer struct {
	BaseModel

	SigningRequestID string            `gorm:"type:text;not null;uniqueIndex:idx_signer_request_email;uniqueIndex:idx_signer_request_order" json:"signingRequestId"`
	Order            int               `gorm:"column:signer_order;type:integer;not null;uniqueIndex:idx_signer_request_order" json:"order"`
	Name             string            `gorm:"type:text;not null" json:"name"`
	Email            string            `gorm:"type:citext;not null;index;uniqueIndex:idx_signer_request_email" json:"email"`
	IsSelf           bool              `gorm:"type:boolean;not null;default:false" json:"isSelf"`
	Status           string            `gorm:"type:text;not null" json:"status"`
	Token            string            `gorm:"type:text;not null;uniqueIndex" json:"-"`
	SentAt           *time.Time        `gorm:"type:timestamptz" json:"sentAt"`
	OpenedAt         *time.Time        `gorm:"type:timestamptz" json:"openedAt"`
	SignedAt         *time.Time        `gorm:"type:timestamptz" json:"signedAt"`
	DeclinedAt       *time.Time        `gorm:"type:timestamptz" json:"declinedAt"`
	DeclineReason    string            `gorm:"type:text" json:"declineReason"`
	FieldValues      datatypes.JSONMap `gorm:"type:jsonb" json:"fieldValues"`
}

func (s Signer) TableName() string {
	return "signers"
}

func (s Signer) ToDomain() esign.Signer {
	d := esign.Signer{
		ID:            s.ID,
		Order:         s.Order,
		Name:          s.Name,
		Email:         s.Email,
		IsSelf:        s.IsSelf,
		Status:        esign.SignerStatus(s.Status),
		Token:         s.Token,
		SentAt:        s.SentAt,
		OpenedAt:      s.OpenedAt,
		SignedAt:      s.SignedAt,
		DeclinedAt:    s.DeclinedAt,
		DeclineReason: s.DeclineReason,
	}
	if len(s.FieldValues) > 0 {
		d.FieldValues = make(map[string]string, len(s.FieldValues))
		for k, v := range s.FieldValues {
			if str, ok := v.(string); ok {
				d.FieldValues[k] = str
			}
		}
	}
	return d
}

func SignerFromDomain(requestID string, s esign.Signer) Signer {
	m := Signer{
		BaseModel:        BaseModel{ID: s.ID},
		SigningRequestID: requestID,
		Order:            s.Order,
		Name:             s.Name,
		Email:            s.Email,
		IsSelf:           s.IsSelf,
		Status:           string(s.Status),
		Token:            s.Token,
		SentAt:           s.SentAt,
		OpenedAt:         s.OpenedAt,
		SignedAt:         s.SignedAt,
		DeclinedAt:       s.DeclinedAt,
		DeclineReason:    s.DeclineReason,
	}
	if s.FieldValues != nil {
		m.FieldValues = make(datatypes.JSONMap, len(s.FieldValues))
		for k, v := range s.FieldValues {
			m.FieldValues[k] = v
		}
	}
	return m
}
