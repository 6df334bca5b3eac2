package model

import (
	"time"

	"github.com/SeakMengs/SignFlow/pkg/esign"
)

type SigningRequest struct {
	BaseModel

	OwnerUserID          string     `gorm:"type:text;not null;index" json:"ownerUserId"`
	DocumentName         string     `gorm:"type:text;not null" json:"documentName"`
	DocumentRef          string     `gorm:"type:text;not null" json:"documentRef"`
	DocumentPageCount    int        `gorm:"type:integer;not null;default:0" json:"documentPageCount"`
	SenderName           string     `gorm:"type:text" json:"senderName"`
	SenderEmail          string     `gorm:"type:citext" json:"senderEmail"`
	Message              string     `gorm:"type:text" json:"message"`
	DueDate              *time.Time `gorm:"type:timestamptz" json:"dueDate"`
	Status               string     `gorm:"type:text;not null;index" json:"status"`
	Ordering             string     `gorm:"type:text;not null;default:parallel" json:"ordering"`
	CurrentSignerIndex   int        `gorm:"type:integer;not null;default:0" json:"currentSignerIndex"`
	ReminderIntervalDays int        `gorm:"type:integer;not null;default:3" json:"reminderIntervalDays"`
	VoidReason           string     `gorm:"type:text" json:"voidReason"`
	VoidedAt             *time.Time `gorm:"type:timestamptz" json:"voidedAt"`
	CompletedAt          *time.Time `gorm:"type:timestamptz" json:"completedAt"`
	Version              int        `gorm:"type:integer;not null;default:1" json:"version"`

	Signers []Signer       `gorm:"foreignKey:SigningRequestID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"signers"`
	Fields  []SigningField `gorm:"foreignKey:SigningRequestID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"fields"`
}

func (sr SigningRequest) TableName() string {
	return "signing_requests"
}

func (sr SigningRequest) ToDomain() *esign.SigningRequest {
	r := &esign.SigningRequest{
		ID:                   sr.ID,
		OwnerUserID:          sr.OwnerUserID,
		DocumentName:         sr.DocumentName,
		DocumentRef:          sr.DocumentRef,
		DocumentPageCount:    sr.DocumentPageCount,
		SenderName:           sr.SenderName,
		SenderEmail:          sr.SenderEmail,
		Message:              sr.Message,
		DueDate:              sr.DueDate,
		Status:               esign.RequestStatus(sr.Status),
		Ordering:             esign.Ordering(sr.Ordering),
		CurrentSignerIndex:   sr.CurrentSignerIndex,
		ReminderIntervalDays: sr.ReminderIntervalDays,
		VoidReason:           sr.VoidReason,
		VoidedAt:             sr.VoidedAt,
		CompletedAt:          sr.CompletedAt,
		Version:              sr.Version,
		CreatedAt:            timeVal(sr.CreatedAt),
		UpdatedAt:            timeVal(sr.UpdatedAt),
		Signers:              make([]esign.Signer, 0, len(sr.Signers)),
		Fields:               make([]esign.Field, 0, len(sr.Fields)),
	}
	for _, s := range sr.Signers {
		r.Signers = append(r.Signers, s.ToDomain())
	}
	for _, f := range sr.Fields {
		r.Fields = append(r.Fields, f.ToDomain())
	}
	return r
}

func SigningRequestFromDomain(r *esign.SigningRequest) SigningRequest {
	sr := SigningRequest{
		BaseModel: BaseModel{
			ID:        r.ID,
			CreatedAt: timePtr(r.CreatedAt),
			UpdatedAt: timePtr(r.UpdatedAt),
		},
		OwnerUserID:          r.OwnerUserID,
		DocumentName:         r.DocumentName,
		DocumentRef:          r.DocumentRef,
		DocumentPageCount:    r.DocumentPageCount,
		SenderName:           r.SenderName,
		SenderEmail:          r.SenderEmail,
		Message:              r.Message,
		DueDate:              r.DueDate,
		Status:               string(r.Status),
		Ordering:             string(r.Ordering),
		CurrentSignerIndex:   r.CurrentSignerIndex,
		ReminderIntervalDays: r.ReminderIntervalDays,
		VoidReason:           r.VoidReason,
		VoidedAt:             r.VoidedAt,
		CompletedAt:          r.CompletedAt,
		Version:              r.Version,
	}
	for _, s := range r.Signers {
		sr.Signers = append(sr.Signers, SignerFromDomain(r.ID, s))
	}
	for _, f := range r.Fields {
		sr.Fields = append(sr.Fields, SigningFieldFromDomain(r.ID, f))
	}
	return sr
}
