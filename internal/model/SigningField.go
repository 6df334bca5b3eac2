package model

import "github.com/SeakMengs/SignFlow/pkg/esign"

// SigningField ids are chosen by the client and are unique per request only.
type SigningField struct {
	FieldID          string `gorm:"column:id;type:text;primaryKey" json:"id"`
	SigningRequestID string `gorm:"type:text;primaryKey" json:"signingRequestId"`
	SignerOrder      int    `gorm:"type:integer;not null" json:"signerOrder"`
	FieldType        string `gorm:"type:text;not null" json:"fieldType"`
	Required         bool   `gorm:"type:boolean;not null;default:false" json:"required"`
	BaseAnnotateModel
}

func (sf SigningField) TableName() string {
	return "signing_fields"
}

func (sf SigningField) ToDomain() esign.Field {
	return esign.Field{
		ID:          sf.FieldID,
		SignerOrder: sf.SignerOrder,
		Type:        esign.FieldType(sf.FieldType),
		PageNumber:  sf.Page,
		X:           sf.X,
		Y:           sf.Y,
		Width:       sf.Width,
		Height:      sf.Height,
		Required:    sf.Required,
	}
}

func SigningFieldFromDomain(requestID string, f esign.Field) SigningField {
	return SigningField{
		FieldID:          f.ID,
		SigningRequestID: requestID,
		SignerOrder:      f.SignerOrder,
		FieldType:        string(f.Type),
		Required:         f.Required,
		BaseAnnotateModel: BaseAnnotateModel{
			Page:   f.PageNumber,
			X:      f.X,
			Y:      f.Y,
			Width:  f.Width,
			Height: f.Height,
		},
	}
}
