package model

// BaseAnnotateModel positions a box on a PDF page. Coordinates are
// percentages of the page size, so they survive any render resolution.
type BaseAnnotateModel struct {
	Page   int     `gorm:"type:integer;not null" json:"page"`
	X      float64 `gorm:"type:double precision;not null" json:"x"`
	Y      float64 `gorm:"type:double precision;not null" json:"y"`
	Width  float64 `gorm:"type:double precision;not null" json:"width"`
	Height float64 `gorm:"type:double precision;not null" json:"height"`
}
