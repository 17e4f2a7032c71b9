package models

// Tag is a global label shared by every note that uses the same name.
// Names are compared case-sensitively.
type Tag struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

// TableName overrides the table name
func (Tag) TableName() string {
	return "tags"
}

// NoteTag links a note to a tag. The pair is the primary key.
type NoteTag struct {
	NoteID uint `gorm:"primaryKey;autoIncrement:false" json:"note_id"`
	TagID  uint `gorm:"primaryKey;autoIncrement:false;index" json:"tag_id"`

	Note Note `gorm:"foreignKey:NoteID" json:"-"`
	Tag  Tag  `gorm:"foreignKey:TagID" json:"-"`
}

// TableName overrides the table name
func (NoteTag) TableName() string {
	return "note_tags"
}
