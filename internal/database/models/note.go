package models

import (
	"sort"
	"time"
)

// Note is a user-owned document. Deleted notes keep their row with IsDeleted set.
type Note struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_notes_user_deleted_updated,priority:1" json:"user_id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	IsDeleted bool      `gorm:"not null;default:false;index:idx_notes_user_deleted_updated,priority:2" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"index:idx_notes_user_deleted_updated,priority:3" json:"updated_at"`

	// Relationships
	User     User      `gorm:"foreignKey:UserID" json:"-"`
	NoteTags []NoteTag `gorm:"foreignKey:NoteID" json:"-"`
}

// TableName overrides the table name
func (Note) TableName() string {
	return "notes"
}

// TagNames returns the names of the preloaded tags, sorted alphabetically
func (n *Note) TagNames() []string {
	names := make([]string, 0, len(n.NoteTags))
	for _, nt := range n.NoteTags {
		names = append(names, nt.Tag.Name)
	}
	sort.Strings(names)
	return names
}
