package store

import (
	"time"

	"github.com/Madhu0614/Ai-task-hub-madhu/pkg/types"
)

type Board struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	OwnerID   string `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Element is the durable copy of an ElementSnapshot. The realtime path only
// carries short-lived copies in transit; this row is the source of truth a
// page reload reconciles against.
type Element struct {
	ID       string `gorm:"primaryKey"`
	BoardID  string `gorm:"not null;index"`
	Kind     string `gorm:"not null"`
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Rotation float64

	Style   []byte `gorm:"type:jsonb"`
	Payload []byte `gorm:"type:jsonb"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Collaborator struct {
	BoardID   string `gorm:"primaryKey"`
	UserID    string `gorm:"primaryKey"`
	Role      string `gorm:"not null;default:editor"`
	CreatedAt time.Time
}

type User struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	AvatarURL string
	Token     string `gorm:"uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Board) TableName() string        { return "boards" }
func (Element) TableName() string      { return "board_elements" }
func (Collaborator) TableName() string { return "board_collaborators" }
func (User) TableName() string         { return "users" }

func elementToSnapshot(e Element) types.ElementSnapshot {
	return types.ElementSnapshot{
		ID:        e.ID,
		BoardID:   e.BoardID,
		Kind:      e.Kind,
		X:         e.X,
		Y:         e.Y,
		Width:     e.Width,
		Height:    e.Height,
		Rotation:  e.Rotation,
		Style:     e.Style,
		Payload:   e.Payload,
		UpdatedAt: e.UpdatedAt,
	}
}

func snapshotToElement(s types.ElementSnapshot) Element {
	return Element{
		ID:       s.ID,
		BoardID:  s.BoardID,
		Kind:     s.Kind,
		X:        s.X,
		Y:        s.Y,
		Width:    s.Width,
		Height:   s.Height,
		Rotation: s.Rotation,
		Style:    s.Style,
		Payload:  s.Payload,
	}
}
