package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Madhu0614/Ai-task-hub-madhu/pkg/types"
)

var ErrNotFound = errors.New("not found")

// Store is the persistence bridge: the durable home of boards, elements and
// collaborators. It sits outside the realtime path; mutations are broadcast
// whether or not the corresponding write here succeeds.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

func Open(dsn string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&Board{}, &Element{}, &Collaborator{}, &User{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// NewWithDB wraps an existing gorm handle. Used by tests.
func NewWithDB(db *gorm.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, log: log}
}

// Boards

func (s *Store) CreateBoard(ctx context.Context, b *Board) error {
	return s.db.WithContext(ctx).Create(b).Error
}

func (s *Store) GetBoard(ctx context.Context, id string) (*Board, error) {
	var b Board
	err := s.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBoards returns boards the user owns or collaborates on.
func (s *Store) ListBoards(ctx context.Context, userID string) ([]Board, error) {
	var boards []Board
	err := s.db.WithContext(ctx).
		Distinct("boards.*").
		Joins("LEFT JOIN board_collaborators c ON c.board_id = boards.id").
		Where("boards.owner_id = ? OR c.user_id = ?", userID, userID).
		Order("boards.updated_at DESC").
		Find(&boards).Error
	return boards, err
}

func (s *Store) RenameBoard(ctx context.Context, id, name string) error {
	res := s.db.WithContext(ctx).Model(&Board{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteBoard(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("board_id = ?", id).Delete(&Element{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&Collaborator{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Board{}, "id = ?", id).Error
	})
}

// Elements

// LoadElements is the bootstrap read a client performs before opening its
// socket.
func (s *Store) LoadElements(ctx context.Context, boardID string) ([]types.ElementSnapshot, error) {
	var rows []Element
	if err := s.db.WithContext(ctx).Where("board_id = ?", boardID).Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]types.ElementSnapshot, 0, len(rows))
	for _, e := range rows {
		out = append(out, elementToSnapshot(e))
	}
	return out, nil
}

// SaveElement upserts the full snapshot. isUpdate only selects between
// insert-then-conflict-update and a plain update; either way the whole row
// is replaced, matching last-write-wins at element granularity.
func (s *Store) SaveElement(ctx context.Context, el types.ElementSnapshot, isUpdate bool) error {
	row := snapshotToElement(el)
	if isUpdate {
		res := s.db.WithContext(ctx).Model(&Element{}).Where("id = ?", row.ID).
			Select("Kind", "X", "Y", "Width", "Height", "Rotation", "Style", "Payload").
			Updates(row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		// Fall through: an update for a row we never saw is still a full
		// snapshot, so an insert is always safe.
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&row).Error
}

func (s *Store) DeleteElement(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&Element{}, "id = ?", id).Error
}

// Collaborators

func (s *Store) AddCollaborator(ctx context.Context, c *Collaborator) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(c).Error
}

func (s *Store) ListCollaborators(ctx context.Context, boardID string) ([]Collaborator, error) {
	var out []Collaborator
	err := s.db.WithContext(ctx).Where("board_id = ?", boardID).Find(&out).Error
	return out, err
}

func (s *Store) RemoveCollaborator(ctx context.Context, boardID, userID string) error {
	return s.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Delete(&Collaborator{}).Error
}

// Users

func (s *Store) UserByToken(ctx context.Context, token string) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).First(&u, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
