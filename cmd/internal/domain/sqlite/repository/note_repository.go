package repository

import (
	"context"
	"errors"
	"notekeeper/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultNoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *DefaultNoteRepository {
	return &DefaultNoteRepository{db: db}
}

// FindByOwner returns the notes of ownerID. A non-empty query keeps only the
// notes whose title or content contains it (case-sensitive).
func (d *DefaultNoteRepository) FindByOwner(ctx context.Context, ownerID int64, query string) ([]*entity.Note, error) {
	tx := d.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if query != "" {
		// instr() instead of LIKE: LIKE folds ASCII case and treats % and _ as wildcards.
		tx = tx.Where("(instr(title, ?) > 0 OR instr(content, ?) > 0)", query, query)
	}

	notes := []*entity.Note{}
	err := tx.Order("id").Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (d *DefaultNoteRepository) FindByID(ctx context.Context, id int64) (*entity.Note, error) {
	var note entity.Note
	err := d.db.WithContext(ctx).First(&note, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (d *DefaultNoteRepository) Save(ctx context.Context, note *entity.Note) error {
	return d.db.WithContext(ctx).Save(note).Error
}

func (d *DefaultNoteRepository) Delete(ctx context.Context, note *entity.Note) error {
	return d.db.WithContext(ctx).Delete(note).Error
}
