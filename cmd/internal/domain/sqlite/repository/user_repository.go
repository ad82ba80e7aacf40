package repository

import (
	"context"
	"errors"
	"notekeeper/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

// ErrNameTaken is returned when a save would violate the unique user name index.
var ErrNameTaken = errors.New("user name already taken")

type DefaultUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *DefaultUserRepository {
	return &DefaultUserRepository{db: db}
}

func (u *DefaultUserRepository) FindAll(ctx context.Context) ([]*entity.User, error) {
	var users []*entity.User
	err := u.db.WithContext(ctx).Order("id").Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (u *DefaultUserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	var user entity.User
	err := u.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *DefaultUserRepository) FindByName(ctx context.Context, name string) (*entity.User, error) {
	var user entity.User
	err := u.db.WithContext(ctx).Where("name = ?", name).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *DefaultUserRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := u.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("name = ?", name).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (u *DefaultUserRepository) Save(ctx context.Context, user *entity.User) error {
	err := u.db.WithContext(ctx).Omit("Notes").Save(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrNameTaken
	}
	return err
}

// Delete removes the user. Notes owned by the user go with it through the
// ON DELETE CASCADE foreign key.
func (u *DefaultUserRepository) Delete(ctx context.Context, user *entity.User) error {
	return u.db.WithContext(ctx).Delete(user).Error
}
