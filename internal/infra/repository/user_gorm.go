package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-turnos/internal/domain/user"
	"github.com/BruksfildServices01/barber-turnos/internal/models"
)

func (r *GormStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findUser(ctx, "username = ?", username)
}

func (r *GormStore) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	return r.findUser(ctx, "id = ?", id)
}

func (r *GormStore) findUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (r *GormStore) EnsureUser(ctx context.Context, u *models.User) (*models.User, error) {
	var out models.User
	if err := r.db.WithContext(ctx).
		Where(models.User{Username: u.Username}).
		Attrs(models.User{Credential: u.Credential, IsAdmin: u.IsAdmin}).
		FirstOrCreate(&out).Error; err != nil {
		return nil, fmt.Errorf("ensure user %q: %w", u.Username, err)
	}
	return &out, nil
}

var _ user.Directory = (*GormStore)(nil)
