package repository

import (
	"context"

	"learning-access/internal/domain/model"
)

// ProfileRepository is the user side of the User Grant port.
type ProfileRepository interface {
	Insert(ctx context.Context, tx Tx, p *model.Profile) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Profile, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.Profile, error)
	SetRole(ctx context.Context, tx Tx, userID string, role model.Role) error
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.Profile, error)
	Count(ctx context.Context, tx Tx) (int, error)
}
