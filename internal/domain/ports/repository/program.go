package repository

import (
	"context"

	"learning-access/internal/domain/model"
)

type ProgramRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Program) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Program, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Program, error)
}
