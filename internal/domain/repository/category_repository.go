package repository

import (
	"context"

	"dormdrop/internal/domain/entity"
)

type CategoryRepository interface {
	List(ctx context.Context) ([]*entity.Category, error)
}
