package mocks

import (
	"context"

	"github.com/netcinema/booking/internal/domain"
)

type MockScreeningRepo struct {
	GetByIdFunc func(ctx context.Context, id string) (*domain.Screening, error)
}

func (m *MockScreeningRepo) GetById(ctx context.Context, id string) (*domain.Screening, error) {
	return m.GetByIdFunc(ctx, id)
}
