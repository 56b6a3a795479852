package batch

import (
	"context"

	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con repositorios atados a ella.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repos) error) error
}
