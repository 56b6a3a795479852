package repository

// Repos agrupa los repositorios atados a una misma conexión o transacción.
type Repos struct {
	Movements StockMovementRepository
	Stock     StockRepository
	Products  ProductRepository
	Batches   BatchRepository
}
