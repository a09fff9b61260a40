package repository

// Set agrupa los repositorios atados a una misma conexión (pool) o transacción.
type Set struct {
	Products    ProductRepository
	Customers   CustomerRepository
	Productions ProductionRepository
	Sales       SaleRepository
	Payments    PaymentRepository
	StockMoves  StockMoveRepository
}
