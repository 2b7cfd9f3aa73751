package repository

// Repositories conjunto de repositorios atados a una misma transacción.
type Repositories struct {
	Products   ProductRepository
	Locations  LocationStockRepository
	Movements  MovementRepository
	Stocktakes StocktakeRepository
	Sales      SaleRepository
}
