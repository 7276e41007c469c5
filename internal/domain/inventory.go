package domain

import "math"

// MaxQuantity is the largest stock or line quantity the INTEGER columns hold.
const MaxQuantity = math.MaxInt32

type Inventory struct {
	ID        int64 `json:"id"`
	StoreID   int64 `json:"store_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}
