package model

// Product is read-only catalog data. Only the id, name and ingredient list are required;
// the remaining strings may be empty.
type Product struct {
	ID          string   `json:"id" yaml:"id" binding:"required"`
	Brand       string   `json:"brand" yaml:"brand"`
	Name        string   `json:"name" yaml:"name" binding:"required"`
	Category    string   `json:"category" yaml:"category"`
	Price       float64  `json:"price" yaml:"price" binding:"gte=0"`
	Ingredients []string `json:"ingredients" yaml:"ingredients" binding:"required,min=1"`
	ImageURL    string   `json:"imageUrl" yaml:"imageUrl"`
	Rating      float64  `json:"rating,omitempty" yaml:"rating"`
	Size        string   `json:"size,omitempty" yaml:"size"`
	Description string   `json:"description,omitempty" yaml:"description"`
}

// CartItem is one cart line. Quantity is always at least 1 inside a store.
type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}
