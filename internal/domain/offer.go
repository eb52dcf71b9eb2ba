package domain

type Offer struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Discount    string `json:"discount"`
	ExpiryDate  Date   `json:"expiryDate"`
	IsFavorite  bool   `json:"isFavorite"`
}
