package domain

// Item is one line of the local cart. The JSON field names are the
// on-device storage format and must stay stable across releases.
type Item struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Image       string  `json:"image,omitempty"`
	Qty         int     `json:"qty"`
	AddedAt     int64   `json:"addedAt"`
}

// Cart is the device-local list of intended purchases, insertion-order
// preserved. Item ids are unique; Add merges by id instead of
// duplicating entries.
type Cart struct {
	Items []Item
}

// Find returns the index of the item with the given id, or -1.
func (c Cart) Find(id string) int {
	for i, it := range c.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Total sums price*qty over all items. Unset prices count as zero and
// quantities below one count as one, so a half-filled entry can never
// poison the total.
func (c Cart) Total() float64 {
	var sum float64
	for _, it := range c.Items {
		price := it.Price
		if price < 0 {
			price = 0
		}
		qty := it.Qty
		if qty < 1 {
			qty = 1
		}
		sum += price * float64(qty)
	}
	return sum
}
