package domain

type Plant struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Image       string
	ForSale     bool
	StockCount  int

	// Care flags and stats shown on the care screen.
	Watering    bool
	Sunlight    bool
	Nutrients   bool
	Humidity    string
	Height      string
	Temperature string

	CategoryIDs []string
	CreatedBy   string
}

type Category struct {
	ID   string
	Name string
}

// Catalog is the store-front payload: sellable plants plus the
// category list used to label them.
type Catalog struct {
	Plants     []Plant
	Categories []Category
}
