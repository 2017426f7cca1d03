// Package rest talks to the plant endpoints of the marketplace API.
package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/sprigapp/sprig/internal/plants/domain"
	"github.com/sprigapp/sprig/pkg/rest"
)

type Client struct {
	api *rest.Client
}

func NewClient(api *rest.Client) *Client {
	return &Client{api: api}
}

// plantWire tolerates both id spellings the backend emits.
type plantWire struct {
	MongoID     string   `json:"_id"`
	AltID       string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Image       string   `json:"image"`
	ForSale     bool     `json:"forSale"`
	StockCount  int      `json:"stockCount"`
	Watering    bool     `json:"watering"`
	Sunlight    bool     `json:"sunlight"`
	Nutrients   bool     `json:"nutrients"`
	Humidity    string   `json:"humidity"`
	Height      string   `json:"height"`
	Temperature string   `json:"temperature"`
	CategoryIDs []string `json:"categoryIds"`
	CreatedBy   string   `json:"createdBy"`
}

func (w plantWire) toDomain() domain.Plant {
	id := w.MongoID
	if id == "" {
		id = w.AltID
	}
	return domain.Plant{
		ID:          id,
		Name:        w.Name,
		Description: w.Description,
		Price:       w.Price,
		Image:       w.Image,
		ForSale:     w.ForSale,
		StockCount:  w.StockCount,
		Watering:    w.Watering,
		Sunlight:    w.Sunlight,
		Nutrients:   w.Nutrients,
		Humidity:    w.Humidity,
		Height:      w.Height,
		Temperature: w.Temperature,
		CategoryIDs: w.CategoryIDs,
		CreatedBy:   w.CreatedBy,
	}
}

type categoryWire struct {
	MongoID string `json:"_id"`
	AltID   string `json:"id"`
	Name    string `json:"name"`
}

type ListOptions struct {
	ForSale bool
	UserID  string
}

func (c *Client) List(ctx context.Context, opts ListOptions) ([]domain.Plant, error) {
	path := "/api/plants"
	if opts.UserID != "" {
		path = "/api/plants/user/" + url.PathEscape(opts.UserID) + "?per_page=100"
	} else if opts.ForSale {
		path += "?forSale=true"
	}

	var wire []plantWire
	if err := c.api.Get(ctx, path, &wire); err != nil {
		return nil, fmt.Errorf("list plants: %w", err)
	}

	plants := make([]domain.Plant, 0, len(wire))
	for _, w := range wire {
		plants = append(plants, w.toDomain())
	}
	return plants, nil
}

func (c *Client) Get(ctx context.Context, id string) (domain.Plant, error) {
	var w plantWire
	if err := c.api.Get(ctx, "/api/plants/"+url.PathEscape(id), &w); err != nil {
		return domain.Plant{}, fmt.Errorf("get plant %s: %w", id, err)
	}
	return w.toDomain(), nil
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var wire []categoryWire
	if err := c.api.Get(ctx, "/api/categories", &wire); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	cats := make([]domain.Category, 0, len(wire))
	for _, w := range wire {
		id := w.MongoID
		if id == "" {
			id = w.AltID
		}
		cats = append(cats, domain.Category{ID: id, Name: w.Name})
	}
	return cats, nil
}

// Browse loads the store front: sellable plants and categories in
// parallel, failing fast if either call fails.
func (c *Client) Browse(ctx context.Context) (domain.Catalog, error) {
	var cat domain.Catalog

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		plants, err := c.List(ctx, ListOptions{ForSale: true})
		if err != nil {
			return err
		}
		cat.Plants = plants
		return nil
	})
	g.Go(func() error {
		cats, err := c.Categories(ctx)
		if err != nil {
			return err
		}
		cat.Categories = cats
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.Catalog{}, err
	}
	return cat, nil
}

// Receipt is the payload of a successful buy. StockCount is nil when
// the server did not report remaining stock.
type Receipt struct {
	StockCount *int `json:"stockCount"`
}

type buyRequest struct {
	Qty int `json:"qty"`
}

// Buy purchases qty units of one plant. Quantities below one are
// coerced to one before hitting the wire.
func (c *Client) Buy(ctx context.Context, id string, qty int) (Receipt, error) {
	if qty < 1 {
		qty = 1
	}

	var rec Receipt
	err := c.api.Post(ctx, "/api/plants/"+url.PathEscape(id)+"/buy", buyRequest{Qty: qty}, &rec)
	if err != nil {
		return Receipt{}, err
	}
	return rec, nil
}

type upsertRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Image       string   `json:"image,omitempty"`
	ForSale     bool     `json:"forSale"`
	Watering    bool     `json:"watering"`
	Sunlight    bool     `json:"sunlight"`
	Nutrients   bool     `json:"nutrients"`
	Humidity    string   `json:"humidity,omitempty"`
	Height      string   `json:"height,omitempty"`
	Temperature string   `json:"temperature,omitempty"`
	CategoryIDs []string `json:"categoryIds,omitempty"`
}

func toUpsert(p domain.Plant) upsertRequest {
	return upsertRequest{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
		ForSale:     p.ForSale,
		Watering:    p.Watering,
		Sunlight:    p.Sunlight,
		Nutrients:   p.Nutrients,
		Humidity:    p.Humidity,
		Height:      p.Height,
		Temperature: p.Temperature,
		CategoryIDs: p.CategoryIDs,
	}
}

func (c *Client) Create(ctx context.Context, p domain.Plant) (domain.Plant, error) {
	var w plantWire
	if err := c.api.Post(ctx, "/api/plants", toUpsert(p), &w); err != nil {
		return domain.Plant{}, fmt.Errorf("create plant: %w", err)
	}
	return w.toDomain(), nil
}

func (c *Client) Update(ctx context.Context, p domain.Plant) (domain.Plant, error) {
	var w plantWire
	if err := c.api.Put(ctx, "/api/plants/"+url.PathEscape(p.ID), toUpsert(p), &w); err != nil {
		return domain.Plant{}, fmt.Errorf("update plant %s: %w", p.ID, err)
	}
	return w.toDomain(), nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, "/api/plants/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete plant %s: %w", id, err)
	}
	return nil
}

type saleRequest struct {
	Price   float64 `json:"price"`
	ForSale bool    `json:"forSale"`
}

// SetSale flips the for-sale flag via the dedicated sale endpoint.
// Older backends lack that route, so a 404 falls back to a full
// update of the plant record.
func (c *Client) SetSale(ctx context.Context, id string, price float64, forSale bool) error {
	err := c.api.Put(ctx, "/api/plants/"+url.PathEscape(id)+"/sale", saleRequest{Price: price, ForSale: forSale}, nil)
	if err == nil {
		return nil
	}

	var apiErr *rest.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		return fmt.Errorf("set sale on plant %s: %w", id, err)
	}

	p, err := c.Get(ctx, id)
	if err != nil {
		return err
	}
	p.Price = price
	p.ForSale = forSale
	_, err = c.Update(ctx, p)
	return err
}

type stockRequest struct {
	StockCount int `json:"stockCount"`
}

func (c *Client) SetStock(ctx context.Context, id string, n int) error {
	if n < 0 {
		n = 0
	}
	if err := c.api.Put(ctx, "/api/plants/"+url.PathEscape(id)+"/stock", stockRequest{StockCount: n}, nil); err != nil {
		return fmt.Errorf("set stock on plant %s: %w", id, err)
	}
	return nil
}

// ImageURL resolves the plant's image reference against the API host.
func (c *Client) ImageURL(p domain.Plant) string {
	return c.api.Resolve(p.Image)
}
