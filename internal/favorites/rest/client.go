// Package rest talks to the favorites endpoints.
package rest

import (
	"context"
	"fmt"
	"net/url"

	plantdomain "github.com/sprigapp/sprig/internal/plants/domain"
	"github.com/sprigapp/sprig/pkg/rest"
)

type Client struct {
	api *rest.Client
}

func NewClient(api *rest.Client) *Client {
	return &Client{api: api}
}

type favoriteRequest struct {
	UserID  string `json:"userId"`
	PlantID string `json:"plantId"`
}

func (c *Client) Add(ctx context.Context, userID, plantID string) error {
	return c.api.Post(ctx, "/api/favorites", favoriteRequest{UserID: userID, PlantID: plantID}, nil)
}

func (c *Client) Remove(ctx context.Context, userID, plantID string) error {
	return c.api.Delete(ctx, "/api/favorites", favoriteRequest{UserID: userID, PlantID: plantID}, nil)
}

type plantWire struct {
	MongoID     string  `json:"_id"`
	AltID       string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	ForSale     bool    `json:"forSale"`
	StockCount  int     `json:"stockCount"`
}

func (c *Client) ListByUser(ctx context.Context, userID string) ([]plantdomain.Plant, error) {
	var wire []plantWire
	if err := c.api.Get(ctx, "/api/favorites/user/"+url.PathEscape(userID), &wire); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	plants := make([]plantdomain.Plant, 0, len(wire))
	for _, w := range wire {
		id := w.MongoID
		if id == "" {
			id = w.AltID
		}
		plants = append(plants, plantdomain.Plant{
			ID:          id,
			Name:        w.Name,
			Description: w.Description,
			Price:       w.Price,
			Image:       w.Image,
			ForSale:     w.ForSale,
			StockCount:  w.StockCount,
		})
	}
	return plants, nil
}
