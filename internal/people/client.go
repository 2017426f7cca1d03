// Package people is the social directory client: browse users and
// their gardens.
package people

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"

	plantdomain "github.com/sprigapp/sprig/internal/plants/domain"
	plantsrest "github.com/sprigapp/sprig/internal/plants/rest"
	"github.com/sprigapp/sprig/pkg/rest"
)

type Person struct {
	ID    string
	Name  string
	Email string
	Photo string
}

// Detail pairs a person with the plants they grow.
type Detail struct {
	Person Person
	Plants []plantdomain.Plant
}

type Client struct {
	api    *rest.Client
	plants *plantsrest.Client
}

func NewClient(api *rest.Client, plants *plantsrest.Client) *Client {
	return &Client{api: api, plants: plants}
}

type personWire struct {
	MongoID string `json:"_id"`
	AltID   string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Photo   string `json:"photo"`
}

func (w personWire) toPerson() Person {
	id := w.MongoID
	if id == "" {
		id = w.AltID
	}
	return Person{ID: id, Name: w.Name, Email: w.Email, Photo: w.Photo}
}

func (c *Client) List(ctx context.Context) ([]Person, error) {
	var wire []personWire
	if err := c.api.Get(ctx, "/api/users", &wire); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]Person, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.toPerson())
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id string) (Person, error) {
	var w personWire
	if err := c.api.Get(ctx, "/api/users/"+url.PathEscape(id), &w); err != nil {
		return Person{}, fmt.Errorf("get user %s: %w", id, err)
	}
	return w.toPerson(), nil
}

// Detail loads the profile and its plants in parallel.
func (c *Client) Detail(ctx context.Context, id string) (Detail, error) {
	var d Detail

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := c.Get(ctx, id)
		if err != nil {
			return err
		}
		d.Person = p
		return nil
	})
	g.Go(func() error {
		plants, err := c.plants.List(ctx, plantsrest.ListOptions{UserID: id})
		if err != nil {
			return err
		}
		d.Plants = plants
		return nil
	})

	if err := g.Wait(); err != nil {
		return Detail{}, err
	}
	return d, nil
}
