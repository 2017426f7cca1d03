package auth

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sprigapp/sprig/pkg/rest"
)

// Client is the REST implementation of the auth API.
type Client struct {
	api *rest.Client
}

func NewClient(api *rest.Client) *Client {
	return &Client{api: api}
}

type userWire struct {
	MongoID string `json:"_id"`
	AltID   string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Photo   string `json:"photo"`
}

func (w userWire) toUser() User {
	id := w.MongoID
	if id == "" {
		id = w.AltID
	}
	return User{ID: id, Name: w.Name, Email: w.Email, Photo: w.Photo}
}

type credentialsWire struct {
	Token string   `json:"token"`
	User  userWire `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, email, password string) (Credentials, error) {
	var wire credentialsWire
	err := c.api.Post(ctx, "/api/auth/login", loginRequest{Email: email, Password: password}, &wire)
	if err != nil {
		return Credentials{}, fmt.Errorf("login: %w", err)
	}
	return Credentials{Token: wire.Token, User: wire.User.toUser()}, nil
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Register(ctx context.Context, name, email, password string) (Credentials, error) {
	var wire credentialsWire
	err := c.api.Post(ctx, "/api/auth/register", registerRequest{Name: name, Email: email, Password: password}, &wire)
	if err != nil {
		return Credentials{}, fmt.Errorf("register: %w", err)
	}
	return Credentials{Token: wire.Token, User: wire.User.toUser()}, nil
}

// UploadPhoto sends a compressed profile photo and returns the stored
// image reference.
func (c *Client) UploadPhoto(ctx context.Context, userID, filename string, data []byte) (string, error) {
	var out struct {
		Photo string `json:"photo"`
	}
	path := "/api/users/" + url.PathEscape(userID) + "/upload"
	if err := c.api.PostMultipart(ctx, path, "photo", filename, data, &out); err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}
	return out.Photo, nil
}
