package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sprigapp/sprig/pkg/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	api, err := rest.New(srv.URL)
	require.NoError(t, err)
	return NewClient(api), srv
}

func TestListForSale(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/plants", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("forSale"))
		w.Write([]byte(`{"success":true,"data":[{"_id":"p1","name":"Monstera","price":12.5,"forSale":true}]}`))
	}))

	plants, err := c.List(context.Background(), ListOptions{ForSale: true})
	require.NoError(t, err)
	require.Len(t, plants, 1)
	assert.Equal(t, "p1", plants[0].ID)
	assert.Equal(t, 12.5, plants[0].Price)
}

func TestGetFallsBackToAltID(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"p9","name":"Fern"}`))
	}))

	p, err := c.Get(context.Background(), "p9")
	require.NoError(t, err)
	assert.Equal(t, "p9", p.ID)
}

func TestBrowseFetchesPlantsAndCategories(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/plants":
			w.Write([]byte(`[{"_id":"p1","name":"Monstera"}]`))
		case "/api/categories":
			w.Write([]byte(`[{"_id":"c1","name":"Tropical"}]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	cat, err := c.Browse(context.Background())
	require.NoError(t, err)
	require.Len(t, cat.Plants, 1)
	require.Len(t, cat.Categories, 1)
	assert.Equal(t, "Tropical", cat.Categories[0].Name)
}

func TestBuy(t *testing.T) {
	t.Run("success echoes stock count", func(t *testing.T) {
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/plants/p1/buy", r.URL.Path)

			var body map[string]int
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, 2, body["qty"])

			w.Write([]byte(`{"success":true,"data":{"stockCount":7}}`))
		}))

		rec, err := c.Buy(context.Background(), "p1", 2)
		require.NoError(t, err)
		require.NotNil(t, rec.StockCount)
		assert.Equal(t, 7, *rec.StockCount)
	})

	t.Run("qty below one is coerced", func(t *testing.T) {
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]int
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, 1, body["qty"])
			w.Write([]byte(`{"success":true,"data":{}}`))
		}))

		rec, err := c.Buy(context.Background(), "p1", 0)
		require.NoError(t, err)
		assert.Nil(t, rec.StockCount)
	})

	t.Run("failure surfaces server message", func(t *testing.T) {
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"success":false,"message":"insufficient stock"}`))
		}))

		_, err := c.Buy(context.Background(), "p1", 1)
		require.Error(t, err)
		assert.Equal(t, "insufficient stock", err.Error())
	})
}

func TestSetSaleFallsBackOn404(t *testing.T) {
	var gotUpdate bool
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/plants/p1/sale":
			w.WriteHeader(http.StatusNotFound)
		case r.URL.Path == "/api/plants/p1" && r.Method == http.MethodGet:
			w.Write([]byte(`{"_id":"p1","name":"Monstera","price":5}`))
		case r.URL.Path == "/api/plants/p1" && r.Method == http.MethodPut:
			gotUpdate = true
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, 9.5, body["price"])
			assert.Equal(t, true, body["forSale"])
			w.Write([]byte(`{"_id":"p1"}`))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))

	require.NoError(t, c.SetSale(context.Background(), "p1", 9.5, true))
	assert.True(t, gotUpdate)
}
