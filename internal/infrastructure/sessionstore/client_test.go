package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopbridge/internal/domain"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(ts.URL, zerolog.Nop())
}

func TestStoreThenLoadRoundTrip(t *testing.T) {
	expires := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	var stored sessionRecord

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/sessions":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&stored))
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodGet && r.URL.Path == "/sessions/s1":
			w.Header().Set("Content-Type", "application/json")
			require.NoError(t, json.NewEncoder(w).Encode(stored))
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	in := &domain.Session{
		ID:          "s1",
		Shop:        "a.myshopify.com",
		IsOnline:    true,
		AccessToken: "tok",
		Scope:       "read_products write_orders",
		Expires:     &expires,
		OnlineAccessInfo: &domain.OnlineAccessInfo{
			AssociatedUser: &domain.AssociatedUser{ID: 42, Email: "staff@example.com"},
		},
	}
	require.NoError(t, client.Store(context.Background(), in))

	out, err := client.Load(context.Background(), "s1")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "s1", out.ID)
	assert.Equal(t, "a.myshopify.com", out.Shop)
	assert.Equal(t, "tok", out.AccessToken)
	assert.Equal(t, "read_products write_orders", out.Scope)
	assert.True(t, out.IsOnline)
	require.NotNil(t, out.Expires)
	assert.True(t, out.Expires.Equal(expires))
	require.NotNil(t, out.OnlineAccessInfo)
	require.NotNil(t, out.OnlineAccessInfo.AssociatedUser)
	assert.Equal(t, int64(42), out.OnlineAccessInfo.AssociatedUser.ID)
}

func TestLoadNotFoundReturnsAbsent(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	session, err := client.Load(context.Background(), "s2")
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestLoadServerErrorIsPersistenceError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.Load(context.Background(), "s1")
	require.Error(t, err)
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "load", perr.Op)
}

func TestLoadMalformedBodyIsPersistenceError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	})

	_, err := client.Load(context.Background(), "s1")
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
}

func TestLoadBadExpiresIsPersistenceError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"s1","shop":"a.myshopify.com","expires":"not-a-timestamp"}`))
	})

	_, err := client.Load(context.Background(), "s1")
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
}

func TestStoreNon2xxIsPersistenceError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	})

	err := client.Store(context.Background(), &domain.Session{ID: "s1", Shop: "a.myshopify.com"})
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "store", perr.Op)
}

func TestStoreTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(ts.Close)

	client := NewClientWithTimeout(ts.URL, 20*time.Millisecond, zerolog.Nop())
	err := client.Store(context.Background(), &domain.Session{ID: "s1", Shop: "a.myshopify.com"})
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
}

func TestFindByShopReturnsBackendOrder(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sessions/shop/a.myshopify.com", r.URL.Path)
		w.Write([]byte(`[{"id":"s2","shop":"a.myshopify.com"},{"id":"s1","shop":"a.myshopify.com"}]`))
	})

	sessions, err := client.FindByShop(context.Background(), "a.myshopify.com")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "s2", sessions[0].ID)
	assert.Equal(t, "s1", sessions[1].ID)
}

func TestFindByShopNotFoundIsEmpty(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	sessions, err := client.FindByShop(context.Background(), "empty.myshopify.com")
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestDelete(t *testing.T) {
	var gotPath string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.Delete(context.Background(), "s1"))
	assert.Equal(t, "/sessions/s1", gotPath)
}

func TestDeleteBackendErrorPropagates(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone wrong", http.StatusInternalServerError)
	})

	err := client.Delete(context.Background(), "s1")
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "delete", perr.Op)
}

func TestDeleteMany(t *testing.T) {
	var body struct {
		IDs []string `json:"ids"`
	}
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/sessions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.DeleteMany(context.Background(), []string{"s1", "s2"}))
	assert.Equal(t, []string{"s1", "s2"}, body.IDs)
}

func TestNetworkFailureIsPersistenceError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", zerolog.Nop())

	_, err := client.Load(context.Background(), "s1")
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.True(t, errors.Unwrap(perr) != nil)
}
