package client

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StorefrontPlatform/pkg/errors"
)

// fakeAdminAPI минимальная имитация админских функций магазина
func fakeAdminAPI(t *testing.T) *httptest.Server {
	t.Helper()

	write := func(w http.ResponseWriter, status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
	authorized := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer good-token"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin-login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "s3cret" {
			write(w, http.StatusUnauthorized, `{"ok":false,"error":"Invalid password"}`)
			return
		}
		write(w, http.StatusOK, `{"ok":true,"token":"good-token"}`)
	})
	mux.HandleFunc("/api/admin-orders-list", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer old-token" {
			write(w, http.StatusUnauthorized, `{"ok":false,"error":"Session expired"}`)
			return
		}
		if !authorized(r) {
			write(w, http.StatusUnauthorized, `{"ok":false,"error":"Unauthorized"}`)
			return
		}
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		write(w, http.StatusOK, `{"ok":true,"orders":[{"purchaseId":"HC-260101-ABCDEF","status":"under_review","createdAt":"2026-01-01T10:00:00Z","productId":"p1","productName":"Pro","price":199}]}`)
	})
	mux.HandleFunc("/api/admin-order-status", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["purchaseId"] == "" || body["status"] == "" {
			write(w, http.StatusBadRequest, `{"ok":false,"error":"Missing fields"}`)
			return
		}
		if body["purchaseId"] != "HC-260101-ABCDEF" {
			write(w, http.StatusNotFound, `{"ok":false,"error":"Order not found"}`)
			return
		}
		write(w, http.StatusOK, `{"ok":true}`)
	})
	mux.HandleFunc("/api/admin-config-get", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, `{"ok":true,"config":{"version":3,"brand":{"name":"Hidden Shop","tagline":""},"payment":{"number":"01576593082","methods":["bKash"]},"support":{"telegram":"@HiddenSupport"},"products":[]}}`)
	})
	mux.HandleFunc("/api/admin-config-update", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.JSONEq(t, `{"brand":{"name":"New"}}`, string(body["config"]))
		write(w, http.StatusOK, `{"ok":true,"version":4}`)
	})
	mux.HandleFunc("/api/broken", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusBadGateway, `<html>bad gateway</html>`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAdminClient_Login(t *testing.T) {
	srv := fakeAdminAPI(t)
	c := NewAdminClient(srv.URL+"/api/", "", time.Second, nil)

	token, err := c.Login(t.Context(), "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "good-token", token)

	_, err = c.Login(t.Context(), "wrong")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrUnauthorized))
	e, _ := errors.As(err)
	assert.Equal(t, "Invalid password", e.Message)
}

func TestAdminClient_ListOrders(t *testing.T) {
	srv := fakeAdminAPI(t)
	c := NewAdminClient(srv.URL+"/api", "good-token", time.Second, nil)

	orders, err := c.ListOrders(t.Context(), 5)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "HC-260101-ABCDEF", orders[0].PurchaseID)
	assert.Equal(t, 199.0, orders[0].Price)
	assert.Nil(t, orders[0].TransactionID)

	_, err = c.WithToken("").ListOrders(t.Context(), 5)
	assert.True(t, errors.HasCode(err, errors.ErrUnauthorized))

	_, err = c.WithToken("old-token").ListOrders(t.Context(), 5)
	assert.True(t, errors.HasCode(err, errors.ErrSessionExpired))
}

func TestAdminClient_SetOrderStatus(t *testing.T) {
	srv := fakeAdminAPI(t)
	c := NewAdminClient(srv.URL+"/api", "good-token", time.Second, nil)

	require.NoError(t, c.SetOrderStatus(t.Context(), "HC-260101-ABCDEF", "paid"))
	assert.True(t, errors.HasCode(c.SetOrderStatus(t.Context(), "HC-260101-ZZZZZZ", "paid"), errors.ErrNotFound))
	assert.True(t, errors.HasCode(c.SetOrderStatus(t.Context(), "", ""), errors.ErrValidation))
}

func TestAdminClient_Config(t *testing.T) {
	srv := fakeAdminAPI(t)
	c := NewAdminClient(srv.URL+"/api", "good-token", time.Second, nil)

	cfg, err := c.GetConfig(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(3), cfg.Version)
	assert.Equal(t, "Hidden Shop", cfg.Brand.Name)
	assert.Equal(t, []string{"bKash"}, cfg.Payment.Methods)

	version, err := c.UpdateConfig(t.Context(), json.RawMessage(`{"brand":{"name":"New"}}`))
	require.NoError(t, err)
	assert.Equal(t, int64(4), version)
}

func TestAdminClient_NonJSONResponse(t *testing.T) {
	srv := fakeAdminAPI(t)
	c := NewAdminClient(srv.URL+"/api", "", time.Second, nil)

	err := c.do(t.Context(), http.MethodGet, "broken", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInternal))
	assert.Contains(t, err.Error(), "status 502")
}
