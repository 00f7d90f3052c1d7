package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder(t *testing.T) {
	p := Product{ID: "p-starter", Name: "Python Starter Kit", Price: 199}
	o := NewOrder("HC-260314-ABCDEF", p, "", testNow)

	assert.Equal(t, StatusAwaitingPayment, o.Status)
	assert.Equal(t, "orders/HC-260314-ABCDEF", OrderKey(o.PurchaseID))
	assert.Nil(t, o.UpdatedAt)
	assert.Nil(t, o.IP)
	assert.Nil(t, o.TransactionID)
	assert.Equal(t, testNow, o.LastChange())

	data, err := json.Marshal(o)
	require.NoError(t, err)
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "updatedAt")
	assert.Nil(t, raw["updatedAt"])
	assert.Nil(t, raw["email"])
	assert.EqualValues(t, 199, raw["price"])
}

func TestOrderApply(t *testing.T) {
	o := NewOrder("HC-1", Product{ID: "p", Name: "n", Price: 1}, "10.0.0.1", testNow)
	later := testNow.Add(time.Minute)

	o.Apply(OrderPatch{Status: Ptr(StatusUnderReview), Email: Ptr("a@b.com")}, later)

	assert.Equal(t, StatusUnderReview, o.Status)
	assert.Equal(t, "a@b.com", Deref(o.Email))
	assert.Equal(t, "", Deref(o.Telegram))
	assert.Equal(t, "10.0.0.1", Deref(o.IP))
	require.NotNil(t, o.UpdatedAt)
	assert.Equal(t, later, o.LastChange())
}
