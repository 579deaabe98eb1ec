package repositories

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipprotect/internal/models"
)

func TestInsertOnce_IgnoresRepeatedCart(t *testing.T) {
	order := &models.ProtectedOrder{
		ShopID:    1,
		Reference: "ref-1",
		CartToken: "c1",
		VariantID: "v3",
		Fee:       decimal.RequireFromString("2.98"),
		Currency:  "USD",
	}

	sql := insertOnce(dryRunDB(t), order).Statement.SQL.String()
	assert.Contains(t, sql, `ON CONFLICT ("shop_id","cart_token") DO NOTHING`)
}

func TestProtectedOrder_CartUniquePerShop(t *testing.T) {
	db := dryRunDB(t)
	require.NoError(t, db.Statement.Parse(&models.ProtectedOrder{}))

	idx := db.Statement.Schema.LookIndex("idx_protected_orders_shop_cart")
	require.NotNil(t, idx)
	assert.Equal(t, "UNIQUE", idx.Class)
	require.Len(t, idx.Fields, 2)
	assert.Equal(t, "shop_id", idx.Fields[0].DBName)
	assert.Equal(t, "cart_token", idx.Fields[1].DBName)
}
