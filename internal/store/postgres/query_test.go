package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryNumbersPlaceholdersInOrder(t *testing.T) {
	q := newQuery("SELECT * FROM transactions t")
	q.where("t.type = %s", "INCOME")
	q.where("t.product_category IS NULL")
	q.where("t.amount BETWEEN %s AND %s", 1, 10)
	q.orderBy("t.created_at DESC")
	q.limit(5)

	assert.Equal(t,
		"SELECT * FROM transactions t WHERE t.type = $1 AND t.product_category IS NULL AND t.amount BETWEEN $2 AND $3 ORDER BY t.created_at DESC LIMIT $4",
		q.String())
	assert.Equal(t, []any{"INCOME", 1, 10, 5}, q.args)
}

func TestQueryWithoutLimit(t *testing.T) {
	q := newQuery("SELECT 1")
	q.orderBy("1")
	q.limit(0)

	assert.Equal(t, "SELECT 1 ORDER BY 1", q.String())
	assert.Empty(t, q.args)
}

func TestDateKeyUsesUTC(t *testing.T) {
	got, err := parseDateKey("2026-04-01")
	assert.NoError(t, err)
	assert.Equal(t, "2026-04-01", dateKey(got))

	_, err = parseDateKey("April 1")
	assert.Error(t, err)
}
