package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPagination(t *testing.T) {
	r := httptest.NewRequest("GET", "/transactions/all?page=3&limit=20", nil)
	p, err := ExtractPagination(r)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 40, p.Offset)
}

func TestExtractPaginationDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/transactions/all", nil)
	p, err := ExtractPagination(r)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 50, p.Limit)
	assert.Equal(t, 0, p.Offset)
}

func TestExtractPaginationRejectsInvalid(t *testing.T) {
	for _, q := range []string{"page=0", "page=abc", "limit=-1", "limit=x"} {
		r := httptest.NewRequest("GET", "/transactions/all?"+q, nil)
		_, err := ExtractPagination(r)
		assert.Error(t, err, q)
	}
}
