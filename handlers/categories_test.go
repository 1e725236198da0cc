package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docvault/docvault/internal/categories"
	"github.com/docvault/docvault/internal/models"
	"github.com/docvault/docvault/internal/store"
)

func newCategoryRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterCategoryRoutes(r, categories.NewService(store.Open(store.NewMemoryBackend(), 0)))
	return r
}

func TestCategoryRoutes(t *testing.T) {
	r := newCategoryRouter(t)

	w := jsonReq(r, "POST", "/api/categories", gin.H{"name": "Invoices"})
	require.Equal(t, http.StatusCreated, w.Code)

	// adding an existing name (any case) returns the existing category
	w = jsonReq(r, "POST", "/api/categories", gin.H{"name": "invoices"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = jsonReq(r, "GET", "/api/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []*models.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Invoices", list[0].Name)

	w = jsonReq(r, "POST", "/api/categories", gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
