package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gotodo/todo-service/internal/items/service"
	"github.com/gotodo/todo-service/internal/models"
	"github.com/gotodo/todo-service/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// asUser stands in for the auth middleware: it trusts the X-User header.
func asUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if u := c.GetHeader("X-User"); u != "" {
			c.Request = c.Request.WithContext(middleware.WithPrincipal(c.Request.Context(), middleware.Principal{UserID: u, Username: u}))
		}
		c.Next()
	}
}

func newItemsRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	NewItemHandler(service.NewMemoryService()).RegisterRoutes(g, asUser())
	return g
}

func do(g http.Handler, method, path, user, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("X-User", user)
	}
	g.ServeHTTP(w, req)
	return w
}

func TestItemCRUD(t *testing.T) {
	g := newItemsRouter()

	w := do(g, http.MethodPost, "/items", "alice", `{"text":"buy milk"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	require.Equal(t, "buy milk", created.Text)
	require.False(t, created.Completed)
	require.Equal(t, "alice", created.UserID)

	w = do(g, http.MethodGet, "/items", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)

	w = do(g, http.MethodPut, "/items/"+created.ID, "alice", `{"completed":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.True(t, updated.Completed)
	assert.Equal(t, "buy milk", updated.Text)

	w = do(g, http.MethodDelete, "/items/"+created.ID, "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"Todo deleted successfully"}`, w.Body.String())

	w = do(g, http.MethodGet, "/items", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[]`, w.Body.String())
}

func TestItemsAreOwnerScoped(t *testing.T) {
	g := newItemsRouter()
	w := do(g, http.MethodPost, "/items", "alice", `{"text":"secret"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var it models.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &it))

	w = do(g, http.MethodGet, "/items", "bob", "")
	require.JSONEq(t, `[]`, w.Body.String())

	notFound := `{"error":"Todo not found or user not authorized"}`
	w = do(g, http.MethodPut, "/items/"+it.ID, "bob", `{"text":"mine"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, notFound, w.Body.String())

	w = do(g, http.MethodDelete, "/items/"+it.ID, "bob", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, notFound, w.Body.String())

	w = do(g, http.MethodPut, "/items/does-not-exist", "alice", `{"text":"x"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, notFound, w.Body.String())
}

func TestUpdateCannotChangeOwner(t *testing.T) {
	g := newItemsRouter()
	w := do(g, http.MethodPost, "/items", "alice", `{"text":"keep"}`)
	var it models.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &it))

	w = do(g, http.MethodPut, "/items/"+it.ID, "alice", `{"completed":true,"userId":"bob","id":"other"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var up models.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &up))
	require.Equal(t, "alice", up.UserID)
	require.Equal(t, it.ID, up.ID)

	w = do(g, http.MethodGet, "/items", "bob", "")
	require.JSONEq(t, `[]`, w.Body.String())
}

func TestItemValidationErrors(t *testing.T) {
	g := newItemsRouter()

	w := do(g, http.MethodPost, "/items", "alice", `{"text":"   "}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Todo text must be between 1 and 500 characters")

	w = do(g, http.MethodPost, "/items", "alice", `{"text":"`+strings.Repeat("x", 501)+`"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(g, http.MethodPost, "/items", "alice", `{"text":`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(g, http.MethodPost, "/items", "alice", `{"text":"ok"}`)
	var it models.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &it))

	w = do(g, http.MethodPut, "/items/"+it.ID, "alice", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "At least one of text or completed must be provided")

	w = do(g, http.MethodPut, "/items/"+it.ID, "alice", `{"completed":"yes"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestItemsWithoutPrincipalAre401(t *testing.T) {
	g := newItemsRouter()
	w := do(g, http.MethodGet, "/items", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateEscapesMarkup(t *testing.T) {
	g := newItemsRouter()
	w := do(g, http.MethodPost, "/items", "alice", `{"text":"<b>bold</b>"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var it models.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &it))
	require.Equal(t, "&lt;b&gt;bold&lt;&#x2F;b&gt;", it.Text)
}
