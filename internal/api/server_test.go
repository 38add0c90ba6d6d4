package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DesumovJP/restaraunt-OS-sub001/internal/repository"
	"github.com/DesumovJP/restaraunt-OS-sub001/internal/service"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	orders := service.NewOrders(repository.NewMemoryRepository(), nil)
	return NewServer(orders, nil, nil, 0.10)
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func createOrder(t *testing.T, s *Server) map[string]interface{} {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, "/api/v1/orders", gin.H{
		"table_id": "table-4",
		"items": []gin.H{
			{"name": "Caesar", "quantity": 1, "unit_price": 12, "course": "appetizer"},
			{"name": "Salmon", "quantity": 2, "unit_price": 26, "course": "main"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func itemIDs(t *testing.T, order map[string]interface{}) []string {
	t.Helper()
	items, ok := order["items"].([]interface{})
	require.True(t, ok)
	ids := make([]string, 0, len(items))
	for _, raw := range items {
		item := raw.(map[string]interface{})
		ids = append(ids, item["id"].(string))
	}
	return ids
}

func TestCreateOrder(t *testing.T) {
	s := newTestServer(t)
	order := createOrder(t, s)

	assert.Equal(t, "pending", order["status"])
	assert.InDelta(t, 64.0, order["subtotal"].(float64), 1e-9)
	assert.InDelta(t, 70.4, order["total"].(float64), 1e-9)
}

func TestCreateOrder_Validation(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, http.MethodPost, "/api/v1/orders", gin.H{"table_id": "t", "items": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransitionAndUndoFlow(t *testing.T) {
	s := newTestServer(t)
	order := createOrder(t, s)
	orderID := order["id"].(string)
	itemID := itemIDs(t, order)[0]

	base := fmt.Sprintf("/api/v1/orders/%s/items/%s", orderID, itemID)

	w := doJSON(t, s, http.MethodPost, base+"/status", gin.H{"status": "sent"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, s, http.MethodPost, base+"/status", gin.H{"status": "cooking"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "preparing", resp["status"])

	// Skipping ahead is a conflict, not a validation failure.
	w = doJSON(t, s, http.MethodPost, base+"/status", gin.H{"status": "served"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, s, http.MethodPost, base+"/undo", gin.H{"reason": "kitchen_error"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	history := resp["undo_history"].([]interface{})
	require.Len(t, history, 1)
	entry := history[0].(map[string]interface{})
	assert.Equal(t, "kitchen_error", entry["reason"])
}

func TestUndo_FromPendingConflicts(t *testing.T) {
	s := newTestServer(t)
	order := createOrder(t, s)
	orderID := order["id"].(string)
	itemID := itemIDs(t, order)[0]

	w := doJSON(t, s, http.MethodPost,
		fmt.Sprintf("/api/v1/orders/%s/items/%s/undo", orderID, itemID),
		gin.H{"reason": "kitchen_error"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSetComment_ConflictWarning(t *testing.T) {
	s := newTestServer(t)
	order := createOrder(t, s)
	orderID := order["id"].(string)
	itemID := itemIDs(t, order)[0]

	w := doJSON(t, s, http.MethodPut,
		fmt.Sprintf("/api/v1/orders/%s/items/%s/comment", orderID, itemID),
		gin.H{
			"text":            "guest allergy",
			"presets":         []string{"gluten_free"},
			"table_allergens": []string{"gluten_free", "nut_free"},
		})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	conflicts := resp["allergen_conflicts"].([]interface{})
	require.Len(t, conflicts, 1)
	assert.Equal(t, "gluten_free", conflicts[0])

	// The warning never blocks the save.
	inner := resp["order"].(map[string]interface{})
	items := inner["items"].([]interface{})
	comment := items[0].(map[string]interface{})["comment"].(map[string]interface{})
	visibility := comment["visibility"].([]interface{})
	assert.Equal(t, []interface{}{"kitchen"}, visibility)
}

func TestSetComment_Rejections(t *testing.T) {
	s := newTestServer(t)
	order := createOrder(t, s)
	orderID := order["id"].(string)
	itemID := itemIDs(t, order)[0]
	path := fmt.Sprintf("/api/v1/orders/%s/items/%s/comment", orderID, itemID)

	w := doJSON(t, s, http.MethodPut, path, gin.H{"presets": []string{"unobtainium"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodPut, path, gin.H{"text": strings.Repeat("x", 501)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetCourse(t *testing.T) {
	s := newTestServer(t)
	order := createOrder(t, s)
	orderID := order["id"].(string)
	itemID := itemIDs(t, order)[0]

	w := doJSON(t, s, http.MethodPut,
		fmt.Sprintf("/api/v1/orders/%s/items/%s/course", orderID, itemID),
		gin.H{"course": "main"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	items := resp["items"].([]interface{})
	moved := items[0].(map[string]interface{})
	assert.Equal(t, "main", moved["course"])
	assert.Equal(t, float64(1), moved["course_index"], "joins after the existing main")
}

func TestCancelOrder(t *testing.T) {
	s := newTestServer(t)
	order := createOrder(t, s)
	orderID := order["id"].(string)

	w := doJSON(t, s, http.MethodDelete, "/api/v1/orders/"+orderID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "cancelled", resp["status"])
}

func TestGetOrder_NotFound(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, http.MethodGet, "/api/v1/orders/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStationQueues(t *testing.T) {
	s := newTestServer(t)
	order := createOrder(t, s)
	orderID := order["id"].(string)
	appetizerID := itemIDs(t, order)[0]

	w := doJSON(t, s, http.MethodPost,
		fmt.Sprintf("/api/v1/orders/%s/items/%s/status", orderID, appetizerID),
		gin.H{"status": "sent"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/v1/kitchen/stations", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var queues map[string][]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &queues))
	require.Len(t, queues["cold"], 1, "appetizers queue on the cold station")
	assert.Empty(t, queues["grill"])
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
