package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type receiveLine struct {
	ItemID   string `json:"item_id" binding:"required"`
	Quantity int64  `json:"quantity" binding:"min=0"`
}

type receiveBody struct {
	StoreID string        `json:"store_id" binding:"required"`
	Items   []receiveLine `json:"items" binding:"required,min=1,dive"`
	Notes   string        `json:"notes" binding:"max=5"`
}

func bindReceive(t *testing.T, body string) error {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	var req receiveBody
	return c.ShouldBindJSON(&req)
}

func TestValidationDetails(t *testing.T) {
	SetupValidator()

	err := bindReceive(t, `{"items":[{"item_id":"","quantity":-2}],"notes":"too long"}`)
	require.Error(t, err)

	details := ValidationDetails(err)
	fields := make(map[string]string, len(details))
	for _, d := range details {
		fields[d.Field] = d.Message
	}

	assert.Equal(t, "This field is required", fields["store_id"])
	assert.Equal(t, "This field is required", fields["items[0].item_id"])
	assert.Equal(t, "Must be at least 0", fields["items[0].quantity"])
	assert.Equal(t, "Must be at most 5 characters", fields["notes"])
}

func TestValidationDetails_EmptyItems(t *testing.T) {
	SetupValidator()

	details := ValidationDetails(bindReceive(t, `{"store_id":"s1","items":[]}`))
	require.Len(t, details, 1)
	assert.Equal(t, "items", details[0].Field)
	assert.Equal(t, "Must contain at least 1 item(s)", details[0].Message)
}

func TestValidationDetails_NotAValidationError(t *testing.T) {
	err := bindReceive(t, `{"store_id":`)
	require.Error(t, err)
	assert.Nil(t, ValidationDetails(err))
}
