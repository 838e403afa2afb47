package api

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutBody struct {
	TicketTypeID string `json:"ticketTypeId" validate:"required"`
	Quantity     int    `json:"quantity" validate:"required,min=1"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
}

func TestCustomValidator_Validate(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		body    checkoutBody
		wantMsg string
	}{
		{"必須項目はJSONのキー名で報告する", checkoutBody{Quantity: 1}, "Missing required parameter: ticketTypeId"},
		{"最小値違反", checkoutBody{TicketTypeID: "tt-1", Quantity: -1}, "Invalid parameter: quantity must be at least 1"},
		{"その他のタグ", checkoutBody{TicketTypeID: "tt-1", Quantity: 1, Email: "nope"}, "Invalid parameter: email (email)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.body)

			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, http.StatusInternalServerError, he.Code)
			assert.Equal(t, tt.wantMsg, he.Message)
		})
	}

	t.Run("正しいボディはエラーなし", func(t *testing.T) {
		assert.NoError(t, v.Validate(&checkoutBody{TicketTypeID: "tt-1", Quantity: 2}))
	})
}
