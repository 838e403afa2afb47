package description

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDatePtBR(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"RFC3339", "2025-03-15T20:00:00Z", "15 de março de 2025 às 20:00"},
		{"オフセット付きはUTCに変換", "2025-12-31T22:30:00-03:00", "1 de janeiro de 2026 às 01:30"},
		{"datetime-local形式", "2025-07-04T09:05", "4 de julho de 2025 às 09:05"},
		{"日付のみ", "2025-01-02", "2 de janeiro de 2025 às 00:00"},
		{"解釈できない値はそのまま", "amanhã", "amanhã"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDatePtBR(tt.raw))
		})
	}
}

func TestRequest_EventInfo(t *testing.T) {
	t.Run("任意項目なし", func(t *testing.T) {
		r := Request{Title: "Festa Junina", OrganizerName: "Casa", EventDate: "2025-06-20T19:00:00Z", Location: "Recife"}

		assert.Equal(t,
			"Título: Festa Junina\nOrganizador: Casa\nData: 20 de junho de 2025 às 19:00\nLocal: Recife",
			r.EventInfo())
	})

	t.Run("カテゴリと価格あり", func(t *testing.T) {
		price := 35.5
		r := Request{Title: "Show", OrganizerName: "Ana", EventDate: "x", Location: "SP", Category: "musica", TicketPrice: &price}

		info := r.EventInfo()

		assert.Contains(t, info, "Categoria: musica")
		assert.Contains(t, info, "Preço: R$ 35.50")
	})

	t.Run("価格0はGratuito", func(t *testing.T) {
		free := 0.0
		r := Request{TicketPrice: &free}

		assert.Contains(t, r.EventInfo(), "Preço: Gratuito")
	})
}

func TestRequest_UserPrompt(t *testing.T) {
	r := Request{Title: "Show"}
	assert.Contains(t, r.UserPrompt(), "Crie uma descrição atraente para este evento:\n\nTítulo: Show")
}
