package description

import (
	"fmt"
	"strings"
	"time"
)

// SystemPrompt はイベント説明文生成の固定システムプロンプト
const SystemPrompt = `Você é um especialista em marketing de eventos. Sua tarefa é criar descrições atraentes e envolventes para eventos.

INSTRUÇÕES:
- Crie uma descrição de 2-3 frases que capture a essência do evento
- Use linguagem convidativa e motivadora
- Destaque os pontos fortes e o que torna o evento especial
- Seja específico sobre o que os participantes podem esperar
- Use emojis quando apropriado para tornar mais visual
- NÃO repita informações já presentes (título, data, local)
- Foque no VALOR e EXPERIÊNCIA que o evento oferece

Retorne APENAS a descrição, sem texto adicional ou formatação.`

// Request は説明文生成の入力
type Request struct {
	Title         string   `json:"title"`
	OrganizerName string   `json:"organizerName"`
	EventDate     string   `json:"eventDate"`
	Location      string   `json:"location"`
	Category      string   `json:"category,omitempty"`
	TicketPrice   *float64 `json:"ticketPrice,omitempty"`
}

var monthsPtBR = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatDatePtBR は日時を「15 de março de 2025 às 20:00」形式（UTC）にする
// 解釈できない値はそのまま返す
func FormatDatePtBR(raw string) string {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		t = t.UTC()
		return fmt.Sprintf("%d de %s de %d às %02d:%02d",
			t.Day(), monthsPtBR[t.Month()-1], t.Year(), t.Hour(), t.Minute())
	}
	return raw
}

// FormatPrice は価格表示を返す（0は Gratuito）
func FormatPrice(price float64) string {
	if price == 0 {
		return "Gratuito"
	}
	return fmt.Sprintf("R$ %.2f", price)
}

// EventInfo はプロンプトに埋め込むイベント情報ブロックを組み立てる
func (r Request) EventInfo() string {
	lines := []string{
		"Título: " + r.Title,
		"Organizador: " + r.OrganizerName,
		"Data: " + FormatDatePtBR(r.EventDate),
		"Local: " + r.Location,
	}
	if r.Category != "" {
		lines = append(lines, "Categoria: "+r.Category)
	}
	if r.TicketPrice != nil {
		lines = append(lines, "Preço: "+FormatPrice(*r.TicketPrice))
	}
	return strings.Join(lines, "\n")
}

// UserPrompt はユーザーメッセージを返す
func (r Request) UserPrompt() string {
	return "Crie uma descrição atraente para este evento:\n\n" + r.EventInfo()
}
