package assistant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRespond(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantCategory Category
		wantPrefix   string
	}{
		{name: "exam keyword", input: "Проанализируй мои результаты ЕГЭ", wantCategory: CategoryAnalysis, wantPrefix: "📊"},
		{name: "score keyword", input: "сколько баллов нужно", wantCategory: CategoryAnalysis, wantPrefix: "📊"},
		{name: "institution keyword", input: "Какой УНИВЕРСИТЕТ выбрать?", wantCategory: CategoryRecommendation, wantPrefix: "🏛️"},
		{name: "college keyword", input: "колледж рядом", wantCategory: CategoryRecommendation, wantPrefix: "🏛️"},
		{name: "preparation keyword", input: "как готовиться летом", wantCategory: CategoryRecommendation, wantPrefix: "📚"},
		{name: "exam wins over institution", input: "вуз по баллам ЕГЭ", wantCategory: CategoryAnalysis, wantPrefix: "📊"},
		{name: "institution wins over preparation", input: "подготовка в вуз", wantCategory: CategoryRecommendation, wantPrefix: "🏛️"},
		{name: "fallback", input: "привет", wantCategory: CategoryGeneral, wantPrefix: "🤖"},
		{name: "empty", input: "", wantCategory: CategoryGeneral, wantPrefix: "🤖"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Respond(tt.input)
			assert.Equal(t, tt.wantCategory, got.Category)
			assert.True(t, strings.HasPrefix(got.Content, tt.wantPrefix), got.Content)
		})
	}
}

func TestRespondIsDeterministic(t *testing.T) {
	assert.Equal(t, Respond("экзамен"), Respond("ЭКЗАМЕН"))
}
