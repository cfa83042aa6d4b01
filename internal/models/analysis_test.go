// ABOUTME: Tests for derived artifact helpers
// ABOUTME: Covers highlight counting, answer rendering and transcript rendering
package models

import (
	"strings"
	"testing"
)

func TestHighlights_Count(t *testing.T) {
	text := `# Pontos de Interesse Jornalístico

## Destaque 1: Orçamento
**Trecho relevante:** "..."

## Destaque 2: Contratos
**Trecho relevante:** "..."

  ## Destaque 3: Saúde
`
	h := Highlights{Text: text}
	if got := h.Count(); got != 3 {
		t.Errorf("Count() = %d, want 3", got)
	}

	if got := (Highlights{Text: "texto livre sem formato"}).Count(); got != 0 {
		t.Errorf("Count() on free text = %d, want 0", got)
	}
}

func TestAnswer_Render(t *testing.T) {
	a := Answer{Text: "O prefeito citou 3 obras."}
	got := a.Render()
	if !strings.HasPrefix(got, AnswerLabel+"\n\n") {
		t.Errorf("Render() = %q, want label prefix", got)
	}
	if !strings.HasSuffix(got, a.Text) {
		t.Errorf("Render() = %q, want answer text at the end", got)
	}

	noIndex := Answer{Text: "sem índice", NoIndex: true}
	if noIndex.Render() != "sem índice" {
		t.Errorf("Render() with NoIndex = %q, want bare text", noIndex.Render())
	}
}

func TestTranscript_RenderAndLen(t *testing.T) {
	tr := Transcript{Title: "Entrevista", Text: "ação"}
	if tr.Len() != 4 {
		t.Errorf("Len() = %d, want 4 runes", tr.Len())
	}
	want := "Transcrição completa do vídeo: Entrevista\n\nação"
	if tr.Render() != want {
		t.Errorf("Render() = %q, want %q", tr.Render(), want)
	}
}
