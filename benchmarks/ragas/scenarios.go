// ABOUTME: Question-answering scenarios for RAGAS benchmarks over video transcripts
// ABOUTME: Each scenario pairs a transcript and a question with ground truth for evaluation

package ragas

import "strings"

// Scenario is one transcript question with its expected outcome
type Scenario struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Transcript  string      `json:"-"`
	Question    string      `json:"question"`
	GroundTruth GroundTruth `json:"ground_truth"`
}

// GroundTruth defines expected outcomes for RAGAS evaluation
type GroundTruth struct {
	ExpectedInAnswer  []string `json:"expected_in_answer,omitempty"`  // must appear in the answer
	ForbiddenInAnswer []string `json:"forbidden_in_answer,omitempty"` // must not appear in the answer

	// Strings that should be present in the retrieved chunks
	ExpectedContext []string `json:"expected_context,omitempty"`
}

// filler pads transcripts so the interesting sentence lands in a later chunk
func filler(sentences int) string {
	base := []string{
		"Boa noite a todos que acompanham a transmissão ao vivo da câmara municipal.",
		"A sessão de hoje começou com a leitura da ata da reunião anterior.",
		"Os vereadores discutiram a pauta de requerimentos e moções de aplauso.",
		"Houve um intervalo de quinze minutos para ajustes no sistema de som.",
		"O público presente nas galerias se manifestou em alguns momentos.",
	}
	var b strings.Builder
	for i := 0; i < sentences; i++ {
		b.WriteString(base[i%len(base)])
		b.WriteString(" ")
	}
	return b.String()
}

// BudgetFigure asks for a number stated once in the middle of the speech
func BudgetFigure() Scenario {
	return Scenario{
		ID:          "orcamento",
		Name:        "Valor do orçamento",
		Description: "The answer must quote the figure exactly as spoken and not invent another one",
		Transcript: filler(6) +
			"O secretário de saúde anunciou que o orçamento da saúde para o próximo ano será de 2,3 bilhões de reais, " +
			"com prioridade para a atenção básica e a reforma de doze unidades de pronto atendimento. " +
			filler(6),
		Question: "Qual é o valor do orçamento da saúde anunciado para o próximo ano?",
		GroundTruth: GroundTruth{
			ExpectedInAnswer:  []string{"2,3 bilhões"},
			ForbiddenInAnswer: []string{"milhões"},
			ExpectedContext:   []string{"2,3 bilhões"},
		},
	}
}

// QuoteAttribution asks who said a given sentence
func QuoteAttribution() Scenario {
	return Scenario{
		ID:          "citacao",
		Name:        "Autoria de declaração",
		Description: "The answer must attribute the quote to the right speaker",
		Transcript: filler(4) +
			"A vereadora Marina Duarte pediu a palavra e afirmou: a cidade não pode esperar mais um ano pela nova linha de ônibus. " +
			"Em seguida o vereador Paulo Lima respondeu que o projeto depende de verba estadual. " +
			filler(4),
		Question: "Quem disse que a cidade não pode esperar mais um ano pela nova linha de ônibus?",
		GroundTruth: GroundTruth{
			ExpectedInAnswer:  []string{"Marina Duarte"},
			ForbiddenInAnswer: []string{"Paulo Lima disse"},
			ExpectedContext:   []string{"Marina Duarte"},
		},
	}
}

// LateFact puts the answer at the very end of a long transcript
func LateFact() Scenario {
	return Scenario{
		ID:          "fim_do_video",
		Name:        "Fato no final do vídeo",
		Description: "Retrieval must reach the last chunk of a long transcript",
		Transcript: filler(25) +
			"Antes de encerrar, o presidente da câmara informou que a votação do plano diretor foi marcada para 14 de novembro.",
		Question: "Quando será a votação do plano diretor?",
		GroundTruth: GroundTruth{
			ExpectedInAnswer: []string{"14 de novembro"},
			ExpectedContext:  []string{"14 de novembro"},
		},
	}
}

// NotInVideo asks something the transcript never mentions
func NotInVideo() Scenario {
	return Scenario{
		ID:          "fora_do_video",
		Name:        "Pergunta sem resposta no vídeo",
		Description: "The model must admit the transcript does not answer the question",
		Transcript:  filler(10),
		Question:    "Qual foi o placar do jogo de futebol de domingo?",
		GroundTruth: GroundTruth{
			ExpectedInAnswer:  []string{"não"},
			ForbiddenInAnswer: []string{"a 0", "a 1", "a 2", "x 0", "x 1", "x 2"},
		},
	}
}

// AllScenarios returns every benchmark scenario
func AllScenarios() []Scenario {
	return []Scenario{
		BudgetFigure(),
		QuoteAttribution(),
		LateFact(),
		NotInVideo(),
	}
}

// ScenarioByID finds a scenario by its ID
func ScenarioByID(id string) (Scenario, bool) {
	for _, s := range AllScenarios() {
		if s.ID == id {
			return s, true
		}
	}
	return Scenario{}, false
}
