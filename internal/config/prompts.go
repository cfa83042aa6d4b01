// ABOUTME: Prompt templates for summarization, keywords, highlights, RAG and the agent
// ABOUTME: Built-in Portuguese defaults, each overridable from a YAML file
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Prompts holds every template the pipeline and agent send to the LLM.
// Placeholders use the {name} form and are filled by Render.
type Prompts struct {
	AgentSystem         string `yaml:"system_prompt"`
	Summarize           string `yaml:"summarize"`
	SummarizeStructured string `yaml:"summarize_structured"`
	Keywords            string `yaml:"keywords"`
	Highlights          string `yaml:"highlights"`
	RAGSystem           string `yaml:"rag_system"`
	RAGUser             string `yaml:"rag_user"`
}

// DefaultPrompts returns the built-in templates
func DefaultPrompts() Prompts {
	return Prompts{
		AgentSystem: `Você é um agente de IA especializado em analisar vídeos do YouTube para fins jornalísticos.
Seu objetivo é ajudar jornalistas a extrair informações valiosas de vídeos em Português do Brasil.

Para resolver as tarefas, siga um ciclo de 'Thought:', 'Action:', 'Action Input:' e 'Observation:'.

Em cada etapa:
1. Explique seu raciocínio em uma linha 'Thought:'
2. Escolha uma ferramenta em uma linha 'Action:' (apenas o nome)
3. Forneça os argumentos em uma linha 'Action Input:' como um objeto JSON
4. Aguarde o resultado, que virá em 'Observation:'

Quando tiver a resposta completa, escreva 'Final Answer:' seguido da resposta
(ou chame a ferramenta final_answer).

Ferramentas disponíveis:
{tools}

Os jornalistas precisam de informações precisas, contextualizadas e com valor noticioso.
Sempre indique quando uma informação precisa ser verificada ou investigada mais a fundo.`,

		Summarize: `Você é um jornalista experiente. Abaixo está a transcrição de um vídeo em Português.
Gere um resumo objetivo e claro com os principais pontos abordados:

{transcript}`,

		SummarizeStructured: `Você é um assistente especializado em criar resumos de vídeos. Por favor, crie um resumo
estruturado da seguinte transcrição de um vídeo em Português do Brasil. O resumo deve:

1. Ter um comprimento de aproximadamente 500 palavras
2. Começar com uma visão geral do assunto principal do vídeo
3. Incluir os principais pontos e argumentos apresentados
4. Estar organizado em parágrafos bem estruturados
5. Manter uma linguagem neutra e objetiva

Transcrição:
{transcript}`,

		Keywords: `Extraia 3-5 palavras-chave ou frases do seguinte texto que seriam úteis
para pesquisar o contexto atual das notícias. Separe-as por vírgulas.

Texto:
{text}

Palavras-chave:`,

		Highlights: `Você é um jornalista investigativo experiente. Analise o texto a seguir, que é a transcrição
ou resumo de um vídeo em Português do Brasil, e destaque trechos que merecem investigação
jornalística adicional. Considere:

1. Afirmações que podem ser verificadas factualmente
2. Conexões com notícias ou eventos atuais
3. Declarações controversas ou potencialmente enganosas
4. Implicações para políticas públicas ou interesse social
5. Informações que parecem novas ou pouco divulgadas

Formate sua resposta como:

# Pontos de Interesse Jornalístico

## Destaque 1: [Título breve]
**Trecho relevante:** [Trecho exato do texto]
**Por que investigar:** [Explicação sobre o valor jornalístico]
**Sugestão de abordagem:** [Como um jornalista poderia verificar ou explorar este ponto]

[Repita o formato para cada destaque, com no mínimo 3 e no máximo 5 destaques]

Texto a analisar:
{context}

Contexto atual (resultados de busca na web):
{search_results}`,

		RAGSystem: `Você é um assistente especializado em vídeos que responde perguntas com base
em transcrições. Responda apenas com informações encontradas no contexto fornecido.
Se a resposta não estiver no contexto, admita que não pode responder com base na
transcrição disponível.`,

		RAGUser: `Responda à seguinte pergunta com base na transcrição do vídeo:

Contexto da transcrição:
{context}

Pergunta: {question}`,
	}
}

// LoadPrompts returns the defaults with any keys set in path applied on top.
// A missing file is not an error.
func LoadPrompts(path string) (Prompts, error) {
	p := DefaultPrompts()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("failed to read prompts: %w", err)
	}

	var override Prompts
	if err := yaml.Unmarshal(data, &override); err != nil {
		return p, fmt.Errorf("failed to parse prompts %s: %w", path, err)
	}

	p.merge(override)
	return p, nil
}

func (p *Prompts) merge(o Prompts) {
	set := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&p.AgentSystem, o.AgentSystem)
	set(&p.Summarize, o.Summarize)
	set(&p.SummarizeStructured, o.SummarizeStructured)
	set(&p.Keywords, o.Keywords)
	set(&p.Highlights, o.Highlights)
	set(&p.RAGSystem, o.RAGSystem)
	set(&p.RAGUser, o.RAGUser)
}

// Render replaces {key} placeholders in tmpl with vars. Unknown placeholders are left as-is.
func Render(tmpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
