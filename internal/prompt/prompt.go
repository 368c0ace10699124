// Package prompt renders the instruction sent to the model for a consultation transcript.
package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyTranscript is returned for an empty or whitespace-only transcript.
var ErrEmptyTranscript = errors.New("transcript is empty")

const soapPrompt = `Analise a seguinte transcrição de consulta médica e organize as informações no formato SOAP médico padrão.

TRANSCRIÇÃO:
%s

Organize as informações nos seguintes campos OBRIGATÓRIOS:

SUBJETIVO (S):
- Liste todos os sintomas, queixas e histórico relatados pelo paciente
- Inclua início dos sintomas, intensidade, localização, fatores de melhora/piora
- Use bullet points para cada informação

OBJETIVO (O):
- Liste sinais vitais (PA, FC, FR, Tax, SatO2)
- Exame físico por sistemas (inspeção, palpação, percussão, ausculta)
- Dados antropométricos se mencionados
- Use bullet points para cada informação

AVALIAÇÃO (A):
- DIAGNÓSTICO PRINCIPAL ou hipótese diagnóstica mais provável (seja específico, evite termos genéricos)
- Diagnósticos diferenciais se aplicável
- Justificativa baseada nos achados do subjetivo e objetivo
- CID-10 se possível identificar
- Use bullet points para cada informação

PLANO (P):
- Tratamento medicamentoso com posologia específica
- Exames complementares solicitados
- Orientações e cuidados gerais
- Retorno e acompanhamento
- Encaminhamentos se necessário
- Use bullet points para cada item

IMPORTANTE: Na seção AVALIAÇÃO, sempre forneça um diagnóstico específico baseado nos sintomas e achados apresentados. Evite termos vagos como "a esclarecer" ou "aguardar exames".

Responda APENAS com as 4 seções organizadas, sem explicações adicionais.`

// Build interpolates transcript into the SOAP instruction template.
// Callers are expected to short-circuit blank input before calling Build;
// it still refuses it.
func Build(transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", ErrEmptyTranscript
	}
	return fmt.Sprintf(soapPrompt, transcript), nil
}
