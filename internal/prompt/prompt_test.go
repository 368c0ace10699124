package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	transcript := "Médico: Boa tarde!\nPaciente: Estou com dor de cabeça há 3 dias, 100% do tempo."

	got, err := Build(transcript)
	require.NoError(t, err)
	require.Contains(t, got, "TRANSCRIÇÃO:\n"+transcript+"\n")

	for _, heading := range []string{"SUBJETIVO (S):", "OBJETIVO (O):", "AVALIAÇÃO (A):", "PLANO (P):"} {
		require.Contains(t, got, heading)
	}
	require.Contains(t, got, "CID-10")
	require.Contains(t, got, "bullet points")
	require.True(t, strings.HasSuffix(got, "sem explicações adicionais."))
	require.NotContains(t, got, "%!", "transcript must not be treated as a format string")
}

func TestBuildRejectsBlank(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t \n"} {
		_, err := Build(in)
		require.ErrorIs(t, err, ErrEmptyTranscript, "input %q", in)
	}
}
