package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseVerdict(t *testing.T) {
	verdict := parseVerdict(`{"advice":"buy","score":78,"trend":"up","summary":"momentum intact"}`)
	require.Equal(t, "buy", verdict.Advice)
	require.Equal(t, 78, verdict.Score)
	require.Equal(t, "momentum intact", verdict.Summary)
}

func TestParseVerdictFencedJSON(t *testing.T) {
	text := "```json\n{\"advice\":\"sell\",\"score\":20,\"trend\":\"down\",\"summary\":\"deteriorating\"}\n```"

	verdict := parseVerdict(text)
	require.Equal(t, "sell", verdict.Advice)
	require.Equal(t, 20, verdict.Score)
}

func TestParseVerdictProseFallsBack(t *testing.T) {
	verdict := parseVerdict("I would cautiously hold this fund for now.")
	require.Equal(t, "hold", verdict.Advice)
	require.Equal(t, 50, verdict.Score)
	require.Contains(t, verdict.Summary, "cautiously hold")
}
