package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/KeyIP-Substructure/internal/testutil"
	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
	mtypes "github.com/turtacn/KeyIP-Substructure/pkg/types/molecule"
)

func TestMatchCmd_JSON(t *testing.T) {
	dir := t.TempDir()
	q := writeFile(t, dir, "q.json", testutil.HydroxylQuery())
	tg := writeFile(t, dir, "t.json", testutil.Ethanol())

	out, err := runCLI(t, "", "-o", "json", "match", "--query", q, "--target", tg)
	require.NoError(t, err)

	var res mtypes.MatchResultDTO
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Matched)
	assert.Equal(t, [][]int{{2, 1}}, res.Mappings)
	assert.Equal(t, "frontier", res.Algorithm)
}

func TestMatchCmd_RequestFileWithOverrides(t *testing.T) {
	dir := t.TempDir()
	req := writeFile(t, dir, "req.yaml", mtypes.MatchRequestDTO{
		Query:   testutil.CarbonPairQuery(),
		Target:  testutil.Benzene(),
		Options: mtypes.MatchOptionsDTO{Algorithm: "refinement"},
	})

	out, err := runCLI(t, "", "-o", "yaml", "match", "-r", req, "--unique", "atoms")
	require.NoError(t, err)
	var res mtypes.MatchResultDTO
	require.NoError(t, yaml.Unmarshal([]byte(out), &res))
	assert.Equal(t, 6, res.Count)
	assert.Equal(t, "refinement", res.Algorithm)

	out, err = runCLI(t, "", "-o", "json", "match", "-r", req, "--algorithm", "depthfirst", "--limit", "4")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 4, res.Count)
	assert.Equal(t, "depthfirst", res.Algorithm)
}

func TestMatchCmd_Text(t *testing.T) {
	dir := t.TempDir()
	q := writeFile(t, dir, "q.yaml", testutil.HydroxylQuery())
	tg := writeFile(t, dir, "t.yaml", testutil.Ethanol())

	out, err := runCLI(t, "", "match", "-q", q, "-t", tg)
	require.NoError(t, err)
	assert.Contains(t, out, "MATCH")
	assert.Contains(t, out, "1 mapping(s)")
	assert.Contains(t, out, "0>2 1>1")

	tg = writeFile(t, dir, "dme.yaml", testutil.DimethylEther())
	out, err = runCLI(t, "", "match", "-q", q, "-t", tg)
	require.NoError(t, err)
	assert.Contains(t, out, "NO MATCH")
}

func TestMatchCmd_Stdin(t *testing.T) {
	dir := t.TempDir()
	tg := writeFile(t, dir, "t.json", testutil.Methanol())
	q, err := json.Marshal(testutil.HydroxylQuery())
	require.NoError(t, err)

	out, err := runCLI(t, string(q), "-o", "json", "match", "-q", "-", "-t", tg)
	require.NoError(t, err)
	var res mtypes.MatchResultDTO
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1, res.Count)

	_, err = runCLI(t, "", "match", "-q", "-", "-t", "-")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestMatchCmd_Errors(t *testing.T) {
	dir := t.TempDir()
	q := writeFile(t, dir, "q.json", testutil.HydroxylQuery())
	tg := writeFile(t, dir, "t.json", testutil.Ethanol())

	_, err := runCLI(t, "", "match", "--query", q)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))

	_, err = runCLI(t, "", "match", "-q", q, "-t", tg, "--algorithm", "quantum")
	assert.True(t, errors.IsCode(err, errors.ErrCodeAlgorithmUnsupported))

	_, err = runCLI(t, "", "match", "-r", q, "-q", q)
	assert.Error(t, err)
}

func TestAnchorsCmd(t *testing.T) {
	dir := t.TempDir()
	q := writeFile(t, dir, "q.json", testutil.HydroxylQuery())
	tg := writeFile(t, dir, "t.json", testutil.Ethanol())

	out, err := runCLI(t, "", "-o", "json", "anchors", "-q", q, "-t", tg)
	require.NoError(t, err)
	var res mtypes.AnchorResultDTO
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []int{2}, res.Anchors)

	out, err = runCLI(t, "", "anchors", "-q", q, "-t", tg)
	require.NoError(t, err)
	assert.Contains(t, out, "1 anchor(s): 2")
}
