package testutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Substructure/internal/testutil"
	mtypes "github.com/turtacn/KeyIP-Substructure/pkg/types/molecule"
)

func TestMockLogger(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.Info("test info", logging.String("key", "value"))

	messages := logger.GetMessages()
	assert.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	assert.Equal(t, "test info", messages[0].Message)

	logger.Clear()
	assert.Len(t, logger.GetMessages(), 0)

	logger.Error("test error")
	assert.True(t, logger.HasMessage("error", "test error"))
	assert.False(t, logger.HasMessage("info", "test info"))
}

func TestMockLogger_WithAndNamed(t *testing.T) {
	root := testutil.NewMockLogger()
	child := root.Named("screen").With(logging.String("job_id", "j1"))
	child.Warn("slow", logging.Int("n", 3))

	msg, ok := root.Find("warn", "slow")
	require.True(t, ok)
	assert.Equal(t, "screen", msg.Logger)
	v, ok := msg.Field("job_id")
	require.True(t, ok)
	assert.Equal(t, "j1", v)
	v, _ = msg.Field("n")
	assert.Equal(t, 3, v)

	root.Info("plain")
	plain, _ := root.Find("info", "plain")
	_, ok = plain.Field("job_id")
	assert.False(t, ok)
}

func TestFixturesAreValid(t *testing.T) {
	for _, m := range []mtypes.MoleculeGraphDTO{testutil.Ethanol(), testutil.Methanol(), testutil.DimethylEther(), testutil.Benzene()} {
		assert.NoError(t, m.Validate(), m.Name)
	}
	for _, q := range []mtypes.QueryDTO{testutil.HydroxylQuery(), testutil.CarbonPairQuery()} {
		assert.NoError(t, q.Validate(), q.Name)
	}
}
