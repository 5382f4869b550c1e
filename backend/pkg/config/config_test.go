package config

import (
	"testing"

	apperrors "teamgraph/backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("NEO4J_URI", "bolt://example:7687")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "bolt://example:7687", cfg.Neo4jURI)
	assert.Equal(t, 10, cfg.LabelIterations)
	assert.Equal(t, 1000, cfg.TSNESteps)
	assert.Equal(t, 30.0, cfg.TSNEPerplexity)
	assert.Equal(t, 500.0, cfg.LayoutAdjustmentFactor)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LABEL_ITERATIONS", "25")
	t.Setenv("TSNE_PERPLEXITY", "12.5")
	t.Setenv("ANALYSIS_SEED", "42")
	t.Setenv("ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.LabelIterations)
	assert.Equal(t, 12.5, cfg.TSNEPerplexity)
	assert.Equal(t, uint64(42), cfg.AnalysisSeed)
	assert.True(t, cfg.IsProduction())
}

func TestValidate(t *testing.T) {
	base := Config{
		Neo4jURI:                  "bolt://localhost:7687",
		Neo4jUser:                 "neo4j",
		Neo4jPassword:             "password",
		DiscordMessagesPerChannel: 100,
		LabelIterations:           10,
		TSNESteps:                 1000,
		TSNEPerplexity:            30,
	}
	require.NoError(t, base.Validate())

	missing := base
	missing.Neo4jPassword = ""
	err := missing.Validate()
	var missingErr *apperrors.ErrConfigMissingRequired
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, "NEO4J_PASSWORD", missingErr.Field)

	paged := base
	paged.DiscordMessagesPerChannel = 500
	err = paged.Validate()
	var invalid *apperrors.ErrConfigValidationFailed
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "DISCORD_MESSAGES_PER_CHANNEL", invalid.Field)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeConfig))
}

func TestLoad_AnalysisSeed(t *testing.T) {
	t.Setenv("ANALYSIS_SEED", "18446744073709551615")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, uint64(18446744073709551615), cfg.AnalysisSeed)

	for _, bad := range []string{"-1", "18446744073709551616", "seed"} {
		t.Setenv("ANALYSIS_SEED", bad)
		_, err := Load()
		var invalid *apperrors.ErrConfigValidationFailed
		require.ErrorAs(t, err, &invalid, bad)
		assert.Equal(t, "ANALYSIS_SEED", invalid.Field)
	}
}
