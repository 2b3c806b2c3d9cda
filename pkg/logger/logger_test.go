package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cobranza-api/pkg/logger"
)

func TestNewWithWriter_NivelFiltra(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "WARN")

	log.Info().Msg("no sale")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("sí sale")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestNewWithWriter_NivelDesconocidoEsInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "verboso")

	log.Debug().Msg("no sale")
	log.Info().Msg("sale")
	assert.Contains(t, buf.String(), "sale")
	assert.NotContains(t, buf.String(), "no sale")
}

func TestComponent_AgregaCampo(t *testing.T) {
	var buf bytes.Buffer
	logger.NewWithWriter(&buf, "info").Component("status").Info().Str("customer_id", "c-1").Msg("deriva")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "status", entry["component"])
	assert.Equal(t, "c-1", entry["customer_id"])
}
