package telemetry_test

import (
	"os"
	"testing"

	"github.com/Amund211/vidcat/internal/telemetry"
	"github.com/stretchr/testify/require"
)

func TestShouldExport(t *testing.T) {
	t.Run("production always exports", func(t *testing.T) {
		require.True(t, telemetry.ShouldExport(false))
	})

	t.Run("development without endpoint", func(t *testing.T) {
		// Restored after the test by t.Setenv
		t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
		require.NoError(t, os.Unsetenv("OTEL_EXPORTER_OTLP_ENDPOINT"))

		require.False(t, telemetry.ShouldExport(true))
	})

	t.Run("development with endpoint", func(t *testing.T) {
		t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
		require.True(t, telemetry.ShouldExport(true))
	})
}
