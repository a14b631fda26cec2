package telemetry

import (
	"fmt"
	"os"
)

const (
	honeycombEndpoint = "https://api.honeycomb.io"

	// EnvHoneycombKey and EnvHoneycombDataset are read by ConfigureHoneycombEnv.
	EnvHoneycombKey     = "HONEYCOMB_CARDRUN_API_KEY"
	EnvHoneycombDataset = "HONEYCOMB_CARDRUN_DATASET"
)

// ConfigureHoneycombEnv sets the standard OTEL_* exporter variables from our
// Honeycomb variables. An endpoint that is already set is left alone.
func ConfigureHoneycombEnv() {
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", honeycombEndpoint)
	}

	// The .env file may hold an unexpanded variable reference, so the
	// headers are built here from the API key
	apiKey := os.Getenv(EnvHoneycombKey)
	dataset := os.Getenv(EnvHoneycombDataset)
	if dataset == "" {
		dataset = serviceName
	}
	if apiKey != "" {
		os.Setenv("OTEL_EXPORTER_OTLP_HEADERS",
			fmt.Sprintf("x-honeycomb-team=%s,x-honeycomb-dataset=%s", apiKey, dataset))
	}
}
