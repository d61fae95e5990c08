package logctx

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestFromContext_NilContext(t *testing.T) {
	//nolint:staticcheck // nil context is part of the contract
	logger := FromContext(nil)

	var buf bytes.Buffer
	out := logger.Output(&buf)
	out.Info().Msg("test")

	if buf.Len() == 0 {
		t.Error("expected logger to produce output")
	}
}

func TestFromContext_ContextWithoutLogger(t *testing.T) {
	logger := FromContext(context.Background())

	var buf bytes.Buffer
	out := logger.Output(&buf)
	out.Info().Msg("test")

	if buf.Len() == 0 {
		t.Error("expected logger to produce output")
	}
}

func TestWithLogger_AndFromContext(t *testing.T) {
	var buf bytes.Buffer
	customLogger := zerolog.New(&buf).With().Str("custom", "field").Logger()

	ctx := WithLogger(context.Background(), customLogger)
	l := FromContext(ctx)
	l.Info().Msg("test")

	if !strings.Contains(buf.String(), `"custom":"field"`) {
		t.Errorf("expected custom field in output, got: %s", buf.String())
	}
}

func TestWithLogger_NilContext(t *testing.T) {
	var buf bytes.Buffer

	//nolint:staticcheck // nil context is part of the contract
	ctx := WithLogger(nil, zerolog.New(&buf))
	if ctx == nil {
		t.Fatal("expected non-nil context")
	}

	l := FromContext(ctx)
	l.Info().Msg("test")
	if buf.Len() == 0 {
		t.Error("expected logger to produce output")
	}
}

func TestChainedFields(t *testing.T) {
	var buf bytes.Buffer

	ctx := WithLogger(context.Background(), zerolog.New(&buf))
	ctx = WithStr(ctx, "input", "movies_metadata.csv")
	ctx = WithInt(ctx, "input_index", 2)

	l := FromContext(ctx)
	l.Info().Msg("test")

	output := buf.String()
	if !strings.Contains(output, `"input":"movies_metadata.csv"`) {
		t.Errorf("expected input field, got: %s", output)
	}
	if !strings.Contains(output, `"input_index":2`) {
		t.Errorf("expected input_index field, got: %s", output)
	}
}

func TestSetDefaultLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := DefaultLogger()
	SetDefaultLogger(zerolog.New(&buf))
	defer SetDefaultLogger(prev)

	l := FromContext(context.Background())
	l.Info().Msg("test")

	if buf.Len() == 0 {
		t.Error("expected default logger override to receive output")
	}
}
