package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())

	ctx = With(ctx, "transport", "telegram")
	FromCtx(ctx).Info().Msg("hello")

	assert.Contains(t, buf.String(), `"transport":"telegram"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}

func TestFromCtx_NoLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		FromCtx(context.Background()).Info().Msg("dropped")
	})
}
