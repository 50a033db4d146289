package console_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketcolor/internal/adapter/console"
	"marketcolor/internal/domain"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestDeliverer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, console.NewDeliverer(&buf).Deliver(context.Background(), "1. *Lead*: text"))
	assert.Equal(t, "1. *Lead*: text\n", buf.String())

	err := console.NewDeliverer(failingWriter{}).Deliver(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrDeliveryFailed)
}
