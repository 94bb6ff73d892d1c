package helpers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/garmentflow/internal/application/mediator"
)

// MustSend dispatches request and asserts success and the response type
func MustSend[T any](t *testing.T, m mediator.Mediator, request mediator.Request) T {
	t.Helper()
	resp, err := m.Send(context.Background(), request)
	require.NoError(t, err)
	typed, ok := resp.(T)
	require.Truef(t, ok, "unexpected response type %T", resp)
	return typed
}

// SendErr dispatches request and returns only its error
func SendErr(m mediator.Mediator, request mediator.Request) error {
	_, err := m.Send(context.Background(), request)
	return err
}
