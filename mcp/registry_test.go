// Copyright 2025 FlightDeck
// SPDX-License-Identifier: Apache-2.0

package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoTool(name string) *Tool {
	return &Tool{
		Descriptor: Descriptor{
			Name:        name,
			Description: "echoes its arguments",
			InputSchema: map[string]interface{}{
				"type": "object",
			},
			OutputSchema: map[string]interface{}{
				"type": "object",
			},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return args, nil
		},
	}
}

func TestRegister(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(echoTool("echo")))

	t.Run("duplicate name rejected", func(t *testing.T) {
		err := r.Register(echoTool("echo"))
		assert.Error(t, err)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		err := r.Register(echoTool(""))
		assert.Error(t, err)
	})

	t.Run("nil handler rejected", func(t *testing.T) {
		tool := echoTool("no-handler")
		tool.Handler = nil
		assert.Error(t, r.Register(tool))
	})
}

func TestDescriptors(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Descriptors())

	require.NoError(t, r.Register(echoTool("first")))
	require.NoError(t, r.Register(echoTool("second")))

	descriptors := r.Descriptors()
	require.Len(t, descriptors, 2)
	assert.Equal(t, "first", descriptors[0].Name)
	assert.Equal(t, "second", descriptors[1].Name)
}

func TestInvoke(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool("echo")))

	t.Run("dispatches to handler", func(t *testing.T) {
		args := map[string]interface{}{"airport_code": "DEL"}
		result, err := r.Invoke(context.Background(), "echo", args)
		require.NoError(t, err)
		assert.Equal(t, args, result)
	})

	t.Run("unknown tool", func(t *testing.T) {
		_, err := r.Invoke(context.Background(), "missing", nil)
		assert.ErrorIs(t, err, ErrUnknownTool)
	})

	t.Run("argument errors pass through", func(t *testing.T) {
		require.NoError(t, r.Register(&Tool{
			Descriptor: Descriptor{Name: "strict"},
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				return nil, NewArgumentError("airport_code is required")
			},
		}))

		_, err := r.Invoke(context.Background(), "strict", nil)
		var argErr *ArgumentError
		require.True(t, errors.As(err, &argErr))
		assert.Equal(t, "airport_code is required", argErr.Message)
	})
}
