package ui

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsole_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: "n\n", want: false},
		{input: "\n", want: false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			c := NewConsole(strings.NewReader(tt.input), &out)
			defer c.Close()

			ok, err := c.Confirm(context.Background(), "Create a passkey?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Contains(t, out.String(), "Create a passkey? [y/N]")
		})
	}
}

func TestConsole_Choose(t *testing.T) {
	t.Run("retries invalid input", func(t *testing.T) {
		var out bytes.Buffer
		c := NewConsole(strings.NewReader("5\nx\n2\n"), &out)
		defer c.Close()

		idx, err := c.Choose(context.Background(), "Choose an account", []string{"alice", "bob"})
		require.NoError(t, err)
		assert.Equal(t, 1, idx)
		assert.Contains(t, out.String(), "1) alice")
		assert.Contains(t, out.String(), "2) bob")
		assert.Equal(t, 2, strings.Count(out.String(), "Invalid selection"))
	})

	t.Run("empty declines", func(t *testing.T) {
		c := NewConsole(strings.NewReader("\n"), io.Discard)
		defer c.Close()

		idx, err := c.Choose(context.Background(), "Choose an account", []string{"alice"})
		require.NoError(t, err)
		assert.Equal(t, -1, idx)
	})

	t.Run("no options", func(t *testing.T) {
		c := NewConsole(strings.NewReader(""), io.Discard)
		defer c.Close()

		idx, err := c.Choose(context.Background(), "Choose an account", nil)
		require.NoError(t, err)
		assert.Equal(t, -1, idx)
	})
}

func TestConsole_ReadLine(t *testing.T) {
	t.Run("eof", func(t *testing.T) {
		c := NewConsole(strings.NewReader("  hello  \n"), io.Discard)
		defer c.Close()

		line, err := c.ReadLine(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, "hello", line)

		_, err = c.ReadLine(context.Background(), "")
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("context ends the wait", func(t *testing.T) {
		r, w := io.Pipe()
		defer w.Close()

		c := NewConsole(r, io.Discard)
		defer c.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := c.ReadLine(ctx, ">")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
