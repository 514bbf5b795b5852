package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/ameyamatmk/voice-diary/internal/authenticator"
)

var _ authenticator.Prompter = (*Console)(nil)

// Console is a line-oriented terminal. Input is read by a single goroutine so
// that ReadLine can be abandoned when its context ends.
type Console struct {
	out    io.Writer
	style  styles
	lines  chan string
	done   chan struct{}
	mu     sync.Mutex
	errIn  error
	closed bool
}

// NewConsole starts reading lines from in.
func NewConsole(in io.Reader, out io.Writer) *Console {
	c := &Console{
		out:   out,
		style: newStyles(out),
		lines: make(chan string),
		done:  make(chan struct{}),
	}
	go c.read(in)
	return c
}

func (c *Console) read(in io.Reader) {
	defer close(c.lines)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case c.lines <- scanner.Text():
		case <-c.done:
			return
		}
	}

	c.mu.Lock()
	c.errIn = scanner.Err()
	c.mu.Unlock()
}

// Close stops delivering input. The reader goroutine exits on its next line.
func (c *Console) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.done)
	}
}

// ReadLine prints prompt and waits for the next line. It returns io.EOF when
// input is exhausted.
func (c *Console) ReadLine(ctx context.Context, prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(c.out, c.style.prompt.Render(prompt)+" ")
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			c.mu.Lock()
			err := c.errIn
			c.mu.Unlock()
			if err != nil {
				return "", fmt.Errorf("failed to read input: %w", err)
			}
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
}

// Println writes a line to the terminal.
func (c *Console) Println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

// Confirm asks a yes/no question. Anything but an explicit yes declines.
func (c *Console) Confirm(ctx context.Context, message string) (bool, error) {
	answer, err := c.ReadLine(ctx, message+" [y/N]")
	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Choose lists options and reads a 1-based selection. An empty answer declines.
func (c *Console) Choose(ctx context.Context, message string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, nil
	}

	c.Println(c.style.header.Render(message))
	for i, opt := range options {
		c.Println(fmt.Sprintf("  %d) %s", i+1, opt))
	}

	for {
		answer, err := c.ReadLine(ctx, fmt.Sprintf("Select 1-%d (empty to cancel):", len(options)))
		if err != nil {
			return -1, err
		}
		if answer == "" {
			return -1, nil
		}

		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		c.Println(c.style.failed.Render("Invalid selection"))
	}
}
