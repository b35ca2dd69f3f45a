package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirmer asks the operator a yes/no question. Implementations decide how:
// an interactive TUI, a plain reader loop, or a canned answer in tests.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ReaderConfirmer prompts for confirmation over plain streams. It is used
// when stdin is not a terminal (pipes, CI).
type ReaderConfirmer struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewReaderConfirmer creates a confirmer reading answers from in and writing
// prompts to out.
func NewReaderConfirmer(in io.Reader, out io.Writer) *ReaderConfirmer {
	return &ReaderConfirmer{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Confirm prompts until the operator answers yes or no. EOF counts as no.
func (c *ReaderConfirmer) Confirm(prompt string) (bool, error) {
	for {
		fmt.Fprintf(c.out, "%s [y/N]: ", prompt)

		line, err := c.reader.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				return false, nil
			}
			return false, fmt.Errorf("failed to read input: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		default:
			fmt.Fprintln(c.out, "Please answer y or n.")
		}
	}
}

// StaticConfirmer always answers with a fixed value. Used with --yes and in
// tests.
type StaticConfirmer struct {
	Answer bool
}

// Confirm returns the fixed answer.
func (c StaticConfirmer) Confirm(string) (bool, error) {
	return c.Answer, nil
}
