package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

type Answerer interface {
	Answer(ctx context.Context, text string) string
}

const banner = "Welcome to the Crypto Project Assistant!\n" +
	"Ask your questions about crypto projects, comparisons, or recommendations.\n" +
	"Type 'exit' to stop the chatbot.\n"

// Run reads one question per line from in and writes each answer to out
// until the user types exit, in is exhausted, or ctx is cancelled.
func Run(ctx context.Context, in io.Reader, out io.Writer, assistant Answerer) error {
	if _, err := io.WriteString(out, banner); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := io.WriteString(out, "\nYou: "); err != nil {
			return err
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			_, err := io.WriteString(out, "\nGoodbye!\n")
			return err
		}

		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.EqualFold(strings.TrimSpace(line), "exit") {
			_, err := io.WriteString(out, "\nGoodbye!\n")
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		reply := assistant.Answer(ctx, line)
		if _, err := fmt.Fprintf(out, "\nAssistant:\n%s\n", reply); err != nil {
			return err
		}
	}
}
