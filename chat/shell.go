package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Querier runs a single query against a session. *Orchestrator implements it.
type Querier interface {
	RunQuery(ctx context.Context, session Session, text string) Result
}

// Shell is the interactive read-query-print loop.
type Shell struct {
	Querier Querier
	Session Session
	In      io.Reader
	Out     io.Writer
}

type line struct {
	text string
	err  error
}

// Run prints the greeting and answers queries until "quit", end of input, or
// ctx is done. Query failures are printed and the loop continues; the
// returned error is non-nil only when reading input fails.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.Out, "\nMCP Client Started!")
	fmt.Fprintln(s.Out, "Type your queries or 'quit' to exit.")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan line)
	next := make(chan struct{})
	go readLines(s.In, lines, next, ctx.Done())

	for {
		fmt.Fprint(s.Out, "\nQuery: ")
		select {
		case next <- struct{}{}:
		case <-ctx.Done():
			fmt.Fprintln(s.Out)
			return nil
		}

		var l line
		var ok bool
		select {
		case l, ok = <-lines:
		case <-ctx.Done():
			fmt.Fprintln(s.Out)
			return nil
		}
		if !ok {
			fmt.Fprintln(s.Out)
			return nil
		}
		if l.err != nil {
			return fmt.Errorf("read input: %w", l.err)
		}

		query := strings.TrimSpace(l.text)
		if strings.EqualFold(query, "quit") {
			return nil
		}
		if query == "" {
			continue
		}

		res := s.Querier.RunQuery(ctx, s.Session, query)
		if res.Err != nil {
			fmt.Fprintf(s.Out, "\nError: %v\n", res.Err)
			continue
		}
		fmt.Fprintf(s.Out, "\n%s\n", res.Answer)
	}
}

// readLines reads one line each time next is signalled, so no input is
// consumed while a query is running. lines is closed at end of input or when
// done is closed.
func readLines(r io.Reader, lines chan<- line, next <-chan struct{}, done <-chan struct{}) {
	defer close(lines)
	br := bufio.NewReader(r)
	for {
		select {
		case <-next:
		case <-done:
			return
		}
		text, err := br.ReadString('\n')
		if err != nil && (err != io.EOF || text == "") {
			if err != io.EOF {
				select {
				case lines <- line{err: err}:
				case <-done:
				}
			}
			return
		}
		select {
		case lines <- line{text: text}:
		case <-done:
			return
		}
	}
}
