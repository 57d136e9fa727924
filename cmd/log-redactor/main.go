// Command log-redactor copies log lines from stdin to stdout with secrets
// masked: tokens, password hashes, connection strings, emails, SQL and file
// paths. Use it before attaching server logs to a bug report.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/phrazzld/tasklist-api/internal/redact"
)

// maxLineBytes bounds a single log line.
const maxLineBytes = 1 << 20

func main() {
	if err := run(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "log-redactor: %v\n", err)
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	w := bufio.NewWriter(out)
	for scanner.Scan() {
		if _, err := fmt.Fprintln(w, redact.String(scanner.Text())); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return w.Flush()
}
