package mailcode

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// PromptSource asks the operator to type the code, for attended runs.
type PromptSource struct {
	In     io.Reader
	Out    io.Writer
	Prompt string
}

// Code prints the prompt and reads one line. The whole line is accepted if
// no code pattern is recognized in it.
func (p *PromptSource) Code(ctx context.Context) (string, error) {
	prompt := p.Prompt
	if prompt == "" {
		prompt = "Enter the verification code sent to your email: "
	}
	if p.Out != nil {
		fmt.Fprint(p.Out, prompt)
	}

	type result struct {
		line string
		err  error
	}
	lines := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(p.In).ReadString('\n')
		lines <- result{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-lines:
		line := strings.TrimSpace(r.line)
		if r.err != nil && (r.err != io.EOF || line == "") {
			return "", fmt.Errorf("%w: failed to read code: %v", ErrNoCode, r.err)
		}
		if code, ok := ExtractCode(line); ok {
			return code, nil
		}
		if line == "" || strings.ContainsAny(line, " \t") {
			return "", fmt.Errorf("%w: %q is not a code", ErrNoCode, line)
		}
		return line, nil
	}
}
