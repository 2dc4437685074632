package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// reader returns the shared buffered reader over Env.In. Sharing matters:
// consecutive prompts must not lose input buffered by an earlier one.
func (e *Env) reader() *bufio.Reader {
	if e.buf == nil {
		e.buf = bufio.NewReader(e.In)
	}
	return e.buf
}

// readLine prompts on Env.Out and reads one trimmed line. An EOF with no
// input yields an empty string.
func readLine(env *Env, prompt string) (string, error) {
	fmt.Fprint(env.Out, prompt)
	line, err := env.reader().ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirm prompts for an explicit yes. Anything other than y/yes is a
// cancellation.
func confirm(env *Env, prompt string) (bool, error) {
	answer, err := readLine(env, prompt)
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
