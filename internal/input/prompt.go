package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Prompter collects free text from the user. It is the only blocking call
// the state machine makes.
type Prompter interface {
	// Prompt shows title and waits for a line. ok is false when the user
	// cancelled or the source is closed.
	Prompt(title string) (text string, ok bool)
}

// LinePrompter reads answers line by line, e.g. from a serial console.
type LinePrompter struct {
	mu  sync.Mutex
	in  *bufio.Scanner
	out io.Writer
}

// NewLinePrompter reads from r and writes prompts to w. w may be nil.
func NewLinePrompter(r io.Reader, w io.Writer) *LinePrompter {
	if w == nil {
		w = io.Discard
	}
	return &LinePrompter{in: bufio.NewScanner(r), out: w}
}

// Prompt implements Prompter. An empty line cancels.
func (p *LinePrompter) Prompt(title string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "%s: ", title)
	if !p.in.Scan() {
		return "", false
	}
	text := strings.TrimSpace(p.in.Text())
	if text == "" {
		return "", false
	}
	return text, true
}
