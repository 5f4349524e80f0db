package console

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// Console writes status lines to a writer, colored when the writer is a
// terminal. It implements prompt.Notifier.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	style Styler
}

// New returns a Console writing to out.
//
// Precondition: out must be non-nil.
func New(out io.Writer) *Console {
	if out == nil {
		panic("console: New requires a writer")
	}
	return &Console{out: out, style: Styler{Enabled: IsTerminal(out)}}
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Style returns the Styler used by c.
func (c *Console) Style() Styler { return c.style }

// Println writes one line.
func (c *Console) Println(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, text)
}

// Print writes text without a newline.
func (c *Console) Print(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, text)
}

// Info writes an informational line.
func (c *Console) Info(msg string) { c.Println(c.style.Paint(BrightCyan, msg)) }

// Warn writes a yellow-tagged warning line.
func (c *Console) Warn(msg string) {
	c.Println(c.style.Paint(BrightYellow, "[warning] ") + msg)
}

// Error writes a red-tagged error line.
func (c *Console) Error(msg string) {
	c.Println(c.style.Paint(BrightRed, "[error] ") + msg)
}
