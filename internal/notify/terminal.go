package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

// Terminal prints toasts as single lines, coloured when writing to a TTY
type Terminal struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
}

// NewTerminal creates a terminal notifier. Colour is enabled only when out is
// a terminal and NO_COLOR is unset.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out, color: UseColor(out)}
}

// UseColor reports whether ANSI colours should be written to w
func UseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (t *Terminal) Notify(_ context.Context, toast Toast) {
	t.mu.Lock()
	defer t.mu.Unlock()

	title := toast.Title
	if t.color {
		color := ansiGreen
		if toast.Variant == VariantDestructive {
			color = ansiRed
		}
		title = color + title + ansiReset
	}
	fmt.Fprintf(t.out, "[%s] %s\n", title, toast.Description)
}
