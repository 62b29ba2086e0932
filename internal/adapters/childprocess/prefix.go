package childprocess

import (
	"bytes"
	"io"

	"github.com/muesli/termenv"
)

// prefixColors cycles through the basic ANSI palette, skipping black and
// white.
var prefixColors = []string{"6", "3", "2", "5", "4", "1"}

// prefix returns the rendered line prefix for pkg. Each package keeps the
// color it was first assigned.
func (i *Invoker) prefix(pkg string) string {
	i.mu.Lock()
	defer i.mu.Unlock()

	if p, ok := i.prefixes[pkg]; ok {
		return p
	}

	profile := termenv.Ascii
	if i.color {
		profile = termenv.ANSI
	}
	color := prefixColors[len(i.prefixes)%len(prefixColors)]
	p := profile.String(pkg).Foreground(profile.Color(color)).String() + ": "
	i.prefixes[pkg] = p
	return p
}

// prefixWriter writes complete lines to w, each preceded by prefix. A
// trailing partial line is held until the next newline or Flush.
type prefixWriter struct {
	w       io.Writer
	prefix  string
	pending []byte
}

func (p *prefixWriter) Write(b []byte) (int, error) {
	p.pending = append(p.pending, b...)
	for {
		idx := bytes.IndexByte(p.pending, '\n')
		if idx < 0 {
			break
		}
		if err := p.emit(p.pending[:idx+1]); err != nil {
			return len(b), err
		}
		p.pending = p.pending[idx+1:]
	}
	return len(b), nil
}

// Flush writes any held partial line, terminated with a newline.
func (p *prefixWriter) Flush() error {
	if len(p.pending) == 0 {
		return nil
	}
	line := append(p.pending, '\n')
	p.pending = nil
	return p.emit(line)
}

func (p *prefixWriter) emit(line []byte) error {
	out := make([]byte, 0, len(p.prefix)+len(line))
	out = append(out, p.prefix...)
	out = append(out, line...)
	_, err := p.w.Write(out)
	return err
}
