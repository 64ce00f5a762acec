package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Progress draws a transfer bar. It implements io.Writer so it can sit on
// one side of an io.TeeReader or io.MultiWriter; the bytes written to it
// only advance the counter.
type Progress struct {
	mu      sync.Mutex
	w       io.Writer
	title   string
	total   int64
	current int64
	width   int
}

// NewProgress creates a bar for a transfer of total bytes. A total of zero
// or less shows only the byte count.
func NewProgress(w io.Writer, title string, total int64) *Progress {
	return &Progress{
		w:     w,
		title: title,
		total: total,
		width: 30,
	}
}

// Write advances the bar by len(p).
func (p *Progress) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current += int64(len(b))
	p.render()
	return len(b), nil
}

// Current returns the bytes counted so far.
func (p *Progress) Current() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Finish draws the final state and ends the line.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.render()
	fmt.Fprintln(p.w)
}

func (p *Progress) render() {
	if p.total <= 0 {
		fmt.Fprintf(p.w, "\r%s %s", p.title, FormatBytes(p.current))
		return
	}

	ratio := min(float64(p.current)/float64(p.total), 1)
	filled := int(float64(p.width) * ratio)
	fmt.Fprintf(p.w, "\r%s [%s%s] %3.0f%% (%s/%s)",
		p.title,
		strings.Repeat("#", filled),
		strings.Repeat(".", p.width-filled),
		ratio*100,
		FormatBytes(p.current),
		FormatBytes(p.total),
	)
}

// FormatBytes formats a byte count with binary units.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
