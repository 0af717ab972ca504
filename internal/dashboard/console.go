package dashboard

import (
	"fmt"
	"io"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Console is the default Dashboard: it repaints a go-pretty table to
// out every time any task changes state, redrawing the whole summary
// rather than tracking a diff.
type Console struct {
	mu  sync.Mutex
	out io.Writer
	reg *registry
}

// NewConsole returns a Console writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out, reg: newRegistry()}
}

func (c *Console) BeginTask(verb, noun string, silent bool) Task {
	t := newBaseTask(verb, noun, silent, c.onChange)
	c.reg.add(t)
	if !silent {
		c.repaint()
	}
	return t
}

func (c *Console) Close() error { return nil }

func (c *Console) onChange(t *baseTask) {
	if t.silent {
		return
	}
	c.repaint()
}

func (c *Console) repaint() {
	c.mu.Lock()
	defer c.mu.Unlock()

	snaps := c.reg.snapshot()
	t := table.NewWriter()
	t.SetOutputMirror(c.out)
	t.AppendHeader(table.Row{"Action", "State"})
	for _, s := range snaps {
		if s.Silent {
			continue
		}
		t.AppendRow(table.Row{fmt.Sprintf("%s %s", s.Verb, s.Noun), s.State})
	}
	t.Render()
}
