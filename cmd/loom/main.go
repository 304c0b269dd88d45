// Package main is a scratch-pad demo for the loom text engine. It wires
// a document to a tcell screen: type to edit, Ctrl-Z/Ctrl-Y for
// undo/redo, Ctrl-W to toggle a decoration on the word under the
// cursor, Ctrl-Q to quit.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"

	"github.com/loomtext/loom/internal/config"
	"github.com/loomtext/loom/internal/engine/document"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: loom [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		cfg = loaded
	}

	docOpts := []document.Option{
		document.WithConfig(cfg),
		document.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, nil))),
	}
	doc := document.New(docOpts...)
	var path string
	if args := flag.Args(); len(args) > 0 {
		path = args[0]
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		doc = document.FromString(string(data), docOpts...)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create screen: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to init screen: %v\n", err)
		return 1
	}
	defer screen.Fini()

	pad := &scratchPad{doc: doc, screen: screen, path: path}
	pad.loop()
	return 0
}

// scratchPad is a minimal single-document editor view.
type scratchPad struct {
	doc    *document.Document
	screen tcell.Screen
	path   string

	cursor  document.ByteOffset
	marked  uuid.UUID
	hasMark bool
	status  string
}

func (p *scratchPad) loop() {
	for {
		p.render()
		ev := p.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			p.screen.Sync()
		case *tcell.EventKey:
			if !p.handleKey(ev) {
				return
			}
		}
	}
}

func (p *scratchPad) handleKey(ev *tcell.EventKey) bool {
	p.status = ""
	switch ev.Key() {
	case tcell.KeyCtrlQ, tcell.KeyEscape:
		return false
	case tcell.KeyCtrlZ:
		if _, err := p.doc.Undo(); err != nil {
			p.status = err.Error()
		}
		p.clampCursor()
	case tcell.KeyCtrlY:
		if _, err := p.doc.Redo(); err != nil {
			p.status = err.Error()
		}
		p.clampCursor()
	case tcell.KeyCtrlW:
		p.toggleMark()
	case tcell.KeyLeft:
		p.cursor = p.doc.PrevGraphemeBoundary(p.cursor)
	case tcell.KeyRight:
		p.cursor = p.doc.NextGraphemeBoundary(p.cursor)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if p.cursor > 0 {
			start := p.doc.PrevGraphemeBoundary(p.cursor)
			if _, err := p.doc.Delete(start, p.cursor); err == nil {
				p.cursor = start
			}
		}
	case tcell.KeyDelete:
		if end := p.doc.NextGraphemeBoundary(p.cursor); end > p.cursor {
			p.doc.DeleteForward(p.cursor, end)
		}
	case tcell.KeyEnter:
		p.insert("\n")
	case tcell.KeyTab:
		p.insert("\t")
	case tcell.KeyRune:
		p.insert(string(ev.Rune()))
	}
	return true
}

func (p *scratchPad) insert(s string) {
	if _, err := p.doc.Insert(p.cursor, s); err != nil {
		p.status = err.Error()
		return
	}
	p.cursor += document.ByteOffset(len(s))
}

// toggleMark decorates the word under the cursor, or removes the
// previous mark.
func (p *scratchPad) toggleMark() {
	if p.hasMark {
		if err := p.doc.RemoveDecoration(p.marked); err != nil {
			p.status = err.Error()
		}
		p.hasMark = false
		return
	}
	start, end := p.wordAround(p.cursor)
	if start == end {
		p.status = "no word under cursor"
		return
	}
	id, err := p.doc.AddDecoration(start, end, document.GrowsOnEdit, "mark")
	if err != nil {
		p.status = err.Error()
		return
	}
	p.marked = id
	p.hasMark = true
}

func (p *scratchPad) wordAround(off document.ByteOffset) (document.ByteOffset, document.ByteOffset) {
	text := p.doc.Text()
	if off > int64(len(text)) {
		off = int64(len(text))
	}
	isWord := func(b byte) bool {
		return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') ||
			(b >= '0' && b <= '9') || b >= 0x80
	}
	start, end := off, off
	for start > 0 && isWord(text[start-1]) {
		start--
	}
	for end < int64(len(text)) && isWord(text[end]) {
		end++
	}
	return start, end
}

func (p *scratchPad) clampCursor() {
	if l := p.doc.Len(); p.cursor > l {
		p.cursor = l
	}
}

func (p *scratchPad) render() {
	p.screen.Clear()
	width, height := p.screen.Size()
	if height < 2 {
		p.screen.Show()
		return
	}

	marked := make(map[document.ByteOffset]bool)
	for _, dec := range p.doc.AllDecorations() {
		for off := dec.Start; off < dec.End; off++ {
			marked[off] = true
		}
	}

	base := tcell.StyleDefault
	mark := base.Reverse(true)

	lineCount := p.doc.LineCount()
	var cx, cy int
	for row := 0; row < height-1 && int64(row) < lineCount; row++ {
		lineStart, _ := p.doc.OffsetAtLine(int64(row) + 1)
		text, err := p.doc.Line(int64(row) + 1)
		if err != nil {
			break
		}
		col := 0
		for i, r := range text {
			if col >= width {
				break
			}
			style := base
			if marked[lineStart+int64(i)] {
				style = mark
			}
			p.screen.SetContent(col, row, r, nil, style)
			col++
		}
	}

	if pos, err := p.doc.OffsetToPosition(p.cursor); err == nil {
		cy = int(pos.Line - 1)
		line, _ := p.doc.Line(pos.Line)
		cx = 0
		for i := range line {
			if int64(i) >= pos.Column-1 {
				break
			}
			cx++
		}
		if pos.Column-1 > int64(len(line)) {
			cx = len(line)
		}
		p.screen.ShowCursor(cx, cy)
	}

	status := fmt.Sprintf(" %s  v%d  len %d  ^Q quit ^Z undo ^Y redo ^W mark",
		p.title(), p.doc.Version(), p.doc.Len())
	if p.status != "" {
		status = " " + p.status
	}
	statusStyle := base.Reverse(true)
	for col := 0; col < width; col++ {
		r := ' '
		if col < len(status) {
			r = rune(status[col])
		}
		p.screen.SetContent(col, height-1, r, nil, statusStyle)
	}

	p.screen.Show()
}

func (p *scratchPad) title() string {
	if p.path == "" {
		return "[scratch]"
	}
	return p.path
}
