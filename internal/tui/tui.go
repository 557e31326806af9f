// Package tui is a terminal renderer for the diagram editor. It draws the
// projected frame on a tcell screen and turns keyboard and mouse gestures
// into the same events a browser renderer would send.
package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/automata-diagram/pkg/editing"
	"github.com/ha1tch/automata-diagram/pkg/editor"
	"github.com/ha1tch/automata-diagram/pkg/export"
	"github.com/ha1tch/automata-diagram/pkg/graph"
	"github.com/ha1tch/automata-diagram/pkg/layout"
	"github.com/ha1tch/automata-diagram/pkg/render"
)

// MessageType is the severity of a status bar message.
type MessageType int

const (
	MsgInfo MessageType = iota
	MsgSuccess
	MsgError
)

const doubleClickWindow = 400 * time.Millisecond

// Options configures an App.
type Options struct {
	ExportDir    string
	ExportFormat export.Format
	Export       export.Options
	Logger       *slog.Logger
	Now          func() time.Time
}

// App is the terminal editor. It is single-threaded: events are handled on
// the goroutine that calls Run.
type App struct {
	screen  tcell.Screen
	ed      *editor.Editor
	adapter *render.Adapter
	opts    Options
	log     *slog.Logger
	now     func() time.Time

	message     string
	messageType MessageType

	offsetX, offsetY int

	frame     render.Frame
	nodeHits  []nodeHit
	labelHits []labelHit

	// Left-button press and drag
	leftDown     bool
	leftDownX    int
	leftDownY    int
	leftDownNode string
	dragging     bool
	dragNode     string
	dragOffsetX  int
	dragOffsetY  int

	// Right-button connect gesture
	rightDown   bool
	connectFrom string

	// Double-click detection
	lastClick       time.Time
	lastClickTarget string
}

// New creates an App drawing ed on screen. The screen must be initialised.
func New(screen tcell.Screen, ed *editor.Editor, opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ExportFormat == "" {
		opts.ExportFormat = export.FormatPNG
	}
	if opts.Export.Render.NodeWidth == 0 {
		opts.Export = export.DefaultOptions()
	}
	return &App{
		screen:  screen,
		ed:      ed,
		adapter: render.NewAdapter(ed, opts.Export.Render),
		opts:    opts,
		log:     opts.Logger,
		now:     opts.Now,
	}
}

// Run draws and handles events until the user quits or the screen closes.
func (a *App) Run() {
	a.screen.EnableMouse()
	for {
		a.draw()
		a.screen.Show()

		ev := a.screen.PollEvent()
		if ev == nil {
			return
		}
		if a.handleEvent(ev) {
			return
		}
	}
}

// handleEvent returns true when the app should quit.
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventKey:
		return a.handleKey(ev)
	case *tcell.EventMouse:
		a.handleMouse(ev)
	}
	return false
}

func (a *App) dispatch(ev render.Event) error {
	err := a.adapter.Dispatch(ev)
	if err != nil {
		a.log.Debug("event rejected", "event", ev.Type(), "error", err)
	}
	return err
}

func (a *App) showMessage(msg string, t MessageType) {
	a.message = msg
	a.messageType = t
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC {
		return true
	}
	switch st := a.ed.Editing().(type) {
	case editing.EditingNode:
		a.handleNameKey(ev, st.Draft)
		return false
	case editing.EditingEdge:
		a.handleLabelKey(ev, st.Draft)
		return false
	}
	return a.handleCanvasKey(ev)
}

// handleNameKey drives the rename modal.
func (a *App) handleNameKey(ev *tcell.EventKey, draft string) {
	switch ev.Key() {
	case tcell.KeyEnter:
		err := a.dispatch(render.NameKey{Key: render.KeyEnter})
		if errors.Is(err, editing.ErrEmptyName) {
			a.showMessage("Name cannot be empty", MsgError)
			return
		}
		if err == nil {
			a.showMessage("Renamed state", MsgSuccess)
		}
	case tcell.KeyEscape:
		_ = a.dispatch(render.NameKey{Key: render.KeyEscape})
		a.message = ""
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		_ = a.dispatch(render.NameInput{Text: dropLastRune(draft)})
	case tcell.KeyRune:
		_ = a.dispatch(render.NameInput{Text: draft + string(ev.Rune())})
	}
}

// handleLabelKey drives the inline edge label input. Enter and Escape both
// leave the input, which commits it.
func (a *App) handleLabelKey(ev *tcell.EventKey, draft string) {
	switch ev.Key() {
	case tcell.KeyEnter, tcell.KeyEscape:
		_ = a.dispatch(render.LabelBlur{})
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		_ = a.dispatch(render.LabelInput{Text: dropLastRune(draft)})
	case tcell.KeyRune:
		_ = a.dispatch(render.LabelInput{Text: draft + string(ev.Rune())})
	}
}

func (a *App) handleCanvasKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyTab:
		a.cycleSelection()
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		a.deleteSelected()
	case tcell.KeyEscape:
		a.selectOnly("", "")
		a.message = ""
	case tcell.KeyLeft:
		a.offsetX -= 4
	case tcell.KeyRight:
		a.offsetX += 4
	case tcell.KeyUp:
		a.offsetY -= 2
	case tcell.KeyDown:
		a.offsetY += 2
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return true
		case 'a', 'A':
			_ = a.dispatch(render.AddState{})
			a.showMessage("Added state", MsgSuccess)
		case 'e', 'E':
			a.exportDiagram()
		case 'l', 'L':
			a.arrange()
		}
	}
	return false
}

// cycleSelection moves the single selected state to the next one in order.
func (a *App) cycleSelection() {
	nodes := a.ed.Graph().Nodes()
	if len(nodes) == 0 {
		return
	}
	next := 0
	for i, n := range nodes {
		if n.Selected {
			next = (i + 1) % len(nodes)
			break
		}
	}
	a.selectOnly(nodes[next].ID, "")
}

// selectOnly leaves exactly one node or one edge selected, or nothing when
// both ids are empty.
func (a *App) selectOnly(nodeID, edgeID string) {
	g := a.ed.Graph()

	var nodeChanges []render.Change
	for _, n := range g.Nodes() {
		want := n.ID == nodeID
		if n.Selected != want {
			nodeChanges = append(nodeChanges, render.Change{Type: render.ChangeSelect, ID: n.ID, Selected: want})
		}
	}
	var edgeChanges []render.Change
	for _, e := range g.Edges() {
		want := e.ID == edgeID
		if e.Selected != want {
			edgeChanges = append(edgeChanges, render.Change{Type: render.ChangeSelect, ID: e.ID, Selected: want})
		}
	}

	if len(nodeChanges) > 0 {
		_ = a.dispatch(render.NodesChange{Changes: nodeChanges})
	}
	if len(edgeChanges) > 0 {
		_ = a.dispatch(render.EdgesChange{Changes: edgeChanges})
	}
}

func (a *App) deleteSelected() {
	before := a.ed.Graph()
	nodes, edges := before.Selection()
	if len(nodes) == 0 && len(edges) == 0 {
		a.showMessage("Nothing selected", MsgInfo)
		return
	}
	_ = a.dispatch(render.NodesDelete{Nodes: nodes, Edges: edges})

	after := a.ed.Graph()
	a.showMessage(fmt.Sprintf("Deleted %d states, %d transitions",
		before.NodeCount()-after.NodeCount(),
		before.EdgeCount()-after.EdgeCount()), MsgSuccess)
}

// arrange lays the diagram out and reports the new positions as a drag.
func (a *App) arrange() {
	r := a.opts.Export.Render
	nc := render.ArrangeNodes(a.ed.Graph(), layout.Smart, layout.ForNodeSize(r.NodeWidth, r.NodeHeight))
	if len(nc.Changes) == 0 {
		a.showMessage("Already arranged", MsgInfo)
		return
	}
	_ = a.dispatch(nc)
	a.showMessage(fmt.Sprintf("Arranged %d states", len(nc.Changes)), MsgSuccess)
}

func (a *App) exportDiagram() {
	path, err := a.exportTo(a.opts.ExportDir)
	if err != nil {
		a.log.Error("export failed", "error", err)
		a.showMessage("Export failed: "+err.Error(), MsgError)
		return
	}
	a.log.Info("diagram exported", "path", path)
	a.showMessage("Exported "+filepath.Base(path), MsgSuccess)
}

func (a *App) exportTo(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, "diagram"+a.opts.ExportFormat.Ext())
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := export.Write(f, a.ed.Snapshot(), a.opts.ExportFormat, a.opts.Export); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

// toCell maps a canvas position to a screen cell.
func (a *App) toCell(x, y float64) (int, int) {
	return int(math.Floor(x/unitsPerCol)) - a.offsetX, int(math.Floor(y/unitsPerRow)) - a.offsetY
}

// toPosition maps a screen cell back to a canvas position.
func (a *App) toPosition(cx, cy int) graph.Position {
	return graph.Position{
		X: float64((cx + a.offsetX) * unitsPerCol),
		Y: float64((cy + a.offsetY) * unitsPerRow),
	}
}

func dropLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}
