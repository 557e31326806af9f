package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/automata-diagram/pkg/editing"
	"github.com/ha1tch/automata-diagram/pkg/render"
)

// Styles
var (
	styleDefault    = tcell.StyleDefault
	styleState      = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleStateSel   = tcell.StyleDefault.Background(tcell.ColorGreen).Foreground(tcell.ColorBlack)
	styleTrans      = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleTransSel   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleTransDrag  = tcell.StyleDefault.Foreground(tcell.NewRGBColor(200, 162, 200)) // Lilac
	styleStatus     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgInfo    = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgError   = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleHelp       = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleInput      = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	styleBorder     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleDragging   = tcell.StyleDefault.Background(tcell.ColorPurple).Foreground(tcell.ColorWhite)
	styleDialogHint = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorSilver)
)

// Cell scale: one column is 10 renderer units, one row is 20.
const (
	unitsPerCol = 10
	unitsPerRow = 20
)

// nodeHit is the on-screen extent of a drawn node.
type nodeHit struct {
	id   string
	x, y int
	w    int
}

// labelHit is the on-screen extent of a drawn edge label.
type labelHit struct {
	id   string
	x, y int
	w    int
}

func (a *App) draw() {
	a.screen.Clear()
	w, h := a.screen.Size()

	a.frame = a.adapter.Frame()
	a.drawCanvas(w, h)
	if a.frame.NameDialog != nil {
		a.drawNameDialog(w, h, *a.frame.NameDialog)
	}
	a.drawStatusBar(w, h)
}

func (a *App) drawCanvas(w, h int) {
	canvasW := w
	canvasH := h - 2 // status and help bars

	a.nodeHits = a.nodeHits[:0]
	for _, n := range a.frame.Nodes {
		x, y := a.toCell(n.Position.X, n.Position.Y)
		a.nodeHits = append(a.nodeHits, nodeHit{id: n.ID, x: x, y: y, w: nodeWidth(n.Data.Label)})
	}

	// Transitions first so states render on top.
	a.drawTransitions(canvasW, canvasH)

	for _, n := range a.frame.Nodes {
		hit, _ := a.nodeAt(n.ID)
		if hit.y < 0 || hit.y >= canvasH || hit.x >= canvasW {
			continue
		}
		style := styleState
		if n.Selected {
			style = styleStateSel
		}
		if a.dragging && a.dragNode == n.ID {
			style = styleDragging
		}
		a.drawClipped(hit.x, hit.y, fmt.Sprintf("○[%s]", n.Data.Label), canvasW, canvasH, style)
	}
}

func nodeWidth(label string) int {
	return len([]rune(label)) + 3
}

func (a *App) nodeAt(id string) (nodeHit, bool) {
	for _, h := range a.nodeHits {
		if h.id == id {
			return h, true
		}
	}
	return nodeHit{}, false
}

func (a *App) drawTransitions(canvasW, canvasH int) {
	lineStyle := styleTrans
	if a.dragging {
		lineStyle = styleTransDrag
	}

	pairCount := make(map[string]int)
	for _, e := range a.frame.Edges {
		if e.Source != e.Target {
			pairCount[normalizePairKey(e.Source, e.Target)]++
		}
	}
	pairIndex := make(map[string]int)
	loopIndex := make(map[string]int)

	editingID := ""
	if st, ok := a.ed.Editing().(editing.EditingEdge); ok {
		editingID = st.ID
	}

	a.labelHits = a.labelHits[:0]
	for _, e := range a.frame.Edges {
		from, ok1 := a.nodeAt(e.Source)
		to, ok2 := a.nodeAt(e.Target)
		if !ok1 || !ok2 {
			continue
		}
		style := lineStyle
		if e.Selected {
			style = styleTransSel
		}

		fromX, fromY := from.x+from.w/2, from.y
		toX, toY := to.x+to.w/2, to.y

		var lx, ly int
		if e.Source == e.Target {
			idx := loopIndex[e.Source]
			loopIndex[e.Source]++
			lx, ly = a.drawSelfLoop(fromX+idx*4, fromY-1, canvasW, canvasH, style)
		} else {
			key := normalizePairKey(e.Source, e.Target)
			total := pairCount[key]
			idx := pairIndex[key]
			pairIndex[key]++

			offset := 0
			if total > 1 {
				offset = (idx - (total-1)/2) * 2
				if total%2 == 0 {
					offset = (idx-total/2)*2 + 1
				}
			}
			if fromY == toY {
				// Same row: run between the facing sides so both ends show.
				if fromX < toX {
					fromX, toX = from.x+from.w-1, to.x
				} else {
					fromX, toX = from.x, to.x+to.w-1
				}
			}
			lx, ly = a.drawArc(fromX, fromY, toX, toY, offset, canvasW, canvasH, style)
		}

		text := e.Label
		if e.ID == editingID {
			text = e.View.Text
		}
		a.drawEdgeLabel(e.ID, lx, ly, text, e.ID == editingID, canvasW, canvasH, style)
	}
}

// drawEdgeLabel draws either the committed label or the live input overlay
// and records where it landed for double-click hit testing.
func (a *App) drawEdgeLabel(id string, x, y int, text string, input bool, canvasW, canvasH int, style tcell.Style) {
	shown := text
	if input {
		shown = "[" + text + "_]"
		style = styleInput
	} else if shown == "" {
		shown = "·"
	}
	a.drawClipped(x, y, shown, canvasW, canvasH, style)
	a.labelHits = append(a.labelHits, labelHit{id: id, x: x, y: y, w: len([]rune(shown))})
}

// normalizePairKey returns a consistent key for a pair of states
func normalizePairKey(a, b string) string {
	if a < b {
		return a + "->" + b
	}
	return b + "->" + a
}

// drawSelfLoop draws a small loop above the state and returns where its
// label goes.
//
//	╭─╮
//	│a│
//	╰→
func (a *App) drawSelfLoop(x, y int, canvasW, canvasH int, style tcell.Style) (int, int) {
	if y < 1 || x < 1 || x >= canvasW-3 {
		return x, y
	}
	a.setCell(x-1, y-1, '╭', canvasW, canvasH, style)
	a.setCell(x, y-1, '─', canvasW, canvasH, style)
	a.setCell(x+1, y-1, '╮', canvasW, canvasH, style)
	a.setCell(x-1, y, '│', canvasW, canvasH, style)
	a.setCell(x-1, y+1, '╰', canvasW, canvasH, style)
	a.setCell(x, y+1, '→', canvasW, canvasH, style)
	return x, y
}

func (a *App) drawArc(fromX, fromY, toX, toY, offset, canvasW, canvasH int, style tcell.Style) (int, int) {
	switch {
	case fromY == toY:
		return a.drawHorizontalArc(fromX, fromY+offset, toX, canvasW, canvasH, style)
	case fromX == toX:
		return a.drawVerticalArc(fromX+offset, fromY, toY, canvasW, canvasH, style)
	default:
		return a.drawLShapedArc(fromX, fromY, toX, toY, offset, canvasW, canvasH, style)
	}
}

func (a *App) drawHorizontalArc(fromX, y, toX int, canvasW, canvasH int, style tcell.Style) (int, int) {
	minX, maxX := fromX, toX
	goingRight := fromX <= toX
	if !goingRight {
		minX, maxX = toX, fromX
	}
	for x := minX + 1; x < maxX; x++ {
		a.setCell(x, y, '─', canvasW, canvasH, style)
	}
	if goingRight {
		a.setCell(maxX-1, y, '→', canvasW, canvasH, style)
	} else {
		a.setCell(minX+1, y, '←', canvasW, canvasH, style)
	}
	labelY := y - 1
	if labelY < 0 {
		labelY = y + 1
	}
	return (minX + maxX) / 2, labelY
}

func (a *App) drawVerticalArc(x, fromY, toY int, canvasW, canvasH int, style tcell.Style) (int, int) {
	minY, maxY := fromY, toY
	goingDown := fromY <= toY
	if !goingDown {
		minY, maxY = toY, fromY
	}
	for y := minY + 1; y < maxY; y++ {
		a.setCell(x, y, '│', canvasW, canvasH, style)
	}
	if goingDown {
		a.setCell(x, maxY-1, '↓', canvasW, canvasH, style)
	} else {
		a.setCell(x, minY+1, '↑', canvasW, canvasH, style)
	}
	return x + 1, (minY + maxY) / 2
}

// drawLShapedArc goes horizontal first, then vertical. The offset moves
// the corner so parallel arcs separate.
func (a *App) drawLShapedArc(fromX, fromY, toX, toY, offset int, canvasW, canvasH int, style tcell.Style) (int, int) {
	cornerX := toX + offset
	cornerY := fromY

	minX, maxX := fromX, cornerX
	if fromX > cornerX {
		minX, maxX = cornerX, fromX
	}
	for x := minX + 1; x < maxX; x++ {
		a.setCell(x, cornerY, '─', canvasW, canvasH, style)
	}

	var corner rune
	switch {
	case toX > fromX && toY > fromY:
		corner = '╮'
	case toX > fromX && toY < fromY:
		corner = '╯'
	case toX < fromX && toY > fromY:
		corner = '╭'
	default:
		corner = '╰'
	}
	a.setCell(cornerX, cornerY, corner, canvasW, canvasH, style)

	minY, maxY := cornerY, toY
	goingDown := cornerY <= toY
	if !goingDown {
		minY, maxY = toY, cornerY
	}
	for y := minY + 1; y < maxY; y++ {
		a.setCell(cornerX, y, '│', canvasW, canvasH, style)
	}
	if goingDown {
		a.setCell(cornerX, maxY-1, '↓', canvasW, canvasH, style)
	} else {
		a.setCell(cornerX, minY+1, '↑', canvasW, canvasH, style)
	}

	labelY := cornerY - 1
	if labelY < 0 {
		labelY = cornerY + 1
	}
	return (fromX + cornerX) / 2, labelY
}

// drawNameDialog is the rename modal for the node being edited.
func (a *App) drawNameDialog(w, h int, d render.NameDialog) {
	boxW := d.MaxLength + 16
	boxH := 5
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	a.drawBox(boxX, boxY, boxW, boxH, styleInput)
	prompt := "Name: "
	a.drawString(boxX+2, boxY+1, prompt, styleInput)
	a.drawString(boxX+2+len(prompt), boxY+1, d.Draft+"_", styleInput)
	a.drawString(boxX+2, boxY+3, "Enter:Save  Esc:Cancel", styleDialogHint)
}

func (a *App) drawStatusBar(w, h int) {
	y := h - 1
	for x := 0; x < w; x++ {
		a.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	g := a.ed.Graph()
	info := fmt.Sprintf("%d states  %d transitions", g.NodeCount(), g.EdgeCount())
	a.drawString(1, y, info, styleStatus)

	mode := a.modeString()
	a.drawString(w/2-len(mode)/2, y, mode, styleStatus)

	if a.message != "" {
		style := styleMsgInfo
		if a.messageType == MsgError {
			style = styleMsgError
		}
		a.drawString(w-len([]rune(a.message))-2, y, a.message, style)
	}

	y = h - 2
	for x := 0; x < w; x++ {
		a.screen.SetContent(x, y, ' ', nil, styleDefault)
	}
	a.drawString(1, y, a.helpString(), styleHelp)
}

func (a *App) drawBox(x, y, w, h int, style tcell.Style) {
	a.screen.SetContent(x, y, '┌', nil, styleBorder)
	a.screen.SetContent(x+w-1, y, '┐', nil, styleBorder)
	a.screen.SetContent(x, y+h-1, '└', nil, styleBorder)
	a.screen.SetContent(x+w-1, y+h-1, '┘', nil, styleBorder)

	for i := x + 1; i < x+w-1; i++ {
		a.screen.SetContent(i, y, '─', nil, styleBorder)
		a.screen.SetContent(i, y+h-1, '─', nil, styleBorder)
	}
	for i := y + 1; i < y+h-1; i++ {
		a.screen.SetContent(x, i, '│', nil, styleBorder)
		a.screen.SetContent(x+w-1, i, '│', nil, styleBorder)
	}
	for row := y + 1; row < y+h-1; row++ {
		for col := x + 1; col < x+w-1; col++ {
			a.screen.SetContent(col, row, ' ', nil, style)
		}
	}
}

func (a *App) drawString(x, y int, s string, style tcell.Style) {
	i := 0
	for _, r := range s {
		a.screen.SetContent(x+i, y, r, nil, style)
		i++
	}
}

func (a *App) drawClipped(x, y int, s string, canvasW, canvasH int, style tcell.Style) {
	i := 0
	for _, r := range s {
		a.setCell(x+i, y, r, canvasW, canvasH, style)
		i++
	}
}

func (a *App) setCell(x, y int, r rune, canvasW, canvasH int, style tcell.Style) {
	if x >= 0 && x < canvasW && y >= 0 && y < canvasH {
		a.screen.SetContent(x, y, r, nil, style)
	}
}

func (a *App) modeString() string {
	switch {
	case a.dragging:
		return "MOVE"
	case a.connectFrom != "":
		return "CONNECT"
	}
	switch a.ed.Editing().(type) {
	case editing.EditingNode:
		return "RENAME"
	case editing.EditingEdge:
		return "LABEL"
	}
	return ""
}

func (a *App) helpString() string {
	switch a.ed.Editing().(type) {
	case editing.EditingNode:
		return "Type name  Enter:Save  Esc:Cancel"
	case editing.EditingEdge:
		return "Type label  Enter/Esc/Click:Done"
	}
	return "A:Add State  Right-drag:Connect  Dbl-click:Rename  Tab:Cycle  Del:Delete  L:Arrange  E:Export  Arrows:Pan  Q:Quit"
}
