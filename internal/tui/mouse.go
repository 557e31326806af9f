package tui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/automata-diagram/pkg/editing"
	"github.com/ha1tch/automata-diagram/pkg/editor"
	"github.com/ha1tch/automata-diagram/pkg/render"
)

func (a *App) nodeAtCell(x, y int) string {
	// Last drawn is on top.
	for i := len(a.nodeHits) - 1; i >= 0; i-- {
		h := a.nodeHits[i]
		if y == h.y && x >= h.x && x < h.x+h.w {
			return h.id
		}
	}
	return ""
}

func (a *App) labelAtCell(x, y int) string {
	for i := len(a.labelHits) - 1; i >= 0; i-- {
		h := a.labelHits[i]
		if y == h.y && x >= h.x && x < h.x+h.w {
			return h.id
		}
	}
	return ""
}

// handleMouse handles left press, drag and release for select, move and
// double-click rename, and a right-button drag for connecting states.
func (a *App) handleMouse(ev *tcell.EventMouse) {
	// The rename modal owns input until it closes.
	if _, ok := a.ed.Editing().(editing.EditingNode); ok {
		return
	}

	x, y := ev.Position()
	_, h := a.screen.Size()
	buttons := ev.Buttons()
	onCanvas := y < h-2

	if buttons&tcell.Button1 != 0 {
		if !onCanvas {
			return
		}
		if !a.leftDown {
			a.leftDown = true
			a.leftDownX, a.leftDownY = x, y
			a.leftDownNode = a.nodeAtCell(x, y)
			return
		}
		if a.leftDownNode == "" {
			return
		}
		if !a.dragging && (x != a.leftDownX || y != a.leftDownY) {
			hit, _ := a.nodeAt(a.leftDownNode)
			a.dragging = true
			a.dragNode = a.leftDownNode
			a.dragOffsetX = a.leftDownX - hit.x
			a.dragOffsetY = a.leftDownY - hit.y
			a.selectOnly(a.dragNode, "")
		}
		if a.dragging {
			pos := a.toPosition(x-a.dragOffsetX, y-a.dragOffsetY)
			_ = a.dispatch(render.NodesChange{Changes: []render.Change{
				{Type: render.ChangePosition, ID: a.dragNode, Position: &pos},
			}})
			a.refreshHits()
		}
		return
	}

	if buttons&tcell.Button2 != 0 {
		if !a.rightDown && onCanvas {
			a.rightDown = true
			a.connectFrom = a.nodeAtCell(x, y)
		}
		return
	}

	// Release
	if a.rightDown {
		a.finishRightDrag(x, y, onCanvas)
	}
	if a.leftDown && !a.dragging {
		a.click(a.leftDownX, a.leftDownY)
	}
	a.leftDown = false
	a.leftDownNode = ""
	a.dragging = false
	a.dragNode = ""
}

// finishRightDrag connects two states, or adds a state when the right
// button is clicked on empty canvas.
func (a *App) finishRightDrag(x, y int, onCanvas bool) {
	from := a.connectFrom
	a.rightDown = false
	a.connectFrom = ""
	if !onCanvas {
		return
	}

	to := a.nodeAtCell(x, y)
	switch {
	case from != "" && to != "":
		if err := a.dispatch(render.Connect{Source: from, Target: to}); err != nil {
			a.showMessage("Cannot connect: "+err.Error(), MsgError)
			return
		}
		a.showMessage("Added transition", MsgSuccess)
	case from == "" && to == "" && a.labelAtCell(x, y) == "":
		pos := a.toPosition(x, y)
		_ = a.ed.Exec(editor.CommandFunc(func(e *editor.Editor) error {
			e.AddStateAt(pos)
			return nil
		}))
		a.showMessage("Added state", MsgSuccess)
	}
}

func (a *App) click(x, y int) {
	if st, ok := a.ed.Editing().(editing.EditingEdge); ok {
		if a.labelAtCell(x, y) == st.ID {
			return
		}
		_ = a.dispatch(render.LabelBlur{})
		a.refreshHits()
	}

	nodeID := a.nodeAtCell(x, y)
	edgeID := ""
	target := ""
	if nodeID != "" {
		target = "node:" + nodeID
	} else if edgeID = a.labelAtCell(x, y); edgeID != "" {
		target = "edge:" + edgeID
	}

	now := a.now()
	if target != "" && target == a.lastClickTarget && now.Sub(a.lastClick) < doubleClickWindow {
		a.lastClickTarget = ""
		a.lastClick = now.Add(-doubleClickWindow) // no triple-click
		if nodeID != "" {
			_ = a.dispatch(render.NodeDoubleClick{NodeID: nodeID})
		} else {
			_ = a.dispatch(render.EdgeDoubleClick{EdgeID: edgeID})
		}
		return
	}

	a.selectOnly(nodeID, edgeID)
	a.lastClick = now
	a.lastClickTarget = target
}

// refreshHits recomputes hit boxes after a change made between draws.
func (a *App) refreshHits() {
	a.draw()
}
