package ui

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"fixview/internal/filter"
	"fixview/internal/loader"
	"fixview/internal/tree"
)

// nodeLabel formats a tree record for the tree widget.
func nodeLabel(n *tree.Node) string {
	if n.IsLeaf() {
		return "[yellow]" + tview.Escape(n.Label) + "[white]"
	}
	return fmt.Sprintf("%s [gray](%d)[white]", tview.Escape(n.Label), n.Count)
}

// populate adds the visible children of parent below node.
// Children of collapsed records are added lazily when the record is expanded.
func populate(node *tview.TreeNode, parent []*tree.Node) {
	node.ClearChildren()
	for _, n := range parent {
		if !n.Visible {
			continue
		}
		child := tview.NewTreeNode(nodeLabel(n)).
			SetReference(n).
			SetSelectable(true).
			SetExpanded(n.Expanded)
		if n.IsLeaf() {
			child.SetColor(tcell.ColorYellow)
		} else {
			child.SetColor(tcell.ColorTeal)
			if n.Expanded {
				populate(child, n.Children)
			}
		}
		node.AddChild(child)
	}
}

// facetCell renders one facet button.
func facetCell(b filter.Button) *tview.TableCell {
	cell := tview.NewTableCell(" " + tview.Escape(b.Value) + " ").SetReference(b)
	switch {
	case b.Selected:
		cell.SetTextColor(tcell.ColorBlack).SetBackgroundColor(tcell.ColorGreen)
	case b.Enabled:
		cell.SetTextColor(tcell.ColorWhite)
	default:
		cell.SetTextColor(tcell.ColorGray).SetSelectable(false)
	}
	if b.Selected && !b.Enabled {
		cell.SetBackgroundColor(tcell.ColorOlive)
	}
	return cell
}

// unitTitle is the list entry of one display unit.
func unitTitle(u loader.Unit) string {
	switch {
	case u.Err != nil && !u.HasRaw && !u.HasDecoded:
		return "[red]✗ " + tview.Escape(u.Name) + "[white]"
	case u.Paired():
		return tview.Escape(u.Name) + " [green][raw|decoded][white]"
	case u.HasDecoded:
		return tview.Escape(u.Name) + " [gray][decoded][white]"
	default:
		return tview.Escape(u.Name)
	}
}

// unitBody renders the content pane for a unit. Binary data is shown as a hex dump.
func unitBody(u loader.Unit, decoded bool) string {
	if u.Err != nil && !u.HasRaw && !u.HasDecoded {
		return "[red]" + tview.Escape(u.Err.Error()) + "[white]"
	}
	if (decoded || !u.HasRaw) && u.HasDecoded {
		return tview.Escape(string(u.Decoded))
	}
	if isText(u.Name) {
		return tview.Escape(string(u.Raw))
	}
	return tview.Escape(hex.Dump(u.Raw))
}

func isText(name string) bool {
	for _, suffix := range []string{".yaml", ".yml", ".json", ".txt"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
