package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"fixview/internal/config"
	"fixview/internal/domain"
	"fixview/internal/filter"
	"fixview/internal/loader"
	"fixview/internal/tree"
)

const browserHelp = "Tab switch pane | Enter open | t raw/decoded | d download all | Ctrl+R clear filters | q quit"

// Browser is the interactive fixture viewer
type Browser struct {
	config *config.Config
	loader *loader.Loader
	logger *zap.Logger

	app      *tview.Application
	header   *tview.TextView
	versions *tview.DropDown
	search   *tview.InputField
	facets   *tview.Table
	treeView *tview.TreeView
	units    *tview.List
	content  *tview.TextView
	status   *tview.TextView
	panes    []tview.Primitive

	controller *filter.Controller

	// Everything below is only touched on the UI goroutine.
	ctx         context.Context
	version     string
	unitIndex   map[string]int
	unitData    []loader.Unit
	showDecoded bool
	current     *loader.CaseResult
	caseKey     domain.HierarchyKey
	cancelLoad  context.CancelFunc
	loadGen     int
}

// NewBrowser creates a Browser reading through ld
func NewBrowser(cfg *config.Config, ld *loader.Loader, logger *zap.Logger) *Browser {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Browser{
		config:    cfg,
		loader:    ld,
		logger:    logger,
		app:       tview.NewApplication(),
		unitIndex: make(map[string]int),
	}
	b.controller = filter.NewController(cfg.SearchDebounce, func(fn func()) {
		b.app.QueueUpdateDraw(fn)
	}, b.onFilter)
	return b
}

// Browse opens a version and runs the UI until the user quits
func (b *Browser) Browse(ctx context.Context, v string) error {
	reg, err := loader.FetchVersions(ctx, b.loader.Source())
	if err != nil {
		return fmt.Errorf("load versions: %w", err)
	}
	if len(reg.Versions) == 0 {
		return domain.Setupf(nil, "no versions available, run prepare first")
	}
	if v == "" {
		v = reg.Latest()
	}
	if !reg.Contains(v) {
		return domain.Setupf(nil, "version %s is not registered", v)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer b.controller.Close()
	b.ctx = ctx

	layout := b.layout()
	b.versions.SetOptions(reg.Versions, func(text string, _ int) {
		b.openVersion(text)
	})
	for i, candidate := range reg.Versions {
		if candidate == v {
			b.versions.SetCurrentOption(i)
		}
	}

	if err := b.app.SetRoot(layout, true).SetFocus(b.treeView).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if b.cancelLoad != nil {
		b.cancelLoad()
	}
	return nil
}

func (b *Browser) layout() tview.Primitive {
	b.header = tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	b.versions = tview.NewDropDown().SetLabel("Version: ")

	b.search = tview.NewInputField().
		SetLabel("Search: ").
		SetPlaceholder("test case name").
		SetChangedFunc(func(text string) {
			b.controller.SetSearch(text)
		})

	b.facets = tview.NewTable().
		SetSelectable(true, true).
		SetSelectedFunc(func(row, column int) {
			cell := b.facets.GetCell(row, column)
			btn, ok := cell.GetReference().(filter.Button)
			if !ok || (!btn.Enabled && !btn.Selected) {
				return
			}
			b.controller.Toggle(btn.Facet, btn.Value)
		})
	b.facets.SetBorder(true).SetTitle(" Filters ")

	root := tview.NewTreeNode("").SetSelectable(false)
	b.treeView = tview.NewTreeView().
		SetRoot(root).
		SetTopLevel(1).
		SetSelectedFunc(b.onTreeSelect)
	b.treeView.SetBorder(true).SetTitle(" Test cases ")

	b.units = tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true).
		SetChangedFunc(func(index int, _ string, _ string, _ rune) {
			b.showUnit(index)
		})
	b.units.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)
	b.units.SetBorder(true).SetTitle(" Files ")

	b.content = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(false)
	b.content.SetBorder(true)

	b.status = tview.NewTextView().SetDynamicColors(true)

	b.panes = []tview.Primitive{b.versions, b.search, b.facets, b.treeView, b.units, b.content}
	b.app.SetInputCapture(b.onKey)

	top := tview.NewFlex().
		AddItem(b.versions, 30, 0, false).
		AddItem(b.search, 0, 1, false)

	right := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(b.units, 10, 0, false).
		AddItem(b.content, 0, 1, false)

	body := tview.NewFlex().
		AddItem(b.treeView, 0, 1, true).
		AddItem(right, 0, 2, false)

	return tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(b.header, 1, 0, false).
		AddItem(top, 1, 0, false).
		AddItem(b.facets, 5, 0, false).
		AddItem(body, 0, 1, true).
		AddItem(b.status, 1, 0, false)
}

func (b *Browser) onKey(event *tcell.EventKey) *tcell.EventKey {
	focus := b.app.GetFocus()
	switch event.Key() {
	case tcell.KeyTab:
		b.cycleFocus(focus, 1)
		return nil
	case tcell.KeyBacktab:
		b.cycleFocus(focus, -1)
		return nil
	case tcell.KeyCtrlR:
		b.search.SetText("")
		b.controller.Clear()
		return nil
	case tcell.KeyRune:
		if focus == b.search {
			return event
		}
		switch event.Rune() {
		case 'q':
			b.app.Stop()
			return nil
		case 't':
			if focus == b.units || focus == b.content {
				b.showDecoded = !b.showDecoded
				b.showUnit(b.units.GetCurrentItem())
				return nil
			}
		case 'd':
			if focus == b.units || focus == b.content {
				b.downloadAll()
				return nil
			}
		}
	}
	return event
}

func (b *Browser) cycleFocus(focus tview.Primitive, step int) {
	current := 0
	for i, p := range b.panes {
		if p == focus {
			current = i
		}
	}
	next := (current + step + len(b.panes)) % len(b.panes)
	b.app.SetFocus(b.panes[next])
}

// openVersion fetches a manifest off the UI goroutine and installs the new tree when it arrives.
func (b *Browser) openVersion(v string) {
	if v == b.version {
		return
	}
	b.version = v
	b.setStatus("[yellow]Loading manifest %s...[white]", v)

	go func() {
		m, err := loader.FetchManifest(b.ctx, b.loader.Source(), v)
		b.app.QueueUpdateDraw(func() {
			if v != b.version {
				return
			}
			if err != nil {
				b.logger.Warn("failed to load manifest", zap.String("version", v), zap.Error(err))
				b.setStatus("[red]Cannot load manifest %s: %s[white]", v, tview.Escape(err.Error()))
				return
			}
			b.resetCase()
			res := b.controller.SetIndex(tree.Build(m))
			b.setStatus("%d test cases in %s", res.VisibleLeaves, v)
		})
	}()
}

// onFilter redraws everything that depends on the filter. It always runs on the UI goroutine.
func (b *Browser) onFilter(res filter.Result) {
	ix := b.controller.Index()
	if ix == nil {
		return
	}

	populate(b.treeView.GetRoot(), ix.Roots)
	if children := b.treeView.GetRoot().GetChildren(); len(children) > 0 {
		b.treeView.SetCurrentNode(children[0])
	}
	b.renderFacets()

	b.header.SetText(fmt.Sprintf(" [cyan]%s[white] | %d of %d test cases | %s ",
		ix.Version, res.VisibleLeaves, len(ix.Leaves), browserHelp))
}

func (b *Browser) renderFacets() {
	row, column := b.facets.GetSelection()
	b.facets.Clear()
	for i, f := range filter.Facets {
		b.facets.SetCell(i, 0, tview.NewTableCell(f.String()+":").
			SetTextColor(tcell.ColorTeal).
			SetSelectable(false))
		for j, btn := range b.controller.Buttons(f) {
			b.facets.SetCell(i, j+1, facetCell(btn))
		}
	}
	if column == 0 {
		column = 1
	}
	b.facets.Select(row, column)
}

func (b *Browser) onTreeSelect(node *tview.TreeNode) {
	n, ok := node.GetReference().(*tree.Node)
	if !ok {
		return
	}
	if n.IsLeaf() {
		b.openCase(n)
		return
	}
	n.Expanded = !n.Expanded
	node.SetExpanded(n.Expanded)
	if n.Expanded {
		populate(node, n.Children)
	}
}

func (b *Browser) resetCase() {
	if b.cancelLoad != nil {
		b.cancelLoad()
		b.cancelLoad = nil
	}
	b.loadGen++
	b.current = nil
	b.unitIndex = make(map[string]int)
	b.unitData = nil
	b.units.Clear()
	b.content.Clear().SetTitle("")
}

// openCase starts the progressive load of one test case. Updates from an abandoned load are dropped.
func (b *Browser) openCase(n *tree.Node) {
	b.resetCase()
	ctx, cancel := context.WithCancel(b.ctx)
	b.cancelLoad = cancel
	gen := b.loadGen
	b.caseKey = n.Leaf.Key
	b.setStatus("[yellow]Loading %s (%s)...[white]", tview.Escape(n.Leaf.Path), n.Leaf.Key.SSZType())

	go func() {
		res, err := b.loader.Load(ctx, n.Leaf, func(u loader.Update) {
			b.app.QueueUpdateDraw(func() {
				if gen == b.loadGen {
					b.applyUnit(u.Unit)
				}
			})
		})
		b.app.QueueUpdateDraw(func() {
			if gen == b.loadGen {
				b.finishCase(res, err)
			}
		})
	}()
}

// applyUnit adds a unit or updates an existing one in place.
func (b *Browser) applyUnit(u loader.Unit) {
	idx, ok := b.unitIndex[u.Name]
	if !ok {
		idx = len(b.unitData)
		b.unitIndex[u.Name] = idx
		b.unitData = append(b.unitData, u)
		b.units.AddItem(unitTitle(u), "", 0, nil)
	} else {
		b.unitData[idx] = u
		b.units.SetItemText(idx, unitTitle(u), "")
	}
	if b.units.GetCurrentItem() == idx {
		b.showUnit(idx)
	}
}

func (b *Browser) finishCase(res *loader.CaseResult, err error) {
	if err != nil {
		if b.ctx.Err() == nil {
			b.setStatus("[red]%s[white]", tview.Escape(err.Error()))
		}
		return
	}
	b.current = res
	source := "fetched"
	if res.Cached {
		source = "cached"
	}
	if res.Complete() {
		b.setStatus("[green]%d file(s) %s[white] | type %s | d: download all", len(res.Records), source, b.caseKey.SSZType())
	} else {
		b.setStatus("[red]%d file(s) failed[white] | type %s | d: download all", res.Failed, b.caseKey.SSZType())
	}
}

func (b *Browser) showUnit(index int) {
	if index < 0 || index >= len(b.unitData) {
		return
	}
	u := b.unitData[index]
	mode := "raw"
	if u.HasDecoded && (b.showDecoded || !u.HasRaw) {
		mode = "decoded"
	}
	b.content.SetTitle(fmt.Sprintf(" %s (%s) ", u.Name, mode))
	b.content.SetText(unitBody(u, b.showDecoded)).ScrollToBeginning()
}

// downloadAll writes the loaded case as a zip once every file has resolved.
func (b *Browser) downloadAll() {
	if b.current == nil {
		b.setStatus("[yellow]Still loading, download is not available yet[white]")
		return
	}
	target := filepath.Join(b.config.ProjectPath, b.current.ArchiveName())
	f, err := os.Create(target)
	if err != nil {
		b.setStatus("[red]%s[white]", tview.Escape(err.Error()))
		return
	}
	defer f.Close()
	if err := b.current.WriteArchive(f); err != nil {
		b.setStatus("[red]%s[white]", tview.Escape(err.Error()))
		return
	}
	b.setStatus("[green]Saved %s[white]", tview.Escape(target))
}

func (b *Browser) setStatus(format string, a ...interface{}) {
	b.status.SetText(fmt.Sprintf(" "+format, a...))
}
