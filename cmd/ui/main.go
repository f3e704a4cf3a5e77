package main

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gioui.org/app"
	"gioui.org/font"
	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"taskboard/pkg/activity"
	"taskboard/pkg/client"
	"taskboard/pkg/task"
)

var (
	apiBase = "/"
	theme   *material.Theme
)

// Pages
const (
	pageBoard = iota
	pageActivity
)

// Board columns
const (
	colToDo = iota
	colInProgress
	colCompleted
)

var (
	grey   = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	orange = color.NRGBA{R: 0xFF, G: 0xA0, B: 0x00, A: 0xFF}
	blue   = color.NRGBA{R: 0x00, G: 0xA0, B: 0xFF, A: 0xFF}
	green  = color.NRGBA{R: 0x00, G: 0xC0, B: 0x00, A: 0xFF}
	red    = color.NRGBA{R: 0xC0, G: 0x30, B: 0x30, A: 0xFF}
)

// card holds the per-task buttons, keyed by task id so they survive refreshes.
type card struct {
	complete widget.Clickable
	edit     widget.Clickable
	remove   widget.Clickable
}

type UI struct {
	api    *client.Client
	window *app.Window

	currentPage int

	// Nav buttons
	navBoard    widget.Clickable
	navActivity widget.Clickable

	mu       sync.Mutex
	status   client.Status
	board    task.Board
	events   []activity.Event
	notice   string // outcome of the last action, shown above the board
	noticeOK bool
	cards    map[int]*card
	editing  int // id of the task loaded into the form, 0 when creating
	columns  [3]widget.List
	eventLst widget.List

	// Form
	titleEd, descEd, personaEd, groupEd widget.Editor
	saveBtn, cancelBtn, refreshBtn      widget.Clickable
}

func main() {
	if base := os.Getenv("API_BASE"); base != "" {
		apiBase = base
	}

	theme = material.NewTheme()
	theme.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	theme.Palette.Bg = color.NRGBA{R: 0x12, G: 0x12, B: 0x12, A: 0xFF}
	theme.Palette.Fg = color.NRGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	theme.Palette.ContrastBg = color.NRGBA{R: 0x30, G: 0x60, B: 0xA0, A: 0xFF}
	theme.Palette.ContrastFg = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

	ui := &UI{
		api:    client.New(apiBase),
		window: new(app.Window),
		cards:  map[int]*card{},
	}
	for i := range ui.columns {
		ui.columns[i].Axis = layout.Vertical
	}
	ui.eventLst.Axis = layout.Vertical
	for _, ed := range []*widget.Editor{&ui.titleEd, &ui.descEd, &ui.personaEd, &ui.groupEd} {
		ed.SingleLine = true
	}
	ui.groupEd.Filter = "0123456789"

	go ui.pollData()

	go func() {
		ui.window.Option(app.Title("Task Board"))
		ui.window.Option(app.Size(unit.Dp(1200), unit.Dp(800)))
		if err := ui.run(ui.window); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

func (ui *UI) run(w *app.Window) error {
	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			ui.mu.Lock()
			ui.handleClicks(gtx)
			ui.layout(gtx)
			ui.mu.Unlock()
			e.Frame(gtx.Ops)
		}
	}
}

func (ui *UI) handleClicks(gtx layout.Context) {
	if ui.navBoard.Clicked(gtx) {
		ui.currentPage = pageBoard
	}
	if ui.navActivity.Clicked(gtx) {
		ui.currentPage = pageActivity
	}
	if ui.refreshBtn.Clicked(gtx) {
		go ui.fetchAll()
	}
	if ui.cancelBtn.Clicked(gtx) {
		ui.resetForm()
	}
	if ui.saveBtn.Clicked(gtx) {
		ui.submitForm()
	}
	for id, c := range ui.cards {
		if c.complete.Clicked(gtx) {
			go ui.mutate("complete", func(ctx context.Context) error { return ui.api.Complete(ctx, id) })
		}
		if c.remove.Clicked(gtx) {
			go ui.mutate("delete", func(ctx context.Context) error { return ui.api.Delete(ctx, id) })
		}
		if c.edit.Clicked(gtx) {
			ui.loadForm(id)
		}
	}
}

func (ui *UI) layout(gtx layout.Context) layout.Dimensions {
	return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return ui.layoutNav(gtx)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.UniformInset(unit.Dp(16)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				if ui.currentPage == pageActivity {
					return ui.layoutActivity(gtx)
				}
				return ui.layoutBoard(gtx)
			})
		}),
	)
}

func (ui *UI) layoutNav(gtx layout.Context) layout.Dimensions {
	gtx.Constraints.Min.X = gtx.Dp(unit.Dp(180))
	gtx.Constraints.Max.X = gtx.Dp(unit.Dp(180))
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Inset{Top: unit.Dp(16), Bottom: unit.Dp(16), Left: unit.Dp(12)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				label := material.H6(theme, "Task Board")
				label.Color = theme.Palette.ContrastFg
				return label.Layout(gtx)
			})
		}),
		layout.Rigid(navBtn(theme, &ui.navBoard, "Board", ui.currentPage == pageBoard)),
		layout.Rigid(navBtn(theme, &ui.navActivity, "Activity", ui.currentPage == pageActivity)),
		layout.Rigid(layout.Spacer{Height: unit.Dp(16)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Inset{Left: unit.Dp(12)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return material.Caption(theme, statusLine(ui.status)).Layout(gtx)
			})
		}),
	)
}

func navBtn(th *material.Theme, btn *widget.Clickable, label string, active bool) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		return layout.Inset{Top: unit.Dp(2), Bottom: unit.Dp(2), Left: unit.Dp(8), Right: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			b := material.Button(th, btn, label)
			if active {
				b.Background = th.Palette.ContrastBg
			} else {
				b.Background = color.NRGBA{A: 0}
			}
			b.Color = th.Palette.Fg
			return b.Layout(gtx)
		})
	}
}

func (ui *UI) layoutBoard(gtx layout.Context) layout.Dimensions {
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(ui.layoutForm),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			if ui.notice == "" {
				return layout.Dimensions{}
			}
			label := material.Body2(theme, ui.notice)
			label.Color = red
			if ui.noticeOK {
				label.Color = green
			}
			return layout.Inset{Top: unit.Dp(4)}.Layout(gtx, label.Layout)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Spacing: layout.SpaceBetween}.Layout(gtx,
				layout.Flexed(1, ui.column(colToDo, "To-Do", ui.board.ToDo, orange)),
				layout.Rigid(layout.Spacer{Width: unit.Dp(12)}.Layout),
				layout.Flexed(1, ui.column(colInProgress, "In Progress", ui.board.InProgress, blue)),
				layout.Rigid(layout.Spacer{Width: unit.Dp(12)}.Layout),
				layout.Flexed(1, ui.column(colCompleted, "Completed", ui.board.Completed, green)),
			)
		}),
	)
}

func (ui *UI) layoutForm(gtx layout.Context) layout.Dimensions {
	title := "New task"
	if ui.editing != 0 {
		title = fmt.Sprintf("Edit task #%d", ui.editing)
	}
	field := func(ed *widget.Editor, hint string, weight float32) layout.FlexChild {
		return layout.Flexed(weight, func(gtx layout.Context) layout.Dimensions {
			return layout.Inset{Right: unit.Dp(8)}.Layout(gtx, material.Editor(theme, ed, hint).Layout)
		})
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(material.H6(theme, title).Layout),
		layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
				field(&ui.titleEd, "Title", 2),
				field(&ui.descEd, "Description", 3),
				field(&ui.personaEd, "Persona", 1),
				field(&ui.groupEd, "Group", 0.5),
				layout.Rigid(material.Button(theme, &ui.saveBtn, "Save").Layout),
				layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					btn := material.Button(theme, &ui.cancelBtn, "Clear")
					btn.Background = grey
					return btn.Layout(gtx)
				}),
			)
		}),
	)
}

func (ui *UI) column(idx int, name string, tasks []task.Task, accent color.NRGBA) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				label := material.H6(theme, fmt.Sprintf("%s (%d)", name, len(tasks)))
				label.Color = accent
				return label.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return material.List(theme, &ui.columns[idx]).Layout(gtx, len(tasks), func(gtx layout.Context, i int) layout.Dimensions {
					return ui.layoutCard(gtx, idx, tasks[i])
				})
			}),
		)
	}
}

// layoutCard draws one task. In Progress cards can be completed; Completed
// cards are read-only.
func (ui *UI) layoutCard(gtx layout.Context, col int, t task.Task) layout.Dimensions {
	c := ui.cards[t.ID]
	if c == nil {
		c = &card{}
		ui.cards[t.ID] = c
	}
	return layout.Inset{Bottom: unit.Dp(10)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				label := material.Body1(theme, t.Title)
				label.Font.Weight = font.Bold
				return label.Layout(gtx)
			}),
			layout.Rigid(material.Body2(theme, t.Description).Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				label := material.Caption(theme, fmt.Sprintf("#%d · group %d · %s", t.ID, t.Group, t.Persona))
				label.Color = grey
				return label.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(4)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				if col == colCompleted {
					return layout.Dimensions{}
				}
				var children []layout.FlexChild
				if col == colInProgress {
					children = append(children,
						layout.Rigid(material.Button(theme, &c.complete, "Complete").Layout),
						layout.Rigid(layout.Spacer{Width: unit.Dp(6)}.Layout),
					)
				}
				children = append(children,
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						btn := material.Button(theme, &c.edit, "Update")
						btn.Background = grey
						return btn.Layout(gtx)
					}),
					layout.Rigid(layout.Spacer{Width: unit.Dp(6)}.Layout),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						btn := material.Button(theme, &c.remove, "Delete")
						btn.Background = red
						return btn.Layout(gtx)
					}),
				)
				return layout.Flex{}.Layout(gtx, children...)
			}),
		)
	})
}

func (ui *UI) layoutActivity(gtx layout.Context) layout.Dimensions {
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
				layout.Flexed(1, material.H5(theme, "Activity").Layout),
				layout.Rigid(material.Button(theme, &ui.refreshBtn, "Refresh").Layout),
			)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return material.List(theme, &ui.eventLst).Layout(gtx, len(ui.events), func(gtx layout.Context, i int) layout.Dimensions {
				e := ui.events[i]
				return layout.Inset{Bottom: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
						layout.Rigid(func(gtx layout.Context) layout.Dimensions {
							label := material.Body2(theme, fmt.Sprintf("[%s] %s  #%d", e.Timestamp.Local().Format("15:04:05"), e.Type, e.TaskID))
							label.Font.Weight = font.Bold
							return label.Layout(gtx)
						}),
						layout.Rigid(func(gtx layout.Context) layout.Dimensions {
							label := material.Caption(theme, e.Hash[:min(12, len(e.Hash))]+"...")
							label.Color = grey
							return label.Layout(gtx)
						}),
					)
				})
			})
		}),
	)
}

func statusLine(st client.Status) string {
	active := "-"
	if st.ActiveGroup != nil {
		active = strconv.Itoa(*st.ActiveGroup)
	}
	return fmt.Sprintf("%d tasks\nactive group %s\n%d events", st.Tasks, active, st.Activity)
}

// Form

func (ui *UI) resetForm() {
	ui.editing = 0
	for _, ed := range []*widget.Editor{&ui.titleEd, &ui.descEd, &ui.personaEd, &ui.groupEd} {
		ed.SetText("")
	}
}

func (ui *UI) loadForm(id int) {
	for _, col := range [][]task.Task{ui.board.ToDo, ui.board.InProgress, ui.board.Completed} {
		for _, t := range col {
			if t.ID == id {
				ui.editing = id
				ui.titleEd.SetText(t.Title)
				ui.descEd.SetText(t.Description)
				ui.personaEd.SetText(t.Persona)
				ui.groupEd.SetText(strconv.Itoa(t.Group))
				return
			}
		}
	}
}

// submitForm reads the form and creates or updates a task. Called with mu held.
func (ui *UI) submitForm() {
	title := strings.TrimSpace(ui.titleEd.Text())
	desc := strings.TrimSpace(ui.descEd.Text())
	persona := strings.TrimSpace(ui.personaEd.Text())
	group, err := strconv.Atoi(strings.TrimSpace(ui.groupEd.Text()))
	if err != nil {
		ui.notice, ui.noticeOK = "Group must be a number", false
		return
	}

	if id := ui.editing; id != 0 {
		p := task.Patch{Title: &title, Description: &desc, Persona: &persona, Group: &group}
		go ui.mutate("update", func(ctx context.Context) error { return ui.api.Update(ctx, id, p) })
	} else {
		nt := task.NewTask{Title: title, Description: desc, Persona: persona, Group: group}
		go ui.mutate("create", func(ctx context.Context) error { return ui.api.Create(ctx, nt) })
	}
	ui.resetForm()
}

// Data fetching

func (ui *UI) pollData() {
	ui.fetchAll()
	ticker := time.NewTicker(5 * time.Second)
	for range ticker.C {
		ui.fetchAll()
	}
}

func (ui *UI) fetchAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	board, err := ui.api.Board(ctx)
	if err != nil {
		log.Printf("fetch board: %v", err)
		ui.setNotice("Error loading tasks", false)
		return
	}
	st, err := ui.api.Status(ctx)
	if err != nil {
		log.Printf("fetch status: %v", err)
	}
	events, err := ui.api.Activity(ctx, 100)
	if err != nil {
		log.Printf("fetch activity: %v", err)
	}

	ui.mu.Lock()
	ui.board = board
	ui.pruneCards()
	ui.status = st
	if events != nil {
		ui.events = events
	}
	ui.mu.Unlock()
	ui.window.Invalidate()
}

// pruneCards drops buttons of tasks that are no longer on the board.
func (ui *UI) pruneCards() {
	live := map[int]bool{}
	for _, col := range [][]task.Task{ui.board.ToDo, ui.board.InProgress, ui.board.Completed} {
		for _, t := range col {
			live[t.ID] = true
		}
	}
	for id := range ui.cards {
		if !live[id] {
			delete(ui.cards, id)
		}
	}
}

// mutate runs one of the create, update, complete or delete calls and
// shows the outcome above the board.
func (ui *UI) mutate(verb string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	stem := strings.TrimSuffix(verb, "e")
	if err := fn(ctx); err != nil {
		log.Printf("%s task: %v", verb, err)
		ui.setNotice(fmt.Sprintf("Error %sing task", stem), false)
		return
	}
	ui.setNotice(fmt.Sprintf("Task %sed successfully!", stem), true)
	ui.fetchAll()
}

func (ui *UI) setNotice(msg string, ok bool) {
	ui.mu.Lock()
	ui.notice, ui.noticeOK = msg, ok
	ui.mu.Unlock()
	ui.window.Invalidate()
}
