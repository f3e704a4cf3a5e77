package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taskboard/pkg/activity"
	"taskboard/pkg/client"
	"taskboard/pkg/task"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1)
	cardStyle   = lipgloss.NewStyle().MarginBottom(1)
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Strikethrough(true)
)

func renderBoard(b task.Board, width int) string {
	if width < 12 {
		width = 12
	}
	cols := []string{
		renderColumn("To-Do", b.ToDo, width, false),
		renderColumn("In Progress", b.InProgress, width, false),
		renderColumn("Completed", b.Completed, width, true),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func renderColumn(name string, tasks []task.Task, width int, done bool) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("%s (%d)", name, len(tasks))))
	sb.WriteString("\n\n")
	if len(tasks) == 0 {
		sb.WriteString(subtleStyle.Render("nothing here"))
	}
	for _, t := range tasks {
		title := fmt.Sprintf("#%d %s", t.ID, t.Title)
		if done {
			title = doneStyle.Render(title)
		}
		meta := subtleStyle.Render(fmt.Sprintf("group %d · %s", t.Group, t.Persona))
		sb.WriteString(cardStyle.Render(title + "\n" + meta))
		sb.WriteString("\n")
	}
	return columnStyle.Width(width).Render(strings.TrimRight(sb.String(), "\n"))
}

func renderStatus(st client.Status) string {
	active := "none"
	if st.ActiveGroup != nil {
		active = fmt.Sprintf("%d", *st.ActiveGroup)
	}
	lines := []string{
		headerStyle.Render("Task board"),
		fmt.Sprintf("tasks        %d", st.Tasks),
		fmt.Sprintf("to-do        %d", st.ToDo),
		fmt.Sprintf("in progress  %d", st.InProgress),
		fmt.Sprintf("completed    %d", st.Completed),
		fmt.Sprintf("active group %s", active),
		subtleStyle.Render(fmt.Sprintf("%d activity events", st.Activity)),
	}
	return strings.Join(lines, "\n")
}

func truncStr(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func printShortTasks(tasks []task.Task) {
	for _, t := range tasks {
		state := "open"
		if t.Completed {
			state = "done"
		}
		fmt.Printf("%-5d  %-5s  g%-3d  %-12s  %s\n", t.ID, state, t.Group, truncStr(t.Persona, 12), truncStr(t.Title, 60))
	}
}

func printShortEvents(events []activity.Event) {
	for _, e := range events {
		content := ""
		if b, err := json.Marshal(e.Content); err == nil {
			content = string(b)
		}
		fmt.Printf("%-8s  %-18s  #%-5d  %s\n", e.Timestamp.Local().Format("15:04:05"), e.Type, e.TaskID, truncStr(content, 80))
	}
}
