package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/askmydocs/askmydocs-cli/internal/app"
)

type homeFocus int

const (
	focusDocs homeFocus = iota
	focusQuery
)

type homeMode int

const (
	modeBrowse homeMode = iota
	modePickFile
	modeConfirmDelete
)

type refreshDoneMsg struct {
	docs []app.DocumentRecord
	err  error
}

type uploadDoneMsg struct {
	rec app.DocumentRecord
	err error
}

type deleteDoneMsg struct {
	id  app.DocumentID
	err error
}

type queryDoneMsg struct {
	answer string
	err    error
}

type homeSpinMsg struct{}

type homeModel struct {
	app   *app.Application
	theme Theme

	focus homeFocus
	mode  homeMode

	docs     table.Model
	picker   filepicker.Model
	question textarea.Model

	refreshing bool
	uploading  bool
	asking     bool

	confirmID   app.DocumentID
	confirmName string

	listErr   string
	actionMsg string // inline message scoped to the last upload/delete
	actionOK  bool
	queryErr  string
	answer    string

	spin   int
	width  int
	height int
}

func newHomeModel(application *app.Application, theme Theme) homeModel {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Filename", Width: 32},
		{Title: "Uploaded", Width: 12},
		{Title: "Status", Width: 20},
	}
	docs := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	st := table.DefaultStyles()
	st.Header = st.Header.Bold(true).Foreground(theme.TextPrimary).BorderForeground(theme.Border)
	st.Selected = st.Selected.Foreground(theme.Accent).Bold(true)
	docs.SetStyles(st)

	picker := filepicker.New()
	picker.AllowedTypes = nil // the server decides what it can ingest
	if home, err := os.UserHomeDir(); err == nil {
		picker.CurrentDirectory = home
	}

	question := textarea.New()
	question.Placeholder = "Ask a question about your documents, then press Enter."
	question.CharLimit = 2000
	question.SetHeight(3)
	question.ShowLineNumbers = false
	question.Prompt = "  "

	return homeModel{
		app:      application,
		theme:    theme,
		docs:     docs,
		picker:   picker,
		question: question,
	}
}

func (m *homeModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.docs.SetWidth(max(40, w-6))
	m.question.SetWidth(max(40, w-8))
	m.picker.Height = max(8, h-10)
}

// enter runs when the guard routes here: fetch the list and start the
// spinner.
func (m *homeModel) enter() tea.Cmd {
	m.focus = focusDocs
	m.mode = modeBrowse
	m.listErr = ""
	m.actionMsg = ""
	m.queryErr = ""
	m.answer = ""
	m.question.SetValue("")
	m.question.Blur()
	m.docs.Focus()
	return tea.Batch(m.refresh(), m.spinTick())
}

func (m *homeModel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case homeSpinMsg:
		m.spin++
		if m.busy() {
			// Keep the "deleting..." row label current while a delete runs.
			m.rebuildRows()
			return m.spinTick()
		}
		return nil

	case refreshDoneMsg:
		m.refreshing = false
		if msg.err != nil {
			// Keep showing the stale snapshot; just surface the error.
			m.listErr = app.UserMessage(msg.err)
		} else {
			m.listErr = ""
		}
		m.rebuildRows()
		return nil

	case uploadDoneMsg:
		m.uploading = false
		if msg.err != nil {
			m.actionMsg = app.UserMessage(msg.err)
			m.actionOK = false
		} else {
			m.actionMsg = fmt.Sprintf("Uploaded %s (%s). Press r to refresh status.", msg.rec.Filename, msg.rec.Status)
			m.actionOK = true
		}
		m.rebuildRows()
		return nil

	case deleteDoneMsg:
		if msg.err != nil {
			m.actionMsg = app.UserMessage(msg.err)
			m.actionOK = false
		} else {
			m.actionMsg = fmt.Sprintf("Deleted document %s.", msg.id)
			m.actionOK = true
		}
		m.rebuildRows()
		return nil

	case queryDoneMsg:
		m.asking = false
		if msg.err != nil {
			m.queryErr = app.UserMessage(msg.err)
			m.answer = ""
		} else {
			m.queryErr = ""
			m.answer = msg.answer
		}
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.routeInput(msg)
}

func (m *homeModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.mode == modePickFile {
		switch msg.String() {
		case "esc":
			m.mode = modeBrowse
			return nil
		}
		return m.updatePicker(msg)
	}

	if m.mode == modeConfirmDelete {
		switch msg.String() {
		case "y", "Y", "enter":
			m.mode = modeBrowse
			return tea.Batch(m.deleteDoc(m.confirmID), m.spinTick())
		case "n", "N", "esc":
			m.mode = modeBrowse
			return nil
		}
		return nil
	}

	switch msg.String() {
	case "tab":
		if m.focus == focusDocs {
			m.focus = focusQuery
			m.docs.Blur()
			return m.question.Focus()
		}
		m.focus = focusDocs
		m.question.Blur()
		m.docs.Focus()
		return nil

	case "ctrl+l":
		m.app.Session.Logout()
		return func() tea.Msg { return sessionChangedMsg{} }
	}

	if m.focus == focusDocs {
		switch msg.String() {
		case "r":
			if m.refreshing {
				return nil
			}
			return tea.Batch(m.refresh(), m.spinTick())
		case "u":
			if m.uploading {
				return nil
			}
			m.mode = modePickFile
			return m.picker.Init()
		case "d", "delete":
			return m.askConfirmDelete()
		}
	}

	if m.focus == focusQuery && msg.String() == "enter" {
		if m.asking {
			// Resubmission is disabled while a question is in flight.
			return nil
		}
		return tea.Batch(m.submitQuery(), m.spinTick())
	}

	return m.routeInput(msg)
}

func (m *homeModel) routeInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if m.mode == modePickFile {
		return m.updatePicker(msg)
	}
	if m.focus == focusQuery {
		m.question, cmd = m.question.Update(msg)
		return cmd
	}
	m.docs, cmd = m.docs.Update(msg)
	return cmd
}

func (m *homeModel) updatePicker(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.mode = modeBrowse
		return tea.Batch(m.upload(path), m.spinTick())
	}
	return cmd
}

func (m *homeModel) busy() bool {
	return m.refreshing || m.uploading || m.asking || m.anyDeleteInFlight()
}

func (m *homeModel) anyDeleteInFlight() bool {
	for _, doc := range m.app.Documents.Documents() {
		if m.app.Documents.DeletionState(doc.ID) == app.DeletionInFlight {
			return true
		}
	}
	return false
}

func (m *homeModel) spinTick() tea.Cmd {
	return tea.Tick(90*time.Millisecond, func(time.Time) tea.Msg { return homeSpinMsg{} })
}

func (m *homeModel) refresh() tea.Cmd {
	m.refreshing = true
	registry := m.app.Documents
	timeout := m.app.Config.Timeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		docs, err := registry.Refresh(ctx)
		return refreshDoneMsg{docs: docs, err: err}
	}
}

func (m *homeModel) upload(path string) tea.Cmd {
	m.uploading = true
	m.actionMsg = ""
	registry := m.app.Documents
	maxBytes := m.app.Config.MaxUploadBytes
	timeout := m.app.Config.Timeout()
	return func() tea.Msg {
		contents, err := os.ReadFile(path)
		if err != nil {
			return uploadDoneMsg{err: fmt.Errorf("could not read %s: %w", filepath.Base(path), err)}
		}
		if int64(len(contents)) > maxBytes {
			return uploadDoneMsg{err: fmt.Errorf("%s is larger than the %d MB upload limit", filepath.Base(path), maxBytes>>20)}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		rec, err := registry.Upload(ctx, filepath.Base(path), contents)
		return uploadDoneMsg{rec: rec, err: err}
	}
}

func (m *homeModel) askConfirmDelete() tea.Cmd {
	row := m.docs.SelectedRow()
	if row == nil {
		return nil
	}
	id, err := app.ParseDocumentID(row[0])
	if err != nil {
		return nil
	}
	if m.app.Documents.DeletionState(id) == app.DeletionInFlight {
		return nil
	}
	m.confirmID = id
	m.confirmName = row[1]
	m.mode = modeConfirmDelete
	return nil
}

func (m *homeModel) deleteDoc(id app.DocumentID) tea.Cmd {
	m.actionMsg = ""
	registry := m.app.Documents
	timeout := m.app.Config.Timeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return deleteDoneMsg{id: id, err: registry.Delete(ctx, id)}
	}
}

func (m *homeModel) submitQuery() tea.Cmd {
	m.asking = true
	m.queryErr = ""
	m.answer = ""
	question := m.question.Value()
	flow := m.app.Query
	timeout := m.app.Config.Timeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		answer, err := flow.Submit(ctx, question)
		return queryDoneMsg{answer: answer, err: err}
	}
}

func (m *homeModel) rebuildRows() {
	docs := m.app.Documents.Documents()
	rows := make([]table.Row, 0, len(docs))
	for _, doc := range docs {
		status := string(doc.Status)
		if m.app.Documents.DeletionState(doc.ID) == app.DeletionInFlight {
			status = "deleting..."
		}
		uploaded := ""
		if !doc.UploadTimestamp.IsZero() {
			uploaded = doc.UploadTimestamp.Format("2006-01-02")
		}
		rows = append(rows, table.Row{doc.ID.String(), doc.Filename, uploaded, status})
	}
	m.docs.SetRows(rows)
}

func (m *homeModel) view() string {
	t := m.theme

	if m.mode == modePickFile {
		header := t.Title.Render("Upload a document") + "\n" +
			t.Subtitle.Render("Pick a file to send for ingestion (esc to cancel)") + "\n\n"
		return header + m.picker.View()
	}

	var b strings.Builder
	title := t.Title.Render("AskMyDocs")
	if m.busy() {
		title += " " + t.Spinner.Render(spinnerFrames[m.spin%len(spinnerFrames)])
	}
	b.WriteString(title + "\n\n")

	// Documents pane
	docsTitle := t.PaneTitle.Render("My Documents")
	if m.refreshing {
		docsTitle += t.Muted.Render("  loading...")
	}
	b.WriteString(docsTitle + "\n")
	if len(m.app.Documents.Documents()) == 0 && !m.refreshing && m.listErr == "" {
		b.WriteString(t.Muted.Render("No documents uploaded yet. Press u to upload one.") + "\n")
	} else {
		b.WriteString(m.docs.View() + "\n")
	}
	if m.listErr != "" {
		b.WriteString(t.ErrLine.Render(m.listErr) + "\n")
	}
	if m.actionMsg != "" {
		style := t.ErrLine
		if m.actionOK {
			style = t.OkLine
		}
		b.WriteString(style.Render(m.actionMsg) + "\n")
	}

	if m.mode == modeConfirmDelete {
		b.WriteString("\n" + t.ErrLine.Render(fmt.Sprintf("Delete %q? (y/n)", m.confirmName)) + "\n")
	}

	// Query pane
	b.WriteString("\n" + t.PaneTitle.Render("Ask a Question") + "\n")
	b.WriteString(m.question.View() + "\n")
	switch {
	case m.asking:
		b.WriteString(t.Muted.Render("Thinking...") + "\n")
	case m.queryErr != "":
		b.WriteString(t.ErrLine.Render(m.queryErr) + "\n")
	case m.answer != "":
		b.WriteString(t.OkLine.Render("Answer") + "\n")
		b.WriteString(lipgloss.NewStyle().Width(max(40, m.width-6)).Render(m.answer) + "\n")
	}

	b.WriteString("\n" + t.Footer.Render("tab docs/question • r refresh • u upload • d delete • enter ask • ctrl+l logout • ctrl+c quit"))
	return b.String()
}
