package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/nibzard/flash2do/internal/countdown"
	"github.com/nibzard/flash2do/internal/editform"
	"github.com/nibzard/flash2do/internal/task"
)

const (
	titleText = "FLASH2DO"
	emptyText = "Hooray! No Tasks Pending"
)

type focusArea int

const (
	focusList focusArea = iota
	focusInput
)

type loadedMsg struct {
	tasks []task.Task
}

// saveDueMsg fires when a debounce window closes. Only the newest
// generation is written.
type saveDueMsg struct {
	gen int
}

type savedMsg struct {
	gen     int
	skipped bool
	err     error
}

// tickMsg refreshes countdowns. Ticks from an older generation are dropped,
// which is how a restarted tick tears down the previous one.
type tickMsg struct {
	gen int
	at  time.Time
}

// saver serializes writes and never lets an older snapshot overwrite a
// newer one.
type saver struct {
	mu      sync.Mutex
	store   *task.Store
	written int
}

func (s *saver) save(ctx context.Context, gen int, tasks []task.Task) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen <= s.written {
		return true, nil
	}
	if err := s.store.Save(ctx, tasks); err != nil {
		return false, err
	}
	s.written = gen
	return false, nil
}

// model is the bubbletea model of the task screen.
type model struct {
	ctx    context.Context
	store  *task.Store
	saver  *saver
	logger *log.Logger
	set    settings

	coll    task.Collection
	loaded  bool
	entries map[string]countdown.Entry

	saveGen  int
	savedGen int
	tickGen  int

	cursor   int
	focus    focusArea
	input    textinput.Model
	editor   *editor
	showHelp bool
	help     help.Model
	keys     keyMap
	styles   styles
	width    int
	height   int
	saveErr  error
	quitting bool
}

func newModel(ctx context.Context, store *task.Store, set settings) *model {
	if ctx == nil {
		ctx = context.Background()
	}
	in := textinput.New()
	in.Placeholder = "Add a task"
	in.CharLimit = 500
	in.Width = 40
	in.Prompt = "+ "

	return &model{
		ctx:     ctx,
		store:   store,
		saver:   &saver{store: store},
		logger:  set.logger,
		set:     set,
		coll:    task.NewCollection(nil, set.collectionOptions()...),
		entries: map[string]countdown.Entry{},
		input:   in,
		help:    help.New(),
		keys:    defaultKeyMap(),
		styles:  newStyles(set.dark),
	}
}

func (m *model) Init() tea.Cmd {
	return m.loadCmd()
}

func (m *model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{tasks: m.store.Load(m.ctx)}
	}
}

func (m *model) saveAfter(gen int) tea.Cmd {
	return tea.Tick(m.set.debounce, func(time.Time) tea.Msg {
		return saveDueMsg{gen: gen}
	})
}

func (m *model) saveCmd(gen int) tea.Cmd {
	tasks := m.coll.Tasks()
	return func() tea.Msg {
		skipped, err := m.saver.save(m.ctx, gen, tasks)
		return savedMsg{gen: gen, skipped: skipped, err: err}
	}
}

func (m *model) tickCmd(gen int) tea.Cmd {
	return tea.Tick(m.set.tick, func(t time.Time) tea.Msg {
		return tickMsg{gen: gen, at: t}
	})
}

// restartTick recomputes countdowns now and schedules a fresh tick
// generation.
func (m *model) restartTick() tea.Cmd {
	m.tickGen++
	m.recompute(m.set.now())
	return m.tickCmd(m.tickGen)
}

func (m *model) recompute(now time.Time) {
	m.entries = countdown.Compute(m.coll.Tasks(), now, m.set.urgent)
}

// commit installs a new collection. Task changes schedule a debounced save
// and restart the countdown tick; selection-only changes do neither.
func (m *model) commit(next task.Collection, changed bool) tea.Cmd {
	m.coll = next
	m.clampCursor()
	if !changed {
		return nil
	}
	m.saveGen++
	return tea.Batch(m.saveAfter(m.saveGen), m.restartTick())
}

// pending reports whether a mutation has not been written yet.
func (m *model) pending() bool {
	return m.saveGen > m.savedGen
}

// Flush writes the current snapshot if it has not been persisted.
func (m *model) Flush(ctx context.Context) error {
	if !m.pending() {
		return nil
	}
	skipped, err := m.saver.save(ctx, m.saveGen, m.coll.Tasks())
	if err != nil {
		return err
	}
	if !skipped {
		m.logger.Debug("flushed pending save", "gen", m.saveGen, "tasks", m.coll.Len())
	}
	m.savedGen = m.saveGen
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case loadedMsg:
		if m.loaded {
			return m, nil
		}
		m.loaded = true
		m.coll = task.NewCollection(msg.tasks, m.set.collectionOptions()...)
		m.clampCursor()
		m.logger.Info("tasks loaded", "count", m.coll.Len(), "key", m.store.Key())
		return m, m.restartTick()

	case saveDueMsg:
		if msg.gen != m.saveGen {
			return m, nil
		}
		return m, m.saveCmd(msg.gen)

	case savedMsg:
		if msg.err != nil {
			m.saveErr = msg.err
			m.logger.Error("save failed", "gen", msg.gen, "err", msg.err)
			return m, nil
		}
		if msg.gen > m.savedGen {
			m.savedGen = msg.gen
		}
		if msg.gen == m.saveGen {
			m.saveErr = nil
		}
		if !msg.skipped {
			m.logger.Debug("tasks saved", "gen", msg.gen)
		}
		return m, nil

	case tickMsg:
		if msg.gen != m.tickGen {
			return m, nil
		}
		m.recompute(msg.at)
		return m, m.tickCmd(msg.gen)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.focus == focusInput && m.editor == nil {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m.quit()
	}
	if !m.loaded {
		return m, nil
	}
	if m.editor != nil {
		return m.handleEditorKey(msg)
	}
	if key.Matches(msg, m.keys.Focus) {
		return m, m.toggleFocus()
	}
	if m.focus == focusInput {
		return m.handleInputKey(msg)
	}
	return m.handleListKey(msg)
}

func (m *model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

func (m *model) toggleFocus() tea.Cmd {
	if m.focus == focusInput {
		m.focus = focusList
		m.input.Blur()
		return nil
	}
	m.focus = focusInput
	return m.input.Focus()
}

func (m *model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Add):
		return m, m.addFromInput()
	case msg.Type == tea.KeyEsc:
		return m, m.toggleFocus()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// canAdd reports whether the add action is enabled.
func (m *model) canAdd() bool {
	return strings.TrimSpace(m.input.Value()) != ""
}

func (m *model) addFromInput() tea.Cmd {
	if !m.canAdd() {
		return nil
	}
	next, changed := m.coll.Add(m.input.Value())
	if !changed {
		m.logger.Debug("add rejected", "text", m.input.Value())
		return nil
	}
	m.input.SetValue("")
	m.cursor = 0
	return m.commit(next, true)
}

func (m *model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.coll.Len()-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		if m.coll.SelectionCount() > 0 {
			return m, m.commit(m.coll.ClearSelection(), false)
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if m.coll.SelectionCount() == 0 {
			return m, nil
		}
		next, changed := m.coll.RemoveSelected()
		return m, m.commit(next, changed)
	}

	id, ok := m.cursorID()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Tap):
		next, res := m.coll.Tap(id)
		switch res {
		case task.TapOpenEditor:
			m.openEditor(id)
		case task.TapToggled:
			return m, m.commit(next, false)
		}
	case key.Matches(msg, m.keys.LongPress):
		return m, m.commit(m.coll.LongPress(id), false)
	case key.Matches(msg, m.keys.Edit):
		m.openEditor(id)
	}
	return m, nil
}

func (m *model) cursorID() (string, bool) {
	if m.cursor < 0 || m.cursor >= m.coll.Len() {
		return "", false
	}
	return m.coll.At(m.cursor).ID, true
}

func (m *model) clampCursor() {
	if m.cursor >= m.coll.Len() {
		m.cursor = m.coll.Len() - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *model) openEditor(id string) {
	t, ok := m.coll.Get(id)
	if !ok {
		return
	}
	m.input.Blur()
	m.editor = newEditor(t, m.set.loc)
}

func (m *model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd, action := m.editor.update(msg, m.keys)
	switch action {
	case editorClose:
		m.closeEditor()
	case editorSave:
		return m, m.saveEditor()
	}
	return m, cmd
}

func (m *model) closeEditor() {
	m.editor = nil
	if m.focus == focusInput {
		m.input.Focus()
	}
}

func (m *model) saveEditor() tea.Cmd {
	e := m.editor
	e.syncForm()

	var next task.Collection
	var changed bool
	err := e.form.Save(m.set.loc, func(text string, deadline *time.Time) {
		next, changed = m.coll.Update(e.id, text, deadline)
	})
	var fe *editform.FieldError
	if errors.As(err, &fe) {
		e.alert = fe
		m.logger.Debug("edit rejected", "field", fe.Field, "form", e.form.String())
		return nil
	}
	m.closeEditor()
	if !changed {
		return nil
	}
	return m.commit(next, true)
}

func (m *model) View() string {
	if m.quitting {
		return ""
	}
	if m.editor != nil {
		body := m.editor.view(m.styles)
		footer := m.help.View(modalKeys{m.keys})
		screen := lipgloss.JoinVertical(lipgloss.Left, body, footer)
		if m.width > 0 && m.height > 0 {
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, screen)
		}
		return screen
	}

	var b strings.Builder
	b.WriteString(m.styles.title.Render(titleText))
	b.WriteString("\n\n")

	if !m.loaded {
		b.WriteString("Loading...\n")
		return b.String()
	}

	if n := m.coll.SelectionCount(); n > 0 {
		b.WriteString(m.styles.toolbar.Render(fmt.Sprintf("%d selected", n)))
		b.WriteString("   ")
		b.WriteString(m.styles.button.Render("[esc] Cancel Selection"))
		b.WriteString("   ")
		b.WriteString(m.styles.button.Render("[d] Delete Selected"))
		b.WriteString("\n\n")
	}

	m.writeList(&b)
	b.WriteString("\n")
	m.writeInput(&b)
	b.WriteString("\n")

	if m.saveErr != nil {
		b.WriteString(m.styles.status.Render("Not saved: " + m.saveErr.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

func (m *model) writeList(b *strings.Builder) {
	if m.coll.Len() == 0 {
		b.WriteString(m.styles.empty.Render(emptyText))
		b.WriteString("\n")
		return
	}
	for i, t := range m.coll.Tasks() {
		b.WriteString(m.renderRow(i, t))
		b.WriteString("\n")
	}
}

// rowLook is the text style a row is drawn with.
type rowLook int

const (
	lookPlain rowLook = iota
	lookSelected
	lookUrgent
)

// lookOf picks the row style. Urgency decides the text color even on a
// selected row.
func (m *model) lookOf(t task.Task) rowLook {
	if entry, ok := m.entries[t.ID]; ok && entry.Urgent {
		return lookUrgent
	}
	if m.coll.IsSelected(t.ID) {
		return lookSelected
	}
	return lookPlain
}

func (m *model) lookStyle(l rowLook) lipgloss.Style {
	switch l {
	case lookUrgent:
		return m.styles.urgent
	case lookSelected:
		return m.styles.selected
	}
	return m.styles.row
}

// selectionMarker stays visible whatever style the row uses.
func (m *model) selectionMarker(id string) string {
	if m.coll.IsSelected(id) {
		return "[x] "
	}
	return "[ ] "
}

// renderRow draws one task.
func (m *model) renderRow(i int, t task.Task) string {
	cursor := "  "
	if i == m.cursor && m.focus == focusList {
		cursor = "› "
	}
	style := m.lookStyle(m.lookOf(t))

	line := cursor + m.selectionMarker(t.ID) + style.Render(t.Text)
	if entry, ok := m.entries[t.ID]; ok {
		line += "\n      " + m.styles.deadline.Render("Deadline: ") + style.Render(entry.Text)
	}
	return line
}

// addStyle renders ADD dim while the input is blank.
func (m *model) addStyle() lipgloss.Style {
	if m.canAdd() {
		return m.styles.button
	}
	return m.styles.disabled
}

func (m *model) writeInput(b *strings.Builder) {
	b.WriteString(m.input.View())
	b.WriteString("  ")
	b.WriteString(m.addStyle().Render("ADD"))
	b.WriteString("\n")
}
