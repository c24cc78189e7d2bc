package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/flash2do/internal/editform"
	"github.com/nibzard/flash2do/internal/kv"
	"github.com/nibzard/flash2do/internal/task"
)

var testNow = time.Date(2025, time.March, 14, 9, 0, 0, 0, time.UTC)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestModel(t *testing.T, mem *kv.MemoryKV) *model {
	t.Helper()
	set := defaultSettings()
	set.now = func() time.Time { return testNow }
	set.loc = time.UTC
	set.newID = seqIDs()
	return newModel(context.Background(), task.NewStore(mem, task.DefaultKey, nil), set)
}

func seed(t *testing.T, mem *kv.MemoryKV, tasks []task.Task) {
	t.Helper()
	data, err := task.Encode(tasks)
	if err != nil {
		t.Fatal(err)
	}
	if err := mem.Set(context.Background(), task.DefaultKey, string(data)); err != nil {
		t.Fatal(err)
	}
}

// load runs the initial load command and applies its result.
func load(t *testing.T, m *model) {
	t.Helper()
	msg := m.Init()()
	if _, ok := msg.(loadedMsg); !ok {
		t.Fatalf("Init produced %T, want loadedMsg", msg)
	}
	m.Update(msg)
}

func press(m *model, msgs ...tea.KeyMsg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyCtrlD = tea.KeyMsg{Type: tea.KeyCtrlD}
	keyCtrlS = tea.KeyMsg{Type: tea.KeyCtrlS}
)

func addTask(m *model, text string) {
	if m.focus != focusInput {
		press(m, keyTab)
	}
	m.input.SetValue(text)
	press(m, keyEnter)
}

func storedTasks(t *testing.T, mem *kv.MemoryKV) []task.Task {
	t.Helper()
	raw, ok, err := mem.Get(context.Background(), task.DefaultKey)
	if err != nil || !ok {
		t.Fatalf("stored value: ok=%v err=%v", ok, err)
	}
	tasks, err := task.Decode([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	return tasks
}

func taskTexts(tasks []task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Text
	}
	return out
}

func TestLoadDoesNotScheduleSave(t *testing.T) {
	mem := kv.NewMemoryKV()
	seed(t, mem, []task.Task{{ID: "a", Text: "milk"}})
	m := newTestModel(t, mem)
	load(t, m)

	if !m.loaded || m.coll.Len() != 1 {
		t.Fatalf("loaded=%v len=%d", m.loaded, m.coll.Len())
	}
	if m.saveGen != 0 || m.pending() {
		t.Errorf("load scheduled a save: saveGen=%d", m.saveGen)
	}
	if mem.Sets() != 1 {
		t.Errorf("Sets: got %d, want only the seed", mem.Sets())
	}
}

func TestKeysIgnoredBeforeLoad(t *testing.T) {
	m := newTestModel(t, kv.NewMemoryKV())
	press(m, keyTab)
	m.input.SetValue("early")
	press(m, keyEnter)
	if m.coll.Len() != 0 || m.saveGen != 0 {
		t.Errorf("mutation before load: len=%d saveGen=%d", m.coll.Len(), m.saveGen)
	}
	if !strings.Contains(m.View(), "Loading...") {
		t.Error("view should show loading state")
	}
}

func TestDebounceCollapsesSaves(t *testing.T) {
	mem := kv.NewMemoryKV()
	m := newTestModel(t, mem)
	load(t, m)

	addTask(m, "a")
	addTask(m, "b")
	addTask(m, "c")
	if m.saveGen != 3 {
		t.Fatalf("saveGen: got %d, want 3", m.saveGen)
	}

	for gen := 1; gen < 3; gen++ {
		if _, cmd := m.Update(saveDueMsg{gen: gen}); cmd != nil {
			t.Errorf("stale save %d produced a command", gen)
		}
	}
	_, cmd := m.Update(saveDueMsg{gen: 3})
	if cmd == nil {
		t.Fatal("latest save produced no command")
	}
	m.Update(cmd())

	if mem.Sets() != 1 {
		t.Errorf("Sets: got %d, want 1", mem.Sets())
	}
	got := taskTexts(storedTasks(t, mem))
	if strings.Join(got, ",") != "c,b,a" {
		t.Errorf("stored: got %v, want [c b a]", got)
	}
	if m.pending() {
		t.Error("save should no longer be pending")
	}
}

func TestAddRejectsBlankAndDuplicate(t *testing.T) {
	m := newTestModel(t, kv.NewMemoryKV())
	load(t, m)

	addTask(m, "   ")
	if m.coll.Len() != 0 || m.saveGen != 0 {
		t.Error("blank text should not be added")
	}
	if m.canAdd() {
		t.Error("add should be disabled for blank input")
	}

	addTask(m, "milk")
	if m.input.Value() != "" {
		t.Errorf("input not cleared after add: %q", m.input.Value())
	}
	addTask(m, "milk")
	if m.coll.Len() != 1 || m.saveGen != 1 {
		t.Errorf("duplicate added: len=%d saveGen=%d", m.coll.Len(), m.saveGen)
	}
	if m.input.Value() != "milk" {
		t.Errorf("rejected text should stay in the input, got %q", m.input.Value())
	}
}

func TestTypingInInputDoesNotQuit(t *testing.T) {
	m := newTestModel(t, kv.NewMemoryKV())
	load(t, m)
	press(m, keyTab, runes("q"))
	if m.quitting {
		t.Fatal("q in the input should be text")
	}
	if m.input.Value() != "q" {
		t.Errorf("input: got %q, want q", m.input.Value())
	}
	press(m, keyTab)
	if _, cmd := m.Update(runes("q")); cmd == nil || !m.quitting {
		t.Error("q on the list should quit")
	}
}

func TestTapDispatch(t *testing.T) {
	mem := kv.NewMemoryKV()
	seed(t, mem, []task.Task{{ID: "a", Text: "one"}, {ID: "b", Text: "two"}})

	t.Run("empty selection opens editor", func(t *testing.T) {
		m := newTestModel(t, mem)
		load(t, m)
		press(m, keyEnter)
		if m.editor == nil || m.editor.id != "a" {
			t.Fatalf("editor: %+v", m.editor)
		}
		press(m, keyEsc)
		if m.editor != nil {
			t.Error("esc should close the editor")
		}
	})

	t.Run("non-empty selection toggles", func(t *testing.T) {
		m := newTestModel(t, mem)
		load(t, m)
		press(m, keySpace, keyDown, keyEnter)
		if m.editor != nil {
			t.Fatal("tap with a selection must not open the editor")
		}
		if !m.coll.IsSelected("a") || !m.coll.IsSelected("b") {
			t.Errorf("selection: %v", m.coll.Selected())
		}
		press(m, keyEnter)
		if m.coll.IsSelected("b") {
			t.Error("second tap should deselect")
		}
		if m.saveGen != 0 {
			t.Error("selection changes should not save")
		}
	})

	t.Run("edit key opens editor despite selection", func(t *testing.T) {
		m := newTestModel(t, mem)
		load(t, m)
		press(m, keySpace, runes("e"))
		if m.editor == nil {
			t.Fatal("e should open the editor")
		}
	})
}

func TestCancelAndDeleteSelection(t *testing.T) {
	mem := kv.NewMemoryKV()
	seed(t, mem, []task.Task{{ID: "a", Text: "one"}, {ID: "b", Text: "two"}, {ID: "c", Text: "three"}})
	m := newTestModel(t, mem)
	load(t, m)

	press(m, runes("d"))
	if m.coll.Len() != 3 {
		t.Fatal("delete without selection should do nothing")
	}

	press(m, keySpace, keyEsc)
	if m.coll.SelectionCount() != 0 {
		t.Fatal("esc should clear the selection")
	}

	press(m, keySpace, keyDown, keySpace)
	if !strings.Contains(m.View(), "Delete Selected") {
		t.Error("toolbar missing while selection is active")
	}
	press(m, runes("d"))
	if got := strings.Join(taskTexts(m.coll.Tasks()), ","); got != "three" {
		t.Errorf("after delete: %s", got)
	}
	if m.coll.SelectionCount() != 0 {
		t.Error("selection should be empty after delete")
	}
	if m.saveGen != 1 {
		t.Errorf("saveGen: got %d, want 1", m.saveGen)
	}
	if m.cursor != 0 {
		t.Errorf("cursor should clamp, got %d", m.cursor)
	}
	if strings.Contains(m.View(), "Delete Selected") {
		t.Error("toolbar shown without selection")
	}
}

func openEditorWithDeadline(t *testing.T, m *model, values map[editform.Field]string) {
	t.Helper()
	press(m, runes("e"), keyCtrlD)
	if m.editor == nil || !m.editor.form.UseDeadline {
		t.Fatal("editor not in custom-deadline state")
	}
	for i, f := range editform.Fields {
		m.editor.fields[i].SetValue(values[f])
	}
}

func TestEditorRejectsInvalidMonth(t *testing.T) {
	mem := kv.NewMemoryKV()
	seed(t, mem, []task.Task{{ID: "a", Text: "dentist"}})
	m := newTestModel(t, mem)
	load(t, m)

	openEditorWithDeadline(t, m, map[editform.Field]string{
		editform.FieldYear: "2025", editform.FieldMonth: "13", editform.FieldDay: "1",
		editform.FieldHour: "10", editform.FieldMinute: "0",
	})
	press(m, keyCtrlS)

	if m.editor == nil || m.editor.alert == nil {
		t.Fatal("expected a blocking validation message")
	}
	if m.editor.alert.Field != editform.FieldMonth {
		t.Errorf("alert field: got %s", m.editor.alert.Field)
	}
	if !strings.Contains(m.View(), "Month must be between 1 and 12.") {
		t.Error("alert message not rendered")
	}
	if got, _ := m.coll.Get("a"); got.Deadline != nil || m.saveGen != 0 {
		t.Error("invalid edit was committed")
	}

	press(m, runes("x"))
	if m.editor.alert != nil {
		t.Error("any key should dismiss the alert")
	}
	if m.editor.fields[1].Value() != "13" {
		t.Error("form state should be kept after a rejected save")
	}
}

func TestEditorSavesDeadline(t *testing.T) {
	mem := kv.NewMemoryKV()
	seed(t, mem, []task.Task{{ID: "a", Text: "dentist"}})
	m := newTestModel(t, mem)
	load(t, m)

	openEditorWithDeadline(t, m, map[editform.Field]string{
		editform.FieldYear: "2025", editform.FieldMonth: "3", editform.FieldDay: "14",
		editform.FieldHour: "9", editform.FieldMinute: "30",
	})
	press(m, keyCtrlS)

	if m.editor != nil {
		t.Fatal("editor should close after save")
	}
	got, _ := m.coll.Get("a")
	want := time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)
	if got.Deadline == nil || !got.Deadline.Equal(want) {
		t.Fatalf("deadline: got %v, want %v", got.Deadline, want)
	}
	if m.saveGen != 1 {
		t.Errorf("saveGen: got %d, want 1", m.saveGen)
	}
	entry := m.entries["a"]
	if entry.Text != "0d 0h 30m 0s" || !entry.Urgent {
		t.Errorf("countdown entry: %+v", entry)
	}
	if !strings.Contains(m.View(), "Deadline: ") {
		t.Error("row should show its deadline")
	}
}

func TestEditorToggleOffClearsDeadline(t *testing.T) {
	d := testNow.Add(48 * time.Hour)
	mem := kv.NewMemoryKV()
	seed(t, mem, []task.Task{{ID: "a", Text: "trip", Deadline: &d}})
	m := newTestModel(t, mem)
	load(t, m)

	press(m, runes("e"))
	if !m.editor.form.UseDeadline || m.editor.fields[0].Value() != "2025" {
		t.Fatalf("editor not prefilled: %s", m.editor.form.String())
	}
	press(m, keyCtrlD)
	for i := range m.editor.fields {
		if v := m.editor.fields[i].Value(); v != "" {
			t.Errorf("field %d not cleared: %q", i, v)
		}
	}
	press(m, keyCtrlS)
	if got, _ := m.coll.Get("a"); got.Deadline != nil {
		t.Errorf("deadline should be removed, got %v", got.Deadline)
	}
	if _, ok := m.entries["a"]; ok {
		t.Error("countdown entry should be gone")
	}
}

func TestEditorFocusCycle(t *testing.T) {
	mem := kv.NewMemoryKV()
	seed(t, mem, []task.Task{{ID: "a", Text: "x"}})
	m := newTestModel(t, mem)
	load(t, m)
	press(m, runes("e"))

	if m.editor.current() != slotText {
		t.Fatalf("initial focus: %v", m.editor.current())
	}
	press(m, keyTab)
	if m.editor.current() != slotSwitch {
		t.Fatalf("after tab: %v", m.editor.current())
	}
	press(m, keySpace)
	if !m.editor.form.UseDeadline {
		t.Fatal("space on the switch should enable the deadline")
	}
	press(m, keyTab)
	if m.editor.current() != slotYear {
		t.Errorf("after enabling: %v", m.editor.current())
	}
	press(m, runes("2030"))
	if m.editor.fields[0].Value() != "2030" {
		t.Errorf("year input: %q", m.editor.fields[0].Value())
	}
}

func TestStaleTickDropped(t *testing.T) {
	d := testNow.Add(10 * time.Minute)
	mem := kv.NewMemoryKV()
	seed(t, mem, []task.Task{{ID: "a", Text: "soon", Deadline: &d}})
	m := newTestModel(t, mem)
	load(t, m)

	if e := m.entries["a"]; e.Text != "0d 0h 10m 0s" || !e.Urgent {
		t.Fatalf("initial entry: %+v", e)
	}

	if _, cmd := m.Update(tickMsg{gen: m.tickGen - 1, at: testNow.Add(time.Hour)}); cmd != nil {
		t.Error("stale tick should not reschedule")
	}
	if m.entries["a"].Text != "0d 0h 10m 0s" {
		t.Error("stale tick changed the countdown")
	}

	_, cmd := m.Update(tickMsg{gen: m.tickGen, at: testNow.Add(11 * time.Minute)})
	if cmd == nil {
		t.Error("current tick should reschedule")
	}
	if e := m.entries["a"]; e.Text != "Expired" || e.Urgent {
		t.Errorf("after deadline: %+v", e)
	}
}

func TestMutationRestartsTick(t *testing.T) {
	m := newTestModel(t, kv.NewMemoryKV())
	load(t, m)
	before := m.tickGen
	addTask(m, "x")
	if m.tickGen != before+1 {
		t.Errorf("tickGen: got %d, want %d", m.tickGen, before+1)
	}
}

func TestSaveFailureKeepsState(t *testing.T) {
	mem := kv.NewMemoryKV()
	m := newTestModel(t, mem)
	load(t, m)
	mem.SetErr = errors.New("disk full")

	addTask(m, "x")
	_, cmd := m.Update(saveDueMsg{gen: m.saveGen})
	m.Update(cmd())

	if m.saveErr == nil || !m.pending() {
		t.Fatal("failed save should stay pending")
	}
	if m.coll.Len() != 1 {
		t.Error("in-memory state lost")
	}
	if !strings.Contains(m.View(), "Not saved") {
		t.Error("save failure not shown")
	}

	mem.SetErr = nil
	addTask(m, "y")
	_, cmd = m.Update(saveDueMsg{gen: m.saveGen})
	m.Update(cmd())
	if m.saveErr != nil || m.pending() {
		t.Error("next mutation should retry and succeed")
	}
	if len(storedTasks(t, mem)) != 2 {
		t.Error("retry did not write both tasks")
	}
}

func TestFlushWritesPending(t *testing.T) {
	mem := kv.NewMemoryKV()
	m := newTestModel(t, mem)
	load(t, m)

	if err := m.Flush(context.Background()); err != nil || mem.Sets() != 0 {
		t.Fatalf("flush with nothing pending: err=%v sets=%d", err, mem.Sets())
	}

	addTask(m, "x")
	if err := m.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if mem.Sets() != 1 || m.pending() {
		t.Errorf("Sets=%d pending=%v", mem.Sets(), m.pending())
	}

	// The debounce firing afterwards must not write again.
	_, cmd := m.Update(saveDueMsg{gen: m.saveGen})
	msg := cmd().(savedMsg)
	if !msg.skipped || mem.Sets() != 1 {
		t.Errorf("late debounce wrote again: %+v sets=%d", msg, mem.Sets())
	}
}

func TestSaverSkipsOlderGeneration(t *testing.T) {
	mem := kv.NewMemoryKV()
	s := &saver{store: task.NewStore(mem, task.DefaultKey, nil)}
	ctx := context.Background()

	if skipped, err := s.save(ctx, 2, []task.Task{{ID: "b", Text: "new"}}); skipped || err != nil {
		t.Fatalf("gen 2: skipped=%v err=%v", skipped, err)
	}
	if skipped, _ := s.save(ctx, 1, []task.Task{{ID: "a", Text: "old"}}); !skipped {
		t.Error("older generation should be skipped")
	}
	if got := taskTexts(storedTasks(t, mem)); len(got) != 1 || got[0] != "new" {
		t.Errorf("stored: %v", got)
	}
}

func TestViewEmptyList(t *testing.T) {
	m := newTestModel(t, kv.NewMemoryKV())
	load(t, m)
	view := m.View()
	for _, want := range []string{titleText, emptyText, "ADD"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestRowStyles(t *testing.T) {
	soon := testNow.Add(30 * time.Minute)
	later := testNow.Add(3 * time.Hour)
	mem := kv.NewMemoryKV()
	seed(t, mem, []task.Task{
		{ID: "sel-urgent", Text: "selected and urgent", Deadline: &soon},
		{ID: "sel", Text: "selected only", Deadline: &later},
		{ID: "urgent", Text: "urgent only", Deadline: &soon},
		{ID: "plain", Text: "plain"},
	})
	m := newTestModel(t, mem)
	load(t, m)
	m.commit(m.coll.ToggleSelect("sel-urgent").ToggleSelect("sel"), false)

	tests := []struct {
		id     string
		look   rowLook
		marker string
	}{
		{id: "sel-urgent", look: lookUrgent, marker: "[x] "},
		{id: "sel", look: lookSelected, marker: "[x] "},
		{id: "urgent", look: lookUrgent, marker: "[ ] "},
		{id: "plain", look: lookPlain, marker: "[ ] "},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			tk, ok := m.coll.Get(tt.id)
			if !ok {
				t.Fatalf("task %s not loaded", tt.id)
			}
			if got := m.lookOf(tk); got != tt.look {
				t.Errorf("look = %d, want %d", got, tt.look)
			}
			if got := m.selectionMarker(tt.id); got != tt.marker {
				t.Errorf("marker = %q, want %q", got, tt.marker)
			}
			row := m.renderRow(1, tk)
			if !strings.Contains(row, tt.marker+m.lookStyle(tt.look).Render(tk.Text)) {
				t.Errorf("row %q does not show marker %q before the text", row, tt.marker)
			}
		})
	}

	if got, want := m.lookStyle(lookUrgent).GetForeground(), m.styles.urgent.GetForeground(); got != want {
		t.Errorf("urgent rows use %v, want the urgent color %v", got, want)
	}
	if m.lookStyle(lookSelected).GetForeground() == m.lookStyle(lookUrgent).GetForeground() {
		t.Error("selected and urgent rows should differ in color")
	}
	if !strings.Contains(m.View(), "[x] ") {
		t.Error("view lost the selection marker")
	}
}

func TestAddButtonDimWhenInputBlank(t *testing.T) {
	m := newTestModel(t, kv.NewMemoryKV())
	load(t, m)

	if !m.addStyle().GetFaint() {
		t.Error("ADD should be dim with an empty input")
	}
	m.input.SetValue("   ")
	if !m.addStyle().GetFaint() {
		t.Error("ADD should be dim with a blank input")
	}
	m.input.SetValue("milk")
	if m.addStyle().GetFaint() {
		t.Error("ADD should be enabled once text is typed")
	}
}

func TestQuitClearsView(t *testing.T) {
	m := newTestModel(t, kv.NewMemoryKV())
	load(t, m)
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC}); cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
	if m.View() != "" {
		t.Error("view should be empty after quit")
	}
}
