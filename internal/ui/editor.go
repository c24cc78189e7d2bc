package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/flash2do/internal/editform"
	"github.com/nibzard/flash2do/internal/task"
)

// slot is one focusable element of the editor.
type slot int

const (
	slotText slot = iota
	slotSwitch
	slotYear
	slotMonth
	slotDay
	slotHour
	slotMinute
	slotSave
	slotCancel
)

type editorAction int

const (
	editorStay editorAction = iota
	editorSave
	editorClose
)

var fieldPlaceholders = map[editform.Field]string{
	editform.FieldYear:   "YYYY",
	editform.FieldMonth:  "MM",
	editform.FieldDay:    "DD",
	editform.FieldHour:   "HH",
	editform.FieldMinute: "mm",
}

// editor is the modal for one task. The textinputs hold the live values;
// syncForm copies them into form before toggling or saving.
type editor struct {
	id     string
	form   editform.Form
	text   textinput.Model
	fields []textinput.Model
	focus  int
	alert  *editform.FieldError
}

func newEditor(t task.Task, loc *time.Location) *editor {
	e := &editor{
		id:   t.ID,
		form: editform.FromTask(t, loc),
	}

	e.text = textinput.New()
	e.text.Placeholder = "Task"
	e.text.CharLimit = 500
	e.text.Width = 40
	e.text.SetValue(e.form.Text)

	e.fields = make([]textinput.Model, len(editform.Fields))
	for i, f := range editform.Fields {
		in := textinput.New()
		in.Placeholder = fieldPlaceholders[f]
		in.CharLimit = 2
		in.Width = 3
		if f == editform.FieldYear {
			in.CharLimit = 4
			in.Width = 5
		}
		in.SetValue(e.form.Value(f))
		e.fields[i] = in
	}

	e.applyFocus()
	return e
}

func (e *editor) slots() []slot {
	s := []slot{slotText, slotSwitch}
	if e.form.UseDeadline {
		s = append(s, slotYear, slotMonth, slotDay, slotHour, slotMinute)
	}
	return append(s, slotSave, slotCancel)
}

func (e *editor) current() slot {
	s := e.slots()
	if e.focus < 0 || e.focus >= len(s) {
		e.focus = 0
	}
	return s[e.focus]
}

func (e *editor) move(delta int) {
	n := len(e.slots())
	e.focus = ((e.focus+delta)%n + n) % n
	e.applyFocus()
}

func (e *editor) applyFocus() {
	cur := e.current()
	e.text.Blur()
	for i := range e.fields {
		e.fields[i].Blur()
	}
	switch {
	case cur == slotText:
		e.text.Focus()
	case cur >= slotYear && cur <= slotMinute:
		e.fields[cur-slotYear].Focus()
	}
}

// syncForm copies the input values into the form.
func (e *editor) syncForm() {
	e.form.Text = e.text.Value()
	for i, f := range editform.Fields {
		e.form.SetValue(f, e.fields[i].Value())
	}
}

func (e *editor) toggleDeadline() {
	e.syncForm()
	e.form.SetDeadlineEnabled(!e.form.UseDeadline)
	if !e.form.UseDeadline {
		for i := range e.fields {
			e.fields[i].SetValue("")
		}
	}
	// The switch sits at the same index in both layouts.
	e.focus = 1
	e.applyFocus()
}

func (e *editor) update(msg tea.KeyMsg, keys keyMap) (tea.Cmd, editorAction) {
	// A validation message blocks everything until dismissed.
	if e.alert != nil {
		e.alert = nil
		return nil, editorStay
	}

	switch {
	case key.Matches(msg, keys.ModalCancel):
		return nil, editorClose
	case key.Matches(msg, keys.Save):
		return nil, editorSave
	case key.Matches(msg, keys.Deadline):
		e.toggleDeadline()
		return nil, editorStay
	case key.Matches(msg, keys.Next):
		e.move(1)
		return nil, editorStay
	case key.Matches(msg, keys.Prev):
		e.move(-1)
		return nil, editorStay
	}

	cur := e.current()
	if msg.Type == tea.KeyEnter {
		switch cur {
		case slotSave:
			return nil, editorSave
		case slotCancel:
			return nil, editorClose
		case slotSwitch:
			e.toggleDeadline()
		default:
			e.move(1)
		}
		return nil, editorStay
	}
	if cur == slotSwitch && key.Matches(msg, keys.LongPress) {
		e.toggleDeadline()
		return nil, editorStay
	}

	var cmd tea.Cmd
	switch {
	case cur == slotText:
		e.text, cmd = e.text.Update(msg)
	case cur >= slotYear && cur <= slotMinute:
		i := cur - slotYear
		e.fields[i], cmd = e.fields[i].Update(msg)
	}
	return cmd, editorStay
}

func (e *editor) view(st styles) string {
	var b strings.Builder
	cur := e.current()

	b.WriteString(st.title.Render("Edit Task"))
	b.WriteString("\n\n")

	b.WriteString(e.focusLabel(st, cur == slotText, "Task"))
	b.WriteString("\n")
	b.WriteString(e.text.View())
	b.WriteString("\n\n")

	mark := "( ) No deadline   (•) Custom deadline"
	if !e.form.UseDeadline {
		mark = "(•) No deadline   ( ) Custom deadline"
	}
	b.WriteString(e.focusLabel(st, cur == slotSwitch, "Deadline"))
	b.WriteString("\n")
	b.WriteString(mark)
	b.WriteString("\n")

	if e.form.UseDeadline {
		b.WriteString("\n")
		labels := []string{"Year", "Month", "Day", "Hour", "Minute"}
		parts := make([]string, len(e.fields))
		for i := range e.fields {
			parts[i] = e.focusLabel(st, cur == slotYear+slot(i), labels[i]) + " " + e.fields[i].View()
		}
		b.WriteString(strings.Join(parts[:3], "  "))
		b.WriteString("\n")
		b.WriteString(strings.Join(parts[3:], "  "))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(e.buttonView(st, cur == slotSave, "Save"))
	b.WriteString("   ")
	b.WriteString(e.buttonView(st, cur == slotCancel, "Cancel"))

	if e.alert != nil {
		b.WriteString("\n\n")
		b.WriteString(st.alert.Render(e.alert.Title))
		b.WriteString("\n")
		b.WriteString(e.alert.Message)
		b.WriteString("\n")
		b.WriteString(st.label.Render("press any key"))
	}

	return st.modal.Render(b.String())
}

func (e *editor) focusLabel(st styles, focused bool, label string) string {
	if focused {
		return st.focused.Render("› " + label)
	}
	return st.label.Render("  " + label)
}

func (e *editor) buttonView(st styles, focused bool, label string) string {
	if focused {
		return st.focused.Render("[ " + label + " ]")
	}
	return st.button.Render("  " + label + "  ")
}
