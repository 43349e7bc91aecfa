package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/zome-engine/ribosome"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	logStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputPayload
	stateShowResult
)

type interactiveModel struct {
	err      error
	ribosome *ribosome.Ribosome
	filename string
	zomeName string
	bytecode []byte
	funcs    []string
	input    textinput.Model
	result   string
	logLine  string
	selected int
	state    modelState
}

func newInteractiveModel(filename, zomeName string, opts []ribosome.Option) *interactiveModel {
	return &interactiveModel{
		filename: filename,
		zomeName: zomeName,
		ribosome: ribosome.New(opts...),
		state:    stateSelectFunc,
	}
}

type loadedMsg struct {
	err      error
	bytecode []byte
	funcs    []string
}

type callResultMsg struct {
	err     error
	result  string
	logLine string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadZome
}

// loadZome reads the file and lists exports that follow the one-word
// calling convention. A throwaway runtime compiles the module; actual
// calls build their own per-call runtime inside the ribosome.
func (m *interactiveModel) loadZome() tea.Msg {
	ctx := context.Background()

	data, err := os.ReadFile(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}

	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, data)
	if err != nil {
		return loadedMsg{err: err}
	}

	var funcs []string
	for name, def := range compiled.ExportedFunctions() {
		if isWordSignature(def) {
			funcs = append(funcs, name)
		}
	}
	sort.Strings(funcs)

	if len(funcs) == 0 {
		return loadedMsg{err: fmt.Errorf("no exports with the (i64) -> i64 calling convention")}
	}

	return loadedMsg{bytecode: data, funcs: funcs}
}

func isWordSignature(def api.FunctionDefinition) bool {
	return len(def.ParamTypes()) == 1 && def.ParamTypes()[0] == api.ValueTypeI64 &&
		len(def.ResultTypes()) == 1 && def.ResultTypes()[0] == api.ValueTypeI64
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputPayload {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.funcs)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				m.prepareInput()
				m.state = stateInputPayload

			case stateInputPayload:
				return m, m.callFunction

			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.logLine = ""
				m.err = nil
			}

		case "esc":
			switch m.state {
			case stateInputPayload:
				m.state = stateSelectFunc
			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.logLine = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.bytecode = msg.bytecode
		m.funcs = msg.funcs

	case callResultMsg:
		m.result = msg.result
		m.logLine = msg.logLine
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputPayload {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) prepareInput() {
	ti := textinput.New()
	ti.Placeholder = `{"key":"value"} or empty`
	ti.Prompt = "input: "
	ti.Width = 60
	ti.Focus()
	m.input = ti
}

// captureHandle keeps the call's diagnostic line for display.
type captureHandle struct {
	mu   sync.Mutex
	line string
}

func (h *captureHandle) Log(message string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.line = message
}

func (m *interactiveModel) callFunction() tea.Msg {
	ctx := context.Background()

	handle := &captureHandle{}
	outcome, err := m.ribosome.Execute(ctx, m.zomeName, handle, m.bytecode,
		ribosome.Call{Zome: m.zomeName, Function: m.funcs[m.selected]},
		[]byte(m.input.Value()))
	if err != nil {
		return callResultMsg{err: err, logLine: handle.line}
	}

	result := "null"
	if outcome.Raw != nil {
		result = string(outcome.Raw)
	}
	return callResultMsg{result: result, logLine: handle.line}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if len(m.funcs) == 0 {
		return "Loading zome..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Zome Runner"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		b.WriteString("Select a function to call:\n\n")
		for i, name := range m.funcs {
			cursor := "  "
			if i == m.selected {
				cursor = "> "
				b.WriteString(selectedStyle.Render(cursor + name))
			} else {
				b.WriteString(cursor + funcStyle.Render(name))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputPayload:
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(m.funcs[m.selected])))
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter call • esc back"))

	case stateShowResult:
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(m.funcs[m.selected])))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		if m.logLine != "" {
			b.WriteString("\n")
			b.WriteString(logStyle.Render(m.logLine))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func runInteractive(filename, zomeName string, opts []ribosome.Option) error {
	p := tea.NewProgram(newInteractiveModel(filename, zomeName, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
