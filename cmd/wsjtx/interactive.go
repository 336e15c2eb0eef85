package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	wsjtxbridge "github.com/signalhouse/wsjtx-bridge"
	"github.com/signalhouse/wsjtx-bridge/audio"
	"github.com/signalhouse/wsjtx-bridge/modes"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	opStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#98FB98"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err      error
	cfg      *config
	lib      *wsjtxbridge.Lib
	result   string
	ops      []opInfo
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
}

type opInfo struct {
	name   string
	desc   string
	params []paramInfo
}

type paramInfo struct {
	name        string
	placeholder string
}

type modelState int

const (
	stateSelectOp modelState = iota
	stateInputArgs
	stateShowResult
)

func newInteractiveModel(cfg *config) *interactiveModel {
	return &interactiveModel{
		cfg:   cfg,
		state: stateSelectOp,
		ops: []opInfo{
			{
				name: "encode",
				desc: "synthesize a message into audio",
				params: []paramInfo{
					{name: "mode", placeholder: "FT8"},
					{name: "message", placeholder: "CQ TEST K1ABC FN42"},
					{name: "frequency", placeholder: "1500"},
					{name: "output", placeholder: "out.wav (optional)"},
				},
			},
			{
				name: "decode",
				desc: "decode messages from a WAV file",
				params: []paramInfo{
					{name: "mode", placeholder: "FT8"},
					{name: "file", placeholder: "capture.wav"},
					{name: "frequency", placeholder: "1500"},
				},
			},
			{
				name: "modes",
				desc: "list supported modes",
			},
		},
	}
}

type loadedMsg struct {
	err error
	lib *wsjtxbridge.Lib
}

type opResultMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.openEngine
}

func (m *interactiveModel) openEngine() tea.Msg {
	lib, err := wsjtxbridge.Open(wsjtxbridge.Config{
		LibraryPath: m.cfg.LibraryPath,
		Threads:     m.cfg.Threads,
		Logger:      zap.NewNop(),
	})
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{lib: lib}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state == stateInputArgs && msg.String() == "q" {
				break
			}
			if m.lib != nil {
				m.lib.Close()
			}
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectOp && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectOp && m.selected < len(m.ops)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectOp:
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.runOp
				}
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.runOp

			case stateShowResult:
				m.state = stateSelectOp
				m.result = ""
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectOp
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectOp
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.lib = msg.lib

	case opResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) prepareInputs() {
	op := m.ops[m.selected]
	m.inputs = make([]textinput.Model, len(op.params))
	for i, p := range op.params {
		ti := textinput.New()
		ti.Placeholder = p.placeholder
		ti.Prompt = p.name + ": "
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) runOp() tea.Msg {
	if m.lib == nil {
		return opResultMsg{err: fmt.Errorf("engine not loaded")}
	}

	args := make([]string, len(m.inputs))
	for i, input := range m.inputs {
		args[i] = strings.TrimSpace(input.Value())
		if args[i] == "" {
			args[i] = m.ops[m.selected].params[i].placeholder
		}
	}

	switch m.ops[m.selected].name {
	case "encode":
		return m.runEncode(args[0], args[1], args[2], args[3])
	case "decode":
		return m.runDecode(args[0], args[1], args[2])
	case "modes":
		return opResultMsg{result: modeTable()}
	default:
		return opResultMsg{err: fmt.Errorf("unknown operation")}
	}
}

func (m *interactiveModel) runEncode(modeName, text, freqStr, output string) tea.Msg {
	mode, ok := modes.Parse(modeName)
	if !ok {
		return opResultMsg{err: fmt.Errorf("unknown mode %q", modeName)}
	}
	freq, err := strconv.Atoi(freqStr)
	if err != nil {
		return opResultMsg{err: fmt.Errorf("bad frequency %q", freqStr)}
	}

	ch, err := m.lib.Encode(mode, text, freq)
	if err != nil {
		return opResultMsg{err: err}
	}
	res := <-ch
	if res.Err != nil {
		return opResultMsg{err: res.Err}
	}
	if !res.Status.OK() {
		return opResultMsg{err: fmt.Errorf("encode failed: %v", res.Status)}
	}

	rate := m.lib.SampleRate(mode)
	out := fmt.Sprintf("%d samples (%.1f s at %d Hz)",
		len(res.Samples), float64(len(res.Samples))/float64(rate), rate)

	if strings.HasSuffix(output, ".wav") {
		conv := <-m.lib.Convert(audio.FromFloat32(res.Samples), audio.FormatInt16)
		if conv.Err != nil {
			return opResultMsg{err: conv.Err}
		}
		if err := writeWAV(output, conv.Buffer.Int16, rate); err != nil {
			return opResultMsg{err: err}
		}
		out += "\nwrote " + output
	}
	return opResultMsg{result: out}
}

func (m *interactiveModel) runDecode(modeName, path, freqStr string) tea.Msg {
	mode, ok := modes.Parse(modeName)
	if !ok {
		return opResultMsg{err: fmt.Errorf("unknown mode %q", modeName)}
	}
	freq, err := strconv.Atoi(freqStr)
	if err != nil {
		return opResultMsg{err: fmt.Errorf("bad frequency %q", freqStr)}
	}

	samples, _, err := readWAV(path)
	if err != nil {
		return opResultMsg{err: err}
	}

	ch, err := m.lib.Decode(audio.FromInt16(samples), mode, freq, m.cfg.Threads)
	if err != nil {
		return opResultMsg{err: err}
	}
	res := <-ch
	if res.Err != nil {
		return opResultMsg{err: res.Err}
	}
	if !res.Status.OK() {
		return opResultMsg{err: fmt.Errorf("decode failed: %v", res.Status)}
	}

	msgs := m.lib.PullMessages()
	if len(msgs) == 0 {
		return opResultMsg{result: "no messages found"}
	}
	var b strings.Builder
	for _, msg := range msgs {
		fmt.Fprintf(&b, "%02d%02d%02d %3d %4.1f %5d ~ %s\n",
			msg.Hour, msg.Minute, msg.Second, msg.SNR, msg.DeltaTime, msg.DeltaFrequency, msg.Text)
	}
	return opResultMsg{result: strings.TrimSuffix(b.String(), "\n")}
}

func modeTable() string {
	var b strings.Builder
	for _, m := range modes.All() {
		var caps []string
		if modes.EncodingSupported(m) {
			caps = append(caps, "encode")
		}
		if modes.DecodingSupported(m) {
			caps = append(caps, "decode")
		}
		fmt.Fprintf(&b, "%-6s %6d Hz  %6.1f s  %s\n",
			m, modes.SampleRate(m), modes.Duration(m), strings.Join(caps, "+"))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.lib == nil {
		return "Loading engine..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("WSJT-X Bridge"))
	if m.lib.SupportsWSPR() {
		b.WriteString(" ")
		b.WriteString(hintStyle.Render("[deep WSPR]"))
	}
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectOp:
		b.WriteString("Select an operation:\n\n")
		for i, op := range m.ops {
			line := opStyle.Render(op.name) + "  " + hintStyle.Render(op.desc)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + op.name))
				b.WriteString("  " + hintStyle.Render(op.desc))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter run • q quit"))

	case stateInputArgs:
		op := m.ops[m.selected]
		b.WriteString(fmt.Sprintf("Running %s\n\n", opStyle.Render(op.name)))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter run • esc back"))

	case stateShowResult:
		op := m.ops[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", opStyle.Render(op.name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func runInteractive(cfg *config) error {
	p := tea.NewProgram(newInteractiveModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
