package tuicmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/glosshq/gloss/pkg/bootstrap"
	"github.com/glosshq/gloss/pkg/chat"
)

func init() {
	// Force TrueColor profile to fix lipgloss color detection issue
	// See: https://github.com/charmbracelet/lipgloss/issues/439
	renderer := lipgloss.NewRenderer(os.Stdout, termenv.WithProfile(termenv.TrueColor))
	renderer.SetColorProfile(termenv.TrueColor)
	lipgloss.SetDefaultRenderer(renderer)
}

type tuiMode int

const (
	modeStandard tuiMode = iota
	modeResearch
)

func (m tuiMode) track() chat.Track {
	if m == modeResearch {
		return chat.TrackResearch
	}
	return chat.TrackStandard
}

func (m tuiMode) String() string {
	if m == modeResearch {
		return "research"
	}
	return "standard"
}

// Rows outside the transcript: header, two rules, input, notice, help.
const chromeRows = 6

var (
	tuiTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	tuiMutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	tuiAccentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("215"))
	tuiDividerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	tuiUserStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("111"))
	tuiAsstStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	tuiStatusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	tuiErrorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	tuiPromptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	tuiResearchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
)

type tuiKeyMap struct {
	Send   key.Binding
	Mode   key.Binding
	Deeper key.Binding
	Clear  key.Binding
	Scroll key.Binding
	Quit   key.Binding
}

func (k tuiKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Mode, k.Deeper, k.Clear, k.Scroll, k.Quit}
}

func (k tuiKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Send, k.Mode, k.Deeper}, {k.Clear, k.Scroll, k.Quit}}
}

func defaultKeyMap() tuiKeyMap {
	return tuiKeyMap{
		Send:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Mode:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "mode")),
		Deeper: key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "deeper")),
		Clear:  key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
		Scroll: key.NewBinding(key.WithKeys("up", "down", "pgup", "pgdown"), key.WithHelp("↑/↓", "scroll")),
		Quit:   key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
}

// transcriptMsg carries a full track snapshot from a store observer.
type transcriptMsg struct {
	track chat.Track
	msgs  []chat.Message
}

type quotaMsg struct {
	remaining int
}

type askDoneMsg struct {
	err error
}

type researchDoneMsg struct {
	err error
}

type deeperDoneMsg struct {
	err error
}

var errNoDeeperSession = errors.New("deeper analysis needs a completed research session and a stored login (gloss auth login)")

type tuiModel struct {
	app     *bootstrap.App
	backend string

	mode      tuiMode
	busy      bool
	busyLabel string
	errText   string
	remaining int
	scroll    int

	standard []chat.Message
	research []chat.Message

	input   textinput.Model
	spinner spinner.Model
	keys    tuiKeyMap
	help    help.Model

	width  int
	height int
}

func newTUIModel(app *bootstrap.App, backend string) tuiModel {
	input := textinput.New()
	input.Prompt = "you> "
	input.PromptStyle = tuiPromptStyle
	input.Placeholder = "Ask about the article"
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = tuiAccentStyle

	return tuiModel{
		app:       app,
		backend:   backend,
		remaining: -1,
		standard:  app.Store.Messages(chat.TrackStandard),
		research:  app.Store.Messages(chat.TrackResearch),
		input:     input,
		spinner:   spin,
		keys:      defaultKeyMap(),
		help:      help.New(),
	}
}

func (m tuiModel) Init() bubbletea.Cmd {
	return textinput.Blink
}

func (m tuiModel) Update(msg bubbletea.Msg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg := msg.(type) {
	case bubbletea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-20, 20)
		return m, nil

	case transcriptMsg:
		if msg.track == chat.TrackResearch {
			m.research = msg.msgs
		} else {
			m.standard = msg.msgs
		}
		m.scroll = 0
		return m, nil

	case quotaMsg:
		m.remaining = msg.remaining
		return m, nil

	case askDoneMsg:
		return m.turnFinished(msg.err), nil

	case researchDoneMsg:
		return m.turnFinished(msg.err), nil

	case deeperDoneMsg:
		return m.turnFinished(msg.err), nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd bubbletea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case bubbletea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd bubbletea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m tuiModel) View() string {
	width, transcriptHeight := m.frameSize()

	headerLeft := tuiTitleStyle.Render("gloss")
	headerRight := tuiMutedStyle.Render(m.headerStatus())
	header := renderHeaderLine(width, headerLeft, headerRight)

	lines := make([]string, 0, transcriptHeight+chromeRows)
	lines = append(lines, header, renderRule(width))
	lines = append(lines, m.viewTranscript(width, transcriptHeight)...)
	lines = append(lines, renderRule(width), m.viewInput(), m.viewNotice(width), m.viewFooter())

	return strings.Join(lines, "\n")
}

func (m tuiModel) handleKey(msg bubbletea.KeyMsg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, bubbletea.Quit

	case "enter":
		return m.send()

	case "tab":
		if m.mode == modeResearch {
			return m.setMode(modeStandard), nil
		}
		return m.setMode(modeResearch), nil

	case "ctrl+g":
		return m.goDeeper()

	case "ctrl+l":
		if m.busy {
			return m, nil
		}
		m.errText = ""
		m.scroll = 0
		return m, clearCmd(m.app, m.mode.track())

	case "up":
		return m.scrollBy(1), nil

	case "down":
		return m.scrollBy(-1), nil

	case "pgup":
		_, height := m.frameSize()
		return m.scrollBy(max(height/2, 1)), nil

	case "pgdown":
		_, height := m.frameSize()
		return m.scrollBy(-max(height/2, 1)), nil
	}

	var cmd bubbletea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m tuiModel) send() (bubbletea.Model, bubbletea.Cmd) {
	if m.busy {
		return m, nil
	}

	question := strings.TrimSpace(m.input.Value())
	if question == "" {
		return m, nil
	}

	m.input.SetValue("")
	m.busy = true
	m.errText = ""
	m.scroll = 0

	if m.mode == modeResearch {
		m.busyLabel = "Streaming the research answer..."
		return m, bubbletea.Batch(m.spinner.Tick, researchCmd(m.app, question))
	}

	m.busyLabel = "Waiting for the answer..."
	return m, bubbletea.Batch(m.spinner.Tick, askCmd(m.app, question))
}

func (m tuiModel) setMode(mode tuiMode) tuiModel {
	m.mode = mode
	if mode == modeResearch {
		m.input.Prompt = "you(research)> "
		m.input.PromptStyle = tuiResearchStyle
	} else {
		m.input.Prompt = "you> "
		m.input.PromptStyle = tuiPromptStyle
	}
	m.scroll = 0
	return m
}

func (m tuiModel) goDeeper() (bubbletea.Model, bubbletea.Cmd) {
	if m.busy {
		return m, nil
	}

	index := lastAnswerIndex(m.research)
	if index < 0 {
		m.errText = "no research answer to expand yet; tab into research mode and ask first"
		return m, nil
	}

	m = m.setMode(modeResearch)
	m.busy = true
	m.busyLabel = "Requesting deeper analysis..."
	m.errText = ""
	return m, bubbletea.Batch(m.spinner.Tick, deeperCmd(m.app, index))
}

func (m tuiModel) turnFinished(err error) tuiModel {
	m.busy = false
	m.busyLabel = ""
	m.errText = ""
	if err != nil {
		m.errText = err.Error()
	}
	return m
}

func (m tuiModel) scrollBy(delta int) tuiModel {
	width, height := m.frameSize()
	maxScroll := max(len(m.transcriptLines(width))-height, 0)
	m.scroll = min(max(m.scroll+delta, 0), maxScroll)
	return m
}

func (m tuiModel) frameSize() (int, int) {
	width := m.width
	if width <= 0 {
		width = 80
	}
	height := m.height
	if height <= 0 {
		height = 24
	}
	return width, max(height-chromeRows, 3)
}

func (m tuiModel) messages() []chat.Message {
	if m.mode == modeResearch {
		return m.research
	}
	return m.standard
}

func (m tuiModel) headerStatus() string {
	status := fmt.Sprintf("%s · %s · %d messages", m.backend, m.mode, len(m.messages()))
	if m.remaining >= 0 {
		status += fmt.Sprintf(" · %d answers left", m.remaining)
	}
	return status
}

func (m tuiModel) viewTranscript(width, height int) []string {
	lines := m.transcriptLines(width)
	if len(lines) == 0 {
		hint := tuiMutedStyle.Render("No messages yet. Type a question below and press enter.")
		return padLines([]string{hint}, width, height)
	}

	// The window follows the tail; scroll counts lines back up from it.
	maxScroll := max(len(lines)-height, 0)
	scroll := min(m.scroll, maxScroll)
	start := max(len(lines)-height-scroll, 0)
	return padLines(lines[start:], width, height)
}

func (m tuiModel) transcriptLines(width int) []string {
	msgs := m.messages()
	lines := make([]string, 0, len(msgs)*4)
	for i := range msgs {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, m.renderMessage(msgs[i], width)...)
	}
	return lines
}

func (m tuiModel) renderMessage(msg chat.Message, width int) []string {
	bodyWidth := max(width-4, 20)

	stamp := tuiMutedStyle.Render(msg.Timestamp.Format("15:04:05"))
	lines := []string{roleLabel(msg.Role) + "  " + stamp}

	if msg.IsStreaming {
		for _, point := range msg.Outline {
			lines = append(lines, "  "+tuiAccentStyle.Render("·")+" "+point)
		}
		if partial := strings.TrimSpace(msg.Content); partial != "" {
			for _, line := range wrapText(partial, bodyWidth) {
				lines = append(lines, "  "+line)
			}
		}
		status := msg.StreamingStatus
		if status == "" {
			status = "Working..."
		}
		lines = append(lines, "  "+m.spinner.View()+" "+tuiStatusStyle.Render(status))
		return lines
	}

	for _, line := range wrapText(strings.TrimSpace(msg.Content), bodyWidth) {
		lines = append(lines, "  "+line)
	}

	for _, point := range msg.Outline {
		lines = append(lines, "  "+tuiAccentStyle.Render("·")+" "+point)
	}

	if msg.IsLoadingDeeper {
		lines = append(lines, "", "  "+m.spinner.View()+" "+tuiStatusStyle.Render("Preparing detailed response..."))
	} else if msg.DeeperAnalysis != "" {
		lines = append(lines, "", "  "+tuiAccentStyle.Render("deeper analysis"))
		for _, line := range wrapText(strings.TrimSpace(msg.DeeperAnalysis), bodyWidth) {
			lines = append(lines, "  "+line)
		}
	}

	if meta := answerMeta(msg); meta != "" {
		lines = append(lines, "  "+tuiMutedStyle.Render(meta))
	}

	return lines
}

func (m tuiModel) viewInput() string {
	if m.busy {
		return "  " + m.spinner.View() + " " + tuiStatusStyle.Render(m.busyLabel)
	}
	return m.input.View()
}

func (m tuiModel) viewNotice(width int) string {
	if m.errText != "" {
		return tuiErrorStyle.Render("✗ " + m.errText)
	}
	if m.mode == modeResearch {
		if suggestion := m.deeperHint(); suggestion != "" {
			return tuiMutedStyle.Render(truncateText("ctrl+g goes deeper: "+suggestion, max(width, 24)))
		}
	}
	return ""
}

// deeperHint surfaces the backend's suggestion for the latest research
// answer, until a deeper analysis lands on it.
func (m tuiModel) deeperHint() string {
	for i := len(m.research) - 1; i >= 0; i-- {
		msg := m.research[i]
		if msg.Role != chat.RoleAssistant || msg.IsStreaming {
			continue
		}
		if msg.CanGoDeeper && msg.DeeperSuggestion != "" && msg.DeeperAnalysis == "" {
			return msg.DeeperSuggestion
		}
		return ""
	}
	return ""
}

func (m tuiModel) viewFooter() string {
	return tuiMutedStyle.Render(m.help.View(m.keys))
}

func askCmd(app *bootstrap.App, question string) bubbletea.Cmd {
	return func() bubbletea.Msg {
		_, err := app.Client.Ask(context.Background(), question)
		return askDoneMsg{err: err}
	}
}

func researchCmd(app *bootstrap.App, question string) bubbletea.Cmd {
	return func() bubbletea.Msg {
		turn, err := app.Client.Research(context.Background(), question)
		if err != nil {
			return researchDoneMsg{err: err}
		}
		return researchDoneMsg{err: turn.Wait(context.Background())}
	}
}

func deeperCmd(app *bootstrap.App, index int) bubbletea.Cmd {
	return func() bubbletea.Msg {
		turn, err := app.Client.Deeper(context.Background(), chat.TrackResearch, index)
		if err != nil {
			return deeperDoneMsg{err: err}
		}
		if turn == nil {
			return deeperDoneMsg{err: errNoDeeperSession}
		}
		return deeperDoneMsg{err: turn.Wait(context.Background())}
	}
}

func clearCmd(app *bootstrap.App, track chat.Track) bubbletea.Cmd {
	return func() bubbletea.Msg {
		app.Store.Clear(track)
		return nil
	}
}

// lastAnswerIndex finds the most recent settled assistant message.
func lastAnswerIndex(msgs []chat.Message) int {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == chat.RoleAssistant && !msgs[i].IsStreaming {
			return i
		}
	}
	return -1
}

func roleLabel(role string) string {
	switch role {
	case chat.RoleAssistant:
		return tuiAsstStyle.Render("● gloss")
	case chat.RoleUser:
		return tuiUserStyle.Render("○ you")
	default:
		return role
	}
}

func answerMeta(msg chat.Message) string {
	parts := make([]string, 0, 4)
	if msg.Model != "" {
		parts = append(parts, msg.Model)
	}
	if msg.Route != "" {
		parts = append(parts, "route "+msg.Route)
	}
	if msg.Confidence != nil {
		parts = append(parts, fmt.Sprintf("%.0f%% confidence", *msg.Confidence))
	}
	if len(msg.Sources) > 0 {
		parts = append(parts, fmt.Sprintf("%d sources", len(msg.Sources)))
	}
	return strings.Join(parts, " · ")
}

func renderHeaderLine(width int, left, right string) string {
	lineWidth := width
	if lineWidth <= 0 {
		lineWidth = 80
	}
	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(right)
	if leftWidth+rightWidth+1 >= lineWidth {
		return strings.TrimSpace(left + " " + right)
	}
	spacing := lineWidth - leftWidth - rightWidth
	return left + strings.Repeat(" ", spacing) + right
}

func renderRule(width int) string {
	lineWidth := width
	if lineWidth <= 0 {
		lineWidth = 80
	}
	return tuiDividerStyle.Render(strings.Repeat("─", lineWidth))
}

func truncateText(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	if limit <= 3 {
		return value[:limit]
	}
	return value[:limit-3] + "..."
}

func padLines(lines []string, width, height int) []string {
	if height <= 0 {
		return []string{}
	}
	if width <= 0 {
		width = 1
	}
	result := make([]string, 0, height)
	for _, line := range lines {
		result = append(result, padRight(line, width))
		if len(result) >= height {
			return result[:height]
		}
	}
	for len(result) < height {
		result = append(result, strings.Repeat(" ", width))
	}
	return result
}

func padRight(value string, width int) string {
	lineWidth := lipgloss.Width(value)
	if lineWidth >= width {
		return value
	}
	return value + strings.Repeat(" ", width-lineWidth)
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	lines := []string{}
	current := ""
	for _, word := range words {
		if current == "" {
			current = word
			continue
		}
		if lipgloss.Width(current)+1+lipgloss.Width(word) <= width {
			current = current + " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
