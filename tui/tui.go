package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wricardo/fliplabyrinth/game/engine"
	"github.com/wricardo/fliplabyrinth/game/level"
	"github.com/wricardo/fliplabyrinth/game/service"
)

type screen int

const (
	screenMenu screen = iota
	screenPlaying
	screenError
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true)

	statsStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD75F")).
			Italic(true)

	wonStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FFF87")).Bold(true)
	lostStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Bold(true)

	cellStyles = map[rune]lipgloss.Style{
		engine.SymbolPlayer:   lipgloss.NewStyle().Foreground(lipgloss.Color("#00D7FF")).Bold(true),
		engine.SymbolHidden:   lipgloss.NewStyle().Foreground(lipgloss.Color("#4E4E4E")),
		engine.SymbolWall:     lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A")),
		engine.SymbolExit:     lipgloss.NewStyle().Foreground(lipgloss.Color("#5FFF87")).Bold(true),
		engine.SymbolMonster:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Bold(true),
		engine.SymbolDefeated: lipgloss.NewStyle().Foreground(lipgloss.Color("#875F5F")),
		engine.SymbolKey:      lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")),
		engine.SymbolDoor:     lipgloss.NewStyle().Foreground(lipgloss.Color("#D78700")),
		engine.SymbolWeapon:   lipgloss.NewStyle().Foreground(lipgloss.Color("#AF87FF")),
		engine.SymbolItem:     lipgloss.NewStyle().Foreground(lipgloss.Color("#87D7FF")),
		engine.SymbolObstacle: lipgloss.NewStyle().Foreground(lipgloss.Color("#D75F00")),
	}
)

// Notifier forwards service events to a running program. Events that arrive
// while the program is busy are dropped; the next refresh picks up the state.
type Notifier struct {
	events chan string
}

// NewNotifier creates a notifier with a small buffered event queue
func NewNotifier() *Notifier {
	return &Notifier{events: make(chan string, 16)}
}

// BroadcastEvent queues sessionID for a refresh, dropping it when the queue is full
func (n *Notifier) BroadcastEvent(sessionID string, event string, data interface{}) {
	select {
	case n.events <- sessionID:
	default:
	}
}

type model struct {
	screen   screen
	service  service.GameService
	notifier *Notifier
	ctx      context.Context

	levels    []level.Summary
	cursor    int
	nameInput textinput.Model
	help      help.Model

	sessionID string
	view      *service.GameView
	log       []string
	err       error
}

type levelsLoadedMsg struct {
	levels []level.Summary
}

type sessionStartedMsg struct {
	info *service.SessionInfo
}

type commandDoneMsg struct {
	result *service.InteractionResult
}

type stateMsg struct {
	view *service.GameView
}

type notifyMsg struct {
	sessionID string
}

type noticeMsg struct {
	text string
}

type errMsg struct {
	err error
}

// NewModel builds the program model. notifier may be nil, in which case
// asynchronous changes only show up after the next keypress.
func NewModel(ctx context.Context, svc service.GameService, notifier *Notifier, playerName string) model {
	ti := textinput.New()
	ti.Placeholder = service.DefaultPlayerName
	ti.SetValue(playerName)
	ti.Focus()
	ti.CharLimit = 50
	ti.Width = 30

	return model{
		screen:    screenMenu,
		service:   svc,
		notifier:  notifier,
		ctx:       ctx,
		nameInput: ti,
		help:      help.New(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadLevels(), m.listen())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.screen == screenPlaying {
			return m.updatePlaying(msg)
		}
		return m.updateMenu(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case levelsLoadedMsg:
		m.levels = msg.levels
		if m.cursor >= len(m.levels) {
			m.cursor = 0
		}
		return m, nil

	case sessionStartedMsg:
		m.screen = screenPlaying
		m.sessionID = msg.info.ID
		m.view = msg.info.GameState
		m.log = []string{fmt.Sprintf("%s enters %s.", msg.info.PlayerName, msg.info.LevelName)}
		return m, nil

	case commandDoneMsg:
		m.view = msg.result.GameState
		if line := describe(msg.result); line != "" {
			m.appendLog(line)
		}
		return m, nil

	case stateMsg:
		m.view = msg.view
		return m, nil

	case notifyMsg:
		if m.screen == screenPlaying && strings.EqualFold(msg.sessionID, m.sessionID) {
			return m, tea.Batch(m.refresh(), m.listen())
		}
		return m, m.listen()

	case noticeMsg:
		m.appendLog(msg.text)
		return m, m.refresh()

	case errMsg:
		m.err = msg.err
		m.screen = screenError
		return m, nil
	}

	return m, nil
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case tea.KeyDown:
		if m.cursor < len(m.levels)-1 {
			m.cursor++
		}
		return m, nil
	case tea.KeyEnter:
		if m.screen == screenError {
			m.screen = screenMenu
			m.err = nil
			return m, m.loadLevels()
		}
		if len(m.levels) == 0 {
			return m, nil
		}
		return m, m.startGame(m.levels[m.cursor].ID, m.nameInput.Value())
	}

	if m.screen != screenMenu {
		return m, nil
	}
	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m model) updatePlaying(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Up):
		return m, m.move("up")
	case key.Matches(msg, keys.Down):
		return m, m.move("down")
	case key.Matches(msg, keys.Left):
		return m, m.move("left")
	case key.Matches(msg, keys.Right):
		return m, m.move("right")
	case key.Matches(msg, keys.Attack):
		return m, m.attack()
	case key.Matches(msg, keys.Reset):
		return m, m.reset()
	case key.Matches(msg, keys.Retry):
		return m, m.retry()
	case key.Matches(msg, keys.Menu):
		m.screen = screenMenu
		id := m.sessionID
		m.sessionID = ""
		m.view = nil
		return m, tea.Batch(m.loadLevels(), m.endSession(id))
	}
	return m, nil
}

func (m *model) appendLog(line string) {
	m.log = append(m.log, line)
	if len(m.log) > 8 {
		m.log = m.log[len(m.log)-8:]
	}
}

func (m model) View() string {
	var s string

	switch m.screen {
	case screenMenu:
		s = m.viewMenu()
	case screenPlaying:
		s = m.viewPlaying()
	case screenError:
		s = fmt.Sprintf("\n  Error: %v\n\nPress Enter for the level menu or Esc to quit.", m.err)
	}

	return "\n" + s + "\n"
}

func (m model) viewMenu() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("FLIP LABYRINTH") + "\n\n")
	b.WriteString("Name: " + m.nameInput.View() + "\n\n")
	if len(m.levels) == 0 {
		b.WriteString("Loading levels...\n")
	}
	for i, l := range m.levels {
		line := fmt.Sprintf(" %d. %-20s %-7s %dx%d ", l.ID, l.Name, l.Difficulty, l.Rows, l.Cols)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{keys.Start, keys.Quit}))
	return b.String()
}

func (m model) viewPlaying() string {
	if m.view == nil {
		return "Loading..."
	}
	v := m.view

	board := lipgloss.JoinHorizontal(lipgloss.Top, renderGrid(v.State), statsStyle.Render(renderStats(v)))

	var b strings.Builder
	b.WriteString(titleStyle.Render(v.LevelName) + "\n\n")
	b.WriteString(board + "\n\n")

	switch v.Status {
	case engine.StatusWon:
		b.WriteString(wonStyle.Render(fmt.Sprintf("You escaped! Score %d", v.Score.Total)) + "\n")
	case engine.StatusLost:
		b.WriteString(lostStyle.Render("You were defeated. Press r to try again.") + "\n")
	}
	if v.Message != "" {
		b.WriteString(messageStyle.Render(v.Message) + "\n")
	}
	for _, line := range m.log {
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + m.help.View(keys))
	return b.String()
}

// renderGrid draws the visible map with one colored symbol per cell
func renderGrid(s engine.State) string {
	var b strings.Builder
	for r, row := range s.Tiles {
		for c := range row {
			sym := s.CellSymbol(engine.Position{Row: r, Col: c})
			cell := string(sym)
			if style, ok := cellStyles[sym]; ok {
				cell = style.Render(cell)
			}
			b.WriteString(cell)
			if c < len(row)-1 {
				b.WriteByte(' ')
			}
		}
		if r < len(s.Tiles)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func renderStats(v *service.GameView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "HP     %d/%d\n", v.HP, v.MaxHP)
	fmt.Fprintf(&b, "Moves  %d\n", v.MoveCount)
	fmt.Fprintf(&b, "Time   %s\n", v.Elapsed)
	fmt.Fprintf(&b, "Score  %d\n", v.Score.Total)

	if len(v.Inventory) > 0 {
		b.WriteString("\nInventory\n")
		for _, it := range v.Inventory {
			b.WriteString("- " + it.ID + "\n")
		}
	}

	if c := v.Combat; c != nil {
		fmt.Fprintf(&b, "\nFighting %s\nEnemy HP %d\n", c.Enemy.Name, c.EnemyHP)
		if c.IsPlayerTurn {
			b.WriteString("Your turn\n")
		} else {
			b.WriteString("Enemy's turn\n")
		}
	}

	if st := v.Submission; st != nil {
		switch st.Status {
		case service.SubmissionSaving:
			b.WriteString("\nSaving score...\n")
		case service.SubmissionSuccess:
			b.WriteString("\nScore saved\n")
			for i, e := range st.TopScores {
				if i == 5 {
					break
				}
				fmt.Fprintf(&b, "%d. %s %d\n", i+1, e.PlayerName, e.Score)
			}
		case service.SubmissionError:
			fmt.Fprintf(&b, "\nScore not saved: %s\nPress s to retry\n", st.Error)
		}
	}
	return b.String()
}

func describe(result *service.InteractionResult) string {
	out := result.Outcome
	var parts []string
	switch out.Kind {
	case engine.OutcomeWall:
		parts = append(parts, "A wall blocks the way.")
	case engine.OutcomeIgnored:
		parts = append(parts, "Nothing there.")
	case engine.OutcomeRejected:
		parts = append(parts, "You can't do that now.")
	}
	if out.Collected != nil {
		parts = append(parts, "Picked up "+out.Collected.ID+".")
	}
	for _, battle := range []*engine.BattleResult{out.Battle, enemyBattle(result)} {
		if battle == nil {
			continue
		}
		if battle.Victory {
			parts = append(parts, fmt.Sprintf("Defeated %s (dealt %d, took %d).", battle.Enemy, battle.DamageDealt, battle.DamageTaken))
		} else {
			parts = append(parts, fmt.Sprintf("Fell to %s.", battle.Enemy))
		}
	}
	if out.Kind == engine.OutcomeCombat && result.GameState != nil && result.GameState.Combat != nil {
		if log := result.GameState.Combat.Log; len(log) > 0 {
			parts = append(parts, log[len(log)-1])
		}
	}
	return strings.Join(parts, " ")
}

func enemyBattle(result *service.InteractionResult) *engine.BattleResult {
	if result.EnemyOutcome == nil {
		return nil
	}
	return result.EnemyOutcome.Battle
}

// Commands

func (m model) loadLevels() tea.Cmd {
	return func() tea.Msg {
		summaries, err := m.service.ListLevels(m.ctx)
		if err != nil {
			return errMsg{err}
		}
		return levelsLoadedMsg{summaries}
	}
}

func (m model) startGame(levelID int, name string) tea.Cmd {
	return func() tea.Msg {
		info, err := m.service.CreateSession(m.ctx, levelID, name)
		if err != nil {
			return errMsg{err}
		}
		return sessionStartedMsg{info}
	}
}

func (m model) endSession(id string) tea.Cmd {
	return func() tea.Msg {
		if err := m.service.DeleteSession(m.ctx, id); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m model) move(direction string) tea.Cmd {
	id := m.sessionID
	return func() tea.Msg {
		result, err := m.service.Move(m.ctx, id, direction)
		if err != nil {
			return errMsg{err}
		}
		return commandDoneMsg{result}
	}
}

func (m model) attack() tea.Cmd {
	id := m.sessionID
	return func() tea.Msg {
		result, err := m.service.Attack(m.ctx, id)
		if err != nil {
			return errMsg{err}
		}
		return commandDoneMsg{result}
	}
}

func (m model) reset() tea.Cmd {
	id := m.sessionID
	return func() tea.Msg {
		view, err := m.service.Reset(m.ctx, id)
		if err != nil {
			return errMsg{err}
		}
		return stateMsg{view}
	}
}

func (m model) retry() tea.Cmd {
	id := m.sessionID
	return func() tea.Msg {
		st, err := m.service.RetryScoreSubmission(m.ctx, id)
		if err != nil {
			return noticeMsg{err.Error()}
		}
		return noticeMsg{fmt.Sprintf("Score submission: %s", st.Status)}
	}
}

func (m model) refresh() tea.Cmd {
	id := m.sessionID
	if id == "" {
		return nil
	}
	return func() tea.Msg {
		view, err := m.service.GetGameState(m.ctx, id)
		if err != nil {
			return errMsg{err}
		}
		return stateMsg{view}
	}
}

func (m model) listen() tea.Cmd {
	if m.notifier == nil {
		return nil
	}
	events := m.notifier.events
	return func() tea.Msg {
		select {
		case id := <-events:
			return notifyMsg{id}
		case <-m.ctx.Done():
			return nil
		}
	}
}

// Run plays in the terminal until the user quits
func Run(ctx context.Context, svc service.GameService, notifier *Notifier, playerName string) error {
	p := tea.NewProgram(NewModel(ctx, svc, notifier, playerName), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
