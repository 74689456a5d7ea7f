// Package tui is the interactive metrics dashboard. Update is the only place
// controller state changes; network work runs in commands that carry an
// immutable effect and report back with a message.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/wolfeidau/admetrics/internal/client"
	"github.com/wolfeidau/admetrics/internal/controller"
	"github.com/wolfeidau/admetrics/internal/query"
	"github.com/wolfeidau/admetrics/internal/session"
	"github.com/wolfeidau/admetrics/internal/view"
)

type loginResultMsg struct{ result controller.LoginResult }

type fetchResultMsg struct{ resp controller.Response }

// Model is the dashboard TUI application
type Model struct {
	ctx  context.Context
	ctrl *controller.Controller

	// login form
	inputs      []textinput.Model
	focus       int
	loginNotice view.Notice
	loggingIn   bool

	// filter form
	filterInputs  []textinput.Model
	filterFocus   int
	filterEditing bool

	rows     []client.MetricRow
	role     session.Role
	pager    view.Pager
	notice   view.Notice
	selected int
	waiting  uint64
	loading  bool

	pending controller.Effect

	keys     keyMap
	formKeys formKeyMap
	help     help.Model
	styles   *view.Styles
	width    int
	height   int
}

// New starts the controller, restoring any persisted session.
func New(ctx context.Context, ctrl *controller.Controller) *Model {
	m := &Model{
		ctx:      ctx,
		ctrl:     ctrl,
		keys:     defaultKeyMap(),
		formKeys: defaultFormKeyMap(),
		help:     help.New(),
		styles:   view.DefaultStyles(),
		pager:    view.Pager{Page: 1},
	}

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 256
	email.Prompt = "Email    "

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 256
	password.Prompt = "Password "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	m.inputs = []textinput.Model{email, password}

	start := textinput.New()
	start.Placeholder = query.DateLayout
	start.CharLimit = len(query.DateLayout)
	start.Prompt = "From "

	end := textinput.New()
	end.Placeholder = query.DateLayout
	end.CharLimit = len(query.DateLayout)
	end.Prompt = "To "

	m.filterInputs = []textinput.Model{start, end}

	m.pending = ctrl.Start()
	if ctrl.State() == controller.LoggedIn {
		m.role = ctrl.Session().Role
	} else {
		m.inputs[0].Focus()
	}

	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	eff := m.pending
	m.pending = controller.Effect{}
	return tea.Batch(textinput.Blink, m.run(eff))
}

// run turns an effect into a command. The command only reads the effect.
func (m *Model) run(eff controller.Effect) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl

	switch eff.Kind {
	case controller.EffectFetch:
		m.waiting = eff.Seq
		m.loading = true
		return func() tea.Msg {
			return fetchResultMsg{resp: ctrl.Fetch(ctx, eff)}
		}
	case controller.EffectLogin:
		m.loggingIn = true
		return func() tea.Msg {
			return loginResultMsg{result: ctrl.Login(ctx, eff)}
		}
	}
	return nil
}

// apply runs an action's effect and shows its notice. Any action dismisses
// the previous notice.
func (m *Model) apply(eff controller.Effect, notice view.Notice) tea.Cmd {
	m.notice = notice
	return m.run(eff)
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case loginResultMsg:
		m.loggingIn = false
		eff, notice := m.ctrl.OnLoginResult(msg.result)
		m.loginNotice = notice
		if m.ctrl.State() != controller.LoggedIn {
			return m, nil
		}
		m.enterDashboard()
		return m, m.run(eff)

	case fetchResultMsg:
		return m, m.onFetchResult(msg.resp)

	case tea.KeyMsg:
		switch {
		case m.ctrl.State() != controller.LoggedIn:
			return m, m.updateLogin(msg)
		case m.filterEditing:
			return m, m.updateFilter(msg)
		default:
			return m, m.updateDashboard(msg)
		}
	}

	return m, m.forwardToInputs(msg)
}

func (m *Model) onFetchResult(resp controller.Response) tea.Cmd {
	if resp.Seq >= m.waiting {
		m.loading = false
	}

	out := m.ctrl.OnFetchResult(resp)
	switch out.Kind {
	case controller.OutcomeRender:
		m.rows, m.role, m.pager = out.Rows, out.Role, out.Pager
		m.notice = out.Notice
	case controller.OutcomeClearTable:
		m.rows, m.pager = nil, out.Pager
		m.notice = out.Notice
	case controller.OutcomeKeepTable:
		m.notice = out.Notice
	case controller.OutcomeLoggedOut:
		return m.enterLogin()
	}
	return nil
}

func (m *Model) updateLogin(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.formKeys.Quit):
		return tea.Quit
	case key.Matches(msg, m.formKeys.Cancel):
		m.loginNotice = view.Notice{}
		return nil
	case key.Matches(msg, m.formKeys.Next):
		return m.focusLogin((m.focus + 1) % len(m.inputs))
	case key.Matches(msg, m.formKeys.Submit):
		if m.focus == 0 {
			return m.focusLogin(1)
		}
		if m.loggingIn {
			return nil
		}
		eff, notice := m.ctrl.OnLogin(m.inputs[0].Value(), m.inputs[1].Value())
		m.loginNotice = notice
		return m.run(eff)
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return cmd
}

func (m *Model) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.formKeys.Quit):
		return tea.Quit
	case key.Matches(msg, m.formKeys.Cancel):
		m.closeFilter()
		return nil
	case key.Matches(msg, m.formKeys.Next):
		return m.focusFilter((m.filterFocus + 1) % len(m.filterInputs))
	case key.Matches(msg, m.formKeys.Submit):
		eff, notice := m.ctrl.OnFilterApply(m.filterInputs[0].Value(), m.filterInputs[1].Value())
		if !eff.IsNone() {
			m.closeFilter()
		}
		return m.apply(eff, notice)
	}

	var cmd tea.Cmd
	m.filterInputs[m.filterFocus], cmd = m.filterInputs[m.filterFocus].Update(msg)
	return cmd
}

func (m *Model) updateDashboard(msg tea.KeyMsg) tea.Cmd {
	cols := view.SortableColumns()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Dismiss):
		m.notice = view.Notice{}
	case key.Matches(msg, m.keys.Left):
		m.selected = (m.selected + len(cols) - 1) % len(cols)
	case key.Matches(msg, m.keys.Right):
		m.selected = (m.selected + 1) % len(cols)
	case key.Matches(msg, m.keys.Sort):
		return m.apply(m.ctrl.OnSortClick(cols[m.selected]))
	case key.Matches(msg, m.keys.NextPg):
		return m.apply(m.ctrl.OnPageChange(1))
	case key.Matches(msg, m.keys.PrevPg):
		return m.apply(m.ctrl.OnPageChange(-1))
	case key.Matches(msg, m.keys.Refresh):
		return m.apply(m.ctrl.OnRefresh())
	case key.Matches(msg, m.keys.Clear):
		m.filterInputs[0].SetValue("")
		m.filterInputs[1].SetValue("")
		return m.apply(m.ctrl.OnFilterClear())
	case key.Matches(msg, m.keys.Filter):
		return m.openFilter()
	case key.Matches(msg, m.keys.Logout):
		_, notice := m.ctrl.OnLogout()
		cmd := m.enterLogin()
		m.loginNotice = notice
		return cmd
	}
	return nil
}

func (m *Model) forwardToInputs(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for i := range m.inputs {
		var cmd tea.Cmd
		m.inputs[i], cmd = m.inputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	for i := range m.filterInputs {
		var cmd tea.Cmd
		m.filterInputs[i], cmd = m.filterInputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *Model) focusLogin(i int) tea.Cmd {
	m.focus = i
	for j := range m.inputs {
		m.inputs[j].Blur()
	}
	return m.inputs[i].Focus()
}

func (m *Model) focusFilter(i int) tea.Cmd {
	m.filterFocus = i
	for j := range m.filterInputs {
		m.filterInputs[j].Blur()
	}
	return m.filterInputs[i].Focus()
}

func (m *Model) openFilter() tea.Cmd {
	m.filterEditing = true
	if f := m.ctrl.Query().Filter; f != nil {
		m.filterInputs[0].SetValue(f.Start.Format(query.DateLayout))
		m.filterInputs[1].SetValue(f.End.Format(query.DateLayout))
	}
	return m.focusFilter(0)
}

func (m *Model) closeFilter() {
	m.filterEditing = false
	for i := range m.filterInputs {
		m.filterInputs[i].Blur()
	}
}

func (m *Model) enterDashboard() {
	m.inputs[1].SetValue("")
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.role = m.ctrl.Session().Role
	m.notice = view.Notice{}
	m.selected = 0
}

func (m *Model) enterLogin() tea.Cmd {
	m.rows = nil
	m.pager = view.Pager{Page: 1}
	m.notice = view.Notice{}
	m.loginNotice = view.Notice{}
	m.loading = false
	m.closeFilter()
	m.filterInputs[0].SetValue("")
	m.filterInputs[1].SetValue("")
	m.inputs[1].SetValue("")
	return m.focusLogin(0)
}

// View implements tea.Model
func (m *Model) View() string {
	if m.ctrl.State() != controller.LoggedIn {
		return m.styles.Container.Render(m.loginView())
	}
	return m.styles.Container.Render(m.dashboardView())
}

func (m *Model) loginView() string {
	title := m.styles.Title.Render("AD METRICS")

	form := lipgloss.JoinVertical(lipgloss.Left, m.inputs[0].View(), m.inputs[1].View())
	card := m.styles.Card.Render(form)

	status := view.RenderNotice(m.loginNotice)
	if m.loggingIn {
		status = m.styles.Muted.Render("Signing in…")
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, card, status, m.help.View(m.formKeys))
}

func (m *Model) dashboardView() string {
	q := m.ctrl.Query()

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		m.styles.Title.Render("AD METRICS"),
		"  ",
		m.styles.Muted.Render(string(m.role)),
	)

	filter := m.styles.Body.Render("Filter: none")
	if q.Filter != nil {
		filter = m.styles.Body.Render("Filter: " + q.Filter.String())
	}
	if m.filterEditing {
		filter = lipgloss.JoinHorizontal(lipgloss.Top, m.filterInputs[0].View(), "  ", m.filterInputs[1].View())
	}

	cols := view.SortableColumns()
	table := view.Table(m.rows, m.role, view.TableOptions{Sort: q.Sort, Order: q.Order, Selected: cols[m.selected]})
	if len(m.rows) == 0 && !m.loading {
		table += "\n" + m.styles.Muted.Render("No rows.")
	}

	status := view.RenderNotice(m.notice)
	if m.loading {
		status = strings.TrimSpace(m.styles.Muted.Render("Loading…") + " " + status)
	}

	helpView := m.help.View(m.keys)
	if m.filterEditing {
		helpView = m.help.View(m.formKeys)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		filter,
		"",
		table,
		"",
		view.PagerControls(m.pager),
		status,
		helpView,
	)
}
