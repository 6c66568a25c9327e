// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/arcana-tui/internal/config"
	"github.com/jeranaias/arcana-tui/internal/export"
	"github.com/jeranaias/arcana-tui/internal/model"
	"github.com/jeranaias/arcana-tui/internal/orchestrator"
	"github.com/jeranaias/arcana-tui/internal/store"
	"github.com/jeranaias/arcana-tui/internal/ui/styles"
)

// =============================================================================
// SCREENS
// =============================================================================

// screen identifies which view owns the keyboard.
type screen int

const (
	screenAuth    screen = iota // sign in / register / guest
	screenChat                  // sidebar + transcript + input
	screenProfile               // birth profile form
	screenDraw                  // card drawer overlay
)

// statusTTL is how long a transient status message stays visible.
const statusTTL = 5 * time.Second

// =============================================================================
// APP MODEL
// =============================================================================

// App is the root Bubble Tea model.
type App struct {
	orch   *orchestrator.Orchestrator
	auth   *store.AuthStore
	convs  *store.ConversationStore
	theme  *styles.Theme
	keys   KeyMap
	logger *log.Logger

	screen screen
	width  int
	height int

	authForm    authForm
	profileForm profileForm
	chat        chatView
	sidebar     sidebarView
	drawer      drawerView

	showSidebar bool
	statusMsg   string
	zodiac      string
	busy        bool
}

// NewApp assembles the root model. The orchestrator's notify callback
// must already be routed into the program via FlowNoticeMsg.
func NewApp(orch *orchestrator.Orchestrator, auth *store.AuthStore, convs *store.ConversationStore, theme *styles.Theme, logger *log.Logger) *App {
	if logger == nil {
		logger = log.Default()
	}
	a := &App{
		orch:        orch,
		auth:        auth,
		convs:       convs,
		theme:       theme,
		keys:        DefaultKeyMap(),
		logger:      logger,
		screen:      screenAuth,
		showSidebar: true,
	}
	a.authForm = newAuthForm(theme)
	a.profileForm = newProfileForm(theme)
	a.chat = newChatView(theme)
	a.sidebar = newSidebarView(theme)
	a.drawer = newDrawerView(theme)
	if auth.IsAuthenticated() {
		a.screen = screenChat
	}
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.chat.init(), a.authForm.init()}
	if a.screen == screenChat {
		cmds = append(cmds, a.zodiacCmd())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.layout()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case FlowNoticeMsg:
		return a.handleNotice(msg.Notice)

	case flowFinishedMsg:
		a.busy = false
		if msg.err != nil {
			return a, a.setStatus("Error: " + msg.err.Error())
		}
		return a, nil

	case authFinishedMsg:
		a.busy = false
		if msg.err != nil {
			a.authForm.setError(msg.err)
			return a, nil
		}
		a.authForm.claiming = false
		a.screen = screenChat
		a.sidebar.reload(a.convs)
		return a, a.zodiacCmd()

	case signedOutMsg:
		a.busy = false
		if msg.err != nil {
			return a, a.setStatus("Error: " + msg.err.Error())
		}
		a.zodiac = ""
		a.screen = screenAuth
		a.sidebar.reload(a.convs)
		a.chat.loadTranscript(nil)
		return a, nil

	case profileSavedMsg:
		a.busy = false
		if msg.err != nil {
			a.profileForm.setError(msg.err)
			return a, nil
		}
		a.screen = screenChat
		return a, a.setStatus("Birth profile saved")

	case conversationOpenedMsg:
		a.busy = false
		if msg.err != nil {
			return a, a.setStatus("Error: " + msg.err.Error())
		}
		a.chat.loadTranscript(a.convs.Current())
		return a, nil

	case exportedMsg:
		return a, a.setStatus("Saved to " + msg.path)

	case zodiacMsg:
		if msg.info != nil && msg.info.Sign != "" {
			a.zodiac = "☉ " + msg.info.Sign
		}
		return a, nil

	case profileStatusMsg:
		a.profileForm.setMissing(msg.missing)
		return a, nil

	case clearStatusMsg:
		a.statusMsg = ""
		return a, nil
	}

	// Everything else (spinner ticks, blink) goes to the active view.
	return a, a.updateActiveView(msg)
}

// View implements tea.Model.
func (a *App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Loading..."
	}
	switch a.screen {
	case screenAuth:
		return a.centered(a.authForm.view())
	case screenProfile:
		return a.centered(a.profileForm.view())
	case screenDraw:
		return a.centered(a.drawer.view())
	default:
		return a.viewChat()
	}
}

// viewChat renders the main screen: optional sidebar beside the
// transcript column, status bar underneath.
func (a *App) viewChat() string {
	status := a.renderStatusBar()
	bodyHeight := a.height - lipgloss.Height(status)

	var columns []string
	if a.showSidebar {
		columns = append(columns, a.sidebar.view(bodyHeight))
	}
	columns = append(columns, a.chat.view())
	body := lipgloss.JoinHorizontal(lipgloss.Top, columns...)

	return lipgloss.JoinVertical(lipgloss.Left, body, status)
}

// centered places a box in the middle of the screen.
func (a *App) centered(content string) string {
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, content)
}

// renderStatusBar shows transient status or the shortcut hints.
func (a *App) renderStatusBar() string {
	t := a.theme
	if a.statusMsg != "" {
		return t.StatusBar.Width(a.width).Render(a.statusMsg)
	}
	if a.drawer.hasRequest() && !a.drawer.hasCards() {
		prompt := t.DrawPrompt.Render("The cards await: press ctrl+y to draw")
		return t.StatusBar.Width(a.width).Render(prompt)
	}
	hints := t.ShortcutKey.Render("ctrl+t") + t.ShortcutDesc.Render(" tarot  ") +
		t.ShortcutKey.Render("ctrl+a") + t.ShortcutDesc.Render(" astrology  ") +
		t.ShortcutKey.Render("ctrl+b") + t.ShortcutDesc.Render(" profile  ") +
		t.ShortcutKey.Render("esc") + t.ShortcutDesc.Render(" leave reading  ") +
		t.ShortcutKey.Render("ctrl+c") + t.ShortcutDesc.Render(" quit")
	if a.zodiac != "" {
		hints = t.ShortcutDesc.Render(a.zodiac+"  ") + hints
	}
	return t.StatusBar.Width(a.width).Render(hints)
}

// layout distributes the window between the sidebar and the chat view.
func (a *App) layout() {
	statusHeight := 1
	bodyHeight := a.height - statusHeight
	sidebarWidth := 0
	if a.showSidebar {
		sidebarWidth = a.width / 4
		if sidebarWidth > 36 {
			sidebarWidth = 36
		}
		if sidebarWidth < 20 {
			sidebarWidth = 20
		}
	}
	a.sidebar.resize(sidebarWidth, bodyHeight)
	a.chat.resize(a.width-sidebarWidth, bodyHeight)
	a.authForm.resize(a.width, a.height)
	a.profileForm.resize(a.width, a.height)
	a.drawer.resize(a.width, a.height)
}

// setStatus shows a transient message in the status bar.
func (a *App) setStatus(msg string) tea.Cmd {
	a.statusMsg = msg
	return tea.Tick(statusTTL, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Quit) {
		a.orch.ExitConversation(context.Background())
		return a, tea.Quit
	}

	switch a.screen {
	case screenAuth:
		return a.handleAuthKey(msg)
	case screenProfile:
		return a.handleProfileKey(msg)
	case screenDraw:
		return a.handleDrawKey(msg)
	default:
		return a.handleChatKey(msg)
	}
}

func (a *App) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.NewTarot):
		return a, a.startSessionCmd(model.SessionTarot)

	case key.Matches(msg, a.keys.NewAstro):
		return a, a.startSessionCmd(model.SessionAstrology)

	case key.Matches(msg, a.keys.Sidebar):
		a.showSidebar = !a.showSidebar
		a.layout()
		return a, nil

	case key.Matches(msg, a.keys.NextConv), key.Matches(msg, a.keys.PrevConv):
		delta := 1
		if key.Matches(msg, a.keys.PrevConv) {
			delta = -1
		}
		if id := a.sidebar.move(delta, a.convs); id != "" {
			return a, a.openConversationCmd(id)
		}
		return a, nil

	case key.Matches(msg, a.keys.DeleteConv):
		return a, a.deleteConversationCmd()

	case key.Matches(msg, a.keys.Export):
		return a, a.exportConversationCmd()

	case key.Matches(msg, a.keys.Profile):
		a.profileForm.prefill(a.auth.User())
		a.screen = screenProfile
		return a, a.profileStatusCmd()

	case key.Matches(msg, a.keys.Logout):
		return a, a.logoutCmd()

	case key.Matches(msg, a.keys.Draw):
		if a.drawer.hasRequest() {
			a.screen = screenDraw
		}
		return a, nil

	case key.Matches(msg, a.keys.Claim):
		user := a.auth.User()
		if user == nil || user.UserType != model.UserTypeGuest {
			return a, a.setStatus("Already registered")
		}
		a.authForm.startClaim()
		a.screen = screenAuth
		return a, nil

	case key.Matches(msg, a.keys.Back):
		a.orch.ExitConversation(context.Background())
		a.chat.loadTranscript(nil)
		a.drawer.reset()
		return a, nil

	case msg.String() == "tab":
		if a.chat.cycleQuickReply() {
			return a, nil
		}
		return a, a.chat.updateInput(msg)

	case key.Matches(msg, a.keys.Send):
		content := a.chat.takeInput()
		if content == "" || a.busy {
			return a, nil
		}
		return a, a.sendMessageCmd(content)

	case key.Matches(msg, a.keys.ScrollUp):
		a.chat.scroll(-1)
		return a, nil

	case key.Matches(msg, a.keys.ScrollDown):
		a.chat.scroll(1)
		return a, nil
	}

	return a, a.chat.updateInput(msg)
}

func (a *App) handleAuthKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" && a.authForm.claiming {
		a.authForm.claiming = false
		a.screen = screenChat
		return a, nil
	}

	action, cmd := a.authForm.handleKey(msg)
	switch action.kind {
	case authActionGuest:
		return a, a.runAuthCmd(func(ctx context.Context) error {
			return a.orch.SignInGuest(ctx, nil)
		})
	case authActionLogin:
		return a, a.runAuthCmd(func(ctx context.Context) error {
			return a.orch.Login(ctx, action.username, action.password)
		})
	case authActionRegister:
		if a.authForm.claiming {
			return a, a.runAuthCmd(func(ctx context.Context) error {
				return a.orch.ConvertToRegistered(ctx, action.username, action.password)
			})
		}
		return a, a.runAuthCmd(func(ctx context.Context) error {
			return a.orch.Register(ctx, action.username, action.password, nil)
		})
	}
	return a, cmd
}

func (a *App) handleProfileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	submit, cancel, cmd := a.profileForm.handleKey(msg)
	if cancel {
		a.screen = screenChat
		return a, nil
	}
	if submit != nil {
		a.busy = true
		profile := *submit
		return a, func() tea.Msg {
			return profileSavedMsg{err: a.orch.SubmitProfile(context.Background(), profile)}
		}
	}
	return a, cmd
}

func (a *App) handleDrawKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", " ":
		if a.drawer.hasCards() {
			// Reveal finished; back to the reading.
			a.screen = screenChat
			a.drawer.reset()
			return a, nil
		}
		a.busy = true
		return a, func() tea.Msg {
			return flowFinishedMsg{err: a.orch.CompleteDraw(context.Background())}
		}
	case "esc":
		// Keep an undrawn request around so ctrl+y can reopen it.
		a.screen = screenChat
		if a.drawer.hasCards() {
			a.drawer.reset()
		}
		return a, nil
	}
	return a, nil
}

// =============================================================================
// FLOW COMMANDS
// =============================================================================

func (a *App) startSessionCmd(sessionType model.SessionType) tea.Cmd {
	if a.busy {
		return nil
	}
	a.busy = true
	a.drawer.reset()
	return func() tea.Msg {
		return flowFinishedMsg{err: a.orch.StartSession(context.Background(), sessionType)}
	}
}

func (a *App) sendMessageCmd(content string) tea.Cmd {
	a.busy = true
	return func() tea.Msg {
		return flowFinishedMsg{err: a.orch.SendMessage(context.Background(), content)}
	}
}

func (a *App) runAuthCmd(fn func(context.Context) error) tea.Cmd {
	if a.busy {
		return nil
	}
	a.busy = true
	return func() tea.Msg {
		return authFinishedMsg{err: fn(context.Background())}
	}
}

func (a *App) openConversationCmd(conversationID string) tea.Cmd {
	a.busy = true
	a.drawer.reset()
	return func() tea.Msg {
		a.orch.ExitConversation(context.Background())
		a.convs.SetCurrent(conversationID)
		return conversationOpenedMsg{conversationID: conversationID}
	}
}

func (a *App) deleteConversationCmd() tea.Cmd {
	id := a.convs.CurrentID()
	if id == "" || a.busy {
		return nil
	}
	a.busy = true
	return func() tea.Msg {
		return flowFinishedMsg{err: a.orch.DeleteConversation(context.Background(), id)}
	}
}

func (a *App) exportConversationCmd() tea.Cmd {
	conv := a.convs.Current()
	if conv == nil {
		return a.setStatus("No reading to export")
	}
	return func() tea.Msg {
		dir, err := config.Dir()
		if err != nil {
			return flowFinishedMsg{err: err}
		}
		path, err := export.ExportToFile(conv, export.NewMarkdownExporter(nil), &export.Options{
			OutputDir:         filepath.Join(dir, "exports"),
			IncludeTimestamps: true,
		})
		if err != nil {
			return flowFinishedMsg{err: err}
		}
		return exportedMsg{path: path}
	}
}

// logoutCmd signs the account out. Guest accounts have no way back
// in, so their backend record is deleted with them.
func (a *App) logoutCmd() tea.Cmd {
	if a.busy {
		return nil
	}
	a.busy = true
	user := a.auth.User()
	return func() tea.Msg {
		ctx := context.Background()
		a.orch.ExitConversation(ctx)
		if user != nil && user.UserType == model.UserTypeGuest {
			return signedOutMsg{err: a.orch.DeleteAccount(ctx)}
		}
		a.orch.SignOut()
		return signedOutMsg{}
	}
}

// zodiacCmd looks up the sun sign in season for the status bar.
// Decorative, so failures only log.
func (a *App) zodiacCmd() tea.Cmd {
	return func() tea.Msg {
		info, err := a.orch.CurrentZodiac(context.Background())
		if err != nil {
			a.logger.Printf("ui: zodiac lookup failed: %v", err)
			return zodiacMsg{}
		}
		return zodiacMsg{info: info}
	}
}

// profileStatusCmd asks the backend which birth fields are still
// missing so the form can point at them.
func (a *App) profileStatusCmd() tea.Cmd {
	return func() tea.Msg {
		status, err := a.orch.ProfileStatus(context.Background())
		if err != nil {
			a.logger.Printf("ui: profile status check failed: %v", err)
			return profileStatusMsg{}
		}
		if status.HasProfile {
			return profileStatusMsg{}
		}
		return profileStatusMsg{missing: strings.Join(status.Missing, ", ")}
	}
}

// =============================================================================
// NOTICE HANDLING
// =============================================================================

func (a *App) handleNotice(n orchestrator.Notice) (tea.Model, tea.Cmd) {
	switch n.Kind {
	case orchestrator.NoticeStreamStart:
		a.chat.beginStream()
		return a, a.chat.spinnerTick()

	case orchestrator.NoticeStreamChunk:
		a.chat.appendChunk(n.Content)
		return a, nil

	case orchestrator.NoticeStreamEnd:
		a.chat.endStream()
		a.chat.loadTranscript(a.convs.Current())
		return a, nil

	case orchestrator.NoticeDrawRequested:
		// Not auto-opened: the stream may still be delivering text, and
		// drawing is the user's move to make.
		a.drawer.setRequest(n.Draw)
		return a, nil

	case orchestrator.NoticeCardsDrawn:
		a.drawer.setCards(n.Cards)
		a.screen = screenDraw
		return a, nil

	case orchestrator.NoticeProfileRequested:
		a.profileForm.prefill(a.auth.User())
		a.screen = screenProfile
		return a, a.profileStatusCmd()

	case orchestrator.NoticeConversationsChanged:
		a.sidebar.reload(a.convs)
		a.chat.loadTranscript(a.convs.Current())
		return a, nil

	case orchestrator.NoticeUserChanged:
		return a, nil

	case orchestrator.NoticeError:
		return a, a.setStatus("Error: " + n.Err.Error())
	}
	return a, nil
}

// updateActiveView forwards ticks and blinks to whichever view is up.
func (a *App) updateActiveView(msg tea.Msg) tea.Cmd {
	switch a.screen {
	case screenAuth:
		return a.authForm.update(msg)
	case screenProfile:
		return a.profileForm.update(msg)
	default:
		return a.chat.update(msg)
	}
}
