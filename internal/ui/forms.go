// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/arcana-tui/internal/model"
	"github.com/jeranaias/arcana-tui/internal/ui/styles"
)

// =============================================================================
// AUTH FORM
// =============================================================================

type authActionKind int

const (
	authActionNone authActionKind = iota
	authActionGuest
	authActionLogin
	authActionRegister
)

// authAction is what the auth form asks the app to do.
type authAction struct {
	kind     authActionKind
	username string
	password string
}

// authMode selects which tab of the form is active.
type authMode int

const (
	authModeLogin authMode = iota
	authModeRegister
	authModeGuest
)

// authForm collects credentials or offers the guest path.
type authForm struct {
	theme *styles.Theme

	mode     authMode
	claiming bool
	username textinput.Model
	password textinput.Model
	focus    int
	err      error

	width  int
	height int
}

func newAuthForm(theme *styles.Theme) authForm {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword

	return authForm{theme: theme, username: username, password: password}
}

func (f *authForm) init() tea.Cmd {
	return textinput.Blink
}

func (f *authForm) resize(width, height int) {
	f.width = width
	f.height = height
}

func (f *authForm) setError(err error) {
	f.err = err
}

// startClaim puts the form in guest-conversion mode: same fields as
// registration, but the submit upgrades the signed-in guest instead
// of creating a fresh account.
func (f *authForm) startClaim() {
	f.mode = authModeRegister
	f.claiming = true
	f.err = nil
	f.username.Reset()
	f.password.Reset()
	f.focus = 0
	f.password.Blur()
	f.username.Focus()
}

// handleKey drives the form. Tab cycles modes, up/down moves focus,
// enter submits.
func (f *authForm) handleKey(msg tea.KeyMsg) (authAction, tea.Cmd) {
	switch msg.String() {
	case "tab":
		if f.claiming {
			return authAction{}, nil
		}
		f.mode = (f.mode + 1) % 3
		f.err = nil
		return authAction{}, nil

	case "up", "down":
		if f.mode != authModeGuest {
			f.focus = 1 - f.focus
			if f.focus == 0 {
				f.password.Blur()
				return authAction{}, f.username.Focus()
			}
			f.username.Blur()
			return authAction{}, f.password.Focus()
		}
		return authAction{}, nil

	case "enter":
		return f.submit()
	}

	var cmd tea.Cmd
	if f.focus == 0 {
		f.username, cmd = f.username.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return authAction{}, cmd
}

func (f *authForm) submit() (authAction, tea.Cmd) {
	if f.mode == authModeGuest {
		return authAction{kind: authActionGuest}, nil
	}

	username := strings.TrimSpace(f.username.Value())
	password := f.password.Value()
	if username == "" || password == "" {
		f.err = fmt.Errorf("username and password are required")
		return authAction{}, nil
	}

	kind := authActionLogin
	if f.mode == authModeRegister {
		kind = authActionRegister
	}
	return authAction{kind: kind, username: username, password: password}, nil
}

func (f *authForm) update(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	f.username, cmd = f.username.Update(msg)
	cmds = append(cmds, cmd)
	f.password, cmd = f.password.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

func (f *authForm) view() string {
	t := f.theme
	var b strings.Builder

	b.WriteString(t.FormTitle.Render("✦ arcana ✦"))
	b.WriteString("\n")
	if f.claiming {
		b.WriteString(t.HeaderSubtitle.Render("claim your guest account"))
		b.WriteString("\n\n")
	} else {
		b.WriteString(t.HeaderSubtitle.Render("tarot & astrology readings"))
		b.WriteString("\n\n")

		tabs := []string{"sign in", "register", "guest"}
		rendered := make([]string, len(tabs))
		for i, tab := range tabs {
			if authMode(i) == f.mode {
				rendered[i] = t.SidebarItemSelected.Render("[" + tab + "]")
			} else {
				rendered[i] = t.SidebarItem.Render(" " + tab + " ")
			}
		}
		b.WriteString(strings.Join(rendered, " "))
		b.WriteString("\n\n")
	}

	if f.mode == authModeGuest {
		b.WriteString(t.FormHint.Render("Press enter to continue without an account.\nYour readings can be claimed later by registering."))
	} else {
		b.WriteString(t.FormLabel.Render("Username") + "\n" + f.username.View() + "\n")
		b.WriteString(t.FormLabel.Render("Password") + "\n" + f.password.View() + "\n")
	}

	if f.err != nil {
		b.WriteString("\n" + t.ErrorBox.Render(f.err.Error()))
	}
	if f.claiming {
		b.WriteString("\n\n" + t.FormHint.Render("enter: claim  esc: back"))
	} else {
		b.WriteString("\n\n" + t.FormHint.Render("tab: switch  enter: go  ctrl+c: quit"))
	}

	return t.FormBox.Render(b.String())
}

// =============================================================================
// BIRTH PROFILE FORM
// =============================================================================

// profileField indexes the inputs in display order.
const (
	fieldNickname = iota
	fieldGender
	fieldYear
	fieldMonth
	fieldDay
	fieldHour
	fieldMinute
	fieldCity
	fieldCount
)

var profileLabels = [fieldCount]string{
	"Nickname", "Gender (male/female/other)", "Birth year", "Birth month",
	"Birth day", "Birth hour (0-23)", "Birth minute", "Birth city",
}

// profileForm collects the birth data chart computation needs. Fields
// left blank keep their previously saved values.
type profileForm struct {
	theme   *styles.Theme
	inputs  [fieldCount]textinput.Model
	focus   int
	err     error
	missing string

	width  int
	height int
}

func newProfileForm(theme *styles.Theme) profileForm {
	f := profileForm{theme: theme}
	for i := range f.inputs {
		input := textinput.New()
		input.CharLimit = 64
		f.inputs[i] = input
	}
	f.inputs[fieldNickname].Focus()
	return f
}

func (f *profileForm) resize(width, height int) {
	f.width = width
	f.height = height
}

func (f *profileForm) setError(err error) {
	f.err = err
}

// setMissing records what the backend says is still needed for a
// chart. Empty means the profile is complete.
func (f *profileForm) setMissing(missing string) {
	f.missing = missing
}

// prefill seeds the form from the saved profile so edits are
// incremental.
func (f *profileForm) prefill(user *model.User) {
	for i := range f.inputs {
		f.inputs[i].Reset()
	}
	f.err = nil
	f.missing = ""
	f.setFocus(fieldNickname)
	if user == nil || user.Profile == nil {
		return
	}
	p := user.Profile
	f.inputs[fieldNickname].SetValue(p.Nickname)
	f.inputs[fieldGender].SetValue(string(p.Gender))
	setIntField := func(field int, v *int) {
		if v != nil {
			f.inputs[field].SetValue(strconv.Itoa(*v))
		}
	}
	setIntField(fieldYear, p.BirthYear)
	setIntField(fieldMonth, p.BirthMonth)
	setIntField(fieldDay, p.BirthDay)
	setIntField(fieldHour, p.BirthHour)
	setIntField(fieldMinute, p.BirthMinute)
	f.inputs[fieldCity].SetValue(p.BirthCity)
}

func (f *profileForm) setFocus(idx int) {
	for i := range f.inputs {
		if i == idx {
			f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	f.focus = idx
}

// handleKey drives the form: up/down (or tab) moves, enter submits,
// esc cancels.
func (f *profileForm) handleKey(msg tea.KeyMsg) (*model.UserProfile, bool, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return nil, true, nil
	case "up", "shift+tab":
		f.setFocus((f.focus + fieldCount - 1) % fieldCount)
		return nil, false, nil
	case "down", "tab":
		f.setFocus((f.focus + 1) % fieldCount)
		return nil, false, nil
	case "enter":
		profile, err := f.collect()
		if err != nil {
			f.err = err
			return nil, false, nil
		}
		return profile, false, nil
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return nil, false, cmd
}

// collect validates and assembles the profile. Blank fields stay
// unset; the orchestrator merges over the saved profile.
func (f *profileForm) collect() (*model.UserProfile, error) {
	p := &model.UserProfile{
		Nickname:  strings.TrimSpace(f.inputs[fieldNickname].Value()),
		BirthCity: strings.TrimSpace(f.inputs[fieldCity].Value()),
	}

	if g := strings.TrimSpace(f.inputs[fieldGender].Value()); g != "" {
		switch model.Gender(g) {
		case model.GenderMale, model.GenderFemale, model.GenderOther, model.GenderPreferNotSay:
			p.Gender = model.Gender(g)
		default:
			return nil, fmt.Errorf("gender must be male, female, other, or prefer_not_say")
		}
	}

	intField := func(field int, name string, min, max int) (*int, error) {
		raw := strings.TrimSpace(f.inputs[field].Value())
		if raw == "" {
			return nil, nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number", name)
		}
		if v < min || v > max {
			return nil, fmt.Errorf("%s must be between %d and %d", name, min, max)
		}
		return model.IntPtr(v), nil
	}

	var err error
	if p.BirthYear, err = intField(fieldYear, "birth year", 1900, 2100); err != nil {
		return nil, err
	}
	if p.BirthMonth, err = intField(fieldMonth, "birth month", 1, 12); err != nil {
		return nil, err
	}
	if p.BirthDay, err = intField(fieldDay, "birth day", 1, 31); err != nil {
		return nil, err
	}
	if p.BirthHour, err = intField(fieldHour, "birth hour", 0, 23); err != nil {
		return nil, err
	}
	if p.BirthMinute, err = intField(fieldMinute, "birth minute", 0, 59); err != nil {
		return nil, err
	}
	return p, nil
}

func (f *profileForm) update(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	for i := range f.inputs {
		f.inputs[i], cmd = f.inputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (f *profileForm) view() string {
	t := f.theme
	var b strings.Builder

	b.WriteString(t.FormTitle.Render("Birth Profile"))
	b.WriteString("\n")
	b.WriteString(t.FormHint.Render("Used to compute your natal chart. Blank fields keep saved values."))
	b.WriteString("\n")
	if f.missing != "" {
		b.WriteString(t.CardReversed.Render("Still needed: " + f.missing))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i := range f.inputs {
		label := t.FormLabel.Render(profileLabels[i])
		if i == f.focus {
			label = t.SidebarItemSelected.Render(profileLabels[i])
		}
		b.WriteString(label + "\n" + f.inputs[i].View() + "\n")
	}

	if f.err != nil {
		b.WriteString("\n" + t.ErrorBox.Render(f.err.Error()))
	}
	b.WriteString("\n" + t.FormHint.Render("tab: next  enter: save  esc: cancel"))

	return t.FormBox.Render(lipgloss.NewStyle().Width(48).Render(b.String()))
}
