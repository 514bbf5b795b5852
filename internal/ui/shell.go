// Package ui is the terminal front end: an entry screen for passkey sign-in
// and registration, and the protected diary, devices and profile screens.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ameyamatmk/voice-diary/internal/guard"
	"github.com/ameyamatmk/voice-diary/internal/logger"
	"github.com/ameyamatmk/voice-diary/internal/model"
	"github.com/ameyamatmk/voice-diary/internal/service"
)

const dateLayout = "2006-01-02 15:04"

type flash struct {
	ok   bool
	text string
}

// Shell renders the screen the route guard allows and dispatches commands.
type Shell struct {
	console *Console
	session *service.Session
	devices *service.DeviceRegistry
	logger  *logger.Logger
	style   styles

	route  guard.Route
	listed []model.Device
	flash  *flash
}

func NewShell(console *Console, session *service.Session, devices *service.DeviceRegistry, logger *logger.Logger) *Shell {
	return &Shell{
		console: console,
		session: session,
		devices: devices,
		logger:  logger,
		style:   console.style,
		route:   guard.RouteHome,
	}
}

// Route returns the screen the shell is on.
func (s *Shell) Route() guard.Route {
	return s.route
}

// Run serves screens until the user quits, input ends or ctx is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		decision := guard.Decide(s.session.State(), s.route)
		switch decision.Action {
		case guard.ActionLoading:
			s.console.Println(s.style.muted.Render("Checking session..."))
			s.session.Init(ctx)
			if !s.session.State().Phase.Resolved() {
				s.session.CheckAuthStatus(ctx)
			}
			continue
		case guard.ActionRedirect:
			s.logger.Debug("Shell: redirected",
				"from", string(s.route),
				"to", string(decision.Target))
			s.route = decision.Target
			continue
		}

		s.render(ctx)

		line, err := s.console.ReadLine(ctx, ">")
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if s.dispatch(ctx, line) {
			return nil
		}
	}
}

// dispatch runs one command and reports whether the shell should exit.
func (s *Shell) dispatch(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		s.setFlash(true, helpText)
	case "diary", "home":
		s.route = guard.RouteHome
	case "devices":
		s.route = guard.RouteDevices
	case "profile":
		s.route = guard.RouteProfile
	case "login":
		s.login(ctx, args)
	case "register":
		s.register(ctx, args)
	case "logout":
		s.session.Logout(ctx)
		s.route = guard.RouteEntry
		s.setFlash(true, "Logged out")
	case "refresh":
		s.session.RefreshUser(ctx)
	case "rename":
		s.rename(ctx, args)
	case "delete":
		s.delete(ctx, args)
	case "name":
		s.updateName(ctx, args)
	default:
		s.setFlash(false, fmt.Sprintf("Unknown command %q, type help", cmd))
	}
	return false
}

func (s *Shell) login(ctx context.Context, args []string) {
	username := strings.Join(args, " ")

	res := s.session.Login(ctx, username)
	s.setFlash(res.Success, res.Message)
	if res.Success {
		s.route = guard.RouteHome
	}
}

func (s *Shell) register(ctx context.Context, args []string) {
	if len(args) == 0 {
		s.setFlash(false, "Usage: register <username> [device name]")
		return
	}

	params := model.RegisterParams{
		Username:   args[0],
		DeviceName: strings.Join(args[1:], " "),
	}

	var err error
	params.DisplayName, err = s.console.ReadLine(ctx, "Display name (optional):")
	if err != nil {
		s.setFlash(false, "Registration cancelled")
		return
	}
	if params.DeviceName == "" {
		params.DeviceName, err = s.console.ReadLine(ctx, "Device name (optional):")
		if err != nil {
			s.setFlash(false, "Registration cancelled")
			return
		}
	}

	res := s.session.Register(ctx, params)
	if res.Success {
		s.setFlash(true, res.Message+". Sign in with: login "+params.Username)
		return
	}
	s.setFlash(false, res.Message)
}

func (s *Shell) rename(ctx context.Context, args []string) {
	if s.route != guard.RouteDevices {
		s.setFlash(false, "Open the devices screen first")
		return
	}
	if len(args) < 2 {
		s.setFlash(false, "Usage: rename <number> <new name>")
		return
	}
	device, ok := s.pick(args[0])
	if !ok {
		return
	}

	renamed, err := s.devices.Rename(ctx, device.ID, strings.Join(args[1:], " "))
	if err != nil {
		s.setFlash(false, model.Failure(err).Message)
		return
	}
	s.setFlash(true, fmt.Sprintf("Renamed to %q", renamed.DeviceName))
}

func (s *Shell) delete(ctx context.Context, args []string) {
	if s.route != guard.RouteDevices {
		s.setFlash(false, "Open the devices screen first")
		return
	}
	if len(args) != 1 {
		s.setFlash(false, "Usage: delete <number>")
		return
	}
	if !service.CanDelete(s.listed) {
		s.setFlash(false, "At least one device must remain")
		return
	}
	device, ok := s.pick(args[0])
	if !ok {
		return
	}

	if err := s.devices.Delete(ctx, device.ID); err != nil {
		s.setFlash(false, model.Failure(err).Message)
		return
	}
	s.setFlash(true, fmt.Sprintf("Deleted %q", device.DeviceName))
}

func (s *Shell) updateName(ctx context.Context, args []string) {
	if s.route != guard.RouteProfile {
		s.setFlash(false, "Open the profile screen first")
		return
	}

	res := s.session.UpdateProfile(ctx, strings.Join(args, " "))
	s.setFlash(res.Success, res.Message)
}

func (s *Shell) pick(arg string) (model.Device, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(s.listed) {
		s.setFlash(false, fmt.Sprintf("No device number %s", arg))
		return model.Device{}, false
	}
	return s.listed[n-1], true
}

func (s *Shell) setFlash(ok bool, text string) {
	s.flash = &flash{ok: ok, text: text}
}

func (s *Shell) render(ctx context.Context) {
	s.console.Println()
	switch s.route {
	case guard.RouteEntry:
		s.renderEntry()
	case guard.RouteHome:
		s.renderHome()
	case guard.RouteDevices:
		s.renderDevices(ctx)
	case guard.RouteProfile:
		s.renderProfile()
	}

	if s.flash != nil {
		style := s.style.failed
		if s.flash.ok {
			style = s.style.ok
		}
		s.console.Println(style.Render(s.flash.text))
		s.flash = nil
	}
}

func (s *Shell) renderEntry() {
	s.console.Println(s.style.header.Render("Voice Diary"))
	s.console.Println(s.style.sub.Render("Sign in with a passkey"))
	s.console.Println(s.style.muted.Render("login [username] | register <username> [device name] | help | quit"))
}

func (s *Shell) renderHome() {
	user := s.session.State().User
	s.console.Println(s.style.header.Render("Voice Diary"))
	if user != nil {
		s.console.Println("Welcome, " + s.style.selected.Render(user.Name()))
	}
	s.console.Println(s.style.muted.Render("devices | profile | refresh | logout | help | quit"))
}

func (s *Shell) renderDevices(ctx context.Context) {
	s.console.Println(s.style.header.Render("Devices"))

	devices, err := s.devices.List(ctx)
	if err != nil {
		s.listed = nil
		s.console.Println(s.style.failed.Render(model.Failure(err).Message))
		return
	}
	s.listed = devices

	for i, d := range devices {
		lastUsed := "never"
		if d.LastUsed != nil && !d.LastUsed.IsZero() {
			lastUsed = formatTime(d.LastUsed.Time)
		}
		s.console.Println(fmt.Sprintf("  %d) %s  %s",
			i+1,
			s.style.selected.Render(d.DeviceName),
			s.style.muted.Render(fmt.Sprintf("added %s, last used %s", formatTime(d.CreatedAt.Time), lastUsed))))
	}

	if service.CanDelete(devices) {
		s.console.Println(s.style.muted.Render("rename <number> <name> | delete <number> | diary"))
		return
	}
	s.console.Println(s.style.muted.Render("rename <number> <name> | diary"))
	s.console.Println(s.style.muted.Render("Your only device cannot be deleted."))
}

func (s *Shell) renderProfile() {
	s.console.Println(s.style.header.Render("Profile"))

	user := s.session.State().User
	if user == nil {
		return
	}
	row := func(k, v string) {
		s.console.Println(s.style.key.Render(k) + s.style.value.Render(v))
	}
	row("Username", user.Username)
	row("Display name", user.Name())
	if !user.CreatedAt.IsZero() {
		row("Member since", formatTime(user.CreatedAt.Time))
	}
	if user.LastLogin != nil && !user.LastLogin.IsZero() {
		row("Last login", formatTime(user.LastLogin.Time))
	}
	s.console.Println(s.style.muted.Render("name <display name> | diary"))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Local().Format(dateLayout)
}

const helpText = `Commands:
  login [username]                  sign in; without a username pick a saved passkey
  register <username> [device]      create a passkey for a new account
  diary | devices | profile         open a screen
  rename <number> <name>            rename a device (devices screen)
  delete <number>                   delete a device (devices screen)
  name <display name>               change the display name (profile screen)
  refresh                           reload the signed-in user
  logout                            sign out
  quit                              exit`
