package info

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/glucodash/internal/app"
	"github.com/j-veylop/glucodash/internal/config"
	"github.com/j-veylop/glucodash/internal/models"
	"github.com/j-veylop/glucodash/internal/services/timerange"
)

func testConfig() *config.Config {
	return &config.Config{
		NightscoutURL:   "https://user:pw@ns.example.com/?token=secret",
		NightscoutToken: "secret",
		ImportDir:       "/data/imports",
		Timezone:        timerange.Zone("Europe/Madrid").WithOffset(60),
		Target:          models.TargetRange{Low: 70, High: 180},
		Profile:         config.DefaultQualityProfile(),
		RefreshInterval: 5 * time.Minute,
		RequestTimeout:  30 * time.Second,
	}
}

func TestNew(t *testing.T) {
	m := New(app.NewState(), testConfig())
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.Init() != nil {
		t.Error("Init should return nil")
	}
}

func TestModel_View(t *testing.T) {
	m := New(app.NewState(), testConfig())
	m.SetSize(100, 80)

	view := m.View()
	for _, want := range []string{
		"https://ns.example.com/",
		"access token",
		"Europe/Madrid, offset override 60 min",
		"70-180 mg/dL",
		"5m0s",
		"/data/imports",
		"Quality profile",
		"built-in defaults",
		"About glucodash",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "pw@") || strings.Contains(view, "token=secret") {
		t.Error("view leaks credentials")
	}
}

func TestModel_ViewWithoutConfig(t *testing.T) {
	m := New(app.NewState(), nil)
	m.SetSize(80, 40)
	if !strings.Contains(m.View(), "Configuration not loaded") {
		t.Error("view should say the configuration is missing")
	}
}

func TestModel_Copy(t *testing.T) {
	m := New(app.NewState(), testConfig())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	if cmd == nil {
		t.Fatal("copy should return a command")
	}
	if got := cmd(); got != (app.CopyToClipboardMsg{Text: "/data/imports"}) {
		t.Errorf("msg = %#v", got)
	}

	m = New(app.NewState(), nil)
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}}); cmd != nil {
		t.Error("copy without config should do nothing")
	}
}

func TestAuthMode(t *testing.T) {
	tests := []struct {
		cfg  config.Config
		want string
	}{
		{config.Config{NightscoutToken: "t"}, "access token"},
		{config.Config{NightscoutAPISecret: "s"}, "API secret"},
		{config.Config{}, "none"},
	}
	for _, tt := range tests {
		if got := authMode(&tt.cfg); got != tt.want {
			t.Errorf("authMode = %s, want %s", got, tt.want)
		}
	}
}

func TestTimezone(t *testing.T) {
	if got := timezone(&config.Config{Timezone: timerange.HostZone()}); got != "host zone" {
		t.Errorf("timezone = %s", got)
	}
	if got := timezone(&config.Config{Timezone: timerange.Zone("UTC")}); got != "UTC" {
		t.Errorf("timezone = %s", got)
	}
}

func TestRedactURL(t *testing.T) {
	if got := redactURL("not a url"); got != "not a url" {
		t.Errorf("redactURL = %s", got)
	}
	if got := redactURL("https://a:b@host/path?x=1"); got != "https://host/path" {
		t.Errorf("redactURL = %s", got)
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState(), nil)
	if len(m.ShortHelp()) != 1 {
		t.Errorf("ShortHelp len = %d, want 1", len(m.ShortHelp()))
	}
	if len(m.FullHelp()) != 2 {
		t.Errorf("FullHelp len = %d, want 2", len(m.FullHelp()))
	}
}
