package app

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/glucodash/internal/services"
	"github.com/j-veylop/glucodash/internal/services/daydata"
)

func TestCommands_Tick(t *testing.T) {
	cmds := NewCommands(nil)
	cmd := cmds.Tick(time.Millisecond)
	if cmd == nil {
		t.Error("Tick returned nil")
	}
}

func TestCommands_DefaultTick(t *testing.T) {
	cmds := NewCommands(nil)
	cmd := cmds.DefaultTick()
	if cmd == nil {
		t.Error("DefaultTick returned nil")
	}
}

func TestCommands_Notifications(t *testing.T) {
	cmds := NewCommands(nil)

	tests := []struct {
		name string
		fn   func(string) tea.Cmd
		want NotificationType
	}{
		{"Success", cmds.NotifySuccess, NotificationSuccess},
		{"Error", cmds.NotifyError, NotificationError},
		{"Warning", cmds.NotifyWarning, NotificationWarning},
		{"Info", cmds.NotifyInfo, NotificationInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := tt.fn("msg")
			msg := cmd()

			addMsg, ok := msg.(AddNotificationMsg)
			if !ok {
				t.Fatalf("Expected AddNotificationMsg, got %T", msg)
			}
			if addMsg.Type != tt.want {
				t.Errorf("Type = %v, want %v", addMsg.Type, tt.want)
			}
			if addMsg.Message != "msg" {
				t.Errorf("Message = %q, want msg", addMsg.Message)
			}
			if addMsg.Duration <= 0 {
				t.Errorf("Duration = %v, want positive", addMsg.Duration)
			}
		})
	}
}

func TestCommands_ClearNotification(t *testing.T) {
	cmds := NewCommands(nil)
	cmd := cmds.ClearNotification("id", time.Millisecond)
	if cmd == nil {
		t.Error("ClearNotification returned nil")
	}
}

func TestCommands_Quit(t *testing.T) {
	cmds := NewCommands(nil)
	cmd := cmds.Quit()
	msg := cmd()
	if _, ok := msg.(tea.QuitMsg); !ok {
		t.Errorf("Expected QuitMsg, got %T", msg)
	}
}

func TestDayCmd(t *testing.T) {
	snap := daydata.Snapshot{Seq: 3, State: daydata.StateReady}
	msg := dayCmd(func(context.Context) (daydata.Snapshot, error) {
		return snap, nil
	})()

	loaded, ok := msg.(DayLoadedMsg)
	if !ok {
		t.Fatalf("Expected DayLoadedMsg, got %T", msg)
	}
	if loaded.Snapshot.Seq != 3 || loaded.Error != nil {
		t.Errorf("DayLoadedMsg = %+v", loaded)
	}

	failure := errors.New("boom")
	msg = dayCmd(func(context.Context) (daydata.Snapshot, error) {
		return daydata.Snapshot{}, failure
	})()
	if loaded := msg.(DayLoadedMsg); !errors.Is(loaded.Error, failure) {
		t.Errorf("Error = %v, want %v", loaded.Error, failure)
	}
}

func TestDayCmd_Superseded(t *testing.T) {
	msg := dayCmd(func(context.Context) (daydata.Snapshot, error) {
		return daydata.Snapshot{}, daydata.ErrSuperseded
	})()
	if msg != nil {
		t.Errorf("superseded load should produce no message, got %T", msg)
	}
}

func TestDayCmd_Deadline(t *testing.T) {
	dayCmd(func(ctx context.Context) (daydata.Snapshot, error) {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("day loads should carry a deadline")
		}
		return daydata.Snapshot{}, nil
	})()
}

func TestWaitForServiceEventCmd(t *testing.T) {
	ch := make(chan services.ServiceEvent, 1)
	ch <- services.AlertEvent{Title: "High", Body: "250 mg/dL"}

	msg := waitForServiceEventCmd(ch)()
	evt, ok := msg.(ServiceEventMsg)
	if !ok {
		t.Fatalf("Expected ServiceEventMsg, got %T", msg)
	}
	if alert, ok := evt.Event.(services.AlertEvent); !ok || alert.Title != "High" {
		t.Errorf("Event = %#v", evt.Event)
	}

	close(ch)
	if msg := waitForServiceEventCmd(ch)(); msg != nil {
		t.Errorf("closed channel should produce nil, got %T", msg)
	}
}
