package session

import (
	"fmt"
	"reflect"
	"regexp"
	"testing"

	"github.com/longkey1/clippyai/internal/clippy"
)

func TestStartNewSessionSeedsContext(t *testing.T) {
	st := NewStore()
	id := st.StartNewSession("foo")

	if st.Current() != id {
		t.Fatalf("Current() = %q, want %q", st.Current(), id)
	}

	got := st.GetContext(10)
	want := []clippy.ContextMessage{
		{Role: clippy.RoleSystem, Content: "You are ClippyAI, helping with code analysis and debugging."},
		{Role: clippy.RoleUser, Content: "Analyze this code/problem: foo"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetContext() = %#v, want %#v", got, want)
	}

	s, ok := st.Get(id)
	if !ok {
		t.Fatal("Get() did not find started session")
	}
	if s.Messages[0].MessageID != "sys_001" || s.Messages[1].MessageID != "usr_001" {
		t.Errorf("seed message ids = %q, %q", s.Messages[0].MessageID, s.Messages[1].MessageID)
	}
	for _, m := range s.Messages {
		if m.SessionID != id {
			t.Errorf("message %s has session id %q, want %q", m.MessageID, m.SessionID, id)
		}
	}
}

func TestGetContextKeepsMostRecent(t *testing.T) {
	st := NewStore()
	st.StartNewSession("foo")
	for i := 0; i < 9; i++ {
		role := clippy.RoleUser
		if i%2 == 0 {
			role = clippy.RoleAssistant
		}
		st.AddMessage(role, fmt.Sprintf("msg %d", i))
	}

	got := st.GetContext(10)
	if len(got) != 10 {
		t.Fatalf("len(GetContext(10)) = %d, want 10", len(got))
	}
	if got[0].Role != clippy.RoleUser || got[0].Content != "Analyze this code/problem: foo" {
		t.Errorf("first context message = %#v, want seeded user message", got[0])
	}
	for i := 1; i < 10; i++ {
		if want := fmt.Sprintf("msg %d", i-1); got[i].Content != want {
			t.Errorf("got[%d].Content = %q, want %q", i, got[i].Content, want)
		}
	}
}

func TestGetContextDefaultWindow(t *testing.T) {
	st := NewStore()
	st.StartNewSession("foo")
	for i := 0; i < 20; i++ {
		st.AddMessage(clippy.RoleUser, "x")
	}

	for _, max := range []int{0, -3} {
		if got := st.GetContext(max); len(got) != DefaultContextWindow {
			t.Errorf("len(GetContext(%d)) = %d, want %d", max, len(got), DefaultContextWindow)
		}
	}
	if got := st.GetContext(3); len(got) != 3 {
		t.Errorf("len(GetContext(3)) = %d, want 3", len(got))
	}
}

func TestAddMessageWithoutSession(t *testing.T) {
	st := NewStore()
	st.AddMessage(clippy.RoleUser, "hello")

	if st.Current() != "" {
		t.Errorf("Current() = %q, want empty", st.Current())
	}
	if got := st.GetContext(10); len(got) != 0 {
		t.Errorf("GetContext() = %#v, want empty", got)
	}
	if len(st.sessions) != 0 {
		t.Errorf("store has %d sessions, want 0", len(st.sessions))
	}
}

func TestClearCurrentSessionIsIdempotent(t *testing.T) {
	st := NewStore()
	id := st.StartNewSession("foo")

	st.ClearCurrentSession()
	st.ClearCurrentSession()

	if st.Current() != "" {
		t.Errorf("Current() = %q, want empty", st.Current())
	}
	if got := st.GetContext(10); len(got) != 0 {
		t.Errorf("GetContext() after clear = %d messages, want 0", len(got))
	}
	if _, ok := st.Get(id); !ok {
		t.Error("cleared session is no longer retrievable by id")
	}

	st.AddMessage(clippy.RoleUser, "ignored")
	if s, _ := st.Get(id); s.MessageCount() != 2 {
		t.Errorf("MessageCount() = %d, want 2", s.MessageCount())
	}
}

func TestStartNewSessionReplacesCurrent(t *testing.T) {
	st := NewStore()
	first := st.StartNewSession("one")
	second := st.StartNewSession("two")

	if first == second {
		t.Fatalf("session ids collide: %q", first)
	}
	if st.Current() != second {
		t.Errorf("Current() = %q, want %q", st.Current(), second)
	}
	if !st.Exists(first) {
		t.Error("previous session is gone")
	}
}

func TestSessionIDFormat(t *testing.T) {
	re := regexp.MustCompile(`^session_\d{8}_\d{6}_[0-9a-f]{8}$`)
	st := NewStore()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := st.StartNewSession("x")
		if !re.MatchString(id) {
			t.Fatalf("id %q does not match %s", id, re)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestAppendByHandle(t *testing.T) {
	st := NewStore()
	id := st.StartNewSession("foo")
	st.ClearCurrentSession()

	if !st.Append(id, clippy.RoleAssistant, "reply") {
		t.Fatal("Append() = false for existing session")
	}
	if st.Append("session_missing", clippy.RoleUser, "x") {
		t.Error("Append() = true for unknown session")
	}

	s, _ := st.Get(id)
	last := s.Messages[len(s.Messages)-1]
	if last.MessageID != "assistant_2" {
		t.Errorf("MessageID = %q, want assistant_2", last.MessageID)
	}

	ctx := st.Context(id, 1)
	if len(ctx) != 1 || ctx[0].Content != "reply" {
		t.Errorf("Context(id, 1) = %#v", ctx)
	}
	if got := st.Context("session_missing", 5); len(got) != 0 {
		t.Errorf("Context(unknown) = %#v, want empty", got)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	st := NewStore()
	id := st.StartNewSession("foo")

	s, _ := st.Get(id)
	s.AddMessage(clippy.RoleUser, "local only")

	again, _ := st.Get(id)
	if again.MessageCount() != 2 {
		t.Errorf("stored session mutated through copy: %d messages", again.MessageCount())
	}
}
