package domain

import (
	"testing"
)

type namedStringer struct {
	Named
}

func (namedStringer) String() string { return "Stringer" }

type plain struct{}

func TestDescribe(t *testing.T) {
	t.Run("uses name when set", func(t *testing.T) {
		c := &namedStringer{}
		c.SetName("Front door")
		if got := Describe(c, "fallback"); got != "Front door" {
			t.Errorf("expected name, got %q", got)
		}
	})

	t.Run("falls back to String", func(t *testing.T) {
		if got := Describe(&namedStringer{}, "fallback"); got != "Stringer" {
			t.Errorf("expected String(), got %q", got)
		}
	})

	t.Run("falls back to fallback", func(t *testing.T) {
		if got := Describe(plain{}, "fallback"); got != "fallback" {
			t.Errorf("expected fallback, got %q", got)
		}
	})
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, err := ParseCategory(string(c))
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", c, err)
		}
		if got != c {
			t.Errorf("expected %s, got %s", c, got)
		}
	}

	if _, err := ParseCategory("widget"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestNewMessage(t *testing.T) {
	a := NewMessage("hello", "text")
	b := NewMessage("hello", "text")

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty IDs, got %q and %q", a.ID, b.ID)
	}
	if a.Text != "hello" || a.Source != "text" {
		t.Errorf("unexpected message %+v", a)
	}

	texts := Texts([]Message{a, NewMessage("world", "")})
	if len(texts) != 2 || texts[0] != "hello" || texts[1] != "world" {
		t.Errorf("unexpected texts %v", texts)
	}
}

func TestFilterFunc(t *testing.T) {
	f := FilterFunc(func(m Message) bool { return m.Text == "yes" })
	if !f.Filter(Message{Text: "yes"}) || f.Filter(Message{Text: "no"}) {
		t.Error("FilterFunc did not delegate")
	}
}

func TestNoSecrets(t *testing.T) {
	if _, ok := (NoSecrets{}).Lookup("anything"); ok {
		t.Error("NoSecrets should never resolve")
	}
}
