package env

import (
	"testing"
	"time"
)

func TestStr(t *testing.T) {
	t.Setenv("VIDREPAIR_TEST_STR", "hello")
	if got := Str("VIDREPAIR_TEST_STR", "def"); got != "hello" {
		t.Errorf("Str() = %q, want %q", got, "hello")
	}
	if got := Str("VIDREPAIR_TEST_UNSET", "def"); got != "def" {
		t.Errorf("Str() = %q, want default", got)
	}
}

func TestInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		def   int
		want  int
	}{
		{"valid", "42", 7, 42},
		{"invalid", "abc", 7, 7},
		{"empty", "", 7, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("VIDREPAIR_TEST_INT", tt.value)
			if got := Int("VIDREPAIR_TEST_INT", tt.def); got != tt.want {
				t.Errorf("Int() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBool(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"false", true, false},
		{"0", true, false},
		{"garbage", false, false},
		{"", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("VIDREPAIR_TEST_BOOL", tt.value)
			if got := Bool("VIDREPAIR_TEST_BOOL", tt.def); got != tt.want {
				t.Errorf("Bool(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestDuration(t *testing.T) {
	t.Setenv("VIDREPAIR_TEST_DUR", "90s")
	if got := Duration("VIDREPAIR_TEST_DUR", time.Second); got != 90*time.Second {
		t.Errorf("Duration() = %v, want 90s", got)
	}
	t.Setenv("VIDREPAIR_TEST_DUR", "nope")
	if got := Duration("VIDREPAIR_TEST_DUR", time.Second); got != time.Second {
		t.Errorf("Duration() = %v, want fallback 1s", got)
	}
}

func TestList(t *testing.T) {
	t.Setenv("VIDREPAIR_TEST_LIST", "a, b , ,c")
	got := List("VIDREPAIR_TEST_LIST", "")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
