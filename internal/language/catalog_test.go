package language

import "testing"

func TestNameFor_KnownCodes(t *testing.T) {
	tests := []struct {
		code string
		name string
	}{
		{"en", "English"},
		{"es", "Spanish"},
		{"fr", "French"},
		{"zh", "Chinese"},
	}

	for _, tt := range tests {
		if got := NameFor(tt.code); got != tt.name {
			t.Errorf("NameFor(%q) = %q, want %q", tt.code, got, tt.name)
		}
	}
}

func TestNameFor_UnknownCodePassesThrough(t *testing.T) {
	if got := NameFor("klingon"); got != "klingon" {
		t.Errorf("expected unknown code to pass through, got %q", got)
	}
}

func TestIsSupported(t *testing.T) {
	if !IsSupported("de") {
		t.Error("expected 'de' to be supported")
	}
	if IsSupported("xx") {
		t.Error("expected 'xx' to be unsupported")
	}
}

func TestAll_SortedAndComplete(t *testing.T) {
	all := All()
	if len(all) != len(names) {
		t.Fatalf("expected %d languages, got %d", len(names), len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Code >= all[i].Code {
			t.Fatalf("catalog not sorted at index %d: %s >= %s", i, all[i-1].Code, all[i].Code)
		}
	}
}
