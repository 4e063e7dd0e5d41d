package htmlsanitize_test

import (
	"testing"

	"github.com/dalemusser/taskhub/internal/app/system/htmlsanitize"
)

func TestPlainText_Empty(t *testing.T) {
	if got := htmlsanitize.PlainText(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestPlainText_Unchanged(t *testing.T) {
	if got := htmlsanitize.PlainText("Launch plan"); got != "Launch plan" {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestPlainText_StripsTags(t *testing.T) {
	got := htmlsanitize.PlainText("<b>Launch</b> plan")
	if got != "Launch plan" {
		t.Errorf("expected tags stripped, got %q", got)
	}
}

func TestPlainText_RemovesScript(t *testing.T) {
	got := htmlsanitize.PlainText("Roadmap<script>alert('xss')</script>")
	if got != "Roadmap" {
		t.Errorf("expected script removed, got %q", got)
	}
}

func TestPlainText_KeepsAmpersand(t *testing.T) {
	got := htmlsanitize.PlainText("R&D tasks")
	if got != "R&D tasks" {
		t.Errorf("expected ampersand preserved, got %q", got)
	}
}
