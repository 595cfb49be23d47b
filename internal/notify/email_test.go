package notify

import (
	"strings"
	"testing"
	"time"
)

func TestSubject(t *testing.T) {
	when := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	got := subject(Outcome{Success: true, Time: when})
	if got != "LinkedIn Post Published - 2025-06-02" {
		t.Errorf("subject() = %q", got)
	}

	got = subject(Outcome{Success: false, Time: when})
	if got != "LinkedIn Post Failed - 2025-06-02" {
		t.Errorf("subject() = %q", got)
	}
}

func TestBody(t *testing.T) {
	out := body(Outcome{
		Success:   true,
		Content:   "Hello <network>",
		WordCount: 2,
		Time:      time.Now(),
	})

	if !strings.Contains(out, "Successfully posted") {
		t.Error("body missing success status")
	}
	if !strings.Contains(out, "Hello &lt;network&gt;") {
		t.Error("body should HTML-escape content")
	}
	if !strings.Contains(out, "Word Count:</strong> 2") {
		t.Error("body missing word count")
	}
	if strings.Contains(out, "Error:") {
		t.Error("successful outcome should not include an error section")
	}
}

func TestBody_Error(t *testing.T) {
	out := body(Outcome{
		Success: false,
		Content: "doomed",
		Error:   "upstream said no",
		Time:    time.Now(),
	})

	if !strings.Contains(out, "Failed to post") {
		t.Error("body missing failure status")
	}
	if !strings.Contains(out, "upstream said no") {
		t.Error("body missing error reason")
	}
}
