package email

import (
	"context"
	"strings"
	"testing"
)

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML("# Booking confirmed\n\nSlot **7** at *Iron Gym*.")
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	for _, want := range []string{"<h1>Booking confirmed</h1>", "<strong>7</strong>", "<em>Iron Gym</em>"} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q in %s", want, html)
		}
	}
}

// TestRenderHTML_OmitsRawHTML verifies raw HTML in a body is not passed through.
func TestRenderHTML_OmitsRawHTML(t *testing.T) {
	html, err := RenderHTML("Hello <script>alert(1)</script>")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("raw HTML passed through: %s", html)
	}
}

func TestMessageValidate(t *testing.T) {
	cases := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{"ok", Message{To: []string{"a@b.c"}, Subject: "Hi"}, false},
		{"no recipient", Message{Subject: "Hi"}, true},
		{"blank recipient", Message{To: []string{""}, Subject: "Hi"}, true},
		{"no subject", Message{To: []string{"a@b.c"}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.msg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestNoopSender(t *testing.T) {
	s := NewNoopSender()
	res, err := s.Send(context.Background(), Message{To: []string{"jo@example.com"}, Subject: "Welcome"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.HasPrefix(res.MessageID, "noop-") {
		t.Errorf("MessageID = %q", res.MessageID)
	}
	if _, err := s.Send(context.Background(), Message{}); err == nil {
		t.Error("expected validation error")
	}
}
