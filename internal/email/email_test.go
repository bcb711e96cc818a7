package email

import (
	"testing"
	"time"
)

func TestSubject_Pluralization(t *testing.T) {
	cases := []struct {
		count int
		want  string
	}{
		{1, "You Have 1 New Message"},
		{2, "You Have 2 New Messages"},
		{15, "You Have 15 New Messages"},
	}
	for _, tc := range cases {
		got := Subject(Digest{Count: tc.count})
		if got != tc.want {
			t.Errorf("Subject(count=%d) = %q, want %q", tc.count, got, tc.want)
		}
	}
}

func TestSendDigest_LogOnlyWithoutHost(t *testing.T) {
	s := NewSender("", "", "", "", "noreply@example.com")

	d := Digest{
		UserID:      "bob",
		Count:       2,
		WindowStart: time.Now().Add(-15 * time.Minute),
		Previews: []MessagePreview{
			{AuthorID: "alice", Content: "hey", SentAt: time.Now()},
			{AuthorID: "alice", Content: "ping", SentAt: time.Now()},
		},
	}
	if err := s.SendDigest("bob@example.com", d); err != nil {
		t.Fatalf("log-only delivery must not error: %v", err)
	}
}

func TestSendDigest_EscapesPreviewContent(t *testing.T) {
	s := NewSender("", "", "", "", "noreply@example.com")

	d := Digest{
		UserID: "bob",
		Count:  1,
		Previews: []MessagePreview{
			{AuthorID: "<script>alert(1)</script>", Content: "<b>hi</b>"},
		},
	}
	// html/template escapes on render; a render failure would surface here.
	if err := s.SendDigest("bob@example.com", d); err != nil {
		t.Fatalf("SendDigest: %v", err)
	}
}
