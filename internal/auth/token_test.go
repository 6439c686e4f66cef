package auth

import (
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	a := NewAuthService("s3cret", time.Hour)
	tok, err := a.IssueJWT("user-1", "author")
	if err != nil {
		t.Fatal(err)
	}
	c, err := a.Parse(tok)
	if err != nil {
		t.Fatal(err)
	}
	if c.Sub != "user-1" || c.Role != "author" || c.Issuer != "taba" {
		t.Fatalf("claims %+v", c)
	}

	if _, err := NewAuthService("other", time.Hour).Parse(tok); err == nil {
		t.Fatal("token accepted under a different secret")
	}
}

func TestParseExpired(t *testing.T) {
	a := NewAuthService("s3cret", time.Minute)
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return issued }
	tok, err := a.IssueJWT("user-1", "learner")
	if err != nil {
		t.Fatal(err)
	}
	a.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := a.Parse(tok); err == nil {
		t.Fatal("expired token accepted")
	}
}
