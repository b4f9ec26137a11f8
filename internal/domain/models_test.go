package domain

import (
	"testing"
	"time"
)

func TestTableNames(t *testing.T) {
	if got := (User{}).TableName(); got != "users" {
		t.Errorf("User.TableName = %q", got)
	}
	if got := (Session{}).TableName(); got != "sessions" {
		t.Errorf("Session.TableName = %q", got)
	}
}

func TestSession_Authenticated(t *testing.T) {
	var nilSess *Session
	if nilSess.Authenticated() {
		t.Error("nil session must not be authenticated")
	}
	s := &Session{ID: "abc"}
	if s.Authenticated() {
		t.Error("anonymous session must not be authenticated")
	}
	s.UserID = "u1"
	if !s.Authenticated() {
		t.Error("session with user must be authenticated")
	}
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	var nilSess *Session
	if !nilSess.Expired(now) {
		t.Error("nil session is expired by definition")
	}
	s := &Session{ExpiresAt: now.Add(time.Minute)}
	if s.Expired(now) {
		t.Error("future expiry should not be expired")
	}
	if !s.Expired(now.Add(2 * time.Minute)) {
		t.Error("past expiry should be expired")
	}
}

func TestPrincipalFromUser(t *testing.T) {
	u := &User{ID: "u1", Username: "jane_doe", Email: "jane@example.com", FirstName: "Jane", LastName: "Doe"}
	p := PrincipalFromUser(u)
	if p.DisplayName != "Jane Doe" {
		t.Errorf("DisplayName = %q", p.DisplayName)
	}
	u.LastName = ""
	if got := PrincipalFromUser(u).DisplayName; got != "Jane" {
		t.Errorf("DisplayName without last name = %q", got)
	}
}
