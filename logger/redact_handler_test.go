package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestRedactHandler_PseudonymizesUserID(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewRedactHandler(slog.NewJSONHandler(&buf, nil)))

	ctx := WithSearchUserID(context.Background(), "alice@example.com")
	NewContextLogger(log).WithContext(ctx).Info("search served", "top_k", 3)

	if strings.Contains(buf.String(), "alice@example.com") {
		t.Fatalf("raw user id leaked: %s", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if got, want := entry[string(SearchUserIDKey)], Pseudonymize("alice@example.com"); got != want {
		t.Errorf("user id = %v, want %v", got, want)
	}
	if entry["top_k"] != float64(3) {
		t.Errorf("other attributes must pass through, got %v", entry["top_k"])
	}
}

func TestRedactHandler_RecordAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewRedactHandler(slog.NewJSONHandler(&buf, nil)))

	log.Info("admitted", slog.Group("caller", slog.String(string(SearchUserIDKey), "bob")))

	if strings.Contains(buf.String(), `"bob"`) {
		t.Fatalf("raw user id leaked: %s", buf.String())
	}
	if !strings.Contains(buf.String(), Pseudonymize("bob")) {
		t.Errorf("expected digest in %s", buf.String())
	}
}

func TestPseudonymize(t *testing.T) {
	if Pseudonymize("u1") != Pseudonymize("u1") {
		t.Error("digest must be stable")
	}
	if Pseudonymize("u1") == Pseudonymize("u2") {
		t.Error("distinct ids must not share a digest")
	}
	if Pseudonymize("") != "" {
		t.Error("empty id stays empty")
	}
	if got := Pseudonymize("u1"); !strings.HasPrefix(got, "u_") || len(got) != 14 {
		t.Errorf("unexpected digest format %q", got)
	}
}
