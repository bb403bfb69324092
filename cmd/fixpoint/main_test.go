package main

import "testing"

func TestBuildRootCmdIncludesSubcommands(t *testing.T) {
	cmd := buildRootCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	required := []string{
		"login", "logout", "whoami", "register", "verify-email",
		"reports", "staff", "volunteers", "chat", "notifications", "status",
	}
	for _, name := range required {
		if !names[name] {
			t.Fatalf("expected subcommand %q to be registered", name)
		}
	}
}

func TestReportsCmdIncludesSubcommands(t *testing.T) {
	cmd := buildReportsCmd(nil)
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	required := []string{
		"list", "mine", "show", "create", "vote",
		"status", "assign", "comment", "categories",
	}
	for _, name := range required {
		if !names[name] {
			t.Fatalf("expected subcommand %q to be registered", name)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 60); got != "short" {
		t.Fatalf("truncate(short) = %q", got)
	}
	long := "a title that is clearly much longer than ten bytes allows"
	got := truncate(long, 10)
	if len(got) > len(long) {
		t.Fatalf("truncate grew the string: %q", got)
	}
	if got == long {
		t.Fatal("expected truncation")
	}
}

func TestParseID(t *testing.T) {
	if _, err := parseID("42"); err != nil {
		t.Fatalf("parseID(42): %v", err)
	}
	for _, bad := range []string{"", "abc", "-1", "0"} {
		if _, err := parseID(bad); err == nil {
			t.Fatalf("parseID(%q) should fail", bad)
		}
	}
}
