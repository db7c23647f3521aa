package cmd

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/opsdeck/opsdeck/internal/resource"
)

// TestCommandTree verifies every command group is registered
func TestCommandTree(t *testing.T) {
	want := []string{"auth", "team", "product", "order", "console", "config", "version"}

	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected command %q to be registered", name)
		}
	}
}

// TestAuthSubcommands verifies the auth group's subcommands
func TestAuthSubcommands(t *testing.T) {
	want := []string{"login", "logout", "status", "register"}

	for _, name := range want {
		found := false
		for _, c := range authCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected auth subcommand %q", name)
		}
	}
}

// TestQueryFromFlagsDefaults verifies the shared list flag defaults
func TestQueryFromFlagsDefaults(t *testing.T) {
	cmd := &cobra.Command{Use: "scratch"}
	addListFlags(cmd, "name")

	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	q := queryFromFlags(cmd)

	if q.Page != 1 {
		t.Errorf("Expected page 1, got %d", q.Page)
	}
	if q.SortKey != "name" {
		t.Errorf("Expected sort key name, got %s", q.SortKey)
	}
	if q.SortOrder != resource.SortAsc {
		t.Errorf("Expected ascending order, got %s", q.SortOrder)
	}
}

// TestQueryFromFlagsParsing verifies explicit list flags
func TestQueryFromFlagsParsing(t *testing.T) {
	cmd := &cobra.Command{Use: "scratch"}
	addListFlags(cmd, "name")

	args := []string{"--page", "3", "--sort", "email", "--order", "desc", "--search", "ada"}
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	q := queryFromFlags(cmd)

	if q.Page != 3 {
		t.Errorf("Expected page 3, got %d", q.Page)
	}
	if q.SortKey != "email" {
		t.Errorf("Expected sort key email, got %s", q.SortKey)
	}
	if q.SortOrder != resource.SortDesc {
		t.Errorf("Expected descending order, got %s", q.SortOrder)
	}
	if q.Search != "ada" {
		t.Errorf("Expected search ada, got %s", q.Search)
	}
}

// TestQueryFromFlagsClampsPage verifies non-positive pages reset to 1
func TestQueryFromFlagsClampsPage(t *testing.T) {
	cmd := &cobra.Command{Use: "scratch"}
	addListFlags(cmd, "name")

	if err := cmd.ParseFlags([]string{"--page", "-2"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	if q := queryFromFlags(cmd); q.Page != 1 {
		t.Errorf("Expected page clamped to 1, got %d", q.Page)
	}
}
