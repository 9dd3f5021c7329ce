package config

import (
	"strings"
	"testing"
)

func TestValidateYAMLContent_AppliesDefaults(t *testing.T) {
	t.Parallel()

	content := []byte(`sheet:
  spreadsheet_id: "abc"
  credentials_file: "/etc/servicedesk/key.json"
`)

	cfg, err := ValidateYAMLContent(content)
	if err != nil {
		t.Fatalf("expected config to validate: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Sheet.SheetName != "Sheet1" {
		t.Fatalf("expected default sheet name, got %q", cfg.Sheet.SheetName)
	}
	if cfg.Defaults.Priority != "Medium" || cfg.Defaults.Technician != "Abhishek" || cfg.Defaults.Status != "CLOSED" {
		t.Fatalf("unexpected defaults: %+v", cfg.Defaults)
	}
}

func TestValidateYAMLContent_RequiresSpreadsheetID(t *testing.T) {
	t.Parallel()

	content := []byte(`sheet:
  credentials_file: "/etc/servicedesk/key.json"
`)

	_, err := ValidateYAMLContent(content)
	if err == nil {
		t.Fatalf("expected validation error for missing spreadsheet id")
	}
	if !strings.Contains(err.Error(), "SpreadsheetID") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateYAMLContent_AcceptsInlineCredentials(t *testing.T) {
	t.Parallel()

	content := []byte(`sheet:
  spreadsheet_id: "abc"
  credentials_json: '{"type": "service_account"}'
`)

	if _, err := ValidateYAMLContent(content); err != nil {
		t.Fatalf("expected config to validate: %v", err)
	}
}

func TestValidateYAMLContent_RejectsDuplicateUsers(t *testing.T) {
	t.Parallel()

	content := []byte(`sheet:
  spreadsheet_id: "abc"
  credentials_file: "key.json"
users:
  - username: "alice"
    password: "a"
    technician: "Alice"
  - username: "ALICE"
    password: "b"
    technician: "Alice B"
`)

	_, err := ValidateYAMLContent(content)
	if err == nil {
		t.Fatalf("expected duplicate username error")
	}
	if !strings.Contains(err.Error(), "duplicate username") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateYAMLContent_RejectsUserWithoutTechnician(t *testing.T) {
	t.Parallel()

	content := []byte(`sheet:
  spreadsheet_id: "abc"
  credentials_file: "key.json"
users:
  - username: "alice"
    password: "a"
`)

	if _, err := ValidateYAMLContent(content); err == nil {
		t.Fatalf("expected validation error for missing technician")
	}
}

func TestExampleYAMLValidates(t *testing.T) {
	t.Parallel()

	content := strings.Replace(ExampleYAML(), `credentials_file: ""`, `credentials_file: "key.json"`, 1)
	cfg, err := ValidateYAMLContent([]byte(content))
	if err != nil {
		t.Fatalf("expected example config to validate: %v", err)
	}
	user, ok := cfg.User(" Abhishek ")
	if !ok || user.Technician != "Abhishek" || !user.Admin {
		t.Fatalf("expected example admin user, got %+v ok=%v", user, ok)
	}
}
