package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-designer/internal/auth"
	"github.com/nerrad567/gray-logic-designer/internal/design"
	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-designer/internal/project"
	"github.com/nerrad567/gray-logic-designer/internal/roehn"
)

const testSecret = "test-secret-for-development-only-0123"

// writeConfig writes a minimal configuration pointing at a temp database.
func writeConfig(t *testing.T) (configPath, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "designer.db")
	configPath = filepath.Join(dir, "config.yaml")

	content := `
database:
  path: "` + dbPath + `"
  wal_mode: true
  busy_timeout: 5

logging:
  level: warn
  format: text

security:
  jwt:
    secret: "` + testSecret + `"
    access_token_ttl: 15
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath, dbPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var stdout, stderr bytes.Buffer
	err := run(ctx, args, &stdout, &stderr)
	if err != nil {
		t.Logf("stderr: %s", stderr.String())
	}
	return stdout.String(), err
}

// TestRun_InvalidConfig verifies an explicit missing config path fails.
func TestRun_InvalidConfig(t *testing.T) {
	_, err := execute(t, "--config", "/nonexistent/path/config.yaml", "migrate")
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
	if !strings.Contains(err.Error(), "loading config") {
		t.Errorf("error = %v, want loading config failure", err)
	}
}

func TestRun_ConfigFromEnv(t *testing.T) {
	t.Setenv("DESIGNER_CONFIG", "/nonexistent/path/config.yaml")
	if _, err := execute(t, "migrate"); err == nil {
		t.Fatal("run() should fail when DESIGNER_CONFIG names a missing file")
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	if _, err := execute(t, "compile-everything"); err == nil {
		t.Fatal("run() should fail for an unknown command")
	}
}

func TestMigrate(t *testing.T) {
	configPath, _ := writeConfig(t)

	if _, err := execute(t, "-c", configPath, "migrate"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	out, err := execute(t, "-c", configPath, "migrate", "--status")
	if err != nil {
		t.Fatalf("migrate --status: %v", err)
	}
	if !strings.Contains(out, "applied") {
		t.Errorf("status output = %q, want applied migrations", out)
	}
	if strings.Contains(out, "pending") {
		t.Errorf("status output = %q, want nothing pending", out)
	}

	if _, err := execute(t, "-c", configPath, "migrate", "--down", "--status"); err == nil {
		t.Error("--down with --status should fail")
	}
}

func TestToken(t *testing.T) {
	configPath, _ := writeConfig(t)

	out, err := execute(t, "-c", configPath, "token", "--subject", "alice", "--role", "admin")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	claims, err := auth.ParseToken(strings.TrimSpace(out), testSecret)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	p := claims.Principal()
	if p.Subject != "alice" || p.Role != auth.RoleAdmin {
		t.Errorf("principal = %+v, want alice/admin", p)
	}
	if ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time); ttl != 15*time.Minute {
		t.Errorf("ttl = %v, want 15m", ttl)
	}

	if _, err := execute(t, "-c", configPath, "token", "--subject", "alice", "--role", "root"); err == nil {
		t.Error("token with unknown role should fail")
	}
	if _, err := execute(t, "-c", configPath, "token"); err == nil {
		t.Error("token without --subject should fail")
	}
}

// seedProject creates a small project directly through the service.
func seedProject(t *testing.T, dbPath string) int64 {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{Path: dbPath, WALMode: true, BusyTimeout: 5})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	svc := project.NewService(design.NewStore(db.DB), roehn.DefaultOptions())

	p := design.Project{Name: "Casa Praia", OwnerID: "user-1"}
	if err := svc.CreateProject(ctx, &p); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	area := design.Area{ProjectID: p.ID, Name: "Térreo"}
	if err := svc.CreateArea(ctx, &area); err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	room := design.Room{AreaID: area.ID, Name: "Sala"}
	if err := svc.CreateRoom(ctx, &room); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	board := design.Board{RoomID: room.ID, Name: "QD Térreo"}
	if err := svc.CreateBoard(ctx, &board); err != nil {
		t.Fatalf("CreateBoard: %v", err)
	}
	c := design.Circuit{RoomID: room.ID, Identifier: "L1", Name: "Spots", Kind: design.CircuitLight}
	if err := svc.CreateCircuit(ctx, &c); err != nil {
		t.Fatalf("CreateCircuit: %v", err)
	}
	return p.ID
}

func deleteProject(t *testing.T, dbPath string, id int64) {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{Path: dbPath, WALMode: true, BusyTimeout: 5})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()
	svc := project.NewService(design.NewStore(db.DB), roehn.DefaultOptions())
	if err := svc.DeleteProject(ctx, id); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
}

func TestExportImport(t *testing.T) {
	for _, format := range []string{"roehn", "snapshot"} {
		t.Run(format, func(t *testing.T) {
			configPath, dbPath := writeConfig(t)
			id := seedProject(t, dbPath)
			idArg := strconv.FormatInt(id, 10)

			out, err := execute(t, "-c", configPath, "export", idArg, "--format", format)
			if err != nil {
				t.Fatalf("export to stdout: %v", err)
			}
			if !strings.Contains(out, "Casa Praia") {
				t.Errorf("exported document does not name the project: %.200s", out)
			}

			ext := ".rwp"
			if format == "snapshot" {
				ext = ".json"
			}
			file := filepath.Join(t.TempDir(), "casa"+ext)
			if _, err := execute(t, "-c", configPath, "export", idArg, "-f", format, "-o", file); err != nil {
				t.Fatalf("export to file: %v", err)
			}

			if _, err := execute(t, "-c", configPath, "import", file, "--owner", "user-2"); err == nil {
				t.Fatal("importing a duplicate project name should fail")
			}

			deleteProject(t, dbPath, id)
			out, err = execute(t, "-c", configPath, "import", file, "--owner", "user-2")
			if err != nil {
				t.Fatalf("import: %v", err)
			}
			newID, err := strconv.ParseInt(strings.TrimSpace(out), 10, 64)
			if err != nil || newID < 1 {
				t.Errorf("import output = %q, want new project id", out)
			}
		})
	}
}

func TestExport_Rejections(t *testing.T) {
	configPath, _ := writeConfig(t)

	tests := []struct {
		name string
		args []string
	}{
		{"not a number", []string{"export", "abc"}},
		{"zero id", []string{"export", "0"}},
		{"unknown format", []string{"export", "1", "--format", "xml"}},
		{"missing project", []string{"export", "99"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"-c", configPath}, tt.args...)
			if _, err := execute(t, args...); err == nil {
				t.Errorf("%v should fail", tt.args)
			}
		})
	}
}

func TestImport_Rejections(t *testing.T) {
	configPath, _ := writeConfig(t)
	dir := t.TempDir()
	garbage := filepath.Join(dir, "broken.rwp")
	if err := os.WriteFile(garbage, []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"missing owner", []string{"import", garbage}},
		{"missing file", []string{"import", filepath.Join(dir, "absent.rwp"), "--owner", "user-1"}},
		{"malformed document", []string{"import", garbage, "--owner", "user-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"-c", configPath}, tt.args...)
			if _, err := execute(t, args...); err == nil {
				t.Errorf("%v should fail", tt.args)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"casa.rwp", "roehn"},
		{"casa.json", "snapshot"},
		{"CASA.JSON", "snapshot"},
		{"casa", "roehn"},
	}
	for _, tt := range tests {
		if got := formatFromPath(tt.path); got != tt.want {
			t.Errorf("formatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
