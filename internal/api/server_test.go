package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-designer/internal/audit"
	"github.com/nerrad567/gray-logic-designer/internal/auth"
	"github.com/nerrad567/gray-logic-designer/internal/design"
	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/metrics"
	"github.com/nerrad567/gray-logic-designer/internal/project"
	"github.com/nerrad567/gray-logic-designer/internal/roehn"
	_ "github.com/nerrad567/gray-logic-designer/migrations"
)

const testSecret = "test-secret-key-at-least-32-characters-long"

type failingCheck struct{}

func (failingCheck) HealthCheck(context.Context) error { return errors.New("broker unreachable") }

// testServer creates a Server over a migrated temporary database.
func testServer(t *testing.T, health map[string]HealthChecker) http.Handler {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{
		Path:        filepath.Join(t.TempDir(), "api.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	if health == nil {
		health = map[string]HealthChecker{}
	}
	health["database"] = db

	svc := project.NewService(design.NewStore(db.DB), roehn.DefaultOptions())
	svc.SetHistory(audit.NewSQLiteRepository(db.DB))
	srv, err := New(Deps{
		Config:   config.APIConfig{Host: "127.0.0.1", Timeouts: config.APITimeoutConfig{Read: 5, Write: 5, Idle: 5}},
		Security: config.SecurityConfig{JWT: config.JWTConfig{Secret: testSecret, AccessTokenTTL: 15}},
		Logger:   logging.Discard(),
		Service:  svc,
		Metrics:  metrics.New(),
		Health:   health,
		Version:  "test",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return srv.Handler()
}

func token(t *testing.T, subject string, role auth.Role) string {
	t.Helper()
	tok, err := auth.GenerateAccessToken(subject, role, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	return tok
}

// do sends a request. A string or []byte body is sent as is; anything
// else is encoded as JSON.
func do(t *testing.T, h http.Handler, method, path, tok string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("encoding body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return v
}

func expect(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, status, rec.Body.String())
	}
	if code != "" {
		if got := decode[Error](t, rec); got.Code != code {
			t.Errorf("code = %q, want %q", got.Code, code)
		}
	}
}

func create[T any](t *testing.T, h http.Handler, path, tok string, body any) T {
	t.Helper()
	rec := do(t, h, http.MethodPost, path, tok, body)
	expect(t, rec, http.StatusCreated, "")
	return decode[T](t, rec)
}

func TestHealth(t *testing.T) {
	h := testServer(t, nil)
	rec := do(t, h, http.MethodGet, "/api/v1/health", "", nil)
	expect(t, rec, http.StatusOK, "")
	body := decode[map[string]any](t, rec)
	if body["status"] != "ok" || body["version"] != "test" {
		t.Errorf("health = %v", body)
	}

	degraded := testServer(t, map[string]HealthChecker{"mqtt": failingCheck{}})
	rec = do(t, degraded, http.MethodGet, "/api/v1/health", "", nil)
	expect(t, rec, http.StatusServiceUnavailable, "")
	if !strings.Contains(rec.Body.String(), "broker unreachable") {
		t.Errorf("health body = %s", rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := testServer(t, nil)
	do(t, h, http.MethodGet, "/api/v1/health", "", nil)

	rec := do(t, h, http.MethodGet, "/api/v1/metrics", "", nil)
	expect(t, rec, http.StatusOK, "")
	if !strings.Contains(rec.Body.String(), `designer_http_requests_total{method="GET",route="/api/v1/health",status="200"} 1`) {
		t.Errorf("metrics output lacks the health request:\n%s", rec.Body.String())
	}
}

func TestAuthRequired(t *testing.T) {
	h := testServer(t, nil)
	foreign, err := auth.GenerateAccessToken("usr-1", auth.RoleUser, "another-secret-that-is-long-enough-xx", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"garbage", "Bearer garbage"},
		{"foreign secret", "Bearer " + foreign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			expect(t, rec, http.StatusUnauthorized, ErrCodeUnauthorized)
		})
	}
}

func TestProjects_OwnerScoping(t *testing.T) {
	h := testServer(t, nil)
	alice := token(t, "alice", auth.RoleUser)
	bob := token(t, "bob", auth.RoleUser)
	admin := token(t, "root", auth.RoleAdmin)

	p := create[design.Project](t, h, "/api/v1/projects", alice, createProjectRequest{Name: "Casa Praia"})
	if p.OwnerID != "alice" || p.Status != design.StatusActive {
		t.Fatalf("project = %+v", p)
	}

	count := func(tok string) float64 {
		rec := do(t, h, http.MethodGet, "/api/v1/projects", tok, nil)
		expect(t, rec, http.StatusOK, "")
		return decode[map[string]any](t, rec)["count"].(float64)
	}
	if got := count(alice); got != 1 {
		t.Errorf("alice sees %v projects", got)
	}
	if got := count(bob); got != 0 {
		t.Errorf("bob sees %v projects", got)
	}
	if got := count(admin); got != 1 {
		t.Errorf("admin sees %v projects", got)
	}

	path := fmt.Sprintf("/api/v1/projects/%d", p.ID)
	expect(t, do(t, h, http.MethodGet, path, bob, nil), http.StatusNotFound, ErrCodeNotFound)
	expect(t, do(t, h, http.MethodGet, path, admin, nil), http.StatusOK, "")
	expect(t, do(t, h, http.MethodGet, "/api/v1/projects/abc", alice, nil), http.StatusBadRequest, ErrCodeBadRequest)
	expect(t, do(t, h, http.MethodGet, "/api/v1/projects/999", alice, nil), http.StatusNotFound, ErrCodeNotFound)

	rec := do(t, h, http.MethodPost, "/api/v1/projects", bob, createProjectRequest{Name: "Casa Praia"})
	expect(t, rec, http.StatusConflict, ErrCodeConflict)
	rec = do(t, h, http.MethodPost, "/api/v1/projects", bob, createProjectRequest{Name: ""})
	expect(t, rec, http.StatusBadRequest, ErrCodeValidation)
	rec = do(t, h, http.MethodPost, "/api/v1/projects", bob, `{"name": "X", "owner_id": "alice"}`)
	expect(t, rec, http.StatusBadRequest, ErrCodeBadRequest)
}

// fixture is a project with one room and board, built over HTTP.
type fixture struct {
	h     http.Handler
	tok   string
	base  string
	room  design.Room
	board design.Board
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{h: testServer(t, nil), tok: token(t, "alice", auth.RoleUser)}
	p := create[design.Project](t, f.h, "/api/v1/projects", f.tok, createProjectRequest{Name: "Casa Praia"})
	f.base = fmt.Sprintf("/api/v1/projects/%d", p.ID)
	area := create[design.Area](t, f.h, f.base+"/areas", f.tok, createAreaRequest{Name: "Térreo"})
	f.room = create[design.Room](t, f.h, f.base+"/rooms", f.tok, createRoomRequest{AreaID: area.ID, Name: "Sala"})
	f.board = create[design.Board](t, f.h, f.base+"/boards", f.tok, createBoardRequest{RoomID: f.room.ID, Name: "QD"})
	return f
}

func TestCircuitsModulesLinks(t *testing.T) {
	f := newFixture(t)

	l1 := create[design.Circuit](t, f.h, f.base+"/circuits", f.tok,
		createCircuitRequest{RoomID: f.room.ID, Identifier: "L1", Name: "Luz", Kind: design.CircuitLight})
	l2 := create[design.Circuit](t, f.h, f.base+"/circuits", f.tok,
		createCircuitRequest{RoomID: f.room.ID, Identifier: "L2", Name: "Luz 2", Kind: design.CircuitLight})
	p1 := create[design.Circuit](t, f.h, f.base+"/circuits", f.tok,
		createCircuitRequest{RoomID: f.room.ID, Identifier: "P1", Name: "Persiana", Kind: design.CircuitShade})
	if l1.SAK != 1 || l2.SAK != 2 || p1.SAK != 3 || p1.SAKCount != 2 {
		t.Errorf("SAKs = %d, %d, %d+%d", l1.SAK, l2.SAK, p1.SAK, p1.SAKCount)
	}

	relay := create[design.Module](t, f.h, f.base+"/modules", f.tok,
		createModuleRequest{BoardID: design.ID(f.board.ID), Name: "RL4", Kind: design.ModuleRL4})
	if relay.NetworkAddress != 101 || relay.DeviceID != 101 {
		t.Errorf("relay address = %d/%d", relay.NetworkAddress, relay.DeviceID)
	}

	linkPath := func(c design.Circuit) string { return fmt.Sprintf("%s/circuits/%d/link", f.base, c.ID) }
	link := create[design.Link](t, f.h, linkPath(l1), f.tok, linkRequest{ModuleID: relay.ID})
	if link.Channel != 1 {
		t.Errorf("first free channel = %d, want 1", link.Channel)
	}

	tests := []struct {
		name    string
		circuit design.Circuit
		req     linkRequest
		status  int
		code    string
	}{
		{"second channel", l2, linkRequest{ModuleID: relay.ID, Channel: 2}, http.StatusCreated, ""},
		{"shade on relay", p1, linkRequest{ModuleID: relay.ID, Channel: 2}, http.StatusUnprocessableEntity, ErrCodeIncompatibleKind},
		{"occupied", l1, linkRequest{ModuleID: relay.ID, Channel: 2}, http.StatusConflict, ErrCodeDuplicateAddress},
		{"capacity", l1, linkRequest{ModuleID: relay.ID, Channel: 9}, http.StatusConflict, ErrCodeCapacityExceeded},
		{"unknown module", l1, linkRequest{ModuleID: 999, Channel: 1}, http.StatusNotFound, ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, f.h, http.MethodPut, linkPath(tt.circuit), f.tok, tt.req)
			expect(t, rec, tt.status, tt.code)
		})
	}

	rec := do(t, f.h, http.MethodGet, fmt.Sprintf("%s/modules/%d/channels", f.base, relay.ID), f.tok, nil)
	expect(t, rec, http.StatusOK, "")
	free := decode[struct {
		Capacity int   `json:"capacity"`
		Free     []int `json:"free"`
	}](t, rec)
	if free.Capacity != 4 || len(free.Free) != 2 || free.Free[0] != 3 {
		t.Errorf("free channels = %+v", free)
	}

	modulePath := fmt.Sprintf("%s/modules/%d", f.base, relay.ID)
	expect(t, do(t, f.h, http.MethodDelete, modulePath, f.tok, nil), http.StatusConflict, ErrCodeModuleInUse)
	expect(t, do(t, f.h, http.MethodDelete, linkPath(l1), f.tok, nil), http.StatusNoContent, "")
	expect(t, do(t, f.h, http.MethodDelete, linkPath(l2), f.tok, nil), http.StatusNoContent, "")
	expect(t, do(t, f.h, http.MethodDelete, modulePath, f.tok, nil), http.StatusNoContent, "")

	rec = do(t, f.h, http.MethodGet, f.base+"/links", f.tok, nil)
	expect(t, rec, http.StatusOK, "")
	if n := decode[map[string]any](t, rec)["count"].(float64); n != 0 {
		t.Errorf("links after unlink = %v", n)
	}
}

func TestCircuit_ForeignRoom(t *testing.T) {
	f := newFixture(t)
	other := create[design.Project](t, f.h, "/api/v1/projects", f.tok, createProjectRequest{Name: "Outra"})
	otherBase := fmt.Sprintf("/api/v1/projects/%d", other.ID)

	rec := do(t, f.h, http.MethodPost, otherBase+"/circuits", f.tok,
		createCircuitRequest{RoomID: f.room.ID, Identifier: "L1", Name: "Luz", Kind: design.CircuitLight})
	expect(t, rec, http.StatusNotFound, ErrCodeNotFound)
}

func TestKeypadsAndScenes(t *testing.T) {
	f := newFixture(t)
	light := create[design.Circuit](t, f.h, f.base+"/circuits", f.tok,
		createCircuitRequest{RoomID: f.room.ID, Identifier: "L1", Name: "Luz", Kind: design.CircuitLight})

	k := create[design.Keypad](t, f.h, f.base+"/keypads", f.tok, createKeypadRequest{RoomID: f.room.ID, Name: "Teclado"})
	if k.NetworkAddress != design.KeypadNetworkFloor || k.ButtonCount != 4 || len(k.Buttons) != 4 {
		t.Fatalf("keypad = addr %d, %d buttons, %d rows", k.NetworkAddress, k.ButtonCount, len(k.Buttons))
	}
	keypadPath := fmt.Sprintf("%s/keypads/%d", f.base, k.ID)

	rec := do(t, f.h, http.MethodPut, keypadPath+"/buttons/1", f.tok,
		design.KeypadButton{CircuitID: design.ID(light.ID), Engraving: "LUZ"})
	expect(t, rec, http.StatusOK, "")
	btn := decode[design.KeypadButton](t, rec)
	if btn.Mode != design.ModeToggle || btn.CircuitID == nil || *btn.CircuitID != light.ID {
		t.Errorf("button = %+v", btn)
	}
	rec = do(t, f.h, http.MethodPut, keypadPath+"/buttons/1", f.tok, design.KeypadButton{Engraving: "TOO LONG TEXT"})
	expect(t, rec, http.StatusBadRequest, ErrCodeValidation)
	rec = do(t, f.h, http.MethodPut, keypadPath+"/buttons/9", f.tok, design.KeypadButton{})
	expect(t, rec, http.StatusNotFound, ErrCodeNotFound)

	rec = do(t, f.h, http.MethodPut, keypadPath+"/buttons", f.tok, buttonCountRequest{ButtonCount: 2})
	expect(t, rec, http.StatusOK, "")
	if got := decode[design.Keypad](t, rec); got.ButtonCount != 2 || len(got.Buttons) != 2 {
		t.Errorf("resized = %d buttons", got.ButtonCount)
	}
	rec = do(t, f.h, http.MethodPut, keypadPath+"/buttons", f.tok, buttonCountRequest{ButtonCount: 3})
	expect(t, rec, http.StatusBadRequest, ErrCodeValidation)

	sc := create[design.Scene](t, f.h, f.base+"/scenes", f.tok, createSceneRequest{
		RoomID: f.room.ID,
		Name:   "Cinema",
		Actions: []design.Action{
			{Kind: design.ActionSingle, Level: 30, CircuitID: design.ID(light.ID)},
		},
	})
	scenePath := fmt.Sprintf("%s/scenes/%d", f.base, sc.ID)
	expect(t, do(t, f.h, http.MethodGet, scenePath, f.tok, nil), http.StatusOK, "")
	expect(t, do(t, f.h, http.MethodDelete, scenePath, f.tok, nil), http.StatusNoContent, "")
	expect(t, do(t, f.h, http.MethodGet, scenePath, f.tok, nil), http.StatusNotFound, ErrCodeNotFound)
}

func TestExportImport(t *testing.T) {
	f := newFixture(t)
	light := create[design.Circuit](t, f.h, f.base+"/circuits", f.tok,
		createCircuitRequest{RoomID: f.room.ID, Identifier: "L1", Name: "Luz Sala", Kind: design.CircuitLight})
	relay := create[design.Module](t, f.h, f.base+"/modules", f.tok,
		createModuleRequest{BoardID: design.ID(f.board.ID), Name: "RL12", Kind: design.ModuleRL12})
	rec := do(t, f.h, http.MethodPut, fmt.Sprintf("%s/circuits/%d/link", f.base, light.ID), f.tok,
		linkRequest{ModuleID: relay.ID, Channel: 1})
	expect(t, rec, http.StatusCreated, "")

	expect(t, do(t, f.h, http.MethodGet, f.base+"/export?format=xml", f.tok, nil), http.StatusBadRequest, ErrCodeValidation)

	rec = do(t, f.h, http.MethodGet, f.base+"/export", f.tok, nil)
	expect(t, rec, http.StatusOK, "")
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `Casa_Praia.rwp`) {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if rec.Header().Get("X-Skipped") != "0" {
		t.Errorf("X-Skipped = %q", rec.Header().Get("X-Skipped"))
	}
	document := rec.Body.Bytes()
	if _, _, err := roehn.Decode(document); err != nil {
		t.Fatalf("exported document does not decode: %v", err)
	}

	expect(t, do(t, f.h, http.MethodPost, "/api/v1/imports", f.tok, document), http.StatusConflict, ErrCodeConflict)
	expect(t, do(t, f.h, http.MethodDelete, f.base, f.tok, nil), http.StatusNoContent, "")

	rec = do(t, f.h, http.MethodPost, "/api/v1/imports?format=roehn", f.tok, document)
	expect(t, rec, http.StatusCreated, "")
	body := decode[struct {
		Project design.Project `json:"project"`
		Counts  design.Counts  `json:"counts"`
	}](t, rec)
	if body.Project.Name != "Casa Praia" || body.Project.OwnerID != "alice" {
		t.Errorf("imported project = %+v", body.Project)
	}
	if body.Counts.Circuits != 1 || body.Counts.Modules != 1 || body.Counts.Links != 1 {
		t.Errorf("imported counts = %+v", body.Counts)
	}

	rec = do(t, f.h, http.MethodGet, fmt.Sprintf("/api/v1/projects/%d/export?format=snapshot", body.Project.ID), f.tok, nil)
	expect(t, rec, http.StatusOK, "")
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `Casa_Praia.json`) {
		t.Errorf("Content-Disposition = %q", cd)
	}

	history := fmt.Sprintf("/api/v1/projects/%d/history", body.Project.ID)
	rec = do(t, f.h, http.MethodGet, history, f.tok, nil)
	expect(t, rec, http.StatusOK, "")
	hist := decode[audit.ListResult](t, rec)
	if hist.Total != 2 || hist.Entries[0].Action != audit.ActionExport || hist.Entries[1].Action != audit.ActionImport {
		t.Fatalf("history = %+v", hist)
	}
	if hist.Entries[1].UserID != "alice" || hist.Entries[0].Format != "snapshot" {
		t.Errorf("history entries = %+v", hist.Entries)
	}
	expect(t, do(t, f.h, http.MethodGet, history+"?action=delete", f.tok, nil), http.StatusBadRequest, ErrCodeValidation)
	expect(t, do(t, f.h, http.MethodGet, history+"?limit=ten", f.tok, nil), http.StatusBadRequest, ErrCodeBadRequest)

	expect(t, do(t, f.h, http.MethodPost, "/api/v1/imports", f.tok, "{not json"), http.StatusBadRequest, ErrCodeMalformedDocument)
	expect(t, do(t, f.h, http.MethodPost, "/api/v1/imports?format=snapshot", f.tok, "[]"), http.StatusBadRequest, ErrCodeMalformedDocument)
}

func TestCatalog(t *testing.T) {
	h := testServer(t, nil)
	rec := do(t, h, http.MethodGet, "/api/v1/catalog", token(t, "alice", auth.RoleUser), nil)
	expect(t, rec, http.StatusOK, "")
	body := decode[map[string]json.RawMessage](t, rec)
	for _, key := range []string{"circuit_kinds", "modules", "controllers", "keypad_button_counts", "keypad_icons"} {
		if _, ok := body[key]; !ok {
			t.Errorf("catalog lacks %q", key)
		}
	}
}

func TestFileName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Casa Praia", "Casa_Praia"},
		{"apt-101_b", "apt-101_b"},
		{"", "project"},
		{"Édifício/1", "_dif_cio_1"},
	}
	for _, tt := range tests {
		if got := fileName(tt.in); got != tt.want {
			t.Errorf("fileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
