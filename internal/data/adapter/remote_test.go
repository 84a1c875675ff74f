package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/healthjournal-backend/internal/data/repos/testutil"
	types "github.com/yungbote/healthjournal-backend/internal/domain"
	apperrors "github.com/yungbote/healthjournal-backend/internal/pkg/errors"
	"github.com/yungbote/healthjournal-backend/internal/services"
)

// fakeRecordAPI is an in-memory stand-in for the hosted document API:
// {id, fields} records in named tables, equality-only formula filtering.
type fakeRecordAPI struct {
	mu     sync.Mutex
	apiKey string
	baseID string
	nextID int
	tables map[string][]apiRecord
}

var formulaClause = regexp.MustCompile(`\{([^}]+)\}='([^']*)'`)

func newFakeRecordAPI(apiKey, baseID string) *fakeRecordAPI {
	return &fakeRecordAPI{
		apiKey: apiKey,
		baseID: baseID,
		tables: map[string][]apiRecord{},
	}
}

func (f *fakeRecordAPI) matches(rec apiRecord, formula string) bool {
	for _, clause := range formulaClause.FindAllStringSubmatch(formula, -1) {
		field, want := clause[1], clause[2]
		if fmt.Sprint(rec.Fields[field]) != want {
			return false
		}
	}
	return true
}

func (f *fakeRecordAPI) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+f.apiKey {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/v0/"), "/")
		if len(parts) < 2 || parts[0] != f.baseID {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		table := parts[1]

		f.mu.Lock()
		defer f.mu.Unlock()

		switch {
		case r.Method == http.MethodGet:
			formula := r.URL.Query().Get("filterByFormula")
			out := []apiRecord{}
			for _, rec := range f.tables[table] {
				if formula == "" || f.matches(rec, formula) {
					out = append(out, rec)
				}
			}
			_ = json.NewEncoder(w).Encode(listResponse{Records: out})

		case r.Method == http.MethodPost:
			var req writeRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			f.nextID++
			rec := apiRecord{ID: fmt.Sprintf("rec%06d", f.nextID), Fields: req.Fields}
			f.tables[table] = append(f.tables[table], rec)
			_ = json.NewEncoder(w).Encode(rec)

		case r.Method == http.MethodPatch && len(parts) == 3:
			var req writeRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			for i, rec := range f.tables[table] {
				if rec.ID != parts[2] {
					continue
				}
				for k, v := range req.Fields {
					rec.Fields[k] = v
				}
				f.tables[table][i] = rec
				_ = json.NewEncoder(w).Encode(rec)
				return
			}
			w.WriteHeader(http.StatusNotFound)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func newRemoteFixture(t *testing.T) (Adapter, *fakeRecordAPI) {
	t.Helper()

	fake := newFakeRecordAPI("test-key", "base123")
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	a, err := newRemoteBackend(testutil.Logger(t), Config{
		RemoteAPIKey:  "test-key",
		RemoteBaseID:  "base123",
		RemoteBaseURL: srv.URL,
	})
	if err != nil {
		t.Fatalf("bootstrap remote adapter: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a, fake
}

func TestRemoteBackendRequiresCredentials(t *testing.T) {
	_, err := newRemoteBackend(testutil.Logger(t), Config{RemoteAPIKey: "key-only"})

	var got *BootstrapError
	if !errors.As(err, &got) {
		t.Fatalf("expected BootstrapError, got=%T", err)
	}
	if got.Code != BootstrapErrorInvalidConfig {
		t.Fatalf("code: want=%q got=%q", BootstrapErrorInvalidConfig, got.Code)
	}
}

func TestRemoteBackendRejectedCredentialsFailFast(t *testing.T) {
	fake := newFakeRecordAPI("real-key", "base123")
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	_, err := newRemoteBackend(testutil.Logger(t), Config{
		RemoteAPIKey:  "wrong-key",
		RemoteBaseID:  "base123",
		RemoteBaseURL: srv.URL,
	})

	var got *BootstrapError
	if !errors.As(err, &got) {
		t.Fatalf("expected BootstrapError, got=%T", err)
	}
	if got.Code != BootstrapErrorInvalidConfig {
		t.Fatalf("code: want=%q got=%q", BootstrapErrorInvalidConfig, got.Code)
	}
}

func TestRemoteBackendUnavailableAPIFailFast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	_, err := newRemoteBackend(testutil.Logger(t), Config{
		RemoteAPIKey:  "key",
		RemoteBaseID:  "base123",
		RemoteBaseURL: srv.URL,
	})

	var got *BootstrapError
	if !errors.As(err, &got) {
		t.Fatalf("expected BootstrapError, got=%T", err)
	}
	if got.Code != BootstrapErrorConnectFailed {
		t.Fatalf("code: want=%q got=%q", BootstrapErrorConnectFailed, got.Code)
	}
}

func TestRemoteUserLifecycle(t *testing.T) {
	a, _ := newRemoteFixture(t)
	ctx := context.Background()

	created, err := a.CreateUser(ctx, &types.User{Email: "remote@example.com", Nickname: "r"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatalf("user id not assigned")
	}

	if _, err := a.CreateUser(ctx, &types.User{Email: "remote@example.com"}); !errors.Is(err, apperrors.ErrAlreadyExists) {
		t.Fatalf("duplicate email: expected ErrAlreadyExists, got=%v", err)
	}

	found, err := a.FindUserByEmail(ctx, "remote@example.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if found.ID != created.ID {
		t.Fatalf("found wrong user: want=%s got=%s", created.ID, found.ID)
	}

	if _, err := a.FindUserByEmail(ctx, "missing@example.com"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("missing user: expected ErrNotFound, got=%v", err)
	}

	updated, err := a.UpdateUser(ctx, created.ID, map[string]any{"nickname": "renamed"})
	if err != nil {
		t.Fatalf("update user: %v", err)
	}
	if updated.Nickname != "renamed" {
		t.Fatalf("nickname: want=renamed got=%q", updated.Nickname)
	}
}

func TestRemoteCheckinUpdatesInPlacePerDay(t *testing.T) {
	a, fake := newRemoteFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	day := time.Now().UTC().AddDate(0, 0, -1)

	for _, mood := range []string{"sad", "good"} {
		if _, err := a.CreateCheckin(ctx, userID, services.CheckinFields{
			Date:            day,
			MoodToday:       mood,
			ConfidenceToday: 5,
		}); err != nil {
			t.Fatalf("create checkin: %v", err)
		}
	}

	fake.mu.Lock()
	stored := len(fake.tables[TableCheckins])
	fake.mu.Unlock()
	if stored != 1 {
		t.Fatalf("remote records for one (user, date): want=1 got=%d", stored)
	}

	rows, err := a.GetUserCheckins(ctx, userID, services.CheckinQuery{})
	if err != nil {
		t.Fatalf("get checkins: %v", err)
	}
	if len(rows) != 1 || rows[0].MoodToday != "good" {
		t.Fatalf("second submission should win: got=%d rows", len(rows))
	}
}

func TestRemoteAnalyticsMatchesSharedSummary(t *testing.T) {
	a, _ := newRemoteFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	moods := []string{"stressed", "stressed", "stressed", "hopeful", "great"}
	for i, mood := range moods {
		if _, err := a.CreateCheckin(ctx, userID, services.CheckinFields{
			Date:            time.Now().UTC().AddDate(0, 0, i-len(moods)),
			MoodToday:       mood,
			ConfidenceToday: 6,
			MedicationTaken: types.MedicationTakenYes,
		}); err != nil {
			t.Fatalf("create checkin %d: %v", i, err)
		}
	}

	summary, err := a.GetAnalytics(ctx, userID, services.TimeframeMonth)
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if summary.CheckinCount != 5 {
		t.Fatalf("checkin count: want=5 got=%d", summary.CheckinCount)
	}
	if summary.MoodTrend != 3.33 {
		t.Fatalf("mood trend: want=3.33 got=%v", summary.MoodTrend)
	}
	if summary.AdherenceRate == nil || *summary.AdherenceRate != 100 {
		t.Fatalf("adherence rate: want=100 got=%v", summary.AdherenceRate)
	}
}

func TestRemoteEventOperationsDisabled(t *testing.T) {
	a, _ := newRemoteFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := a.CreateHealthEvent(ctx, userID, services.CreateEventInput{Type: types.EventTypeMood}); !errors.Is(err, apperrors.ErrSchemaDisabled) {
		t.Fatalf("CreateHealthEvent: expected ErrSchemaDisabled, got=%v", err)
	}
	if _, err := a.GetHealthTimeline(ctx, userID, services.TimelineOptions{}); !errors.Is(err, apperrors.ErrSchemaDisabled) {
		t.Fatalf("GetHealthTimeline: expected ErrSchemaDisabled, got=%v", err)
	}
	if _, err := a.CompleteAssessment(ctx, userID, "PHQ-4", nil); !errors.Is(err, apperrors.ErrSchemaDisabled) {
		t.Fatalf("CompleteAssessment: expected ErrSchemaDisabled, got=%v", err)
	}
	if _, err := a.RecordMedicationTaken(ctx, userID, uuid.New(), services.MedicationTakenOptions{}); !errors.Is(err, apperrors.ErrSchemaDisabled) {
		t.Fatalf("RecordMedicationTaken: expected ErrSchemaDisabled, got=%v", err)
	}
}

func TestRemoteQueryProjection(t *testing.T) {
	a, _ := newRemoteFixture(t)
	ctx := context.Background()

	created, err := a.CreateUser(ctx, &types.User{Email: "proj@example.com"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	records, err := a.Query(ctx, TableUsers, map[string]any{
		"email":  "proj@example.com",
		"secret": "dropped",
	}, 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records: want=1 got=%d", len(records))
	}
	if records[0].Fields["id"] != created.ID.String() {
		t.Fatalf("record id field: want=%s got=%v", created.ID, records[0].Fields["id"])
	}
	for key := range records[0].Fields {
		if _, ok := tableSchemas[TableUsers].allowed[key]; !ok {
			t.Fatalf("field %q leaked through projection", key)
		}
	}

	if _, err := a.Query(ctx, "Secrets", nil, 10); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("unknown table: expected ErrInvalidArgument, got=%v", err)
	}
}
