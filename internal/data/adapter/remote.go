package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/healthjournal-backend/internal/domain"
	apperrors "github.com/yungbote/healthjournal-backend/internal/pkg/errors"
	"github.com/yungbote/healthjournal-backend/internal/platform/envutil"
	"github.com/yungbote/healthjournal-backend/internal/platform/httpx"
	"github.com/yungbote/healthjournal-backend/internal/platform/logger"
	"github.com/yungbote/healthjournal-backend/internal/services"
)

// remoteAdapter speaks the hosted document API: records are {id, fields}
// rows in named tables under one base. It is a V1-only backend; transient
// failures propagate unchanged so callers can apply their own retry policy
// (httpx classifies which errors are retryable).
type remoteAdapter struct {
	log        *logger.Logger
	cfg        Config
	baseURL    string
	httpClient *http.Client

	now func() time.Time
}

func newRemoteBackend(log *logger.Logger, cfg Config) (Adapter, error) {
	if strings.TrimSpace(cfg.RemoteAPIKey) == "" || strings.TrimSpace(cfg.RemoteBaseID) == "" {
		return nil, &BootstrapError{
			Code:  BootstrapErrorInvalidConfig,
			Mode:  ModeRemote,
			Cause: fmt.Errorf("REMOTE_API_KEY and REMOTE_BASE_ID are required"),
		}
	}

	baseURL := strings.TrimSpace(cfg.RemoteBaseURL)
	if baseURL == "" {
		baseURL = "https://api.airtable.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeout := time.Duration(envutil.Int("REMOTE_TIMEOUT_SECONDS", 30)) * time.Second

	a := &remoteAdapter{
		log:        log.With("adapter", "remote"),
		cfg:        cfg,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}

	// Fail fast at startup, not at first request.
	if _, err := a.listRecords(context.Background(), TableUsers, "", 1); err != nil {
		return nil, &BootstrapError{Code: classifyRemoteBootstrapError(err), Mode: ModeRemote, Cause: err}
	}
	return a, nil
}

func classifyRemoteBootstrapError(err error) BootstrapErrorCode {
	var he *RemoteHTTPError
	if errors.As(err, &he) && !httpx.IsRetryableHTTPStatus(he.StatusCode) {
		return BootstrapErrorInvalidConfig
	}
	return BootstrapErrorConnectFailed
}

// --- wire types ---

type apiRecord struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

type listResponse struct {
	Records []apiRecord `json:"records"`
	Offset  string      `json:"offset,omitempty"`
}

type writeRequest struct {
	Fields map[string]any `json:"fields"`
}

type RemoteHTTPError struct {
	StatusCode int
	Body       string
}

func (e *RemoteHTTPError) Error() string {
	if e == nil {
		return "remote api: <nil error>"
	}
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 2000 {
		msg = msg[:2000] + "..."
	}
	return fmt.Sprintf("remote api http %d: %s", e.StatusCode, msg)
}

func (e *RemoteHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// --- HTTP plumbing ---

func (a *remoteAdapter) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	u := a.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+a.cfg.RemoteAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RemoteHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}

func (a *remoteAdapter) tablePath(table string) string {
	return "/v0/" + a.cfg.RemoteBaseID + "/" + url.PathEscape(table)
}

func (a *remoteAdapter) listRecords(ctx context.Context, table, formula string, maxRecords int) ([]apiRecord, error) {
	query := url.Values{}
	if formula != "" {
		query.Set("filterByFormula", formula)
	}
	if maxRecords > 0 {
		query.Set("maxRecords", strconv.Itoa(maxRecords))
	}

	raw, err := a.do(ctx, http.MethodGet, a.tablePath(table), query, nil)
	if err != nil {
		return nil, err
	}
	var parsed listResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}
	return parsed.Records, nil
}

func (a *remoteAdapter) createRecord(ctx context.Context, table string, fields map[string]any) (*apiRecord, error) {
	raw, err := a.do(ctx, http.MethodPost, a.tablePath(table), nil, writeRequest{Fields: fields})
	if err != nil {
		return nil, err
	}
	var rec apiRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (a *remoteAdapter) updateRecord(ctx context.Context, table, recordID string, fields map[string]any) (*apiRecord, error) {
	raw, err := a.do(ctx, http.MethodPatch, a.tablePath(table)+"/"+url.PathEscape(recordID), nil, writeRequest{Fields: fields})
	if err != nil {
		return nil, err
	}
	var rec apiRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func equalsFormula(field, value string) string {
	return "{" + field + "}='" + strings.ReplaceAll(value, "'", "\\'") + "'"
}

func andFormula(clauses []string) string {
	if len(clauses) == 1 {
		return clauses[0]
	}
	return "AND(" + strings.Join(clauses, ",") + ")"
}

// --- user surface ---

func (a *remoteAdapter) findOne(ctx context.Context, table, formula string) (*apiRecord, error) {
	records, err := a.listRecords(ctx, table, formula, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &records[0], nil
}

func (a *remoteAdapter) FindUserByEmail(ctx context.Context, email string) (*types.User, error) {
	rec, err := a.findOne(ctx, TableUsers, equalsFormula("email", email))
	if err != nil {
		return nil, err
	}
	return fieldsToUser(rec.Fields), nil
}

func (a *remoteAdapter) FindUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	rec, err := a.findOne(ctx, TableUsers, equalsFormula("id", userID.String()))
	if err != nil {
		return nil, err
	}
	return fieldsToUser(rec.Fields), nil
}

func (a *remoteAdapter) CreateUser(ctx context.Context, user *types.User) (*types.User, error) {
	if _, err := a.findOne(ctx, TableUsers, equalsFormula("email", user.Email)); err == nil {
		return nil, apperrors.ErrAlreadyExists
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.ApplyLegacyDefaults()

	schema, err := schemaFor(TableUsers)
	if err != nil {
		return nil, err
	}
	rec, err := a.createRecord(ctx, TableUsers, schema.project(userToFields(user)))
	if err != nil {
		return nil, err
	}
	return fieldsToUser(rec.Fields), nil
}

func (a *remoteAdapter) UpdateUser(ctx context.Context, userID uuid.UUID, fields map[string]any) (*types.User, error) {
	rec, err := a.findOne(ctx, TableUsers, equalsFormula("id", userID.String()))
	if err != nil {
		return nil, err
	}

	schema, err := schemaFor(TableUsers)
	if err != nil {
		return nil, err
	}
	projected := schema.project(fields)
	delete(projected, "id")

	updated, err := a.updateRecord(ctx, TableUsers, rec.ID, projected)
	if err != nil {
		return nil, err
	}
	return fieldsToUser(updated.Fields), nil
}

// --- checkin surface (V1 semantics against remote records) ---

func (a *remoteAdapter) CreateCheckin(ctx context.Context, userID uuid.UUID, fields services.CheckinFields) (*types.DailyCheckin, error) {
	date := fields.Date
	if date.IsZero() {
		date = a.now()
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	medicationTaken := fields.MedicationTaken
	if medicationTaken == "" {
		medicationTaken = types.MedicationNotTracked
	}

	row := &types.DailyCheckin{
		ID:                  uuid.New(),
		UserID:              userID,
		CheckinDate:         day,
		MoodToday:           fields.MoodToday,
		ConfidenceToday:     fields.ConfidenceToday,
		MedicationTaken:     medicationTaken,
		MissedDoses:         fields.MissedDoses,
		PrimaryConcern:      fields.PrimaryConcern,
		AnxietyLevel:        fields.AnxietyLevel,
		UserNote:            fields.UserNote,
		InjectionConfidence: fields.InjectionConfidence,
		PartnerInvolved:     fields.PartnerInvolved,
	}
	if len(fields.Symptoms) > 0 {
		raw, err := json.Marshal(fields.Symptoms)
		if err != nil {
			return nil, err
		}
		row.Symptoms = raw
	}

	schema, err := schemaFor(TableCheckins)
	if err != nil {
		return nil, err
	}
	projected := schema.project(checkinToFields(row))

	// One row per (user, date): update in place when a record already
	// exists for the day.
	formula := andFormula([]string{
		equalsFormula("user_id", userID.String()),
		equalsFormula("date_submitted", day.Format(dateLayout)),
	})
	existing, err := a.findOne(ctx, TableCheckins, formula)
	switch {
	case err == nil:
		delete(projected, "id")
		updated, err := a.updateRecord(ctx, TableCheckins, existing.ID, projected)
		if err != nil {
			return nil, err
		}
		return fieldsToCheckin(updated.Fields), nil
	case errors.Is(err, apperrors.ErrNotFound):
		created, err := a.createRecord(ctx, TableCheckins, projected)
		if err != nil {
			return nil, err
		}
		return fieldsToCheckin(created.Fields), nil
	default:
		return nil, err
	}
}

func (a *remoteAdapter) loadCheckins(ctx context.Context, userID uuid.UUID, start, end time.Time, limit int) ([]*types.DailyCheckin, error) {
	records, err := a.listRecords(ctx, TableCheckins, equalsFormula("user_id", userID.String()), 0)
	if err != nil {
		return nil, err
	}

	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	var rows []*types.DailyCheckin
	for _, rec := range records {
		row := fieldsToCheckin(rec.Fields)
		if row.CheckinDate.Before(startDay) || row.CheckinDate.After(endDay) {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CheckinDate.After(rows[j].CheckinDate)
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (a *remoteAdapter) GetUserCheckins(ctx context.Context, userID uuid.UUID, q services.CheckinQuery) ([]*types.DailyCheckin, error) {
	end := a.now()
	if q.EndDate != nil {
		end = *q.EndDate
	}
	start := end.AddDate(0, 0, -30)
	if q.StartDate != nil {
		start = *q.StartDate
	}
	return a.loadCheckins(ctx, userID, start, end, q.Limit)
}

func (a *remoteAdapter) GetRecentCheckins(ctx context.Context, userID uuid.UUID, limit int) ([]*types.DailyCheckin, error) {
	if limit <= 0 {
		limit = 7
	}
	end := a.now()
	return a.loadCheckins(ctx, userID, end.AddDate(0, 0, -30), end, limit)
}

func (a *remoteAdapter) GetAnalytics(ctx context.Context, userID uuid.UUID, timeframe string) (*services.AnalyticsSummary, error) {
	end := a.now()
	start := end.AddDate(0, 0, -services.TimeframeDays(timeframe))
	rows, err := a.loadCheckins(ctx, userID, start, end, 0)
	if err != nil {
		return nil, err
	}
	return services.SummarizeCheckins(timeframe, rows), nil
}

// --- insight surface ---

func (a *remoteAdapter) CreateInsight(ctx context.Context, insight *types.Insight) (*types.Insight, error) {
	if insight.ID == uuid.Nil {
		insight.ID = uuid.New()
	}
	schema, err := schemaFor(TableInsights)
	if err != nil {
		return nil, err
	}
	rec, err := a.createRecord(ctx, TableInsights, schema.project(insightToFields(insight)))
	if err != nil {
		return nil, err
	}
	return fieldsToInsight(rec.Fields), nil
}

func (a *remoteAdapter) GetUserInsights(ctx context.Context, userID uuid.UUID, limit int) ([]*types.Insight, error) {
	records, err := a.listRecords(ctx, TableInsights, equalsFormula("user_id", userID.String()), 0)
	if err != nil {
		return nil, err
	}

	now := a.now()
	var insights []*types.Insight
	for _, rec := range records {
		i := fieldsToInsight(rec.Fields)
		if i.ExpiresAt != nil && !i.ExpiresAt.After(now) {
			continue
		}
		insights = append(insights, i)
	}
	sort.Slice(insights, func(i, j int) bool {
		return insights[i].Priority > insights[j].Priority
	})
	if limit > 0 && len(insights) > limit {
		insights = insights[:limit]
	}
	return insights, nil
}

// --- event-log surface: never available on this backend ---

func (a *remoteAdapter) CreateHealthEvent(ctx context.Context, userID uuid.UUID, in services.CreateEventInput) (*types.HealthEvent, error) {
	return nil, fmt.Errorf("createHealthEvent: %w", apperrors.ErrSchemaDisabled)
}

func (a *remoteAdapter) GetHealthTimeline(ctx context.Context, userID uuid.UUID, opts services.TimelineOptions) ([]*types.HealthEvent, error) {
	return nil, fmt.Errorf("getHealthTimeline: %w", apperrors.ErrSchemaDisabled)
}

func (a *remoteAdapter) CompleteAssessment(ctx context.Context, userID uuid.UUID, assessmentType string, responses map[string]int) (*services.AssessmentResult, error) {
	return nil, fmt.Errorf("completeAssessment: %w", apperrors.ErrSchemaDisabled)
}

func (a *remoteAdapter) RecordMedicationTaken(ctx context.Context, userID, medicationID uuid.UUID, opts services.MedicationTakenOptions) (*types.HealthEvent, error) {
	return nil, fmt.Errorf("recordMedicationTaken: %w", apperrors.ErrSchemaDisabled)
}

func (a *remoteAdapter) Query(ctx context.Context, table string, filter map[string]any, limit int) ([]Record, error) {
	schema, err := schemaFor(table)
	if err != nil {
		return nil, err
	}
	projected := schema.project(filter)

	var clauses []string
	for field, value := range projected {
		clauses = append(clauses, equalsFormula(field, fmt.Sprint(value)))
	}
	sort.Strings(clauses)

	formula := ""
	if len(clauses) > 0 {
		formula = andFormula(clauses)
	}

	records, err := a.listRecords(ctx, table, formula, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		out = append(out, Record{ID: rec.ID, Fields: schema.project(rec.Fields)})
	}
	return out, nil
}

func (a *remoteAdapter) Close() error {
	a.httpClient.CloseIdleConnections()
	return nil
}
