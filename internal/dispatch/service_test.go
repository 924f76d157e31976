package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialdesk/dialdesk-be/internal/api/domain"
	"github.com/dialdesk/dialdesk-be/internal/api/model"
	"github.com/dialdesk/dialdesk-be/internal/api/storage"
	"github.com/dialdesk/dialdesk-be/internal/distribute"
	"github.com/dialdesk/dialdesk-be/internal/ingest"
)

type fakeStore struct {
	agents      []model.Agent
	assignments []model.Assignment

	listAgentsErr error
}

func (f *fakeStore) ListAgents(ctx context.Context) ([]model.Agent, error) {
	if f.listAgentsErr != nil {
		return nil, f.listAgentsErr
	}
	return f.agents, nil
}

func (f *fakeStore) ReplaceCallQueue(ctx context.Context, assignments []model.Assignment) error {
	seen := make(map[float64]bool)
	for _, a := range assignments {
		if a.RecordNo != nil {
			if seen[*a.RecordNo] {
				return &domain.DuplicateKeyError{Field: "record_no"}
			}
			seen[*a.RecordNo] = true
		}
	}

	kept := f.assignments[:0]
	for _, a := range f.assignments {
		if a.Kind != string(ingest.SchemaCallQueue) {
			kept = append(kept, a)
		}
	}
	f.assignments = append(kept, assignments...)
	return nil
}

func (f *fakeStore) AppendGeneric(ctx context.Context, assignments []model.Assignment) error {
	f.assignments = append(f.assignments, assignments...)
	return nil
}

func (f *fakeStore) BulkLinkAgents(ctx context.Context, links []storage.AgentLink) error {
	for _, link := range links {
		for i := range f.assignments {
			if f.assignments[i].AssignmentID == link.AssignmentID {
				agentID := link.AgentID
				f.assignments[i].AgentID = &agentID
			}
		}
	}
	return nil
}

func (f *fakeStore) ListCallQueue(ctx context.Context) ([]model.AssignmentWithAgent, error) {
	var out []model.AssignmentWithAgent
	for _, a := range f.assignments {
		if a.Kind == string(ingest.SchemaCallQueue) {
			out = append(out, model.AssignmentWithAgent{Assignment: a})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].RecordNo, out[j].RecordNo
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return *a < *b
	})
	return out, nil
}

func (f *fakeStore) GetAssignmentByID(ctx context.Context, assignmentID string) (*model.Assignment, error) {
	for i := range f.assignments {
		if f.assignments[i].AssignmentID == assignmentID {
			a := f.assignments[i]
			return &a, nil
		}
	}
	return nil, domain.ErrAssignmentNotFound
}

func (f *fakeStore) MarkCompleted(ctx context.Context, assignmentID string) (bool, error) {
	for i := range f.assignments {
		if f.assignments[i].AssignmentID == assignmentID {
			if f.assignments[i].Status == domain.StatusCompleted {
				return true, nil
			}
			f.assignments[i].Status = domain.StatusCompleted
			return false, nil
		}
	}
	return false, domain.ErrAssignmentNotFound
}

func (f *fakeStore) DeleteCallQueue(ctx context.Context) error {
	kept := f.assignments[:0]
	for _, a := range f.assignments {
		if a.Kind != string(ingest.SchemaCallQueue) {
			kept = append(kept, a)
		}
	}
	f.assignments = kept
	return nil
}

type fakePublisher struct {
	published [][]byte
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, body []byte, contentType string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, body)
	return nil
}

func testAgents(n int) []model.Agent {
	names := []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7"}
	agents := make([]model.Agent, n)
	for i := range agents {
		agents[i] = model.Agent{AgentID: names[i], Name: "Agent " + names[i]}
	}
	return agents
}

func newTestService(store Store, publisher EventPublisher) *Service {
	return NewService(&Config{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:     store,
		Publisher: publisher,
	})
}

const genericCSV = "firstName,phone,notes\n" +
	"Alice,+911234567890,vip\n" +
	"Bob,+911234567891,\n" +
	"Carol,+911234567892,\n" +
	"Dan,+911234567893,\n" +
	"Eve,+911234567894,\n" +
	"Frank,+911234567895,\n" +
	"Grace,+911234567896,\n"

const callQueueCSV = "Record no,Name,Mobile no,Email\n" +
	"4,Dora,+911234567893,dora@example.com\n" +
	"1,Alice,+911234567890,alice@example.com\n" +
	"3,Carol,+911234567892,carol@example.com\n" +
	"2,Bob,+911234567891,bob@example.com\n"

func TestIngestAndDistribute_GenericList(t *testing.T) {
	store := &fakeStore{agents: testAgents(3)}
	publisher := &fakePublisher{}
	svc := newTestService(store, publisher)

	result, err := svc.IngestAndDistribute(context.Background(),
		strings.NewReader(genericCSV), ingest.FormatCSV, ingest.SchemaGenericList)
	require.NoError(t, err)

	assert.Equal(t, 7, result.TotalRows)
	assert.Equal(t, 3, result.TotalAgents)
	assert.Zero(t, result.DroppedRows)

	require.Len(t, store.assignments, 7)

	// Contiguous balanced blocks in upload order
	counts := make(map[string]int)
	for _, a := range store.assignments {
		require.NotNil(t, a.AgentID)
		counts[*a.AgentID]++
		assert.Equal(t, string(ingest.SchemaGenericList), a.Kind)
		assert.Equal(t, domain.StatusPending, a.Status)
	}
	assert.Equal(t, map[string]int{"a1": 3, "a2": 2, "a3": 2}, counts)

	require.Len(t, publisher.published, 1)
	var event DistributionEvent
	require.NoError(t, json.Unmarshal(publisher.published[0], &event))
	assert.Equal(t, string(ingest.SchemaGenericList), event.Kind)
	assert.Equal(t, 7, event.TotalRows)
	assert.NotEmpty(t, event.RunID)
}

func TestIngestAndDistribute_GenericListAppends(t *testing.T) {
	store := &fakeStore{agents: testAgents(2)}
	svc := newTestService(store, nil)

	_, err := svc.IngestAndDistribute(context.Background(),
		strings.NewReader(genericCSV), ingest.FormatCSV, ingest.SchemaGenericList)
	require.NoError(t, err)

	_, err = svc.IngestAndDistribute(context.Background(),
		strings.NewReader(genericCSV), ingest.FormatCSV, ingest.SchemaGenericList)
	require.NoError(t, err)

	assert.Len(t, store.assignments, 14)
}

func TestIngestAndDistribute_CallQueueReplaces(t *testing.T) {
	recordNo := func(v float64) *float64 { return &v }
	store := &fakeStore{
		agents: testAgents(2),
		assignments: []model.Assignment{
			{AssignmentID: "stale-1", Kind: string(ingest.SchemaCallQueue), RecordNo: recordNo(99)},
			{AssignmentID: "keep-1", Kind: string(ingest.SchemaGenericList), Name: "kept"},
		},
	}
	svc := newTestService(store, nil)

	result, err := svc.IngestAndDistribute(context.Background(),
		strings.NewReader(callQueueCSV), ingest.FormatCSV, ingest.SchemaCallQueue)
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalRows)
	assert.Equal(t, 2, result.TotalAgents)

	// Stale call-queue rows are gone, other kinds untouched
	require.Len(t, store.assignments, 5)
	for _, a := range store.assignments {
		assert.NotEqual(t, "stale-1", a.AssignmentID)
	}

	// Round-robin over record-number order: odd ordinals to the first
	// agent, even ordinals to the second
	queue, _ := store.ListCallQueue(context.Background())
	agentByOrdinal := make(map[float64]string)
	for _, a := range queue {
		agentByOrdinal[*a.RecordNo] = *a.AgentID
	}
	assert.Equal(t, "a1", agentByOrdinal[1])
	assert.Equal(t, "a2", agentByOrdinal[2])
	assert.Equal(t, "a1", agentByOrdinal[3])
	assert.Equal(t, "a2", agentByOrdinal[4])
}

func TestIngestAndDistribute_DropsInvalidRows(t *testing.T) {
	input := "firstName,phone\n" +
		"Alice,+911234567890\n" +
		",missing-name\n" +
		"Bob,\n" +
		"Carol,+911234567892\n"

	store := &fakeStore{agents: testAgents(1)}
	svc := newTestService(store, nil)

	result, err := svc.IngestAndDistribute(context.Background(),
		strings.NewReader(input), ingest.FormatCSV, ingest.SchemaGenericList)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 2, result.DroppedRows)
	assert.Len(t, store.assignments, 2)
}

func TestIngestAndDistribute_NoValidRows(t *testing.T) {
	input := "firstName,phone\n,\n,\n"

	store := &fakeStore{agents: testAgents(2)}
	svc := newTestService(store, nil)

	_, err := svc.IngestAndDistribute(context.Background(),
		strings.NewReader(input), ingest.FormatCSV, ingest.SchemaGenericList)

	require.ErrorIs(t, err, ingest.ErrNoValidRows)
	assert.Empty(t, store.assignments)
}

func TestIngestAndDistribute_NoAgents(t *testing.T) {
	store := &fakeStore{}
	publisher := &fakePublisher{}
	svc := newTestService(store, publisher)

	_, err := svc.IngestAndDistribute(context.Background(),
		strings.NewReader(callQueueCSV), ingest.FormatCSV, ingest.SchemaCallQueue)

	require.ErrorIs(t, err, distribute.ErrNoAgents)
	assert.Empty(t, store.assignments)
	assert.Empty(t, publisher.published)
}

func TestIngestAndDistribute_ParseFailure(t *testing.T) {
	store := &fakeStore{agents: testAgents(1)}
	svc := newTestService(store, nil)

	_, err := svc.IngestAndDistribute(context.Background(),
		strings.NewReader("not a spreadsheet"), ingest.FormatXLSX, ingest.SchemaCallQueue)

	var parseErr *ingest.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Empty(t, store.assignments)
}

func TestIngestAndDistribute_StoreFailure(t *testing.T) {
	storeErr := errors.New("connection refused")
	store := &fakeStore{agents: testAgents(1), listAgentsErr: storeErr}
	svc := newTestService(store, nil)

	_, err := svc.IngestAndDistribute(context.Background(),
		strings.NewReader(genericCSV), ingest.FormatCSV, ingest.SchemaGenericList)

	assert.ErrorIs(t, err, storeErr)
}

func TestIngestAndDistribute_PublishFailureDoesNotFailRun(t *testing.T) {
	store := &fakeStore{agents: testAgents(1)}
	publisher := &fakePublisher{err: errors.New("broker down")}
	svc := newTestService(store, publisher)

	result, err := svc.IngestAndDistribute(context.Background(),
		strings.NewReader(genericCSV), ingest.FormatCSV, ingest.SchemaGenericList)

	require.NoError(t, err)
	assert.Equal(t, 7, result.TotalRows)
}

func TestRedistributeCallQueue(t *testing.T) {
	store := &fakeStore{agents: testAgents(2)}
	svc := newTestService(store, nil)

	_, err := svc.IngestAndDistribute(context.Background(),
		strings.NewReader(callQueueCSV), ingest.FormatCSV, ingest.SchemaCallQueue)
	require.NoError(t, err)

	// A third agent joins; redistribution spreads the queue over all three
	store.agents = testAgents(3)

	result, err := svc.RedistributeCallQueue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalRows)
	assert.Equal(t, 3, result.TotalAgents)

	queue, _ := store.ListCallQueue(context.Background())
	agentByOrdinal := make(map[float64]string)
	for _, a := range queue {
		agentByOrdinal[*a.RecordNo] = *a.AgentID
	}
	assert.Equal(t, "a1", agentByOrdinal[1])
	assert.Equal(t, "a2", agentByOrdinal[2])
	assert.Equal(t, "a3", agentByOrdinal[3])
	assert.Equal(t, "a1", agentByOrdinal[4])
}

func TestRedistributeCallQueue_EmptyQueue(t *testing.T) {
	store := &fakeStore{agents: testAgents(2)}
	svc := newTestService(store, nil)

	_, err := svc.RedistributeCallQueue(context.Background())
	assert.ErrorIs(t, err, distribute.ErrNoRecords)
}

func TestMarkCompleted_Idempotent(t *testing.T) {
	store := &fakeStore{agents: testAgents(1)}
	svc := newTestService(store, nil)

	_, err := svc.IngestAndDistribute(context.Background(),
		strings.NewReader(genericCSV), ingest.FormatCSV, ingest.SchemaGenericList)
	require.NoError(t, err)

	id := store.assignments[0].AssignmentID

	first, err := svc.MarkCompleted(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, first.AlreadyCompleted)
	assert.Equal(t, domain.StatusCompleted, first.Status)

	second, err := svc.MarkCompleted(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, second.AlreadyCompleted)
	assert.Equal(t, domain.StatusCompleted, second.Status)

	assert.Equal(t, domain.StatusCompleted, store.assignments[0].Status)
}

func TestMarkCompleted_NotFound(t *testing.T) {
	svc := newTestService(&fakeStore{}, nil)

	_, err := svc.MarkCompleted(context.Background(), "4f8b9a52-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, domain.ErrAssignmentNotFound)
}

func TestClearCallQueue(t *testing.T) {
	store := &fakeStore{agents: testAgents(2)}
	svc := newTestService(store, nil)

	_, err := svc.IngestAndDistribute(context.Background(),
		strings.NewReader(callQueueCSV), ingest.FormatCSV, ingest.SchemaCallQueue)
	require.NoError(t, err)
	require.NotEmpty(t, store.assignments)

	require.NoError(t, svc.ClearCallQueue(context.Background()))

	queue, _ := store.ListCallQueue(context.Background())
	assert.Empty(t, queue)
}
