package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/counselflow/counselflow-api/internal/jobs"
	"github.com/counselflow/counselflow-api/internal/models"
	"github.com/counselflow/counselflow-api/internal/policy"
	"github.com/counselflow/counselflow-api/internal/query"
	"github.com/counselflow/counselflow-api/internal/repository"
	"github.com/counselflow/counselflow-api/internal/testutil"
	"github.com/counselflow/counselflow-api/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// syncRunner runs jobs inline so audit entries exist when the call returns
type syncRunner struct{}

func (syncRunner) EnqueueAsync(name string, job jobs.Job) {
	_ = job(context.Background())
}

type contractFixture struct {
	db       *gorm.DB
	repos    *repository.Repositories
	svc      *ContractService
	lawyer   *models.User
	other    *models.User
	partner  *models.User
	client   *models.Client
	outsider *models.Client
}

func newContractFixture(t *testing.T) *contractFixture {
	db := testutil.NewDB(t)
	repos := repository.NewRepositories(db)
	f := &contractFixture{
		db:      db,
		repos:   repos,
		lawyer:  testutil.CreateUser(t, db, "Ana Lopez", models.RoleAssociate),
		other:   testutil.CreateUser(t, db, "Ben Ortiz", models.RoleAssociate),
		partner: testutil.CreateUser(t, db, "Carla Diaz", models.RolePartner),
	}
	f.client = testutil.CreateClient(t, db, "ACME Corp", f.lawyer.ID)
	f.outsider = testutil.CreateClient(t, db, "Globex", f.other.ID)
	audit := NewAuditService(repos.Audit, syncRunner{})
	f.svc = NewContractService(repos.Contract, repos.Client, repos.User, audit)
	return f
}

func callerFor(u *models.User) policy.Caller {
	return policy.Caller{UserID: u.ID, Email: u.Email, Role: u.Role, IPAddress: "10.0.0.1", UserAgent: "go-test"}
}

func (f *contractFixture) auditActions(t *testing.T, entityID string) []string {
	t.Helper()
	logs, _, err := f.repos.Audit.List(context.Background(), repository.AuditFilter{EntityID: entityID}, query.Page{Number: 1, Size: 50})
	require.NoError(t, err)
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	return actions
}

func TestContractService_CreateDefaultsToDraft(t *testing.T) {
	f := newContractFixture(t)
	ctx := context.Background()

	value := 50000.0
	created, err := f.svc.Create(ctx, callerFor(f.lawyer), &validation.CreateContractRequest{
		Title:     "  Master Services Agreement ",
		Type:      models.ContractTypeServiceAgreement,
		Value:     &value,
		StartDate: "2024-03-01",
		Tags:      []string{"msa", "priority"},
		ClientID:  f.client.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, "Master Services Agreement", created.Title)
	assert.Equal(t, models.ContractStatusDraft, created.Status)
	assert.Equal(t, models.RiskLevelMedium, created.RiskLevel)
	assert.Equal(t, "USD", created.Currency)
	assert.Equal(t, f.lawyer.ID, created.AssignedLawyerID)
	assert.Equal(t, []string{"msa", "priority"}, created.Tags)
	assert.Equal(t, "ACME Corp", created.Client.Name)
	assert.Equal(t, f.lawyer.ID, created.AssignedLawyer.ID)

	assert.Equal(t, []string{models.AuditActionCreate}, f.auditActions(t, created.ID))
}

func TestContractService_CreateRejectsInvalidRequest(t *testing.T) {
	f := newContractFixture(t)

	_, err := f.svc.Create(context.Background(), callerFor(f.lawyer), &validation.CreateContractRequest{
		Type:      "SIGNED",
		StartDate: "2024-03-01",
		ClientID:  f.client.ID,
	})

	verr, ok := validation.AsError(err)
	require.True(t, ok, "expected validation error, got %v", err)
	fields := map[string]bool{}
	for _, d := range verr.Fields {
		fields[d.Field] = true
	}
	assert.True(t, fields["title"])
	assert.True(t, fields["type"])
}

func TestContractService_CreateForInvisibleClient(t *testing.T) {
	f := newContractFixture(t)
	req := func(clientID string) *validation.CreateContractRequest {
		return &validation.CreateContractRequest{
			Title:     "NDA",
			Type:      models.ContractTypeNDA,
			StartDate: "2024-03-01",
			ClientID:  clientID,
		}
	}

	_, err := f.svc.Create(context.Background(), callerFor(f.lawyer), req(f.outsider.ID))
	assert.ErrorIs(t, err, ErrClientNotVisible)

	_, err = f.svc.Create(context.Background(), callerFor(f.lawyer), req("no-such-client"))
	assert.ErrorIs(t, err, ErrClientNotVisible)

	// Partners see every client
	created, err := f.svc.Create(context.Background(), callerFor(f.partner), req(f.outsider.ID))
	require.NoError(t, err)
	assert.Equal(t, f.partner.ID, created.AssignedLawyerID)
}

func TestContractService_GetHidesOtherLawyersContracts(t *testing.T) {
	f := newContractFixture(t)
	mine := testutil.CreateContract(t, f.db, "Lease", f.client)
	theirs := testutil.CreateContract(t, f.db, "Supply", f.outsider)

	got, err := f.svc.Get(context.Background(), callerFor(f.lawyer), mine.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, got.ID)

	_, err = f.svc.Get(context.Background(), callerFor(f.lawyer), theirs.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Get(context.Background(), callerFor(f.lawyer), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err = f.svc.Get(context.Background(), callerFor(f.partner), theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, "Globex", got.Client.Name)
}

func TestContractService_UpdateStatus(t *testing.T) {
	f := newContractFixture(t)
	ctx := context.Background()
	c := testutil.CreateContract(t, f.db, "MSA", f.client)

	updated, err := f.svc.UpdateStatus(ctx, callerFor(f.lawyer), c.ID, &validation.StatusUpdateRequest{Status: models.ContractStatusApproved})
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusApproved, updated.Status)

	// Same status writes nothing and records nothing
	again, err := f.svc.UpdateStatus(ctx, callerFor(f.lawyer), c.ID, &validation.StatusUpdateRequest{Status: models.ContractStatusApproved})
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusApproved, again.Status)

	assert.Equal(t, []string{models.AuditActionStatus}, f.auditActions(t, c.ID))

	logs, _, err := f.repos.Audit.List(ctx, repository.AuditFilter{EntityID: c.ID}, query.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	var details map[string]string
	require.NoError(t, json.Unmarshal([]byte(logs[0].Details), &details))
	assert.Equal(t, map[string]string{"from": "DRAFT", "to": "APPROVED"}, details)
	assert.Equal(t, "10.0.0.1", logs[0].IPAddress)

	_, err = f.svc.UpdateStatus(ctx, callerFor(f.lawyer), c.ID, &validation.StatusUpdateRequest{Status: "SIGNED"})
	_, ok := validation.AsError(err)
	assert.True(t, ok)
}

func TestContractService_UpdatePatch(t *testing.T) {
	f := newContractFixture(t)
	ctx := context.Background()
	c := testutil.CreateContract(t, f.db, "MSA", f.client, testutil.WithValue(1000), testutil.WithTags("a"))

	title := "MSA v2"
	status := models.ContractStatusUnderReview
	tags := []string{"b", "c"}
	updated, err := f.svc.Update(ctx, callerFor(f.lawyer), c.ID, &validation.UpdateContractRequest{
		Title:  &title,
		Status: &status,
		Tags:   &tags,
	})
	require.NoError(t, err)
	assert.Equal(t, "MSA v2", updated.Title)
	assert.Equal(t, models.ContractStatusUnderReview, updated.Status)
	assert.Equal(t, []string{"b", "c"}, updated.Tags)
	require.NotNil(t, updated.Value)
	assert.Equal(t, 1000.0, *updated.Value)

	assert.Equal(t, []string{models.AuditActionUpdate}, f.auditActions(t, c.ID))
}

func TestContractService_UpdateEndBeforeStoredStart(t *testing.T) {
	f := newContractFixture(t)
	c := testutil.CreateContract(t, f.db, "MSA", f.client)

	end := "2023-06-01"
	_, err := f.svc.Update(context.Background(), callerFor(f.lawyer), c.ID, &validation.UpdateContractRequest{EndDate: &end})

	verr, ok := validation.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "endDate", verr.Fields[0].Field)
}

func TestContractService_UpdateRejectsInvisibleClientAndUnknownLawyer(t *testing.T) {
	f := newContractFixture(t)
	ctx := context.Background()
	c := testutil.CreateContract(t, f.db, "MSA", f.client)

	_, err := f.svc.Update(ctx, callerFor(f.lawyer), c.ID, &validation.UpdateContractRequest{ClientID: &f.outsider.ID})
	assert.ErrorIs(t, err, ErrClientNotVisible)

	ghost := "ghost"
	_, err = f.svc.Update(ctx, callerFor(f.lawyer), c.ID, &validation.UpdateContractRequest{AssignedLawyerID: &ghost})
	verr, ok := validation.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "assignedLawyerId", verr.Fields[0].Field)

	_, err = f.svc.Update(ctx, callerFor(f.other), c.ID, &validation.UpdateContractRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContractService_DeleteThenGet(t *testing.T) {
	f := newContractFixture(t)
	ctx := context.Background()
	c := testutil.CreateContract(t, f.db, "MSA", f.client)

	assert.ErrorIs(t, f.svc.Delete(ctx, callerFor(f.other), c.ID), ErrNotFound)

	require.NoError(t, f.svc.Delete(ctx, callerFor(f.lawyer), c.ID))
	_, err := f.svc.Get(ctx, callerFor(f.lawyer), c.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, f.svc.Delete(ctx, callerFor(f.lawyer), c.ID), ErrNotFound)
	assert.Equal(t, []string{models.AuditActionDelete}, f.auditActions(t, c.ID))
}

func TestContractService_Duplicate(t *testing.T) {
	f := newContractFixture(t)
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	src := testutil.CreateContract(t, f.db, "Lease", f.client,
		testutil.WithStatus(models.ContractStatusExecuted),
		testutil.WithValue(1200),
		testutil.WithTags("office"))

	dup, err := f.svc.Duplicate(context.Background(), callerFor(f.lawyer), src.ID)
	require.NoError(t, err)

	assert.NotEqual(t, src.ID, dup.ID)
	assert.Equal(t, "Lease (Copy)", dup.Title)
	assert.Equal(t, models.ContractStatusDraft, dup.Status)
	assert.True(t, now.Equal(dup.StartDate))
	assert.Equal(t, []string{"office"}, dup.Tags)
	assert.Equal(t, src.AssignedLawyerID, dup.AssignedLawyerID)
	assert.Equal(t, []string{models.AuditActionDuplicate}, f.auditActions(t, dup.ID))
}

func TestContractService_ListPagination(t *testing.T) {
	f := newContractFixture(t)
	for _, title := range []string{"A", "B", "C"} {
		testutil.CreateContract(t, f.db, title, f.client)
	}
	testutil.CreateContract(t, f.db, "Hidden", f.outsider)

	q, err := validation.ParseContractQuery(map[string][]string{"limit": {"2"}, "page": {"2"}})
	require.NoError(t, err)

	contracts, pg, err := f.svc.List(context.Background(), callerFor(f.lawyer), q)
	require.NoError(t, err)
	assert.Len(t, contracts, 1)
	assert.Equal(t, int64(3), pg.Total)
	assert.Equal(t, 2, pg.Pages)
	assert.False(t, pg.HasNext)
	assert.True(t, pg.HasPrev)
}

type failingContractRepository struct {
	repository.ContractRepository
	err error
}

func (m *failingContractRepository) FindByIDWithDetails(ctx context.Context, id string) (*models.Contract, error) {
	return nil, m.err
}

func TestContractService_GetWrapsStorageErrors(t *testing.T) {
	dbErr := errors.New("connection reset")
	svc := NewContractService(&failingContractRepository{err: dbErr}, nil, nil, nil)

	_, err := svc.Get(context.Background(), policy.Caller{UserID: "u1"}, "c1")
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrNotFound)

	svc = NewContractService(&failingContractRepository{err: gorm.ErrRecordNotFound}, nil, nil, nil)
	_, err = svc.Get(context.Background(), policy.Caller{UserID: "u1"}, "c1")
	assert.ErrorIs(t, err, ErrNotFound)
}
