package provision

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/profile-provisioner/internal/config"
	"github.com/magabrotheeeer/profile-provisioner/internal/docstore"
	"github.com/magabrotheeeer/profile-provisioner/internal/models"
)

// MockDocumentStore реализует интерфейс DocumentStore
type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string,
	data map[string]any, permissions []string) (string, error) {
	args := m.Called(ctx, databaseID, collectionID, documentID, data, permissions)
	return args.String(0), args.Error(1)
}

// MockAuditRepository реализует интерфейс AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) CreateAttempt(ctx context.Context, attempt models.ProvisionAttempt) (int, error) {
	args := m.Called(ctx, attempt)
	return args.Int(0), args.Error(1)
}

func testDefaults() config.ProfileDefaults {
	return config.ProfileDefaults{
		TrialDurationDays: 14,
		InitialCredits:    100,
		InitialPlan:       "free",
		InitialStatus:     "trial",
	}
}

func testStoreConfig() config.DocumentStore {
	return config.DocumentStore{
		Endpoint:     "https://store.example.com/v1",
		ProjectID:    "project",
		APIKey:       "secret",
		DatabaseID:   "main",
		CollectionID: "profiles",
		Timeout:      15 * time.Second,
	}
}

func TestCompose(t *testing.T) {
	identity := models.UserIdentityEvent{ID: "u42", Email: "x@y.com", Name: "X"}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	doc := Compose(identity, now, testDefaults())

	assert.Equal(t, "u42", doc.UserID)
	assert.Equal(t, "x@y.com", doc.Email)
	assert.Equal(t, "X", doc.Name)
	assert.Equal(t, "trial", doc.SubscriptionStatus)
	assert.Equal(t, "free", doc.Plan)
	assert.Equal(t, 100, doc.Credits)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), doc.SubscriptionEndDate)
	assert.Equal(t, "2024-01-15T00:00:00Z", doc.Data()["subscriptionEndDate"])
}

func TestCompose_Deterministic(t *testing.T) {
	identity := models.UserIdentityEvent{ID: "u1", Email: "a@b.com", Name: "A"}
	now := time.Date(2024, 6, 15, 12, 30, 45, 0, time.UTC)

	first := Compose(identity, now, testDefaults())
	second := Compose(identity, now, testDefaults())

	assert.Equal(t, first, second)
	assert.Equal(t, first.Data(), second.Data())
}

func TestCompose_NonUTCNow(t *testing.T) {
	identity := models.UserIdentityEvent{ID: "u1"}
	loc := time.FixedZone("UTC+3", 3*60*60)
	now := time.Date(2024, 1, 1, 2, 0, 0, 0, loc)

	doc := Compose(identity, now, testDefaults())

	// 2024-01-01 02:00 +03:00 это 2023-12-31 23:00 UTC
	assert.Equal(t, "2024-01-14T23:00:00Z", doc.Data()["subscriptionEndDate"])
}

func TestBuildPolicy(t *testing.T) {
	policy := BuildPolicy("u42")

	require.Len(t, policy, 3)
	assert.Equal(t, `read("user:u42")`, policy[0])
	assert.Equal(t, `update("user:u42")`, policy[1])
	assert.Equal(t, `delete("user:u42")`, policy[2])
	for _, grant := range policy {
		assert.Contains(t, grant, `"user:u42"`)
	}
}

func TestProvision(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	identity := models.UserIdentityEvent{ID: "u42", Email: "x@y.com", Name: "X"}

	tests := []struct {
		name       string
		storeCfg   config.DocumentStore
		setupStore func(*MockDocumentStore)
		setupAudit func(*MockAuditRepository)
		wantDocID  string
		wantErr    string
		wantConfig bool
	}{
		{
			name:     "успешный провижининг профиля",
			storeCfg: testStoreConfig(),
			setupStore: func(m *MockDocumentStore) {
				m.On("CreateDocument", mock.Anything, "main", "profiles", mock.AnythingOfType("string"),
					map[string]any{
						"userId":              "u42",
						"email":               "x@y.com",
						"name":                "X",
						"subscriptionStatus":  "trial",
						"subscriptionEndDate": "2024-01-15T00:00:00Z",
						"plan":                "free",
						"credits":             100,
					},
					[]string{`read("user:u42")`, `update("user:u42")`, `delete("user:u42")`},
				).Return("doc-1", nil).Once()
			},
			setupAudit: func(m *MockAuditRepository) {
				m.On("CreateAttempt", mock.Anything, mock.MatchedBy(func(a models.ProvisionAttempt) bool {
					return a.Status == models.AttemptStatusCreated && a.UserUID == "u42" && a.DocumentID == "doc-1"
				})).Return(1, nil).Once()
			},
			wantDocID: "doc-1",
		},
		{
			name:     "хранилище отклонило создание документа",
			storeCfg: testStoreConfig(),
			setupStore: func(m *MockDocumentStore) {
				m.On("CreateDocument", mock.Anything, "main", "profiles", mock.AnythingOfType("string"),
					mock.Anything, mock.Anything).
					Return("", &docstore.StoreError{StatusCode: 400, Message: "quota exceeded"}).Once()
			},
			setupAudit: func(m *MockAuditRepository) {
				m.On("CreateAttempt", mock.Anything, mock.MatchedBy(func(a models.ProvisionAttempt) bool {
					return a.Status == models.AttemptStatusFailed && a.ErrorMessage == "quota exceeded"
				})).Return(2, nil).Once()
			},
			wantErr: "quota exceeded",
		},
		{
			name: "отсутствует database_id в конфигурации",
			storeCfg: config.DocumentStore{
				Endpoint:     "https://store.example.com/v1",
				ProjectID:    "project",
				APIKey:       "secret",
				CollectionID: "profiles",
			},
			setupStore: func(_ *MockDocumentStore) {},
			setupAudit: func(_ *MockAuditRepository) {},
			wantConfig: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := new(MockDocumentStore)
			mockAudit := new(MockAuditRepository)
			tt.setupStore(mockStore)
			tt.setupAudit(mockAudit)

			svc := New(mockStore, mockAudit, tt.storeCfg, testDefaults(), logger)
			svc.now = func() time.Time { return now }

			docID, err := svc.Provision(context.Background(), identity)

			if tt.wantConfig {
				require.Error(t, err)
				assert.ErrorIs(t, err, config.ErrMissingConfig)
				assert.Contains(t, err.Error(), "database_id")
				mockStore.AssertNotCalled(t, "CreateDocument",
					mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				return
			}
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				assert.Empty(t, docID)
				mockStore.AssertExpectations(t)
				mockAudit.AssertExpectations(t)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantDocID, docID)
			mockStore.AssertExpectations(t)
			mockAudit.AssertExpectations(t)
		})
	}
}

// Ошибка журнала не должна влиять на итог провижининга.
func TestProvision_AuditFailureIsNotFatal(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	mockStore := new(MockDocumentStore)
	mockStore.On("CreateDocument", mock.Anything, "main", "profiles", mock.AnythingOfType("string"),
		mock.Anything, mock.Anything).Return("doc-9", nil).Once()

	mockAudit := new(MockAuditRepository)
	mockAudit.On("CreateAttempt", mock.Anything, mock.Anything).
		Return(0, assert.AnError).Once()

	svc := New(mockStore, mockAudit, testStoreConfig(), testDefaults(), logger)

	docID, err := svc.Provision(context.Background(), models.UserIdentityEvent{ID: "u1"})

	require.NoError(t, err)
	assert.Equal(t, "doc-9", docID)
	mockStore.AssertExpectations(t)
	mockAudit.AssertExpectations(t)
}
