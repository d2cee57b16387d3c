package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jazanyumba/chama-vault/internal/config"
	"github.com/jazanyumba/chama-vault/internal/domain"
	"github.com/jazanyumba/chama-vault/internal/mocks"
	"github.com/jazanyumba/chama-vault/internal/service"
	customError "github.com/jazanyumba/chama-vault/pkg/errors"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// serve routes one request through a router that authenticates as a.
func serve(t *testing.T, method, pattern, path, body string, h http.HandlerFunc, a *domain.Actor) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	router := mux.NewRouter()
	router.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		if a != nil {
			r = r.WithContext(WithActor(r.Context(), *a))
		}
		h(w, r)
	}).Methods(method)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func testConfig() *config.Config {
	return &config.Config{Business: config.BusinessConfig{TrialDays: 30}}
}

func admin(groupID uuid.UUID) *domain.Actor {
	return &domain.Actor{MemberID: uuid.New(), GroupID: groupID, Role: domain.RoleAdmin}
}

func member(groupID uuid.UUID) *domain.Actor {
	return &domain.Actor{MemberID: uuid.New(), GroupID: groupID, Role: domain.RoleMember}
}

func TestCycleHandler_StartCycle(t *testing.T) {
	groupID := uuid.New()

	tests := []struct {
		name       string
		body       string
		actor      *domain.Actor
		setupMocks func(m *mocks.MockRepos)
		wantStatus int
		wantCode   string
	}{
		{
			name:  "starts cycle",
			body:  `{"contribution_amount":"500","frequency":"weekly","start_date":"2024-01-01T00:00:00Z"}`,
			actor: admin(groupID),
			setupMocks: func(m *mocks.MockRepos) {
				m.Groups.On("LockByID", mock.Anything, groupID).Return(&domain.Group{ID: groupID}, nil)
				m.Cycles.On("GetActiveByGroup", mock.Anything, groupID).Return(nil, sql.ErrNoRows)
				m.Members.On("ListByGroup", mock.Anything, groupID, domain.MemberStatusApproved).
					Return([]*domain.Member{{ID: uuid.New(), GroupID: groupID}, {ID: uuid.New(), GroupID: groupID}}, nil)
				m.Cycles.On("LastCycleNumber", mock.Anything, groupID).Return(0, nil)
				m.Cycles.On("Create", mock.Anything, mock.Anything).Return(nil)
				m.Contributions.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "invalid amount",
			body:       `{"contribution_amount":"0","frequency":"weekly","start_date":"2024-01-01T00:00:00Z"}`,
			actor:      admin(groupID),
			setupMocks: func(m *mocks.MockRepos) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   customError.ErrCodeValidation,
		},
		{
			name:       "malformed body",
			body:       `{"contribution_amount":`,
			actor:      admin(groupID),
			setupMocks: func(m *mocks.MockRepos) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   customError.ErrCodeValidation,
		},
		{
			name:       "member cannot start",
			body:       `{"contribution_amount":"500","frequency":"weekly","start_date":"2024-01-01T00:00:00Z"}`,
			actor:      member(groupID),
			setupMocks: func(m *mocks.MockRepos) {},
			wantStatus: http.StatusForbidden,
			wantCode:   customError.ErrCodeForbidden,
		},
		{
			name:  "already active",
			body:  `{"contribution_amount":"500","frequency":"monthly","start_date":"2024-01-01T00:00:00Z"}`,
			actor: admin(groupID),
			setupMocks: func(m *mocks.MockRepos) {
				m.Groups.On("LockByID", mock.Anything, groupID).Return(&domain.Group{ID: groupID}, nil)
				m.Cycles.On("GetActiveByGroup", mock.Anything, groupID).Return(&domain.Cycle{ID: uuid.New()}, nil)
			},
			wantStatus: http.StatusConflict,
			wantCode:   customError.ErrCodeConflict,
		},
		{
			name:       "no token",
			body:       `{}`,
			setupMocks: func(m *mocks.MockRepos) {},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mocks.NewMockRepos()
			tt.setupMocks(m)
			h := NewCycleHandler(
				service.NewCycleService(m.Repos(), &mocks.UnitOfWork{Repos: m}, nil),
				service.NewContributionService(m.Repos(), &mocks.UnitOfWork{Repos: m}, nil, nil),
			)

			rec, env := serve(t, http.MethodPost, "/cycles", "/cycles", tt.body, h.StartCycle, tt.actor)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, env.Code)
			if tt.wantStatus == http.StatusCreated {
				var resp domain.StartCycleResponse
				require.NoError(t, json.Unmarshal(env.Data, &resp))
				assert.Len(t, resp.Cycle.MemberOrder, 2)
				assert.Len(t, resp.Contributions, 2)
				assert.Equal(t, 1, resp.Cycle.CycleNumber)
			}
		})
	}
}

func TestCycleHandler_ProgressCycle_BadID(t *testing.T) {
	m := mocks.NewMockRepos()
	h := NewCycleHandler(service.NewCycleService(m.Repos(), &mocks.UnitOfWork{Repos: m}, nil), nil)

	rec, env := serve(t, http.MethodPost, "/cycles/{cycleId}/progress", "/cycles/not-a-uuid/progress",
		`{"member_id":"`+uuid.NewString()+`","amount_received":"1000"}`, h.ProgressCycle, admin(uuid.New()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Message, "cycleId")
}

func TestLoanHandler_ApproveRepayment(t *testing.T) {
	groupID := uuid.New()
	loan := &domain.Loan{ID: uuid.New(), GroupID: groupID, Status: domain.LoanStatusActive, TotalDue: decimal.NewFromInt(100)}

	tests := []struct {
		name       string
		repayment  *domain.LoanRepayment
		wantStatus int
	}{
		{
			name:       "approves and settles",
			repayment:  &domain.LoanRepayment{ID: uuid.New(), LoanID: loan.ID, GroupID: groupID, Amount: decimal.NewFromInt(100), Status: domain.RepaymentStatusPending},
			wantStatus: http.StatusOK,
		},
		{
			name:       "exceeds balance",
			repayment:  &domain.LoanRepayment{ID: uuid.New(), LoanID: loan.ID, GroupID: groupID, Amount: decimal.NewFromInt(101), Status: domain.RepaymentStatusPending},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "already approved",
			repayment:  &domain.LoanRepayment{ID: uuid.New(), LoanID: loan.ID, GroupID: groupID, Amount: decimal.NewFromInt(10), Status: domain.RepaymentStatusApproved},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := *loan
			m := mocks.NewMockRepos()
			m.Repayments.On("GetByIDForUpdate", mock.Anything, tt.repayment.ID).Return(tt.repayment, nil)
			m.Loans.On("GetByIDForUpdate", mock.Anything, loan.ID).Return(&l, nil).Maybe()
			m.Loans.On("Update", mock.Anything, mock.Anything).Return(nil).Maybe()
			m.Repayments.On("Update", mock.Anything, mock.Anything).Return(nil).Maybe()
			h := NewLoanHandler(service.NewLoanService(m.Repos(), &mocks.UnitOfWork{Repos: m}, nil))

			rec, _ := serve(t, http.MethodPost, "/repayments/{repaymentId}/approve",
				"/repayments/"+tt.repayment.ID.String()+"/approve", "", h.ApproveRepayment, admin(groupID))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, domain.LoanStatusCompleted, l.Status)
			}
		})
	}
}

func TestSavingsHandler_GetBalance(t *testing.T) {
	groupID := uuid.New()
	caller := member(groupID)

	t.Run("own balance", func(t *testing.T) {
		m := mocks.NewMockRepos()
		m.Savings.On("GetBalance", mock.Anything, caller.MemberID).Return(decimal.RequireFromString("1500.50"), nil)
		h := NewSavingsHandler(service.NewSavingsService(m.Repos(), &mocks.UnitOfWork{Repos: m}, nil, nil))

		rec, env := serve(t, http.MethodGet, "/savings/balance", "/savings/balance", "", h.GetBalance, caller)

		require.Equal(t, http.StatusOK, rec.Code)
		var got domain.BalanceResponse
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.True(t, got.Balance.Equal(decimal.RequireFromString("1500.50")))
	})

	t.Run("someone else's balance", func(t *testing.T) {
		other := &domain.Member{ID: uuid.New(), GroupID: groupID}
		m := mocks.NewMockRepos()
		m.Members.On("GetByID", mock.Anything, other.ID).Return(other, nil)
		h := NewSavingsHandler(service.NewSavingsService(m.Repos(), &mocks.UnitOfWork{Repos: m}, nil, nil))

		rec, _ := serve(t, http.MethodGet, "/savings/members/{memberId}/balance",
			"/savings/members/"+other.ID.String()+"/balance", "", h.GetBalance, caller)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestSavingsHandler_RequestWithdrawal_Validation(t *testing.T) {
	m := mocks.NewMockRepos()
	h := NewSavingsHandler(service.NewSavingsService(m.Repos(), &mocks.UnitOfWork{Repos: m}, nil, nil))

	rec, env := serve(t, http.MethodPost, "/withdrawals", "/withdrawals",
		`{"amount":"250","purpose":"loan_repayment"}`, h.RequestWithdrawal, member(uuid.New()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Message, "loan_id is required")
	m.Savings.AssertNotCalled(t, "CreateWithdrawal", mock.Anything, mock.Anything)
}

func TestAnalyticsHandler_Dashboard_AdminOnly(t *testing.T) {
	m := mocks.NewMockRepos()
	h := NewAnalyticsHandler(service.NewAnalyticsService(m.Repos(), nil, domain.DefaultPerformanceThresholds))

	rec, env := serve(t, http.MethodGet, "/analytics/dashboard", "/analytics/dashboard", "", h.Dashboard, member(uuid.New()))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, env.Success)
}

func TestAnalyticsHandler_Timing_BadCycleID(t *testing.T) {
	m := mocks.NewMockRepos()
	h := NewAnalyticsHandler(service.NewAnalyticsService(m.Repos(), nil, domain.DefaultPerformanceThresholds))

	rec, _ := serve(t, http.MethodGet, "/analytics/timing", "/analytics/timing?cycle_id=abc", "", h.Timing, admin(uuid.New()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDirectoryHandler_Login_BadCredentials(t *testing.T) {
	m := mocks.NewMockRepos()
	m.Members.On("GetByPhone", mock.Anything, "0711000000").Return(nil, sql.ErrNoRows)
	svc := service.NewDirectoryService(m.Repos(), &mocks.UnitOfWork{Repos: m}, &mocks.MockTokenIssuer{}, nil, nil, testConfig())
	h := NewDirectoryHandler(svc)

	rec, env := serve(t, http.MethodPost, "/auth/login", "/auth/login",
		`{"phone":"0711000000","password":"whatever"}`, h.Login, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, customError.ErrCodeUnauthorized, env.Code)
}

func TestHealthHandler_Ready(t *testing.T) {
	t.Run("database up", func(t *testing.T) {
		mockDB, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockDB.Close()
		dbMock.ExpectPing()

		h := NewHealthHandler(sqlx.NewDb(mockDB, "postgres"), nil, 0)
		rec, env := serve(t, http.MethodGet, "/health/ready", "/health/ready", "", h.Ready, nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		var status HealthStatus
		require.NoError(t, json.Unmarshal(env.Data, &status))
		assert.Equal(t, "ok", status.Checks["database"])
		assert.Equal(t, "disabled", status.Checks["redis"])
	})

	t.Run("database down", func(t *testing.T) {
		mockDB, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockDB.Close()
		dbMock.ExpectPing().WillReturnError(sql.ErrConnDone)

		h := NewHealthHandler(sqlx.NewDb(mockDB, "postgres"), nil, 0)
		rec, _ := serve(t, http.MethodGet, "/health/ready", "/health/ready", "", h.Ready, nil)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
