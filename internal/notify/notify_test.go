package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jazanyumba/chama-vault/internal/config"
	"github.com/jazanyumba/chama-vault/internal/domain"
)

type stubMembers map[uuid.UUID]*domain.Member

func (s stubMembers) GetByID(_ context.Context, id uuid.UUID) (*domain.Member, error) {
	m, ok := s[id]
	if !ok {
		return nil, errors.New("no member")
	}
	return m, nil
}

type stubGroups map[uuid.UUID]*domain.Group

func (s stubGroups) GetByID(_ context.Context, id uuid.UUID) (*domain.Group, error) {
	g, ok := s[id]
	if !ok {
		return nil, errors.New("no group")
	}
	return g, nil
}

type recordingTransport struct {
	phone   string
	message string
	calls   int
}

func (r *recordingTransport) Send(_ context.Context, phone, message string) error {
	r.calls++
	r.phone = phone
	r.message = message
	return nil
}

func TestRender(t *testing.T) {
	msg, err := Render(TemplateContributionReminder, map[string]string{"name": "Akinyi", "amount": "500.00", "due_date": "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, "Hi Akinyi, your contribution of KES 500.00 is due on 2024-03-01.", msg)

	_, err = Render("nope", nil)
	assert.Error(t, err)
}

func TestGatedSender_Notify(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	trialEnd := now.AddDate(0, 0, 10)
	expiredTrial := now.AddDate(0, 0, -1)

	tests := []struct {
		name      string
		group     domain.Group
		wantCalls int
	}{
		{name: "active subscription", group: domain.Group{SubscriptionStatus: domain.SubscriptionActive}, wantCalls: 1},
		{name: "trial in progress", group: domain.Group{SubscriptionStatus: domain.SubscriptionTrial, TrialEndsAt: &trialEnd}, wantCalls: 1},
		{name: "trial ended", group: domain.Group{SubscriptionStatus: domain.SubscriptionTrial, TrialEndsAt: &expiredTrial}, wantCalls: 0},
		{name: "expired", group: domain.Group{SubscriptionStatus: domain.SubscriptionExpired}, wantCalls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			group := tt.group
			group.ID = uuid.New()
			group.Name = "umoja"
			member := &domain.Member{ID: uuid.New(), Name: "Baraka", Phone: "0712000111", GroupID: group.ID}

			transport := &recordingTransport{}
			sender := NewGatedSender(stubMembers{member.ID: member}, stubGroups{group.ID: &group}, transport)
			sender.now = func() time.Time { return now }

			err := sender.Notify(context.Background(), Notification{
				MemberID: member.ID,
				Template: TemplateMemberApproved,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.wantCalls, transport.calls)
			if tt.wantCalls > 0 {
				assert.Equal(t, "0712000111", transport.phone)
				assert.Equal(t, "Hi Baraka, your membership of umoja has been approved.", transport.message)
			}
		})
	}
}

func TestGatedSender_UnknownMember(t *testing.T) {
	sender := NewGatedSender(stubMembers{}, stubGroups{}, &recordingTransport{})
	err := sender.Notify(context.Background(), Notification{MemberID: uuid.New(), Template: TemplateMemberApproved})
	assert.Error(t, err)
}

func TestSMSSender_Send(t *testing.T) {
	var got smsPayload
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	sender := NewSMSSender(config.NotificationConfig{SMSBaseURL: server.URL, SMSAPIKey: "key", SMSSender: "CHAMA"})
	require.NoError(t, sender.Send(context.Background(), "0712000111", "hello"))

	assert.Equal(t, "Bearer key", auth)
	assert.Equal(t, smsPayload{To: "0712000111", From: "CHAMA", Message: "hello"}, got)
}

func TestSMSSender_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sender := NewSMSSender(config.NotificationConfig{SMSBaseURL: server.URL})
	err := sender.Send(context.Background(), "0712000111", "hello")
	assert.ErrorContains(t, err, "502")
}
