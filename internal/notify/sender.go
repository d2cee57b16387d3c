package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jazanyumba/chama-vault/internal/config"
	"github.com/jazanyumba/chama-vault/internal/domain"
)

// Notification is a templated message addressed to one member.
type Notification struct {
	MemberID  uuid.UUID
	Template  string
	Variables map[string]string
}

// Sender is the fire-and-forget notification boundary used by the services.
type Sender interface {
	Notify(ctx context.Context, n Notification) error
}

// Transport delivers a rendered message to a phone number.
type Transport interface {
	Send(ctx context.Context, phone, message string) error
}

// SMSSender posts messages to an HTTP SMS gateway.
type SMSSender struct {
	baseURL  string
	apiKey   string
	senderID string
	client   *http.Client
}

func NewSMSSender(cfg config.NotificationConfig) *SMSSender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SMSSender{
		baseURL:  cfg.SMSBaseURL,
		apiKey:   cfg.SMSAPIKey,
		senderID: cfg.SMSSender,
		client:   &http.Client{Timeout: timeout},
	}
}

type smsPayload struct {
	To      string `json:"to"`
	From    string `json:"from,omitempty"`
	Message string `json:"message"`
}

func (s *SMSSender) Send(ctx context.Context, phone, message string) error {
	body, err := json.Marshal(smsPayload{To: phone, From: s.senderID, Message: message})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned %d", resp.StatusCode)
	}
	return nil
}

// LogSender only logs messages. Used when notifications are disabled.
type LogSender struct{}

func (LogSender) Send(_ context.Context, phone, message string) error {
	log.Printf("[notify] to=%s message=%q", phone, message)
	return nil
}

type MemberLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error)
}

type GroupLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error)
}

// GatedSender resolves the recipient, checks the group's subscription and
// renders the template before handing off to the transport. Groups without an
// active or trial subscription are declined silently.
type GatedSender struct {
	members   MemberLookup
	groups    GroupLookup
	transport Transport
	now       func() time.Time
}

func NewGatedSender(members MemberLookup, groups GroupLookup, transport Transport) *GatedSender {
	return &GatedSender{members: members, groups: groups, transport: transport, now: time.Now}
}

func (g *GatedSender) Notify(ctx context.Context, n Notification) error {
	member, err := g.members.GetByID(ctx, n.MemberID)
	if err != nil {
		return fmt.Errorf("resolve member %s: %w", n.MemberID, err)
	}

	group, err := g.groups.GetByID(ctx, member.GroupID)
	if err != nil {
		return fmt.Errorf("resolve group %s: %w", member.GroupID, err)
	}

	if !group.CanNotify(g.now()) {
		log.Printf("[notify] declined %s for member %s: subscription %s", n.Template, member.ID, group.SubscriptionStatus)
		return nil
	}

	vars := make(map[string]string, len(n.Variables)+2)
	vars["name"] = member.Name
	vars["group"] = group.Name
	for k, v := range n.Variables {
		vars[k] = v
	}

	message, err := Render(n.Template, vars)
	if err != nil {
		return err
	}
	return g.transport.Send(ctx, member.Phone, message)
}
