package notify

import (
	"bytes"
	"fmt"
	"text/template"
)

const (
	TemplateContributionReminder = "contribution_reminder"
	TemplateContributionRecorded = "contribution_recorded"
	TemplateCycleStarted         = "cycle_started"
	TemplatePayoutReceived       = "payout_received"
	TemplateMemberApproved       = "member_approved"
	TemplateLoanOffered          = "loan_offered"
	TemplateLoanDecision         = "loan_decision"
	TemplateLoanReminder         = "loan_reminder"
	TemplateRepaymentApproved    = "repayment_approved"
	TemplateRepaymentRejected    = "repayment_rejected"
	TemplateWithdrawalProcessed  = "withdrawal_processed"
)

var templateText = map[string]string{
	TemplateContributionReminder: "Hi {{.name}}, your contribution of KES {{.amount}} is due on {{.due_date}}.",
	TemplateContributionRecorded: "Hi {{.name}}, we recorded KES {{.amount}} towards cycle {{.cycle_number}}. Status: {{.status}}.",
	TemplateCycleStarted:         "Hi {{.name}}, cycle {{.cycle_number}} has started. You are number {{.position}} and receive your payout on {{.payout_date}}.",
	TemplatePayoutReceived:       "Hi {{.name}}, your payout of KES {{.amount}} for cycle {{.cycle_number}} has been recorded.",
	TemplateMemberApproved:       "Hi {{.name}}, your membership of {{.group}} has been approved.",
	TemplateLoanOffered:          "Hi {{.name}}, you have a loan offer of KES {{.amount}}. Total due KES {{.total_due}} in {{.installments}} installments.",
	TemplateLoanDecision:         "Hi {{.name}}, your loan of KES {{.amount}} is now {{.status}}.",
	TemplateLoanReminder:         "Hi {{.name}}, your loan balance of KES {{.total_due}} is due on {{.due_date}}.",
	TemplateRepaymentApproved:    "Hi {{.name}}, your repayment of KES {{.amount}} was approved. Balance KES {{.total_due}}.",
	TemplateRepaymentRejected:    "Hi {{.name}}, your repayment of KES {{.amount}} was rejected.",
	TemplateWithdrawalProcessed:  "Hi {{.name}}, your withdrawal of KES {{.amount}} was {{.status}}.",
}

var templates = func() map[string]*template.Template {
	out := make(map[string]*template.Template, len(templateText))
	for name, text := range templateText {
		out[name] = template.Must(template.New(name).Option("missingkey=zero").Parse(text))
	}
	return out
}()

// Render fills the named template with vars.
func Render(name string, vars map[string]string) (string, error) {
	t, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", err
	}
	return buf.String(), nil
}
