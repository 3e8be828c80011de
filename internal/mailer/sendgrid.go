package mailer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var (
	sgHost     = "https://api.sendgrid.com"
	sgEndpoint = "/v3/mail/send"
)

// Sendgrid delivers mail through the SendGrid v3 API.
type Sendgrid struct {
	key  string
	from *sgmail.Email
}

var _ Mailer = (*Sendgrid)(nil)

func NewSendgrid(apiKey, fromName, fromAddr string) *Sendgrid {
	return &Sendgrid{key: apiKey, from: sgmail.NewEmail(fromName, fromAddr)}
}

func (s *Sendgrid) Send(_ context.Context, to, subject, body string) error {
	p := sgmail.NewPersonalization()
	p.Subject = subject
	p.AddTos(sgmail.NewEmail("", to))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", body))

	req := sendgrid.GetRequest(s.key, sgEndpoint, sgHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}
