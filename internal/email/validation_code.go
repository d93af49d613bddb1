package email

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/sympauthy/sympauthy/internal/domain/repository"
)

var validationCodeHTML = template.Must(template.New("validation_code").Parse(`<!doctype html>
<html>
  <body style="font-family: sans-serif;">
    <p>Your verification code is:</p>
    <p style="font-size: 2em; letter-spacing: 0.3em;"><strong>{{.Code}}</strong></p>
    <p>The code expires in {{.TTL}} minutes. If you did not request it, you can ignore this email.</p>
  </body>
</html>`))

// ValidationCodeSender despacha validation codes por email.
type ValidationCodeSender struct {
	sender *SMTPSender
}

func NewValidationCodeSender(sender *SMTPSender) *ValidationCodeSender {
	return &ValidationCodeSender{sender: sender}
}

func (s *ValidationCodeSender) SendValidationCode(ctx context.Context, to string, code *repository.ValidationCode) error {
	ttl := int(code.ExpirationDate.Sub(code.IssueDate).Minutes())
	text := fmt.Sprintf("Your verification code is: %s\nThe code expires in %d minutes.", code.Code, ttl)

	var html strings.Builder
	if err := validationCodeHTML.Execute(&html, struct {
		Code string
		TTL  int
	}{code.Code, ttl}); err != nil {
		return err
	}
	return s.sender.Send(ctx, to, "Your verification code", text, html.String())
}
