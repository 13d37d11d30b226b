package smtp

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"github.com/go-confirm-mailer/internal/domain"
)

// ConfirmationMailParams feeds the confirmation templates.
type ConfirmationMailParams struct {
	Email           string
	ConfirmationURL string
	BrandingName    string
}

var (
	subscriptionTemplate   = template.New("subscription")
	unsubscriptionTemplate = template.New("unsubscription")

	//go:embed templates/subscription.html
	subscriptionTemplateRaw string
	//go:embed templates/unsubscription.html
	unsubscriptionTemplateRaw string
)

func init() {
	if _, err := subscriptionTemplate.Parse(subscriptionTemplateRaw); err != nil {
		panic(err)
	}
	if _, err := unsubscriptionTemplate.Parse(unsubscriptionTemplateRaw); err != nil {
		panic(err)
	}
}

func render(t *template.Template, p any) (string, error) {
	b := bytes.Buffer{}
	err := t.Execute(&b, p)
	return b.String(), err
}

// RenderConfirmation returns the subject and HTML body for kind.
func RenderConfirmation(kind domain.Kind, p ConfirmationMailParams) (subject, body string, err error) {
	if p.BrandingName == "" {
		p.BrandingName = "G-Weather"
	}
	switch kind {
	case domain.KindSubscribe:
		body, err = render(subscriptionTemplate, p)
		return fmt.Sprintf("Confirm your %s subscription", p.BrandingName), body, err
	case domain.KindUnsubscribe:
		body, err = render(unsubscriptionTemplate, p)
		return fmt.Sprintf("Confirm your %s unsubscription", p.BrandingName), body, err
	}
	return "", "", fmt.Errorf("no template for type %q: %w", kind, domain.ErrBadRequest)
}
