package templates

import (
	"bytes"
	"fmt"
	htmltpl "html/template"
	texttpl "text/template"
)

// Template names understood by Render.
const (
	Activation  = "activation"
	Welcome     = "welcome"
	LoginNotice = "login_notice"
)

type emailTemplate struct {
	subject string
	text    string
	html    string
}

var registry = map[string]emailTemplate{
	Activation: {
		subject: "Activate your account",
		text: "Hello {{.Name}},\n\n" +
			"Please click the link below to activate your account:\n{{.Link}}\n\n" +
			"The link expires in 24 hours. If you did not sign up, ignore this email.\n",
		html: `<p>Hello {{.Name}},</p>
<p>Please click the link below to activate your account:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>The link expires in 24 hours. If you did not sign up, ignore this email.</p>`,
	},
	Welcome: {
		subject: "Welcome aboard",
		text: "Hello {{.Name}},\n\n" +
			"Your account is activated. You can now log in and start shopping.\n",
		html: `<p>Hello {{.Name}},</p>
<p>Your account is activated. You can now log in and start shopping.</p>`,
	},
	LoginNotice: {
		subject: "New login to your account",
		text: "Hello {{.Name}},\n\n" +
			"We noticed a new login to your account at {{.Time}}. " +
			"If this was not you, please contact support.\n",
		html: `<p>Hello {{.Name}},</p>
<p>We noticed a new login to your account at {{.Time}}.
If this was not you, please contact support.</p>`,
	},
}

// Render produces the subject, text and HTML bodies for the named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	tpl, ok := registry[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}

	var tbuf bytes.Buffer
	tt, err := texttpl.New(name + "_text").Parse(tpl.text)
	if err != nil {
		return "", "", "", err
	}
	if err := tt.Execute(&tbuf, data); err != nil {
		return "", "", "", err
	}

	var hbuf bytes.Buffer
	ht, err := htmltpl.New(name + "_html").Parse(tpl.html)
	if err != nil {
		return "", "", "", err
	}
	if err := ht.Execute(&hbuf, data); err != nil {
		return "", "", "", err
	}

	return tpl.subject, tbuf.String(), hbuf.String(), nil
}
