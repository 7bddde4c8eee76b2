// Package auth renders the access gate.
package auth

import "github.com/rohanthewiz/element"

// LoginPage asks for the vault access password.
type LoginPage struct {
	Title string
	Error string
}

// NewLoginPage creates a new login page
func NewLoginPage() LoginPage {
	return LoginPage{
		Title: "Unlock - NoteVault",
	}
}

// Render generates the HTML for the login page
func (p LoginPage) Render() string {
	b := element.NewBuilder()

	b.Html("lang", "en").R(
		p.renderHead(b),
		p.renderBody(b),
	)

	return b.String()
}

func (p LoginPage) renderHead(b *element.Builder) any {
	return b.Head().R(
		b.Meta("charset", "UTF-8"),
		b.Meta("name", "viewport", "content", "width=device-width, initial-scale=1.0"),
		b.Title().T(p.Title),
		b.Link("rel", "stylesheet", "href", "/static/css/app.css?v=1"),
	)
}

func (p LoginPage) renderBody(b *element.Builder) any {
	errClass := "auth-error hidden"
	if p.Error != "" {
		errClass = "auth-error"
	}

	return b.Body().R(
		b.DivClass("auth-container").R(
			b.DivClass("auth-card").R(
				b.DivClass("auth-logo").R(
					b.H1().T("NoteVault"),
				),
				b.H2Class("auth-title").T("Enter the access code"),
				b.Div("class", errClass, "id", "error-message").T(p.Error),

				b.Form("class", "auth-form", "id", "login-form", "onsubmit", "return app.login(event)").R(
					b.DivClass("form-group").R(
						b.LabelClass("form-label", "for", "password").T("Access code"),
						b.Input("type", "password", "class", "form-input", "id", "password",
							"name", "password", "required", "required", "autocomplete", "current-password"),
					),
					b.Button("type", "submit", "class", "auth-submit", "id", "submit-btn").T("Unlock"),
				),
			),
		),
		b.Script("src", "/static/js/app.js?v=1").R(),
	)
}
