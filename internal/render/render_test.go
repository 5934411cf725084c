package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"notifyd/internal/models"
)

func emailTemplate(subject, body string, vars ...string) *models.Template {
	return &models.Template{
		TemplateID: "tpl-1",
		AppID:      "app-1",
		Name:       "welcome",
		Channel:    models.ChannelEmail,
		Subject:    subject,
		Body:       body,
		Variables:  vars,
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name        string
		template    *models.Template
		bindings    map[string]string
		wantSubject string
		wantBody    string
	}{
		{
			name:        "substitutes all placeholders",
			template:    emailTemplate("Hello {{name}}", "Your order {{order}} shipped, {{name}}.", "name", "order"),
			bindings:    map[string]string{"name": "Ada", "order": "42"},
			wantSubject: "Hello Ada",
			wantBody:    "Your order 42 shipped, Ada.",
		},
		{
			name:        "unreferenced bindings are ignored",
			template:    emailTemplate("Hi {{name}}", "plain body", "name"),
			bindings:    map[string]string{"name": "Ada", "extra": "unused"},
			wantSubject: "Hi Ada",
			wantBody:    "plain body",
		},
		{
			name:        "declared but unreferenced variable needs no binding",
			template:    emailTemplate("Hi {{name}}", "no placeholders here", "name", "optional"),
			bindings:    map[string]string{"name": "Ada"},
			wantSubject: "Hi Ada",
			wantBody:    "no placeholders here",
		},
		{
			name:        "same placeholder used twice",
			template:    emailTemplate("{{code}}", "code {{code}} again {{code}}", "code"),
			bindings:    map[string]string{"code": "XYZ"},
			wantSubject: "XYZ",
			wantBody:    "code XYZ again XYZ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := Render(tt.template, tt.bindings)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantSubject, content.Subject)
			assert.Equal(t, tt.wantBody, content.Body)
			assert.NotContains(t, content.Subject, "{{")
			assert.NotContains(t, content.Body, "{{")
		})
	}
}

func TestRenderMissingVariable(t *testing.T) {
	tmpl := emailTemplate("Hello {{name}}", "Order {{order}}", "name", "order")

	_, err := Render(tmpl, map[string]string{"name": "Ada"})
	assert.Error(t, err)

	var missing *MissingVariableError
	assert.ErrorAs(t, err, &missing)
	assert.Equal(t, "order", missing.Variable)
}

func TestRenderDeterministic(t *testing.T) {
	tmpl := emailTemplate("{{a}} {{b}}", "{{b}} {{a}}", "a", "b")
	bindings := map[string]string{"a": "one", "b": "two"}

	first, err := Render(tmpl, bindings)
	assert.NoError(t, err)
	second, err := Render(tmpl, bindings)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderWebhookEscaping(t *testing.T) {
	tmpl := &models.Template{
		Name:      "hook",
		Channel:   models.ChannelWebhook,
		Subject:   "alert",
		Body:      `value: {{v}}`,
		Variables: []string{"v"},
	}

	content, err := Render(tmpl, map[string]string{"v": "a\"b\\c\nd"})
	assert.NoError(t, err)
	assert.Equal(t, `value: a\"b\\c\nd`, content.Body)
}

func TestRenderSSEEscaping(t *testing.T) {
	tmpl := &models.Template{
		Name:      "stream",
		Channel:   models.ChannelSSE,
		Body:      "line one\nline two\r\nline three",
		Variables: nil,
	}

	content, err := Render(tmpl, nil)
	assert.NoError(t, err)
	assert.Equal(t, `line one\nline two\nline three`, content.Body)
	assert.NotContains(t, content.Body, "\n")
}

func TestValidateTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template *models.Template
		wantErr  bool
	}{
		{
			name:     "all references declared",
			template: emailTemplate("Hi {{name}}", "Bye {{name}}", "name"),
			wantErr:  false,
		},
		{
			name:     "extra declared variables are legal",
			template: emailTemplate("Hi {{name}}", "plain", "name", "unused"),
			wantErr:  false,
		},
		{
			name:     "undeclared reference rejected",
			template: emailTemplate("Hi {{name}}", "Order {{order}}", "name"),
			wantErr:  true,
		},
		{
			name:     "no placeholders at all",
			template: emailTemplate("static", "static body"),
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTemplate(tt.template)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReferencedVariables(t *testing.T) {
	tmpl := emailTemplate("{{b}} and {{a}}", "{{a}} only", "a", "b")
	assert.Equal(t, []string{"a", "b"}, ReferencedVariables(tmpl))
}
