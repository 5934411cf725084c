// internal/models/template.go
package models

import "time"

// Template is a reusable message definition owned by an application. Name is
// unique within the application. Every placeholder referenced by Subject or
// Body must appear in Variables; extra declared variables are legal.
type Template struct {
	TemplateID string    `json:"template_id"`
	AppID      string    `json:"app_id"`
	Name       string    `json:"name"`
	Channel    Channel   `json:"channel"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	Variables  []string  `json:"variables,omitempty"`
	Locale     string    `json:"locale,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DeclaresVariable reports whether name is in the declared variable list.
func (t *Template) DeclaresVariable(name string) bool {
	for _, v := range t.Variables {
		if v == name {
			return true
		}
	}
	return false
}
