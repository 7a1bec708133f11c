package models

import "strings"

// Record is one password entry.
type Record struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
	Note     string `json:"note"`
}

// Fields returns the values in output column order.
func (r Record) Fields() []string {
	return []string{r.Name, r.URL, r.Username, r.Password, r.Note}
}

// IsEmpty reports whether every field is blank after trimming.
func (r Record) IsEmpty() bool {
	for _, f := range r.Fields() {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
