package backendconfig

import (
	"database/sql"
	"strings"
)

// CredentialT is the credential boundary for the Xano meta API.
// AccessToken is secret material and must never be logged.
type CredentialT struct {
	Name        string `json:"name,omitempty"`
	BaseURL     string `json:"baseUrl"`
	AccessToken string `json:"accessToken"`
}

func (cred CredentialT) Validate() string {
	if strings.TrimSpace(cred.BaseURL) == "" {
		return "Base URL is required"
	}
	if strings.TrimSpace(cred.AccessToken) == "" {
		return "Access Token is required"
	}
	return ""
}

// Empty reports whether no inline credential was supplied at all, which
// triggers the named-credential lookup path.
func (cred CredentialT) Empty() bool {
	return cred.BaseURL == "" && cred.AccessToken == ""
}

type HandleT struct {
	dbHandle *sql.DB
}
