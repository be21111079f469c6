package backendconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCredentialValidate(t *testing.T) {
	assert.Equal(t, "Base URL is required", CredentialT{AccessToken: "tok"}.Validate())
	assert.Equal(t, "Base URL is required", CredentialT{BaseURL: "   ", AccessToken: "tok"}.Validate())
	assert.Equal(t, "Access Token is required", CredentialT{BaseURL: "https://x.example.com"}.Validate())
	assert.Equal(t, "", CredentialT{BaseURL: "https://x.example.com", AccessToken: "tok"}.Validate())
}

func TestCredentialEmpty(t *testing.T) {
	assert.True(t, CredentialT{}.Empty())
	assert.True(t, CredentialT{Name: "prod"}.Empty())
	assert.False(t, CredentialT{BaseURL: "https://x.example.com"}.Empty())
}

func TestResolveCredentialInline(t *testing.T) {
	var store *HandleT

	inline := CredentialT{BaseURL: "https://x.example.com", AccessToken: "tok"}
	cred, errMsg := store.ResolveCredential("ignored", inline)
	assert.Equal(t, "", errMsg)
	assert.Equal(t, inline, cred)

	_, errMsg = store.ResolveCredential("", CredentialT{BaseURL: "https://x.example.com"})
	assert.Equal(t, "Access Token is required", errMsg)
}

func TestResolveCredentialNamedWithoutStore(t *testing.T) {
	var store *HandleT

	_, errMsg := store.ResolveCredential("", CredentialT{})
	assert.Equal(t, "Base URL is required", errMsg)

	_, errMsg = store.ResolveCredential("prod", CredentialT{})
	assert.Equal(t, "Credential prod cannot be resolved: no credential store configured", errMsg)
}
