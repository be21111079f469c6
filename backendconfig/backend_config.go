package backendconfig

import (
	"fmt"

	"github.com/spf13/viper"
)

func loadConfig() {
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", "5432")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.name", "xano_connector")
}

func init() {
	loadConfig()
}

// ResolveCredential picks the credential for a request. An inline
// credential always wins; otherwise the named credential is looked up
// in the store. The returned string is an error message, empty on
// success.
func (cd *HandleT) ResolveCredential(name string, inline CredentialT) (CredentialT, string) {
	if !inline.Empty() {
		if msg := inline.Validate(); msg != "" {
			return CredentialT{}, msg
		}
		return inline, ""
	}

	if name == "" {
		return CredentialT{}, "Base URL is required"
	}
	if cd == nil || cd.dbHandle == nil {
		return CredentialT{}, fmt.Sprintf("Credential %s cannot be resolved: no credential store configured", name)
	}

	cred, found := cd.GetCredential(name)
	if !found {
		return CredentialT{}, fmt.Sprintf("Unknown credential: %s", name)
	}
	return cred, ""
}
