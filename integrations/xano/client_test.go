package xano

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"hookline.io/xano-connector/backendconfig"
)

func newTestClient(t *testing.T, handler http.Handler) (*HandleT, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := &HandleT{}
	err := client.Setup(backendconfig.CredentialT{
		BaseURL:     server.URL,
		AccessToken: "test-token",
	}, server.Client())
	assert.Nil(t, err)
	return client, server
}

func TestSetupValidatesCredential(t *testing.T) {
	client := &HandleT{}

	err := client.Setup(backendconfig.CredentialT{AccessToken: "tok"}, nil)
	assert.EqualError(t, err, "Base URL is required")

	err = client.Setup(backendconfig.CredentialT{BaseURL: "https://x.example.com"}, nil)
	assert.EqualError(t, err, "Access Token is required")
}

func TestSetupNormalizesBaseURL(t *testing.T) {
	client := &HandleT{}
	err := client.Setup(backendconfig.CredentialT{
		BaseURL:     "https://x.example.com/",
		AccessToken: "tok",
	}, http.DefaultClient)
	assert.Nil(t, err)
	assert.Equal(t, "https://x.example.com/api:meta", client.BaseURL)
}

func TestCallSendsAuthHeaders(t *testing.T) {
	var gotAuth, gotAccept string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{"id":1,"email":"dev@example.com"}`))
	}))

	assert.Nil(t, client.ValidateAuth())
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "*/*", gotAccept)
}

func TestValidateAuthRejectsMissingAccount(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"nobody"}`))
	}))

	err := client.ValidateAuth()
	assert.EqualError(t, err, "Invalid authentication response: Missing account details")
}

func TestGetWorkspaces(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api:meta/workspace", r.URL.Path)
		w.Write([]byte(`[{"id":1,"display":"Main"},{"id":2,"name":"Side"},{"id":3}]`))
	}))

	options, err := client.GetWorkspaces()
	assert.Nil(t, err)
	assert.Len(t, options, 3)
	assert.Equal(t, "Main", options[0].Name)
	assert.Equal(t, "1", options[0].Value)
	assert.Equal(t, "Side", options[1].Name)
	assert.Equal(t, "Workspace 3", options[2].Name)
}

func TestGetWorkspacesRejectsNonArray(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[]}`))
	}))

	_, err := client.GetWorkspaces()
	assert.EqualError(t, err, "Invalid response format: Expected an array of workspaces")
}

func TestGetTables(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api:meta/workspace/7/table", r.URL.Path)
		w.Write([]byte(`{"items":[{"id":10,"name":"orders"},{"id":11}]}`))
	}))

	options, err := client.GetTables("7")
	assert.Nil(t, err)
	assert.Len(t, options, 2)
	assert.Equal(t, "orders", options[0].Name)
	assert.Equal(t, "10", options[0].Value)
	assert.Equal(t, "Table 11", options[1].Name)
}

func TestGetTablesSuppressesAuthStatuses(t *testing.T) {
	for _, status := range []int{401, 403, 404, 429} {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		options, err := client.GetTables("7")
		assert.Nil(t, err)
		assert.Equal(t, 0, len(options))
	}
}

func TestGetTablesPropagatesServerError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))

	_, err := client.GetTables("7")
	assert.NotNil(t, err)
}

func TestGetTableFieldsCachesSingleSlot(t *testing.T) {
	schemaFetches := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		schemaFetches++
		w.Write([]byte(`[{"name":"title","type":"text","required":true,"access":"public"}]`))
	}))

	_, err := client.GetTableFields("1", "10")
	assert.Nil(t, err)
	_, err = client.GetTableFields("1", "10")
	assert.Nil(t, err)
	assert.Equal(t, 1, schemaFetches)

	_, err = client.GetTableFields("1", "11")
	assert.Nil(t, err)
	assert.Equal(t, 2, schemaFetches)

	// the slot now holds table 11, so table 10 must be refetched
	_, err = client.GetTableFields("1", "10")
	assert.Nil(t, err)
	assert.Equal(t, 3, schemaFetches)
}

func TestGetTableContentSendsDataSourceHeader(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "live", r.Header.Get("X-data-source"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("per_page"))
		w.Write([]byte(`[]`))
	}))

	_, err := client.GetTableContent("1", "10", map[string]string{"page": "2", "per_page": "50"})
	assert.Nil(t, err)
}

func TestGetSingleContentUsesPut(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api:meta/workspace/1/table/10/content/5", r.URL.Path)
		w.Write([]byte(`{"id":5}`))
	}))

	body, err := client.GetSingleContent("1", "10", "5")
	assert.Nil(t, err)
	assert.JSONEq(t, `{"id":5}`, string(body))
}

func TestDeleteSingleContentEmptyBodyMeansSuccess(t *testing.T) {
	for _, payload := range []string{"", "null", "  "} {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "live", r.Header.Get("x-data-source"))
			w.Write([]byte(payload))
		}))

		body, err := client.DeleteSingleContent("1", "10", "5")
		assert.Nil(t, err)
		assert.JSONEq(t, `{"success":true,"message":"Content deleted successfully."}`, string(body))
	}
}

func TestUpdateRowAddressesByPayloadID(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api:meta/workspace/1/table/10/content/9", r.URL.Path)
		w.Write([]byte(`{"id":9}`))
	}))

	_, err := client.UpdateRow("1", "10", map[string]interface{}{"id": 9, "name": "Widget"})
	assert.Nil(t, err)
}

func TestTestCredentialHitsCentralHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/me", r.URL.Path)
		w.Write([]byte(`{"id":1,"email":"dev@example.com"}`))
	}))
	defer server.Close()

	original := credentialTestURL
	credentialTestURL = server.URL
	defer func() { credentialTestURL = original }()

	err := TestCredential(backendconfig.CredentialT{AccessToken: "tok"}, server.Client())
	assert.Nil(t, err)
}
