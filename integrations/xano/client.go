package xano

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"hookline.io/xano-connector/backendconfig"
	"hookline.io/xano-connector/integrations"
	"hookline.io/xano-connector/misc"
	"hookline.io/xano-connector/utils/logger"
)

// credentialTestURL is where the credential probe goes. It deliberately
// ignores the configured base URL and hits the central host, matching the
// remote API's documented credential-test contract.
var credentialTestURL = "https://app.xano.com/api:meta"

// HandleT is the Xano meta-API client. The base URL and token are resolved
// once in Setup; the single-slot field cache is owned by the instance.
type HandleT struct {
	BaseURL     string
	accessToken string
	Client      *http.Client

	fieldCache fieldCacheT
}

// Setup resolves the credential and prepares the HTTP client. A nil
// httpClient gets a copy of the default transport with widened idle-conn
// limits.
func (handle *HandleT) Setup(cred backendconfig.CredentialT, httpClient *http.Client) error {
	if msg := cred.Validate(); msg != "" {
		return NewValidationError("%s", msg)
	}

	handle.BaseURL = strings.TrimRight(cred.BaseURL, "/") + "/api:meta"
	handle.accessToken = cred.AccessToken

	if httpClient != nil {
		handle.Client = httpClient
		return nil
	}

	defaultRoundTripper := http.DefaultTransport
	defaultTransportPointer, ok := defaultRoundTripper.(*http.Transport)
	misc.Assert(ok)
	var defaultTransportCopy http.Transport
	misc.Copy(&defaultTransportCopy, defaultTransportPointer)
	defaultTransportCopy.MaxIdleConns = 100
	defaultTransportCopy.MaxIdleConnsPerHost = 100
	handle.Client = &http.Client{Transport: &defaultTransportCopy}

	return nil
}

type requestT struct {
	method  string
	path    string
	query   url.Values
	headers map[string]string
	body    interface{}
}

func (handle *HandleT) call(req requestT) (json.RawMessage, error) {
	fullURL := handle.BaseURL + req.path
	if len(req.query) > 0 {
		fullURL += "?" + req.query.Encode()
	}

	var bodyReader io.Reader
	if req.body != nil {
		bodyData, err := json.Marshal(req.body)
		if err != nil {
			return nil, errors.Wrap(err, "marshaling request body")
		}
		bodyReader = bytes.NewReader(bodyData)
	}

	httpReq, err := http.NewRequest(req.method, fullURL, bodyReader)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}

	httpReq.Header.Set("Authorization", "Bearer "+handle.accessToken)
	httpReq.Header.Set("Accept", "*/*")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, val := range req.headers {
		httpReq.Header.Set(key, val)
	}

	resp, err := handle.Client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "sending request to xano meta api")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response body")
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: respBody}
	}

	return respBody, nil
}

// ValidateAuth checks the configured base URL accepts the token and
// belongs to a real account.
func (handle *HandleT) ValidateAuth() error {
	respBody, err := handle.call(requestT{method: http.MethodGet, path: "/auth/me"})
	if err != nil {
		return err
	}

	var account map[string]interface{}
	if err := json.Unmarshal(respBody, &account); err != nil {
		return NewTransportError("Invalid authentication response: Missing account details")
	}
	if account["id"] == nil || account["email"] == nil {
		return NewTransportError("Invalid authentication response: Missing account details")
	}
	return nil
}

// TestCredential probes the fixed central host, not the configured base
// URL. Preserved as-is from the remote API's credential-test contract.
func TestCredential(cred backendconfig.CredentialT, httpClient *http.Client) error {
	probe := HandleT{BaseURL: credentialTestURL, accessToken: cred.AccessToken, Client: httpClient}
	if probe.Client == nil {
		probe.Client = http.DefaultClient
	}
	return probe.ValidateAuth()
}

func (handle *HandleT) GetWorkspaces() ([]integrations.OptionT, error) {
	respBody, err := handle.call(requestT{method: http.MethodGet, path: "/workspace"})
	if err != nil {
		return nil, err
	}

	var workspaces []map[string]interface{}
	if err := json.Unmarshal(respBody, &workspaces); err != nil {
		return nil, NewTransportError("Invalid response format: Expected an array of workspaces")
	}

	options := make([]integrations.OptionT, 0, len(workspaces))
	for _, workspace := range workspaces {
		options = append(options, integrations.OptionT{
			Name:  displayLabel(workspace, "Workspace"),
			Value: optionValue(workspace),
		})
	}
	return options, nil
}

// GetTables backs UI autocompletion and must never block the editor:
// 401/403/404/429 responses come back as an empty option list.
func (handle *HandleT) GetTables(workspaceID string) ([]integrations.OptionT, error) {
	respBody, err := handle.call(requestT{
		method: http.MethodGet,
		path:   "/workspace/" + url.PathEscape(workspaceID) + "/table",
	})
	if err != nil {
		if apiErr, ok := err.(*APIError); ok {
			switch apiErr.StatusCode {
			case 401, 403, 404, 429:
				logger.Debug(fmt.Sprintf("Table listing suppressed for workspace %s. Status: %d", workspaceID, apiErr.StatusCode))
				return []integrations.OptionT{}, nil
			}
		}
		return nil, errors.Wrap(err, "Failed to fetch tables")
	}

	var envelope struct {
		Items []map[string]interface{} `json:"items"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil || envelope.Items == nil {
		return []integrations.OptionT{}, nil
	}

	options := make([]integrations.OptionT, 0, len(envelope.Items))
	for _, table := range envelope.Items {
		options = append(options, integrations.OptionT{
			Name:  displayLabel(table, "Table"),
			Value: optionValue(table),
		})
	}
	return options, nil
}

func (handle *HandleT) getTableSchema(workspaceID, tableID string) ([]integrations.ColumnDescriptorT, error) {
	respBody, err := handle.call(requestT{
		method: http.MethodGet,
		path:   "/workspace/" + url.PathEscape(workspaceID) + "/table/" + url.PathEscape(tableID) + "/schema",
	})
	if err != nil {
		return nil, err
	}

	var columns []integrations.ColumnDescriptorT
	if err := json.Unmarshal(respBody, &columns); err != nil {
		return nil, NewTransportError("Invalid schema response: Expected an array of columns")
	}
	return columns, nil
}

// GetTableFields returns the derived field options for the table, cached
// in the instance's single slot. A key miss clears the slot wholesale
// before fetching.
func (handle *HandleT) GetTableFields(workspaceID, tableID string) ([]integrations.FieldOptionT, error) {
	cacheKey := workspaceID + "-" + tableID

	handle.fieldCache.mu.Lock()
	defer handle.fieldCache.mu.Unlock()

	if fields, hit := handle.fieldCache.lookup(cacheKey); hit {
		return fields, nil
	}

	handle.fieldCache.clear()

	columns, err := handle.getTableSchema(workspaceID, tableID)
	if err != nil {
		return nil, err
	}

	fields := BuildFieldOptions(columns)
	handle.fieldCache.replace(cacheKey, fields)
	return fields, nil
}

func (handle *HandleT) GetTableFieldsForCreate(workspaceID, tableID string) ([]integrations.FieldOptionT, error) {
	fields, err := handle.GetTableFields(workspaceID, tableID)
	if err != nil {
		return nil, err
	}
	return FilterFieldOptionsForCreate(fields), nil
}

func (handle *HandleT) GetTableContent(workspaceID, tableID string, queryParams map[string]string) (json.RawMessage, error) {
	query := url.Values{}
	for key, val := range queryParams {
		query.Set(key, val)
	}

	return handle.call(requestT{
		method:  http.MethodGet,
		path:    "/workspace/" + url.PathEscape(workspaceID) + "/table/" + url.PathEscape(tableID) + "/content",
		query:   query,
		headers: map[string]string{"X-data-source": "live"},
	})
}

func (handle *HandleT) SearchTableRows(workspaceID, tableID string, search integrations.SearchRequestT) (json.RawMessage, error) {
	return handle.call(requestT{
		method:  http.MethodPost,
		path:    "/workspace/" + url.PathEscape(workspaceID) + "/table/" + url.PathEscape(tableID) + "/content/search",
		headers: map[string]string{"X-data-source": "live"},
		body:    search,
	})
}

func (handle *HandleT) CreateRow(workspaceID, tableID string, rowData map[string]interface{}) (json.RawMessage, error) {
	return handle.call(requestT{
		method: http.MethodPost,
		path:   "/workspace/" + url.PathEscape(workspaceID) + "/table/" + url.PathEscape(tableID) + "/content",
		body:   rowData,
	})
}

// UpdateRow addresses the row by the id carried inside the payload.
func (handle *HandleT) UpdateRow(workspaceID, tableID string, rowData map[string]interface{}) (json.RawMessage, error) {
	rowID := cast.ToString(rowData["id"])
	return handle.call(requestT{
		method: http.MethodPut,
		path:   "/workspace/" + url.PathEscape(workspaceID) + "/table/" + url.PathEscape(tableID) + "/content/" + url.PathEscape(rowID),
		body:   rowData,
	})
}

// GetSingleContent uses PUT against the content-by-id path with no body.
// That is what the remote API answers to; preserved as-is.
func (handle *HandleT) GetSingleContent(workspaceID, tableID, contentID string) (json.RawMessage, error) {
	return handle.call(requestT{
		method: http.MethodPut,
		path:   "/workspace/" + url.PathEscape(workspaceID) + "/table/" + url.PathEscape(tableID) + "/content/" + url.PathEscape(contentID),
	})
}

// DeleteSingleContent treats an empty response body as success, since the
// delete endpoint legitimately returns no content.
func (handle *HandleT) DeleteSingleContent(workspaceID, tableID, contentID string) (json.RawMessage, error) {
	respBody, err := handle.call(requestT{
		method:  http.MethodDelete,
		path:    "/workspace/" + url.PathEscape(workspaceID) + "/table/" + url.PathEscape(tableID) + "/content/" + url.PathEscape(contentID),
		headers: map[string]string{"x-data-source": "live"},
	})
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(respBody)) == 0 || string(bytes.TrimSpace(respBody)) == "null" {
		return json.RawMessage(`{"success":true,"message":"Content deleted successfully."}`), nil
	}
	return respBody, nil
}

func (handle *HandleT) BulkCreateContent(workspaceID, tableID string, request integrations.BulkCreateRequestT) (json.RawMessage, error) {
	return handle.call(requestT{
		method: http.MethodPost,
		path:   "/workspace/" + url.PathEscape(workspaceID) + "/table/" + url.PathEscape(tableID) + "/content/bulk",
		body:   request,
	})
}

func (handle *HandleT) BulkUpdateContent(workspaceID, tableID string, request integrations.BulkUpdateRequestT) (json.RawMessage, error) {
	return handle.call(requestT{
		method: http.MethodPost,
		path:   "/workspace/" + url.PathEscape(workspaceID) + "/table/" + url.PathEscape(tableID) + "/content/bulk/patch",
		body:   request,
	})
}

func displayLabel(record map[string]interface{}, kind string) string {
	if display, ok := record["display"].(string); ok && display != "" {
		return display
	}
	if name, ok := record["name"].(string); ok && name != "" {
		return name
	}
	return fmt.Sprintf("%s %s", kind, cast.ToString(record["id"]))
}

func optionValue(record map[string]interface{}) string {
	if id := cast.ToString(record["id"]); id != "" {
		return id
	}
	return cast.ToString(record["name"])
}
