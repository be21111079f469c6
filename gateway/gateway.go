package gateway

import (
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/viper"
	"github.com/tidwall/sjson"

	"hookline.io/xano-connector/backendconfig"
	"hookline.io/xano-connector/integrations"
	"hookline.io/xano-connector/integrations/xano"
	jobsdb "hookline.io/xano-connector/jobs"
	"hookline.io/xano-connector/processor"
	"hookline.io/xano-connector/utils/logger"
)

var jsonfast = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	maxReqSize int
)

func loadConfig() {
	// Maximum request size accepted on the execute endpoint
	maxReqSize = viper.GetInt("Gateway.maxReqSizeInKB") * 1000
}

type HandleT struct {
	credentialStore *backendconfig.HandleT
	journal         *jobsdb.HandleT
	ackCount        uint64
	recvCount       uint64
}

func (gateway *HandleT) Setup(credentialStore *backendconfig.HandleT, journal *jobsdb.HandleT) {
	loadConfig()
	gateway.credentialStore = credentialStore
	gateway.journal = journal
}

// ProcessExecute runs a batch of operation items against the Xano meta
// API and returns one output item per produced record.
func (gateway *HandleT) ProcessExecute(c *gin.Context) {
	atomic.AddUint64(&gateway.recvCount, 1)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body from request"})
		return
	}
	if maxReqSize > 0 && len(body) > maxReqSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request size exceeds max limit"})
		return
	}

	var request processor.ExecutionRequestT
	if err := jsonfast.Unmarshal(body, &request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	cred, errMsg := gateway.credentialStore.ResolveCredential(request.CredentialName, request.Credential)
	if errMsg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
		return
	}

	var client xano.HandleT
	if err := client.Setup(cred, nil); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var proc processor.HandleT
	proc.Setup(&client, gateway.journal)

	results, opErr := proc.Execute(request.Items)
	if opErr != nil {
		status := http.StatusInternalServerError
		if opErr.Kind == xano.ErrValidation {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": opErr.Message, "kind": opErr.Kind.String()})
		return
	}

	response := processor.ExecutionResponseT{
		ExecutionID: uuid.New().String(),
		Results:     results,
	}
	respBody, err := jsonfast.Marshal(response)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode response"})
		return
	}
	respBody, _ = sjson.SetBytes(respBody, "receivedAt", time.Now().Format(time.RFC3339))

	atomic.AddUint64(&gateway.ackCount, 1)
	c.Data(http.StatusOK, "application/json", respBody)
}

// ProcessCredentialTest probes the fixed meta host with the supplied
// token, mirroring the credential check the host UI runs.
func (gateway *HandleT) ProcessCredentialTest(c *gin.Context) {
	var cred backendconfig.CredentialT
	if err := c.ShouldBindJSON(&cred); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid request payload"})
		return
	}

	if err := xano.TestCredential(cred, nil); err != nil {
		opErr := xano.ClassifyError("credential test", err)
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": opErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ProcessSaveCredential persists a named credential in the store.
func (gateway *HandleT) ProcessSaveCredential(c *gin.Context) {
	if gateway.credentialStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No credential store configured"})
		return
	}

	var cred backendconfig.CredentialT
	if err := c.ShouldBindJSON(&cred); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	if cred.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Credential name is required"})
		return
	}
	if msg := cred.Validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	if err := gateway.credentialStore.SaveCredential(cred); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save credential"})
		return
	}
	logger.Info(fmt.Sprintf("Saved credential %s", cred.Name))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetWorkspaceOptions lists the account's workspaces as option pairs.
func (gateway *HandleT) GetWorkspaceOptions(c *gin.Context) {
	client, errMsg := gateway.optionsClient(c)
	if errMsg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
		return
	}

	workspaces, err := client.GetWorkspaces()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": xano.ClassifyError("workspace listing", err).Message})
		return
	}
	c.JSON(http.StatusOK, workspaces)
}

// GetTableOptions lists a workspace's tables. A missing workspace
// selector yields an empty list rather than an error so that UI
// autocompletion degrades quietly.
func (gateway *HandleT) GetTableOptions(c *gin.Context) {
	workspaceID := c.Query("workspace")
	if workspaceID == "" {
		c.JSON(http.StatusOK, []integrations.OptionT{})
		return
	}

	client, errMsg := gateway.optionsClient(c)
	if errMsg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
		return
	}

	tables, err := client.GetTables(workspaceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": xano.ClassifyError("table listing", err).Message})
		return
	}
	c.JSON(http.StatusOK, tables)
}

// GetFieldOptions lists a table's field options from the schema cache.
// forCreate=true drops the id field.
func (gateway *HandleT) GetFieldOptions(c *gin.Context) {
	workspaceID := c.Query("workspace")
	tableID := c.Query("table")
	if workspaceID == "" || tableID == "" {
		c.JSON(http.StatusOK, []integrations.FieldOptionT{})
		return
	}

	client, errMsg := gateway.optionsClient(c)
	if errMsg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
		return
	}

	var fields []integrations.FieldOptionT
	var err error
	if c.Query("forCreate") == "true" {
		fields, err = client.GetTableFieldsForCreate(workspaceID, tableID)
	} else {
		fields, err = client.GetTableFields(workspaceID, tableID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": xano.ClassifyError("field listing", err).Message})
		return
	}
	c.JSON(http.StatusOK, fields)
}

func (gateway *HandleT) ProcessHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"recvCount": atomic.LoadUint64(&gateway.recvCount),
		"ackCount":  atomic.LoadUint64(&gateway.ackCount),
	})
}

// optionsClient builds a per-request client for the option endpoints.
// Credentials arrive via the X-Base-Url/X-Access-Token headers or a
// named credential in the "credential" query parameter.
func (gateway *HandleT) optionsClient(c *gin.Context) (*xano.HandleT, string) {
	inline := backendconfig.CredentialT{
		BaseURL:     c.GetHeader("X-Base-Url"),
		AccessToken: c.GetHeader("X-Access-Token"),
	}

	cred, errMsg := gateway.credentialStore.ResolveCredential(c.Query("credential"), inline)
	if errMsg != "" {
		return nil, errMsg
	}

	var client xano.HandleT
	if err := client.Setup(cred, nil); err != nil {
		return nil, err.Error()
	}
	return &client, ""
}
