package processor

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"hookline.io/xano-connector/integrations"
	"hookline.io/xano-connector/integrations/xano"
	jobsdb "hookline.io/xano-connector/jobs"
	stats "hookline.io/xano-connector/services"
	"hookline.io/xano-connector/utils/logger"
)

// HandleT walks an execution batch strictly in order, one item at a time.
// The first failing item aborts the rest of the batch; there is no
// partial-results mode and no retry at this layer.
type HandleT struct {
	Client  *xano.HandleT
	Journal *jobsdb.HandleT
}

func (proc *HandleT) Setup(client *xano.HandleT, journal *jobsdb.HandleT) {
	proc.Client = client
	proc.Journal = journal
}

func (proc *HandleT) Execute(items []ItemT) ([]OutputItemT, *xano.OperationError) {
	returnData := []OutputItemT{}

	for i, item := range items {
		operation := item.Params.String("operation")

		jobUUID := uuid.New().String()
		proc.Journal.Store(&jobsdb.ExecutionJobT{
			UUID:        jobUUID,
			Operation:   operation,
			WorkspaceID: item.Params.String("workspace"),
			TableID:     item.Params.String("table"),
			JobState:    jobsdb.ExecutingState,
		})

		result, err := proc.executeItem(item)
		if err != nil {
			opErr := xano.ClassifyError(operation, err)
			stats.NewStat("operation." + operation).Count(stats.Failed, 1)
			proc.Journal.UpdateStatus(jobUUID, jobsdb.FailedState, opErr.Kind.String(), opErr.Message)
			logger.Error(fmt.Sprintf("Operation %s failed for item %d. Error: %s", operation, i, opErr.Message))
			return nil, opErr
		}

		stats.NewStat("operation." + operation).Count(stats.Success, 1)
		proc.Journal.UpdateStatus(jobUUID, jobsdb.SucceededState, "200", "")

		returnData = append(returnData, fanOut(result, i)...)
	}

	return returnData, nil
}

// executeItem validates the selectors, builds the operation payload and
// performs the remote call, returning the raw response body.
func (proc *HandleT) executeItem(item ItemT) (json.RawMessage, error) {
	params := item.Params

	resource := params.String("resource")
	if resource == "" {
		resource = "table"
	}
	if resource != "table" {
		return nil, xano.NewValidationError("Unknown resource: %s", resource)
	}

	workspaceID := params.String("workspace")
	tableID := params.String("table")
	if workspaceID == "" {
		return nil, xano.NewValidationError("Workspace ID is required")
	}
	if tableID == "" {
		return nil, xano.NewValidationError("Table ID is required")
	}

	operation := params.String("operation")
	switch operation {
	case "getTableContent":
		return proc.Client.GetTableContent(workspaceID, tableID, proc.buildQueryParams(params))

	case "searchRow":
		request, err := xano.BuildSearchRequest(
			params.Int("page", 1),
			params.Int("per_page", 10),
			params.String("sortby"),
			params.String("sortOrder"),
			params.String("searchItemsJson"),
		)
		if err != nil {
			return nil, err
		}
		return proc.Client.SearchTableRows(workspaceID, tableID, request)

	case "createRow":
		rowData, err := proc.buildSingleRow(params, workspaceID, tableID, "create row operation")
		if err != nil {
			return nil, err
		}
		return proc.Client.CreateRow(workspaceID, tableID, rowData)

	case "updateRow":
		rowData, err := proc.buildSingleRow(params, workspaceID, tableID, "update")
		if err != nil {
			return nil, err
		}
		return proc.Client.UpdateRow(workspaceID, tableID, rowData)

	case "getSingleContent":
		contentID := params.String("singleContentId")
		if contentID == "" {
			return nil, xano.NewValidationError("Single content ID is required")
		}
		return proc.Client.GetSingleContent(workspaceID, tableID, contentID)

	case "deleteSingleContent":
		contentID := params.String("contentId")
		if contentID == "" {
			return nil, xano.NewValidationError("Content ID is required")
		}
		return proc.Client.DeleteSingleContent(workspaceID, tableID, contentID)

	case "bulkCreateContent":
		return proc.bulkCreate(params, workspaceID, tableID)

	case "bulkUpdateContent":
		return proc.bulkUpdate(params, workspaceID, tableID)

	default:
		return nil, xano.NewValidationError("Unknown operation: %s", operation)
	}
}

func (proc *HandleT) buildSingleRow(params ParamsT, workspaceID, tableID, operationLabel string) (map[string]interface{}, error) {
	var assignments []integrations.FieldAssignmentT
	if err := params.Decode("fields", &assignments); err != nil {
		return nil, xano.NewValidationError("No fields provided for %s", operationLabel)
	}

	schemaFields, err := proc.Client.GetTableFields(workspaceID, tableID)
	if err != nil {
		return nil, err
	}

	rowData, err := xano.BuildRowPayload(assignments, schemaFields, operationLabel)
	if err != nil {
		return nil, err
	}

	if params.Bool("normalizeTimestamps") {
		xano.NormalizeTimestamps(rowData, schemaFields)
	}
	return rowData, nil
}

func (proc *HandleT) bulkCreate(params ParamsT, workspaceID, tableID string) (json.RawMessage, error) {
	configMethod := params.String("configMethod")
	if configMethod == "" {
		return nil, xano.NewValidationError("Invalid configuration method for bulk create")
	}

	allowIDField := params.Bool("allowIdField")

	if configMethod == "fieldBuilder" {
		items, err := proc.decodeBulkItems(params, "items", "create")
		if err != nil {
			return nil, err
		}
		request, err := xano.BuildBulkCreateRequest(items, allowIDField)
		if err != nil {
			return nil, err
		}
		return proc.Client.BulkCreateContent(workspaceID, tableID, request)
	}

	request, err := xano.BuildBulkCreateRequestFromJSON(params.String("itemsJson"), allowIDField)
	if err != nil {
		return nil, err
	}
	return proc.Client.BulkCreateContent(workspaceID, tableID, request)
}

func (proc *HandleT) bulkUpdate(params ParamsT, workspaceID, tableID string) (json.RawMessage, error) {
	configMethod := params.String("configUpdateMethod")
	if configMethod == "" {
		return nil, xano.NewValidationError("Invalid configuration method for bulk update")
	}

	if configMethod == "fieldBuilder" {
		items, err := proc.decodeBulkItems(params, "updateItems", "update")
		if err != nil {
			return nil, err
		}
		request, err := xano.BuildBulkUpdateRequest(items)
		if err != nil {
			return nil, err
		}
		return proc.Client.BulkUpdateContent(workspaceID, tableID, request)
	}

	request, err := xano.BuildBulkUpdateRequestFromJSON(params.String("updateItemsJson"))
	if err != nil {
		return nil, err
	}
	return proc.Client.BulkUpdateContent(workspaceID, tableID, request)
}

func (proc *HandleT) decodeBulkItems(params ParamsT, name, operationLabel string) ([]integrations.BulkItemT, error) {
	if !params.IsArray(name) {
		return nil, xano.NewValidationError("Invalid bulk %s fields", operationLabel)
	}
	var items []integrations.BulkItemT
	if err := params.Decode(name, &items); err != nil {
		return nil, xano.NewValidationError("Invalid bulk %s fields", operationLabel)
	}
	return items, nil
}

func (proc *HandleT) buildQueryParams(params ParamsT) map[string]string {
	qs := map[string]string{
		"page":     fmt.Sprintf("%d", params.Int("page", 1)),
		"per_page": fmt.Sprintf("%d", params.Int("per_page", 10)),
	}

	var extraParams []KeyValueT
	if err := params.Decode("queryParams", &extraParams); err == nil {
		for _, param := range extraParams {
			if param.Key != "" {
				qs[param.Key] = param.Value
			}
		}
	}
	return qs
}

// fanOut turns an array response into one output item per record, all
// paired to the originating input index.
func fanOut(result json.RawMessage, itemIndex int) []OutputItemT {
	var parsed interface{}
	if err := json.Unmarshal(result, &parsed); err != nil {
		return []OutputItemT{{JSON: map[string]interface{}{"data": string(result)}, PairedItem: itemIndex}}
	}

	switch typed := parsed.(type) {
	case []interface{}:
		out := make([]OutputItemT, 0, len(typed))
		for _, record := range typed {
			out = append(out, OutputItemT{JSON: toItemJSON(record), PairedItem: itemIndex})
		}
		return out
	default:
		return []OutputItemT{{JSON: toItemJSON(parsed), PairedItem: itemIndex}}
	}
}

func toItemJSON(record interface{}) map[string]interface{} {
	if recordMap, ok := record.(map[string]interface{}); ok {
		return recordMap
	}
	return map[string]interface{}{"data": record}
}
