package xano

import (
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"hookline.io/xano-connector/integrations"
)

var jsonfast = jsoniter.ConfigCompatibleWithStandardLibrary

// ParseFieldValue coerces a raw string the user typed into a plain-text
// field. Values that look structured, boolean, null, or numeric go through
// a JSON parse so "123", "true" and `{"a":1}` arrive typed; anything else
// (and any parse failure) passes through unchanged.
func ParseFieldValue(value string) interface{} {
	looksTyped := strings.HasPrefix(value, "{") ||
		strings.HasPrefix(value, "[") ||
		value == "true" || value == "false" || value == "null" ||
		isNumeric(value)

	if !looksTyped {
		return value
	}

	var parsed interface{}
	if err := jsonfast.Unmarshal([]byte(value), &parsed); err != nil {
		return value
	}
	return parsed
}

func isNumeric(value string) bool {
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

// BuildRowPayload validates the field-builder assignments for a single-row
// create or update against the table's field sets and produces the wire
// payload. Missing required fields (schema order) and unknown fields are
// reported together in one validation failure.
func BuildRowPayload(assignments []integrations.FieldAssignmentT, fields []integrations.FieldOptionT, operation string) (map[string]interface{}, error) {
	if len(assignments) == 0 {
		return nil, NewValidationError("No fields provided for %s", operation)
	}

	sets := DeriveFieldSets(fields)

	// last write wins on duplicate names
	inputFieldMap := map[string]string{}
	for _, assignment := range assignments {
		if assignment.FieldName != "" {
			inputFieldMap[assignment.FieldName] = assignment.FieldValue
		}
	}

	invalidFields := []string{}
	seen := map[string]bool{}
	for _, assignment := range assignments {
		name := assignment.FieldName
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		if !containsField(sets.ValidFields, name) {
			invalidFields = append(invalidFields, name)
		}
	}

	missingFields := []string{}
	for _, required := range sets.RequiredFields {
		value, supplied := inputFieldMap[required]
		if !supplied || strings.TrimSpace(value) == "" {
			missingFields = append(missingFields, required)
		}
	}

	if len(missingFields) > 0 || len(invalidFields) > 0 {
		parts := []string{}
		if len(missingFields) > 0 {
			parts = append(parts, "These field(s) are required: "+strings.Join(missingFields, ", "))
		}
		if len(invalidFields) > 0 {
			parts = append(parts, "Invalid field(s) detected for this table: "+strings.Join(invalidFields, ", "))
		}
		return nil, NewValidationError("%s", strings.Join(parts, "; "))
	}

	rowData := map[string]interface{}{}
	for name, value := range inputFieldMap {
		rowData[name] = ParseFieldValue(value)
	}
	return rowData, nil
}

// NormalizeTimestamps rewrites string values destined for timestamp-typed
// columns into epoch milliseconds. Opt-in; unparseable strings pass
// through unchanged.
func NormalizeTimestamps(rowData map[string]interface{}, fields []integrations.FieldOptionT) {
	for _, field := range fields {
		switch field.Type {
		case "timestamp", "date", "datetime":
		default:
			continue
		}

		name := CanonicalFieldName(field.Value)
		raw, ok := rowData[name].(string)
		if !ok || raw == "" {
			continue
		}
		parsed, err := dateparse.ParseAny(raw)
		if err != nil {
			continue
		}
		rowData[name] = parsed.UnixMilli()
	}
}

// projectBulkItems flattens field-builder bulk items into row maps. Values
// stay raw strings here: the bulk field-builder path deliberately skips
// ParseFieldValue, matching what existing flows already send.
func projectBulkItems(items []integrations.BulkItemT, operation string) ([]map[string]interface{}, error) {
	if items == nil {
		return nil, NewValidationError("Invalid bulk %s fields", operation)
	}

	for _, item := range items {
		if !hasAssignment(item.Fields, "id") {
			return nil, NewValidationError("Each item must have an ID field for bulk update")
		}
	}

	projected := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		row := map[string]interface{}{}
		for _, field := range item.Fields {
			row[field.FieldName] = field.FieldValue
		}
		projected = append(projected, row)
	}
	return projected, nil
}

func hasAssignment(fields []integrations.FieldAssignmentT, name string) bool {
	for _, field := range fields {
		if field.FieldName == name {
			return true
		}
	}
	return false
}

func BuildBulkCreateRequest(items []integrations.BulkItemT, allowIDField bool) (integrations.BulkCreateRequestT, error) {
	rows, err := projectBulkItems(items, "create")
	if err != nil {
		return integrations.BulkCreateRequestT{}, err
	}
	return integrations.BulkCreateRequestT{Items: rows, AllowIDField: allowIDField}, nil
}

// BuildBulkUpdateRequest splits each item into its row identifier and the
// remaining updates.
func BuildBulkUpdateRequest(items []integrations.BulkItemT) (integrations.BulkUpdateRequestT, error) {
	rows, err := projectBulkItems(items, "update")
	if err != nil {
		return integrations.BulkUpdateRequestT{}, err
	}

	updateItems := make([]integrations.BulkUpdateItemT, 0, len(rows))
	for _, row := range rows {
		rowID := row["id"]
		updates := map[string]interface{}{}
		for key, val := range row {
			if key == "id" {
				continue
			}
			updates[key] = val
		}
		updateItems = append(updateItems, integrations.BulkUpdateItemT{RowID: rowID, Updates: updates})
	}
	return integrations.BulkUpdateRequestT{Items: updateItems}, nil
}

func validateItemsJSON(itemsJSON, operation string) error {
	trimmed := strings.TrimSpace(itemsJSON)
	if trimmed == "" {
		return NewValidationError("Items JSON is required for bulk %s", operation)
	}
	if itemsJSON == "[]" {
		return NewValidationError("Items JSON array cannot be empty")
	}
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return NewValidationError(`Invalid JSON: must start and end with "[" and "]"`)
	}
	return nil
}

func BuildBulkCreateRequestFromJSON(itemsJSON string, allowIDField bool) (integrations.BulkCreateRequestT, error) {
	if err := validateItemsJSON(itemsJSON, "create"); err != nil {
		return integrations.BulkCreateRequestT{}, err
	}

	var rows []map[string]interface{}
	if err := jsonfast.Unmarshal([]byte(itemsJSON), &rows); err != nil {
		return integrations.BulkCreateRequestT{}, NewValidationError("Invalid JSON format for bulk create items")
	}
	return integrations.BulkCreateRequestT{Items: rows, AllowIDField: allowIDField}, nil
}

// BuildBulkUpdateRequestFromJSON takes already-typed JSON rows. Each row
// must carry "row_id" or "id" (row_id takes precedence); the rest of the
// row becomes the updates object.
func BuildBulkUpdateRequestFromJSON(itemsJSON string) (integrations.BulkUpdateRequestT, error) {
	if err := validateItemsJSON(itemsJSON, "update"); err != nil {
		return integrations.BulkUpdateRequestT{}, err
	}

	parsed := gjson.Parse(strings.TrimSpace(itemsJSON))
	if !parsed.IsArray() || !gjson.Valid(strings.TrimSpace(itemsJSON)) {
		return integrations.BulkUpdateRequestT{}, NewValidationError("Invalid JSON format for update items")
	}

	updateItems := []integrations.BulkUpdateItemT{}
	for _, row := range parsed.Array() {
		rowID := row.Get("row_id")
		if !presentIdentifier(rowID) {
			rowID = row.Get("id")
		}
		if !presentIdentifier(rowID) {
			return integrations.BulkUpdateRequestT{}, NewValidationError(`Each item must have either "row_id" or "id"`)
		}

		updatesRaw := row.Raw
		updatesRaw, _ = sjson.Delete(updatesRaw, "row_id")
		updatesRaw, _ = sjson.Delete(updatesRaw, "id")

		updates := map[string]interface{}{}
		if err := jsonfast.Unmarshal([]byte(updatesRaw), &updates); err != nil {
			return integrations.BulkUpdateRequestT{}, NewValidationError("Invalid JSON format for update items")
		}

		updateItems = append(updateItems, integrations.BulkUpdateItemT{RowID: rowID.Value(), Updates: updates})
	}
	return integrations.BulkUpdateRequestT{Items: updateItems}, nil
}

func presentIdentifier(result gjson.Result) bool {
	if !result.Exists() || result.Type == gjson.Null {
		return false
	}
	if result.Type == gjson.String && result.Str == "" {
		return false
	}
	if result.Type == gjson.Number && result.Num == 0 {
		return false
	}
	return true
}

// BuildSearchRequest shapes the search body. An absent search JSON is an
// empty condition list, not an error.
func BuildSearchRequest(page, perPage int, sortBy, sortOrder, searchJSON string) (integrations.SearchRequestT, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 10
	}

	request := integrations.SearchRequestT{Page: page, PerPage: perPage}
	if sortBy != "" && sortOrder != "" {
		request.Sort = map[string]string{sortBy: sortOrder}
	}

	trimmed := strings.TrimSpace(searchJSON)
	if trimmed == "" {
		return request, nil
	}

	if !gjson.Valid(trimmed) {
		return request, NewValidationError("Invalid JSON format in search input")
	}
	if !gjson.Parse(trimmed).IsArray() {
		return request, NewValidationError("Invalid JSON format in search input: Search input must be a JSON array.")
	}

	var conditions []map[string]string
	if err := jsonfast.Unmarshal([]byte(trimmed), &conditions); err != nil {
		return request, NewValidationError("Invalid JSON format in search input: %s", err.Error())
	}
	if len(conditions) > 0 {
		request.Search = conditions
	}
	return request, nil
}

func containsField(fields []string, name string) bool {
	for _, field := range fields {
		if field == name {
			return true
		}
	}
	return false
}
