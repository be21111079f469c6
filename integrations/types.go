package integrations

// ColumnDescriptorT is one column as reported by the remote schema endpoint.
// Name may carry decorations (a trailing type annotation) that must be
// stripped to obtain the canonical identifier.
type ColumnDescriptorT struct {
	Name     string      `json:"name"`
	Type     string      `json:"type"`
	Required bool        `json:"required"`
	Default  interface{} `json:"default"`
	Access   string      `json:"access"`
}

// FieldOptionT is the derived field descriptor used both for UI option
// listings and for payload validation. Name holds the display label,
// Value the canonical column name.
type FieldOptionT struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Access      string `json:"access"`
}

// FieldAssignmentT is one user-supplied column/value pair, raw prior to
// any type coercion.
type FieldAssignmentT struct {
	FieldName  string `json:"fieldName"`
	FieldValue string `json:"fieldValue"`
}

// BulkItemT is one entry of the field-builder bulk input shape.
type BulkItemT struct {
	Fields []FieldAssignmentT `json:"fields"`
}

type BulkCreateRequestT struct {
	Items        []map[string]interface{} `json:"items"`
	AllowIDField bool                     `json:"allow_id_field"`
}

type BulkUpdateItemT struct {
	RowID   interface{}            `json:"row_id"`
	Updates map[string]interface{} `json:"updates"`
}

type BulkUpdateRequestT struct {
	Items []BulkUpdateItemT `json:"items"`
}

type SearchRequestT struct {
	Page    int                 `json:"page"`
	PerPage int                 `json:"per_page"`
	Sort    map[string]string   `json:"sort,omitempty"`
	Search  []map[string]string `json:"search,omitempty"`
}

// OptionT is one entry of a host-facing option listing.
type OptionT struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
