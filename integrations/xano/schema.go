package xano

import (
	"fmt"
	"strings"
	"sync"

	"hookline.io/xano-connector/integrations"
	"hookline.io/xano-connector/misc"
)

var reservedSystemFields = []string{"id", "created_at", "updated_at"}

// fieldCacheT is a deliberately single-slot cache: at most one
// workspace/table key is resident, and any miss clears the slot wholesale
// before the fresh fetch is stored.
type fieldCacheT struct {
	mu     sync.Mutex
	key    string
	fields []integrations.FieldOptionT
}

func (fc *fieldCacheT) lookup(key string) ([]integrations.FieldOptionT, bool) {
	if fc.key == key && fc.fields != nil {
		return fc.fields, true
	}
	return nil, false
}

func (fc *fieldCacheT) replace(key string, fields []integrations.FieldOptionT) {
	fc.key = key
	fc.fields = fields
}

func (fc *fieldCacheT) clear() {
	fc.key = ""
	fc.fields = nil
}

// CanonicalFieldName strips label decorations, keeping the leading run of
// characters up to the first whitespace or "(". "price (currency) *"
// canonicalizes to "price".
func CanonicalFieldName(name string) string {
	for i, r := range name {
		if r == '(' || r == ' ' || r == '\t' || r == '\n' {
			return name[:i]
		}
	}
	return name
}

// BuildFieldOptions derives host-facing field options from raw schema
// columns. Private columns are dropped; the label carries the type and a
// trailing " *" for required fields without a default (except id, which
// creation auto-assigns).
func BuildFieldOptions(columns []integrations.ColumnDescriptorT) []integrations.FieldOptionT {
	options := make([]integrations.FieldOptionT, 0, len(columns))
	for _, column := range columns {
		if column.Access == "private" {
			continue
		}

		label := column.Name
		if label == "" {
			label = "Unnamed"
		}
		if column.Type != "" {
			label += fmt.Sprintf(" (%s)", column.Type)
		}

		isIDField := strings.EqualFold(column.Name, "id")
		markRequired := column.Required && column.Default == nil && !isIDField
		if markRequired {
			label += " *"
		}

		descParts := []string{}
		if column.Type != "" {
			descParts = append(descParts, fmt.Sprintf("Type: %s", column.Type))
		}
		if markRequired {
			descParts = append(descParts, "Required")
		}
		if column.Default != nil {
			descParts = append(descParts, fmt.Sprintf("Default: %v", column.Default))
		}

		access := column.Access
		if access == "" {
			access = "public"
		}

		options = append(options, integrations.FieldOptionT{
			Name:        label,
			Value:       column.Name,
			Description: strings.Join(descParts, " • "),
			Type:        column.Type,
			Required:    column.Required,
			Access:      access,
		})
	}
	return options
}

// FilterFieldOptionsForCreate drops the id field, which the remote API
// auto-assigns on creation.
func FilterFieldOptionsForCreate(fields []integrations.FieldOptionT) []integrations.FieldOptionT {
	filtered := make([]integrations.FieldOptionT, 0, len(fields))
	for _, field := range fields {
		if strings.EqualFold(field.Value, "id") {
			continue
		}
		filtered = append(filtered, field)
	}
	return filtered
}

// FieldSetsT holds the two name sets payload validation runs against,
// both in schema order.
type FieldSetsT struct {
	RequiredFields []string
	ValidFields    []string
}

// DeriveFieldSets canonicalizes every field label into ValidFields and
// collects into RequiredFields the public, required, non-system fields.
func DeriveFieldSets(fields []integrations.FieldOptionT) FieldSetsT {
	sets := FieldSetsT{
		RequiredFields: []string{},
		ValidFields:    make([]string, 0, len(fields)),
	}
	for _, field := range fields {
		canonical := CanonicalFieldName(field.Name)
		sets.ValidFields = append(sets.ValidFields, canonical)

		if field.Required && field.Access == "public" && !isReservedSystemField(canonical) {
			sets.RequiredFields = append(sets.RequiredFields, canonical)
		}
	}
	return sets
}

func isReservedSystemField(name string) bool {
	return misc.ContainsString(reservedSystemFields, name)
}
