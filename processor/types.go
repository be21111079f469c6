package processor

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cast"

	"hookline.io/xano-connector/backendconfig"
)

var jsonfast = jsoniter.ConfigCompatibleWithStandardLibrary

// ParamsT holds one input item's resolved node parameters, loose-typed the
// way the workflow host delivers them.
type ParamsT map[string]interface{}

func (params ParamsT) String(name string) string {
	return cast.ToString(params[name])
}

func (params ParamsT) Int(name string, defaultValue int) int {
	val, exist := params[name]
	if !exist || val == nil {
		return defaultValue
	}
	return cast.ToInt(val)
}

func (params ParamsT) Bool(name string) bool {
	return cast.ToBool(params[name])
}

func (params ParamsT) Exists(name string) bool {
	_, exist := params[name]
	return exist
}

// IsArray reports whether the parameter is present and list-shaped.
func (params ParamsT) IsArray(name string) bool {
	_, ok := params[name].([]interface{})
	return ok
}

// Decode re-marshals a loose-typed parameter into the given structure.
func (params ParamsT) Decode(name string, out interface{}) error {
	raw, exist := params[name]
	if !exist || raw == nil {
		return nil
	}
	data, err := jsonfast.Marshal(raw)
	if err != nil {
		return err
	}
	return jsonfast.Unmarshal(data, out)
}

// ItemT is one input item: the upstream item payload plus the parameters
// the host resolved for it.
type ItemT struct {
	JSON   map[string]interface{} `json:"json"`
	Params ParamsT                `json:"params"`
}

// OutputItemT pairs a produced record with the input item it came from.
type OutputItemT struct {
	JSON       map[string]interface{} `json:"json"`
	PairedItem int                    `json:"pairedItem"`
}

type ExecutionRequestT struct {
	CredentialName string                    `json:"credentialName,omitempty"`
	Credential     backendconfig.CredentialT `json:"credential"`
	Items          []ItemT                   `json:"items"`
}

type ExecutionResponseT struct {
	ExecutionID string        `json:"executionId"`
	Results     []OutputItemT `json:"results"`
}

type KeyValueT struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
