package servicedef

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Tool is one entry of a tools/list result.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	InputSchema map[string]interface{} `json:"inputSchema,omitempty"`
}

// Resource is one entry of a resources/list result.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

type ToolsListResult struct {
	Tools []Tool `json:"tools"`
}

type ResourcesListResult struct {
	Resources []Resource `json:"resources"`
}

// DecodeToolsList reads the "result" member of a tools/list response body.
func DecodeToolsList(responseBody ldvalue.Value) (ToolsListResult, error) {
	var ret ToolsListResult
	err := decodeResult(responseBody, &ret)
	return ret, err
}

// DecodeResourcesList reads the "result" member of a resources/list response body.
func DecodeResourcesList(responseBody ldvalue.Value) (ResourcesListResult, error) {
	var ret ResourcesListResult
	err := decodeResult(responseBody, &ret)
	return ret, err
}

func decodeResult(responseBody ldvalue.Value, target interface{}) error {
	result := responseBody.GetByKey("result")
	if result.Type() != ldvalue.ObjectType {
		return fmt.Errorf("response has no result object: %s", responseBody.JSONString())
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "json",
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(result.AsArbitraryValue()); err != nil {
		return fmt.Errorf("malformed result: %w", err)
	}
	return nil
}
