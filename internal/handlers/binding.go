package handlers

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/counselflow/counselflow-api/internal/validation"
	"github.com/gin-gonic/gin"
)

// BindNestedOrFlat binds the request body to obj.
// A body of the form {"<key>": {...}} binds the nested object; any other object binds as a whole.
func BindNestedOrFlat(c *gin.Context, key string, obj interface{}) error {
	var bodyBytes []byte
	if c.Request.Body != nil {
		bodyBytes, _ = io.ReadAll(c.Request.Body)
	}
	// Restore body for future binding or subsequent reads
	c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	if len(bytes.TrimSpace(bodyBytes)) == 0 {
		return io.EOF
	}

	var nestedMap map[string]json.RawMessage
	if err := json.Unmarshal(bodyBytes, &nestedMap); err == nil {
		if val, ok := nestedMap[key]; ok && len(nestedMap) == 1 {
			return json.Unmarshal(val, obj)
		}
	}

	return json.Unmarshal(bodyBytes, obj)
}

// bindBody binds the body and reports decoding failures as validation errors
func bindBody(c *gin.Context, key string, obj interface{}) error {
	return validation.FromBindError(BindNestedOrFlat(c, key, obj))
}
