package handlers

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/counselflow/counselflow-api/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bindTarget struct {
	Title string `json:"title"`
	Value int    `json:"value"`
}

func bindContext(body string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestBindNestedOrFlat(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		body        string
		expected    bindTarget
		expectError bool
	}{
		{
			name:     "Nested Structure",
			body:     `{"contract": {"title": "MSA", "value": 30}}`,
			expected: bindTarget{Title: "MSA", Value: 30},
		},
		{
			name:     "Flat Structure",
			body:     `{"title": "NDA", "value": 25}`,
			expected: bindTarget{Title: "NDA", Value: 25},
		},
		{
			name:     "Key Next To Other Fields Binds Flat",
			body:     `{"contract": "ignored", "title": "Lease", "value": 40}`,
			expected: bindTarget{Title: "Lease", Value: 40},
		},
		{
			name:        "Wrong Type",
			body:        `{"title": "Eve", "value": "invalid"}`,
			expectError: true,
		},
		{
			name:        "Nested but Invalid Content",
			body:        `{"contract": {"title": "Frank", "value": "invalid"}}`,
			expectError: true,
		},
		{
			name:        "Nested Key Present but Invalid Type",
			body:        `{"contract": "some string"}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result bindTarget
			err := BindNestedOrFlat(bindContext(tt.body), "contract", &result)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestBindNestedOrFlat_EmptyBody(t *testing.T) {
	var result bindTarget
	err := BindNestedOrFlat(bindContext("  "), "contract", &result)
	assert.ErrorIs(t, err, io.EOF)
}

func TestBindBody_ReportsFieldErrors(t *testing.T) {
	var result bindTarget
	err := bindBody(bindContext(`{"value": "ten"}`), "contract", &result)

	verr, ok := validation.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "value", verr.Fields[0].Field)

	err = bindBody(bindContext(""), "contract", &result)
	verr, ok = validation.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "request body is required", verr.Fields[0].Message)
}
