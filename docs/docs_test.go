package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestRegisteredDocIsValidJSON(t *testing.T) {
	raw, err := swag.ReadDoc()
	require.NoError(t, err)

	var doc struct {
		BasePath string                     `json:"basePath"`
		Info     map[string]interface{}     `json:"info"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	assert.Equal(t, "/api", doc.BasePath)
	assert.Equal(t, "MedXMentor API", doc.Info["title"])
	for _, path := range []string{"/health", "/auth/login", "/assessments/{id}", "/assessments/dashboard/summary", "/mentor/message"} {
		assert.Contains(t, doc.Paths, path)
	}
}
