package validation

import (
	"testing"

	"github.com/calyra/flowaudit/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validator(t *testing.T) *DocumentValidator {
	t.Helper()
	v, err := NewDocumentValidator()
	require.NoError(t, err)
	return v
}

func TestValidateRawAcceptsWellFormedDocuments(t *testing.T) {
	v := validator(t)

	tests := []struct {
		name string
		data string
	}{
		{"modern", `{"id":"wf1","nodes":[{"id":"n1","type":"email","config":{"to":"{{contact.email}}"}}],"connections":[{"from":"n1","to":"n2"}]}`},
		{"legacy", `{"triggers":[{"type":"form_submitted"}],"actions":[{"type":"email"}]}`},
		{"empty object", `{}`},
		{"unknown extra fields", `{"id":"wf1","platformInternal":{"x":1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, v.ValidateRaw([]byte(tt.data)))
		})
	}
}

func TestValidateRawRejectsShapeViolations(t *testing.T) {
	v := validator(t)

	tests := []struct {
		name string
		data string
	}{
		{"not an object", `[1,2,3]`},
		{"nodes not an array", `{"nodes":{"id":"n1"}}`},
		{"node id not a string", `{"nodes":[{"id":42}]}`},
		{"connection missing from", `{"connections":[{"to":"n2"}]}`},
		{"config not an object", `{"actions":[{"type":"email","config":"nope"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateRaw([]byte(tt.data))
			require.Error(t, err)

			var ferr *schema.FlowauditError
			require.ErrorAs(t, err, &ferr)
			assert.Equal(t, schema.ErrCodeValidation, ferr.Code)
		})
	}
}

func TestValidateRawRejectsInvalidJSON(t *testing.T) {
	v := validator(t)
	err := v.ValidateRaw([]byte(`{"id":`))
	require.Error(t, err)
}

func TestValidateDocument(t *testing.T) {
	v := validator(t)

	doc := &schema.WorkflowDocument{
		ID:    "wf1",
		Nodes: []schema.RawNode{{ID: "n1", Type: "email"}},
		Connections: []schema.RawConnection{
			{From: "n1", To: "n1"},
		},
	}
	assert.NoError(t, v.ValidateDocument(doc))
}

func TestValidateDocumentNil(t *testing.T) {
	v := validator(t)
	err := v.ValidateDocument(nil)
	require.Error(t, err)

	var ferr *schema.FlowauditError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, schema.ErrCodeValidation, ferr.Code)
}

func TestValidationErrorCarriesViolations(t *testing.T) {
	v := validator(t)
	err := v.ValidateRaw([]byte(`{"nodes":[{"id":1}],"status":2}`))
	require.Error(t, err)

	var ferr *schema.FlowauditError
	require.ErrorAs(t, err, &ferr)
	violations, ok := ferr.Details["violations"].([]string)
	require.True(t, ok)
	assert.NotEmpty(t, violations)
}
