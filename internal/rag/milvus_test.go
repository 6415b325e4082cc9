package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildFilterExpr_TenantOnly(t *testing.T) {
	expr := buildFilterExpr(42, nil)
	assert.Equal(t, "tenant_id == 42", expr)
}

func TestBuildFilterExpr_TenantAlwaysPresent(t *testing.T) {
	expr := buildFilterExpr(7, map[string]interface{}{"document_id": int64(3)})
	assert.Equal(t, "tenant_id == 7 and document_id == 3", expr)
}

func TestBuildFilterExpr_MetadataKeysTargetJSONField(t *testing.T) {
	expr := buildFilterExpr(1, map[string]interface{}{"category": "report"})
	assert.Equal(t, `tenant_id == 1 and metadata["category"] == "report"`, expr)
}

func TestBuildFilterExpr_DeterministicKeyOrder(t *testing.T) {
	filters := map[string]interface{}{
		"b_key":       "two",
		"a_key":       "one",
		"document_id": 9,
	}
	expr := buildFilterExpr(1, filters)
	assert.Equal(t, `tenant_id == 1 and metadata["a_key"] == "one" and metadata["b_key"] == "two" and document_id == 9`, expr)
}

func TestBuildFilterExpr_EscapesStrings(t *testing.T) {
	expr := buildFilterExpr(1, map[string]interface{}{"title": `say "hi"`})
	assert.Equal(t, `tenant_id == 1 and metadata["title"] == "say \"hi\""`, expr)
}
