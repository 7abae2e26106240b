package apicontract_test

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apicontract "github.com/tuanvumaihuynh/product-discount/api-contract"
)

func TestSpecIsValid(t *testing.T) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(apicontract.GetSpecBytes())
	require.NoError(t, err)

	require.NoError(t, doc.Validate(context.Background()))

	for _, path := range []string{"/products", "/products/{id}", "/healthz"} {
		assert.NotNil(t, doc.Paths.Find(path), "missing path %s", path)
	}

	item := doc.Paths.Find("/products/{id}")
	require.NotNil(t, item)
	assert.NotNil(t, item.Get)
	assert.NotNil(t, item.Put)
	assert.NotNil(t, item.Delete)

	product := doc.Components.Schemas["ProductResponse"]
	require.NotNil(t, product)
	assert.ElementsMatch(t, []string{"id", "name", "price"}, product.Value.Required)
}
