package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mescude1/skinly-ecomm/docs"
)

func TestConfigureSwagger(t *testing.T) {
	orig := *docs.SwaggerInfo
	t.Cleanup(func() { *docs.SwaggerInfo = orig })

	t.Run("uses public base url", func(t *testing.T) {
		configureSwagger("https://shop.skinly.com/", "localhost:8080")
		assert.Equal(t, "shop.skinly.com", docs.SwaggerInfo.Host)
		assert.Equal(t, []string{"https"}, docs.SwaggerInfo.Schemes)
	})

	t.Run("falls back to app host", func(t *testing.T) {
		configureSwagger("not a url", "localhost:8080")
		assert.Equal(t, "localhost:8080", docs.SwaggerInfo.Host)
		assert.Equal(t, []string{"http"}, docs.SwaggerInfo.Schemes)
	})
}
