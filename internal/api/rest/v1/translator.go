package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/MGTheTrain/admin-console/internal/pkg/i18n"
)

// translator renders catalog messages in the negotiated locale of a request
type translator struct {
	catalog *i18n.Catalog
}

// T translates key. Without a catalog the key is returned with its placeholders
// replaced.
func (tr translator) T(c *gin.Context, key string, params map[string]string) string {
	if tr.catalog == nil {
		return i18n.ReplacePlaceholders(key, params)
	}
	return tr.catalog.Translate(currentLocale(c), key, params)
}
