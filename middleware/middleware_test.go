package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	U "crmetrics/util"
)

func TestRequestIdGenerator(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req, err := http.NewRequest(http.MethodGet, "/reports/funnel", nil)
	assert.Nil(t, err)
	c.Request = req

	RequestIdGenerator()(c)

	reqID := U.GetScopeByKeyAsString(c, SCOPE_REQ_ID)
	assert.NotEmpty(t, reqID)
}
