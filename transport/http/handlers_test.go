package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/yukti-app/walletd/core"
)

func TestAbortWithErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		kind   core.Kind
		status int
	}{
		{core.KindInvalidAmount, http.StatusBadRequest},
		{core.KindInvalidAddress, http.StatusBadRequest},
		{core.KindAuthorizationRejected, http.StatusUnauthorized},
		{core.KindStaleSession, http.StatusUnauthorized},
		{core.KindNotConnected, http.StatusConflict},
		{core.KindSubmissionFailed, http.StatusBadGateway},
		{core.KindConfirmationTimeout, http.StatusGatewayTimeout},
	}

	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			abortWithError(c, core.Errorf(tc.kind, "boom"))

			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), string(tc.kind))
		})
	}

	t.Run("unclassified", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		abortWithError(c, errors.New("unexpected"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
