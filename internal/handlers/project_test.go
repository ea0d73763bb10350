package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestParseQueryID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		in string
		id uint
		ok bool
	}{
		{"123", 123, true},
		{"1", 1, true},
		{"0", 0, false},
		{"-5", 0, false},
		{"123abc", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"1.5", 0, false},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		id, ok := parseQueryID(c, tc.in)
		if id != tc.id || ok != tc.ok {
			t.Errorf("parseQueryID(%q) = (%d, %v), expected (%d, %v)", tc.in, id, ok, tc.id, tc.ok)
		}
		if !tc.ok && w.Code != 400 {
			t.Errorf("parseQueryID(%q): status = %d, expected 400", tc.in, w.Code)
		}
	}
}
