package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateWithFallback(t *testing.T) {
	tr := New("en", []string{"en", "zh-CN", "xx"})

	assert.Equal(t, []string{"en", "zh-CN"}, tr.GetSupportedLanguages())
	assert.Equal(t, "Game over! No more moves available.", tr.T("en", KeyOver))
	assert.Equal(t, "游戏结束！没有可以移动的方块了。", tr.T("zh-CN", KeyOver))
	assert.Equal(t, tr.T("en", KeyWon), tr.T("fr", KeyWon))
	assert.Equal(t, "no.such.key", tr.T("en", "no.such.key"))
}

func TestEveryLocaleHasEveryKey(t *testing.T) {
	tr := New("en", []string{"en", "zh-CN"})
	keys := []string{
		KeyNewGame, KeyWon, KeyOver, KeyContinue, KeyInvalidMessage,
		KeyUnknownMessage, KeyInvalidDirection, KeyInvalidMove,
		KeyInvalidLeaderboard, KeyLeaderboardFailed, KeyBusy,
	}
	for _, lang := range tr.GetSupportedLanguages() {
		for _, key := range keys {
			assert.NotEqual(t, key, tr.T(lang, key), "%s missing %s", lang, key)
		}
	}
}

func TestDetectLanguage(t *testing.T) {
	tr := New("en", []string{"en", "zh-CN"})

	tests := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"zh-CN,zh;q=0.9", "zh-CN"},
		{"zh-TW;q=0.8", "zh-CN"},
		{"fr-FR, en;q=0.5", "en"},
		{"de", "en"},
		{"*", "en"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tr.DetectLanguage(tt.header), tt.header)
	}
}

func TestMiddlewarePriority(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tr := New("en", []string{"en", "zh-CN"})

	r := gin.New()
	r.Use(Middleware(tr))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetLanguage(c)) })
	r.POST("/lang/:lang", SetLanguage(tr))

	get := func(query string, header, cookie string) string {
		req := httptest.NewRequest(http.MethodGet, "/"+query, nil)
		if header != "" {
			req.Header.Set("Accept-Language", header)
		}
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: CookieName, Value: cookie})
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Body.String()
	}

	assert.Equal(t, "en", get("", "", ""))
	assert.Equal(t, "zh-CN", get("", "zh-CN", ""))
	assert.Equal(t, "zh-CN", get("", "", "zh-CN"))
	assert.Equal(t, "en", get("?lang=en", "zh-CN", "zh-CN"))
	assert.Equal(t, "zh-CN", get("?lang=xx", "zh-CN", ""))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/lang/zh-CN", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "lang=zh-CN")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/lang/xx", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
