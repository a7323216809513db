package middleware

import (
	"egov-portal/internal/i18n"

	"github.com/gin-gonic/gin"
)

const ContextLanguage = "language"

// Language обирає мову запиту: ?lang, X-Language, Accept-Language, інакше fallback
func Language(fallback i18n.Language) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := fallback
		for _, candidate := range []string{
			c.Query("lang"),
			c.GetHeader("X-Language"),
			c.GetHeader("Accept-Language"),
		} {
			if parsed, ok := i18n.ParseLanguage(candidate); ok {
				lang = parsed
				break
			}
		}

		c.Set(ContextLanguage, lang)
		c.Header("Content-Language", string(lang))
		c.Next()
	}
}

// GetLanguage повертає мову запиту, англійську якщо middleware не підключено
func GetLanguage(c *gin.Context) i18n.Language {
	if value, ok := c.Get(ContextLanguage); ok {
		if lang, ok := value.(i18n.Language); ok {
			return lang
		}
	}
	return i18n.English
}

// Translate перекладає ключ мовою запиту
func Translate(c *gin.Context, key string, args ...interface{}) string {
	return i18n.T(GetLanguage(c), key, args...)
}

// AbortWithError відповідає {"error": <переклад>, "code": <ключ>} і зупиняє ланцюжок
func AbortWithError(c *gin.Context, status int, key string, args ...interface{}) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": Translate(c, key, args...),
		"code":  key,
	})
}
