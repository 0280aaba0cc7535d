package i18n

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// 支持的消息语言
const (
	LocaleDE = "de"
	LocaleEN = "en"
)

var defaultLocale atomic.Value

func init() {
	defaultLocale.Store(LocaleDE)
}

// SetDefaultLocale 设置默认语言（未支持的语言被忽略）
func SetDefaultLocale(locale string) {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if _, ok := catalog[locale]; ok {
		defaultLocale.Store(locale)
	}
}

// DefaultLocale 当前默认语言
func DefaultLocale() string {
	return defaultLocale.Load().(string)
}

// ResolveLocale 从 Accept-Language 解析消息语言
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale()
	}
	for _, lang := range ParseAcceptLanguage(c.GetHeader("Accept-Language")) {
		if _, ok := catalog[lang]; ok {
			return lang
		}
	}
	return DefaultLocale()
}

// PrimaryLanguage 请求首选语言的主标签，解析失败时返回 fallback
func PrimaryLanguage(header, fallback string) string {
	langs := ParseAcceptLanguage(header)
	if len(langs) == 0 {
		return fallback
	}
	return langs[0]
}

// ParseAcceptLanguage 按权重降序返回主语言标签（去重、小写）
func ParseAcceptLanguage(header string) []string {
	type weighted struct {
		lang  string
		q     float64
		index int
	}
	parts := strings.Split(header, ",")
	items := make([]weighted, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		q := 1.0
		tag := part
		if idx := strings.Index(part, ";"); idx >= 0 {
			tag = strings.TrimSpace(part[:idx])
			param := strings.TrimSpace(part[idx+1:])
			if strings.HasPrefix(param, "q=") {
				if value, err := strconv.ParseFloat(strings.TrimPrefix(param, "q="), 64); err == nil {
					q = value
				}
			}
		}
		if tag == "" || tag == "*" || q <= 0 {
			continue
		}
		primary := strings.ToLower(strings.SplitN(strings.ReplaceAll(tag, "_", "-"), "-", 2)[0])
		items = append(items, weighted{lang: primary, q: q, index: i})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].q > items[j].q
	})
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.lang]; ok {
			continue
		}
		seen[item.lang] = struct{}{}
		result = append(result, item.lang)
	}
	return result
}

// T 翻译消息 key，缺失时返回 key 本身
func T(locale, key string) string {
	if messages, ok := catalog[locale]; ok {
		if msg, ok := messages[key]; ok {
			return msg
		}
	}
	if messages, ok := catalog[DefaultLocale()]; ok {
		if msg, ok := messages[key]; ok {
			return msg
		}
	}
	return key
}

// Sprintf 翻译并格式化
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
