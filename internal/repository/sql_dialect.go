package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// buildSearchCondition 构建多列模糊匹配条件，并返回参数数量。
func buildSearchCondition(db *gorm.DB, columns ...string) (string, int) {
	return buildSearchConditionByDialect(dbDialectName(db), columns...)
}

func buildSearchConditionByDialect(dialect string, columns ...string) (string, int) {
	parts := make([]string, 0, len(columns))
	operator := likeOperatorByDialect(dialect)
	for _, column := range columns {
		trimmed := strings.TrimSpace(column)
		if trimmed == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s ?", trimmed, operator))
	}
	return strings.Join(parts, " OR "), len(parts)
}

// likeOperatorByDialect postgres 的 LIKE 区分大小写，改用 ILIKE
func likeOperatorByDialect(dialect string) string {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return "ILIKE"
	default:
		return "LIKE"
	}
}

// applySearch 对查询追加模糊搜索条件，search 为空时原样返回。
func applySearch(query *gorm.DB, search string, columns ...string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" {
		return query
	}
	condition, argCount := buildSearchCondition(query, columns...)
	if argCount == 0 {
		return query
	}
	return query.Where(condition, repeatLikeArgs("%"+search+"%", argCount)...)
}

// repeatLikeArgs 生成重复的 LIKE 参数列表。
func repeatLikeArgs(like string, count int) []interface{} {
	args := make([]interface{}, 0, count)
	for i := 0; i < count; i++ {
		args = append(args, like)
	}
	return args
}
