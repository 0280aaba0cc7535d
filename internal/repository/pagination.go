package repository

import "gorm.io/gorm"

// pageOffset 计算分页偏移量；pageSize<=0 表示不分页
func pageOffset(page, pageSize int) (limit, offset int, ok bool) {
	if pageSize <= 0 {
		return 0, 0, false
	}
	if page < 1 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize, true
}

// listPage 统计总数后按 id 倒序取一页，preloads 为需要预加载的关联
func listPage[T any](query *gorm.DB, page, pageSize int, preloads ...string) ([]T, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit, offset, ok := pageOffset(page, pageSize); ok {
		query = query.Limit(limit).Offset(offset)
	}
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	var rows []T
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
