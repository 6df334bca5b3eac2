package util

import "github.com/SeakMengs/SignFlow/internal/constant"

func CalculateTotalPage(totalItems int64, pageSize uint) int {
	if pageSize <= 0 {
		pageSize = constant.DefaultPageSize
	}
	if totalItems == 0 {
		return 1
	}
	totalPage := int(totalItems / int64(pageSize))
	if totalItems%int64(pageSize) != 0 {
		totalPage++
	}
	return totalPage
}

// Paginate returns the slice bounds of a 1-based page, clamped to total.
func Paginate(total int, page, pageSize uint) (int, int) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = constant.DefaultPageSize
	}
	if pageSize > constant.MaxPageSize {
		pageSize = constant.MaxPageSize
	}

	start := int((page - 1) * pageSize)
	if start > total {
		start = total
	}
	end := min(start+int(pageSize), total)
	return start, end
}
