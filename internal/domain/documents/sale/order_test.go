package sale

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hwshop/internal/core/id"
)

func TestByProduct(t *testing.T) {
	low := id.MustParse("00000000-0000-7000-8000-000000000001")
	high := id.MustParse("00000000-0000-7000-8000-000000000002")
	items := []SaleItem{
		{LineNo: 1, ProductID: high},
		{LineNo: 2, ProductID: low},
		{LineNo: 3, ProductID: high},
	}

	sorted := byProduct(items)

	lines := make([]int, len(sorted))
	for i, item := range sorted {
		lines[i] = item.LineNo
	}
	assert.Equal(t, []int{2, 1, 3}, lines)
	assert.Equal(t, 1, items[0].LineNo, "input order is kept")
}
