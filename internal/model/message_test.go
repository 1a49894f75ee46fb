package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusRank(t *testing.T) {
	assert.Equal(t, 0, StatusRank(StatusSent))
	assert.Equal(t, 1, StatusRank(StatusDelivered))
	assert.Equal(t, 2, StatusRank(StatusRead))
	assert.Equal(t, -1, StatusRank("archived"))
}

func TestStatusesBelow(t *testing.T) {
	assert.Empty(t, StatusesBelow(StatusSent))
	assert.ElementsMatch(t, []string{StatusSent}, StatusesBelow(StatusDelivered))
	assert.ElementsMatch(t, []string{StatusSent, StatusDelivered}, StatusesBelow(StatusRead))
	assert.Empty(t, StatusesBelow("archived"))
}
