package util_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrferreira1003/Bug-Finder/internal/util"
)

func TestParseTimeFlexible(t *testing.T) {
	rfc, err := util.ParseTimeFlexible("2024-03-14T10:22:01Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 14, 10, 22, 1, 0, time.UTC), rfc)

	nano, err := util.ParseTimeFlexible("2024-03-14T10:22:01.500Z")
	require.NoError(t, err)
	assert.Equal(t, 500*int(time.Millisecond), nano.Nanosecond())

	epoch, err := util.ParseTimeFlexible("1710411721000")
	require.NoError(t, err)
	assert.Equal(t, int64(1710411721), epoch.Unix())

	_, err = util.ParseTimeFlexible("yesterday")
	assert.Error(t, err)
}
