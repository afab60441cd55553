package redis_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func atoiPort(t *testing.T, port string) int {
	t.Helper()
	n, err := strconv.Atoi(port)
	require.NoError(t, err)
	return n
}
