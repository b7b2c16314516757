//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"journeylens/internal/testhelpers"
)

func TestMongoStore(t *testing.T) {
	uri := testhelpers.StartMongo(t)

	n := 0
	testStoreContract(t, func(t *testing.T) *Store {
		n++
		s, err := OpenMongo(context.Background(), uri, fmt.Sprintf("journeylens_test_%d", n))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close(context.Background()) })
		return s
	})
}
