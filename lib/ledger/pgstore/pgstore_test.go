// Copyright 2021 Silvio Böhler
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pgstore

import (
	"context"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briot/alere-sub000/lib/ledger/ledgertest"
)

// openTestStore connects to the database named by ALERE_TEST_DATABASE_URL,
// using a fresh schema which is dropped after the test.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("ALERE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("ALERE_TEST_DATABASE_URL is not set")
	}
	ctx := context.Background()
	name := "alere_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	conn, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err)
	_, err = conn.Exec(ctx, "CREATE SCHEMA "+pgx.Identifier{name}.Sanitize())
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = conn.Exec(ctx, "DROP SCHEMA "+pgx.Identifier{name}.Sanitize()+" CASCADE")
		conn.Close(ctx)
	})

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	q := u.Query()
	q.Set("search_path", name)
	u.RawQuery = q.Encode()

	s, err := Open(ctx, u.String())
	require.NoError(t, err)
	t.Cleanup(s.Close)
	require.NoError(t, s.CreateSchema(ctx))
	return s
}

func TestOpenRejectsEmptyURL(t *testing.T) {
	_, err := Open(context.Background(), "")

	assert.Error(t, err)
}

func TestSaveAndSnapshot(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	want := ledgertest.Portfolio(t)

	require.NoError(t, s.Save(ctx, want))
	got, err := s.Snapshot(ctx)
	require.NoError(t, err)

	require.Len(t, got.Commodities(), len(want.Commodities()))
	require.Len(t, got.Accounts(), len(want.Accounts()))
	require.Len(t, got.Transactions(), len(want.Transactions()))
	require.Len(t, got.Prices(), len(want.Prices()))
	require.Len(t, got.Scenarios(), len(want.Scenarios()))
	for i, a := range want.Accounts() {
		assert.Equal(t, a.Path(), got.Accounts()[i].Path())
		assert.Equal(t, a.CommoditySCU, got.Accounts()[i].CommoditySCU)
	}
	for i, tx := range want.Transactions() {
		g := got.Transactions()[i]
		assert.Equal(t, tx.ID, g.ID)
		assert.Equal(t, tx.Scheduled, g.Scheduled)
		require.Len(t, g.Splits, len(tx.Splits))
		for j, sp := range tx.Splits {
			assert.Equal(t, sp.ScaledQty, g.Splits[j].ScaledQty)
			assert.Equal(t, sp.ScaledValue, g.Splits[j].ScaledValue)
			assert.True(t, sp.PostDate.Equal(g.Splits[j].PostDate))
			assert.Equal(t, sp.Account.ID, g.Splits[j].Account.ID)
		}
	}
}
