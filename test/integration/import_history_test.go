/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niemenmaa/ynab-importer/internal/imports/store"
)

func TestImportHistory_RecordAndLookup(t *testing.T) {
	repo := store.NewImportHistoryRepository(testDB.DB)

	known, err := repo.KnownImportIDs([]string{"YNAB:-100:2025-01-01:aaaa0000"})
	require.NoError(t, err)
	assert.Empty(t, known)

	ids := []string{
		"YNAB:-100:2025-01-01:aaaa0000",
		"YNAB:-200:2025-01-02:bbbb1111",
	}
	require.NoError(t, repo.RecordImported(ids, "acc-1"))

	known, err = repo.KnownImportIDs(append(ids, "YNAB:-300:2025-01-03:cccc2222"))
	require.NoError(t, err)
	assert.Len(t, known, 2)
	assert.True(t, known[ids[0]])
	assert.True(t, known[ids[1]])
	assert.False(t, known["YNAB:-300:2025-01-03:cccc2222"])
}

func TestImportHistory_RerecordIsNoOp(t *testing.T) {
	repo := store.NewImportHistoryRepository(testDB.DB)

	ids := []string{"YNAB:-500:2025-02-01:dddd3333"}
	require.NoError(t, repo.RecordImported(ids, "acc-1"))
	// A retried submission records the same ids again without failing.
	require.NoError(t, repo.RecordImported(ids, "acc-1"))

	known, err := repo.KnownImportIDs(ids)
	require.NoError(t, err)
	assert.True(t, known[ids[0]])
}

func TestImportHistory_EmptyInput(t *testing.T) {
	repo := store.NewImportHistoryRepository(testDB.DB)

	known, err := repo.KnownImportIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, known)
	assert.NoError(t, repo.RecordImported(nil, "acc-1"))
}
