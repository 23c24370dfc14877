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

package store

import (
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niemenmaa/ynab-importer/internal/system/log"
	txnmodel "github.com/niemenmaa/ynab-importer/internal/transactions/model"
)

func TestMain(m *testing.M) {
	_ = log.Init("ERROR")
	os.Exit(m.Run())
}

func sessionWith(batchID string, txns ...txnmodel.TransactionRecord) *BatchSession {
	return &BatchSession{
		BatchID:      batchID,
		AccountRef:   "acc-1",
		Transactions: txns,
	}
}

func TestGet_ReturnsSnapshotCopy(t *testing.T) {
	s := NewBatchSessionStore()
	s.Put(sessionWith("b1", txnmodel.TransactionRecord{ImportID: "i1", Payee: "Shop"}))

	snapshot, ok := s.Get("b1")
	require.True(t, ok)
	snapshot.Transactions[0].Payee = "Mutated"

	again, ok := s.Get("b1")
	require.True(t, ok)
	assert.Equal(t, "Shop", again.Transactions[0].Payee)
}

func TestResolve_MarksManualResolution(t *testing.T) {
	s := NewBatchSessionStore()
	s.Put(sessionWith("b1", txnmodel.TransactionRecord{
		ImportID: "i1", Status: txnmodel.StatusReviewPending, Confidence: txnmodel.ConfidenceManual,
	}))

	resolved, batchFound, txnFound, resolvable := s.Resolve("b1", "i1", "cat-m", "Misc")
	require.True(t, batchFound)
	require.True(t, txnFound)
	require.True(t, resolvable)
	assert.Equal(t, "cat-m", resolved.CategoryID)
	assert.Equal(t, txnmodel.StatusResolved, resolved.Status)

	_, batchFound, _, _ = s.Resolve("missing", "i1", "cat-m", "Misc")
	assert.False(t, batchFound)

	_, batchFound, txnFound, _ = s.Resolve("b1", "missing", "cat-m", "Misc")
	assert.True(t, batchFound)
	assert.False(t, txnFound)
}

func TestResolve_TerminalTransactionRefused(t *testing.T) {
	s := NewBatchSessionStore()
	s.Put(sessionWith("b1",
		txnmodel.TransactionRecord{ImportID: "i1", Status: txnmodel.StatusSkippedDuplicate},
		txnmodel.TransactionRecord{ImportID: "i2", CategoryID: "cat-g", Status: txnmodel.StatusSubmitted},
	))

	_, batchFound, txnFound, resolvable := s.Resolve("b1", "i1", "cat-m", "Misc")
	require.True(t, batchFound)
	require.True(t, txnFound)
	assert.False(t, resolvable)

	_, _, txnFound, resolvable = s.Resolve("b1", "i2", "cat-m", "Misc")
	require.True(t, txnFound)
	assert.False(t, resolvable)

	// The refused transactions keep their terminal state and category.
	snapshot, ok := s.Get("b1")
	require.True(t, ok)
	assert.Equal(t, txnmodel.StatusSkippedDuplicate, snapshot.Transactions[0].Status)
	assert.Empty(t, snapshot.Transactions[0].CategoryID)
	assert.Equal(t, txnmodel.StatusSubmitted, snapshot.Transactions[1].Status)
	assert.False(t, snapshot.Transactions[0].SubmissionReady())
}

func TestStartSubmission_OnlyOneCallerWins(t *testing.T) {
	s := NewBatchSessionStore()
	s.Put(sessionWith("b1", txnmodel.TransactionRecord{
		ImportID: "i1", CategoryID: "cat-g", Status: txnmodel.StatusCategorized,
	}))

	var wg sync.WaitGroup
	wins := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, found, started := s.StartSubmission("b1")
			assert.True(t, found)
			if started {
				wins <- true
			}
		}()
	}
	wg.Wait()
	close(wins)
	assert.Len(t, wins, 1)
}

func TestFinishSubmission_AppliesStatusesAndReleasesFlag(t *testing.T) {
	s := NewBatchSessionStore()
	s.Put(sessionWith("b1",
		txnmodel.TransactionRecord{ImportID: "i1", CategoryID: "cat-g", Status: txnmodel.StatusCategorized},
		txnmodel.TransactionRecord{ImportID: "i2", CategoryID: "cat-g", Status: txnmodel.StatusCategorized},
	))

	eligible, found, started := s.StartSubmission("b1")
	require.True(t, found)
	require.True(t, started)
	assert.Len(t, eligible, 2)

	s.FinishSubmission("b1", map[string]txnmodel.Status{
		"i1": txnmodel.StatusSubmitted,
		"i2": txnmodel.StatusSkippedDuplicate,
	})

	snapshot, ok := s.Get("b1")
	require.True(t, ok)
	assert.Equal(t, txnmodel.StatusSubmitted, snapshot.Transactions[0].Status)
	assert.Equal(t, txnmodel.StatusSkippedDuplicate, snapshot.Transactions[1].Status)

	// Flag released, but terminal statuses leave nothing eligible.
	eligible, found, started = s.StartSubmission("b1")
	assert.True(t, found)
	assert.True(t, started)
	assert.Empty(t, eligible)
}

func TestFinishSubmission_LeavesTerminalTwinAlone(t *testing.T) {
	s := NewBatchSessionStore()
	// An in-batch repeat shares its import id with the submittable twin.
	s.Put(sessionWith("b1",
		txnmodel.TransactionRecord{ImportID: "i1", CategoryID: "cat-g", Status: txnmodel.StatusCategorized},
		txnmodel.TransactionRecord{ImportID: "i1", Status: txnmodel.StatusSkippedDuplicate},
	))

	eligible, found, started := s.StartSubmission("b1")
	require.True(t, found)
	require.True(t, started)
	require.Len(t, eligible, 1)

	s.FinishSubmission("b1", map[string]txnmodel.Status{"i1": txnmodel.StatusSubmitted})

	snapshot, ok := s.Get("b1")
	require.True(t, ok)
	assert.Equal(t, txnmodel.StatusSubmitted, snapshot.Transactions[0].Status)
	assert.Equal(t, txnmodel.StatusSkippedDuplicate, snapshot.Transactions[1].Status)
}

func TestDelete(t *testing.T) {
	s := NewBatchSessionStore()
	s.Put(sessionWith("b1"))

	found, deleted := s.Delete("b1")
	assert.True(t, found)
	assert.True(t, deleted)
	found, _ = s.Delete("b1")
	assert.False(t, found)
	_, ok := s.Get("b1")
	assert.False(t, ok)
}

func TestDelete_RefusedWhileSubmitting(t *testing.T) {
	s := NewBatchSessionStore()
	s.Put(sessionWith("b1", txnmodel.TransactionRecord{
		ImportID: "i1", CategoryID: "cat-g", Status: txnmodel.StatusCategorized,
	}))

	_, found, started := s.StartSubmission("b1")
	require.True(t, found)
	require.True(t, started)

	found, deleted := s.Delete("b1")
	assert.True(t, found)
	assert.False(t, deleted)
	_, ok := s.Get("b1")
	assert.True(t, ok)

	// Once the submission finishes the batch can go.
	s.FinishSubmission("b1", nil)
	found, deleted = s.Delete("b1")
	assert.True(t, found)
	assert.True(t, deleted)
}
