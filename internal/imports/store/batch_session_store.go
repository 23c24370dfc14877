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
	"sync"

	txnmodel "github.com/niemenmaa/ynab-importer/internal/transactions/model"
)

// BatchSession is one prepared upload awaiting review and submission.
// Discarding an unsubmitted batch is just deleting its session.
type BatchSession struct {
	BatchID      string
	AccountRef   string
	Transactions []txnmodel.TransactionRecord
	CreatedAt    int64
	submitting   bool
}

// BatchSessionStore keeps prepared batches in memory between upload and
// submission. All access goes through the store's lock; the per-batch
// submitting flag stops two submissions of one batch racing past the
// duplicate check together.
type BatchSessionStore struct {
	sessions map[string]*BatchSession
	mu       *sync.RWMutex
}

var (
	sessionStore     *BatchSessionStore
	sessionStoreOnce sync.Once
)

// GetBatchSessionStore returns the shared session store.
func GetBatchSessionStore() *BatchSessionStore {
	sessionStoreOnce.Do(func() {
		sessionStore = NewBatchSessionStore()
	})
	return sessionStore
}

// NewBatchSessionStore creates an empty store. Tests use private instances.
func NewBatchSessionStore() *BatchSessionStore {
	return &BatchSessionStore{
		sessions: make(map[string]*BatchSession),
		mu:       &sync.RWMutex{},
	}
}

// Put stores a prepared batch session.
func (s *BatchSessionStore) Put(session *BatchSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.BatchID] = session
}

// Get returns a snapshot of the session's transactions, or false when the
// batch is unknown.
func (s *BatchSessionStore) Get(batchID string) (BatchSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[batchID]
	if !ok {
		return BatchSession{}, false
	}
	return session.snapshot(), true
}

// Delete discards a batch. found reports whether the batch exists;
// deleted is false while a submission for the batch is in flight, since
// discarding mid-submission would orphan the outcome bookkeeping.
func (s *BatchSessionStore) Delete(batchID string) (found, deleted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[batchID]
	if !ok {
		return false, false
	}
	if session.submitting {
		return true, false
	}
	delete(s.sessions, batchID)
	return true, true
}

// Resolve applies a manual category to a review-pending transaction. The
// confidence stays manual so rule-driven and human-driven categorization
// remain distinguishable. resolvable is false for transactions in a
// terminal state; a skipped duplicate must never be resurrected into a
// submittable one. Returns the updated transaction.
func (s *BatchSessionStore) Resolve(batchID, importID, categoryID, categoryName string) (resolved txnmodel.TransactionRecord, batchFound, txnFound, resolvable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[batchID]
	if !ok {
		return txnmodel.TransactionRecord{}, false, false, false
	}

	for i := range session.Transactions {
		txn := &session.Transactions[i]
		if txn.ImportID != importID {
			continue
		}
		switch txn.Status {
		case txnmodel.StatusReviewPending, txnmodel.StatusCategorized, txnmodel.StatusResolved:
		default:
			return *txn, true, true, false
		}
		txn.CategoryID = categoryID
		txn.CategoryName = categoryName
		txn.Confidence = txnmodel.ConfidenceManual
		txn.Status = txnmodel.StatusResolved
		return *txn, true, true, true
	}
	return txnmodel.TransactionRecord{}, true, false, false
}

// StartSubmission marks the batch as submitting and returns the
// transactions eligible for submission. found reports whether the batch
// exists; started is false when another submission for this batch is
// already in flight.
func (s *BatchSessionStore) StartSubmission(batchID string) (eligible []txnmodel.TransactionRecord, found, started bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[batchID]
	if !ok {
		return nil, false, false
	}
	if session.submitting {
		return nil, true, false
	}
	session.submitting = true

	for _, txn := range session.Transactions {
		if txn.SubmissionReady() {
			eligible = append(eligible, txn)
		}
	}
	return eligible, true, true
}

// FinishSubmission records terminal statuses and clears the in-flight flag.
// Transactions already in a terminal state keep it; an in-batch repeat that
// shares its import id with a submitted twin stays a skipped duplicate.
func (s *BatchSessionStore) FinishSubmission(batchID string, statusByImportID map[string]txnmodel.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[batchID]
	if !ok {
		return
	}
	session.submitting = false
	for i := range session.Transactions {
		txn := &session.Transactions[i]
		if txn.Status.Terminal() {
			continue
		}
		if status, ok := statusByImportID[txn.ImportID]; ok {
			txn.Status = status
		}
	}
}

func (b *BatchSession) snapshot() BatchSession {
	transactions := make([]txnmodel.TransactionRecord, len(b.Transactions))
	copy(transactions, b.Transactions)
	return BatchSession{
		BatchID:      b.BatchID,
		AccountRef:   b.AccountRef,
		Transactions: transactions,
		CreatedAt:    b.CreatedAt,
	}
}
