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

package service

import (
	"context"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niemenmaa/ynab-importer/internal/imports/model"
	"github.com/niemenmaa/ynab-importer/internal/imports/store"
	rulemodel "github.com/niemenmaa/ynab-importer/internal/rules/model"
	errors2 "github.com/niemenmaa/ynab-importer/internal/system/errors"
	"github.com/niemenmaa/ynab-importer/internal/system/log"
	txnmodel "github.com/niemenmaa/ynab-importer/internal/transactions/model"
	"github.com/niemenmaa/ynab-importer/internal/ynab"
)

func TestMain(m *testing.M) {
	_ = log.Init("ERROR")
	os.Exit(m.Run())
}

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeRuleService struct {
	rules []rulemodel.Rule
}

func (f *fakeRuleService) AddRule(rule rulemodel.Rule) (rulemodel.Rule, error) { return rule, nil }
func (f *fakeRuleService) GetRules() ([]rulemodel.Rule, error)                { return f.rules, nil }
func (f *fakeRuleService) GetRule(string) (rulemodel.Rule, error)             { return rulemodel.Rule{}, nil }
func (f *fakeRuleService) UpdateRule(string, rulemodel.Rule) (rulemodel.Rule, error) {
	return rulemodel.Rule{}, nil
}
func (f *fakeRuleService) DeleteRule(string) error                    { return nil }
func (f *fakeRuleService) ListEnabledRules() ([]rulemodel.Rule, error) { return f.rules, nil }

type fakeHistory struct {
	known    map[string]bool
	recorded []string
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{known: make(map[string]bool)}
}

func (f *fakeHistory) KnownImportIDs(importIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	for _, id := range importIDs {
		if f.known[id] {
			result[id] = true
		}
	}
	return result, nil
}

func (f *fakeHistory) RecordImported(importIDs []string, accountRef string) error {
	for _, id := range importIDs {
		f.known[id] = true
		f.recorded = append(f.recorded, id)
	}
	return nil
}

type fakeYNAB struct {
	calls        int
	failures     []error
	duplicateIDs []string
	lastBatch    []txnmodel.TransactionRecord
}

func (f *fakeYNAB) GetAccounts(context.Context) ([]ynab.Account, error)   { return nil, nil }
func (f *fakeYNAB) GetCategories(context.Context) ([]ynab.Category, error) { return nil, nil }
func (f *fakeYNAB) GetPayees(context.Context) ([]ynab.Payee, error)        { return nil, nil }
func (f *fakeYNAB) GetTransactions(context.Context, string, string) ([]ynab.Transaction, error) {
	return nil, nil
}

func (f *fakeYNAB) CreateTransactions(_ context.Context, _ string,
	txns []txnmodel.TransactionRecord) (*ynab.CreateResult, error) {
	f.calls++
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return nil, err
	}

	f.lastBatch = txns
	duplicates := make(map[string]bool)
	for _, id := range f.duplicateIDs {
		duplicates[id] = true
	}
	result := &ynab.CreateResult{DuplicateImportIDs: f.duplicateIDs}
	for _, txn := range txns {
		if !duplicates[txn.ImportID] {
			result.CreatedIDs = append(result.CreatedIDs, "ynab-"+txn.ImportID)
		}
	}
	return result, nil
}

func newTestService() (*ImportService, *fakeHistory, *fakeYNAB) {
	history := newFakeHistory()
	client := &fakeYNAB{}
	svc := &ImportService{
		Rules: &fakeRuleService{rules: []rulemodel.Rule{{
			ID:           "r1",
			Name:         "Groceries: Prisma",
			Conditions:   []rulemodel.Condition{{Kind: rulemodel.KindPayeeContains, Value: "PRISMA"}},
			CategoryID:   "cat-g",
			CategoryName: "Groceries",
			Priority:     10,
			Enabled:      true,
		}}},
		History:      history,
		YNAB:         client,
		Sessions:     store.NewBatchSessionStore(),
		AccountID:    "acc-ynab",
		Retries:      3,
		RetryBackoff: 0,
	}
	return svc, history, client
}

func parsedTxns() []txnmodel.TransactionRecord {
	return []txnmodel.TransactionRecord{
		{Date: "2025-03-01", Payee: "Prisma Sello", Amount: -2340, Status: txnmodel.StatusParsed},
		{Date: "2025-03-02", Payee: "Unknown Merchant", Amount: -1500, Status: txnmodel.StatusParsed},
	}
}

func requireClientStatus(t *testing.T, err error, status int) *errors2.ClientError {
	t.Helper()
	require.Error(t, err)
	clientErr, ok := err.(*errors2.ClientError)
	require.True(t, ok, "expected a ClientError, got %T", err)
	assert.Equal(t, status, clientErr.StatusCode)
	return clientErr
}

// ---------------------------------------------------------------------------
// PrepareBatch
// ---------------------------------------------------------------------------

func TestPrepareBatch_PartitionsByConfidence(t *testing.T) {
	svc, _, _ := newTestService()

	result, err := svc.PrepareBatch(parsedTxns(), "acc-1")
	require.NoError(t, err)
	require.Len(t, result.Ready, 1)
	require.Len(t, result.NeedsReview, 1)
	assert.Empty(t, result.SkippedDuplicates)

	ready := result.Ready[0]
	assert.Equal(t, "cat-g", ready.CategoryID)
	assert.Equal(t, "r1", ready.MatchedRuleID)
	assert.Equal(t, txnmodel.ConfidenceAuto, ready.Confidence)
	assert.NotEmpty(t, ready.ImportID)

	review := result.NeedsReview[0]
	assert.Empty(t, review.CategoryID)
	assert.Equal(t, txnmodel.ConfidenceManual, review.Confidence)
	assert.Equal(t, txnmodel.StatusReviewPending, review.Status)
}

func TestPrepareBatch_EmptyUpload_Rejected(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.PrepareBatch(nil, "acc-1")
	clientErr := requireClientStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, errors2.ErrEmptyUpload.Code, clientErr.Code)
}

func TestPrepareBatch_InBatchRepeatSkipped(t *testing.T) {
	svc, _, _ := newTestService()

	txns := parsedTxns()
	txns = append(txns, txns[0])

	result, err := svc.PrepareBatch(txns, "acc-1")
	require.NoError(t, err)
	assert.Len(t, result.Ready, 1)
	require.Len(t, result.SkippedDuplicates, 1)
	assert.Equal(t, result.Ready[0].ImportID, result.SkippedDuplicates[0].ImportID)
}

func TestPrepareBatch_KnownImportIDSkippedWithoutNetworkCall(t *testing.T) {
	svc, history, client := newTestService()

	// First import round-trip populates the history.
	first, err := svc.PrepareBatch(parsedTxns(), "acc-1")
	require.NoError(t, err)
	_ = history.RecordImported([]string{first.Ready[0].ImportID}, "acc-1")

	second, err := svc.PrepareBatch(parsedTxns(), "acc-1")
	require.NoError(t, err)
	require.Len(t, second.SkippedDuplicates, 1)
	assert.Equal(t, first.Ready[0].ImportID, second.SkippedDuplicates[0].ImportID)
	assert.Equal(t, txnmodel.StatusSkippedDuplicate, second.SkippedDuplicates[0].Status)

	// Duplicate detection is local; the budgeting service is never asked.
	assert.Equal(t, 0, client.calls)
}

// ---------------------------------------------------------------------------
// Review and discard
// ---------------------------------------------------------------------------

func TestResolveReview_AssignsManualCategory(t *testing.T) {
	svc, _, _ := newTestService()

	batch, err := svc.PrepareBatch(parsedTxns(), "acc-1")
	require.NoError(t, err)
	importID := batch.NeedsReview[0].ImportID

	updated, err := svc.ResolveReview(batch.BatchID, []model.ReviewResolution{
		{ImportID: importID, CategoryID: "cat-m", CategoryName: "Misc"},
	})
	require.NoError(t, err)
	assert.Empty(t, updated.NeedsReview)
	require.Len(t, updated.Ready, 2)

	var resolved txnmodel.TransactionRecord
	for _, txn := range updated.Ready {
		if txn.ImportID == importID {
			resolved = txn
		}
	}
	assert.Equal(t, "cat-m", resolved.CategoryID)
	assert.Equal(t, txnmodel.ConfidenceManual, resolved.Confidence)
	assert.Equal(t, txnmodel.StatusResolved, resolved.Status)
}

func TestResolveReview_UnknownBatchOrTransaction(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.ResolveReview("missing", []model.ReviewResolution{
		{ImportID: "x", CategoryID: "cat"},
	})
	requireClientStatus(t, err, http.StatusNotFound)

	batch, err := svc.PrepareBatch(parsedTxns(), "acc-1")
	require.NoError(t, err)
	_, err = svc.ResolveReview(batch.BatchID, []model.ReviewResolution{
		{ImportID: "no-such-txn", CategoryID: "cat"},
	})
	clientErr := requireClientStatus(t, err, http.StatusNotFound)
	assert.Equal(t, errors2.ErrTransactionNotFound.Code, clientErr.Code)
}

func TestResolveReview_SkippedDuplicateStaysSkipped(t *testing.T) {
	svc, history, client := newTestService()

	txns := []txnmodel.TransactionRecord{
		{Date: "2025-03-02", Payee: "Unknown Merchant", Amount: -1500, Status: txnmodel.StatusParsed},
	}
	first, err := svc.PrepareBatch(txns, "acc-1")
	require.NoError(t, err)
	importID := first.NeedsReview[0].ImportID
	require.NoError(t, history.RecordImported([]string{importID}, "acc-1"))

	second, err := svc.PrepareBatch(txns, "acc-1")
	require.NoError(t, err)
	require.Len(t, second.SkippedDuplicates, 1)

	// Resolving a skipped duplicate must not resurrect it.
	_, err = svc.ResolveReview(second.BatchID, []model.ReviewResolution{
		{ImportID: importID, CategoryID: "cat-m", CategoryName: "Misc"},
	})
	clientErr := requireClientStatus(t, err, http.StatusConflict)
	assert.Equal(t, errors2.ErrTransactionNotResolvable.Code, clientErr.Code)

	// The known key never reaches the network.
	_, err = svc.Submit(context.Background(), second.BatchID)
	requireClientStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, 0, client.calls)
}

func TestDiscardBatch(t *testing.T) {
	svc, _, _ := newTestService()

	batch, err := svc.PrepareBatch(parsedTxns(), "acc-1")
	require.NoError(t, err)
	require.NoError(t, svc.DiscardBatch(batch.BatchID))

	_, err = svc.GetBatch(batch.BatchID)
	requireClientStatus(t, err, http.StatusNotFound)
	requireClientStatus(t, svc.DiscardBatch(batch.BatchID), http.StatusNotFound)
}

func TestDiscardBatch_RefusedDuringSubmission(t *testing.T) {
	svc, _, _ := newTestService()

	batch, err := svc.PrepareBatch(parsedTxns(), "acc-1")
	require.NoError(t, err)

	_, found, started := svc.Sessions.StartSubmission(batch.BatchID)
	require.True(t, found)
	require.True(t, started)

	err = svc.DiscardBatch(batch.BatchID)
	clientErr := requireClientStatus(t, err, http.StatusConflict)
	assert.Equal(t, errors2.ErrSubmissionInFlight.Code, clientErr.Code)

	// The batch is still there for the submission in flight.
	_, err = svc.GetBatch(batch.BatchID)
	require.NoError(t, err)
}

// ---------------------------------------------------------------------------
// Submit
// ---------------------------------------------------------------------------

func TestSubmit_AcceptedTransactionsRecorded(t *testing.T) {
	svc, history, client := newTestService()

	batch, err := svc.PrepareBatch(parsedTxns(), "acc-1")
	require.NoError(t, err)

	result, err := svc.Submit(context.Background(), batch.BatchID)
	require.NoError(t, err)
	require.Len(t, result.Accepted, 1)
	assert.Empty(t, result.Rejected)
	assert.Equal(t, model.OutcomeCreated, result.Accepted[0].Outcome)

	// Review-pending transactions stay home.
	require.Len(t, client.lastBatch, 1)
	assert.Equal(t, "Prisma Sello", client.lastBatch[0].Payee)

	assert.Contains(t, history.recorded, result.Accepted[0].ImportID)

	after, err := svc.GetBatch(batch.BatchID)
	require.NoError(t, err)
	var submitted bool
	for _, txn := range after.Ready {
		if txn.Status == txnmodel.StatusSubmitted {
			submitted = true
		}
	}
	assert.True(t, submitted)
}

func TestSubmit_ServiceDuplicatesBecomeDuplicateOutcomes(t *testing.T) {
	svc, history, client := newTestService()

	batch, err := svc.PrepareBatch(parsedTxns(), "acc-1")
	require.NoError(t, err)
	importID := batch.Ready[0].ImportID
	client.duplicateIDs = []string{importID}

	result, err := svc.Submit(context.Background(), batch.BatchID)
	require.NoError(t, err)
	assert.Empty(t, result.Accepted)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, model.OutcomeDuplicate, result.Rejected[0].Outcome)
	assert.Equal(t, importID, result.Rejected[0].ImportID)

	// The id exists in YNAB, so it still enters the local history.
	assert.Contains(t, history.recorded, importID)
}

func TestSubmit_UnknownBatch(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Submit(context.Background(), "missing")
	requireClientStatus(t, err, http.StatusNotFound)
}

func TestSubmit_NothingSubmittable(t *testing.T) {
	svc, _, _ := newTestService()

	// Only the unknown merchant, never resolved: no category, not submittable.
	batch, err := svc.PrepareBatch([]txnmodel.TransactionRecord{
		{Date: "2025-03-02", Payee: "Unknown Merchant", Amount: -1500, Status: txnmodel.StatusParsed},
	}, "acc-1")
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), batch.BatchID)
	clientErr := requireClientStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, errors2.ErrBatchNotSubmittable.Code, clientErr.Code)
}

func TestSubmit_ConcurrentSubmissionRefused(t *testing.T) {
	svc, _, _ := newTestService()

	batch, err := svc.PrepareBatch(parsedTxns(), "acc-1")
	require.NoError(t, err)

	// Hold the in-flight flag the way a concurrent submission would.
	_, found, started := svc.Sessions.StartSubmission(batch.BatchID)
	require.True(t, found)
	require.True(t, started)

	_, err = svc.Submit(context.Background(), batch.BatchID)
	clientErr := requireClientStatus(t, err, http.StatusConflict)
	assert.Equal(t, errors2.ErrSubmissionInFlight.Code, clientErr.Code)
}

func TestSubmit_RetriesTransientFailures(t *testing.T) {
	svc, _, client := newTestService()
	client.failures = []error{
		&ynab.APIError{StatusCode: http.StatusServiceUnavailable},
		&ynab.APIError{StatusCode: http.StatusTooManyRequests},
	}

	batch, err := svc.PrepareBatch(parsedTxns(), "acc-1")
	require.NoError(t, err)

	result, err := svc.Submit(context.Background(), batch.BatchID)
	require.NoError(t, err)
	assert.Len(t, result.Accepted, 1)
	assert.Equal(t, 3, client.calls)
}

func TestSubmit_NoRetryOnAuthFailure(t *testing.T) {
	svc, _, client := newTestService()
	client.failures = []error{
		&ynab.APIError{StatusCode: http.StatusUnauthorized},
	}

	batch, err := svc.PrepareBatch(parsedTxns(), "acc-1")
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), batch.BatchID)
	require.Error(t, err)
	assert.Equal(t, 1, client.calls)

	serverErr, ok := err.(*errors2.ServerError)
	require.True(t, ok, "expected a ServerError, got %T", err)
	assert.Equal(t, errors2.SUBMIT_BATCH.Code, serverErr.Code)

	// The in-flight flag is released so a later submission can proceed.
	result, err := svc.Submit(context.Background(), batch.BatchID)
	require.NoError(t, err)
	assert.Len(t, result.Accepted, 1)
}

func TestSubmit_GivesUpAfterBoundedRetries(t *testing.T) {
	svc, _, client := newTestService()
	client.failures = []error{
		&ynab.APIError{StatusCode: http.StatusInternalServerError},
		&ynab.APIError{StatusCode: http.StatusInternalServerError},
		&ynab.APIError{StatusCode: http.StatusInternalServerError},
	}

	batch, err := svc.PrepareBatch(parsedTxns(), "acc-1")
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), batch.BatchID)
	require.Error(t, err)
	assert.Equal(t, 3, client.calls)
}

// ---------------------------------------------------------------------------
// End-to-end idempotence
// ---------------------------------------------------------------------------

func TestReimport_SecondRunAllSkipped(t *testing.T) {
	svc, _, client := newTestService()

	first, err := svc.PrepareBatch(parsedTxns(), "acc-1")
	require.NoError(t, err)
	_, err = svc.ResolveReview(first.BatchID, []model.ReviewResolution{
		{ImportID: first.NeedsReview[0].ImportID, CategoryID: "cat-m", CategoryName: "Misc"},
	})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), first.BatchID)
	require.NoError(t, err)
	callsAfterSubmit := client.calls

	// The same export uploaded again: everything is skipped locally and
	// YNAB is not contacted.
	second, err := svc.PrepareBatch(parsedTxns(), "acc-1")
	require.NoError(t, err)
	assert.Empty(t, second.Ready)
	assert.Empty(t, second.NeedsReview)
	assert.Len(t, second.SkippedDuplicates, 2)
	assert.Equal(t, callsAfterSubmit, client.calls)
}
