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
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/niemenmaa/ynab-importer/internal/imports/dedup"
	"github.com/niemenmaa/ynab-importer/internal/imports/model"
	"github.com/niemenmaa/ynab-importer/internal/imports/store"
	"github.com/niemenmaa/ynab-importer/internal/rules/engine"
	rulesvc "github.com/niemenmaa/ynab-importer/internal/rules/service"
	"github.com/niemenmaa/ynab-importer/internal/system/config"
	"github.com/niemenmaa/ynab-importer/internal/system/database"
	errors2 "github.com/niemenmaa/ynab-importer/internal/system/errors"
	"github.com/niemenmaa/ynab-importer/internal/system/log"
	txnmodel "github.com/niemenmaa/ynab-importer/internal/transactions/model"
	"github.com/niemenmaa/ynab-importer/internal/ynab"
)

// ImportServiceInterface orchestrates the import pipeline: prepare,
// review, submit.
type ImportServiceInterface interface {
	PrepareBatch(transactions []txnmodel.TransactionRecord, accountRef string) (*model.BatchResult, error)
	GetBatch(batchID string) (*model.BatchResult, error)
	ResolveReview(batchID string, resolutions []model.ReviewResolution) (*model.BatchResult, error)
	DiscardBatch(batchID string) error
	Submit(ctx context.Context, batchID string) (*model.SubmissionResult, error)
}

// ImportHistoryStoreInterface is the import history surface the
// orchestrator needs.
type ImportHistoryStoreInterface interface {
	KnownImportIDs(importIDs []string) (map[string]bool, error)
	RecordImported(importIDs []string, accountRef string) error
}

// ImportService is the default implementation of the import pipeline.
type ImportService struct {
	Rules        rulesvc.RuleServiceInterface
	History      ImportHistoryStoreInterface
	YNAB         ynab.ClientInterface
	Sessions     *store.BatchSessionStore
	AccountID    string
	Retries      int
	RetryBackoff time.Duration
}

// GetImportService returns an orchestrator wired to the shared stores and
// the configured YNAB budget.
func GetImportService() ImportServiceInterface {
	cfg := config.GetConfig()
	return &ImportService{
		Rules:        rulesvc.GetRuleService(),
		History:      store.NewImportHistoryRepository(database.GetPostgresInstance().DB),
		YNAB:         ynab.NewClient(cfg.YNAB),
		Sessions:     store.GetBatchSessionStore(),
		AccountID:    cfg.YNAB.AccountID,
		Retries:      cfg.Importer.SubmitRetries,
		RetryBackoff: time.Duration(cfg.Importer.RetryBackoffMs) * time.Millisecond,
	}
}

// PrepareBatch assigns import ids, categorizes every transaction against
// one rule snapshot, drops duplicates before any network call and stores
// the batch for review. Repeats of an import id within the upload and ids
// already present in the import history are both reported as skipped.
func (is *ImportService) PrepareBatch(transactions []txnmodel.TransactionRecord,
	accountRef string) (*model.BatchResult, error) {
	logger := log.GetLogger()

	if len(transactions) == 0 {
		return nil, errors2.NewClientError(errors2.ErrEmptyUpload, http.StatusBadRequest)
	}

	enabledRules, err := is.Rules.ListEnabledRules()
	if err != nil {
		return nil, err
	}
	ruleEngine := engine.New(enabledRules)

	prepared := make([]txnmodel.TransactionRecord, 0, len(transactions))
	importIDs := make([]string, 0, len(transactions))
	seenInBatch := make(map[string]bool, len(transactions))
	for _, txn := range transactions {
		txn.AccountRef = accountRef
		txn.ImportID = dedup.ComputeImportID(txn)

		if seenInBatch[txn.ImportID] {
			txn.Status = txnmodel.StatusSkippedDuplicate
			prepared = append(prepared, txn)
			continue
		}
		seenInBatch[txn.ImportID] = true
		importIDs = append(importIDs, txn.ImportID)

		if match := ruleEngine.Categorize(txn); match.Matched {
			txn.CategoryID = match.CategoryID
			txn.CategoryName = match.CategoryName
			txn.MatchedRuleID = match.RuleID
			txn.Confidence = txnmodel.ConfidenceAuto
			txn.Status = txnmodel.StatusCategorized
		} else {
			txn.Confidence = txnmodel.ConfidenceManual
			txn.Status = txnmodel.StatusReviewPending
		}
		prepared = append(prepared, txn)
	}

	known, err := is.History.KnownImportIDs(importIDs)
	if err != nil {
		return nil, err
	}
	for i := range prepared {
		if known[prepared[i].ImportID] {
			prepared[i].Status = txnmodel.StatusSkippedDuplicate
		}
	}

	session := &store.BatchSession{
		BatchID:      uuid.New().String(),
		AccountRef:   accountRef,
		Transactions: prepared,
		CreatedAt:    time.Now().UTC().Unix(),
	}
	is.Sessions.Put(session)

	result := buildBatchResult(session.BatchID, prepared)
	logger.Info(fmt.Sprintf("Prepared batch %s with %d rule(s): %d ready, %d for review, %d skipped.",
		result.BatchID, ruleEngine.RuleCount(), len(result.Ready), len(result.NeedsReview),
		len(result.SkippedDuplicates)))
	return result, nil
}

// GetBatch returns the current state of a prepared batch.
func (is *ImportService) GetBatch(batchID string) (*model.BatchResult, error) {
	session, ok := is.Sessions.Get(batchID)
	if !ok {
		return nil, errors2.NewClientError(errors2.ErrBatchNotFound, http.StatusNotFound)
	}
	return buildBatchResult(session.BatchID, session.Transactions), nil
}

// ResolveReview applies manual category choices to review-pending
// transactions and returns the updated batch. Terminal transactions are
// refused; resolving a skipped duplicate would put a known key back on
// the submission path.
func (is *ImportService) ResolveReview(batchID string,
	resolutions []model.ReviewResolution) (*model.BatchResult, error) {
	for _, resolution := range resolutions {
		if resolution.CategoryID == "" {
			return nil, errors2.NewClientError(errors2.ErrResolutionCategoryRequired, http.StatusBadRequest)
		}
		_, batchFound, txnFound, resolvable := is.Sessions.Resolve(batchID, resolution.ImportID,
			resolution.CategoryID, resolution.CategoryName)
		if !batchFound {
			return nil, errors2.NewClientError(errors2.ErrBatchNotFound, http.StatusNotFound)
		}
		if !txnFound {
			return nil, errors2.NewClientError(errors2.ErrTransactionNotFound, http.StatusNotFound)
		}
		if !resolvable {
			return nil, errors2.NewClientError(errors2.ErrTransactionNotResolvable, http.StatusConflict)
		}
	}
	return is.GetBatch(batchID)
}

// DiscardBatch drops an unsubmitted batch. A batch mid-submission cannot
// be discarded until the submission finishes.
func (is *ImportService) DiscardBatch(batchID string) error {
	found, deleted := is.Sessions.Delete(batchID)
	if !found {
		return errors2.NewClientError(errors2.ErrBatchNotFound, http.StatusNotFound)
	}
	if !deleted {
		return errors2.NewClientError(errors2.ErrSubmissionInFlight, http.StatusConflict)
	}
	return nil
}

// Submit sends the batch's submittable transactions to YNAB and reports
// per-transaction outcomes. Transient failures are retried a bounded
// number of times with backoff; auth failures are not retried at all.
// Duplicates reported by YNAB come back as duplicate outcomes, not
// errors, and accepted ids are recorded in the local import history.
func (is *ImportService) Submit(ctx context.Context, batchID string) (*model.SubmissionResult, error) {
	logger := log.GetLogger()

	eligible, found, started := is.Sessions.StartSubmission(batchID)
	if !found {
		return nil, errors2.NewClientError(errors2.ErrBatchNotFound, http.StatusNotFound)
	}
	if !started {
		return nil, errors2.NewClientError(errors2.ErrSubmissionInFlight, http.StatusConflict)
	}
	if len(eligible) == 0 {
		is.Sessions.FinishSubmission(batchID, nil)
		return nil, errors2.NewClientError(errors2.ErrBatchNotSubmittable, http.StatusBadRequest)
	}

	result, err := is.createWithRetry(ctx, eligible)
	if err != nil {
		is.Sessions.FinishSubmission(batchID, nil)
		return nil, errors2.NewServerError(errors2.SUBMIT_BATCH, err)
	}

	duplicates := make(map[string]bool, len(result.DuplicateImportIDs))
	for _, importID := range result.DuplicateImportIDs {
		duplicates[importID] = true
	}

	submission := &model.SubmissionResult{BatchID: batchID}
	statusByImportID := make(map[string]txnmodel.Status, len(eligible))
	recordedIDs := make([]string, 0, len(eligible))
	for _, txn := range eligible {
		outcome := model.TransactionOutcome{
			ImportID: txn.ImportID,
			Payee:    txn.Payee,
			Amount:   txn.Amount,
		}
		// YNAB already holding the id still means the transaction exists
		// there, so both branches go into the local history.
		recordedIDs = append(recordedIDs, txn.ImportID)
		if duplicates[txn.ImportID] {
			outcome.Outcome = model.OutcomeDuplicate
			outcome.Reason = "Already present in YNAB."
			statusByImportID[txn.ImportID] = txnmodel.StatusSkippedDuplicate
			submission.Rejected = append(submission.Rejected, outcome)
			logger.Info("YNAB reported an already-imported id",
				log.String("import_id", txn.ImportID), log.Int64("amount", txn.Amount))
			continue
		}
		outcome.Outcome = model.OutcomeCreated
		statusByImportID[txn.ImportID] = txnmodel.StatusSubmitted
		submission.Accepted = append(submission.Accepted, outcome)
	}

	session, _ := is.Sessions.Get(batchID)
	if err := is.History.RecordImported(recordedIDs, session.AccountRef); err != nil {
		// The submission itself succeeded. A lost history write only costs
		// a later round trip, since YNAB suppresses the ids anyway.
		logger.Warn("Failed to record import history after submission", log.Error(err))
	}

	is.Sessions.FinishSubmission(batchID, statusByImportID)
	logger.Info(fmt.Sprintf("Submitted batch %s: %d accepted, %d duplicate(s).",
		batchID, len(submission.Accepted), len(submission.Rejected)))
	return submission, nil
}

// createWithRetry calls YNAB with a bounded retry on retryable failures.
func (is *ImportService) createWithRetry(ctx context.Context,
	txns []txnmodel.TransactionRecord) (*ynab.CreateResult, error) {
	logger := log.GetLogger()

	attempts := is.Retries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := is.YNAB.CreateTransactions(ctx, is.AccountID, txns)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !ynab.IsRetryable(err) {
			return nil, err
		}
		if attempt == attempts {
			break
		}

		logger.Warn(fmt.Sprintf("YNAB submission attempt %d/%d failed, retrying.", attempt, attempts),
			log.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(is.RetryBackoff * time.Duration(attempt)):
		}
	}
	return nil, lastErr
}

func buildBatchResult(batchID string, transactions []txnmodel.TransactionRecord) *model.BatchResult {
	result := &model.BatchResult{BatchID: batchID}
	for _, txn := range transactions {
		switch {
		case txn.Status == txnmodel.StatusSkippedDuplicate:
			result.SkippedDuplicates = append(result.SkippedDuplicates, txn)
		case txn.Status == txnmodel.StatusReviewPending:
			result.NeedsReview = append(result.NeedsReview, txn)
		default:
			result.Ready = append(result.Ready, txn)
		}
	}
	return result
}
