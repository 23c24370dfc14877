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

package model

import (
	txnmodel "github.com/niemenmaa/ynab-importer/internal/transactions/model"
)

// BatchResult is the outcome of preparing one upload session. Ready
// transactions were auto-categorized and passed the duplicate check;
// NeedsReview ones await a manual category; SkippedDuplicates were
// dropped before any network call and are reported rather than silently
// vanishing.
type BatchResult struct {
	BatchID           string                       `json:"batch_id"`
	Ready             []txnmodel.TransactionRecord `json:"ready"`
	NeedsReview       []txnmodel.TransactionRecord `json:"needs_review"`
	SkippedDuplicates []txnmodel.TransactionRecord `json:"skipped_duplicates"`
}

// Outcome classifies one transaction's submission result.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeError     Outcome = "error"
)

// TransactionOutcome is the per-transaction submission report. A batch
// submission never collapses into a single opaque failure.
type TransactionOutcome struct {
	ImportID string  `json:"import_id"`
	Payee    string  `json:"payee"`
	Amount   int64   `json:"amount"`
	Outcome  Outcome `json:"outcome"`
	Reason   string  `json:"reason,omitempty"`
}

// SubmissionResult reports a finished (possibly partially successful)
// submission.
type SubmissionResult struct {
	BatchID  string               `json:"batch_id"`
	Accepted []TransactionOutcome `json:"accepted"`
	Rejected []TransactionOutcome `json:"rejected"`
}

// ReviewResolution assigns a category to one needs-review transaction.
type ReviewResolution struct {
	ImportID     string `json:"import_id"`
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
}
