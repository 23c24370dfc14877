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

// Confidence records how a transaction's category was determined.
type Confidence string

const (
	// ConfidenceAuto means a categorization rule matched.
	ConfidenceAuto Confidence = "auto"
	// ConfidenceManual means a human must choose (or chose) the category.
	ConfidenceManual Confidence = "manual"
)

// Status is the per-transaction import state. Submitted, Rejected and
// SkippedDuplicate are terminal.
type Status string

const (
	StatusParsed           Status = "parsed"
	StatusCategorized      Status = "categorized"
	StatusReviewPending    Status = "review_pending"
	StatusResolved         Status = "resolved"
	StatusDeduplicated     Status = "deduplicated"
	StatusSubmitted        Status = "submitted"
	StatusRejected         Status = "rejected"
	StatusSkippedDuplicate Status = "skipped_duplicate"
)

// TransactionRecord is a normalized bank transaction. Date is ISO 8601
// (YYYY-MM-DD) and Amount is signed milliunits; floats never appear so
// amount comparisons cannot drift.
type TransactionRecord struct {
	Date       string `json:"date"`
	Payee      string `json:"payee"`
	Memo       string `json:"memo,omitempty"`
	Amount     int64  `json:"amount"`
	AccountRef string `json:"account_ref"`

	// Fields derived during import preparation.
	CategoryID    string     `json:"category_id,omitempty"`
	CategoryName  string     `json:"category_name,omitempty"`
	Confidence    Confidence `json:"confidence,omitempty"`
	ImportID      string     `json:"import_id,omitempty"`
	MatchedRuleID string     `json:"matched_rule_id,omitempty"`
	Status        Status     `json:"status,omitempty"`
}

// Terminal reports whether the status can no longer change. A terminal
// transaction never re-enters review or submission.
func (s Status) Terminal() bool {
	switch s {
	case StatusSubmitted, StatusRejected, StatusSkippedDuplicate:
		return true
	}
	return false
}

// SubmissionReady reports whether the transaction can go into a submitted
// batch: it has a category and was not dropped as a duplicate.
func (t *TransactionRecord) SubmissionReady() bool {
	if t.CategoryID == "" {
		return false
	}
	return !t.Status.Terminal()
}
