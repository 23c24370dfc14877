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
	"github.com/niemenmaa/ynab-importer/internal/ynab"
)

// Direction splits a payee's activity into income and expense sides,
// which usually map to different categories.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// RuleSuggestion is a candidate categorization rule derived from the
// payee's historical category consistency.
type RuleSuggestion struct {
	PayeeName        string             `json:"payee_name"`
	CategoryID       string             `json:"category_id"`
	CategoryName     string             `json:"category_name"`
	Direction        Direction          `json:"direction"`
	Confidence       float64            `json:"confidence"`
	TransactionCount int                `json:"transaction_count"`
	TotalForPayee    int                `json:"total_for_payee"`
	Samples          []ynab.Transaction `json:"sample_transactions"`
}

// AnalyzeResult is the suggestion listing plus the size of the analyzed
// window.
type AnalyzeResult struct {
	Suggestions       []RuleSuggestion `json:"suggestions"`
	TotalTransactions int              `json:"total_transactions"`
}

// SuggestionItem identifies one accepted suggestion in a bulk create
// request.
type SuggestionItem struct {
	PayeeName    string    `json:"payee_name"`
	CategoryID   string    `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Direction    Direction `json:"direction"`
}

// BulkCreateRequest asks for rules to be created from accepted
// suggestions.
type BulkCreateRequest struct {
	Suggestions []SuggestionItem `json:"suggestions"`
}

// BulkCreateResult reports how many rules were created and how many were
// skipped because a rule for the payee already existed.
type BulkCreateResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}
