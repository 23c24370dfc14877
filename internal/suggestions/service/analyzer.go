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
	"sort"
	"strings"

	"github.com/niemenmaa/ynab-importer/internal/suggestions/model"
	"github.com/niemenmaa/ynab-importer/internal/ynab"
)

const maxSampleTransactions = 5

// transferPrefix marks YNAB account-to-account transfers, which never
// deserve a categorization rule.
const transferPrefix = "Transfer :"

// PatternAnalyzer derives rule suggestions from historical transactions.
// A payee qualifies when at least Threshold percent of its transactions
// in one direction share a category, over at least MinTransactions
// transactions.
type PatternAnalyzer struct {
	Threshold       float64
	MinTransactions int
}

type payeeGroup struct {
	payee     string
	direction model.Direction
}

type categoryTally struct {
	count        int
	name         string
	transactions []ynab.Transaction
}

// Analyze groups transactions by payee and direction, then suggests the
// dominant category of each qualifying group. Results are sorted by
// confidence, then by transaction count.
func (pa *PatternAnalyzer) Analyze(transactions []ynab.Transaction) []model.RuleSuggestion {
	grouped := make(map[payeeGroup][]ynab.Transaction)
	for _, txn := range transactions {
		payee := strings.TrimSpace(txn.PayeeName)
		if payee == "" || strings.HasPrefix(payee, transferPrefix) {
			continue
		}
		group := payeeGroup{payee: payee, direction: directionOf(txn.Amount)}
		grouped[group] = append(grouped[group], txn)
	}

	var suggestions []model.RuleSuggestion
	for group, txns := range grouped {
		if len(txns) < pa.MinTransactions {
			continue
		}

		tallies := make(map[string]*categoryTally)
		for _, txn := range txns {
			// Uncategorized transactions count against the confidence of
			// every real category but are never suggested themselves.
			if txn.CategoryID == "" {
				continue
			}
			tally, ok := tallies[txn.CategoryID]
			if !ok {
				tally = &categoryTally{}
				tallies[txn.CategoryID] = tally
			}
			tally.count++
			tally.name = txn.CategoryName
			if len(tally.transactions) < maxSampleTransactions {
				tally.transactions = append(tally.transactions, txn)
			}
		}

		total := len(txns)
		for categoryID, tally := range tallies {
			confidence := float64(tally.count) / float64(total) * 100
			if confidence < pa.Threshold {
				continue
			}
			suggestions = append(suggestions, model.RuleSuggestion{
				PayeeName:        group.payee,
				CategoryID:       categoryID,
				CategoryName:     tally.name,
				Direction:        group.direction,
				Confidence:       confidence,
				TransactionCount: tally.count,
				TotalForPayee:    total,
				Samples:          tally.transactions,
			})
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Confidence != suggestions[j].Confidence {
			return suggestions[i].Confidence > suggestions[j].Confidence
		}
		if suggestions[i].TransactionCount != suggestions[j].TransactionCount {
			return suggestions[i].TransactionCount > suggestions[j].TransactionCount
		}
		return suggestions[i].PayeeName < suggestions[j].PayeeName
	})
	return suggestions
}

func directionOf(amount int64) model.Direction {
	if amount >= 0 {
		return model.DirectionIncoming
	}
	return model.DirectionOutgoing
}
