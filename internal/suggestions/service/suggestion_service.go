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
	"math"
	"strings"

	rulemodel "github.com/niemenmaa/ynab-importer/internal/rules/model"
	rulesvc "github.com/niemenmaa/ynab-importer/internal/rules/service"
	"github.com/niemenmaa/ynab-importer/internal/suggestions/model"
	"github.com/niemenmaa/ynab-importer/internal/system/config"
	errors2 "github.com/niemenmaa/ynab-importer/internal/system/errors"
	"github.com/niemenmaa/ynab-importer/internal/system/log"
	"github.com/niemenmaa/ynab-importer/internal/ynab"
)

const suggestedRulePriority = 10

// AnalyzeOptions narrows the transaction window fed to the analyzer.
// Zero values fall back to the configured defaults.
type AnalyzeOptions struct {
	SinceDate       string
	AccountID       string
	Threshold       float64
	MinTransactions int
}

// SuggestionServiceInterface analyzes YNAB history and turns accepted
// suggestions into categorization rules.
type SuggestionServiceInterface interface {
	Analyze(ctx context.Context, opts AnalyzeOptions) (*model.AnalyzeResult, error)
	CreateRules(items []model.SuggestionItem) (*model.BulkCreateResult, error)
}

// SuggestionService is the default implementation of the
// SuggestionServiceInterface.
type SuggestionService struct {
	Rules           rulesvc.RuleServiceInterface
	YNAB            ynab.ClientInterface
	Threshold       float64
	MinTransactions int
}

// GetSuggestionService returns a suggestion service wired to the
// configured YNAB budget.
func GetSuggestionService() SuggestionServiceInterface {
	cfg := config.GetConfig()
	return &SuggestionService{
		Rules:           rulesvc.GetRuleService(),
		YNAB:            ynab.NewClient(cfg.YNAB),
		Threshold:       cfg.Suggestions.Threshold,
		MinTransactions: cfg.Suggestions.MinTransactions,
	}
}

// Analyze fetches the transaction window from YNAB, runs the pattern
// analyzer and drops suggestions for payees an enabled rule already
// covers.
func (ss *SuggestionService) Analyze(ctx context.Context, opts AnalyzeOptions) (*model.AnalyzeResult, error) {
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = ss.Threshold
	}
	minTransactions := opts.MinTransactions
	if minTransactions == 0 {
		minTransactions = ss.MinTransactions
	}

	transactions, err := ss.YNAB.GetTransactions(ctx, opts.SinceDate, opts.AccountID)
	if err != nil {
		return nil, errors2.NewServerError(errors2.ANALYZE_SUGGESTIONS, err)
	}

	analyzer := &PatternAnalyzer{Threshold: threshold, MinTransactions: minTransactions}
	suggestions := analyzer.Analyze(transactions)

	enabledRules, err := ss.Rules.ListEnabledRules()
	if err != nil {
		return nil, err
	}
	exactPayees, containsPatterns := coveredPayees(enabledRules)

	filtered := make([]model.RuleSuggestion, 0, len(suggestions))
	for _, suggestion := range suggestions {
		if payeeCovered(suggestion.PayeeName, exactPayees, containsPatterns) {
			continue
		}
		filtered = append(filtered, suggestion)
	}

	log.GetLogger().Info(fmt.Sprintf("Analyzed %d transaction(s): %d suggestion(s), %d already covered.",
		len(transactions), len(filtered), len(suggestions)-len(filtered)))
	return &model.AnalyzeResult{
		Suggestions:       filtered,
		TotalTransactions: len(transactions),
	}, nil
}

// CreateRules turns accepted suggestions into enabled rules. A payee
// already covered by an existing rule is counted as skipped, not an
// error, so bulk accepts are idempotent.
func (ss *SuggestionService) CreateRules(items []model.SuggestionItem) (*model.BulkCreateResult, error) {
	result := &model.BulkCreateResult{}

	for _, item := range items {
		enabledRules, err := ss.Rules.ListEnabledRules()
		if err != nil {
			return nil, err
		}
		exactPayees, containsPatterns := coveredPayees(enabledRules)
		if payeeCovered(item.PayeeName, exactPayees, containsPatterns) {
			result.Skipped++
			continue
		}

		if _, err := ss.Rules.AddRule(ruleFromSuggestion(item)); err != nil {
			return nil, err
		}
		result.Created++
	}

	log.GetLogger().Info(fmt.Sprintf("Bulk rule creation: %d created, %d skipped.",
		result.Created, result.Skipped))
	return result, nil
}

// ruleFromSuggestion builds an exact-payee rule constrained to the
// suggestion's direction through an amount range.
func ruleFromSuggestion(item model.SuggestionItem) rulemodel.Rule {
	directionLabel := "Expense"
	amountMin, amountMax := int64(math.MinInt64), int64(-1)
	if item.Direction == model.DirectionIncoming {
		directionLabel = "Income"
		amountMin, amountMax = 0, int64(math.MaxInt64)
	}

	payee := item.PayeeName
	namePayee := payee
	if len(namePayee) > 35 {
		namePayee = namePayee[:35]
	}

	return rulemodel.Rule{
		Name:     fmt.Sprintf("Auto: %s (%s)", namePayee, directionLabel),
		Priority: suggestedRulePriority,
		Enabled:  true,
		Conditions: []rulemodel.Condition{
			{Kind: rulemodel.KindPayeeExact, Value: payee},
			{Kind: rulemodel.KindAmountRange, AmountMin: amountMin, AmountMax: amountMax},
		},
		CategoryID:   item.CategoryID,
		CategoryName: item.CategoryName,
	}
}

func coveredPayees(rules []rulemodel.Rule) (exact map[string]bool, contains []string) {
	exact = make(map[string]bool)
	for _, rule := range rules {
		for _, cond := range rule.Conditions {
			switch cond.Kind {
			case rulemodel.KindPayeeExact:
				exact[strings.ToUpper(cond.Value)] = true
			case rulemodel.KindPayeeContains:
				contains = append(contains, strings.ToUpper(cond.Value))
			}
		}
	}
	return exact, contains
}

func payeeCovered(payee string, exact map[string]bool, contains []string) bool {
	payeeUpper := strings.ToUpper(payee)
	if exact[payeeUpper] {
		return true
	}
	for _, pattern := range contains {
		if strings.Contains(payeeUpper, pattern) {
			return true
		}
	}
	return false
}
