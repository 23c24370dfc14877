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

package engine

import (
	"regexp"
	"sort"
	"strings"

	"github.com/niemenmaa/ynab-importer/internal/rules/model"
	"github.com/niemenmaa/ynab-importer/internal/system/log"
	txnmodel "github.com/niemenmaa/ynab-importer/internal/transactions/model"
)

// Match is the outcome of categorizing one transaction.
type Match struct {
	CategoryID   string
	CategoryName string
	RuleID       string
	RuleName     string
	Matched      bool
}

type compiledRule struct {
	rule model.Rule
	// regexps holds patterns compiled at load time, keyed by condition
	// index. A pattern that failed to compile has no entry and its
	// condition never matches.
	regexps map[int]*regexp.Regexp
}

// Engine evaluates categorization rules against transactions. It operates
// on an immutable snapshot of the rule set taken at construction, so a
// batch run is deterministic even if rules are edited concurrently.
type Engine struct {
	rules []compiledRule
}

// New builds an engine from a snapshot of rules. Disabled rules are
// excluded. Rules with corrupt data (unknown condition kind, no
// conditions) are skipped and logged rather than failing the batch.
// The evaluation order is priority descending with rule id ascending as
// the tie-break, so the winner is reproducible across runs.
func New(rules []model.Rule) *Engine {
	logger := log.GetLogger()

	sorted := make([]model.Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority > sorted[j].Priority
		}
		return sorted[i].ID < sorted[j].ID
	})

	compiled := make([]compiledRule, 0, len(sorted))
	for _, rule := range sorted {
		if !rule.Enabled {
			continue
		}
		if len(rule.Conditions) == 0 {
			logger.Warn("Skipping rule with no conditions", log.String("rule_id", rule.ID))
			continue
		}

		cr := compiledRule{rule: rule, regexps: map[int]*regexp.Regexp{}}
		corrupt := false
		for i, cond := range rule.Conditions {
			if !model.KnownConditionKinds[cond.Kind] {
				logger.Warn("Skipping rule with unknown condition kind",
					log.String("rule_id", rule.ID), log.String("kind", string(cond.Kind)))
				corrupt = true
				break
			}
			if cond.Kind == model.KindPayeeRegex {
				re, err := regexp.Compile("(?i)" + cond.Value)
				if err != nil {
					// Fail closed: the condition stays uncompiled and
					// never matches, instead of erroring mid-batch.
					logger.Warn("Payee regex does not compile, condition will never match",
						log.String("rule_id", rule.ID), log.Error(err))
					continue
				}
				cr.regexps[i] = re
			}
		}
		if corrupt {
			continue
		}
		compiled = append(compiled, cr)
	}

	return &Engine{rules: compiled}
}

// Categorize returns the first rule whose conditions all match the
// transaction, in priority order. No match is a normal outcome: the
// caller marks the transaction for manual review. Pure over the
// snapshot; repeated calls yield the same result.
func (e *Engine) Categorize(txn txnmodel.TransactionRecord) Match {
	for _, cr := range e.rules {
		if cr.matches(txn) {
			return Match{
				CategoryID:   cr.rule.CategoryID,
				CategoryName: cr.rule.CategoryName,
				RuleID:       cr.rule.ID,
				RuleName:     cr.rule.Name,
				Matched:      true,
			}
		}
	}
	return Match{}
}

// RuleCount returns the number of evaluable rules in the snapshot.
func (e *Engine) RuleCount() int {
	return len(e.rules)
}

// matches evaluates the rule's conditions with short-circuit AND.
func (cr *compiledRule) matches(txn txnmodel.TransactionRecord) bool {
	for i, cond := range cr.rule.Conditions {
		if !cr.conditionMatches(i, cond, txn) {
			return false
		}
	}
	return true
}

func (cr *compiledRule) conditionMatches(index int, cond model.Condition, txn txnmodel.TransactionRecord) bool {
	switch cond.Kind {
	case model.KindPayeeExact:
		return strings.EqualFold(strings.TrimSpace(txn.Payee), strings.TrimSpace(cond.Value))
	case model.KindPayeeContains:
		return strings.Contains(strings.ToUpper(txn.Payee), strings.ToUpper(cond.Value))
	case model.KindPayeeRegex:
		re, ok := cr.regexps[index]
		if !ok {
			return false
		}
		return re.MatchString(txn.Payee)
	case model.KindMemoContains:
		if txn.Memo == "" {
			return false
		}
		return strings.Contains(strings.ToUpper(txn.Memo), strings.ToUpper(cond.Value))
	case model.KindAmountExact:
		return txn.Amount == cond.Amount
	case model.KindAmountRange:
		return txn.Amount >= cond.AmountMin && txn.Amount <= cond.AmountMax
	}
	return false
}
