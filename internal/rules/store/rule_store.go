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
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/niemenmaa/ynab-importer/internal/rules/model"
	errors2 "github.com/niemenmaa/ynab-importer/internal/system/errors"
	"github.com/niemenmaa/ynab-importer/internal/system/log"
)

// RuleRepository persists categorization rules. Each rule row owns its
// condition rows; conditions are rewritten wholesale on update.
type RuleRepository struct {
	db *sql.DB
}

// NewRuleRepository creates a repository over the given connection.
func NewRuleRepository(db *sql.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

// AddRule inserts the rule and its conditions in one transaction.
func (r *RuleRepository) AddRule(rule model.Rule) error {
	tx, err := r.db.Begin()
	if err != nil {
		return r.serverError(errors2.ADD_RULE, fmt.Sprintf("Failed to begin transaction for adding rule: %s", rule.ID), err)
	}

	_, err = tx.Exec(`INSERT INTO categorization_rules
		(rule_id, name, category_id, category_name, priority, enabled, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		rule.ID, rule.Name, rule.CategoryID, rule.CategoryName, rule.Priority, rule.Enabled,
		rule.CreatedAt, rule.UpdatedAt)
	if err != nil {
		_ = tx.Rollback()
		return r.serverError(errors2.ADD_RULE, fmt.Sprintf("Failed on inserting rule: %s", rule.ID), err)
	}

	if err := insertConditions(tx, rule); err != nil {
		_ = tx.Rollback()
		return r.serverError(errors2.ADD_RULE, fmt.Sprintf("Failed on inserting conditions for rule: %s", rule.ID), err)
	}

	if err := tx.Commit(); err != nil {
		return r.serverError(errors2.ADD_RULE, fmt.Sprintf("Failed on committing transaction for rule: %s", rule.ID), err)
	}
	log.GetLogger().Info(fmt.Sprintf("Rule: %s (%s) added successfully.", rule.ID, rule.Name))
	return nil
}

// UpdateRule rewrites the rule row and replaces its conditions.
func (r *RuleRepository) UpdateRule(rule model.Rule) error {
	tx, err := r.db.Begin()
	if err != nil {
		return r.serverError(errors2.UPDATE_RULE, fmt.Sprintf("Failed to begin transaction for updating rule: %s", rule.ID), err)
	}

	res, err := tx.Exec(`UPDATE categorization_rules SET
		name=$1, category_id=$2, category_name=$3, priority=$4, enabled=$5, updated_at=$6
		WHERE rule_id=$7`,
		rule.Name, rule.CategoryID, rule.CategoryName, rule.Priority, rule.Enabled,
		rule.UpdatedAt, rule.ID)
	if err != nil {
		_ = tx.Rollback()
		return r.serverError(errors2.UPDATE_RULE, fmt.Sprintf("Failed on updating rule: %s", rule.ID), err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		_ = tx.Rollback()
		return sql.ErrNoRows
	}

	if _, err := tx.Exec(`DELETE FROM rule_conditions WHERE rule_id=$1`, rule.ID); err != nil {
		_ = tx.Rollback()
		return r.serverError(errors2.UPDATE_RULE, fmt.Sprintf("Failed on clearing conditions for rule: %s", rule.ID), err)
	}
	if err := insertConditions(tx, rule); err != nil {
		_ = tx.Rollback()
		return r.serverError(errors2.UPDATE_RULE, fmt.Sprintf("Failed on inserting conditions for rule: %s", rule.ID), err)
	}

	if err := tx.Commit(); err != nil {
		return r.serverError(errors2.UPDATE_RULE, fmt.Sprintf("Failed on committing transaction for rule: %s", rule.ID), err)
	}
	log.GetLogger().Info(fmt.Sprintf("Rule: %s updated successfully.", rule.ID))
	return nil
}

// DeleteRule removes the rule; conditions go with it via cascade.
func (r *RuleRepository) DeleteRule(ruleID string) error {
	res, err := r.db.Exec(`DELETE FROM categorization_rules WHERE rule_id=$1`, ruleID)
	if err != nil {
		return r.serverError(errors2.DELETE_RULE, fmt.Sprintf("Failed on deleting rule: %s", ruleID), err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}
	log.GetLogger().Info(fmt.Sprintf("Rule: %s deleted successfully.", ruleID))
	return nil
}

// GetRule fetches a single rule with its conditions. sql.ErrNoRows when absent.
func (r *RuleRepository) GetRule(ruleID string) (model.Rule, error) {
	row := r.db.QueryRow(`SELECT rule_id, name, category_id, category_name, priority, enabled, created_at, updated_at
		FROM categorization_rules WHERE rule_id=$1`, ruleID)

	var rule model.Rule
	err := row.Scan(&rule.ID, &rule.Name, &rule.CategoryID, &rule.CategoryName,
		&rule.Priority, &rule.Enabled, &rule.CreatedAt, &rule.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Rule{}, err
	}
	if err != nil {
		return model.Rule{}, r.serverError(errors2.FETCH_RULES, fmt.Sprintf("Failed on fetching rule: %s", ruleID), err)
	}

	conditions, err := r.fetchConditions([]string{ruleID})
	if err != nil {
		return model.Rule{}, err
	}
	rule.Conditions = conditions[ruleID]
	return rule, nil
}

// GetRules returns every rule ordered by priority descending with rule id
// ascending as the tie-break. The ordering is part of the contract: only
// the first matching rule wins, so it has to be reproducible.
func (r *RuleRepository) GetRules() ([]model.Rule, error) {
	return r.listRules(`SELECT rule_id, name, category_id, category_name, priority, enabled, created_at, updated_at
		FROM categorization_rules ORDER BY priority DESC, rule_id ASC`)
}

// ListEnabled returns the enabled rules in the same total order.
func (r *RuleRepository) ListEnabled() ([]model.Rule, error) {
	return r.listRules(`SELECT rule_id, name, category_id, category_name, priority, enabled, created_at, updated_at
		FROM categorization_rules WHERE enabled = TRUE ORDER BY priority DESC, rule_id ASC`)
}

func (r *RuleRepository) listRules(query string) ([]model.Rule, error) {
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, r.serverError(errors2.FETCH_RULES, "Failed on listing rules", err)
	}
	defer rows.Close()

	var rules []model.Rule
	var ids []string
	for rows.Next() {
		var rule model.Rule
		if err := rows.Scan(&rule.ID, &rule.Name, &rule.CategoryID, &rule.CategoryName,
			&rule.Priority, &rule.Enabled, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
			return nil, r.serverError(errors2.FETCH_RULES, "Failed on scanning rule row", err)
		}
		rules = append(rules, rule)
		ids = append(ids, rule.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, r.serverError(errors2.FETCH_RULES, "Failed on iterating rule rows", err)
	}

	conditions, err := r.fetchConditions(ids)
	if err != nil {
		return nil, err
	}
	for i := range rules {
		rules[i].Conditions = conditions[rules[i].ID]
	}
	return rules, nil
}

// fetchConditions loads conditions for the given rule ids, ordered by
// their stored position within each rule.
func (r *RuleRepository) fetchConditions(ruleIDs []string) (map[string][]model.Condition, error) {
	result := make(map[string][]model.Condition, len(ruleIDs))
	if len(ruleIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.Query(`SELECT rule_id, kind, value, amount, amount_min, amount_max
		FROM rule_conditions WHERE rule_id = ANY($1) ORDER BY rule_id, position`, pq.Array(ruleIDs))
	if err != nil {
		return nil, r.serverError(errors2.FETCH_RULES, "Failed on fetching rule conditions", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ruleID string
		var cond model.Condition
		if err := rows.Scan(&ruleID, &cond.Kind, &cond.Value, &cond.Amount, &cond.AmountMin, &cond.AmountMax); err != nil {
			return nil, r.serverError(errors2.FETCH_RULES, "Failed on scanning condition row", err)
		}
		result[ruleID] = append(result[ruleID], cond)
	}
	if err := rows.Err(); err != nil {
		return nil, r.serverError(errors2.FETCH_RULES, "Failed on iterating condition rows", err)
	}
	return result, nil
}

func insertConditions(tx *sql.Tx, rule model.Rule) error {
	for i, cond := range rule.Conditions {
		_, err := tx.Exec(`INSERT INTO rule_conditions
			(rule_id, position, kind, value, amount, amount_min, amount_max)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			rule.ID, i, string(cond.Kind), cond.Value, cond.Amount, cond.AmountMin, cond.AmountMax)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *RuleRepository) serverError(msg errors2.ErrorMessage, errorMsg string, err error) error {
	log.GetLogger().Debug(errorMsg, log.Error(err))
	return errors2.NewServerError(errors2.ErrorMessage{
		Code:        msg.Code,
		Message:     msg.Message,
		Description: errorMsg,
	}, err)
}
