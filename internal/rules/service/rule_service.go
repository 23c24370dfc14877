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
	"database/sql"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/niemenmaa/ynab-importer/internal/rules/model"
	"github.com/niemenmaa/ynab-importer/internal/rules/store"
	"github.com/niemenmaa/ynab-importer/internal/system/database"
	"github.com/niemenmaa/ynab-importer/internal/system/errors"
)

type RuleServiceInterface interface {
	AddRule(rule model.Rule) (model.Rule, error)
	GetRules() ([]model.Rule, error)
	GetRule(ruleID string) (model.Rule, error)
	UpdateRule(ruleID string, rule model.Rule) (model.Rule, error)
	DeleteRule(ruleID string) error
	ListEnabledRules() ([]model.Rule, error)
}

// RuleService is the default implementation of the RuleServiceInterface.
type RuleService struct{}

// GetRuleService creates a new instance of RuleService.
func GetRuleService() RuleServiceInterface {

	return &RuleService{}
}

func (rs *RuleService) AddRule(rule model.Rule) (model.Rule, error) {

	if err := validateRule(rule); err != nil {
		return model.Rule{}, err
	}

	rule.ID = uuid.New().String()
	currentTime := time.Now().UTC().Unix()
	rule.CreatedAt = currentTime
	rule.UpdatedAt = currentTime

	repo := store.NewRuleRepository(database.GetPostgresInstance().DB)
	if err := repo.AddRule(rule); err != nil {
		return model.Rule{}, err
	}
	return rule, nil
}

func (rs *RuleService) GetRules() ([]model.Rule, error) {
	repo := store.NewRuleRepository(database.GetPostgresInstance().DB)
	return repo.GetRules()
}

func (rs *RuleService) GetRule(ruleID string) (model.Rule, error) {
	repo := store.NewRuleRepository(database.GetPostgresInstance().DB)
	rule, err := repo.GetRule(ruleID)
	if err == sql.ErrNoRows {
		return model.Rule{}, ruleNotFound(ruleID)
	}
	return rule, err
}

func (rs *RuleService) UpdateRule(ruleID string, rule model.Rule) (model.Rule, error) {

	if err := validateRule(rule); err != nil {
		return model.Rule{}, err
	}

	rule.ID = ruleID
	rule.UpdatedAt = time.Now().UTC().Unix()

	repo := store.NewRuleRepository(database.GetPostgresInstance().DB)
	if err := repo.UpdateRule(rule); err != nil {
		if err == sql.ErrNoRows {
			return model.Rule{}, ruleNotFound(ruleID)
		}
		return model.Rule{}, err
	}
	return repo.GetRule(ruleID)
}

func (rs *RuleService) DeleteRule(ruleID string) error {
	repo := store.NewRuleRepository(database.GetPostgresInstance().DB)
	err := repo.DeleteRule(ruleID)
	if err == sql.ErrNoRows {
		return ruleNotFound(ruleID)
	}
	return err
}

// ListEnabledRules returns the enabled rules in evaluation order. Callers
// building an engine snapshot go through this.
func (rs *RuleService) ListEnabledRules() ([]model.Rule, error) {
	repo := store.NewRuleRepository(database.GetPostgresInstance().DB)
	return repo.ListEnabled()
}

// validateRule enforces the rule invariants at creation and edit time so
// malformed rules never reach the matching loop.
func validateRule(rule model.Rule) error {

	if rule.Name == "" {
		return errors.NewClientError(errors.ErrorMessage{
			Code:    errors.ErrRuleNameValidation.Code,
			Message: errors.ErrRuleNameValidation.Message,
		}, http.StatusBadRequest)
	}

	if rule.CategoryID == "" {
		return errors.NewClientError(errors.ErrorMessage{
			Code:    errors.ErrRuleCategoryValidation.Code,
			Message: errors.ErrRuleCategoryValidation.Message,
		}, http.StatusBadRequest)
	}

	// A rule with no conditions would match every transaction.
	if len(rule.Conditions) == 0 {
		return errors.NewClientError(errors.ErrorMessage{
			Code:        errors.ErrRuleNoConditions.Code,
			Message:     errors.ErrRuleNoConditions.Message,
			Description: errors.ErrRuleNoConditions.Description,
		}, http.StatusBadRequest)
	}

	for _, cond := range rule.Conditions {
		if err := validateCondition(cond); err != nil {
			return err
		}
	}
	return nil
}

func validateCondition(cond model.Condition) error {

	if !model.KnownConditionKinds[cond.Kind] {
		return errors.NewClientError(errors.ErrorMessage{
			Code:        errors.ErrUnknownConditionKind.Code,
			Message:     errors.ErrUnknownConditionKind.Message,
			Description: "Unknown condition kind: " + string(cond.Kind),
		}, http.StatusBadRequest)
	}

	switch cond.Kind {
	case model.KindPayeeExact, model.KindPayeeContains, model.KindMemoContains:
		if cond.Value == "" {
			return errors.NewClientError(errors.ErrorMessage{
				Code:        errors.ErrConditionValueValidation.Code,
				Message:     errors.ErrConditionValueValidation.Message,
				Description: "Condition kind " + string(cond.Kind) + " requires a value.",
			}, http.StatusBadRequest)
		}
	case model.KindPayeeRegex:
		if cond.Value == "" {
			return errors.NewClientError(errors.ErrorMessage{
				Code:        errors.ErrConditionValueValidation.Code,
				Message:     errors.ErrConditionValueValidation.Message,
				Description: "Condition kind payee_regex requires a pattern.",
			}, http.StatusBadRequest)
		}
		if _, err := regexp.Compile(cond.Value); err != nil {
			return errors.NewClientError(errors.ErrorMessage{
				Code:        errors.ErrInvalidPayeeRegex.Code,
				Message:     errors.ErrInvalidPayeeRegex.Message,
				Description: err.Error(),
			}, http.StatusBadRequest)
		}
	case model.KindAmountRange:
		if cond.AmountMin > cond.AmountMax {
			return errors.NewClientError(errors.ErrorMessage{
				Code:        errors.ErrInvalidAmountRange.Code,
				Message:     errors.ErrInvalidAmountRange.Message,
				Description: errors.ErrInvalidAmountRange.Description,
			}, http.StatusBadRequest)
		}
	}
	return nil
}

func ruleNotFound(ruleID string) error {
	return errors.NewClientError(errors.ErrorMessage{
		Code:        errors.ErrRuleNotFound.Code,
		Message:     errors.ErrRuleNotFound.Message,
		Description: "No rule exists with id: " + ruleID,
	}, http.StatusNotFound)
}
