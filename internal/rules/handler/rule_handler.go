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

package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/niemenmaa/ynab-importer/internal/rules/model"
	"github.com/niemenmaa/ynab-importer/internal/rules/provider"
	"github.com/niemenmaa/ynab-importer/internal/system/log"
	"github.com/niemenmaa/ynab-importer/internal/system/utils"
)

type RuleHandler struct{}

func NewRuleHandler() *RuleHandler {

	return &RuleHandler{}
}

// CreateRule handles POST /rules
func (rh *RuleHandler) CreateRule(w http.ResponseWriter, r *http.Request) {

	var rule model.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		http.Error(w, utils.HandleDecodeError(err, "rule"), http.StatusBadRequest)
		return
	}

	ruleService := provider.NewRuleProvider().GetRuleService()
	created, err := ruleService.AddRule(rule)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	logger := log.GetLogger()
	logger.Info(fmt.Sprintf("Rule: %s for category: %s created successfully", created.ID,
		created.CategoryName))
	utils.WriteJSONResponse(w, http.StatusCreated, created)
}

// GetRules handles GET /rules
func (rh *RuleHandler) GetRules(w http.ResponseWriter, r *http.Request) {

	ruleService := provider.NewRuleProvider().GetRuleService()
	rules, err := ruleService.GetRules()
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, rules)
}

// GetRule handles GET /rules/:rule_id
func (rh *RuleHandler) GetRule(w http.ResponseWriter, r *http.Request) {

	ruleID := extractRuleID(r)
	if ruleID == "" {
		http.Error(w, "rule id is required", http.StatusBadRequest)
		return
	}

	ruleService := provider.NewRuleProvider().GetRuleService()
	rule, err := ruleService.GetRule(ruleID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, rule)
}

// UpdateRule handles PUT /rules/:rule_id
func (rh *RuleHandler) UpdateRule(w http.ResponseWriter, r *http.Request) {

	ruleID := extractRuleID(r)
	if ruleID == "" {
		http.Error(w, "rule id is required", http.StatusBadRequest)
		return
	}

	var rule model.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		http.Error(w, utils.HandleDecodeError(err, "rule"), http.StatusBadRequest)
		return
	}

	ruleService := provider.NewRuleProvider().GetRuleService()
	updated, err := ruleService.UpdateRule(ruleID, rule)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	logger := log.GetLogger()
	logger.Info(fmt.Sprintf("Rule: %s updated successfully.", ruleID))
	utils.WriteJSONResponse(w, http.StatusOK, updated)
}

// DeleteRule handles DELETE /rules/:rule_id
func (rh *RuleHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {

	ruleID := extractRuleID(r)
	if ruleID == "" {
		http.Error(w, "rule id is required", http.StatusBadRequest)
		return
	}

	ruleService := provider.NewRuleProvider().GetRuleService()
	if err := ruleService.DeleteRule(ruleID); err != nil {
		utils.HandleError(w, err)
		return
	}
	logger := log.GetLogger()
	logger.Info(fmt.Sprintf("Rule: %s deleted successfully.", ruleID))
	w.WriteHeader(http.StatusNoContent)
}

func extractRuleID(r *http.Request) string {
	pathParts := strings.Split(strings.TrimSuffix(r.URL.Path, "/"), "/")
	if len(pathParts) < 3 {
		return ""
	}
	return pathParts[len(pathParts)-1]
}
