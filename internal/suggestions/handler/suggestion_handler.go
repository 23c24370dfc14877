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
	"strconv"

	"github.com/niemenmaa/ynab-importer/internal/suggestions/model"
	"github.com/niemenmaa/ynab-importer/internal/suggestions/provider"
	"github.com/niemenmaa/ynab-importer/internal/suggestions/service"
	"github.com/niemenmaa/ynab-importer/internal/system/log"
	"github.com/niemenmaa/ynab-importer/internal/system/utils"
)

type SuggestionHandler struct{}

func NewSuggestionHandler() *SuggestionHandler {

	return &SuggestionHandler{}
}

// Analyze handles GET /suggestions/analyze. Optional query parameters:
// since_date, account_id, threshold, min_transactions.
func (sh *SuggestionHandler) Analyze(w http.ResponseWriter, r *http.Request) {

	opts := service.AnalyzeOptions{
		SinceDate: r.URL.Query().Get("since_date"),
		AccountID: r.URL.Query().Get("account_id"),
	}
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil || threshold < 50 || threshold > 100 {
			http.Error(w, "threshold must be a number between 50 and 100", http.StatusBadRequest)
			return
		}
		opts.Threshold = threshold
	}
	if raw := r.URL.Query().Get("min_transactions"); raw != "" {
		minTransactions, err := strconv.Atoi(raw)
		if err != nil || minTransactions < 1 {
			http.Error(w, "min_transactions must be a positive integer", http.StatusBadRequest)
			return
		}
		opts.MinTransactions = minTransactions
	}

	suggestionService := provider.NewSuggestionProvider().GetSuggestionService()
	result, err := suggestionService.Analyze(r.Context(), opts)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, result)
}

// CreateRules handles POST /suggestions/rules
func (sh *SuggestionHandler) CreateRules(w http.ResponseWriter, r *http.Request) {

	var request model.BulkCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, utils.HandleDecodeError(err, "suggestion"), http.StatusBadRequest)
		return
	}

	suggestionService := provider.NewSuggestionProvider().GetSuggestionService()
	result, err := suggestionService.CreateRules(request.Suggestions)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	logger := log.GetLogger()
	logger.Info(fmt.Sprintf("Created %d rule(s) from suggestions, skipped %d.", result.Created, result.Skipped))
	utils.WriteJSONResponse(w, http.StatusCreated, result)
}
