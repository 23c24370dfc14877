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

	"github.com/niemenmaa/ynab-importer/internal/imports/model"
	"github.com/niemenmaa/ynab-importer/internal/imports/provider"
	"github.com/niemenmaa/ynab-importer/internal/parsers/opbank"
	"github.com/niemenmaa/ynab-importer/internal/system/config"
	"github.com/niemenmaa/ynab-importer/internal/system/log"
	"github.com/niemenmaa/ynab-importer/internal/system/utils"
)

// Multipart uploads are held in memory up to this size before spilling to
// disk. Bank CSV exports are small.
const maxUploadMemory = 8 << 20

type ImportHandler struct{}

func NewImportHandler() *ImportHandler {

	return &ImportHandler{}
}

// UploadBatch handles POST /upload. The body is a multipart form with the
// bank CSV under "file" and an optional "account_ref" field; the
// configured YNAB account is the fallback.
func (ih *ImportHandler) UploadBatch(w http.ResponseWriter, r *http.Request) {

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "request is not a valid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "form field 'file' is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	accountRef := r.FormValue("account_ref")
	if accountRef == "" {
		accountRef = config.GetConfig().YNAB.AccountID
	}

	transactions, err := opbank.Parse(file)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	importService := provider.NewImportProvider().GetImportService()
	result, err := importService.PrepareBatch(transactions, accountRef)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	logger := log.GetLogger()
	logger.Info(fmt.Sprintf("Upload %s prepared as batch: %s", header.Filename, result.BatchID))
	utils.WriteJSONResponse(w, http.StatusCreated, result)
}

// GetBatch handles GET /batches/:batch_id
func (ih *ImportHandler) GetBatch(w http.ResponseWriter, r *http.Request) {

	batchID := extractBatchID(r)
	if batchID == "" {
		http.Error(w, "batch id is required", http.StatusBadRequest)
		return
	}

	importService := provider.NewImportProvider().GetImportService()
	result, err := importService.GetBatch(batchID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, result)
}

// ResolveReview handles POST /batches/:batch_id/review
func (ih *ImportHandler) ResolveReview(w http.ResponseWriter, r *http.Request) {

	batchID := extractBatchID(r)
	if batchID == "" {
		http.Error(w, "batch id is required", http.StatusBadRequest)
		return
	}

	var resolutions []model.ReviewResolution
	if err := json.NewDecoder(r.Body).Decode(&resolutions); err != nil {
		http.Error(w, utils.HandleDecodeError(err, "review resolution"), http.StatusBadRequest)
		return
	}

	importService := provider.NewImportProvider().GetImportService()
	result, err := importService.ResolveReview(batchID, resolutions)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	logger := log.GetLogger()
	logger.Info(fmt.Sprintf("Applied %d review resolution(s) to batch: %s", len(resolutions), batchID))
	utils.WriteJSONResponse(w, http.StatusOK, result)
}

// SubmitBatch handles POST /batches/:batch_id/submit
func (ih *ImportHandler) SubmitBatch(w http.ResponseWriter, r *http.Request) {

	batchID := extractBatchID(r)
	if batchID == "" {
		http.Error(w, "batch id is required", http.StatusBadRequest)
		return
	}

	importService := provider.NewImportProvider().GetImportService()
	result, err := importService.Submit(r.Context(), batchID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, result)
}

// DiscardBatch handles DELETE /batches/:batch_id
func (ih *ImportHandler) DiscardBatch(w http.ResponseWriter, r *http.Request) {

	batchID := extractBatchID(r)
	if batchID == "" {
		http.Error(w, "batch id is required", http.StatusBadRequest)
		return
	}

	importService := provider.NewImportProvider().GetImportService()
	if err := importService.DiscardBatch(batchID); err != nil {
		utils.HandleError(w, err)
		return
	}
	logger := log.GetLogger()
	logger.Info(fmt.Sprintf("Batch: %s discarded.", batchID))
	w.WriteHeader(http.StatusNoContent)
}

// extractBatchID pulls the id segment out of /batches/:batch_id and its
// /review and /submit sub-routes.
func extractBatchID(r *http.Request) string {
	pathParts := strings.Split(strings.TrimSuffix(r.URL.Path, "/"), "/")
	for i, part := range pathParts {
		if part == "batches" && i+1 < len(pathParts) {
			return pathParts[i+1]
		}
	}
	return ""
}
