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

package services

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/niemenmaa/ynab-importer/internal/imports/handler"
)

type ImportService struct {
	importHandler *handler.ImportHandler
}

func NewImportService(mux *http.ServeMux, apiBasePath string) *ImportService {

	instance := &ImportService{
		importHandler: handler.NewImportHandler(),
	}
	instance.RegisterRoutes(mux, apiBasePath)

	return instance
}

func (s *ImportService) RegisterRoutes(mux *http.ServeMux, apiBasePath string) {

	mux.HandleFunc(fmt.Sprintf("POST %s/upload", apiBasePath), s.importHandler.UploadBatch)
	mux.HandleFunc(fmt.Sprintf("GET %s/batches/", apiBasePath), s.importHandler.GetBatch)
	mux.HandleFunc(fmt.Sprintf("POST %s/batches/", apiBasePath), s.routeBatchAction)
	mux.HandleFunc(fmt.Sprintf("DELETE %s/batches/", apiBasePath), s.importHandler.DiscardBatch)
}

// routeBatchAction dispatches POST /batches/:batch_id/{review,submit} by
// the trailing segment.
func (s *ImportService) routeBatchAction(w http.ResponseWriter, r *http.Request) {

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case strings.HasSuffix(path, "/review"):
		s.importHandler.ResolveReview(w, r)
	case strings.HasSuffix(path, "/submit"):
		s.importHandler.SubmitBatch(w, r)
	default:
		http.NotFound(w, r)
	}
}
