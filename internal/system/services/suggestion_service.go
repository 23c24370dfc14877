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

	"github.com/niemenmaa/ynab-importer/internal/suggestions/handler"
)

type SuggestionService struct {
	suggestionHandler *handler.SuggestionHandler
}

func NewSuggestionService(mux *http.ServeMux, apiBasePath string) *SuggestionService {

	instance := &SuggestionService{
		suggestionHandler: handler.NewSuggestionHandler(),
	}
	instance.RegisterRoutes(mux, apiBasePath)

	return instance
}

func (s *SuggestionService) RegisterRoutes(mux *http.ServeMux, apiBasePath string) {

	mux.HandleFunc(fmt.Sprintf("GET %s/suggestions/analyze", apiBasePath), s.suggestionHandler.Analyze)
	mux.HandleFunc(fmt.Sprintf("POST %s/suggestions/rules", apiBasePath), s.suggestionHandler.CreateRules)
}
