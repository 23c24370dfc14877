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

package provider

import (
	"github.com/niemenmaa/ynab-importer/internal/suggestions/service"
)

// SuggestionProviderInterface defines the interface for the suggestion provider.
type SuggestionProviderInterface interface {
	GetSuggestionService() service.SuggestionServiceInterface
}

// SuggestionProvider is the default implementation of the SuggestionProviderInterface.
type SuggestionProvider struct{}

// NewSuggestionProvider creates a new instance of SuggestionProvider.
func NewSuggestionProvider() SuggestionProviderInterface {

	return &SuggestionProvider{}
}

// GetSuggestionService returns the suggestion service instance.
func (sp *SuggestionProvider) GetSuggestionService() service.SuggestionServiceInterface {

	return service.GetSuggestionService()
}
