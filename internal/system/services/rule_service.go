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

	"github.com/niemenmaa/ynab-importer/internal/rules/handler"
)

type RuleService struct {
	ruleHandler *handler.RuleHandler
}

func NewRuleService(mux *http.ServeMux, apiBasePath string) *RuleService {

	instance := &RuleService{
		ruleHandler: handler.NewRuleHandler(),
	}
	instance.RegisterRoutes(mux, apiBasePath)

	return instance
}

func (s *RuleService) RegisterRoutes(mux *http.ServeMux, apiBasePath string) {

	mux.HandleFunc(fmt.Sprintf("POST %s/rules", apiBasePath), s.ruleHandler.CreateRule)
	mux.HandleFunc(fmt.Sprintf("GET %s/rules", apiBasePath), s.ruleHandler.GetRules)
	mux.HandleFunc(fmt.Sprintf("GET %s/rules/", apiBasePath), s.ruleHandler.GetRule)
	mux.HandleFunc(fmt.Sprintf("PUT %s/rules/", apiBasePath), s.ruleHandler.UpdateRule)
	mux.HandleFunc(fmt.Sprintf("DELETE %s/rules/", apiBasePath), s.ruleHandler.DeleteRule)
}
