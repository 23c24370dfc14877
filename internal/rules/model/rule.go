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

package model

// ConditionKind identifies one of the supported condition types.
type ConditionKind string

const (
	KindPayeeExact    ConditionKind = "payee_exact"
	KindPayeeContains ConditionKind = "payee_contains"
	KindPayeeRegex    ConditionKind = "payee_regex"
	KindMemoContains  ConditionKind = "memo_contains"
	KindAmountExact   ConditionKind = "amount_exact"
	KindAmountRange   ConditionKind = "amount_range"
)

// KnownConditionKinds lists every kind the engine can evaluate.
var KnownConditionKinds = map[ConditionKind]bool{
	KindPayeeExact:    true,
	KindPayeeContains: true,
	KindPayeeRegex:    true,
	KindMemoContains:  true,
	KindAmountExact:   true,
	KindAmountRange:   true,
}

// Condition is a single typed predicate over a transaction. Value carries
// the text parameter for payee/memo kinds and the regex pattern for
// payee_regex. Amount fields are signed milliunits.
type Condition struct {
	Kind      ConditionKind `json:"kind"`
	Value     string        `json:"value,omitempty"`
	Amount    int64         `json:"amount,omitempty"`
	AmountMin int64         `json:"amount_min,omitempty"`
	AmountMax int64         `json:"amount_max,omitempty"`
}

// Rule assigns a category to transactions matching all of its conditions.
// Higher priority rules are evaluated first; the first match wins.
type Rule struct {
	ID           string      `json:"rule_id,omitempty"`
	Name         string      `json:"name"`
	Conditions   []Condition `json:"conditions"`
	CategoryID   string      `json:"category_id"`
	CategoryName string      `json:"category_name"`
	Priority     int         `json:"priority"`
	Enabled      bool        `json:"enabled"`
	CreatedAt    int64       `json:"created_at,omitempty"`
	UpdatedAt    int64       `json:"updated_at,omitempty"`
}
