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

package ynab

// Account is an open YNAB account.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Category is a YNAB category flattened with its group name.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	GroupName   string `json:"group_name"`
	DisplayName string `json:"display_name"`
	Budgeted    int64  `json:"budgeted"`
	Activity    int64  `json:"activity"`
	Balance     int64  `json:"balance"`
}

// Payee is a YNAB payee.
type Payee struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Transaction is a historical YNAB transaction, as consumed by the rule
// suggestion analyzer. Amount is milliunits.
type Transaction struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	Amount       int64  `json:"amount"`
	PayeeID      string `json:"payee_id"`
	PayeeName    string `json:"payee_name"`
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	Memo         string `json:"memo"`
	AccountID    string `json:"account_id"`
	AccountName  string `json:"account_name"`
	Approved     bool   `json:"approved"`
}

// CreateResult is the YNAB response to a transaction creation call.
// DuplicateImportIDs carries the service-side duplicate suppression: ids
// YNAB had already seen. That outcome is normal, not an error.
type CreateResult struct {
	CreatedIDs         []string
	DuplicateImportIDs []string
}

// Wire shapes for the YNAB v1 API envelope.

type accountsResponse struct {
	Data struct {
		Accounts []struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Closed  bool   `json:"closed"`
			Deleted bool   `json:"deleted"`
		} `json:"accounts"`
	} `json:"data"`
}

type categoriesResponse struct {
	Data struct {
		CategoryGroups []struct {
			Name       string `json:"name"`
			Hidden     bool   `json:"hidden"`
			Deleted    bool   `json:"deleted"`
			Categories []struct {
				ID       string `json:"id"`
				Name     string `json:"name"`
				Hidden   bool   `json:"hidden"`
				Deleted  bool   `json:"deleted"`
				Budgeted int64  `json:"budgeted"`
				Activity int64  `json:"activity"`
				Balance  int64  `json:"balance"`
			} `json:"categories"`
		} `json:"category_groups"`
	} `json:"data"`
}

type payeesResponse struct {
	Data struct {
		Payees []struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Deleted bool   `json:"deleted"`
		} `json:"payees"`
	} `json:"data"`
}

type transactionsResponse struct {
	Data struct {
		Transactions []struct {
			ID           string `json:"id"`
			Date         string `json:"date"`
			Amount       int64  `json:"amount"`
			PayeeID      string `json:"payee_id"`
			PayeeName    string `json:"payee_name"`
			CategoryID   string `json:"category_id"`
			CategoryName string `json:"category_name"`
			Memo         string `json:"memo"`
			AccountID    string `json:"account_id"`
			AccountName  string `json:"account_name"`
			Approved     bool   `json:"approved"`
			Deleted      bool   `json:"deleted"`
		} `json:"transactions"`
	} `json:"data"`
}

type createTransaction struct {
	AccountID  string  `json:"account_id"`
	Date       string  `json:"date"`
	Amount     int64   `json:"amount"`
	PayeeName  string  `json:"payee_name"`
	CategoryID string  `json:"category_id,omitempty"`
	Memo       *string `json:"memo,omitempty"`
	Cleared    string  `json:"cleared"`
	Approved   bool    `json:"approved"`
	ImportID   string  `json:"import_id,omitempty"`
}

type createTransactionsRequest struct {
	Transactions []createTransaction `json:"transactions"`
}

type createTransactionsResponse struct {
	Data struct {
		TransactionIDs     []string `json:"transaction_ids"`
		DuplicateImportIDs []string `json:"duplicate_import_ids"`
	} `json:"data"`
}

type errorResponse struct {
	Error struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Detail string `json:"detail"`
	} `json:"error"`
}
