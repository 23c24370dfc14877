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

// Package ynab is a thin client for the YNAB v1 REST API, scoped to one
// budget. Amounts cross this boundary as int64 milliunits only.
package ynab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/niemenmaa/ynab-importer/internal/system/config"
	"github.com/niemenmaa/ynab-importer/internal/system/constants"
	"github.com/niemenmaa/ynab-importer/internal/system/log"
	txnmodel "github.com/niemenmaa/ynab-importer/internal/transactions/model"
)

// Category groups YNAB manages internally; their categories are not
// assignable targets for imported transactions.
var internalCategoryGroups = map[string]bool{
	"Internal Master Category": true,
	"Credit Card Payments":     true,
}

// APIError is a non-2xx response from YNAB. Auth failures and transient
// failures need distinguishing upstream: the importer retries the latter
// and never the former.
type APIError struct {
	StatusCode int
	Name       string
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ynab api error: status=%d name=%s detail=%s", e.StatusCode, e.Name, e.Detail)
}

// IsAuthFailure reports whether the error is a rejected or insufficient
// token. Retrying these is pointless.
func (e *APIError) IsAuthFailure() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsTransient reports whether a retry could plausibly succeed.
func (e *APIError) IsTransient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsRetryable reports whether err is worth retrying: transport-level
// failures are, YNAB responses only when transient.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsTransient()
	}
	// No HTTP status at all means the request never completed.
	return true
}

// ClientInterface is the YNAB surface the importer depends on.
type ClientInterface interface {
	GetAccounts(ctx context.Context) ([]Account, error)
	GetCategories(ctx context.Context) ([]Category, error)
	GetPayees(ctx context.Context) ([]Payee, error)
	GetTransactions(ctx context.Context, sinceDate, accountID string) ([]Transaction, error)
	CreateTransactions(ctx context.Context, accountID string, txns []txnmodel.TransactionRecord) (*CreateResult, error)
}

// Client talks to one YNAB budget with a bearer token.
type Client struct {
	baseURL    string
	apiToken   string
	budgetID   string
	httpClient *http.Client
}

// NewClient creates a client from the YNAB config section.
func NewClient(cfg config.YNABConfig) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiToken: cfg.APIToken,
		budgetID: cfg.BudgetID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetAccounts returns the budget's open accounts.
func (c *Client) GetAccounts(ctx context.Context) ([]Account, error) {
	var payload accountsResponse
	path := fmt.Sprintf("/budgets/%s/accounts", c.budgetID)
	if err := c.doGet(ctx, path, &payload); err != nil {
		return nil, err
	}

	accounts := make([]Account, 0, len(payload.Data.Accounts))
	for _, account := range payload.Data.Accounts {
		if account.Closed || account.Deleted {
			continue
		}
		accounts = append(accounts, Account{ID: account.ID, Name: account.Name})
	}
	return accounts, nil
}

// GetCategories returns assignable categories flattened across groups.
// Hidden and deleted entries and YNAB's internal groups are dropped.
func (c *Client) GetCategories(ctx context.Context) ([]Category, error) {
	var payload categoriesResponse
	path := fmt.Sprintf("/budgets/%s/categories", c.budgetID)
	if err := c.doGet(ctx, path, &payload); err != nil {
		return nil, err
	}

	var categories []Category
	for _, group := range payload.Data.CategoryGroups {
		if group.Hidden || group.Deleted || internalCategoryGroups[group.Name] {
			continue
		}
		for _, category := range group.Categories {
			if category.Hidden || category.Deleted {
				continue
			}
			categories = append(categories, Category{
				ID:          category.ID,
				Name:        category.Name,
				GroupName:   group.Name,
				DisplayName: fmt.Sprintf("%s: %s", group.Name, category.Name),
				Budgeted:    category.Budgeted,
				Activity:    category.Activity,
				Balance:     category.Balance,
			})
		}
	}
	return categories, nil
}

// GetPayees returns the budget's payees.
func (c *Client) GetPayees(ctx context.Context) ([]Payee, error) {
	var payload payeesResponse
	path := fmt.Sprintf("/budgets/%s/payees", c.budgetID)
	if err := c.doGet(ctx, path, &payload); err != nil {
		return nil, err
	}

	payees := make([]Payee, 0, len(payload.Data.Payees))
	for _, payee := range payload.Data.Payees {
		if payee.Deleted {
			continue
		}
		payees = append(payees, Payee{ID: payee.ID, Name: payee.Name})
	}
	return payees, nil
}

// GetTransactions returns transactions on or after sinceDate (ISO date,
// optional), optionally narrowed to one account.
func (c *Client) GetTransactions(ctx context.Context, sinceDate, accountID string) ([]Transaction, error) {
	path := fmt.Sprintf("/budgets/%s/transactions", c.budgetID)
	if accountID != "" {
		path = fmt.Sprintf("/budgets/%s/accounts/%s/transactions", c.budgetID, accountID)
	}
	if sinceDate != "" {
		path = fmt.Sprintf("%s?since_date=%s", path, sinceDate)
	}

	var payload transactionsResponse
	if err := c.doGet(ctx, path, &payload); err != nil {
		return nil, err
	}

	transactions := make([]Transaction, 0, len(payload.Data.Transactions))
	for _, txn := range payload.Data.Transactions {
		if txn.Deleted {
			continue
		}
		transactions = append(transactions, Transaction{
			ID:           txn.ID,
			Date:         txn.Date,
			Amount:       txn.Amount,
			PayeeID:      txn.PayeeID,
			PayeeName:    txn.PayeeName,
			CategoryID:   txn.CategoryID,
			CategoryName: txn.CategoryName,
			Memo:         txn.Memo,
			AccountID:    txn.AccountID,
			AccountName:  txn.AccountName,
			Approved:     txn.Approved,
		})
	}
	return transactions, nil
}

// CreateTransactions submits a batch of transactions with import ids and
// returns which were created and which YNAB already knew.
func (c *Client) CreateTransactions(ctx context.Context, accountID string,
	txns []txnmodel.TransactionRecord) (*CreateResult, error) {
	request := createTransactionsRequest{
		Transactions: make([]createTransaction, 0, len(txns)),
	}
	for _, txn := range txns {
		request.Transactions = append(request.Transactions, createTransaction{
			AccountID:  accountID,
			Date:       txn.Date,
			Amount:     txn.Amount,
			PayeeName:  txn.Payee,
			CategoryID: txn.CategoryID,
			Memo:       truncateMemo(txn.Memo),
			Cleared:    "cleared",
			Approved:   true,
			ImportID:   txn.ImportID,
		})
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal transaction creation request")
	}

	path := fmt.Sprintf("/budgets/%s/transactions", c.budgetID)
	respBody, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var payload createTransactionsResponse
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, errors.Wrap(err, "failed to decode transaction creation response")
	}

	log.GetLogger().Info(fmt.Sprintf("YNAB accepted %d transaction(s), reported %d duplicate import id(s).",
		len(payload.Data.TransactionIDs), len(payload.Data.DuplicateImportIDs)))
	return &CreateResult{
		CreatedIDs:         payload.Data.TransactionIDs,
		DuplicateImportIDs: payload.Data.DuplicateImportIDs,
	}, nil
}

func (c *Client) doGet(ctx context.Context, path string, out interface{}) error {
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "failed to decode response for %s", path)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build %s request for %s", method, path)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "request to %s failed", path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read response from %s", path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload errorResponse
		if err := json.Unmarshal(respBody, &payload); err == nil {
			apiErr.Name = payload.Error.Name
			apiErr.Detail = payload.Error.Detail
		}
		return nil, apiErr
	}
	return respBody, nil
}

// truncateMemo caps the memo at YNAB's limit, omitting empty memos.
func truncateMemo(memo string) *string {
	if memo == "" {
		return nil
	}
	if len(memo) > constants.MemoMaxLength {
		memo = memo[:constants.MemoMaxLength]
	}
	return &memo
}
