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

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	errors2 "github.com/niemenmaa/ynab-importer/internal/system/errors"
	"github.com/niemenmaa/ynab-importer/internal/system/log"
)

// ImportHistoryRepository records import ids that were already accepted by
// YNAB, so repeated uploads of the same export skip them without a network
// call.
type ImportHistoryRepository struct {
	db *sql.DB
}

// NewImportHistoryRepository creates a repository over the given connection.
func NewImportHistoryRepository(db *sql.DB) *ImportHistoryRepository {
	return &ImportHistoryRepository{db: db}
}

// KnownImportIDs returns the subset of the given import ids that were
// already submitted.
func (r *ImportHistoryRepository) KnownImportIDs(importIDs []string) (map[string]bool, error) {
	known := make(map[string]bool, len(importIDs))
	if len(importIDs) == 0 {
		return known, nil
	}

	rows, err := r.db.Query(`SELECT import_id FROM imported_transactions WHERE import_id = ANY($1)`,
		pq.Array(importIDs))
	if err != nil {
		return nil, r.serverError(errors2.CHECK_IMPORT_HISTORY, "Failed on querying import history", err)
	}
	defer rows.Close()

	for rows.Next() {
		var importID string
		if err := rows.Scan(&importID); err != nil {
			return nil, r.serverError(errors2.CHECK_IMPORT_HISTORY, "Failed on scanning import history row", err)
		}
		known[importID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, r.serverError(errors2.CHECK_IMPORT_HISTORY, "Failed on iterating import history rows", err)
	}
	return known, nil
}

// RecordImported marks import ids as submitted. Re-recording a known id is
// a no-op so a retried submission does not fail on the history write.
func (r *ImportHistoryRepository) RecordImported(importIDs []string, accountRef string) error {
	if len(importIDs) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return r.serverError(errors2.RECORD_IMPORT_HISTORY, "Failed to begin transaction for import history", err)
	}

	submittedAt := time.Now().UTC().Unix()
	for _, importID := range importIDs {
		_, err := tx.Exec(`INSERT INTO imported_transactions (import_id, account_ref, submitted_at)
			VALUES ($1,$2,$3) ON CONFLICT (import_id) DO NOTHING`,
			importID, accountRef, submittedAt)
		if err != nil {
			_ = tx.Rollback()
			return r.serverError(errors2.RECORD_IMPORT_HISTORY,
				fmt.Sprintf("Failed on recording import id: %s", importID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return r.serverError(errors2.RECORD_IMPORT_HISTORY, "Failed on committing import history", err)
	}
	log.GetLogger().Info(fmt.Sprintf("Recorded %d import id(s) in history.", len(importIDs)))
	return nil
}

func (r *ImportHistoryRepository) serverError(msg errors2.ErrorMessage, errorMsg string, err error) error {
	log.GetLogger().Debug(errorMsg, log.Error(err))
	return errors2.NewServerError(errors2.ErrorMessage{
		Code:        msg.Code,
		Message:     msg.Message,
		Description: errorMsg,
	}, err)
}
