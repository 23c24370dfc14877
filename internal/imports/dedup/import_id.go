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

package dedup

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/niemenmaa/ynab-importer/internal/transactions/model"
)

// ComputeImportID derives the deduplication key for a transaction. It is
// a pure function of (date, amount, payee, account_ref): memo and
// category are deliberately excluded because the same real-world
// transaction may have those corrected between runs. No salt, no clock;
// identical inputs yield the identical key on every run and process, which
// is what lets YNAB and the local history suppress re-imports.
//
// Known limitation: two genuinely distinct transactions sharing all four
// fields (two identical coffee purchases on one day) collide, and the
// service resolves at most one of them.
func ComputeImportID(txn model.TransactionRecord) string {
	uniqueStr := fmt.Sprintf("%s:%d:%s:%s", txn.Date, txn.Amount, txn.Payee, txn.AccountRef)
	sum := md5.Sum([]byte(uniqueStr))
	hashSuffix := hex.EncodeToString(sum[:])[:8]
	return fmt.Sprintf("YNAB:%d:%s:%s", txn.Amount, txn.Date, hashSuffix)
}
