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

// Package opbank parses CSV exports from OP (Osuuspankki) online banking.
// The files use the Finnish locale: semicolon separators, DD.MM.YYYY
// dates and a comma as the decimal separator.
package opbank

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/niemenmaa/ynab-importer/internal/system/constants"
	"github.com/niemenmaa/ynab-importer/internal/system/log"
	txnmodel "github.com/niemenmaa/ynab-importer/internal/transactions/model"
)

// columnMappings normalizes the Finnish header names OP exports.
var columnMappings = map[string]string{
	"kirjauspäivä":      "booking_date",
	"arvopäivä":         "value_date",
	"määrä":             "amount",
	"laji":              "type",
	"selitys":           "explanation",
	"saaja/maksaja":     "payee",
	"saajan tilinumero": "payee_account",
	"viite":             "reference",
	"viesti":            "message",
	"arkistointitunnus": "archive_id",
}

var finnishDatePattern = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})`)

// Parse reads an OP bank CSV export into normalized transactions.
// Amounts become signed milliunits through exact decimal arithmetic.
// Unparseable rows are logged and skipped so one bad line does not lose
// the rest of the export.
func Parse(r io.Reader) ([]txnmodel.TransactionRecord, error) {
	logger := log.GetLogger()

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read csv content")
	}

	reader := csv.NewReader(strings.NewReader(string(content)))
	reader.Comma = detectDelimiter(string(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read csv header")
	}
	columns := make([]string, len(header))
	for i, col := range header {
		columns[i] = normalizeColumn(col)
	}

	var transactions []txnmodel.TransactionRecord
	for lineNo := 2; ; lineNo++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn(fmt.Sprintf("Skipping malformed csv line %d.", lineNo), log.Error(err))
			continue
		}

		row := make(map[string]string, len(columns))
		for i, value := range record {
			if i < len(columns) {
				row[columns[i]] = strings.TrimSpace(value)
			}
		}

		txn, ok := parseRow(row)
		if !ok {
			logger.Warn(fmt.Sprintf("Skipping unparseable transaction on line %d.", lineNo))
			continue
		}
		transactions = append(transactions, txn)
	}
	return transactions, nil
}

// detectDelimiter counts candidates in the header line. OP uses
// semicolons, but re-exported files sometimes arrive comma separated.
func detectDelimiter(content string) rune {
	firstLine := content
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		firstLine = content[:idx]
	}
	if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		return ';'
	}
	return ','
}

func normalizeColumn(column string) string {
	normalized := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(column, "\ufeff")))
	if mapped, ok := columnMappings[normalized]; ok {
		return mapped
	}
	return normalized
}

func parseRow(row map[string]string) (txnmodel.TransactionRecord, bool) {
	dateStr := row["booking_date"]
	if dateStr == "" {
		dateStr = row["value_date"]
	}
	date, ok := parseFinnishDate(dateStr)
	if !ok {
		return txnmodel.TransactionRecord{}, false
	}

	amount, ok := parseFinnishAmount(row["amount"])
	if !ok {
		return txnmodel.TransactionRecord{}, false
	}

	payee := row["payee"]
	if payee == "" {
		payee = row["explanation"]
	}
	if payee == "" {
		payee = "Unknown"
	}

	var memoParts []string
	if row["explanation"] != "" {
		memoParts = append(memoParts, row["explanation"])
	}
	if row["message"] != "" {
		memoParts = append(memoParts, row["message"])
	}

	return txnmodel.TransactionRecord{
		Date:   date,
		Payee:  payee,
		Memo:   strings.Join(memoParts, " | "),
		Amount: amount,
		Status: txnmodel.StatusParsed,
	}, true
}

// parseFinnishDate converts DD.MM.YYYY to ISO. Already-ISO dates pass
// through unchanged.
func parseFinnishDate(dateStr string) (string, bool) {
	dateStr = strings.TrimSpace(dateStr)

	if m := finnishDatePattern.FindStringSubmatch(dateStr); m != nil {
		parsed, err := time.Parse("2.1.2006", fmt.Sprintf("%s.%s.%s", m[1], m[2], m[3]))
		if err != nil {
			return "", false
		}
		return parsed.Format(constants.DateLayout), true
	}

	if _, err := time.Parse(constants.DateLayout, dateStr); err == nil {
		return dateStr, true
	}
	return "", false
}

// parseFinnishAmount converts "1.234,56" style strings to milliunits.
// The comma is the decimal separator; periods and spaces are thousand
// separators. Decimal arithmetic keeps cents exact.
func parseFinnishAmount(amountStr string) (int64, bool) {
	amountStr = strings.TrimSpace(amountStr)
	if amountStr == "" {
		return 0, false
	}

	amountStr = strings.ReplaceAll(amountStr, " ", "")
	amountStr = strings.ReplaceAll(amountStr, "\u00a0", "")
	if strings.Contains(amountStr, ",") && strings.Contains(amountStr, ".") {
		amountStr = strings.ReplaceAll(amountStr, ".", "")
	}
	amountStr = strings.ReplaceAll(amountStr, ",", ".")

	value, err := decimal.NewFromString(amountStr)
	if err != nil {
		return 0, false
	}
	return value.Mul(decimal.NewFromInt(1000)).IntPart(), true
}
