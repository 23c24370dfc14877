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

package errors

const errorPrefix = "YNI-"

var (
	// Client error codes. Rule validation failures are rejected at
	// creation time and never reach the matching loop.

	ErrRuleNameValidation = ErrorMessage{
		Code:    errorPrefix + "10001",
		Message: "Rule name is required.",
	}

	ErrRuleNoConditions = ErrorMessage{
		Code:        errorPrefix + "10002",
		Message:     "Rule has no conditions.",
		Description: "A rule without conditions would match every transaction.",
	}

	ErrRuleCategoryValidation = ErrorMessage{
		Code:    errorPrefix + "10003",
		Message: "Rule category is required.",
	}

	ErrUnknownConditionKind = ErrorMessage{
		Code:    errorPrefix + "10004",
		Message: "Unknown rule condition kind.",
	}

	ErrConditionValueValidation = ErrorMessage{
		Code:    errorPrefix + "10005",
		Message: "Rule condition value is required.",
	}

	ErrInvalidAmountRange = ErrorMessage{
		Code:        errorPrefix + "10006",
		Message:     "Invalid amount range.",
		Description: "The lower bound must not exceed the upper bound.",
	}

	ErrInvalidPayeeRegex = ErrorMessage{
		Code:    errorPrefix + "10007",
		Message: "Payee regex pattern does not compile.",
	}

	ErrRuleNotFound = ErrorMessage{
		Code:    errorPrefix + "10008",
		Message: "Rule not found.",
	}

	ErrBatchNotFound = ErrorMessage{
		Code:    errorPrefix + "10009",
		Message: "Import batch not found.",
	}

	ErrTransactionNotFound = ErrorMessage{
		Code:    errorPrefix + "10010",
		Message: "Transaction not found in batch.",
	}

	ErrSubmissionInFlight = ErrorMessage{
		Code:        errorPrefix + "10011",
		Message:     "Batch submission already in progress.",
		Description: "Concurrent submission of one batch would defeat duplicate detection.",
	}

	ErrEmptyUpload = ErrorMessage{
		Code:    errorPrefix + "10012",
		Message: "Uploaded file contains no parseable transactions.",
	}

	ErrBatchNotSubmittable = ErrorMessage{
		Code:        errorPrefix + "10013",
		Message:     "Batch has no submittable transactions.",
		Description: "Every ready transaction was skipped as a duplicate or is still pending review.",
	}

	ErrResolutionCategoryRequired = ErrorMessage{
		Code:    errorPrefix + "10014",
		Message: "Review resolution requires a category.",
	}

	ErrTransactionNotResolvable = ErrorMessage{
		Code:        errorPrefix + "10015",
		Message:     "Transaction cannot be resolved.",
		Description: "Skipped duplicates and submitted transactions are terminal.",
	}

	// Server error codes.

	ADD_RULE = ErrorMessage{
		Code:    errorPrefix + "15001",
		Message: "Error while adding categorization rule.",
	}

	FETCH_RULES = ErrorMessage{
		Code:    errorPrefix + "15002",
		Message: "Error while fetching categorization rule(s).",
	}

	UPDATE_RULE = ErrorMessage{
		Code:    errorPrefix + "15003",
		Message: "Error while updating categorization rule.",
	}

	DELETE_RULE = ErrorMessage{
		Code:    errorPrefix + "15004",
		Message: "Error while deleting categorization rule.",
	}

	CHECK_IMPORT_HISTORY = ErrorMessage{
		Code:    errorPrefix + "15005",
		Message: "Error while checking import history.",
	}

	RECORD_IMPORT_HISTORY = ErrorMessage{
		Code:    errorPrefix + "15006",
		Message: "Error while recording import history.",
	}

	SUBMIT_BATCH = ErrorMessage{
		Code:    errorPrefix + "15007",
		Message: "Error while submitting batch to YNAB.",
	}

	YNAB_REQUEST = ErrorMessage{
		Code:    errorPrefix + "15008",
		Message: "Error while calling the YNAB API.",
	}

	ANALYZE_SUGGESTIONS = ErrorMessage{
		Code:    errorPrefix + "15009",
		Message: "Error while analyzing transactions for rule suggestions.",
	}
)
