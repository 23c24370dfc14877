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

package opbank

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niemenmaa/ynab-importer/internal/system/log"
	txnmodel "github.com/niemenmaa/ynab-importer/internal/transactions/model"
)

func TestMain(m *testing.M) {
	_ = log.Init("ERROR")
	os.Exit(m.Run())
}

const opHeader = "Kirjauspäivä;Arvopäivä;Määrä;Laji;Selitys;Saaja/Maksaja;Saajan tilinumero;Viite;Viesti;Arkistointitunnus"

func TestParse_TypicalExport(t *testing.T) {
	content := strings.Join([]string{
		opHeader,
		"03.03.2025;03.03.2025;-23,40;KORTTIOSTO;KORTTIOSTO;PRISMA SELLO;;;;"+
			"20250303001",
		"05.03.2025;05.03.2025;1 250,00;PALKKA;PALKKA;ACME OY;;;Maaliskuun palkka;20250305001",
	}, "\n")

	transactions, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	first := transactions[0]
	assert.Equal(t, "2025-03-03", first.Date)
	assert.Equal(t, "PRISMA SELLO", first.Payee)
	assert.Equal(t, int64(-23400), first.Amount)
	assert.Equal(t, "KORTTIOSTO", first.Memo)
	assert.Equal(t, txnmodel.StatusParsed, first.Status)

	second := transactions[1]
	assert.Equal(t, "2025-03-05", second.Date)
	assert.Equal(t, "ACME OY", second.Payee)
	assert.Equal(t, int64(1250000), second.Amount)
	assert.Equal(t, "PALKKA | Maaliskuun palkka", second.Memo)
}

func TestParse_CommaDelimitedFallback(t *testing.T) {
	content := strings.Join([]string{
		"Kirjauspäivä,Arvopäivä,Määrä,Laji,Selitys,Saaja/Maksaja,Saajan tilinumero,Viite,Viesti,Arkistointitunnus",
		"01.02.2025,01.02.2025,\"-9,90\",KORTTIOSTO,KORTTIOSTO,SPOTIFY,,,,",
	}, "\n")

	transactions, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, int64(-9900), transactions[0].Amount)
}

func TestParse_ThousandSeparators(t *testing.T) {
	content := strings.Join([]string{
		opHeader,
		"10.01.2025;10.01.2025;-1.234,56;TILISIIRTO;VUOKRA;LANDLORD OY;;;;",
	}, "\n")

	transactions, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, int64(-1234560), transactions[0].Amount)
}

func TestParse_FallsBackToExplanationPayee(t *testing.T) {
	content := strings.Join([]string{
		opHeader,
		"10.01.2025;10.01.2025;-5,00;NOSTO;AUTOMAATTINOSTO;;;;;",
	}, "\n")

	transactions, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "AUTOMAATTINOSTO", transactions[0].Payee)
}

func TestParse_SkipsBadRowsAndKeepsRest(t *testing.T) {
	content := strings.Join([]string{
		opHeader,
		"not-a-date;;garbage;;;;;;;",
		"03.03.2025;03.03.2025;-23,40;KORTTIOSTO;KORTTIOSTO;PRISMA SELLO;;;;",
		";;-1,00;;;;;;;",
	}, "\n")

	transactions, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "PRISMA SELLO", transactions[0].Payee)
}

func TestParse_ISODatesPassThrough(t *testing.T) {
	content := strings.Join([]string{
		opHeader,
		"2025-03-03;2025-03-03;-23,40;KORTTIOSTO;KORTTIOSTO;PRISMA SELLO;;;;",
	}, "\n")

	transactions, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "2025-03-03", transactions[0].Date)
}

func TestParse_EmptyBodyYieldsNoTransactions(t *testing.T) {
	transactions, err := Parse(strings.NewReader(opHeader))
	require.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestParse_AmountNeverLosesCents(t *testing.T) {
	// 0.07 and similar cent values are exact in decimal, not in float64.
	content := strings.Join([]string{
		opHeader,
		"03.03.2025;03.03.2025;-0,07;KORTTIOSTO;KORTTIOSTO;KIOSKI;;;;",
	}, "\n")

	transactions, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, int64(-70), transactions[0].Amount)
}
