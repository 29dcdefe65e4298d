package report_test

import (
	"testing"
	"time"

	"github.com/UnknownOlympus/nomina/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func employeeCard() report.Card {
	return report.Card{
		Title:       "Employee",
		Database:    "DEPOFORT",
		ID:          "123",
		Status:      "Active",
		GeneratedAt: time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC),
		Fields: []report.Row{
			{Label: "Code", Value: "123"},
			{Label: "Document", Value: "30111222"},
			{Label: "Last name", Value: "Perez"},
			{Label: "First name", Value: "Juan"},
		},
	}
}

func TestGenerateRecordCards(t *testing.T) {
	t.Parallel()

	t.Run("single card", func(t *testing.T) {
		t.Parallel()

		buffer, err := report.GenerateRecordCards(employeeCard())
		require.NoError(t, err)
		require.NotNil(t, buffer)

		f, err := excelize.OpenReader(buffer)
		require.NoError(t, err)
		defer f.Close()

		assert.Equal(t, []string{"Employee"}, f.GetSheetList())

		rows, err := f.GetRows("Employee")
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(rows), 10)

		assert.Equal(t, []string{"Field", "Value"}, rows[0])
		assert.Equal(t, []string{"Code", "123"}, rows[1])
		assert.Equal(t, []string{"First name", "Juan"}, rows[4])
		assert.Empty(t, rows[5])
		assert.Equal(t, []string{"Database", "DEPOFORT"}, rows[6])
		assert.Equal(t, []string{"ID", "123"}, rows[7])
		assert.Equal(t, []string{"Status", "Active"}, rows[8])
		assert.Equal(t, []string{"Generated at", "04.03.2026 10:30"}, rows[9])
	})

	t.Run("localized labels and several cards", func(t *testing.T) {
		t.Parallel()

		employee := employeeCard()
		employee.Headers = [2]string{"Campo", "Valor"}
		employee.MetaLabels = report.MetaLabels{
			Database: "Base de datos", ID: "ID", Status: "Estado", Generated: "Generado",
		}
		salesperson := report.Card{
			Title:    "Salesperson",
			Database: "DEPOUA",
			Fields:   []report.Row{{Label: "Name", Value: "Ana"}},
		}

		buffer, err := report.GenerateRecordCards(employee, salesperson)
		require.NoError(t, err)

		f, err := excelize.OpenReader(buffer)
		require.NoError(t, err)
		defer f.Close()

		assert.Equal(t, []string{"Employee", "Salesperson"}, f.GetSheetList())

		header, err := f.GetCellValue("Employee", "A1")
		require.NoError(t, err)
		assert.Equal(t, "Campo", header)

		label, err := f.GetCellValue("Employee", "A7")
		require.NoError(t, err)
		assert.Equal(t, "Base de datos", label)

		rows, err := f.GetRows("Salesperson")
		require.NoError(t, err)
		assert.Equal(t, []string{"Name", "Ana"}, rows[1])
		// no ID or status rows when they are empty
		assert.Equal(t, []string{"Database", "DEPOUA"}, rows[3])
		assert.Equal(t, "Generated at", rows[4][0])
	})

	t.Run("long titles are truncated", func(t *testing.T) {
		t.Parallel()

		card := employeeCard()
		card.Title = "An employee card with a very long descriptive title"

		buffer, err := report.GenerateRecordCards(card)
		require.NoError(t, err)

		f, err := excelize.OpenReader(buffer)
		require.NoError(t, err)
		defer f.Close()

		assert.Equal(t, []string{"An employee card with a very lo"}, f.GetSheetList())
	})

	t.Run("no fields", func(t *testing.T) {
		t.Parallel()

		buffer, err := report.GenerateRecordCards(report.Card{Title: "Employee"})

		require.ErrorIs(t, err, report.ErrEmptyCard)
		assert.Nil(t, buffer)
	})
}
