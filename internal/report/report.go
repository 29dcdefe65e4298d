package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// ErrEmptyCard is returned when there is nothing to export.
var ErrEmptyCard = errors.New("failed to generate record card, no fields were provided")

const maxSheetName = 31

// Generator holds the state for the Excel workbook generation process.
type Generator struct {
	file        *excelize.File
	headerStyle int
}

// Row is one label/value pair of a record card.
type Row struct {
	Label string
	Value string
}

// Card is the exported view of one record.
type Card struct {
	Title       string    // Title becomes the sheet name
	Database    string    // Database context the record was read from
	ID          string    // ID of the record on the backend
	Status      string    // Status is the last status shown to the user
	GeneratedAt time.Time // GeneratedAt is printed in the footer
	Fields      []Row     // Fields are the record fields in display order
	Headers     [2]string // Headers overrides the "Field"/"Value" column titles
	MetaLabels  MetaLabels
}

// MetaLabels names the rows describing where the record came from.
type MetaLabels struct {
	Database  string
	ID        string
	Status    string
	Generated string
}

// NewGenerator creates a new workbook generator.
func NewGenerator() *Generator {
	return &Generator{
		file: excelize.NewFile(),
	}
}

// GenerateRecordCards renders every card on its own sheet and returns the xlsx workbook.
func GenerateRecordCards(cards ...Card) (*bytes.Buffer, error) {
	var err error

	cards = nonEmpty(cards)
	if len(cards) == 0 {
		return nil, ErrEmptyCard
	}

	gen := NewGenerator()
	defer gen.file.Close()

	if gen.headerStyle, err = gen.newHeaderStyle(); err != nil {
		return nil, err
	}

	for _, card := range cards {
		if err = gen.addCard(card); err != nil {
			return nil, fmt.Errorf("failed to add card %q: %w", card.Title, err)
		}
	}

	// setup first card as active
	gen.file.SetActiveSheet(0)

	// delete default sheet
	if sheetIndex, _ := gen.file.GetSheetIndex("Sheet1"); sheetIndex != -1 && !hasTitle(cards, "Sheet1") {
		if err = gen.file.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("failed to delete default sheet 'Sheet1': %w", err)
		}
	}

	buffer, err := gen.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook to buffer: %w", err)
	}

	return buffer, nil
}

func (g *Generator) newHeaderStyle() (int, error) {
	style, err := g.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "center", Horizontal: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create new style: %w", err)
	}
	return style, nil
}

// addCard writes the header, the field rows and the footer of one card.
func (g *Generator) addCard(card Card) error {
	var err error
	sheetName := truncateSheetName(card.Title)

	if _, err = g.file.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to generate new sheet '%s': %w", sheetName, err)
	}

	headers := []any{card.Headers[0], card.Headers[1]}
	if card.Headers[0] == "" {
		headers = []any{"Field", "Value"}
	}
	if err = g.file.SetRowHeight(sheetName, 1, 20); err != nil { //nolint:mnd // header row height
		return fmt.Errorf("failed to set row height for headers: %w", err)
	}
	if err = g.file.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return fmt.Errorf("failed to set sheet row for headers: %w", err)
	}
	if err = g.file.SetCellStyle(sheetName, "A1", "B1", g.headerStyle); err != nil {
		return fmt.Errorf("failed to set cell style for headers: %w", err)
	}
	if err = g.file.SetColWidth(sheetName, "A", "A", 22); err != nil { //nolint:mnd // label column
		return fmt.Errorf("failed to set column width: %w", err)
	}
	if err = g.file.SetColWidth(sheetName, "B", "B", 40); err != nil { //nolint:mnd // value column
		return fmt.Errorf("failed to set column width: %w", err)
	}

	rowNum := 2
	for _, row := range card.Fields {
		if err = g.addRow(sheetName, rowNum, row); err != nil {
			return fmt.Errorf("failed to add row '%d': %w", rowNum, err)
		}
		rowNum++
	}

	if err = g.file.AddTable(sheetName, &excelize.Table{
		Range:     fmt.Sprintf("A1:B%d", rowNum-1),
		Name:      tableName(sheetName),
		StyleName: "TableStyleMedium9",
	}); err != nil {
		return fmt.Errorf("failed to add table: %w", err)
	}

	// one blank row between the fields and the footer
	rowNum++
	for _, row := range card.footer() {
		if err = g.addRow(sheetName, rowNum, row); err != nil {
			return fmt.Errorf("failed to add footer row '%d': %w", rowNum, err)
		}
		rowNum++
	}

	return nil
}

func (g *Generator) addRow(sheetName string, rowNum int, row Row) error {
	rowData := []any{row.Label, row.Value}
	cell, _ := excelize.CoordinatesToCellName(1, rowNum)

	if err := g.file.SetSheetRow(sheetName, cell, &rowData); err != nil {
		return fmt.Errorf("failed to set sheet row: %w", err)
	}

	return nil
}

func (c Card) footer() []Row {
	labels := c.MetaLabels
	if labels == (MetaLabels{}) {
		labels = MetaLabels{Database: "Database", ID: "ID", Status: "Status", Generated: "Generated at"}
	}

	generated := c.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	rows := []Row{{Label: labels.Database, Value: c.Database}}
	if c.ID != "" {
		rows = append(rows, Row{Label: labels.ID, Value: c.ID})
	}
	if c.Status != "" {
		rows = append(rows, Row{Label: labels.Status, Value: c.Status})
	}
	return append(rows, Row{Label: labels.Generated, Value: generated.Format("02.01.2006 15:04")})
}

func nonEmpty(cards []Card) []Card {
	result := make([]Card, 0, len(cards))
	for _, card := range cards {
		if len(card.Fields) > 0 {
			result = append(result, card)
		}
	}
	return result
}

func hasTitle(cards []Card, title string) bool {
	for _, card := range cards {
		if truncateSheetName(card.Title) == title {
			return true
		}
	}
	return false
}

// tableName builds an excel table name, which may only hold letters, digits and underscores.
func tableName(sheetName string) string {
	var b strings.Builder
	b.WriteString("table_")
	for _, r := range sheetName {
		if r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// truncateSheetName truncates the given sheet name to a maximum of 31 runes.
func truncateSheetName(name string) string {
	if utf8.RuneCountInString(name) > maxSheetName {
		runes := []rune(name)
		return string(runes[:maxSheetName])
	}
	return name
}
