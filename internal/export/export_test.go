package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"aviancal/internal/model"
)

func sampleEntries() []model.ScheduleEntry {
	day := func(d int) time.Time { return time.Date(2025, time.July, d, 0, 0, 0, 0, time.UTC) }
	return []model.ScheduleEntry{
		{Date: day(1), DateFormatted: "01 de Julho", Location: "Torre", Schedule: "nascer até 9h", IsBold: true},
		{Date: day(2), DateFormatted: "02 de Julho", Location: "Passo", Schedule: ""},
		{Date: day(3), DateFormatted: "03 de Julho", Location: "Ramada, Eido", Schedule: "10 da noite até ás 1h30", IsBold: true},
	}
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"csv", "JSON", " xlsx ", "pdf", "ics"} {
		_, err := ParseFormat(in)
		assert.NoError(t, err, in)
	}
	_, err := ParseFormat("docx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
	assert.True(t, strings.HasPrefix(FormatICS.ContentType(), "text/calendar"))
	assert.Equal(t, "application/octet-stream", Format("zip").ContentType())
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "agua-vibora-2025.xlsx", FileName("agua-vibora", 2025, false, FormatXLSX))
	assert.Equal(t, "agua-vibora-2025-template.csv", FileName("agua-vibora", 2025, true, FormatCSV))
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "a-b-c", SafeName(" a/b:c "))
	assert.Equal(t, "Rega da Víbora", SafeName("Rega da Víbora"))
	assert.Equal(t, "agenda-personalizada", SafeName("   "))
}

func TestContentDisposition(t *testing.T) {
	got := ContentDisposition("água-2025.csv")
	assert.Contains(t, got, "filename*=UTF-8''%C3%A1gua-2025.csv")
	assert.Contains(t, got, `filename="_gua-2025.csv"`)
	assert.True(t, strings.HasPrefix(got, "attachment;"))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleEntries()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Data", "Casal", "Horário"}, rows[0])
	assert.Equal(t, []string{"03 de Julho", "Ramada, Eido", "10 da noite até ás 1h30"}, rows[3])
	assert.Equal(t, "", rows[2][2])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, Document{Name: "Água de Víbora", Year: 2025, Entries: sampleEntries()}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Água de Víbora", got["name"])
	assert.EqualValues(t, 2025, got["year"])
	assert.NotContains(t, got, "template")
	assert.Len(t, got["data"], 3)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, "Água de Víbora", 2025, sampleEntries()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(0)
	assert.Equal(t, "Água de Víbora", sheet)

	title, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Água de Víbora - Ano 2025", title)

	merged, err := f.GetMergeCells(sheet)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "A1", merged[0].GetStartAxis())
	assert.Equal(t, "C1", merged[0].GetEndAxis())

	sep, err := f.GetCellValue(sheet, "A2")
	require.NoError(t, err)
	assert.Empty(t, sep)

	loc, err := f.GetCellValue(sheet, "B5")
	require.NoError(t, err)
	assert.Equal(t, "Ramada, Eido", loc)

	width, err := f.GetColWidth(sheet, "C")
	require.NoError(t, err)
	assert.Equal(t, 40.0, width)

	boldStyle, err := f.GetCellStyle(sheet, "A3")
	require.NoError(t, err)
	plainStyle, err := f.GetCellStyle(sheet, "A4")
	require.NoError(t, err)
	assert.NotEqual(t, boldStyle, plainStyle)
	assert.NotZero(t, plainStyle)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Agenda", sheetName("[]"))
	assert.Len(t, []rune(sheetName(strings.Repeat("á", 40))), 31)
	assert.Equal(t, "ab", sheetName("a/b"))
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, "Água <Víbora>", 2025, sampleEntries()))

	out := buf.String()
	assert.Contains(t, out, `data-ready="true"`)
	assert.Contains(t, out, "Água &lt;Víbora&gt; - Ano 2025")
	assert.Equal(t, 2, strings.Count(out, `<tr class="bold">`))
	assert.Contains(t, out, "<td>Ramada, Eido</td>")
}
