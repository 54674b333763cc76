package export

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jakechorley/timetabler/pkg/core/model"
	"github.com/jakechorley/timetabler/pkg/core/reporting"
)

func testView() *reporting.View {
	return &reporting.View{
		Cycle:   "2025-A",
		GroupBy: reporting.ByTeacher,
		Sections: []reporting.Section{
			{Key: "t1", Label: "Ana López", Hours: 2, Entries: []model.ScheduleEntry{
				{ID: "e1", Day: time.Monday, Slot: 0, Start: "07:00", End: "07:50", TeacherID: "t1", SubjectID: "s1", GroupID: "g1", RoomID: "r1", Origin: model.Generated},
				{ID: "e2", Day: time.Tuesday, Slot: 1, Start: "07:50", End: "08:40", TeacherID: "t1", SubjectID: "s1", GroupID: "g1", RoomID: "r1", Origin: model.Manual},
			}},
			{Key: "t2", Label: "B/C", Hours: 1, Entries: []model.ScheduleEntry{
				{ID: "e3", Day: time.Monday, Slot: 0, Start: "07:00", End: "07:50", TeacherID: "t2", SubjectID: "s2", GroupID: "g2", RoomID: "r2", Origin: model.Generated},
			}},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, XLSX, f)

	_, err = ParseFormat("csv")
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testView(), JSON))

	var decoded reporting.View
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "2025-A", decoded.Cycle)
	require.Len(t, decoded.Sections, 2)
	assert.Equal(t, "e2", decoded.Sections[0].Entries[1].ID)
}

func TestWriteXLSX_OneSheetPerSection(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testView(), XLSX))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Ana López", "B-C"}, f.GetSheetList())

	rows, err := f.GetRows("Ana López")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{"Monday", "07:00", "07:50", "t1", "s1", "g1", "r1", "GENERADO", "e1"}, rows[1])
	assert.Equal(t, "MANUAL", rows[2][7])
}

func TestWriteXLSX_EmptyView(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, &reporting.View{Cycle: "2025-A", GroupBy: reporting.ByRoom}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Schedule"}, f.GetSheetList())
	rows, err := f.GetRows("Schedule")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestSheetNames_UniqueAndShort(t *testing.T) {
	long := "A very long teacher name that does not fit"
	names := SheetNames([]reporting.Section{
		{Key: "t1", Label: long},
		{Key: "t2", Label: long},
		{Key: "t3", Label: "a:b"},
		{Key: "t4"},
	})

	assert.Equal(t, "A very long teacher name that d", names[0])
	assert.Equal(t, "A very long teacher name th (2)", names[1])
	assert.Equal(t, "a-b", names[2])
	assert.Equal(t, "t4", names[3])
	for _, n := range names {
		assert.LessOrEqual(t, len([]rune(n)), 31)
	}
}
