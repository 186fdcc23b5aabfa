package collector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestImporter(t *testing.T, lookup AssetLookup) (*Importer, *Queue) {
	t.Helper()
	q, _ := newTestQueue(t, &fakeInserter{})
	return NewImporter(q, lookup, fixedClock{testTime}), q
}

func TestResolveIdentifierPriority(t *testing.T) {
	tests := []struct {
		name    string
		record  Record
		wantTag string
		wantKey string
	}{
		{
			name: "plaqueta wins over codigo",
			record: record(
				"codigo", "C-1",
				"plaqueta", "PAT-1",
			),
			wantTag: "PAT-1",
			wantKey: "plaqueta",
		},
		{
			name: "case insensitive match keeps original key",
			record: record(
				"Numero_Patrimonio", "PAT-2",
			),
			wantTag: "PAT-2",
			wantKey: "Numero_Patrimonio",
		},
		{
			name: "empty value falls through to next candidate",
			record: record(
				"plaqueta", "",
				"codigo", "C-3",
			),
			wantTag: "C-3",
			wantKey: "codigo",
		},
		{
			name: "generic id is the last resort",
			record: record(
				"descricao", "Cadeira",
				"id", "77",
			),
			wantTag: "77",
			wantKey: "id",
		},
		{
			name: "no identifier fields",
			record: record(
				"descricao", "Cadeira",
				"setor", "TI",
			),
			wantTag: "",
			wantKey: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, key := resolveIdentifier(tt.record)
			assert.Equal(t, tt.wantTag, tag)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func record(pairs ...string) Record {
	rec := newRecord()
	for i := 0; i < len(pairs); i += 2 {
		rec.set(pairs[i], pairs[i+1])
	}
	return rec
}

func TestBuildNoteSkipsIdentifierField(t *testing.T) {
	rec := record(
		"plaqueta", "PAT-1",
		"descricao", "Monitor",
		"setor", "TI",
	)
	assert.Equal(t, "descricao: Monitor, setor: TI", buildNote(rec, "plaqueta"))
}

func TestParseFileUnsupportedExtension(t *testing.T) {
	_, err := ParseFile("bens.txt", []byte("whatever"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".txt")
}

func TestParseCSVWithQuotedFields(t *testing.T) {
	data := []byte("plaqueta,descricao\nPAT-1,\"Mesa, de reuniao\"\nPAT-2,\"Quadro \"\"branco\"\"\"\n")

	records, err := ParseFile("bens.csv", data)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Mesa, de reuniao", records[0].Fields["descricao"])
	assert.Equal(t, `Quadro "branco"`, records[1].Fields["descricao"])
}

func TestParseJSONSingleObjectAndTypes(t *testing.T) {
	data := []byte(`{"plaqueta": "PAT-1", "valor": 1250.5, "ativo": true, "obs": null}`)

	records, err := ParseFile("bem.json", data)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "PAT-1", records[0].Fields["plaqueta"])
	assert.Equal(t, "1250.5", records[0].Fields["valor"])
	assert.Equal(t, "true", records[0].Fields["ativo"])
	assert.Equal(t, "", records[0].Fields["obs"])
}

func TestParseXMLRecords(t *testing.T) {
	data := []byte(`<?xml version="1.0"?>
<bens>
  <bem><plaqueta>PAT-1</plaqueta><descricao>Impressora</descricao></bem>
  <bem><plaqueta>PAT-2</plaqueta><descricao>Scanner</descricao></bem>
</bens>`)

	records, err := ParseFile("bens.xml", data)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "PAT-1", records[0].Fields["plaqueta"])
	assert.Equal(t, "Impressora", records[0].Fields["descricao"])
	assert.Equal(t, "Scanner", records[1].Fields["descricao"])
}

func TestImportMixedFormatBatch(t *testing.T) {
	lookup := &fakeLookup{assets: map[string]uint{"PAT-100001": 1}}
	im, q := newTestImporter(t, lookup)

	jsonFile := ImportFile{
		Name: "bens.json",
		Data: []byte(`[
			{"plaqueta": "PAT-100001", "descricao": "Notebook"},
			{"numero_patrimonio": "PAT-100002", "descricao": "Monitor"},
			{"descricao": "sem identificador"}
		]`),
	}
	badCSV := ImportFile{
		Name: "bens.csv",
		Data: []byte("plaqueta,descricao\nPAT-3,\"unterminated\n"),
	}

	results := im.ImportFiles(context.Background(), []ImportFile{jsonFile, badCSV}, 7)
	require.Len(t, results, 2)

	assert.Equal(t, "success", results[0].Status)
	assert.Equal(t, 2, results[0].Imported)
	assert.Equal(t, "error", results[1].Status)
	assert.Equal(t, "bens.csv", results[1].FileName)

	// Exactly the two identified records became pending items.
	assert.Equal(t, 2, q.PendingCount())
	items := q.List()
	require.Len(t, items, 2)
	assert.Equal(t, StatusMatched, items[0].ReconciliationStatus)
	assert.Equal(t, "descricao: Notebook", items[0].Note)
	assert.Equal(t, StatusNotFound, items[1].ReconciliationStatus)

	// Imported items carry no coordinates.
	assert.Nil(t, items[0].Latitude)
	assert.Nil(t, items[0].Longitude)
}

func TestImportSkipsAlreadyPendingTag(t *testing.T) {
	im, q := newTestImporter(t, &fakeLookup{})

	_, err := q.Append(testCandidate("PAT-100001"))
	require.NoError(t, err)

	file := ImportFile{
		Name: "bens.json",
		Data: []byte(`[{"plaqueta": "PAT-100001", "descricao": "duplicado"}]`),
	}
	results := im.ImportFiles(context.Background(), []ImportFile{file}, 7)

	// Parsing succeeded, so the file is a success even with zero accepted.
	require.Len(t, results, 1)
	assert.Equal(t, "success", results[0].Status)
	assert.Equal(t, 0, results[0].Imported)
	assert.Equal(t, 1, q.PendingCount())
}

func TestImportOneFileFailureDoesNotHaltBatch(t *testing.T) {
	im, q := newTestImporter(t, &fakeLookup{})

	files := []ImportFile{
		{Name: "a.xyz", Data: []byte("noise")},
		{Name: "b.json", Data: []byte(`[{"plaqueta": "PAT-200001"}]`)},
	}
	results := im.ImportFiles(context.Background(), files, 7)

	require.Len(t, results, 2)
	assert.Equal(t, "error", results[0].Status)
	assert.Equal(t, "success", results[1].Status)
	assert.Equal(t, 1, q.PendingCount())
}
