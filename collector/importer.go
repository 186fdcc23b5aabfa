package collector

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Identifier candidate field names, in priority order. Matched
// case-insensitively against each record's keys; the first non-empty
// match wins.
var identifierKeys = []string{
	"plaqueta",
	"numero_patrimonio",
	"patrimonio",
	"asset_tag",
	"assetid",
	"codigo",
	"id",
}

// ImportFile is one user-supplied file in a batch.
type ImportFile struct {
	Name string
	Data []byte
}

// FileResult is the per-file outcome. Status is "success" once parsing
// succeeded, even when zero records were accepted.
type FileResult struct {
	FileName string `json:"fileName"`
	Status   string `json:"status"`
	Message  string `json:"message"`
	Imported int    `json:"imported"`
}

// Record is one normalized field-name/value row. Keys preserves source
// order so notes read like the file did.
type Record struct {
	Keys   []string
	Fields map[string]string
}

func newRecord() Record {
	return Record{Fields: map[string]string{}}
}

func (r *Record) set(key, value string) {
	if _, exists := r.Fields[key]; !exists {
		r.Keys = append(r.Keys, key)
	}
	r.Fields[key] = value
}

// Importer feeds imported records through the same identifier-resolution
// and append path as live scanning, minus geolocation.
type Importer struct {
	queue  *Queue
	assets AssetLookup
	clock  Clock
}

func NewImporter(queue *Queue, assets AssetLookup, clock Clock) *Importer {
	if clock == nil {
		clock = SystemClock()
	}
	return &Importer{queue: queue, assets: assets, clock: clock}
}

// ImportFiles processes each file independently and in order. A parse
// failure or a processing error marks that file only.
func (im *Importer) ImportFiles(ctx context.Context, files []ImportFile, userID uint) []FileResult {
	results := make([]FileResult, 0, len(files))
	for _, file := range files {
		records, err := ParseFile(file.Name, file.Data)
		if err != nil {
			results = append(results, FileResult{
				FileName: file.Name,
				Status:   "error",
				Message:  fmt.Sprintf("Import failed: %v", err),
			})
			continue
		}

		count, err := im.processRecords(ctx, records, userID)
		if err != nil {
			results = append(results, FileResult{
				FileName: file.Name,
				Status:   "error",
				Message:  fmt.Sprintf("Import failed: %v", err),
				Imported: count,
			})
			continue
		}

		results = append(results, FileResult{
			FileName: file.Name,
			Status:   "success",
			Message:  fmt.Sprintf("%d items imported and stored locally", count),
			Imported: count,
		})
	}
	return results
}

func (im *Importer) processRecords(ctx context.Context, records []Record, userID uint) (int, error) {
	count := 0
	for _, rec := range records {
		tag, idKey := resolveIdentifier(rec)
		if tag == "" {
			// No recognizable identifier field; skipped, not an error.
			continue
		}
		if im.queue.HasPending(tag) {
			continue
		}

		asset, err := im.assets.LookupByTag(ctx, tag)
		if err != nil {
			return count, fmt.Errorf("asset lookup for %s: %w", tag, err)
		}

		status := StatusNotFound
		var assetID *uint
		if asset != nil {
			status = StatusMatched
			id := asset.ID
			assetID = &id
		}

		if _, err := im.queue.Append(Candidate{
			AssetID:              assetID,
			TagCode:              tag,
			CollectedAt:          im.clock.Now(),
			CollectorUserID:      userID,
			ReconciliationStatus: status,
			Note:                 buildNote(rec, idKey),
		}); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// resolveIdentifier returns the identifier value and the original key it
// was found under, or empty strings when the record has none.
func resolveIdentifier(rec Record) (string, string) {
	lowered := make(map[string]string, len(rec.Keys))
	for _, key := range rec.Keys {
		lower := strings.ToLower(key)
		if _, exists := lowered[lower]; !exists {
			lowered[lower] = key
		}
	}

	for _, candidate := range identifierKeys {
		if original, ok := lowered[candidate]; ok {
			if value := rec.Fields[original]; value != "" {
				return value, original
			}
		}
	}
	return "", ""
}

// buildNote concatenates every non-identifier field as "key: value".
func buildNote(rec Record, identifierKey string) string {
	parts := make([]string, 0, len(rec.Keys))
	for _, key := range rec.Keys {
		if key == identifierKey {
			continue
		}
		parts = append(parts, key+": "+rec.Fields[key])
	}
	return strings.Join(parts, ", ")
}

// ParseFile parses a file into generic records according to its
// extension. Unsupported extensions fail immediately naming the
// extension.
func ParseFile(name string, data []byte) ([]Record, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch ext {
	case "json":
		return parseJSON(data)
	case "csv":
		return parseCSV(data)
	case "xlsx", "xls":
		return parseSpreadsheet(data)
	case "xml":
		return parseXML(data)
	default:
		return nil, fmt.Errorf("unsupported file format .%s", ext)
	}
}

func parseJSON(data []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	var objects []interface{}
	switch v := raw.(type) {
	case []interface{}:
		objects = v
	default:
		objects = []interface{}{raw}
	}

	records := make([]Record, 0, len(objects))
	for _, obj := range objects {
		fields, ok := obj.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid JSON: expected an object, got %T", obj)
		}

		// JSON objects carry no order; sort keys so notes are stable.
		keys := make([]string, 0, len(fields))
		for key := range fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		rec := newRecord()
		for _, key := range keys {
			rec.set(key, stringifyJSON(fields[key]))
		}
		records = append(records, rec)
	}
	return records, nil
}

func stringifyJSON(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case json.Number:
		return value.String()
	case bool:
		return strconv.FormatBool(value)
	default:
		return fmt.Sprint(value)
	}
}

func parseCSV(data []byte) ([]Record, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	headers := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := newRecord()
		for i, header := range headers {
			value := ""
			if i < len(row) {
				value = strings.TrimSpace(row[i])
			}
			rec.set(strings.TrimSpace(header), value)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseSpreadsheet(data []byte) ([]Record, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid spreadsheet: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet contains no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	headers := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := newRecord()
		for i, header := range headers {
			value := ""
			if i < len(row) {
				value = strings.TrimSpace(row[i])
			}
			rec.set(strings.TrimSpace(header), value)
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseXML reads the document's root element and turns each child
// element into a record of its own children's tag/text pairs.
func parseXML(data []byte) ([]Record, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	// Skip to the root element.
	rootFound := false
	for !rootFound {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid XML: %w", err)
		}
		if _, ok := tok.(xml.StartElement); ok {
			rootFound = true
		}
	}

	var records []Record
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid XML: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		rec, err := decodeXMLRecord(dec, start)
		if err != nil {
			return nil, fmt.Errorf("invalid XML: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeXMLRecord(dec *xml.Decoder, start xml.StartElement) (Record, error) {
	rec := newRecord()
	for {
		tok, err := dec.Token()
		if err != nil {
			return rec, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var value string
			if err := dec.DecodeElement(&value, &t); err != nil {
				return rec, err
			}
			rec.set(t.Name.Local, strings.TrimSpace(value))
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return rec, nil
			}
		}
	}
}
