package datasetparser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/giygas/vetref/datasetparser/entities"
)

// toUTF8 returns content unchanged when it is valid UTF-8, otherwise decodes it from
// Windows-1251, the legacy encoding of the Russian exports.
func toUTF8(content []byte) ([]byte, error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	if utf8.Valid(content) {
		return content, nil
	}
	decoded, err := io.ReadAll(charmap.Windows1251.NewDecoder().Reader(bytes.NewReader(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode windows-1251 content: %w", err)
	}
	return decoded, nil
}

// decodeRecords accepts either a bare JSON array of records or an object wrapping
// them in a "drugs" array.
func decodeRecords[T any](content []byte) ([]T, error) {
	content, err := toUTF8(content)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty dataset document")
	}

	var records []T
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("failed to decode dataset array: %w", err)
		}
		return records, nil
	}

	var wrapper struct {
		Drugs []T `json:"drugs"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to decode dataset object: %w", err)
	}
	if wrapper.Drugs == nil {
		return nil, fmt.Errorf("dataset object has no drugs array")
	}
	return wrapper.Drugs, nil
}

// DecodeVetLek decodes a VetLek document and tags every record with its classification
func DecodeVetLek(content []byte) ([]entities.VetLekRecord, error) {
	records, err := decodeRecords[entities.VetLekRecord](content)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Classification = entities.Classify(&records[i])
	}
	return records, nil
}

// DecodeVidal decodes a Vidal document
func DecodeVidal(content []byte) ([]entities.VidalRecord, error) {
	return decodeRecords[entities.VidalRecord](content)
}
