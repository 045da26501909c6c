package model

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
)

// ParseRequirement decodes a requirement document. A document that is not a
// JSON object is an upstream contract violation and is rejected.
func ParseRequirement(data []byte) (*Requirement, error) {
	if !firstByteIs(data, '{') {
		return nil, eris.New("model: requirement document is not a JSON object")
	}
	var req Requirement
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, eris.Wrap(err, "model: decode requirement")
	}
	return &req, nil
}

// ParseCompanies decodes an enriched company list. A document that is not a
// JSON array is an upstream contract violation and is rejected.
func ParseCompanies(data []byte) ([]CompanyRecord, error) {
	if !firstByteIs(data, '[') {
		return nil, eris.New("model: company document is not a JSON array")
	}
	var companies []CompanyRecord
	if err := json.Unmarshal(data, &companies); err != nil {
		return nil, eris.Wrap(err, "model: decode companies")
	}
	return companies, nil
}

// LoadRequirement reads and decodes a requirement JSON file.
func LoadRequirement(path string) (*Requirement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "model: read requirement file %s", path)
	}
	return ParseRequirement(data)
}

// LoadCompanies reads and decodes an enriched company JSON file.
func LoadCompanies(path string) ([]CompanyRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "model: read company file %s", path)
	}
	return ParseCompanies(data)
}

func firstByteIs(data []byte, b byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == b
}
