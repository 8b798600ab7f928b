package contacts

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// CSVTemplate is the downloadable import template. The first column is
// required; every other header becomes a dynamic variable key.
const CSVTemplate = "phone_number,first_name,last_name\n+14155552671,Jane,Doe\n"

// ImportResult reports per-row outcomes of a bulk import.
type ImportResult struct {
	Accepted   int `json:"accepted"`
	Duplicates int `json:"duplicates"`
	Invalid    int `json:"invalid"`
}

var ErrMissingPhoneColumn = errors.New("contacts: csv missing phone_number column")

// ImportCSV bulk-creates contacts for a campaign from a CSV stream.
// Rows with an unparseable phone count as invalid; rows whose phone already
// exists on the campaign count as duplicates; neither aborts the import.
func (s *Service) ImportCSV(ctx context.Context, campaignID string, r io.Reader) (ImportResult, error) {
	if campaignID == "" {
		return ImportResult{}, ErrInvalidArgument
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows are handled per-row below

	header, err := cr.Read()
	if err != nil {
		return ImportResult{}, ErrMissingPhoneColumn
	}
	phoneIdx := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), "phone_number") {
			phoneIdx = i
			break
		}
	}
	if phoneIdx < 0 {
		return ImportResult{}, ErrMissingPhoneColumn
	}

	var res ImportResult
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.Invalid++
			continue
		}
		if phoneIdx >= len(row) {
			res.Invalid++
			continue
		}

		vars := map[string]string{}
		for i, h := range header {
			if i == phoneIdx || i >= len(row) {
				continue
			}
			key := strings.TrimSpace(h)
			if key == "" {
				continue
			}
			vars[key] = strings.TrimSpace(row[i])
		}

		_, err = s.Create(ctx, campaignID, CreateRequest{
			Phone:            row[phoneIdx],
			DynamicVariables: vars,
		})
		switch {
		case err == nil:
			res.Accepted++
		case errors.Is(err, ErrDuplicatePhone):
			res.Duplicates++
		case errors.Is(err, ErrInvalidArgument):
			res.Invalid++
		default:
			return res, err
		}
	}
	return res, nil
}
