package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// RuleSummary reports the outcome of one rule file upload.
type RuleSummary struct {
	FileName    string `json:"file_name"`
	UploadedBy  string `json:"uploaded_by"`
	UploadID    int64  `json:"upload_id"`
	BatchRef    string `json:"batch_ref"`
	TotalRows   int    `json:"total_rows"`
	ValidRows   int    `json:"valid_rows"`
	InvalidRows int    `json:"invalid_rows"`
}

type ruleRow struct {
	Role            string `json:"Role"`
	VehicleType     string `json:"Vehicle_Type"`
	MinUnits        string `json:"Min_Units"`
	MaxUnits        string `json:"Max_Units"`
	IncentiveAmount string `json:"Incentive_Amount"`
	BonusPerUnit    string `json:"Bonus_Per_Unit"`
	ValidFrom       string `json:"Valid_From"`
	ValidTo         string `json:"Valid_To"`
}

// IngestRules parses a structured rule CSV. Every upload is versioned: a
// rule_uploads row is registered first and all rules from the file carry
// its upload ID, so a rule set can be traced back to the file it came from.
func (s *Service) IngestRules(ctx context.Context, r io.Reader, fileName, uploadedBy string) (*RuleSummary, error) {
	reader := newHeaderReader(r)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	summary := &RuleSummary{
		FileName:   fileName,
		UploadedBy: uploadedBy,
		BatchRef:   uuid.NewString(),
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO rule_uploads (file_name, uploaded_by, batch_ref)
		VALUES ($1, $2, $3)
		RETURNING id`,
		fileName, uploadedBy, summary.BatchRef,
	).Scan(&summary.UploadID)
	if err != nil {
		return nil, fmt.Errorf("failed to register rule upload %s: %w", fileName, err)
	}

	rowNumber := 0
	for {
		record, err := reader.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read rule CSV %s: %w", fileName, err)
		}
		rowNumber++
		summary.TotalRows++

		row := ruleRow{
			Role:            strings.TrimSpace(record["Role"]),
			VehicleType:     strings.TrimSpace(record["Vehicle_Type"]),
			MinUnits:        strings.TrimSpace(record["Min_Units"]),
			MaxUnits:        strings.TrimSpace(record["Max_Units"]),
			IncentiveAmount: strings.TrimSpace(record["Incentive_Amount"]),
			BonusPerUnit:    strings.TrimSpace(record["Bonus_Per_Unit"]),
			ValidFrom:       strings.TrimSpace(record["Valid_From"]),
			ValidTo:         strings.TrimSpace(record["Valid_To"]),
		}

		reason := validateRuleRow(row)
		if reason != "" {
			summary.InvalidRows++
			if err := recordRuleError(ctx, tx, summary.UploadID, rowNumber, reason, row); err != nil {
				return nil, err
			}
			continue
		}

		minUnits, _ := strconv.Atoi(row.MinUnits)
		var maxUnits *int
		if row.MaxUnits != "" {
			m, _ := strconv.Atoi(row.MaxUnits)
			maxUnits = &m
		}
		base, _ := decimal.NewFromString(row.IncentiveAmount)
		perUnit, _ := decimal.NewFromString(row.BonusPerUnit)
		validFrom, _ := parseDate(row.ValidFrom)
		validTo, _ := parseDate(row.ValidTo)

		_, err = tx.Exec(ctx, `
			INSERT INTO incentive_rules
				(rule_type, role, vehicle_type, min_units, max_units,
				 incentive_amount, bonus_per_unit, valid_from, valid_to, upload_id)
			VALUES ('Structured', $1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			row.Role, row.VehicleType, minUnits, maxUnits,
			base, perUnit, validFrom, validTo, summary.UploadID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert incentive rule (row %d): %w", rowNumber, err)
		}
		summary.ValidRows++
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit rule upload %s: %w", fileName, err)
	}
	return summary, nil
}

// validateRuleRow returns a rejection reason, or "" when the row is valid.
func validateRuleRow(row ruleRow) string {
	if row.Role == "" || row.VehicleType == "" || row.MinUnits == "" ||
		row.IncentiveAmount == "" || row.BonusPerUnit == "" ||
		row.ValidFrom == "" || row.ValidTo == "" {
		return "Missing required fields"
	}

	minUnits, err := strconv.Atoi(row.MinUnits)
	if err != nil || minUnits < 0 {
		return "Invalid min units"
	}
	if row.MaxUnits != "" {
		maxUnits, err := strconv.Atoi(row.MaxUnits)
		if err != nil || maxUnits < minUnits {
			return "Invalid max units"
		}
	}

	if base, err := decimal.NewFromString(row.IncentiveAmount); err != nil || base.IsNegative() {
		return "Invalid incentive amount"
	}
	if perUnit, err := decimal.NewFromString(row.BonusPerUnit); err != nil || perUnit.IsNegative() {
		return "Invalid bonus per unit"
	}

	validFrom, okFrom := parseDate(row.ValidFrom)
	validTo, okTo := parseDate(row.ValidTo)
	if !okFrom || !okTo {
		return "Invalid date format (DD-MM-YYYY)"
	}
	if validFrom.After(validTo) {
		return "Validity window reversed"
	}
	return ""
}

func recordRuleError(ctx context.Context, tx pgx.Tx, uploadID int64, rowNumber int, message string, row ruleRow) error {
	raw, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to encode error row %d: %w", rowNumber, err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO rule_upload_errors (upload_id, csv_row_number, error_message, raw_data)
		VALUES ($1, $2, $3, $4)`,
		uploadID, rowNumber, message, raw,
	)
	if err != nil {
		return fmt.Errorf("failed to record rule upload error (row %d): %w", rowNumber, err)
	}
	return nil
}
