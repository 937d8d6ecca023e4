// Package ingest loads sales files and incentive rule files into the
// database tables the calculation engine reads. It owns all input
// validation: the engine assumes every persisted row is well formed.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Service ingests CSV uploads. Each upload runs in one transaction: the
// valid rows and the recorded error rows land together or not at all.
type Service struct {
	pool *pgxpool.Pool
}

// NewService constructs an ingest Service backed by PostgreSQL.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// SalesSummary reports the outcome of one sales file upload.
type SalesSummary struct {
	FileName    string `json:"file_name"`
	UploadedBy  string `json:"uploaded_by"`
	TotalRows   int    `json:"total_rows"`
	ValidRows   int    `json:"valid_rows"`
	InvalidRows int    `json:"invalid_rows"`
}

// salesRow is the raw cell content of one CSV line, kept for error records.
type salesRow struct {
	EmployeeID   string `json:"Employee_ID"`
	Branch       string `json:"Branch"`
	Role         string `json:"Role"`
	VehicleModel string `json:"Vehicle_Model"`
	VehicleType  string `json:"Vehicle_Type"`
	Quantity     string `json:"Quantity"`
	SaleDate     string `json:"Sale_Date"`
}

// IngestSales parses a sales CSV and inserts the valid rows into
// sales_records. Rows missing required fields, with a non-positive
// quantity, or with an unparsable date are recorded in sales_upload_errors
// instead of failing the upload.
func (s *Service) IngestSales(ctx context.Context, r io.Reader, fileName, uploadedBy string) (*SalesSummary, error) {
	reader := newHeaderReader(r)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	summary := &SalesSummary{FileName: fileName, UploadedBy: uploadedBy}
	rowNumber := 0
	for {
		record, err := reader.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read sales CSV %s: %w", fileName, err)
		}
		rowNumber++
		summary.TotalRows++

		row := salesRow{
			EmployeeID:   record["Employee_ID"],
			Branch:       record["Branch"],
			Role:         record["Role"],
			VehicleModel: record["Vehicle_Model"],
			VehicleType:  record["Vehicle_Type"],
			Quantity:     record["Quantity"],
			SaleDate:     strings.TrimSpace(record["Sale_Date"]),
		}

		if row.EmployeeID == "" || row.VehicleType == "" || row.Quantity == "" {
			summary.InvalidRows++
			if err := recordSalesError(ctx, tx, rowNumber, "Missing required fields", row); err != nil {
				return nil, err
			}
			continue
		}

		quantity, err := strconv.Atoi(strings.TrimSpace(row.Quantity))
		if err != nil || quantity <= 0 {
			summary.InvalidRows++
			if err := recordSalesError(ctx, tx, rowNumber, "Invalid quantity", row); err != nil {
				return nil, err
			}
			continue
		}

		saleDate, ok := parseDate(row.SaleDate)
		if !ok {
			summary.InvalidRows++
			if err := recordSalesError(ctx, tx, rowNumber, "Invalid date format (DD-MM-YYYY)", row); err != nil {
				return nil, err
			}
			continue
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO sales_records
				(employee_id, branch, role, vehicle_model, vehicle_type, quantity, sale_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			row.EmployeeID, nullable(row.Branch), nullable(row.Role),
			nullable(row.VehicleModel), row.VehicleType, quantity, saleDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert sales record (row %d): %w", rowNumber, err)
		}
		summary.ValidRows++
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit sales upload %s: %w", fileName, err)
	}
	return summary, nil
}

func recordSalesError(ctx context.Context, tx pgx.Tx, rowNumber int, message string, row salesRow) error {
	raw, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to encode error row %d: %w", rowNumber, err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO sales_upload_errors (csv_row_number, error_message, raw_data)
		VALUES ($1, $2, $3)`,
		rowNumber, message, raw,
	)
	if err != nil {
		return fmt.Errorf("failed to record upload error (row %d): %w", rowNumber, err)
	}
	return nil
}

// nullable maps an empty CSV cell to SQL NULL.
func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
