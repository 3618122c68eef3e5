package google

import (
	"context"
	"fmt"
	"os"
	"time"

	"roombot/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const bookingsRange = "Bookings!A:H"

// SheetsService journals booking commits and deletions to a spreadsheet.
// The sheet is an append-only log, not a mirror of the store; the store
// remains the single source of truth.
type SheetsService struct {
	service         *sheets.Service
	bookingsSheetID string
}

func NewSheetsService(ctx context.Context, credentialsFile, bookingsSheetID string) (*SheetsService, error) {
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	client := config.Client(ctx)

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	return &SheetsService{
		service:         srv,
		bookingsSheetID: bookingsSheetID,
	}, nil
}

// TestConnection reads a single cell to verify access to the spreadsheet.
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.bookingsSheetID, "Bookings!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

func (s *SheetsService) AppendBooking(ctx context.Context, booking *models.Booking) error {
	return s.appendRow(ctx, BookingRow(booking, "booked"))
}

func (s *SheetsService) MarkBookingDeleted(ctx context.Context, booking *models.Booking) error {
	return s.appendRow(ctx, BookingRow(booking, "deleted"))
}

func (s *SheetsService) appendRow(ctx context.Context, row []interface{}) error {
	values := &sheets.ValueRange{Values: [][]interface{}{row}}
	_, err := s.service.Spreadsheets.Values.
		Append(s.bookingsSheetID, bookingsRange, values).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append booking row: %w", err)
	}
	return nil
}

// BookingRow builds the spreadsheet row for a booking snapshot.
func BookingRow(booking *models.Booking, status string) []interface{} {
	return []interface{}{
		booking.ID,
		booking.Date.String(),
		booking.Start.String(),
		booking.End.String(),
		booking.Owner,
		booking.Details,
		status,
		time.Now().Format(time.RFC3339),
	}
}
