package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"roombot/internal/models"
	"roombot/internal/schedule"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// handleExport builds a spreadsheet of the coming week's bookings and
// sends it back as a document. Manager-only.
func (b *Bot) handleExport(ctx context.Context, update tgbotapi.Update) {
	chatID := update.Message.Chat.ID
	if !b.isManager(update.Message.From.ID) {
		b.sendMessage(chatID, "The /export command is available to managers only.")
		return
	}

	from := schedule.Today()
	to := from.AddDays(6)

	path, err := b.exportToExcel(ctx, from, to)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to export bookings")
		b.sendMessage(chatID, "Export failed. Please try again later.")
		return
	}
	defer os.Remove(path)

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = fmt.Sprintf("Bookings %s - %s", from, to)
	b.send(doc)
}

func (b *Bot) exportToExcel(ctx context.Context, from, to schedule.Date) (string, error) {
	bookings, err := b.collectBookings(ctx, from, to)
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Bookings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", err
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	if err := b.writeExportHeader(f, sheetName, from, to); err != nil {
		return "", err
	}

	for i, booking := range bookings {
		row := i + 3
		cells := []interface{}{
			booking.ID,
			booking.Date.String(),
			booking.Start.String(),
			booking.End.String(),
			booking.Owner,
			booking.Details,
		}
		for col, value := range cells {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return "", err
			}
		}
	}

	dir := b.config.Exports.Path
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("20060102_150405")))
	if err := f.SaveAs(path); err != nil {
		return "", err
	}
	return path, nil
}

func (b *Bot) writeExportHeader(f *excelize.File, sheetName string, from, to schedule.Date) error {
	title := fmt.Sprintf("Conference room bookings %s - %s", from, to)
	if err := f.SetCellValue(sheetName, "A1", title); err != nil {
		return err
	}
	if err := f.MergeCell(sheetName, "A1", "F1"); err != nil {
		return err
	}
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err := f.SetCellStyle(sheetName, "A1", "F1", titleStyle); err != nil {
		return err
	}

	headers := []string{"ID", "Date", "Start", "End", "Owner", "Details"}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 2)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return err
		}
	}
	return nil
}

// collectBookings gathers bookings per day over [from, to], in day then
// start-time order.
func (b *Bot) collectBookings(ctx context.Context, from, to schedule.Date) ([]*models.Booking, error) {
	var out []*models.Booking
	for date := from; !date.After(to); date = date.AddDays(1) {
		bookings, err := b.bookingService.GetBookingsByDate(ctx, date)
		if err != nil {
			return nil, err
		}
		out = append(out, bookings...)
	}
	return out, nil
}
