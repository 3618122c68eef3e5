package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"roombot/internal/database"
	"roombot/internal/models"
	"roombot/internal/schedule"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type bookingEntry struct {
	Date    string `yaml:"date"`
	Start   string `yaml:"start"`
	End     string `yaml:"end"`
	Owner   string `yaml:"owner"`
	Details string `yaml:"details"`
}

type bookingsFile struct {
	Bookings []bookingEntry `yaml:"bookings"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		inputPath = flag.String("bookings", "configs/bookings.yaml", "path to bookings yaml")
		dbPath    = flag.String("db", "./data/bookings.db", "path to sqlite db")
	)
	flag.Parse()

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		return fmt.Errorf("read bookings: %w", err)
	}
	var file bookingsFile
	if err = yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse bookings: %w", err)
	}
	if len(file.Bookings) == 0 {
		return fmt.Errorf("no bookings in yaml")
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created := 0
	skipped := 0
	for _, entry := range file.Bookings {
		booking, err := parseEntry(entry)
		if err != nil {
			return fmt.Errorf("entry %q %s-%s: %w", entry.Date, entry.Start, entry.End, err)
		}

		err = db.CreateBookingChecked(ctx, booking)
		if errors.Is(err, database.ErrSlotTaken) {
			skipped++
			continue
		}
		if err != nil {
			return fmt.Errorf("create %q %s-%s: %w", entry.Date, entry.Start, entry.End, err)
		}
		created++
	}

	fmt.Printf("done: created=%d skipped=%d\n", created, skipped)
	return nil
}

func parseEntry(entry bookingEntry) (*models.Booking, error) {
	date, err := schedule.ParseDate(entry.Date)
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}
	start, err := schedule.ParseClock(entry.Start)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	end, err := schedule.ParseClock(entry.End)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("start %s is not before end %s", start, end)
	}
	if entry.Owner == "" {
		return nil, fmt.Errorf("owner is required")
	}
	if entry.Details == "" {
		return nil, fmt.Errorf("details are required")
	}

	return &models.Booking{
		Date:    date,
		Start:   start,
		End:     end,
		Owner:   entry.Owner,
		Details: entry.Details,
	}, nil
}
