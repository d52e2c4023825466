package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/institute-cms/internal/models"
)

// StreamLeads streams every lead in the specified format
func (s *leadService) StreamLeads(ctx context.Context, w http.ResponseWriter, format string) error {
	s.log.Info().Str("format", format).Msg("Starting leads export")

	switch format {
	case "ndjson":
		return s.streamLeadsNDJSON(ctx, w)
	case "json", "":
		return s.streamLeadsJSON(ctx, w)
	case "csv":
		return s.streamLeadsCSV(ctx, w)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func (s *leadService) streamLeadsNDJSON(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Disposition", "attachment; filename=leads.ndjson")

	flusher, _ := w.(http.Flusher)
	count := 0

	err := s.repo.StreamAll(ctx, func(lead *models.Lead) error {
		data, err := json.Marshal(lead)
		if err != nil {
			return err
		}
		w.Write(data)
		w.Write([]byte("\n"))
		count++

		// Flush every 100 records for streaming
		if count%100 == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})

	s.log.Info().Int("count", count).Msg("Leads export completed")
	return err
}

func (s *leadService) streamLeadsJSON(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=leads.json")

	w.Write([]byte(`{"leads":[`))
	first := true
	count := 0

	err := s.repo.StreamAll(ctx, func(lead *models.Lead) error {
		if !first {
			w.Write([]byte(","))
		}
		first = false

		data, err := json.Marshal(lead)
		if err != nil {
			return err
		}
		w.Write(data)
		count++
		return nil
	})

	w.Write([]byte(`],"count":` + strconv.Itoa(count) + `}`))
	return err
}

func (s *leadService) streamLeadsCSV(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=leads.csv")

	writer := csv.NewWriter(w)
	defer writer.Flush()

	// Write header
	writer.Write([]string{"id", "name", "email", "phone", "course", "message", "has_attachment", "source", "created_at"})

	return s.repo.StreamAll(ctx, func(lead *models.Lead) error {
		return writer.Write([]string{
			lead.ID,
			lead.Name,
			lead.Email,
			lead.Phone,
			lead.Course,
			lead.Message,
			strconv.FormatBool(lead.HasAttachment),
			lead.Source,
			lead.CreatedAt.UTC().Format(time.RFC3339),
		})
	})
}
