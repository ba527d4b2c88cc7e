package service

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/stemsi/kbtrainer/internal/importer"
	"github.com/stemsi/kbtrainer/internal/model"
	"github.com/stemsi/kbtrainer/internal/store"
	"github.com/stemsi/kbtrainer/internal/telemetry"
)

// ImportService loads a spreadsheet into the store. The file is parsed in
// full first; the question set is only replaced when parsing succeeded.
type ImportService struct {
	store    *store.QuestionStore
	reporter telemetry.Reporter
	log      zerolog.Logger
}

func NewImportService(st *store.QuestionStore, reporter telemetry.Reporter, log zerolog.Logger) *ImportService {
	if reporter == nil {
		reporter = telemetry.Nop{}
	}
	return &ImportService{
		store:    st,
		reporter: reporter,
		log:      log.With().Str("component", "import_service").Logger(),
	}
}

// Import parses r according to filename's extension and replaces the
// question set. Errors wrap the importer sentinels.
func (s *ImportService) Import(ctx context.Context, filename string, r io.Reader) (*model.ImportReport, error) {
	res, err := importer.ParseFile(filename, r)
	if err != nil {
		s.log.Warn().Err(err).Str("file", filename).Msg("Import rejected")
		s.reporter.Capture(ctx, "import_service", err, map[string]string{"file": filename})
		return nil, err
	}

	s.store.ImportQuestions(ctx, res.Questions)

	report := res.Report()
	s.log.Info().
		Str("file", filename).
		Int("imported", report.Imported).
		Ints("skipped_rows", report.Skipped).
		Msg("Questions imported")
	return &report, nil
}
