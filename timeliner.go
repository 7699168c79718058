package timeliner

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/siherrmann/timeliner/core/corpus"
	"github.com/siherrmann/timeliner/core/pipeline"
	"github.com/siherrmann/timeliner/database"
	"github.com/siherrmann/timeliner/helper"
)

// Timeliner converts labelled medication timelines into template-filling examples.
type Timeliner struct {
	DB       *helper.Database           // Optional example store connection
	Examples *database.ExamplesDBHandler // Set by ConnectStore
	Pipeline *pipeline.Pipeline
	// Logging
	log *slog.Logger
}

// Report summarises one conversion.
type Report struct {
	Read        int
	Accepted    int
	Stored      int
	Filtered    []string
	Skipped     []pipeline.SkippedDocument
	Rejected    []corpus.DocumentError
	CompactPath string
	PrettyPath  string
}

// NewTimeliner creates a Timeliner logging to logger.
// A nil logger logs info and above to stdout.
func NewTimeliner(logger *slog.Logger, opts ...pipeline.Option) *Timeliner {
	if logger == nil {
		logger = helper.NewLogger(os.Stdout, slog.LevelInfo)
	}

	opts = append([]pipeline.Option{pipeline.WithLogger(logger)}, opts...)

	return &Timeliner{
		Pipeline: pipeline.NewPipeline(opts...),
		log:      logger,
	}
}

// ConnectStore connects to Postgres and prepares the examples table.
// Accepted examples of later conversions are stored as well.
func (t *Timeliner) ConnectStore(config *helper.DatabaseConfiguration) error {
	if config == nil {
		return helper.NewError("connect store", fmt.Errorf("database configuration is nil"))
	}

	db, err := helper.ConnectDatabase("timeliner", config, t.log)
	if err != nil {
		return helper.NewError("connect store", err)
	}

	examples, err := database.NewExamplesDBHandler(db, false)
	if err != nil {
		db.Close()
		return helper.NewError("create examples handler", err)
	}

	t.DB = db
	t.Examples = examples
	return nil
}

// Close closes the database connection
func (t *Timeliner) Close() error {
	if t.DB != nil {
		return t.DB.Close()
	}
	return nil
}

// Convert reads the corpus at input, formats it and writes {name}.json and
// pretty_{name}.json into outDir. Documents that cannot be read, are skipped
// or yield no template are reported but never written.
func (t *Timeliner) Convert(ctx context.Context, input, outDir, name string, opts corpus.ReadOptions) (*Report, error) {
	read, err := corpus.ReadDocuments(input, opts)
	if err != nil {
		return nil, helper.NewError("read documents", err)
	}

	for _, rejected := range read.Rejected {
		t.log.Warn("Rejected document",
			slog.Int("index", rejected.Index),
			slog.String("doc_id", rejected.DocID),
			slog.String("error", rejected.Err.Error()),
		)
	}
	t.Pipeline.Metrics().ObserveRejected(len(read.Rejected))

	result, err := t.Pipeline.Run(ctx, read.Documents)
	if err != nil {
		return nil, helper.NewError("run pipeline", err)
	}

	err = corpus.WriteSplit(outDir, name, result.Examples)
	if err != nil {
		return nil, helper.NewError("write split", err)
	}

	compact, pretty := corpus.SplitPaths(outDir, name)
	report := &Report{
		Read:        len(read.Documents) + len(read.Rejected),
		Accepted:    len(result.Examples),
		Filtered:    result.Filtered,
		Skipped:     result.Skipped,
		Rejected:    read.Rejected,
		CompactPath: compact,
		PrettyPath:  pretty,
	}

	if t.Examples != nil {
		for _, example := range result.Examples {
			err = t.Examples.InsertExample(ctx, example)
			if err != nil {
				return nil, helper.NewError(fmt.Sprintf("store example %s", example.DocID), err)
			}
			report.Stored++
		}
		t.log.Info("Stored examples", slog.Int("count", report.Stored))
	}

	t.log.Info("Wrote split",
		slog.String("name", name),
		slog.Int("accepted", report.Accepted),
		slog.String("path", compact),
	)

	return report, nil
}
