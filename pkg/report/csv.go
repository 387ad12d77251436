// Package report writes resolution results to CSV for reviewers.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/mirrorlake/unify/pkg/models"
	"github.com/mirrorlake/unify/pkg/tracing"
)

var csvHeader = []string{
	"record_id",
	"record_role",
	"unified_group_id",
	"run_id",
	"entity_kind",
	"confidence_score",
	"match_type",
	"quality_score",
	"recommended_action",
	"match_reason",
	"rule_trail",
	"total_in_group",
}

// Writer exports match groups as CSV files, one row per record with the
// primary first and its duplicates after it.
type Writer struct {
	outputDir string
	log       ectologger.Logger
	now       func() time.Time
}

// NewWriter creates a Writer that writes into outputDir.
func NewWriter(log ectologger.Logger, outputDir string) *Writer {
	return &Writer{
		outputDir: outputDir,
		log:       log,
		now:       time.Now,
	}
}

// FileName builds the export file name for an entity kind at a point in
// time.
func FileName(kind models.EntityKind, at time.Time) string {
	return fmt.Sprintf("%s_identity_resolution_%s.csv", strings.ToUpper(string(kind)), at.Format("20060102_150405"))
}

// WriteGroups writes one CSV file for a run and returns its path.
func (w *Writer) WriteGroups(ctx context.Context, kind models.EntityKind, groups []*models.MatchGroup) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "report.Writer.WriteGroups")
	defer span.End()

	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(w.outputDir, FileName(kind, w.now().UTC()))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(csvHeader); err != nil {
		return "", fmt.Errorf("failed to write report header: %w", err)
	}

	for _, group := range groups {
		if err := cw.Write(row(group, group.PrimaryID, "PRIMARY")); err != nil {
			return "", fmt.Errorf("failed to write report row: %w", err)
		}
		for _, id := range group.DuplicateIDs {
			if err := cw.Write(row(group, id, "DUPLICATE")); err != nil {
				return "", fmt.Errorf("failed to write report row: %w", err)
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("failed to flush report: %w", err)
	}

	w.log.WithContext(ctx).WithFields(map[string]any{
		"path":   path,
		"groups": len(groups),
	}).Info("Wrote resolution report")

	return path, nil
}

func row(group *models.MatchGroup, recordID, role string) []string {
	return []string{
		recordID,
		role,
		group.UnifiedGroupID,
		group.RunID,
		group.EntityKind,
		strconv.FormatFloat(group.ConfidenceScore, 'f', 4, 64),
		group.MatchType,
		strconv.FormatFloat(group.QualityScore, 'f', 4, 64),
		group.RecommendedAction,
		group.MatchReason,
		strings.Join(group.RuleTrail, " | "),
		strconv.Itoa(group.TotalInGroup),
	}
}
