package service

import (
	"context"
	"fmt"
	"os"
	"strings"

	"library-backend/internal/domains/borrow"
	"library-backend/pkg/logger"
)

const (
	reportBanner    = "❗ Overdue Book Report"
	reportRule      = "========================================"
	reportDelimiter = "----------------------------------------"
	reportEmpty     = "No overdue books."
)

// OverdueReport renders the plain-text overdue report and writes it to
// the configured path. A failed write is logged and never surfaces to
// the caller; the rendered report is returned either way.
func (s *borrowService) OverdueReport(ctx context.Context) (string, error) {
	records, err := s.records.ListOverdue(ctx, s.today())
	if err != nil {
		return "", err
	}

	report := renderOverdueReport(records)

	if err := os.WriteFile(s.reportPath, []byte(report), 0o644); err != nil {
		logger.Error("failed to write overdue report file", err)
	}

	return report, nil
}

func renderOverdueReport(records []*borrow.DetailedRecord) string {
	if len(records) == 0 {
		return reportEmpty
	}

	var sb strings.Builder
	sb.WriteString(reportBanner + "\n")
	sb.WriteString(reportRule + "\n")

	for _, rec := range records {
		fmt.Fprintf(&sb, "User: %s (ID: %s)\n", rec.UserName, rec.UserID)
		fmt.Fprintf(&sb, "Book: %s (ID: %s)\n", rec.BookTitle, rec.BookID)
		fmt.Fprintf(&sb, "Borrowed: %s\n", rec.BorrowDate.Format(dateLayout))
		fmt.Fprintf(&sb, "Due: %s\n", rec.DueDate.Format(dateLayout))
		sb.WriteString("Returned: ❌ No\n")
		sb.WriteString(reportDelimiter + "\n")
	}

	return sb.String()
}
