package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rebeccax06/anonymize-pdf/internal/config"
	"github.com/rebeccax06/anonymize-pdf/internal/evidence"
)

var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query and verify the redaction audit trail",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded redaction runs",
	RunE:  auditList,
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify [run-id]",
	Short: "Verify HMAC signature of a run record",
	Args:  cobra.ExactArgs(1),
	RunE:  auditVerify,
}

func init() {
	auditListCmd.Flags().IntVar(&auditLimit, "limit", 20, "Maximum records to show")

	auditCmd.AddCommand(auditListCmd)
	auditCmd.AddCommand(auditVerifyCmd)
	rootCmd.AddCommand(auditCmd)
}

func openAuditStore() (*evidence.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return evidence.NewStore(cfg.AuditDBPath(), cfg.SigningKey)
}

func auditList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	store, err := openAuditStore()
	if err != nil {
		return fmt.Errorf("initializing audit store: %w", err)
	}
	defer store.Close()

	records, err := store.List(ctx, auditLimit)
	if err != nil {
		return fmt.Errorf("querying audit trail: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No audit records found.")
		return nil
	}
	renderAuditList(os.Stdout, records)
	return nil
}

func auditVerify(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	runID := args[0]

	store, err := openAuditStore()
	if err != nil {
		return fmt.Errorf("initializing audit store: %w", err)
	}
	defer store.Close()

	valid, err := store.Verify(ctx, runID)
	if err != nil {
		return fmt.Errorf("verifying record: %w", err)
	}
	renderVerifyResult(os.Stdout, runID, valid)
	if !valid {
		return fmt.Errorf("signature verification failed for %s", runID)
	}
	return nil
}

// renderAuditList writes run records to w (testable).
func renderAuditList(w io.Writer, records []evidence.Record) {
	fmt.Fprintf(w, "Redaction Runs (showing %d):\n\n", len(records))
	for i := range records {
		rec := &records[i]
		fmt.Fprintf(w, "  %s | %s | %s -> %s | %d pages | %d redactions | %dms\n",
			rec.ID,
			rec.Timestamp.Format("2006-01-02 15:04:05"),
			rec.Input,
			rec.Output,
			rec.Pages,
			rec.Redactions,
			rec.DurationMS,
		)
	}
}

// renderVerifyResult writes verify outcome to w (testable).
func renderVerifyResult(w io.Writer, runID string, valid bool) {
	if valid {
		fmt.Fprintf(w, "✓ Run %s: signature VALID (HMAC-SHA256 intact)\n", runID)
	} else {
		fmt.Fprintf(w, "✗ Run %s: signature INVALID (possible tampering)\n", runID)
	}
}
