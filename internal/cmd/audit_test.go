package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeccax06/anonymize-pdf/internal/evidence"
)

func TestAuditCmd_HasSubcommands(t *testing.T) {
	expected := []string{"list", "verify"}
	registered := make(map[string]bool)
	for _, cmd := range auditCmd.Commands() {
		registered[cmd.Name()] = true
	}
	for _, name := range expected {
		assert.True(t, registered[name], "audit subcommand %q should be registered", name)
	}
}

func TestAuditVerifyCmd_RequiresOneArg(t *testing.T) {
	assert.NotNil(t, auditVerifyCmd.Args)
	err := auditVerifyCmd.Args(auditVerifyCmd, []string{})
	assert.Error(t, err)
	err = auditVerifyCmd.Args(auditVerifyCmd, []string{"run-123"})
	assert.NoError(t, err)
}

func TestAuditListCmd_LimitDefault(t *testing.T) {
	flag := auditListCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "20", flag.DefValue)
}

func TestRenderAuditList(t *testing.T) {
	records := []evidence.Record{
		{
			ID:         "run-1",
			Timestamp:  time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC),
			Input:      "cv.pdf",
			Output:     "cv_redacted.pdf",
			Pages:      3,
			Redactions: 7,
			DurationMS: 120,
		},
	}

	buf := new(bytes.Buffer)
	renderAuditList(buf, records)

	out := buf.String()
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "2026-08-01 09:30:00")
	assert.Contains(t, out, "cv.pdf -> cv_redacted.pdf")
	assert.Contains(t, out, "3 pages")
	assert.Contains(t, out, "7 redactions")
}

func TestRenderVerifyResult(t *testing.T) {
	buf := new(bytes.Buffer)
	renderVerifyResult(buf, "run-1", true)
	assert.Contains(t, buf.String(), "VALID")

	buf.Reset()
	renderVerifyResult(buf, "run-1", false)
	assert.Contains(t, buf.String(), "INVALID")
}
