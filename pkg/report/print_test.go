package report_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/librescoot/serlink/pkg/protocol"
	"github.com/librescoot/serlink/pkg/report"
)

func TestPeeringReportSuccess(t *testing.T) {
	ok := report.PeeringReport{Connected: true, Role: protocol.RoleClient}
	assert.True(t, ok.Success())

	failed := report.PeeringReport{Connected: false, Err: errors.New("boom")}
	assert.False(t, failed.Success())
}

func TestSessionReportSuccessRequiresFullCRCPass(t *testing.T) {
	allGood := report.SessionReport{Result: report.SessionResult{
		Success: true, Received: 10, CRCOk: 10,
	}}
	assert.True(t, allGood.Success())

	someCorrupt := report.SessionReport{Result: report.SessionResult{
		Success: true, Received: 10, CRCOk: 9,
	}}
	assert.False(t, someCorrupt.Success())

	failedRun := report.SessionReport{Result: report.SessionResult{
		Success: false, Err: errors.New("timeout"),
	}}
	assert.False(t, failedRun.Success())
}
