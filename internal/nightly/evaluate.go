package nightly

// Status is the outcome of one report section
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Coverage thresholds, line coverage percent
const (
	CoveragePassThreshold = 80.0
	CoverageWarnThreshold = 60.0
)

// Evaluation holds the derived status of every section
type Evaluation struct {
	Unit          Status `json:"unit_tests"`
	Integration   Status `json:"integration_tests"`
	Doc           Status `json:"doc_tests"`
	Coverage      Status `json:"coverage"`
	Security      Status `json:"security"`
	Audit         Status `json:"audit"`
	Migration     Status `json:"migration_tests"`
	Compatibility Status `json:"backward_compatibility"`
	Performance   Status `json:"performance"`
	Overall       Status `json:"overall"`
}

// Passed reports whether the build as a whole passed
func (e Evaluation) Passed() bool {
	return e.Overall == StatusPass
}

// Result is the overall label shown in reports
func (e Evaluation) Result() string {
	if e.Passed() {
		return "PASS"
	}
	return "FAIL"
}

func testStatus(c TestCounts) Status {
	if c.Failed == 0 {
		return StatusPass
	}
	return StatusFail
}

func boolStatus(ok bool) Status {
	if ok {
		return StatusPass
	}
	return StatusFail
}

// CoverageStatus grades line coverage
func CoverageStatus(percent float64) Status {
	switch {
	case percent >= CoveragePassThreshold:
		return StatusPass
	case percent >= CoverageWarnThreshold:
		return StatusWarn
	default:
		return StatusFail
	}
}

// Evaluate derives section statuses from a report. The overall status passes
// only when unit, integration and doc tests have no failures, the audit passed
// and backward compatibility holds. Coverage and migration tests are reported
// but do not affect it.
func Evaluate(r Report) Evaluation {
	e := Evaluation{
		Unit:          testStatus(r.Tests.Unit),
		Integration:   testStatus(r.Tests.Integration),
		Doc:           testStatus(r.Tests.Doc),
		Coverage:      CoverageStatus(r.Coverage.LineCoverage),
		Security:      boolStatus(len(r.Security.Vulnerabilities) == 0),
		Audit:         boolStatus(r.Security.AuditPassed),
		Migration:     testStatus(r.Compatibility.MigrationTests),
		Compatibility: boolStatus(r.Compatibility.BackwardCompatibility),
		Performance:   StatusPass,
	}

	overall := r.Tests.Unit.Failed == 0 &&
		r.Tests.Integration.Failed == 0 &&
		r.Tests.Doc.Failed == 0 &&
		r.Security.AuditPassed &&
		r.Compatibility.BackwardCompatibility
	e.Overall = boolStatus(overall)
	return e
}
