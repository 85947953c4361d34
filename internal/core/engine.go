package core

import (
	"strings"
)

// Engine classifies admissions correspondence with an ordered chain of
// category checkers. Each checker either returns a verdict or declines;
// the first verdict wins and evaluation halts. Checkers only read the
// per-call normalized text and the immutable pattern tables, so a single
// Engine is safe for concurrent use.
type Engine struct {
	stages []stage
}

// stage is one guarded step of the chain. A nil return means the stage
// has no opinion and evaluation falls through.
type stage struct {
	name  string
	check func(n *NormalizedEmail) *Result
}

// NewEngine constructs the engine with the fixed checker order. Order is
// significant: security alerts are never overridden, and marketing is only
// consulted after every relevance category has declined.
func NewEngine() *Engine {
	return &Engine{
		stages: []stage{
			{RuleSecurityAlert, checkSecurityAlert},
			{RuleOutreachReply, checkOutreachReply},
			{RuleActionConfirmation, checkActionConfirmation},
			{RuleAcceptedStudent, checkAcceptedStudent},
			{RuleDualEnrollment, checkDualEnrollment},
			{"scholarship", checkScholarship},
			{RuleFinancialAidReady, checkFinancialAid},
			{RuleIrrelevantMarketing, checkIrrelevantMarketing},
		},
	}
}

// Classify evaluates one email and returns its verdict. It is pure and
// deterministic: same input, same output, no I/O, no clock. A nil email
// short-circuits to the invalid-input verdict without normalizing.
func (e *Engine) Classify(email *Email) Result {
	if email == nil {
		return Result{
			Pertains:     false,
			Reason:       "invalid email object",
			Confidence:   0.0,
			MatchedRules: []string{RuleInvalidInput},
		}
	}

	n := Normalize(email)
	for i := range e.stages {
		if r := e.stages[i].check(&n); r != nil {
			return *r
		}
	}

	// Fail-closed default: uncertainty resolves toward filtering, never
	// toward inbox delivery.
	return Result{
		Pertains:   false,
		Reason:     "no clear relevance indicators found",
		Confidence: confDefault,
	}
}

func verdict(pertains bool, conf float64, reason, ruleID, label string) *Result {
	return &Result{
		Pertains:     pertains,
		Reason:       reason,
		Confidence:   conf,
		MatchedRules: []string{ruleID, ruleID + "." + label},
	}
}

func checkSecurityAlert(n *NormalizedEmail) *Result {
	label, ok := firstMatch(securityTriggers, n)
	if !ok {
		return nil
	}
	if anyMatch(securityExclusions, n) {
		return nil
	}
	return verdict(true, confSecurityAlert,
		"security or account alert", RuleSecurityAlert, label)
}

func checkOutreachReply(n *NormalizedEmail) *Result {
	if !replyMarker.MatchString(n.Subject) {
		return nil
	}
	label, ok := firstMatch(outreachReplyTriggers, n)
	if !ok {
		return nil
	}
	return verdict(true, confOutreachReply,
		"institution replying to student-initiated contact", RuleOutreachReply, label)
}

func checkActionConfirmation(n *NormalizedEmail) *Result {
	label, ok := firstMatch(actionConfirmationTriggers, n)
	if !ok {
		return nil
	}
	if anyMatch(actionConfirmationExclusions, n) {
		return nil
	}
	return verdict(true, confActionConfirmation,
		"confirmation of an action the student took", RuleActionConfirmation, label)
}

func checkAcceptedStudent(n *NormalizedEmail) *Result {
	label, ok := firstMatch(acceptedStudentTriggers, n)
	if !ok {
		return nil
	}
	if anyMatch(acceptedStudentExclusions, n) {
		return nil
	}
	return verdict(true, confAcceptedStudent,
		"information for an accepted student", RuleAcceptedStudent, label)
}

func checkDualEnrollment(n *NormalizedEmail) *Result {
	label, ok := firstMatch(dualEnrollmentTriggers, n)
	if !ok {
		return nil
	}
	if anyMatch(dualEnrollmentExclusions, n) {
		return nil
	}
	return verdict(true, confDualEnrollment,
		"dual enrollment course administration", RuleDualEnrollment, label)
}

// checkScholarship runs the three scholarship stages in strict order:
// named-program application, then not-awarded exclusions, then awarded
// patterns. The not-awarded set is tested before the awarded set so that
// eligibility talk wins when both could match the same text.
func checkScholarship(n *NormalizedEmail) *Result {
	if scholarshipApplySubject.matches(n) {
		if label, ok := firstMatch(scholarshipNamedMarkers, n); ok {
			return verdict(true, confScholarshipNamed,
				"application for a named scholarship program", RuleScholarshipNamed, label)
		}
	}

	if !strings.Contains(n.Combined, "scholarship") {
		return nil
	}

	if label, ok := firstMatch(scholarshipNotAwarded, n); ok {
		return verdict(false, confScholarshipDenied,
			"scholarship eligibility talk, no award made", RuleScholarshipNotAward, label)
	}

	if label, ok := firstMatch(scholarshipAwarded, n); ok {
		return verdict(true, confScholarshipAwarded,
			"scholarship awarded to the student", RuleScholarshipAwarded, label)
	}

	return nil
}

func checkFinancialAid(n *NormalizedEmail) *Result {
	label, ok := firstMatch(financialAidTriggers, n)
	if !ok {
		return nil
	}
	if anyMatch(financialAidExclusions, n) {
		return nil
	}
	return verdict(true, confFinancialAidReady,
		"financial aid package ready for review", RuleFinancialAidReady, label)
}

func checkIrrelevantMarketing(n *NormalizedEmail) *Result {
	if label, ok := firstMatch(irrelevantTriggers, n); ok {
		return verdict(false, confIrrelevant,
			"marketing or bulk outreach", RuleIrrelevantMarketing, label)
	}

	// Standalone check for bare "haven't applied" outreach, kept separate
	// from the pattern list so it reports its own rule id.
	if noApplicationPattern.matches(n) {
		return verdict(false, confIrrelevant,
			"outreach about an application never submitted", RuleNoApplicationOnFile,
			noApplicationPattern.label)
	}

	return nil
}
