package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyScenarios(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name         string
		subject      string
		body         string
		wantPertains bool
		wantRule     string
	}{
		{
			name:         "password reset is a security alert",
			subject:      "Password Reset Required",
			body:         "Your password needs to be reset immediately",
			wantPertains: true,
			wantRule:     RuleSecurityAlert,
		},
		{
			name:         "application received confirmation",
			subject:      "Application Received",
			body:         "Thank you for submitting your application",
			wantPertains: true,
			wantRule:     RuleActionConfirmation,
		},
		{
			name:         "scholarship held for you is not an award",
			subject:      "Scholarship Reserved For You",
			body:         "A scholarship is being held for you. Apply now!",
			wantPertains: false,
			wantRule:     RuleScholarshipNotAward,
		},
		{
			name:         "scholarship actually awarded",
			subject:      "Congratulations! Scholarship Awarded",
			body:         "You have received a $5000 scholarship",
			wantPertains: true,
			wantRule:     RuleScholarshipAwarded,
		},
		{
			name:         "student life blog is marketing",
			subject:      "Student Life Blog: K9s at the Ville",
			body:         "Discover one of Cedarville's student ministries!",
			wantPertains: false,
			wantRule:     RuleIrrelevantMarketing,
		},
		{
			name:         "reply acknowledging student inquiry",
			subject:      "Re: Question about housing",
			body:         "Thank you for reaching out to us about campus housing.",
			wantPertains: true,
			wantRule:     RuleOutreachReply,
		},
		{
			name:         "admission decision with deposit instructions",
			subject:      "Your Admission Decision",
			body:         "Congratulations! You have been accepted. Please pay your enrollment deposit.",
			wantPertains: true,
			wantRule:     RuleAcceptedStudent,
		},
		{
			name:         "course registration for a term",
			subject:      "Fall 2025 Course Registration",
			body:         "Your course registration for Fall 2025 is now open.",
			wantPertains: true,
			wantRule:     RuleDualEnrollment,
		},
		{
			name:         "named scholarship application subject",
			subject:      "Apply for the President's Scholarship",
			body:         "The President's Scholarship recognizes outstanding incoming students.",
			wantPertains: true,
			wantRule:     RuleScholarshipNamed,
		},
		{
			name:         "financial aid package ready",
			subject:      "Your Financial Aid Package",
			body:         "Your financial aid package is ready to view in the portal.",
			wantPertains: true,
			wantRule:     RuleFinancialAidReady,
		},
		{
			name:         "bare haven't applied outreach",
			subject:      "Checking in",
			body:         "We noticed you haven't applied. We would love to see your name in this year's class.",
			wantPertains: false,
			wantRule:     RuleNoApplicationOnFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Classify(&Email{Subject: tt.subject, Body: tt.body})
			assert.Equal(t, tt.wantPertains, result.Pertains)
			assert.Contains(t, result.MatchedRules, tt.wantRule)
		})
	}
}

func TestClassifyDefaultFailClosed(t *testing.T) {
	engine := NewEngine()

	result := engine.Classify(&Email{
		Subject: "Lunch plans",
		Body:    "See you at noon by the fountain.",
	})

	assert.False(t, result.Pertains)
	assert.Less(t, result.Confidence, 0.5)
	assert.Equal(t, "no clear relevance indicators found", result.Reason)
	assert.Empty(t, result.MatchedRules)
}

func TestClassifySecurityNeverOverridden(t *testing.T) {
	engine := NewEngine()

	// Marketing vocabulary elsewhere in the message must not outrank a
	// security trigger; security is evaluated first.
	result := engine.Classify(&Email{
		Subject: "Password Reset",
		Body:    "A password reset was requested. Also check out our newsletter and campus visit days!",
	})

	require.True(t, result.Pertains)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Contains(t, result.MatchedRules, RuleSecurityAlert)
}

func TestClassifySecurityExclusionFallsThrough(t *testing.T) {
	engine := NewEngine()

	result := engine.Classify(&Email{
		Subject: "Security Alert",
		Body:    "Security alert: big savings on tuition when you enroll today.",
	})

	assert.False(t, result.Pertains)
	assert.NotContains(t, result.MatchedRules, RuleSecurityAlert)
}

func TestClassifyNotAwardedPrecedesAwarded(t *testing.T) {
	engine := NewEngine()

	// Both an awarded phrase and a not-awarded phrase are present; the
	// not-awarded patterns are tested first, so the eligibility framing
	// wins.
	result := engine.Classify(&Email{
		Subject: "Scholarship Offer",
		Body:    "You may be eligible for a scholarship offer from our foundation.",
	})

	assert.False(t, result.Pertains)
	assert.Contains(t, result.MatchedRules, RuleScholarshipNotAward)
	assert.NotContains(t, result.MatchedRules, RuleScholarshipAwarded)
}

func TestClassifyAcceptedExclusionFallsThrough(t *testing.T) {
	engine := NewEngine()

	// An accepted-student trigger phrase plus a deadline-pressure
	// exclusion must not produce the accepted verdict; the message keeps
	// falling and lands in marketing.
	result := engine.Classify(&Email{
		Subject: "Reserve your spot",
		Body:    "Reserve your spot today! Join us for a virtual tour. Apply by January 15.",
	})

	assert.False(t, result.Pertains)
	assert.NotContains(t, result.MatchedRules, RuleAcceptedStudent)
	assert.Contains(t, result.MatchedRules, RuleIrrelevantMarketing)
}

func TestClassifyHowToApplySolicitation(t *testing.T) {
	engine := NewEngine()

	result := engine.Classify(&Email{
		Subject: "How to Apply",
		Body:    "Learn how to apply to our university",
	})

	assert.False(t, result.Pertains)
}

func TestClassifyConfirmationVetoedBySolicitation(t *testing.T) {
	engine := NewEngine()

	// Confirmation vocabulary bundled with a solicitation is a pitch, not
	// a receipt for an action the student took.
	result := engine.Classify(&Email{
		Subject: "Application Confirmation",
		Body:    "Confirmation of your application status is one click away. Apply now!",
	})

	assert.NotContains(t, result.MatchedRules, RuleActionConfirmation)
	assert.False(t, result.Pertains)
}

func TestClassifyOutreachReplyRequiresReplyMarker(t *testing.T) {
	engine := NewEngine()

	// Same acknowledgment phrasing without a reply subject is not a
	// student-initiated thread.
	result := engine.Classify(&Email{
		Subject: "Welcome to our mailing list",
		Body:    "Thank you for your interest in our programs.",
	})

	assert.NotContains(t, result.MatchedRules, RuleOutreachReply)
}

func TestClassifyNilEmail(t *testing.T) {
	engine := NewEngine()

	result := engine.Classify(nil)

	assert.False(t, result.Pertains)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Equal(t, "invalid email object", result.Reason)
	assert.Contains(t, result.MatchedRules, RuleInvalidInput)
}

func TestClassifyEmptyFieldsNeverPanic(t *testing.T) {
	engine := NewEngine()

	result := engine.Classify(&Email{})

	assert.False(t, result.Pertains)
	assert.Less(t, result.Confidence, 0.5)
}

func TestClassifyDeterministic(t *testing.T) {
	engine := NewEngine()
	email := &Email{
		Subject: "Congratulations! Scholarship Awarded",
		Body:    "You have received a $5000 scholarship",
		From:    "awards@example.edu",
	}

	first := engine.Classify(email)
	second := engine.Classify(email)

	require.Equal(t, first, second)
}

func TestRuleTablesSanity(t *testing.T) {
	tables := map[string][]pattern{
		"security_triggers":        securityTriggers,
		"outreach_reply_triggers":  outreachReplyTriggers,
		"action_triggers":          actionConfirmationTriggers,
		"accepted_triggers":        acceptedStudentTriggers,
		"accepted_exclusions":      acceptedStudentExclusions,
		"dual_enrollment_triggers": dualEnrollmentTriggers,
		"scholarship_not_awarded":  scholarshipNotAwarded,
		"scholarship_awarded":      scholarshipAwarded,
		"financial_aid_triggers":   financialAidTriggers,
		"irrelevant_triggers":      irrelevantTriggers,
	}

	for name, table := range tables {
		require.NotEmpty(t, table, "table %s", name)
		seen := map[string]bool{}
		for _, p := range table {
			assert.NotEmpty(t, p.label, "table %s has an unlabeled pattern", name)
			assert.False(t, seen[p.label], "table %s repeats label %s", name, p.label)
			seen[p.label] = true
		}
	}
}
