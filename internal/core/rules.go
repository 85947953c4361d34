package core

import (
	"regexp"
)

// Rule identifiers recorded in Result.MatchedRules. The dispatcher logs
// these alongside the action taken so a human can audit any verdict.
const (
	RuleSecurityAlert       = "security_alert"
	RuleOutreachReply       = "student_outreach_reply"
	RuleActionConfirmation  = "student_action_confirmation"
	RuleAcceptedStudent     = "accepted_student"
	RuleDualEnrollment      = "dual_enrollment"
	RuleScholarshipNamed    = "scholarship_named_application"
	RuleScholarshipNotAward = "scholarship_not_awarded"
	RuleScholarshipAwarded  = "scholarship_awarded"
	RuleFinancialAidReady   = "financial_aid_ready"
	RuleIrrelevantMarketing = "irrelevant_marketing"
	RuleNoApplicationOnFile = "no_application_on_file"
	RuleInvalidInput        = "invalid_input"
)

// Per-category confidence constants. These are priority labels attached to
// each rule author's judgment, not computed scores.
const (
	confSecurityAlert      = 1.0
	confOutreachReply      = 0.95
	confActionConfirmation = 0.95
	confAcceptedStudent    = 0.95
	confDualEnrollment     = 0.9
	confScholarshipNamed   = 0.75
	confScholarshipDenied  = 0.9
	confScholarshipAwarded = 0.95
	confFinancialAidReady  = 0.95
	confIrrelevant         = 0.95
	confDefault            = 0.3
)

// matchScope selects which normalized surface a pattern is tested against.
type matchScope int

const (
	scopeCombined matchScope = iota
	scopeSubject
	scopeFrom
)

// pattern is a declarative match descriptor: a compiled expression, the
// surface it applies to, and the label used for audit output. Patterns are
// compiled once at init and never mutated, so the tables are safe for
// concurrent reads.
type pattern struct {
	label string
	scope matchScope
	re    *regexp.Regexp
}

func (p *pattern) matches(n *NormalizedEmail) bool {
	switch p.scope {
	case scopeSubject:
		return p.re.MatchString(n.Subject)
	case scopeFrom:
		return p.re.MatchString(n.From)
	default:
		return p.re.MatchString(n.Combined)
	}
}

// The normalized surfaces are already case folded, so expressions are
// written in lower case without (?i).

func combined(label, expr string) pattern {
	return pattern{label: label, scope: scopeCombined, re: regexp.MustCompile(expr)}
}

func subject(label, expr string) pattern {
	return pattern{label: label, scope: scopeSubject, re: regexp.MustCompile(expr)}
}

func from(label, expr string) pattern {
	return pattern{label: label, scope: scopeFrom, re: regexp.MustCompile(expr)}
}

var (
	// Security / account alerts. Highest priority; never overridden once
	// matched and not excluded.
	securityTriggers = []pattern{
		combined("password_reset", `(reset\s+your\s+password|password\s+reset|password\s+(needs\s+to\s+be|must\s+be|will\s+be)\s+reset)`),
		combined("account_locked", `account\s+(has\s+been\s+)?(locked|suspended|disabled|deactivated)`),
		combined("verification_code", `verification\s+code`),
		combined("two_factor", `(two[\s-]?factor|multi[\s-]?factor|\b2fa\b|\bmfa\b)`),
		combined("compromised_account", `(account\s+.{0,30}compromised|compromised\s+account)`),
		combined("suspicious_activity", `suspicious\s+(activity|sign[\s-]?in|log\s*in|login)`),
		combined("security_alert_phrase", `security\s+alert`),
	}
	securityExclusions = []pattern{
		// Marketing copy pairing security-adjacent phrasing with tuition
		// savings pitches.
		combined("tuition_savings", `(save|saving|savings)\s+on\s+tuition|tuition\s+savings`),
	}

	// Replies to mail the student initiated. Only applies when the subject
	// carries a reply marker; see checkOutreachReply.
	replyMarker = regexp.MustCompile(`^\s*re:`)

	outreachReplyTriggers = []pattern{
		combined("thanks_for_reaching_out", `thank\s+you\s+for\s+reaching\s+out`),
		combined("thanks_for_your_email", `thank\s+you\s+for\s+your\s+(email|inquiry|question|interest)`),
		combined("in_response_to", `in\s+response\s+to\s+your\s+(email|inquiry|question)`),
	}

	// Confirmations of an action the student already took.
	actionConfirmationTriggers = []pattern{
		combined("application_received", `application\s+(received|complete|submitted|confirmation)`),
		combined("thanks_for_applying", `thank\s+you\s+for\s+(applying|submitting)`),
		combined("enrollment_confirmation", `enrollment\s+confirmation`),
		combined("confirmation_of_application", `confirmation\s+(of|for)\s+your\s+(application|enrollment)`),
	}
	actionConfirmationExclusions = []pattern{
		// Solicitations, not confirmations.
		combined("how_to_apply", `how\s+to\s+apply`),
		combined("apply_now", `apply\s+now`),
		combined("start_your_application", `start\s+your\s+application`),
	}

	// Post-acceptance operational mail. The trigger vocabulary overlaps
	// heavily with top-of-funnel marketing, so this category carries the
	// largest exclusion set; correctness depends on the exclusions
	// distinguishing the two.
	acceptedStudentTriggers = []pattern{
		combined("accepted_portal", `(personalized\s+)?accepted\s+(student\s+)?portal`),
		combined("deposit_deadline", `deposit\s+(today|now|by|to\s+reserve)`),
		combined("reserve_your_place", `reserve\s+your\s+(place|spot)`),
		combined("congratulations_accepted", `(?s)congratulations.{0,120}accepted`),
		combined("you_are_accepted", `you\s+(have\s+been|are|were)\s+accepted`),
		combined("admission_decision", `admission\s+(decision|offer)`),
		combined("enrollment_deposit", `enrollment\s+deposit`),
	}
	acceptedStudentExclusions = []pattern{
		combined("acceptance_rate", `acceptance\s+rate`),
		combined("pre_admission", `(pre[\s-]?admission|automatic\s+admission|automatically\s+admitted|auto[\s-]?admit)`),
		combined("direct_admit_profile", `(direct\s+admit.{0,80}(profile|complete)|complete\s+your\s+profile)`),
		combined("future_decision_promise", `((will|could|you(['’])?ll)\s+receive\s+(an?\s+)?admission\s+decision|admission\s+decision\s+within\s+\d+)`),
		combined("priority_student_program", `priority\s+student`),
		combined("submit_your_application", `submit\s+your\s+application`),
		combined("once_accepted", `(once|when)\s+you((['’])?re|\s+are)\s+accepted`),
		combined("event_spot_reservation", `(?s)(reserve\s+your\s+(spot|place).{0,120}(webinar|virtual|info\s+session|event)|(webinar|virtual|info\s+session|event).{0,120}reserve\s+your\s+(spot|place))`),
		combined("recruitment_flattery", `(top\s+candidate|invited\s+to\s+apply)`),
		combined("early_decision_pressure", `(early\s+(decision|action)|priority\s+deadline)`),
		combined("apply_deadline", `apply\s+(by|now|today)`),
		combined("priority_application", `priority\s+application`),
		combined("deadline_details", `deadline\s+details`),
		combined("future_deadline", `(deadline\s+(is\s+)?(approaching|coming|extended)|upcoming\s+deadline)`),
		combined("learn_more_marketing", `learn\s+more\s+about`),
		combined("still_time_reassurance", `((there(['’])?s|there\s+is)\s+still\s+time|it(['’])?s\s+not\s+too\s+late|don(['’])?t\s+miss\s+(out|the\s+deadline))`),
		combined("fee_waiver_pressure", `fee\s+waiver\s+(expires|ends|deadline)`),
		combined("application_perks", `(?s)(complete\s+your\s+application.{0,160}(no\s+(essay|fee)|priority\s+review)|(no\s+(essay|fee)|priority\s+review).{0,160}complete\s+your\s+application)`),
		combined("apply_for_free", `(apply\s+for\s+free|application\s+fee\s+(waived|waiver)|waive\s+(your\s+)?(application\s+)?fee)`),
		combined("apply_and_enroll_promo", `apply\s+and\s+enroll`),
		combined("application_not_received", `(haven(['’])?t|have\s+not)\s+received\s+your\s+application`),
	}

	// Dual-enrollment course administration.
	dualEnrollmentTriggers = []pattern{
		combined("dual_enrollment_phrase", `dual\s+enrollment`),
		combined("course_registration", `course\s+(registration|deletion|added|dropped)`),
		combined("term_course", `(?s)((fall|spring|summer|winter)\s+20\d\d.{0,60}(course|class)|(course|class).{0,60}(fall|spring|summer|winter)\s+20\d\d)`),
		combined("how_to_register", `(?s)how\s+to\s+register.{0,80}(course|class)`),
	}
	dualEnrollmentExclusions = []pattern{
		combined("learn_more_marketing", `learn\s+more\s+about`),
		combined("interest_marketing", `(interested\s+in|consider\s+joining)`),
		combined("explore_majors", `explore\s+(your\s+)?(academic\s+interests|majors|minors)`),
	}

	// Scholarship, stage (a): an application subject naming a specific
	// program. Applicability to an already-accepted student is inferred,
	// hence the lower confidence.
	scholarshipApplySubject = subject("apply_for_scholarship_subject", `(?s)apply\s+for\s+(the\s+)?.{0,80}scholarship`)
	scholarshipNamedMarkers = []pattern{
		combined("named_program", `(president(['’])?s|ministry|impact|founder(['’])?s|dean(['’])?s|trustee)`),
	}

	// Scholarship, stage (b): eligibility talk is explicitly not relevant.
	// Tested strictly before the awarded patterns; order matters when both
	// could match the same text.
	scholarshipNotAwarded = []pattern{
		combined("held_for_you", `(held|reserved)\s+for\s+you`),
		combined("under_consideration", `(considered?\s+for\s+(a\s+|the\s+)?scholarship|scholarship\s+consideration)`),
		combined("eligibility_talk", `(eligible\s+for|may\s+qualify)`),
		combined("guaranteed_admission", `guaranteed\s+admission`),
		combined("priority_consideration", `priority\s+consideration`),
		combined("scholarship_event", `scholarship\s+(day|event|weekend|night)`),
		combined("direct_admission_form", `(?s)(direct\s+admission.{0,100}scholarship|scholarship\s+form)`),
		combined("scholarship_estimate", `(scholarship\s+estimate|estimate\s+your\s+scholarship)`),
		combined("upon_admission", `upon\s+admission`),
		combined("pre_admission_framing", `(pre[\s-]?admission|before\s+you\s+(even\s+)?apply)`),
		combined("deadline_approaching", `(deadline\s+(is\s+)?approaching|approaching\s+deadline)`),
	}

	// Scholarship, stage (c): an award actually made.
	scholarshipAwarded = []pattern{
		combined("congratulations_scholarship", `(?s)congratulations.{0,120}scholarship`),
		combined("you_won_scholarship", `(?s)you\s+(have\s+)?(received|won|earned|been\s+awarded|are\s+awarded|were\s+awarded)\s+(a|the)\s+.{0,60}scholarship`),
		combined("pleased_to_award", `(?s)we\s+are\s+pleased\s+to\s+award.{0,80}scholarship`),
		combined("scholarship_offer", `scholarship\s+(offer|award)`),
		combined("received_a_scholarship", `received\s+a\s+scholarship`),
	}

	// Financial aid package availability.
	financialAidTriggers = []pattern{
		combined("aid_offer_ready", `financial\s+aid\s+(offer|package)\s+(is\s+)?(ready|available|posted)`),
		combined("award_letter_ready", `(award\s+letter\s+(is\s+)?(ready|available|posted)|(view|review)\s+your\s+award\s+letter)`),
		combined("your_aid_is_ready", `your\s+aid\s+is\s+ready`),
	}
	financialAidExclusions = []pattern{
		combined("learn_about_aid", `learn\s+more\s+about\s+financial\s+aid`),
		combined("apply_for_aid", `apply\s+for\s+financial\s+aid`),
		combined("aid_application", `financial\s+aid\s+application`),
		combined("complete_fafsa", `complete\s+(your\s+)?fafsa`),
		combined("considered_for_aid", `considered\s+for\s+(financial\s+)?aid`),
		combined("priority_deadline", `priority\s+(deadline|consideration)`),
	}

	// Marketing and bulk outreach. Trigger-only; any match filters the
	// message.
	irrelevantTriggers = []pattern{
		combined("newsletter_framing", `\b(newsletter|blog|digest)\b`),
		from("newsletter_sender", `newsletter@`),
		combined("event_marketing", `(open\s+house|virtual\s+tour|campus\s+visit|join\s+us|meet\s+(the|our)\s+(faculty|students))`),
		combined("college_search_outreach", `(haven(['’])?t\s+applied\s+yet|still\s+time\s+to\s+apply|how\s+is\s+your\s+college\s+search)`),
		combined("unsolicited_outreach", `(am\s+i\s+reaching\s+you|you(['’])?re\s+on\s+our\s+radar|i\s+want\s+to\s+make\s+sure\s+you\s+know|i(['’])?m\s+eager\s+to\s+consider\s+you|submit\s+your\s+application|invited\s+to\s+apply)`),
		combined("deadline_extension", `(priority\s+)?deadline\s+(has\s+been\s+)?extended`),
		combined("summer_program", `summer\s+(camp|academy|program)`),
		combined("seasonal_fluff", `(ugly\s+sweater|it(['’])?s\s+\w+\s+season)`),
		combined("aid_info_session", `(scholarship|financial\s+aid)\s+(info(rmation)?\s+session|webinar|night)`),
	}

	// Bare "haven't applied" outreach; distinct rule id from the pattern
	// list above.
	noApplicationPattern = combined("no_application", `(haven(['’])?t|have\s+not)\s+applied`)
)

// firstMatch returns the label of the first matching pattern in table order.
func firstMatch(pats []pattern, n *NormalizedEmail) (string, bool) {
	for i := range pats {
		if pats[i].matches(n) {
			return pats[i].label, true
		}
	}
	return "", false
}

func anyMatch(pats []pattern, n *NormalizedEmail) bool {
	_, ok := firstMatch(pats, n)
	return ok
}
