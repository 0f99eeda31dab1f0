package domain

// ChecklistPages defines the fixed pre-launch checklist.
// 項目自体はコンパイル時に固定、進捗ステータスのみ永続化する
var ChecklistPages = []ChecklistPage{
	{
		ID:          "registration-legal",
		Name:        "Registration & Legal",
		Description: "Establish the legal foundation for your RIA practice",
		Items: []ChecklistItem{
			{ID: "entity-formation", Text: "Entity formation (LLC/Corp)", Timeframe: "Week 1-2",
				Details: "Form LLC or corporation in your state. Consider single-member LLC for solo practice."},
			{ID: "ein-application", Text: "Apply for EIN from IRS", Timeframe: "Week 1-2", Dependencies: "Entity formation",
				Details: "Free online application at IRS.gov. Required for bank accounts and filings."},
			{ID: "state-sec-decision", Text: "State vs SEC registration decision", Timeframe: "Week 2-3",
				Details: "Under $100M AUM = state registration. Flat-fee model with ~500 clients likely qualifies for state."},
			{ID: "adv-part1-prep", Text: "Form ADV Part 1 preparation", Timeframe: "Week 3-6", Dependencies: "State/SEC decision",
				Details: "Filed through IARD system. Discloses business practices, fees, disciplinary history."},
			{ID: "adv-part2-brochure", Text: "Form ADV Part 2 (Client Brochure)", Timeframe: "Week 3-6", Dependencies: "ADV Part 1",
				Details: "Plain-English disclosure document for clients. Must be delivered before or at contract signing."},
			{ID: "eo-insurance", Text: "E&O/Professional Liability Insurance", Timeframe: "Week 4-6",
				Details: "Typical coverage: $1M per occurrence. Shop multiple carriers. Required by most states."},
			{ID: "iard-registration", Text: "IARD account setup and filing", Timeframe: "Week 5-8", Dependencies: "ADV preparation",
				Details: "Investment Adviser Registration Depository. State registration fees vary ($100-$600)."},
			{ID: "state-notice-filing", Text: "State notice filings (if multi-state)", Timeframe: "Week 6-8", Dependencies: "IARD registration",
				Details: "Required if advising clients in multiple states. Additional fees per state."},
		},
	},
	{
		ID:          "technology-setup",
		Name:        "Technology Setup",
		Description: "Configure the technology stack for client service delivery",
		Items: []ChecklistItem{
			{ID: "crm-wealthbox", Text: "CRM setup (Wealthbox)", Timeframe: "Week 3-4",
				Details: "Configure workflows, custom fields, tags. Import contacts. Set up integrations."},
			{ID: "planning-rightcapital", Text: "Planning software (RightCapital)", Timeframe: "Week 3-4",
				Details: "Configure planning assumptions, branding, client portal settings."},
			{ID: "aggregation-plaid", Text: "Account aggregation (Plaid integration)", Timeframe: "Week 4-5", Dependencies: "Planning software",
				Details: "Connect Plaid for automatic account linking. Test with multiple institution types."},
			{ID: "manual-upload-flow", Text: "Manual statement upload workflow", Timeframe: "Week 4-5",
				Details: "Design fallback process for institutions not supported by Plaid."},
			{ID: "email-archiving", Text: "WORM-compliant email archiving", Timeframe: "Week 4-6",
				Details: "Required by SEC/state regulations. Options: Smarsh, Global Relay, or built-in Microsoft 365."},
			{ID: "website-deployment", Text: "Website deployment", Timeframe: "Week 5-7",
				Details: "Ensure ADV-compliant disclosures, clear fee information, required regulatory disclaimers."},
			{ID: "fee-calculator", Text: "Fee calculator deployment and testing", Timeframe: "Week 6-8", Dependencies: "Website deployment",
				Details: "Transparent $100/month flat fee calculator. Test edge cases and mobile responsiveness."},
			{ID: "client-portal", Text: "Client portal configuration", Timeframe: "Week 5-7", Dependencies: "Planning software",
				Details: "RightCapital client portal setup. Test document sharing, task assignment."},
			{ID: "calendar-scheduling", Text: "Calendar and scheduling tool", Timeframe: "Week 4-5",
				Details: "Calendly or built-in CRM scheduling. Configure meeting types, buffers, availability."},
			{ID: "video-conferencing", Text: "Video conferencing setup", Timeframe: "Week 3-4",
				Details: "Zoom or Google Meet. Test screen sharing, recording for compliance."},
		},
	},
	{
		ID:          "compliance-infrastructure",
		Name:        "Compliance Infrastructure",
		Description: "Build the compliance framework required for RIA operations",
		Items: []ChecklistItem{
			{ID: "policies-procedures", Text: "Written Policies & Procedures Manual", Timeframe: "Week 4-7",
				Details: "Required by Rule 206(4)-7. Cover trading, custody, privacy, advertising, etc."},
			{ID: "code-of-ethics", Text: "Code of Ethics", Timeframe: "Week 4-6",
				Details: "Required by Rule 204A-1. Personal trading policies, gift rules, confidentiality."},
			{ID: "privacy-policy", Text: "Privacy Policy (Reg S-P)", Timeframe: "Week 4-6",
				Details: "Initial and annual privacy notices. Document information sharing practices."},
			{ID: "advertising-review", Text: "Advertising Review Process", Timeframe: "Week 5-7",
				Details: "Document approval process for all marketing. Maintain advertising file."},
			{ID: "client-agreement", Text: "Client Advisory Agreement Template", Timeframe: "Week 4-6", Dependencies: "ADV Part 2",
				Details: "Define scope of services, fees ($100/month), termination, fiduciary duty."},
			{ID: "aml-procedures", Text: "AML/KYC Procedures", Timeframe: "Week 5-7",
				Details: "Client identification, suspicious activity monitoring. Required for non-custodial advisors too."},
			{ID: "business-continuity", Text: "Business Continuity Plan", Timeframe: "Week 6-8",
				Details: "Document backup systems, succession planning, disaster recovery procedures."},
			{ID: "cybersecurity-policy", Text: "Cybersecurity Policy", Timeframe: "Week 5-7",
				Details: "Required by many states. Password policies, data encryption, incident response."},
			{ID: "books-records", Text: "Books and Records Procedures", Timeframe: "Week 5-7",
				Details: "Rule 204-2 compliance. Document retention schedule (5-6 years minimum)."},
		},
	},
	{
		ID:          "marketing-preparation",
		Name:        "Marketing Preparation",
		Description: "Prepare compliant marketing materials and channels",
		Items: []ChecklistItem{
			{ID: "brand-identity", Text: "Brand identity finalization", Timeframe: "Week 2-4",
				Details: "Logo, colors, fonts. Ensure professional but approachable for target audience."},
			{ID: "website-live", Text: "Website go-live with compliance review", Timeframe: "Week 7-9", Dependencies: "Advertising review process",
				Details: "All pages reviewed for compliance. ADV brochure accessible. Fee transparency."},
			{ID: "calculator-tested", Text: "Fee calculator tested and deployed", Timeframe: "Week 8-10", Dependencies: "Website live",
				Details: "Test all scenarios. Clear $100/month messaging. No hidden fee implications."},
			{ID: "postcard-campaign", Text: "Postcard campaign designed and printed", Timeframe: "Week 8-10",
				Details: "Compliance-reviewed. Target geographic area. Track response codes."},
			{ID: "social-linkedin", Text: "LinkedIn profile optimized", Timeframe: "Week 6-8",
				Details: "Professional photo, clear value proposition, link to website."},
			{ID: "social-profiles", Text: "Social media profiles created", Timeframe: "Week 6-8",
				Details: "Archive and document all posts. Avoid performance claims."},
			{ID: "content-calendar", Text: "Initial content calendar (90 days)", Timeframe: "Week 8-10",
				Details: "Educational content aligned with target audience. Pre-approved topics."},
			{ID: "referral-strategy", Text: "Referral strategy documented", Timeframe: "Week 9-11",
				Details: "No cash referral fees without disclosure. Thank-you process for referrers."},
		},
	},
	{
		ID:          "go-live-readiness",
		Name:        "Go-Live Readiness",
		Description: "Final checks and soft launch preparation",
		Items: []ChecklistItem{
			{ID: "test-client", Text: "Test client walkthrough (end-to-end)", Timeframe: "Week 10-11", Dependencies: "All technology setup",
				Details: "Complete full client journey: onboarding, aggregation, first meeting, plan delivery."},
			{ID: "error-handling", Text: "Error handling protocols documented", Timeframe: "Week 10-11",
				Details: "What happens when Plaid fails? Manual upload process. Client communication templates."},
			{ID: "soft-launch-criteria", Text: "Soft launch criteria defined", Timeframe: "Week 10-11",
				Details: "Identify 3-5 beta clients. Friends/family or warm contacts. Gather feedback."},
			{ID: "soft-launch-execution", Text: "Soft launch with beta clients", Timeframe: "Week 11-12", Dependencies: "Test client walkthrough",
				Details: "Onboard beta clients. Document friction points. Iterate on process."},
			{ID: "day1-checklist", Text: "Day 1 operational checklist", Timeframe: "Week 12",
				Details: "Morning routine, system checks, response time goals, escalation procedures."},
			{ID: "support-procedures", Text: "Client support procedures", Timeframe: "Week 11-12",
				Details: "How to handle questions, complaints, urgent requests. Response time SLAs."},
			{ID: "ai-assistant-trained", Text: "AI assistant prompts and guardrails", Timeframe: "Week 10-12",
				Details: "Document AI usage policies. Human review requirements. Disclosure to clients."},
			{ID: "launch-announcement", Text: "Launch announcement prepared", Timeframe: "Week 12", Dependencies: "Soft launch execution",
				Details: "Email to network, social posts, press release if appropriate."},
			{ID: "week1-goals", Text: "Week 1 success metrics defined", Timeframe: "Week 12",
				Details: "Number of inquiries, consultations booked, clients onboarded. Realistic expectations."},
			{ID: "backup-plans", Text: "Backup plans for common failures", Timeframe: "Week 11-12",
				Details: "Plaid outage, scheduling conflicts, document signing failures. Workarounds documented."},
		},
	},
}

// FindChecklistItem returns the checklist item with the given id.
func FindChecklistItem(itemID string) (ChecklistItem, bool) {
	for _, page := range ChecklistPages {
		for _, item := range page.Items {
			if item.ID == itemID {
				return item, true
			}
		}
	}
	return ChecklistItem{}, false
}
