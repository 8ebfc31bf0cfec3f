package rules

// Info is the learner-facing description of a rule.
type Info struct {
	ID      ID
	Title   string
	Summary string
}

var infos = []Info{
	{SuspiciousSender, "Check the sender carefully", "Display names are easy to fake; look at the actual address and its domain."},
	{UrgencyLanguage, "Spot urgency and pressure", "Deadlines, threats and \"act now\" wording are there to stop you checking."},
	{GenericGreeting, "Watch the writing quality and tone", "Generic greetings and odd phrasing suggest a message sent to many people at once."},
	{CredentialBait, "Prefer safe navigation over emailed login links", "Go to the site yourself instead of signing in through a link you were sent."},
	{LinkPresent, "Treat links as untrusted by default", "Hover to see where a link really goes and compare it with the sender."},
	{UserinfoLink, "Subtle link deception", "Text before an \"@\" in a URL is not the destination; the real host comes after it."},
	{AttachmentPresent, "Be cautious with attachments", "Unexpected files, double extensions and macro documents are common malware carriers."},
	{DoubleCheck, "Check for consistency across the email", "Sender, tone, timing and request should all fit together before you decide."},
	{SecondaryChannel, "Verify using a second channel", "When unsure, confirm with the organisation through a contact you already trust."},
}

var infoByID = func() map[ID]Info {
	m := make(map[ID]Info, len(infos))
	for _, in := range infos {
		m[in.ID] = in
	}
	return m
}()

// Describe returns the description for id. Unknown ids come back with the
// id itself as the title.
func Describe(id ID) Info {
	if in, ok := infoByID[id]; ok {
		return in
	}
	return Info{ID: id, Title: string(id)}
}

// AllInfo returns every known rule description in catalog order.
func AllInfo() []Info {
	out := make([]Info, len(infos))
	copy(out, infos)
	return out
}
