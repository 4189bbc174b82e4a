package constant

const (
	GreetingText       = "Hi! I'm the support assistant. How can I help you today?"
	SessionEndedText   = "Session ended. How can I help you now?"
	ModerationText     = "Please let's keep the conversation professional."
	HandoffAcceptText  = "It looks like you want to speak to a human. Let's get you connected."
	JoinedNoticeFormat = "User %s joined via connect form."
)

// Websocket envelope types pushed to subscribers.
const (
	EnvelopeTranscript  = "transcript"
	EnvelopeSessions    = "sessions"
	EnvelopeSessionGone = "session_gone"
	EnvelopeMode        = "mode"
	EnvelopeSettings    = "settings"
)

// FallbackReplies is the pool used when no keyword matches; one entry is
// picked uniformly at random.
var FallbackReplies = []string{
	"I'm not sure about that, but our team can help! Type 'connect' to chat with a human.",
	"Could you rephrase that? Or you can connect with our support team directly.",
	"I'm a bot, and I'm still learning! Would you like to speak to an agent?",
	"That's a good question. Please connect with an agent for a detailed answer.",
	"I can help with basic queries, but for specific details our counselors are best.",
	"Interesting! Tell me more, or ask about our courses.",
	"I'm here to assist with your study abroad plans.",
	"Feel free to ask about specific countries or universities.",
}

// BlockedWords is the moderation denylist. Matching is case-insensitive
// substring containment.
var BlockedWords = []string{
	"badword", "idiot", "stupid", "dumb", "hate", "kill", "shut up",
	"fuck", "shit", "bitch", "asshole",
}
