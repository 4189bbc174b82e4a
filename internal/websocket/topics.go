package websocket

// Hub topic keys. A connection's topics are fixed at handshake time.
const (
	// TopicIndex streams the full session list to admin consoles.
	TopicIndex = "index"
	// TopicSessionPrefix + session id streams one session's transcript.
	TopicSessionPrefix = "session:"
	// TopicClientPrefix + client id streams bot-mode transcript updates
	// and mode transitions to a single visitor widget.
	TopicClientPrefix = "client:"
)
