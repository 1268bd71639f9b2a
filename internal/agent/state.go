package agent

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one immutable conversation entry. The message sequence is
// the only channel between nodes.
type Message struct {
	Role    Role
	Content string
}

// State is the conversation threaded through one workflow run. It is
// append-only: nodes contribute new messages and never rewrite history,
// and Messages[0] stays the original user query for the whole run.
type State struct {
	Messages []Message
}

// NewState seeds a run with the user's query.
func NewState(query string) *State {
	return &State{Messages: []Message{{Role: RoleUser, Content: query}}}
}

// Append adds messages to the end of the conversation in order.
func (s *State) Append(msgs ...Message) {
	s.Messages = append(s.Messages, msgs...)
}

// Question returns the original query for the run. Rewrites append a new
// question but never replace this one.
func (s *State) Question() string {
	if len(s.Messages) == 0 {
		return ""
	}
	return s.Messages[0].Content
}

// Last returns the most recently appended message, the primary input for
// the next node.
func (s *State) Last() Message {
	if len(s.Messages) == 0 {
		return Message{}
	}
	return s.Messages[len(s.Messages)-1]
}
