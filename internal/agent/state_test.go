package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendPreservesOrder(t *testing.T) {
	s := NewState("what is the price of iphone 15?")

	s.Append(Message{Role: RoleAssistant, Content: "ctx"})
	s.Append(Message{Role: RoleUser, Content: "rewritten"})

	require.Len(t, s.Messages, 3)
	assert.Equal(t, "what is the price of iphone 15?", s.Messages[0].Content)
	assert.Equal(t, "ctx", s.Messages[1].Content)
	assert.Equal(t, "rewritten", s.Messages[2].Content)
}

func TestAppendBatchedEqualsSequential(t *testing.T) {
	m1 := Message{Role: RoleAssistant, Content: "one"}
	m2 := Message{Role: RoleUser, Content: "two"}

	sequential := NewState("q")
	sequential.Append(m1)
	sequential.Append(m2)

	batched := NewState("q")
	batched.Append(m1, m2)

	assert.Equal(t, sequential.Messages, batched.Messages)
}

func TestQuestionIsAlwaysFirstMessage(t *testing.T) {
	s := NewState("original question about a product")
	s.Append(Message{Role: RoleUser, Content: "rewritten question"})
	s.Append(Message{Role: RoleUser, Content: "rewritten again"})

	assert.Equal(t, "original question about a product", s.Question())
	assert.Equal(t, "rewritten again", s.Last().Content)
}

func TestEmptyStateAccessors(t *testing.T) {
	s := &State{}
	assert.Equal(t, "", s.Question())
	assert.Equal(t, Message{}, s.Last())
}
