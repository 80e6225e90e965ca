package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleLabel(t *testing.T) {
	assert.Equal(t, "You", RoleUser.Label())
	assert.Equal(t, "Assistant", RoleAssistant.Label())
	assert.Equal(t, "System", RoleSystem.Label())
}

func TestSeedMessages(t *testing.T) {
	msgs := SeedMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, IntroMessageID, msgs[0].ID)
	assert.Equal(t, RoleSystem, msgs[0].Role)
	assert.Equal(t, "Upload a PDF to ground the assistant. Answers will stick to the indexed document.", msgs[0].Content)

	a, b := NewChatMessage(RoleUser, "hi"), NewChatMessage(RoleUser, "hi")
	assert.NotEqual(t, a.ID, b.ID)
}

func TestSelectedFile_IsPDF(t *testing.T) {
	assert.True(t, (&SelectedFile{ContentType: PDFContentType}).IsPDF())
	assert.False(t, (&SelectedFile{ContentType: "image/png"}).IsPDF())
	assert.False(t, (*SelectedFile)(nil).IsPDF())
}

func TestSessionView_ChatDisabled(t *testing.T) {
	for _, status := range []UploadStatus{UploadIdle, UploadUploading, UploadError} {
		assert.True(t, SessionView{Status: status}.ChatDisabled(), status)
	}
	assert.False(t, SessionView{Status: UploadReady}.ChatDisabled())
}

func TestLocalTime_JSON(t *testing.T) {
	in := LocalTime(time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local))
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, `"2024-05-01 09:30:00"`, string(data))

	var out LocalTime
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, time.Time(in).Equal(time.Time(out)))
}
