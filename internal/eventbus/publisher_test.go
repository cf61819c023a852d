package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sent struct {
	subject string
	data    []byte
	msgID   string
}

func recordingPublisher(out *[]sent, err error) *Publisher {
	return &Publisher{
		logger: zap.NewNop(),
		send: func(subject string, data []byte, msgID string) error {
			*out = append(*out, sent{subject, data, msgID})
			return err
		},
	}
}

func TestPublishGenerated(t *testing.T) {
	var out []sent
	p := recordingPublisher(&out, nil)
	kitID := uuid.New()

	err := p.PublishGenerated(context.Background(), GenerationEvent{
		UserID:       uuid.New(),
		BrandKitID:   &kitID,
		BusinessName: "Acme",
		Score:        8.5,
		Attempts:     2,
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, SubjectGenerated, out[0].subject)

	var ev GenerationEvent
	require.NoError(t, json.Unmarshal(out[0].data, &ev))
	assert.Equal(t, out[0].msgID, ev.ID)
	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.Timestamp.IsZero())
	assert.Equal(t, kitID, *ev.BrandKitID)
}

func TestPublishFailedWrapsErrors(t *testing.T) {
	var out []sent
	p := recordingPublisher(&out, errors.New("no responders"))

	err := p.PublishFailed(context.Background(), GenerationEvent{Error: "failed to generate logo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), SubjectFailed)
}

func TestUnconnectedPublisherIsNoop(t *testing.T) {
	var nilPub *Publisher
	assert.NoError(t, nilPub.PublishGenerated(context.Background(), GenerationEvent{}))
	assert.False(t, nilPub.Connected())
	nilPub.Close()

	assert.NoError(t, (&Publisher{}).PublishFailed(context.Background(), GenerationEvent{}))
}
